package openlibrary

import (
	"net/url"
	"strconv"
	"strings"
)

// Query is a search input accepted by Client.Search. It is either Text or
// Filters.
type Query interface {
	queryString() string
	apply(values url.Values)
}

// Text is a plain free-text query passed to the search endpoint verbatim.
type Text string

func (t Text) queryString() string { return string(t) }

func (t Text) apply(url.Values) {}

// Filters is a structured query. Fields are appended to the query term in a
// fixed order: language, first publish year, subject type.
type Filters struct {
	Query     string
	Language  string // MARC code such as "eng" or "fre"
	Year      int
	Type      string // subject, e.g. "fiction"
	HasCovers bool
}

func (f Filters) queryString() string {
	parts := make([]string, 0, 4)
	if q := strings.TrimSpace(f.Query); q != "" {
		parts = append(parts, q)
	}
	if lang := strings.TrimSpace(f.Language); lang != "" {
		parts = append(parts, "language:"+strings.ToLower(lang))
	}
	if f.Year > 0 {
		parts = append(parts, "first_publish_year:"+strconv.Itoa(f.Year))
	}
	if typ := strings.TrimSpace(f.Type); typ != "" {
		parts = append(parts, "subject:"+strings.ToLower(typ))
	}
	return strings.Join(parts, " ")
}

// HasCovers is sent as a request parameter, never as a query token.
func (f Filters) apply(values url.Values) {
	if f.HasCovers {
		values.Set("has_cover", "true")
	}
}

// IsZero reports whether no filter field is set.
func (f Filters) IsZero() bool {
	return strings.TrimSpace(f.Query) == "" &&
		strings.TrimSpace(f.Language) == "" &&
		f.Year <= 0 &&
		strings.TrimSpace(f.Type) == "" &&
		!f.HasCovers
}

// NewQuery combines free text with the structured fields of f. When f sets
// no filter, the text is returned as Text and passed through verbatim.
func NewQuery(text string, f Filters) Query {
	f.Query = text
	if strings.TrimSpace(f.Language) == "" && f.Year <= 0 && strings.TrimSpace(f.Type) == "" && !f.HasCovers {
		return Text(text)
	}
	return f
}

// BuildQuery renders the q parameter for q.
func BuildQuery(q Query) string {
	if q == nil {
		return ""
	}
	return q.queryString()
}

package openlibrary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// BookSummary is one normalized search result.
type BookSummary struct {
	Key              string   `json:"key" yaml:"key"`
	Title            string   `json:"title" yaml:"title"`
	AuthorNames      []string `json:"author_names,omitempty" yaml:"author_names,omitempty"`
	CoverID          *int     `json:"cover_id,omitempty" yaml:"cover_id,omitempty"`
	Languages        []string `json:"languages,omitempty" yaml:"languages,omitempty"`
	FirstPublishYear *int     `json:"first_publish_year,omitempty" yaml:"first_publish_year,omitempty"`
	Subjects         []string `json:"subjects,omitempty" yaml:"subjects,omitempty"`
}

// SearchDoc mirrors a document of the search.json response, limited to the
// projected fields.
type SearchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title,omitempty"`
	AuthorName       []string `json:"author_name,omitempty"`
	CoverI           *int     `json:"cover_i,omitempty"`
	Language         []string `json:"language,omitempty"`
	FirstPublishYear *int     `json:"first_publish_year,omitempty"`
	Subject          []string `json:"subject,omitempty"`
}

// searchFields is the projection requested from search.json. It must stay in
// sync with SearchDoc.
const searchFields = "key,title,author_name,cover_i,language,first_publish_year,subject"

// SummaryFromDoc projects a raw document onto a BookSummary. Absent fields stay
// absent.
func SummaryFromDoc(doc SearchDoc) BookSummary {
	return BookSummary{
		Key:              doc.Key,
		Title:            doc.Title,
		AuthorNames:      slices.Clone(doc.AuthorName),
		CoverID:          cloneInt(doc.CoverI),
		Languages:        slices.Clone(doc.Language),
		FirstPublishYear: cloneInt(doc.FirstPublishYear),
		Subjects:         slices.Clone(doc.Subject),
	}
}

// Doc returns the raw document the summary was projected from.
func (b BookSummary) Doc() SearchDoc {
	return SearchDoc{
		Key:              b.Key,
		Title:            b.Title,
		AuthorName:       slices.Clone(b.AuthorNames),
		CoverI:           cloneInt(b.CoverID),
		Language:         slices.Clone(b.Languages),
		FirstPublishYear: cloneInt(b.FirstPublishYear),
		Subject:          slices.Clone(b.Subjects),
	}
}

// Clone returns a copy of b that shares no slices or pointers with it.
func (b BookSummary) Clone() BookSummary {
	return SummaryFromDoc(b.Doc())
}

// ID returns the bare identifier of the key, e.g. "OL45883W".
func (b BookSummary) ID() string {
	return StripKey(b.Key)
}

type searchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []SearchDoc `json:"docs"`
}

type subjectResponse struct {
	Name      string        `json:"name"`
	WorkCount int           `json:"work_count"`
	Works     []subjectWork `json:"works"`
}

type subjectWork struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	Authors []struct {
		Key  string `json:"key"`
		Name string `json:"name"`
	} `json:"authors"`
	CoverID          *int     `json:"cover_id"`
	FirstPublishYear *int     `json:"first_publish_year"`
	Subject          []string `json:"subject"`
}

func (w subjectWork) summary() BookSummary {
	var names []string
	for _, a := range w.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			names = append(names, name)
		}
	}
	return BookSummary{
		Key:              w.Key,
		Title:            w.Title,
		AuthorNames:      names,
		CoverID:          cloneInt(w.CoverID),
		FirstPublishYear: cloneInt(w.FirstPublishYear),
		Subjects:         slices.Clone(w.Subject),
	}
}

// Work is the validated stage-one record of a work.
type Work struct {
	Key              string
	Title            string
	Description      *string
	Subjects         []string
	Covers           []int
	AuthorKeys       []string
	FirstPublishYear *int
	Languages        []string
	Publishers       []string
	PageCount        *int
	ISBN13           []string
	ISBN10           []string
}

type workRecord struct {
	Key              string      `json:"key"`
	Title            string      `json:"title"`
	Description      textValue   `json:"description"`
	Subjects         []string    `json:"subjects"`
	Covers           []int       `json:"covers"`
	Authors          []authorRef `json:"authors"`
	FirstPublishDate string      `json:"first_publish_date"`
	Languages        []keyRef    `json:"languages"`
	Publishers       []string    `json:"publishers"`
	NumberOfPages    *int        `json:"number_of_pages"`
	ISBN13           []string    `json:"isbn_13"`
	ISBN10           []string    `json:"isbn_10"`
}

// work normalizes the record. A record without a title is still shown, under
// its bare id.
func (r workRecord) work(requested string) *Work {
	key := strings.TrimSpace(r.Key)
	if key == "" {
		key = "/works/" + requested
	}
	w := &Work{
		Key:        key,
		Title:      strings.TrimSpace(r.Title),
		Subjects:   nonEmpty(r.Subjects),
		Publishers: nonEmpty(r.Publishers),
		ISBN13:     nonEmpty(r.ISBN13),
		ISBN10:     nonEmpty(r.ISBN10),
	}
	if w.Title == "" {
		w.Title = StripKey(key)
	}
	if r.Description.set {
		desc := r.Description.value
		w.Description = &desc
	}
	// The catalog uses -1 as a placeholder for removed covers.
	for _, id := range r.Covers {
		if id > 0 {
			w.Covers = append(w.Covers, id)
		}
	}
	for _, ref := range r.Authors {
		if ref.Key != "" {
			w.AuthorKeys = append(w.AuthorKeys, ref.Key)
		}
	}
	if year := extractYear(r.FirstPublishDate); year > 0 {
		w.FirstPublishYear = &year
	}
	for _, lang := range r.Languages {
		if code := StripKey(lang.Key); code != "" {
			w.Languages = append(w.Languages, code)
		}
	}
	if r.NumberOfPages != nil && *r.NumberOfPages > 0 {
		w.PageCount = cloneInt(r.NumberOfPages)
	}
	return w
}

// textValue decodes fields that are either a plain string or a typed
// {"type": ..., "value": ...} object.
type textValue struct {
	value string
	set   bool
}

func (t *textValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		t.value, t.set = strings.TrimSpace(s), strings.TrimSpace(s) != ""
		return nil
	}
	var typed struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &typed); err != nil {
		return fmt.Errorf("text value: %w", err)
	}
	t.value, t.set = strings.TrimSpace(typed.Value), strings.TrimSpace(typed.Value) != ""
	return nil
}

// authorRef accepts both {"author": {"key": ...}} and {"key": ...}.
type authorRef struct {
	Key string
}

func (a *authorRef) UnmarshalJSON(data []byte) error {
	var raw struct {
		Key    string  `json:"key"`
		Author *keyRef `json:"author"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("author reference: %w", err)
	}
	a.Key = raw.Key
	if raw.Author != nil && raw.Author.Key != "" {
		a.Key = raw.Author.Key
	}
	return nil
}

type keyRef struct {
	Key string `json:"key"`
}

// Author is a resolved author record.
type Author struct {
	Key  string `json:"key" yaml:"key"`
	Name string `json:"name" yaml:"name"`
}

type authorRecord struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	PersonalName string `json:"personal_name"`
}

func (r authorRecord) validate(requested string) (*Author, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		name = strings.TrimSpace(r.PersonalName)
	}
	if name == "" {
		return nil, fmt.Errorf("author %s has no name", requested)
	}
	key := strings.TrimSpace(r.Key)
	if key == "" {
		key = "/authors/" + requested
	}
	return &Author{Key: key, Name: name}, nil
}

// ChangeEvent is one entry of the recent changes feed.
type ChangeEvent struct {
	ID        string      `json:"id" yaml:"id"`
	Kind      string      `json:"kind" yaml:"kind"`
	Author    *string     `json:"author,omitempty" yaml:"author,omitempty"`
	Timestamp time.Time   `json:"timestamp" yaml:"timestamp"`
	Comment   string      `json:"comment,omitempty" yaml:"comment,omitempty"`
	Changes   []ChangeRef `json:"changes,omitempty" yaml:"changes,omitempty"`
}

// ChangeRef names an entity revision touched by a change.
type ChangeRef struct {
	Key      string `json:"key" yaml:"key"`
	Revision int    `json:"revision" yaml:"revision"`
}

type changeRecord struct {
	ID        flexString  `json:"id"`
	Kind      string      `json:"kind"`
	Author    *keyRef     `json:"author"`
	Timestamp string      `json:"timestamp"`
	Comment   string      `json:"comment"`
	Changes   []ChangeRef `json:"changes"`
}

func (r changeRecord) event() ChangeEvent {
	evt := ChangeEvent{
		ID:        string(r.ID),
		Kind:      strings.TrimSpace(r.Kind),
		Timestamp: parseTime(r.Timestamp),
		Comment:   r.Comment,
		Changes:   slices.Clone(r.Changes),
	}
	if r.Author != nil && r.Author.Key != "" {
		key := r.Author.Key
		evt.Author = &key
	}
	return evt
}

// flexString accepts JSON strings and numbers.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*f = flexString(n.String())
	return nil
}

// StripKey drops any path prefix from an Open Library key:
// "/works/OL45883W" becomes "OL45883W".
func StripKey(key string) string {
	key = strings.TrimSpace(key)
	key = strings.TrimSuffix(key, "/")
	if idx := strings.LastIndex(key, "/"); idx >= 0 {
		key = key[idx+1:]
	}
	return strings.TrimSuffix(key, ".json")
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// extractYear pulls a year out of free-form dates like "March 1954" or
// "1954-07-29".
func extractYear(value string) int {
	value = strings.TrimSpace(value)
	if len(value) < 4 {
		return 0
	}
	for _, layout := range []string{"2006", "January 2, 2006", "Jan 2, 2006", "2006-01-02", "January 2006"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Year()
		}
	}
	for i := 0; i+4 <= len(value); i++ {
		year, err := strconv.Atoi(value[i : i+4])
		if err == nil && year > 1000 && year < 3000 {
			return year
		}
	}
	return 0
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

// CoverURL returns the image URL for a cover ID. size is "S", "M" or "L".
func CoverURL(id int, size string) string {
	if id <= 0 {
		return ""
	}
	switch size {
	case "S", "M", "L":
	default:
		size = "M"
	}
	return fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-%s.jpg", id, size)
}

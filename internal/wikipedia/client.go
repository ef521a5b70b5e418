package wikipedia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/five82/folio/internal/baseurl"
)

// ErrNoPage is returned when the search has no matching page.
var ErrNoPage = errors.New("no encyclopedia page")

// missingPageID is the sentinel key the API uses for a page that does not
// exist.
const missingPageID = "-1"

const (
	// DefaultBaseURL is the English Wikipedia host.
	DefaultBaseURL   = "https://en.wikipedia.org"
	defaultUserAgent = "folio/0.1"
	requestTimeout   = 5 * time.Second
	apiPath          = "/w/api.php"
	thumbnailSize    = "300"
)

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api %s returned status %d", apiPath, e.StatusCode)
}

// Summary is the lead section of the best-matching page plus its
// metadata. Empty fields mean the API did not provide them.
type Summary struct {
	Title      string            `json:"title" yaml:"title"`
	Extract    string            `json:"extract,omitempty" yaml:"extract,omitempty"`
	URL        string            `json:"url,omitempty" yaml:"url,omitempty"`
	Thumbnail  string            `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
	Categories []string          `json:"categories,omitempty" yaml:"categories,omitempty"`
	LangLinks  map[string]string `json:"lang_links,omitempty" yaml:"lang_links,omitempty"`
}

// Clone returns a deep copy of s. A nil summary clones to nil.
func (s *Summary) Clone() *Summary {
	if s == nil {
		return nil
	}
	c := *s
	c.Categories = slices.Clone(s.Categories)
	c.LangLinks = maps.Clone(s.LangLinks)
	return &c
}

// Client queries the MediaWiki action API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

// Option adjusts a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient builds a Client for baseURL. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := baseurl.Parse(baseURL, DefaultBaseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: requestTimeout},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Lookup searches for term and summarizes the single best match.
func (c *Client) Lookup(ctx context.Context, term string) (*Summary, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, ErrNoPage
	}

	values := url.Values{}
	values.Set("action", "query")
	values.Set("format", "json")
	values.Set("redirects", "1")
	values.Set("generator", "search")
	values.Set("gsrsearch", term)
	values.Set("gsrlimit", "1")
	values.Set("prop", "extracts|pageimages|categories|langlinks|info")
	values.Set("exintro", "1")
	values.Set("explaintext", "1")
	values.Set("inprop", "url")
	values.Set("piprop", "thumbnail")
	values.Set("pithumbsize", thumbnailSize)
	values.Set("cllimit", "max")
	values.Set("lllimit", "max")
	values.Set("llprop", "url")

	reqURL := c.baseURL.ResolveReference(&url.URL{Path: apiPath, RawQuery: values.Encode()})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}
	var payload queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	page, ok := payload.bestPage()
	if !ok {
		return nil, ErrNoPage
	}
	return page.summary(), nil
}

type queryResponse struct {
	Query *struct {
		Pages map[string]page `json:"pages"`
	} `json:"query"`
}

type page struct {
	PageID    int     `json:"pageid"`
	Title     string  `json:"title"`
	Index     int     `json:"index"`
	Missing   *string `json:"missing"`
	Extract   string  `json:"extract"`
	FullURL   string  `json:"fullurl"`
	Thumbnail *struct {
		Source string `json:"source"`
	} `json:"thumbnail"`
	Categories []struct {
		Title string `json:"title"`
	} `json:"categories"`
	LangLinks []struct {
		Lang string `json:"lang"`
		URL  string `json:"url"`
	} `json:"langlinks"`
}

// bestPage picks the highest-ranked real page. The sentinel id and pages
// flagged missing never qualify.
func (r queryResponse) bestPage() (page, bool) {
	if r.Query == nil || len(r.Query.Pages) == 0 {
		return page{}, false
	}
	ids := make([]string, 0, len(r.Query.Pages))
	for id, p := range r.Query.Pages {
		if id == missingPageID || p.Missing != nil || p.PageID < 0 {
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return page{}, false
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := r.Query.Pages[ids[i]], r.Query.Pages[ids[j]]
		if a.Index != b.Index {
			return a.Index < b.Index
		}
		return ids[i] < ids[j]
	})
	return r.Query.Pages[ids[0]], true
}

func (p page) summary() *Summary {
	s := &Summary{
		Title:   p.Title,
		Extract: strings.TrimSpace(p.Extract),
		URL:     p.FullURL,
	}
	if p.Thumbnail != nil {
		s.Thumbnail = p.Thumbnail.Source
	}
	for _, c := range p.Categories {
		if name := StripNamespace(c.Title); name != "" {
			s.Categories = append(s.Categories, name)
		}
	}
	for _, l := range p.LangLinks {
		if l.Lang == "" || l.URL == "" {
			continue
		}
		if s.LangLinks == nil {
			s.LangLinks = make(map[string]string, len(p.LangLinks))
		}
		s.LangLinks[l.Lang] = l.URL
	}
	return s
}

// StripNamespace removes a namespace prefix such as "Category:".
func StripNamespace(title string) string {
	if _, name, ok := strings.Cut(title, ":"); ok {
		return strings.TrimSpace(name)
	}
	return strings.TrimSpace(title)
}

package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/five82/folio/internal/baseurl"
)

// Catalog is the read surface of the Open Library API used by folio.
type Catalog interface {
	Search(ctx context.Context, q Query) ([]BookSummary, error)
	BrowseSubject(ctx context.Context, subject string) ([]BookSummary, error)
	FetchWork(ctx context.Context, key string) (*Work, error)
	FetchAuthor(ctx context.Context, key string) (*Author, error)
	FetchRecentChanges(ctx context.Context, limit int) ([]ChangeEvent, error)
}

var _ Catalog = (*Client)(nil)

// Client talks to the Open Library HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	// DefaultBaseURL is the public Open Library host.
	DefaultBaseURL   = "https://openlibrary.org"
	defaultUserAgent = "folio/0.1"
	requestTimeout   = 10 * time.Second

	// SearchLimit caps every search and subject request.
	SearchLimit = 20
)

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

// Search runs a full-text search and returns at most SearchLimit summaries in
// relevance order. A response without documents yields ErrNoResults.
func (c *Client) Search(ctx context.Context, q Query) ([]BookSummary, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	values.Set("q", BuildQuery(q))
	values.Set("fields", searchFields)
	values.Set("limit", strconv.Itoa(SearchLimit))
	if q != nil {
		q.apply(values)
	}
	rel := &url.URL{Path: "/search.json", RawQuery: values.Encode()}

	var payload searchResponse
	if err := c.doURL(ctx, rel, &payload); err != nil {
		return nil, err
	}
	results := make([]BookSummary, 0, len(payload.Docs))
	for _, doc := range payload.Docs {
		if strings.TrimSpace(doc.Key) == "" {
			continue
		}
		results = append(results, SummaryFromDoc(doc))
	}
	if len(results) == 0 {
		return nil, ErrNoResults
	}
	return results, nil
}

// BrowseSubject lists works filed under subject.
func (c *Client) BrowseSubject(ctx context.Context, subject string) ([]BookSummary, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	name := strings.ToLower(strings.TrimSpace(subject))
	if name == "" {
		return nil, fmt.Errorf("subject required")
	}
	name = strings.ReplaceAll(name, " ", "_")
	values := url.Values{}
	values.Set("limit", strconv.Itoa(SearchLimit))
	rel := &url.URL{Path: "/subjects/" + name + ".json", RawQuery: values.Encode()}

	var payload subjectResponse
	if err := c.doURL(ctx, rel, &payload); err != nil {
		return nil, err
	}
	results := make([]BookSummary, 0, len(payload.Works))
	for _, w := range payload.Works {
		if strings.TrimSpace(w.Key) == "" {
			continue
		}
		results = append(results, w.summary())
	}
	if len(results) == 0 {
		return nil, ErrNoResults
	}
	return results, nil
}

// FetchWork retrieves a work by key. Path prefixes such as "/works/" are
// stripped first.
func (c *Client) FetchWork(ctx context.Context, key string) (*Work, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	id := StripKey(key)
	if id == "" {
		return nil, fmt.Errorf("work key required")
	}
	var record workRecord
	if err := c.do(ctx, "/works/"+id+".json", &record); err != nil {
		return nil, err
	}
	return record.work(id), nil
}

// FetchAuthor retrieves an author by key.
func (c *Client) FetchAuthor(ctx context.Context, key string) (*Author, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	id := StripKey(key)
	if id == "" {
		return nil, fmt.Errorf("author key required")
	}
	var record authorRecord
	if err := c.do(ctx, "/authors/"+id+".json", &record); err != nil {
		return nil, err
	}
	return record.validate(id)
}

func (c *Client) do(ctx context.Context, path string, dest any) error {
	return c.doURL(ctx, &url.URL{Path: path}, dest)
}

func (c *Client) doURL(ctx context.Context, rel *url.URL, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Path: rel.Path, StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

package wikipedia

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, body string, status int) (*Client, *url.Values) {
	t.Helper()
	var got url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/w/api.php", r.URL.Path)
		got = r.URL.Query()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, WithUserAgent("folio-test"), WithTimeout(time.Second))
	require.NoError(t, err)
	return c, &got
}

func TestLookup_ExtractsSummary(t *testing.T) {
	t.Parallel()

	c, got := newTestClient(t, `{"batchcomplete": "", "query": {"pages": {"29135": {
		"pageid": 29135, "ns": 0, "title": "The Hobbit", "index": 1,
		"extract": " The Hobbit is a children's fantasy novel. ",
		"fullurl": "https://en.wikipedia.org/wiki/The_Hobbit",
		"thumbnail": {"source": "https://upload.wikimedia.org/hobbit.jpg", "width": 300, "height": 450},
		"categories": [{"ns": 14, "title": "Category:1937 British novels"}, {"ns": 14, "title": "Category:Middle-earth books"}],
		"langlinks": [{"lang": "fr", "url": "https://fr.wikipedia.org/wiki/Le_Hobbit", "*": "Le Hobbit"}, {"lang": "de", "url": "https://de.wikipedia.org/wiki/Der_Hobbit"}]
	}}}}`, http.StatusOK)

	summary, err := c.Lookup(context.Background(), "The Hobbit J.R.R. Tolkien")
	require.NoError(t, err)

	assert.Equal(t, "The Hobbit J.R.R. Tolkien", got.Get("gsrsearch"))
	assert.Equal(t, "1", got.Get("gsrlimit"))
	assert.Equal(t, "search", got.Get("generator"))
	assert.Equal(t, "extracts|pageimages|categories|langlinks|info", got.Get("prop"))

	assert.Equal(t, "The Hobbit", summary.Title)
	assert.Equal(t, "The Hobbit is a children's fantasy novel.", summary.Extract)
	assert.Equal(t, "https://en.wikipedia.org/wiki/The_Hobbit", summary.URL)
	assert.Equal(t, "https://upload.wikimedia.org/hobbit.jpg", summary.Thumbnail)
	assert.Equal(t, []string{"1937 British novels", "Middle-earth books"}, summary.Categories)
	assert.Equal(t, map[string]string{
		"fr": "https://fr.wikipedia.org/wiki/Le_Hobbit",
		"de": "https://de.wikipedia.org/wiki/Der_Hobbit",
	}, summary.LangLinks)
}

func TestLookup_SentinelPageIsNoPage(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, `{"query": {"pages": {"-1": {"ns": 0, "title": "Nothing", "missing": ""}}}}`, http.StatusOK)
	_, err := c.Lookup(context.Background(), "Nothing")
	require.ErrorIs(t, err, ErrNoPage)
}

func TestLookup_NoQueryBlockIsNoPage(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, `{"batchcomplete": ""}`, http.StatusOK)
	_, err := c.Lookup(context.Background(), "zzzz")
	require.ErrorIs(t, err, ErrNoPage)
}

func TestLookup_PicksLowestIndex(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, `{"query": {"pages": {
		"2": {"pageid": 2, "title": "Second", "index": 2},
		"1": {"pageid": 1, "title": "First", "index": 1}
	}}}`, http.StatusOK)
	summary, err := c.Lookup(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "First", summary.Title)
	assert.Nil(t, summary.Categories)
	assert.Nil(t, summary.LangLinks)
}

func TestLookup_StatusAndDecodeErrors(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, `oops`, http.StatusInternalServerError)
	_, err := c.Lookup(context.Background(), "x")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)

	c, _ = newTestClient(t, `{`, http.StatusOK)
	_, err = c.Lookup(context.Background(), "x")
	require.ErrorContains(t, err, "decode response")
}

func TestLookup_BlankTermSkipsRequest(t *testing.T) {
	c, err := NewClient("http://127.0.0.1:1")
	require.NoError(t, err)
	_, err = c.Lookup(context.Background(), "   ")
	require.ErrorIs(t, err, ErrNoPage)
}

func TestStripNamespace(t *testing.T) {
	assert.Equal(t, "Fantasy novels", StripNamespace("Category:Fantasy novels"))
	assert.Equal(t, "Plain", StripNamespace("Plain"))
	assert.Equal(t, "A:B", StripNamespace("Category:A:B"))
}

type recordingTransport struct {
	userAgent string
}

func (rt *recordingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	rt.userAgent = r.Header.Get("User-Agent")
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(`{"batchcomplete": ""}`)),
		Header:     make(http.Header),
		Request:    r,
	}, nil
}

func TestNewClient_Options(t *testing.T) {
	rt := &recordingTransport{}
	c, err := NewClient("", WithHTTPClient(&http.Client{Transport: rt}), WithUserAgent("folio-test/2"))
	require.NoError(t, err)
	assert.Equal(t, "https://en.wikipedia.org", c.baseURL.String())

	_, err = c.Lookup(context.Background(), "Dune")
	require.ErrorIs(t, err, ErrNoPage)
	assert.Equal(t, "folio-test/2", rt.userAgent)

	c, err = NewClient("en.wikipedia.org", WithTimeout(0), WithUserAgent("  "))
	require.NoError(t, err)
	assert.Equal(t, requestTimeout, c.http.Timeout)
	assert.Equal(t, defaultUserAgent, c.userAgent)
}

func TestSummaryClone(t *testing.T) {
	var nilSummary *Summary
	assert.Nil(t, nilSummary.Clone())

	orig := &Summary{
		Title:      "Dune",
		Categories: []string{"Novels"},
		LangLinks:  map[string]string{"fr": "https://fr.wikipedia.org/wiki/Dune"},
	}
	c := orig.Clone()
	c.Categories[0] = "changed"
	c.LangLinks["de"] = "x"

	assert.Equal(t, "Novels", orig.Categories[0])
	assert.Len(t, orig.LangLinks, 1)
}

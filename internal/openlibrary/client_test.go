package openlibrary

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, WithUserAgent("folio-test/1.0"))
	require.NoError(t, err)
	return c
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestClient_SearchEncodesRequest(t *testing.T) {
	t.Parallel()

	var gotQuery url.Values
	var gotUserAgent string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		gotQuery = r.URL.Query()
		gotUserAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{"numFound": 2, "docs": [
			{"key": "/works/OL1W", "title": "Dune", "author_name": ["Frank Herbert"], "cover_i": 11, "first_publish_year": 1965, "language": ["eng"], "subject": ["Science fiction"]},
			{"key": "/works/OL2W", "title": "Dune Messiah"}
		]}`))
	})

	results, err := c.Search(testContext(t), Filters{Query: " dune ", Language: "ENG", HasCovers: true})
	require.NoError(t, err)

	assert.Equal(t, "dune language:eng", gotQuery.Get("q"))
	assert.Equal(t, searchFields, gotQuery.Get("fields"))
	assert.Equal(t, "20", gotQuery.Get("limit"))
	assert.Equal(t, "true", gotQuery.Get("has_cover"))
	assert.Equal(t, "folio-test/1.0", gotUserAgent)

	require.Len(t, results, 2)
	assert.Equal(t, "/works/OL1W", results[0].Key)
	assert.Equal(t, []string{"Frank Herbert"}, results[0].AuthorNames)
	require.NotNil(t, results[0].CoverID)
	assert.Equal(t, 11, *results[0].CoverID)
	require.NotNil(t, results[0].FirstPublishYear)
	assert.Equal(t, 1965, *results[0].FirstPublishYear)

	// Absent fields stay absent.
	assert.Nil(t, results[1].AuthorNames)
	assert.Nil(t, results[1].CoverID)
	assert.Nil(t, results[1].Languages)
	assert.Nil(t, results[1].FirstPublishYear)
}

func TestClient_SearchPlainTextIsVerbatim(t *testing.T) {
	t.Parallel()

	var gotQ string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQ = r.URL.Query().Get("q")
		assert.False(t, r.URL.Query().Has("has_cover"))
		_, _ = w.Write([]byte(`{"docs": [{"key": "/works/OL1W", "title": "x"}]}`))
	})

	_, err := c.Search(testContext(t), Text("title:\"the hobbit\""))
	require.NoError(t, err)
	assert.Equal(t, "title:\"the hobbit\"", gotQ)
}

func TestClient_SearchZeroDocsIsNoResults(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"numFound": 0, "docs": []}`))
	})

	results, err := c.Search(testContext(t), Text("zzzz"))
	require.ErrorIs(t, err, ErrNoResults)
	assert.Nil(t, results)
}

func TestClient_SearchDropsDocsWithoutKey(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"docs": [{"title": "orphan"}]}`))
	})

	_, err := c.Search(testContext(t), Text("orphan"))
	require.ErrorIs(t, err, ErrNoResults)
}

func TestClient_StatusErrorCarriesCode(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusServiceUnavailable)
	})

	_, err := c.Search(testContext(t), Text("dune"))
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Equal(t, "/search.json", statusErr.Path)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestClient_DecodeError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{`))
	})

	_, err := c.Search(testContext(t), Text("dune"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_BrowseSubject(t *testing.T) {
	t.Parallel()

	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"name": "science fiction", "work_count": 2, "works": [
			{"key": "/works/OL3W", "title": "Foundation", "authors": [{"key": "/authors/OL1A", "name": "Isaac Asimov"}], "cover_id": 42, "first_publish_year": 1951}
		]}`))
	})

	results, err := c.BrowseSubject(testContext(t), " Science Fiction ")
	require.NoError(t, err)
	assert.Equal(t, "/subjects/science_fiction.json", gotPath)
	require.Len(t, results, 1)
	assert.Equal(t, "Foundation", results[0].Title)
	assert.Equal(t, []string{"Isaac Asimov"}, results[0].AuthorNames)
	require.NotNil(t, results[0].CoverID)
	assert.Equal(t, 42, *results[0].CoverID)
}

func TestClient_BrowseSubjectEmpty(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"works": []}`))
	})

	_, err := c.BrowseSubject(testContext(t), "nothing")
	require.ErrorIs(t, err, ErrNoResults)

	_, err = c.BrowseSubject(testContext(t), "  ")
	require.Error(t, err)
}

func TestClient_FetchWorkStripsPrefixAndValidates(t *testing.T) {
	t.Parallel()

	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{
			"key": "/works/OL45883W",
			"title": "The Hobbit",
			"description": {"type": "/type/text", "value": " There and back again. "},
			"subjects": ["Fantasy", " ", "Dragons"],
			"covers": [-1, 14625765, 12345],
			"authors": [{"author": {"key": "/authors/OL26320A"}, "type": {"key": "/type/author_role"}}, {"key": "/authors/OL2A"}],
			"first_publish_date": "September 21, 1937"
		}`))
	})

	work, err := c.FetchWork(testContext(t), "/works/OL45883W")
	require.NoError(t, err)
	assert.Equal(t, "/works/OL45883W.json", gotPath)
	assert.Equal(t, "The Hobbit", work.Title)
	require.NotNil(t, work.Description)
	assert.Equal(t, "There and back again.", *work.Description)
	assert.Equal(t, []string{"Fantasy", "Dragons"}, work.Subjects)
	assert.Equal(t, []int{14625765, 12345}, work.Covers)
	assert.Equal(t, []string{"/authors/OL26320A", "/authors/OL2A"}, work.AuthorKeys)
	require.NotNil(t, work.FirstPublishYear)
	assert.Equal(t, 1937, *work.FirstPublishYear)
	assert.Nil(t, work.PageCount)
}

func TestClient_FetchWorkWithoutTitle(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"key": "/works/OL9W", "covers": [42]}`))
	})

	work, err := c.FetchWork(testContext(t), "OL9W")
	require.NoError(t, err)
	assert.Equal(t, "OL9W", work.Title)
	assert.Equal(t, []int{42}, work.Covers)
}

func TestClient_FetchWorkNotFound(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := c.FetchWork(testContext(t), "OL0W")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = c.FetchWork(testContext(t), "  ")
	require.Error(t, err)
}

func TestClient_FetchAuthor(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/authors/OL1A.json":
			_, _ = w.Write([]byte(`{"key": "/authors/OL1A", "name": "J.R.R. Tolkien"}`))
		case "/authors/OL2A.json":
			_, _ = w.Write([]byte(`{"personal_name": "Christopher Tolkien"}`))
		case "/authors/OL3A.json":
			_, _ = w.Write([]byte(`{"key": "/authors/OL3A"}`))
		default:
			http.NotFound(w, r)
		}
	})

	author, err := c.FetchAuthor(testContext(t), "/authors/OL1A")
	require.NoError(t, err)
	assert.Equal(t, Author{Key: "/authors/OL1A", Name: "J.R.R. Tolkien"}, *author)

	author, err = c.FetchAuthor(testContext(t), "OL2A")
	require.NoError(t, err)
	assert.Equal(t, Author{Key: "/authors/OL2A", Name: "Christopher Tolkien"}, *author)

	_, err = c.FetchAuthor(testContext(t), "OL3A")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "no name"))
}

func TestClient_NilClient(t *testing.T) {
	var c *Client
	_, err := c.Search(context.Background(), Text("x"))
	require.EqualError(t, err, "client is nil")
	_, err = c.FetchRecentChanges(context.Background(), 5)
	require.EqualError(t, err, "client is nil")
}

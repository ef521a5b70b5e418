package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/folio/internal/openlibrary"
)

func catalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search.json", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "nothing" {
			fmt.Fprint(w, `{"numFound":0,"docs":[]}`)
			return
		}
		fmt.Fprint(w, `{"numFound":1,"docs":[{"key":"/works/OL45883W","title":"The Hobbit","author_name":["J.R.R. Tolkien"],"first_publish_year":1937}]}`)
	})
	mux.HandleFunc("/recentchanges.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		fmt.Fprint(w, `[
			{"id":"1","kind":"update","timestamp":"2026-01-02T10:00:00"},
			{"id":"2","kind":"add-book","timestamp":"2026-01-02T10:01:00","comment":"first"},
			{"id":"3","kind":"edit-work","timestamp":"2026-01-02T10:02:00","comment":"second"}
		]`)
	})
	mux.HandleFunc("/works/OL404W.json", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func headlessOptions(t *testing.T, srv *httptest.Server) Options {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	body := fmt.Sprintf("openlibrary_url = %q\nwikipedia_url = %q\nlog_level = \"error\"\n", srv.URL, srv.URL)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return Options{ConfigPath: path}
}

func TestSearchRequest_Query(t *testing.T) {
	plain := SearchRequest{Terms: []string{"the", "hobbit"}}.Query()
	assert.Equal(t, openlibrary.Text("the hobbit"), plain)

	filtered := SearchRequest{Terms: []string{"hobbit"}, Language: "eng", Covers: true}.Query()
	assert.Equal(t, "hobbit language:eng", openlibrary.BuildQuery(filtered))
}

func TestRunSearch_JSON(t *testing.T) {
	srv := catalogServer(t)
	var out, errOut bytes.Buffer

	err := RunSearch(context.Background(), headlessOptions(t, srv), SearchRequest{Terms: []string{"hobbit"}}, "json", Streams{Out: &out, Err: &errOut})
	require.NoError(t, err)

	var books []openlibrary.BookSummary
	require.NoError(t, json.Unmarshal(out.Bytes(), &books))
	require.Len(t, books, 1)
	assert.Equal(t, "The Hobbit", books[0].Title)
	assert.Equal(t, []string{"J.R.R. Tolkien"}, books[0].AuthorNames)
}

func TestRunSearch_NoResultsMessage(t *testing.T) {
	srv := catalogServer(t)
	var out bytes.Buffer

	err := RunSearch(context.Background(), headlessOptions(t, srv), SearchRequest{Terms: []string{"nothing"}}, "table", Streams{Out: &out, Err: &bytes.Buffer{}})
	require.ErrorIs(t, err, openlibrary.ErrNoResults)
	assert.EqualError(t, err, "No books found")
	assert.Empty(t, out.String())
}

func TestRunSearch_RejectsEmptyQueryAndBadFormat(t *testing.T) {
	streams := Streams{Out: &bytes.Buffer{}, Err: &bytes.Buffer{}}
	require.Error(t, RunSearch(context.Background(), Options{}, SearchRequest{}, "table", streams))
	require.Error(t, RunSearch(context.Background(), Options{}, SearchRequest{Terms: []string{"x"}}, "csv", streams))
}

func TestRunRecent_LimitOverride(t *testing.T) {
	srv := catalogServer(t)
	var out bytes.Buffer

	err := RunRecent(context.Background(), headlessOptions(t, srv), 1, "json", Streams{Out: &out, Err: &bytes.Buffer{}})
	require.NoError(t, err)

	var changes []openlibrary.ChangeEvent
	require.NoError(t, json.Unmarshal(out.Bytes(), &changes))
	require.Len(t, changes, 1)
	assert.Equal(t, "2", changes[0].ID)
	assert.Equal(t, "first", changes[0].Comment)
}

func TestRunShow_NotFound(t *testing.T) {
	srv := catalogServer(t)

	err := RunShow(context.Background(), headlessOptions(t, srv), "/works/OL404W", "table", Streams{Out: &bytes.Buffer{}, Err: &bytes.Buffer{}})
	assert.EqualError(t, err, "Book not found")
}

func TestLoadConfig_LogLevelOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := loadConfig(Options{ConfigPath: filepath.Join(t.TempDir(), "none.toml"), LogLevel: "shout"})
	require.Error(t, err)

	cfg, err := loadConfig(Options{ConfigPath: filepath.Join(t.TempDir(), "none.toml"), LogLevel: "debug"})
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", cfg.LogLevel.String())
}

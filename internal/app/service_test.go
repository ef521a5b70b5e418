package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/folio/internal/details"
	"github.com/five82/folio/internal/openlibrary"
	"github.com/five82/folio/internal/state"
)

type fakeCatalog struct {
	mu          sync.Mutex
	search      func(ctx context.Context, q openlibrary.Query) ([]openlibrary.BookSummary, error)
	subjects    map[string][]openlibrary.BookSummary
	recent      []openlibrary.ChangeEvent
	recentErr   error
	recentCalls int
	lastLimit   int
	blockRecent bool
}

func (f *fakeCatalog) Search(ctx context.Context, q openlibrary.Query) ([]openlibrary.BookSummary, error) {
	return f.search(ctx, q)
}

func (f *fakeCatalog) BrowseSubject(_ context.Context, subject string) ([]openlibrary.BookSummary, error) {
	books, ok := f.subjects[subject]
	if !ok {
		return nil, openlibrary.ErrNoResults
	}
	return books, nil
}

func (f *fakeCatalog) FetchWork(context.Context, string) (*openlibrary.Work, error) {
	return nil, errors.New("not used")
}

func (f *fakeCatalog) FetchAuthor(context.Context, string) (*openlibrary.Author, error) {
	return nil, errors.New("not used")
}

func (f *fakeCatalog) FetchRecentChanges(ctx context.Context, limit int) ([]openlibrary.ChangeEvent, error) {
	f.mu.Lock()
	f.recentCalls++
	f.lastLimit = limit
	recent, err, block := f.recent, f.recentErr, f.blockRecent
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return recent, err
}

func (f *fakeCatalog) setBlockRecent(block bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blockRecent = block
}

func (f *fakeCatalog) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recentCalls
}

type fakeLoader struct {
	books map[string]*details.Book
}

func (f fakeLoader) Get(_ context.Context, key string) (*details.Book, error) {
	book, ok := f.books[key]
	if !ok {
		return nil, &openlibrary.StatusError{Path: "/works/" + key + ".json", StatusCode: 404}
	}
	return book, nil
}

func newTestService(catalog *fakeCatalog, loader DetailLoader) *Service {
	return &Service{
		Catalog:     catalog,
		Details:     loader,
		Store:       &state.Store{},
		RecentLimit: 5,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestService_SearchStoresResults(t *testing.T) {
	catalog := &fakeCatalog{search: func(_ context.Context, q openlibrary.Query) ([]openlibrary.BookSummary, error) {
		return []openlibrary.BookSummary{{Key: "/works/OL1W", Title: openlibrary.BuildQuery(q)}}, nil
	}}
	svc := newTestService(catalog, nil)

	results, err := svc.Search(context.Background(), openlibrary.Filters{Query: "dune", Language: "ENG"})
	require.NoError(t, err)
	require.Len(t, results, 1)

	snap := svc.Store.Snapshot()
	assert.False(t, snap.Search.Busy)
	assert.Equal(t, "dune language:eng", snap.Search.Query)
	assert.False(t, snap.Search.Subject)
	assert.Equal(t, results, snap.Search.Results)
	assert.NoError(t, snap.Search.Err)
}

func TestService_SearchNoResultsClearsAndReports(t *testing.T) {
	calls := 0
	catalog := &fakeCatalog{search: func(context.Context, openlibrary.Query) ([]openlibrary.BookSummary, error) {
		calls++
		if calls == 1 {
			return []openlibrary.BookSummary{{Key: "/works/OL1W"}}, nil
		}
		return nil, openlibrary.ErrNoResults
	}}
	svc := newTestService(catalog, nil)

	_, err := svc.Search(context.Background(), openlibrary.Text("dune"))
	require.NoError(t, err)
	_, err = svc.Search(context.Background(), openlibrary.Text("zzzz"))
	require.ErrorIs(t, err, openlibrary.ErrNoResults)

	snap := svc.Store.Snapshot()
	assert.False(t, snap.Search.Busy)
	assert.Nil(t, snap.Search.Results)
	assert.Equal(t, "No books found", Message(snap.Search.Err))
}

func TestService_LateSearchResponseIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	catalog := &fakeCatalog{search: func(_ context.Context, q openlibrary.Query) ([]openlibrary.BookSummary, error) {
		text := openlibrary.BuildQuery(q)
		if text == "slow" {
			close(started)
			<-release
		}
		return []openlibrary.BookSummary{{Key: "/works/" + text, Title: text}}, nil
	}}
	svc := newTestService(catalog, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = svc.Search(context.Background(), openlibrary.Text("slow"))
	}()
	<-started

	_, err := svc.Search(context.Background(), openlibrary.Text("fast"))
	require.NoError(t, err)
	close(release)
	<-done

	snap := svc.Store.Snapshot()
	require.Len(t, snap.Search.Results, 1)
	assert.Equal(t, "fast", snap.Search.Results[0].Title)
	assert.Equal(t, "fast", snap.Search.Query)
	assert.False(t, snap.Search.Busy)
}

func TestService_BrowseSubjectMarksSubject(t *testing.T) {
	catalog := &fakeCatalog{subjects: map[string][]openlibrary.BookSummary{
		"love": {{Key: "/works/OL2W", Title: "Pride and Prejudice"}},
	}}
	svc := newTestService(catalog, nil)

	results, err := svc.BrowseSubject(context.Background(), "love")
	require.NoError(t, err)
	require.Len(t, results, 1)

	snap := svc.Store.Snapshot()
	assert.True(t, snap.Search.Subject)
	assert.Equal(t, "love", snap.Search.Query)
}

func TestService_LoadDetails(t *testing.T) {
	book := &details.Book{BookSummary: openlibrary.BookSummary{Key: "/works/OL1W", Title: "Dune"}}
	svc := newTestService(&fakeCatalog{}, fakeLoader{books: map[string]*details.Book{"OL1W": book}})

	got, err := svc.LoadDetails(context.Background(), "OL1W")
	require.NoError(t, err)
	assert.Same(t, book, got)
	assert.Equal(t, "OL1W", svc.Store.Snapshot().Detail.Key)

	_, err = svc.LoadDetails(context.Background(), "OL404W")
	require.ErrorIs(t, err, openlibrary.ErrNotFound)

	snap := svc.Store.Snapshot()
	assert.False(t, snap.Detail.Busy)
	assert.Nil(t, snap.Detail.Book)
	assert.Equal(t, "Book not found", Message(snap.Detail.Err))
}

func TestService_RefreshRecentUsesLimitAndCountsFailures(t *testing.T) {
	catalog := &fakeCatalog{recent: []openlibrary.ChangeEvent{{ID: "1", Kind: openlibrary.KindAddBook}}}
	svc := newTestService(catalog, nil)

	changes, err := svc.RefreshRecent(context.Background())
	require.NoError(t, err)
	assert.Len(t, changes, 1)
	assert.Equal(t, 5, catalog.lastLimit)

	catalog.recent = nil
	catalog.recentErr = &openlibrary.StatusError{Path: "/recentchanges.json", StatusCode: 503}
	for i := 0; i < 2; i++ {
		_, err = svc.RefreshRecent(context.Background())
		require.Error(t, err)
	}

	snap := svc.Store.Snapshot()
	assert.Empty(t, snap.Recent.Changes)
	assert.True(t, snap.Recent.Stale())
	assert.Equal(t, "Open Library returned status 503", Message(snap.Recent.Err))
}

func TestService_WatchRecentStopsOnStop(t *testing.T) {
	catalog := &fakeCatalog{}
	svc := newTestService(catalog, nil)
	svc.RecentInterval = 5 * time.Millisecond

	stop := svc.WatchRecent(context.Background())
	require.Eventually(t, func() bool { return catalog.calls() >= 2 }, time.Second, time.Millisecond)
	stop()

	after := catalog.calls()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, catalog.calls())
}

func TestService_StoppingWatchDuringRefreshKeepsFeed(t *testing.T) {
	catalog := &fakeCatalog{recent: []openlibrary.ChangeEvent{{ID: "1", Kind: openlibrary.KindAddBook}}}
	svc := newTestService(catalog, nil)

	_, err := svc.RefreshRecent(context.Background())
	require.NoError(t, err)

	catalog.setBlockRecent(true)
	for i := 0; i < 2; i++ {
		before := catalog.calls()
		stop := svc.WatchRecent(context.Background())
		require.Eventually(t, func() bool {
			return catalog.calls() > before && svc.Store.Snapshot().Recent.Busy
		}, time.Second, time.Millisecond)
		stop()
	}

	snap := svc.Store.Snapshot()
	assert.False(t, snap.Recent.Busy)
	assert.Len(t, snap.Recent.Changes, 1)
	assert.NoError(t, snap.Recent.Err)
	assert.Equal(t, 0, snap.Recent.ConsecutiveFailures)
	assert.False(t, snap.Recent.Stale())
}

func TestService_CancelledSearchKeepsResults(t *testing.T) {
	catalog := &fakeCatalog{search: func(ctx context.Context, q openlibrary.Query) ([]openlibrary.BookSummary, error) {
		if openlibrary.BuildQuery(q) == "slow" {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return []openlibrary.BookSummary{{Key: "/works/OL1W", Title: "Dune"}}, nil
	}}
	svc := newTestService(catalog, nil)

	_, err := svc.Search(context.Background(), openlibrary.Text("dune"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Search(ctx, openlibrary.Text("slow"))
	require.ErrorIs(t, err, context.Canceled)

	snap := svc.Store.Snapshot()
	assert.False(t, snap.Search.Busy)
	assert.NoError(t, snap.Search.Err)
	assert.Len(t, snap.Search.Results, 1)
}

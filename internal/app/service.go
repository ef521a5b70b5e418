package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/five82/folio/internal/details"
	"github.com/five82/folio/internal/openlibrary"
	"github.com/five82/folio/internal/state"
)

// DetailLoader assembles a book from a work key.
type DetailLoader interface {
	Get(ctx context.Context, key string) (*details.Book, error)
}

// Service runs catalog operations and records their outcome in the store.
// Each call brackets the request with a Begin/Finish ticket pair, so the
// slice's busy flag is always cleared and late responses are discarded.
type Service struct {
	Catalog        openlibrary.Catalog
	Details        DetailLoader
	Store          *state.Store
	RecentLimit    int
	RecentInterval time.Duration
	Logger         *slog.Logger
}

// Search runs a full-text search and stores the results.
func (s *Service) Search(ctx context.Context, q openlibrary.Query) ([]openlibrary.BookSummary, error) {
	label := openlibrary.BuildQuery(q)
	ticket := s.Store.BeginSearch(label, false)
	s.log().Debug("search started", "query", label)

	results, err := s.Catalog.Search(ctx, q)
	if canceled(ctx, err) {
		s.log().Debug("search cancelled", "query", label)
		s.Store.CancelSearch(ticket)
		return nil, err
	}
	s.logResult("search", "query", label, len(results), err)

	s.Store.FinishSearch(ticket, results, err)
	return results, err
}

// BrowseSubject lists works filed under subject and stores them as the
// current search results.
func (s *Service) BrowseSubject(ctx context.Context, subject string) ([]openlibrary.BookSummary, error) {
	ticket := s.Store.BeginSearch(subject, true)
	s.log().Debug("subject browse started", "subject", subject)

	results, err := s.Catalog.BrowseSubject(ctx, subject)
	if canceled(ctx, err) {
		s.log().Debug("subject browse cancelled", "subject", subject)
		s.Store.CancelSearch(ticket)
		return nil, err
	}
	s.logResult("subject browse", "subject", subject, len(results), err)

	s.Store.FinishSearch(ticket, results, err)
	return results, err
}

// LoadDetails assembles the book for key and stores it as the detail page.
func (s *Service) LoadDetails(ctx context.Context, key string) (*details.Book, error) {
	ticket := s.Store.BeginDetail(key)
	s.log().Debug("detail load started", "key", key)

	book, err := s.Details.Get(ctx, key)
	if canceled(ctx, err) {
		s.log().Debug("detail load cancelled", "key", key)
		s.Store.CancelDetail(ticket)
		return nil, err
	}
	if err != nil {
		s.log().Warn("detail load failed", "key", key, "error", err)
	} else {
		s.log().Info("detail loaded", "key", key, "authors", len(book.Authors), "encyclopedia", book.Encyclopedia != nil)
	}

	s.Store.FinishDetail(ticket, book, err)
	return book, err
}

// RefreshRecent fetches the recent changes feed.
func (s *Service) RefreshRecent(ctx context.Context) ([]openlibrary.ChangeEvent, error) {
	ticket := s.Store.BeginRecent()
	s.log().Debug("recent changes refresh started", "limit", s.RecentLimit)

	changes, err := s.Catalog.FetchRecentChanges(ctx, s.RecentLimit)
	if canceled(ctx, err) {
		s.log().Debug("recent changes refresh cancelled")
		s.Store.CancelRecent(ticket)
		return nil, err
	}
	if err != nil {
		s.log().Warn("recent changes refresh failed", "error", err)
	} else {
		s.log().Debug("recent changes refreshed", "changes", len(changes))
	}

	s.Store.FinishRecent(ticket, changes, err)
	return changes, err
}

// WatchRecent refreshes the feed now and then every RecentInterval until ctx
// ends or the returned stop is called.
func (s *Service) WatchRecent(ctx context.Context) (stop func()) {
	return StartPoller(ctx, s.RecentInterval, func(ctx context.Context) {
		_, _ = s.RefreshRecent(ctx)
	})
}

func (s *Service) logResult(op, key, value string, count int, err error) {
	switch {
	case err == nil:
		s.log().Info(op+" finished", key, value, "results", count)
	case errors.Is(err, openlibrary.ErrNoResults):
		s.log().Info(op+" found nothing", key, value)
	default:
		s.log().Warn(op+" failed", key, value, "error", err)
	}
}

// canceled reports whether err comes from the caller giving up rather than
// from the catalog.
func canceled(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	return ctx.Err() != nil || errors.Is(err, context.Canceled)
}

func (s *Service) log() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

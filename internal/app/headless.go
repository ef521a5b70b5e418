package app

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/five82/folio/internal/openlibrary"
	"github.com/five82/folio/internal/output"
)

// SearchRequest describes a headless search. Terms are joined with spaces.
type SearchRequest struct {
	Terms    []string
	Language string
	Year     int
	Type     string
	Covers   bool
}

// Query returns plain text when no filter is set and structured filters
// otherwise.
func (r SearchRequest) Query() openlibrary.Query {
	return openlibrary.NewQuery(strings.Join(r.Terms, " "), openlibrary.Filters{
		Language:  r.Language,
		Year:      r.Year,
		Type:      r.Type,
		HasCovers: r.Covers,
	})
}

// Streams are the writers a headless command uses.
type Streams struct {
	Out io.Writer
	Err io.Writer
}

// RunSearch prints the results of a full-text search.
func RunSearch(ctx context.Context, opts Options, req SearchRequest, format string, streams Streams) error {
	f, err := output.ParseFormat(format)
	if err != nil {
		return err
	}
	q := req.Query()
	if strings.TrimSpace(openlibrary.BuildQuery(q)) == "" {
		return errors.New("search needs a query or at least one filter")
	}
	svc, err := headless(opts, streams.Err)
	if err != nil {
		return err
	}
	results, err := svc.Search(ctx, q)
	if err != nil {
		return friendly(err)
	}
	return output.Render(streams.Out, f, results)
}

// RunSubject prints the works filed under a subject.
func RunSubject(ctx context.Context, opts Options, subject, format string, streams Streams) error {
	f, err := output.ParseFormat(format)
	if err != nil {
		return err
	}
	svc, err := headless(opts, streams.Err)
	if err != nil {
		return err
	}
	results, err := svc.BrowseSubject(ctx, subject)
	if err != nil {
		return friendly(err)
	}
	return output.Render(streams.Out, f, results)
}

// RunShow prints the assembled detail page of a work.
func RunShow(ctx context.Context, opts Options, key, format string, streams Streams) error {
	f, err := output.ParseFormat(format)
	if err != nil {
		return err
	}
	svc, err := headless(opts, streams.Err)
	if err != nil {
		return err
	}
	book, err := svc.LoadDetails(ctx, key)
	if err != nil {
		return friendly(err)
	}
	return output.Render(streams.Out, f, book)
}

// RunRecent prints the recent changes feed. A positive limit overrides
// recent_limit from the config.
func RunRecent(ctx context.Context, opts Options, limit int, format string, streams Streams) error {
	f, err := output.ParseFormat(format)
	if err != nil {
		return err
	}
	svc, err := headless(opts, streams.Err)
	if err != nil {
		return err
	}
	if limit > 0 {
		svc.RecentLimit = limit
	}
	changes, err := svc.RefreshRecent(ctx)
	if err != nil {
		return friendly(err)
	}
	return output.Render(streams.Out, f, changes)
}

package details

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/five82/folio/internal/openlibrary"
	"github.com/five82/folio/internal/wikipedia"
)

// Book is a work merged with its resolved authors and an optional
// encyclopedia summary.
type Book struct {
	openlibrary.BookSummary `yaml:",inline"`

	Description  *string              `json:"description,omitempty" yaml:"description,omitempty"`
	Publishers   []string             `json:"publishers,omitempty" yaml:"publishers,omitempty"`
	PageCount    *int                 `json:"page_count,omitempty" yaml:"page_count,omitempty"`
	ISBN13       []string             `json:"isbn_13,omitempty" yaml:"isbn_13,omitempty"`
	ISBN10       []string             `json:"isbn_10,omitempty" yaml:"isbn_10,omitempty"`
	Covers       []int                `json:"covers,omitempty" yaml:"covers,omitempty"`
	Authors      []openlibrary.Author `json:"authors,omitempty" yaml:"authors,omitempty"`
	Encyclopedia *wikipedia.Summary   `json:"encyclopedia,omitempty" yaml:"encyclopedia,omitempty"`
}

// Clone returns a deep copy of b. A nil book clones to nil.
func (b *Book) Clone() *Book {
	if b == nil {
		return nil
	}
	c := *b
	c.BookSummary = b.BookSummary.Clone()
	if b.Description != nil {
		desc := *b.Description
		c.Description = &desc
	}
	if b.PageCount != nil {
		pages := *b.PageCount
		c.PageCount = &pages
	}
	c.Publishers = slices.Clone(b.Publishers)
	c.ISBN13 = slices.Clone(b.ISBN13)
	c.ISBN10 = slices.Clone(b.ISBN10)
	c.Covers = slices.Clone(b.Covers)
	c.Authors = slices.Clone(b.Authors)
	c.Encyclopedia = b.Encyclopedia.Clone()
	return &c
}

// WorkSource resolves works and authors.
type WorkSource interface {
	FetchWork(ctx context.Context, key string) (*openlibrary.Work, error)
	FetchAuthor(ctx context.Context, key string) (*openlibrary.Author, error)
}

// Encyclopedia finds a summary page for a search term.
type Encyclopedia interface {
	Lookup(ctx context.Context, term string) (*wikipedia.Summary, error)
}

// Assembler builds Book values from a work key.
type Assembler struct {
	works         WorkSource
	encyclopedia  Encyclopedia
	lookupTimeout time.Duration
	logger        *slog.Logger
}

const defaultLookupTimeout = 5 * time.Second

// NewAssembler wires the detail stages. encyclopedia may be nil, in which case
// the enrichment stage is skipped.
func NewAssembler(works WorkSource, encyclopedia Encyclopedia, lookupTimeout time.Duration, logger *slog.Logger) *Assembler {
	if lookupTimeout <= 0 {
		lookupTimeout = defaultLookupTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		works:         works,
		encyclopedia:  encyclopedia,
		lookupTimeout: lookupTimeout,
		logger:        logger,
	}
}

// Get loads the work, resolves its authors concurrently and then attempts the
// encyclopedia lookup. Only a failure to load the work is returned.
func (a *Assembler) Get(ctx context.Context, workKey string) (*Book, error) {
	if a == nil || a.works == nil {
		return nil, fmt.Errorf("assembler is nil")
	}

	work, err := a.works.FetchWork(ctx, workKey)
	if err != nil {
		return nil, fmt.Errorf("fetch work %s: %w", openlibrary.StripKey(workKey), err)
	}

	authors := a.resolveAuthors(ctx, work.AuthorKeys)
	book := merge(work, authors)
	book.Encyclopedia = a.lookup(ctx, searchTerm(work.Title, authors))
	return book, nil
}

// resolveAuthors fetches every author in parallel. Failed lookups are dropped;
// the rest keep the work's reference order.
func (a *Assembler) resolveAuthors(ctx context.Context, keys []string) []openlibrary.Author {
	if len(keys) == 0 {
		return nil
	}
	resolved := make([]*openlibrary.Author, len(keys))

	var g errgroup.Group
	for i, key := range keys {
		g.Go(func() error {
			author, err := a.works.FetchAuthor(ctx, key)
			if err != nil {
				a.logger.Debug("author lookup failed", "author", key, "error", err)
				return nil
			}
			resolved[i] = author
			return nil
		})
	}
	_ = g.Wait()

	var authors []openlibrary.Author
	for _, author := range resolved {
		if author != nil {
			authors = append(authors, *author)
		}
	}
	return authors
}

// lookup runs the best-effort enrichment under its own deadline.
func (a *Assembler) lookup(ctx context.Context, term string) *wikipedia.Summary {
	if a.encyclopedia == nil || term == "" {
		return nil
	}
	lookupCtx, cancel := context.WithTimeout(ctx, a.lookupTimeout)
	defer cancel()

	summary, err := a.encyclopedia.Lookup(lookupCtx, term)
	if err != nil {
		a.logger.Debug("encyclopedia lookup skipped", "term", term, "error", err)
		return nil
	}
	return summary
}

func searchTerm(title string, authors []openlibrary.Author) string {
	parts := []string{strings.TrimSpace(title)}
	if len(authors) > 0 {
		parts = append(parts, strings.TrimSpace(authors[0].Name))
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func merge(work *openlibrary.Work, authors []openlibrary.Author) *Book {
	book := &Book{
		BookSummary: openlibrary.BookSummary{
			Key:              work.Key,
			Title:            work.Title,
			Languages:        slices.Clone(work.Languages),
			FirstPublishYear: work.FirstPublishYear,
			Subjects:         slices.Clone(work.Subjects),
		},
		Description: work.Description,
		Publishers:  slices.Clone(work.Publishers),
		PageCount:   work.PageCount,
		ISBN13:      slices.Clone(work.ISBN13),
		ISBN10:      slices.Clone(work.ISBN10),
		Covers:      slices.Clone(work.Covers),
		Authors:     authors,
	}
	if len(work.Covers) > 0 {
		cover := work.Covers[0]
		book.CoverID = &cover
	}
	for _, author := range authors {
		book.AuthorNames = append(book.AuthorNames, author.Name)
	}
	return book
}

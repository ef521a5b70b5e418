// Package output renders catalog data for the headless commands as a table,
// JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"github.com/five82/folio/internal/details"
	"github.com/five82/folio/internal/openlibrary"
)

// Format selects the output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Formats lists the accepted format names.
var Formats = []string{string(FormatTable), string(FormatJSON), string(FormatYAML)}

const (
	descriptionWidth = 72
	maxSubjects      = 10
)

// now is swapped in tests.
var now = time.Now

// ParseFormat validates a format name. Empty means table.
func ParseFormat(value string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(value))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want %s)", value, strings.Join(Formats, ", "))
	}
}

// Render writes v to w. Tables support []openlibrary.BookSummary,
// *details.Book and []openlibrary.ChangeEvent; JSON and YAML accept anything.
func Render(w io.Writer, format Format, v any) error {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatTable, "":
		return renderTable(w, v)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func renderTable(w io.Writer, v any) error {
	switch val := v.(type) {
	case []openlibrary.BookSummary:
		summaryTable(w, val)
	case *details.Book:
		if val == nil {
			return fmt.Errorf("no book to render")
		}
		bookTable(w, val)
	case []openlibrary.ChangeEvent:
		changeTable(w, val)
	default:
		return fmt.Errorf("no table layout for %T", v)
	}
	return nil
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Options.SeparateRows = false
	return t
}

func summaryTable(w io.Writer, books []openlibrary.BookSummary) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Title", "Authors", "Year", "Cover"})
	for _, b := range books {
		t.AppendRow(table.Row{
			b.ID(),
			b.Title,
			strings.Join(b.AuthorNames, ", "),
			optionalInt(b.FirstPublishYear),
			optionalInt(b.CoverID),
		})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d books", len(books))})
	t.Render()
}

type field struct {
	label string
	value string
}

func bookTable(w io.Writer, b *details.Book) {
	t := newTable(w)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: descriptionWidth, WidthMaxEnforcer: text.WrapSoft},
	})

	authors := make([]string, 0, len(b.Authors))
	for _, a := range b.Authors {
		authors = append(authors, a.Name)
	}
	subjects := b.Subjects
	if len(subjects) > maxSubjects {
		subjects = subjects[:maxSubjects]
	}

	rows := []field{
		{"Key", b.Key},
		{"Title", b.Title},
		{"Authors", strings.Join(authors, ", ")},
		{"First published", optionalInt(b.FirstPublishYear)},
		{"Cover", optionalInt(b.CoverID)},
		{"Description", optionalString(b.Description)},
		{"Subjects", strings.Join(subjects, ", ")},
		{"Publishers", strings.Join(b.Publishers, ", ")},
		{"Pages", optionalInt(b.PageCount)},
		{"ISBN-13", strings.Join(b.ISBN13, ", ")},
		{"ISBN-10", strings.Join(b.ISBN10, ", ")},
	}
	if enc := b.Encyclopedia; enc != nil {
		rows = append(rows,
			field{"Encyclopedia", enc.Title},
			field{"Summary", enc.Extract},
			field{"URL", enc.URL},
		)
	}
	for _, r := range rows {
		if r.value == "" {
			continue
		}
		t.AppendRow(table.Row{r.label, r.value})
	}
	t.Render()
}

func changeTable(w io.Writer, changes []openlibrary.ChangeEvent) {
	t := newTable(w)
	t.AppendHeader(table.Row{"When", "Change", "Author", "Comment"})
	current := now()
	for _, c := range changes {
		author := ""
		if c.Author != nil {
			author = openlibrary.StripKey(*c.Author)
		}
		t.AppendRow(table.Row{
			RelativeTime(c.Timestamp, current),
			openlibrary.KindLabel(c.Kind),
			author,
			c.Comment,
		})
	}
	t.Render()
}

// RelativeTime renders ts relative to ref, e.g. "3 minutes ago". The zero
// time renders as "unknown".
func RelativeTime(ts, ref time.Time) string {
	if ts.IsZero() {
		return "unknown"
	}
	return humanize.RelTime(ts, ref, "ago", "from now")
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func optionalString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

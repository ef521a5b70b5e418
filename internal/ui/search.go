package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/folio/internal/openlibrary"
)

// handleSearchInput handles keys while the query box has focus.
func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		q := openlibrary.NewQuery(m.searchInput.Value(), m.filters)
		if strings.TrimSpace(openlibrary.BuildQuery(q)) == "" {
			return m, nil
		}
		m.searchInput.Blur()
		m.selectedRow = 0
		return m, m.searchCmd(q)

	case key.Matches(msg, m.keys.Escape):
		m.searchInput.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		m.searchInput.Blur()
		cmd := m.setView(m.nextView(1))
		return m, cmd
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleSearchKey processes keyboard input for the search view.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	results := m.snapshot.Search.Results

	switch {
	case key.Matches(msg, m.keys.Focus):
		m.searchInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Confirm):
		return m.openSelected()

	case key.Matches(msg, m.keys.Subject):
		subject := strings.TrimSpace(m.searchInput.Value())
		if subject == "" {
			return m, nil
		}
		m.selectedRow = 0
		return m, m.browseCmd(subject)

	case key.Matches(msg, m.keys.Filters):
		m.modal = newFilterModal(m.filters)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.selectedRow < len(results)-1 {
			m.selectedRow++
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.selectedRow > 0 {
			m.selectedRow--
		}
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.selectedRow = 0
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.selectedRow = max(len(results)-1, 0)
		return m, nil
	}
	return m, nil
}

// openSelected switches to the detail view and loads the selected book.
func (m Model) openSelected() (tea.Model, tea.Cmd) {
	results := m.snapshot.Search.Results
	if m.selectedRow < 0 || m.selectedRow >= len(results) {
		return m, nil
	}
	bookKey := results[m.selectedRow].Key
	viewCmd := m.setView(ViewDetail)
	return m, tea.Batch(viewCmd, m.loadDetailsCmd(bookKey))
}

func (m Model) selectedBook() *openlibrary.BookSummary {
	results := m.snapshot.Search.Results
	if m.selectedRow < 0 || m.selectedRow >= len(results) {
		return nil
	}
	return &results[m.selectedRow]
}

// renderSearch renders the query box, result list and, on wide terminals,
// a preview of the selected result.
func (m Model) renderSearch() string {
	height := m.contentHeight()
	title := "Search"
	if m.snapshot.Search.Subject && m.snapshot.Search.Query != "" {
		title = "Subject: " + m.snapshot.Search.Query
	}

	if m.width < LayoutSplitWidth {
		return m.renderBox(title, m.renderSearchContent(m.width-2, height-2), m.width, height, true)
	}

	listWidth := m.width * 3 / 5
	previewWidth := m.width - listWidth
	list := m.renderBox(title, m.renderSearchContent(listWidth-2, height-2), listWidth, height, true)
	preview := m.renderBox("Preview", m.renderPreview(previewWidth-2), previewWidth, height, false)
	return lipgloss.JoinHorizontal(lipgloss.Top, list, preview)
}

// renderSearchContent renders the inner lines of the search box.
func (m Model) renderSearchContent(width, height int) string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	bg := NewBgStyle(m.theme.FocusBg)
	search := m.snapshot.Search

	lines := []string{
		bg.Space() + m.searchInput.View(),
		bg.Space() + bg.Render("Filters:", styles.MutedText) + bg.Space() + bg.Render(m.filterSummary(), styles.FaintText),
		"",
	}

	switch {
	case search.Busy:
		verb := "Searching for"
		if search.Subject {
			verb = "Browsing subject"
		}
		lines = append(lines, bg.Space()+bg.Render(fmt.Sprintf("%s %q...", verb, search.Query), styles.WarningText))
		return strings.Join(lines, "\n")

	case search.Err != nil:
		lines = append(lines, bg.Space()+bg.Render(m.errText(search.Err), styles.DangerText))
		return strings.Join(lines, "\n")

	case len(search.Results) == 0:
		lines = append(lines, bg.Space()+bg.Render("Type a query and press Enter, or press s to browse it as a subject", styles.MutedText))
		return strings.Join(lines, "\n")
	}

	rows := max(height-len(lines)-1, 1)
	start := 0
	if m.selectedRow >= rows {
		start = m.selectedRow - rows + 1
	}
	end := min(start+rows, len(search.Results))

	selBg := NewBgStyle(m.theme.SelectionBg)
	selStyles := m.theme.Styles().WithBackground(m.theme.SelectionBg)
	for i := start; i < end; i++ {
		book := search.Results[i]
		if i == m.selectedRow {
			lines = append(lines, selBg.FillLine(m.resultRow(book, width, selStyles, selBg, "›"), width))
		} else {
			lines = append(lines, m.resultRow(book, width, styles, bg, " "))
		}
	}

	noun := "results"
	if len(search.Results) == 1 {
		noun = "result"
	}
	footer := fmt.Sprintf("%d %s for %q", len(search.Results), noun, search.Query)
	lines = append(lines, bg.Space()+bg.Render(footer, styles.FaintText))
	return strings.Join(lines, "\n")
}

// resultRow renders one result as "› Title  Authors  Year".
func (m Model) resultRow(book openlibrary.BookSummary, width int, styles Styles, bg BgStyle, marker string) string {
	year := ""
	if book.FirstPublishYear != nil {
		year = strconv.Itoa(*book.FirstPublishYear)
	}
	authors := strings.Join(book.AuthorNames, ", ")

	titleWidth := max(width/2, 10)
	authorWidth := max(width-titleWidth-12, 5)

	row := bg.Space() + bg.Render(marker, styles.AccentText) + bg.Space() +
		bg.Render(truncate(ternary(book.Title == "", book.ID(), book.Title), titleWidth), styles.Text)
	if authors != "" {
		row += bg.Spaces(2) + bg.Render(truncate(authors, authorWidth), styles.MutedText)
	}
	if year != "" {
		row += bg.Spaces(2) + bg.Render(year, styles.FaintText)
	}
	return row
}

// renderPreview renders the selected result in the side pane.
func (m Model) renderPreview(width int) string {
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	bg := NewBgStyle(m.theme.SurfaceAlt)

	book := m.selectedBook()
	if book == nil {
		return bg.Space() + bg.Render("Nothing selected", styles.FaintText)
	}

	lines := []string{
		bg.Space() + bg.Render(truncate(book.Title, width-2), styles.Text.Bold(true)),
	}
	if len(book.AuthorNames) > 0 {
		lines = append(lines, bg.Space()+bg.Render("by "+truncate(strings.Join(book.AuthorNames, ", "), width-5), styles.MutedText))
	}
	lines = append(lines, "")

	row := func(label, value string) {
		if value == "" {
			return
		}
		lines = append(lines, bg.Space()+bg.Render(fmt.Sprintf("%-10s", label), styles.FaintText)+bg.Space()+
			bg.Render(truncate(value, width-13), styles.Text))
	}
	row("Key", book.ID())
	if book.FirstPublishYear != nil {
		row("Published", strconv.Itoa(*book.FirstPublishYear))
	}
	row("Languages", strings.Join(book.Languages, ", "))
	if book.CoverID != nil {
		row("Cover", openlibrary.CoverURL(*book.CoverID, "M"))
	}
	if len(book.Subjects) > 0 {
		subjects := book.Subjects
		if len(subjects) > 5 {
			subjects = subjects[:5]
		}
		row("Subjects", strings.Join(subjects, ", "))
	}

	lines = append(lines, "", bg.Space()+bg.Render("enter opens the full record", styles.FaintText))
	return strings.Join(lines, "\n")
}

// filterSummary describes the active search filters.
func (m Model) filterSummary() string {
	f := m.filters
	parts := []string{}
	if f.Language != "" {
		parts = append(parts, "lang="+f.Language)
	}
	if f.Year > 0 {
		parts = append(parts, "year="+strconv.Itoa(f.Year))
	}
	if f.Type != "" {
		parts = append(parts, "type="+f.Type)
	}
	if f.HasCovers {
		parts = append(parts, "covers only")
	}
	if len(parts) == 0 {
		return "none (F to edit)"
	}
	return strings.Join(parts, " · ")
}

// Action commands. Outcomes reach the model through the store.

func (m Model) searchCmd(q openlibrary.Query) tea.Cmd {
	if m.actions == nil {
		return nil
	}
	actions, ctx := m.actions, m.ctx
	return func() tea.Msg {
		_, err := actions.Search(ctx, q)
		return actionDoneMsg{err: err}
	}
}

func (m Model) browseCmd(subject string) tea.Cmd {
	if m.actions == nil {
		return nil
	}
	actions, ctx := m.actions, m.ctx
	return func() tea.Msg {
		_, err := actions.BrowseSubject(ctx, subject)
		return actionDoneMsg{err: err}
	}
}

func (m Model) loadDetailsCmd(bookKey string) tea.Cmd {
	if m.actions == nil || bookKey == "" {
		return nil
	}
	actions, ctx := m.actions, m.ctx
	return func() tea.Msg {
		_, err := actions.LoadDetails(ctx, bookKey)
		return actionDoneMsg{err: err}
	}
}

func (m Model) refreshRecentCmd() tea.Cmd {
	if m.actions == nil {
		return nil
	}
	actions, ctx := m.actions, m.ctx
	return func() tea.Msg {
		_, err := actions.RefreshRecent(ctx)
		return actionDoneMsg{err: err}
	}
}

package ui

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/folio/internal/details"
	"github.com/five82/folio/internal/openlibrary"
)

// handleDetailKey processes keyboard input for the detail view.
func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		cmd := m.setView(ViewSearch)
		return m, cmd

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadDetailsCmd(m.snapshot.Detail.Key)

	case key.Matches(msg, m.keys.Down):
		m.detailViewport.ScrollDown(1)
	case key.Matches(msg, m.keys.Up):
		m.detailViewport.ScrollUp(1)
	case key.Matches(msg, m.keys.Top):
		m.detailViewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.detailViewport.GotoBottom()
	case key.Matches(msg, m.keys.HalfPageDown):
		m.detailViewport.HalfPageDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		m.detailViewport.HalfPageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.detailViewport.PageDown()
	case key.Matches(msg, m.keys.PageUp):
		m.detailViewport.PageUp()
	}
	return m, nil
}

// updateDetailViewport sizes the detail viewport and refreshes its content
// when the rendered record changed.
func (m *Model) updateDetailViewport() {
	if !m.ready {
		return
	}
	width := max(m.width-2, 10)
	height := max(m.contentHeight()-2, 1)
	if m.detailViewport.Width == 0 {
		m.detailViewport = viewport.New(width, height)
	}
	m.detailViewport.Width = width
	m.detailViewport.Height = height
	m.detailViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))

	content := m.renderDetailContent(width)
	if content == m.detailContent {
		return
	}
	m.detailContent = content
	m.detailViewport.SetContent(content)
	if bookKey := m.snapshot.Detail.Key; bookKey != m.detailKey {
		m.detailKey = bookKey
		m.detailViewport.GotoTop()
	}
}

// renderDetail renders the detail view.
func (m Model) renderDetail() string {
	title := "Detail"
	if bookKey := m.snapshot.Detail.Key; bookKey != "" {
		title = "Detail · " + openlibrary.StripKey(bookKey)
	}
	if m.detailViewport.TotalLineCount() > m.detailViewport.Height {
		title += fmt.Sprintf(" (%.0f%%)", m.detailViewport.ScrollPercent()*100)
	}
	return m.renderBox(title, m.detailViewport.View(), m.width, m.contentHeight(), true)
}

// renderDetailContent renders the full record for the viewport.
func (m Model) renderDetailContent(width int) string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	bg := NewBgStyle(m.theme.FocusBg)
	detail := m.snapshot.Detail
	textWidth := max(width-2, 10)

	message := func(text string, style lipgloss.Style) string {
		return bg.Space() + bg.Render(text, style)
	}

	switch {
	case detail.Busy:
		return message("Loading "+openlibrary.StripKey(detail.Key)+"...", styles.WarningText)
	case detail.Err != nil:
		return message(m.errText(detail.Err), styles.DangerText)
	case detail.Book == nil:
		return message("Select a book in the search view and press Enter", styles.MutedText)
	}

	book := detail.Book
	var lines []string
	add := func(line string) { lines = append(lines, line) }
	paragraph := func(text string, style lipgloss.Style) {
		wrapped := style.Width(textWidth).Render(strings.TrimSpace(text))
		for _, line := range strings.Split(wrapped, "\n") {
			add(bg.Space() + line)
		}
	}
	heading := func(text string) {
		add("")
		add(bg.Space() + bg.Render(text, styles.AccentText.Bold(true)))
	}
	field := func(label, value string) {
		if value == "" {
			return
		}
		add(bg.Space() + bg.Render(fmt.Sprintf("%-16s", label), styles.MutedText) +
			bg.Render(truncate(value, max(textWidth-16, 10)), styles.Text))
	}

	paragraph(book.Title, styles.Text.Bold(true))
	if len(book.AuthorNames) > 0 {
		paragraph("by "+strings.Join(book.AuthorNames, ", "), styles.MutedText)
	}
	add("")

	field("Key", book.ID())
	if book.FirstPublishYear != nil {
		field("First published", strconv.Itoa(*book.FirstPublishYear))
	}
	field("Languages", strings.Join(book.Languages, ", "))
	if book.PageCount != nil {
		field("Pages", strconv.Itoa(*book.PageCount))
	}
	field("Publishers", strings.Join(book.Publishers, ", "))
	field("ISBN-13", strings.Join(book.ISBN13, ", "))
	field("ISBN-10", strings.Join(book.ISBN10, ", "))
	if book.CoverID != nil {
		field("Cover", openlibrary.CoverURL(*book.CoverID, "L"))
		if extra := len(book.Covers) - 1; extra > 0 {
			field("", fmt.Sprintf("+%d more covers", extra))
		}
	}

	if book.Description != nil {
		heading("Description")
		paragraph(*book.Description, styles.Text)
	}

	if len(book.Subjects) > 0 {
		heading("Subjects")
		paragraph(subjectList(book.Subjects, MaxDetailSubjects), styles.Text)
	}

	heading("Encyclopedia")
	renderEncyclopedia(book, add, paragraph, field, bg, styles)

	return strings.Join(lines, "\n")
}

// renderEncyclopedia renders the optional encyclopedia summary.
func renderEncyclopedia(
	book *details.Book,
	add func(string),
	paragraph func(string, lipgloss.Style),
	field func(string, string),
	bg BgStyle,
	styles Styles,
) {
	summary := book.Encyclopedia
	if summary == nil {
		add(bg.Space() + bg.Render("No encyclopedia entry", styles.FaintText))
		return
	}

	paragraph(summary.Title, styles.Text.Bold(true))
	if summary.Extract != "" {
		paragraph(summary.Extract, styles.Text)
	}
	add("")
	field("Article", summary.URL)
	field("Image", summary.Thumbnail)
	if len(summary.Categories) > 0 {
		field("Categories", subjectList(summary.Categories, 5))
	}
	if len(summary.LangLinks) > 0 {
		langs := slices.Sorted(maps.Keys(summary.LangLinks))
		field("Also in", strings.Join(langs, ", "))
	}
}

// subjectList joins the first limit values and notes how many were left out.
func subjectList(values []string, limit int) string {
	if limit <= 0 || len(values) <= limit {
		return strings.Join(values, ", ")
	}
	return fmt.Sprintf("%s (+%d more)", strings.Join(values[:limit], ", "), len(values)-limit)
}

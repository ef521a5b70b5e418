package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/folio/internal/openlibrary"
	"github.com/five82/folio/internal/output"
)

// handleRecentKey processes keyboard input for the recent changes view.
func (m Model) handleRecentKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshRecentCmd()
	case key.Matches(msg, m.keys.Escape):
		cmd := m.setView(ViewSearch)
		return m, cmd
	}
	return m, nil
}

// renderRecent renders the recent changes feed.
func (m Model) renderRecent() string {
	height := m.contentHeight()
	title := "Recent Changes"
	if n := len(m.snapshot.Recent.Changes); n > 0 {
		title = fmt.Sprintf("Recent Changes (%d)", n)
	}
	return m.renderBox(title, m.renderRecentContent(m.width-2), m.width, height, true)
}

func (m Model) renderRecentContent(width int) string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	bg := NewBgStyle(m.theme.FocusBg)
	recent := m.snapshot.Recent

	var lines []string
	add := func(line string) { lines = append(lines, line) }

	// Status line
	switch {
	case recent.Busy:
		add(bg.Space() + bg.Render("Refreshing...", styles.WarningText))
	case recent.UpdatedAt.IsZero():
		add(bg.Space() + bg.Render("Waiting for the first refresh", styles.MutedText))
	default:
		add(bg.Space() + bg.Render("Updated", styles.MutedText) + bg.Space() +
			bg.Render(recent.UpdatedAt.Format("15:04:05"), styles.Text) + bg.Space() +
			bg.Render("("+output.RelativeTime(recent.UpdatedAt, m.now)+")", styles.FaintText))
	}
	if recent.Stale() {
		add(bg.Space() + bg.Render(
			fmt.Sprintf("Feed unavailable: %d refreshes failed in a row", recent.ConsecutiveFailures),
			styles.DangerText))
	}
	add("")

	if recent.Err != nil {
		add(bg.Space() + bg.Render(m.errText(recent.Err), styles.DangerText))
		return strings.Join(lines, "\n")
	}
	if len(recent.Changes) == 0 {
		if !recent.Busy && !recent.UpdatedAt.IsZero() {
			add(bg.Space() + bg.Render("No recent changes", styles.MutedText))
		}
		return strings.Join(lines, "\n")
	}

	textWidth := max(width-4, 10)
	for _, change := range recent.Changes {
		lines = append(lines, m.changeLines(change, textWidth, styles, bg)...)
		add("")
	}
	return strings.Join(lines, "\n")
}

// changeLines renders one change as a badge line, its comment and the
// touched records.
func (m Model) changeLines(change openlibrary.ChangeEvent, width int, styles Styles, bg BgStyle) []string {
	badge := styles.KindStyle(change.Kind).Render(openlibrary.KindLabel(change.Kind))
	header := bg.Space() + badge + bg.Space() +
		bg.Render(output.RelativeTime(change.Timestamp, m.now), styles.MutedText)
	if change.Author != nil {
		header += bg.Space() + bg.Render("by", styles.FaintText) + bg.Space() +
			bg.Render(openlibrary.StripKey(*change.Author), styles.AccentText)
	}

	lines := []string{header}
	if comment := strings.TrimSpace(change.Comment); comment != "" {
		lines = append(lines, bg.Spaces(3)+bg.Render(truncate(comment, width), styles.Text))
	}
	if refs := changeRefs(change.Changes, 3); refs != "" {
		lines = append(lines, bg.Spaces(3)+bg.Render(truncate(refs, width), styles.FaintText))
	}
	return lines
}

// changeRefs renders up to limit touched records as "OL1W@3".
func changeRefs(refs []openlibrary.ChangeRef, limit int) string {
	if len(refs) == 0 {
		return ""
	}
	parts := make([]string, 0, min(len(refs), limit))
	for i, ref := range refs {
		if i == limit {
			parts = append(parts, fmt.Sprintf("+%d more", len(refs)-limit))
			break
		}
		parts = append(parts, fmt.Sprintf("%s@%d", openlibrary.StripKey(ref.Key), ref.Revision))
	}
	return strings.Join(parts, " ")
}

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the status bar with all information.
func (m Model) renderHeader() string {
	// Header uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	var parts []string
	parts = append(parts, bg.Render("folio", styles.Logo))

	// View tabs
	if compact {
		parts = append(parts, bg.Render(m.currentView.String(), styles.AccentText.Bold(true)))
	} else {
		tabs := make([]string, 0, len(viewOrder))
		for i, v := range viewOrder {
			label := fmt.Sprintf("%d %s", i+1, v)
			style := styles.MutedText
			if v == m.currentView {
				style = styles.AccentText.Bold(true)
			}
			tabs = append(tabs, bg.Render(label, style))
		}
		parts = append(parts, strings.Join(tabs, bg.Spaces(2)))
	}

	if busy := m.busyLabel(); busy != "" {
		parts = append(parts, bg.Render("● "+busy, styles.WarningText))
	}

	if m.snapshot.Recent.Stale() {
		label := "FEED STALE"
		if !compact {
			label = fmt.Sprintf("FEED STALE (%d failures)", m.snapshot.Recent.ConsecutiveFailures)
		}
		parts = append(parts, bg.Render(label, styles.DangerText))
	}

	if !m.now.IsZero() {
		parts = append(parts, bg.Render(m.now.Format("15:04:05"), styles.MutedText))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		Render(strings.Join(parts, bg.Spaces(2)))
}

// busyLabel names the in-flight loads, or returns "" when idle.
func (m Model) busyLabel() string {
	var busy []string
	if m.snapshot.Search.Busy {
		busy = append(busy, "searching")
	}
	if m.snapshot.Detail.Busy {
		busy = append(busy, "loading book")
	}
	if m.snapshot.Recent.Busy {
		busy = append(busy, "refreshing feed")
	}
	return strings.Join(busy, ", ")
}

// renderCommandBar renders the command hints bar.
func (m Model) renderCommandBar() string {
	// Command bar uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewDetail:
		commands = []cmd{
			{"j/k", "Scroll"},
			{"r", "Reload"},
			{"esc", "Back"},
			{"tab", "Next view"},
			{"?", "More"},
		}
	case ViewRecent:
		commands = []cmd{
			{"r", "Refresh now"},
			{"esc", "Back"},
			{"tab", "Next view"},
			{"?", "More"},
		}
	case ViewLogs:
		followLabel := "Pause"
		if !m.logState.follow {
			followLabel = "Follow"
		}
		commands = []cmd{
			{"Space", followLabel},
			{"/", "Search"},
			{"n/N", "Next/Prev"},
			{"F", "Level " + levelLabel(m.logState.minLevel)},
			{"esc", "Back"},
			{"?", "More"},
		}
	default: // ViewSearch
		if m.searchInput.Focused() {
			commands = []cmd{
				{"enter", "Search"},
				{"esc", "Results"},
				{"tab", "Next view"},
			}
		} else {
			commands = []cmd{
				{"/", "Edit query"},
				{"enter", "Open"},
				{"s", "Subject"},
				{"F", m.filterLabel()},
				{"j/k", "Navigate"},
				{"q", "Quit"},
				{"?", "More"},
			}
		}
	}

	colon := bg.Sep(":")
	sep := bg.Spaces(2)

	segments := make([]string, 0, len(commands)+2)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	// Show active log search pattern
	if m.currentView == ViewLogs && m.logState.searchQuery != "" {
		segments = append(segments,
			bg.Render("/"+truncate(m.logState.searchQuery, 18), styles.AccentText))
	}

	// Add theme indicator
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, sep))
}

// filterLabel summarises the active search filters for the command bar.
func (m Model) filterLabel() string {
	n := 0
	if m.filters.Language != "" {
		n++
	}
	if m.filters.Year > 0 {
		n++
	}
	if m.filters.Type != "" {
		n++
	}
	if m.filters.HasCovers {
		n++
	}
	if n == 0 {
		return "Filters"
	}
	return fmt.Sprintf("Filters (%d)", n)
}

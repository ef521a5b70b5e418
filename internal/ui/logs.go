package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/folio/internal/logtail"
)

// levelCycle is the order F steps through the minimum level filter.
var levelCycle = []logtail.Level{
	logtail.LevelNone,
	logtail.LevelInfo,
	logtail.LevelWarn,
	logtail.LevelError,
}

// logState holds all log-related state.
type logState struct {
	rawLines []string
	lines    []string // rawLines after the level filter
	follow   bool
	minLevel logtail.Level
	err      error

	// Search
	searchActive   bool
	searchQuery    string
	searchInput    textinput.Model
	searchMatches  []int // Line indices that match
	searchMatchIdx int   // Current match index

	// Content caching - skip re-render when unchanged
	contentVersion uint64
	lastRendered   uint64
}

// initLogState initializes the log state.
func (m *Model) initLogState() {
	ti := textinput.New()
	ti.Placeholder = "Search logs..."
	ti.CharLimit = 100

	m.logState = logState{follow: true}
	m.logState.searchInput = ti
}

// updateLogViewport updates the log viewport with current content.
func (m *Model) updateLogViewport() {
	if !m.ready {
		return
	}
	// Box inner height, less the status line below the box
	width := max(m.width-2, 10)
	height := max(m.contentHeight()-3, 1)
	if m.logViewport.Width == 0 {
		m.logViewport = viewport.New(width, height)
	}
	m.logViewport.Width = width
	m.logViewport.Height = height
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))

	// Only re-render content if it changed (version mismatch or first render)
	if m.logState.lastRendered == 0 || m.logState.contentVersion != m.logState.lastRendered {
		m.logViewport.SetContent(m.renderLogContent(width))
		m.logState.lastRendered = max(m.logState.contentVersion, 1)
	}

	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

// renderLogs renders the log view.
func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	title := "Log"
	if m.logState.minLevel != logtail.LevelNone {
		title = fmt.Sprintf("Log (%s+)", m.logState.minLevel)
	}
	box := m.renderBox(title, m.logViewport.View(), m.width, m.contentHeight()-1, true)
	return box + "\n" + m.renderLogStatus(styles)
}

// renderLogStatus renders the line below the log box.
func (m Model) renderLogStatus(styles Styles) string {
	if m.logState.searchActive {
		return styles.AccentText.Render("/") + m.logState.searchInput.View()
	}

	if m.logState.searchQuery != "" {
		if len(m.logState.searchMatches) == 0 {
			return styles.DangerText.Render("Pattern not found: " + m.logState.searchQuery)
		}
		return styles.AccentText.Render("/"+m.logState.searchQuery) +
			styles.FaintText.Render(" - ") +
			styles.WarningText.Render(fmt.Sprintf("%d/%d", m.logState.searchMatchIdx+1, len(m.logState.searchMatches))) +
			styles.FaintText.Render(" - Press ") + styles.AccentText.Render("n") +
			styles.FaintText.Render(" for next, ") + styles.AccentText.Render("N") +
			styles.FaintText.Render(" for previous, ") + styles.AccentText.Render("Esc") +
			styles.FaintText.Render(" to clear")
	}

	if m.logState.err != nil {
		return styles.DangerText.Render("Log unavailable: " + m.logState.err.Error())
	}

	parts := []string{
		fmt.Sprintf("%d lines", len(m.logState.lines)),
		"auto-tail " + ternary(m.logState.follow, "on", "off"),
	}
	if m.logState.minLevel != logtail.LevelNone {
		parts = append(parts, "level "+levelLabel(m.logState.minLevel))
	}
	if m.logPath != "" {
		parts = append(parts, m.logPath)
	}
	return styles.FaintText.Render(strings.Join(parts, " • "))
}

// renderLogContent renders the colorized log lines.
func (m *Model) renderLogContent(width int) string {
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)

	if m.logPath == "" {
		return bg.FillLine(bg.Render("File logging is disabled", styles.MutedText), width)
	}
	if len(m.logState.lines) == 0 {
		return bg.FillLine(bg.Render("No log entries", styles.MutedText), width)
	}

	matchSet := make(map[int]bool, len(m.logState.searchMatches))
	for _, idx := range m.logState.searchMatches {
		matchSet[idx] = true
	}
	activeMatchLine := -1
	if m.logState.searchMatchIdx < len(m.logState.searchMatches) {
		activeMatchLine = m.logState.searchMatches[m.logState.searchMatchIdx]
	}

	var b strings.Builder
	for i, line := range m.logState.lines {
		gutter := fmt.Sprintf("%4d │ ", i+1)

		var lineContent string
		switch {
		case i == activeMatchLine:
			highlight := lipgloss.NewStyle().
				Background(lipgloss.Color(m.theme.Warning)).
				Foreground(lipgloss.Color(m.theme.Background))
			lineContent = highlight.Render(gutter + line)
		case matchSet[i]:
			lineContent = bg.Render(gutter, styles.AccentText) + bg.Render(line, styles.AccentText)
		default:
			lineContent = bg.Render(gutter, styles.FaintText) + m.colorizeLine(line, styles, bg)
		}

		b.WriteString(bg.FillLine(lineContent, width))
		if i < len(m.logState.lines)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// colorizeLine styles a "[time] LEVEL message attrs" line. Lines without a
// level are continuation lines.
func (m *Model) colorizeLine(line string, styles Styles, bg BgStyle) string {
	level := logtail.ParseLevel(line)
	if level == logtail.LevelNone {
		return bg.Render(line, styles.MutedText)
	}

	stamp, rest, ok := strings.Cut(line, "]")
	if !ok {
		return bg.Render(line, styles.Text)
	}
	rest = strings.TrimLeft(rest, " ")
	_, message, _ := strings.Cut(rest, " ")

	return bg.Render(stamp+"]", styles.FaintText) + bg.Space() +
		bg.Render(string(level), levelStyle(level, styles).Bold(true)) + bg.Space() +
		bg.Render(strings.TrimSpace(message), styles.Text)
}

// levelStyle returns the style for a log level.
func levelStyle(level logtail.Level, styles Styles) lipgloss.Style {
	switch level {
	case logtail.LevelInfo:
		return styles.SuccessText
	case logtail.LevelWarn:
		return styles.WarningText
	case logtail.LevelError:
		return styles.DangerText
	case logtail.LevelDebug:
		return styles.InfoText
	default:
		return styles.Text
	}
}

func levelLabel(level logtail.Level) string {
	if level == logtail.LevelNone {
		return "all"
	}
	return strings.ToLower(string(level)) + "+"
}

// handleLogsKey processes keyboard input for logs view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logState.follow = !m.logState.follow
		m.updateLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.Focus):
		m.logState.searchActive = true
		m.logState.searchInput.SetValue("")
		cmd := m.logState.searchInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Filters):
		idx := slices.Index(levelCycle, m.logState.minLevel)
		m.logState.minLevel = levelCycle[(idx+1)%len(levelCycle)]
		m.applyLogFilter()
		m.updateLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.NextMatch):
		m.stepSearchMatch(1)
		return m, nil

	case key.Matches(msg, m.keys.PrevMatch):
		m.stepSearchMatch(-1)
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		if m.logState.searchQuery != "" {
			m.clearLogSearch()
			m.updateLogViewport()
			return m, nil
		}
		cmd := m.setView(ViewSearch)
		return m, cmd

	case key.Matches(msg, m.keys.Top):
		m.logViewport.GotoTop()
		m.logState.follow = false

	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		m.logState.follow = true

	case key.Matches(msg, m.keys.Down):
		m.logViewport.ScrollDown(1)
		m.logState.follow = false

	case key.Matches(msg, m.keys.Up):
		m.logViewport.ScrollUp(1)
		m.logState.follow = false

	case key.Matches(msg, m.keys.HalfPageDown):
		m.logViewport.HalfPageDown()
		m.logState.follow = false

	case key.Matches(msg, m.keys.HalfPageUp):
		m.logViewport.HalfPageUp()
		m.logState.follow = false

	case key.Matches(msg, m.keys.PageDown):
		m.logViewport.PageDown()
		m.logState.follow = false

	case key.Matches(msg, m.keys.PageUp):
		m.logViewport.PageUp()
		m.logState.follow = false
	}

	return m, nil
}

// handleLogSearchInput handles keyboard input during log search.
func (m Model) handleLogSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		query := strings.TrimSpace(m.logState.searchInput.Value())
		m.logState.searchActive = false
		m.logState.searchInput.Blur()
		if query == "" {
			return m, nil
		}
		m.logState.searchQuery = query
		m.findSearchMatches()
		if len(m.logState.searchMatches) > 0 {
			m.logState.searchMatchIdx = 0
			m.scrollToSearchMatch()
		}
		m.updateLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		m.logState.searchActive = false
		m.logState.searchInput.Blur()
		m.logState.searchInput.SetValue("")
		return m, nil
	}

	var cmd tea.Cmd
	m.logState.searchInput, cmd = m.logState.searchInput.Update(msg)
	return m, cmd
}

// clearLogSearch clears the search state.
func (m *Model) clearLogSearch() {
	m.logState.searchQuery = ""
	m.logState.searchMatches = nil
	m.logState.searchMatchIdx = 0
	m.logState.contentVersion++
}

// findSearchMatches finds all visible lines matching the current query.
func (m *Model) findSearchMatches() {
	m.logState.searchMatches = logtail.Match(m.logState.lines, m.logState.searchQuery)
	if m.logState.searchMatchIdx >= len(m.logState.searchMatches) {
		m.logState.searchMatchIdx = 0
	}
	m.logState.contentVersion++
}

// stepSearchMatch moves step matches forward or backward, wrapping around.
func (m *Model) stepSearchMatch(step int) {
	n := len(m.logState.searchMatches)
	if n == 0 {
		return
	}
	m.logState.searchMatchIdx = (m.logState.searchMatchIdx + step + n) % n
	m.logState.contentVersion++
	m.scrollToSearchMatch()
	m.updateLogViewport()
}

// scrollToSearchMatch scrolls the viewport to show the current match.
func (m *Model) scrollToSearchMatch() {
	if m.logState.searchMatchIdx >= len(m.logState.searchMatches) {
		return
	}
	target := m.logState.searchMatches[m.logState.searchMatchIdx]
	m.logState.follow = false
	m.logViewport.SetYOffset(max(target-m.logViewport.Height/2, 0))
}

// applyLogFilter recomputes the visible lines and search matches.
func (m *Model) applyLogFilter() {
	m.logState.lines = logtail.FilterLevel(m.logState.rawLines, m.logState.minLevel)
	if m.logState.searchQuery != "" {
		m.findSearchMatches()
	}
	m.logState.contentVersion++
}

// refreshLogs reads the tail of the log file.
func (m Model) refreshLogs() tea.Cmd {
	path := m.logPath
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		lines, err := logtail.Read(path, LogTailLines)
		return logLinesMsg{lines: lines, err: err}
	}
}

type logLinesMsg struct {
	lines []string
	err   error
}

// handleLogLines applies a fresh read of the log file.
func (m *Model) handleLogLines(msg logLinesMsg) {
	if msg.err != nil {
		m.logState.err = msg.err
		return
	}
	m.logState.err = nil
	if slices.Equal(m.logState.rawLines, msg.lines) && m.logState.lastRendered != 0 {
		return
	}
	m.logState.rawLines = msg.lines
	m.applyLogFilter()
	m.updateLogViewport()
}

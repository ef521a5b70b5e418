package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderBox draws a rounded box of exactly width x height cells with title
// embedded in the top border. Content is clipped to the inner area and padded
// with the pane background.
func (m Model) renderBox(title, content string, width, height int, focused bool) string {
	if width < 4 || height < 2 {
		return content
	}

	bgColor := m.theme.SurfaceAlt
	borderColor := m.theme.Border
	if focused {
		bgColor = m.theme.FocusBg
		borderColor = m.theme.BorderFocus
	}
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles().WithBackground(bgColor)
	border := lipgloss.NewStyle().
		Foreground(lipgloss.Color(borderColor)).
		Background(lipgloss.Color(bgColor))

	titleStyle := styles.MutedText.Bold(true)
	if focused {
		titleStyle = styles.AccentText.Bold(true)
	}

	inner := width - 2
	innerHeight := height - 2

	label := ""
	if title != "" {
		label = " " + truncate(title, max(inner-4, 1)) + " "
	}
	fill := max(inner-1-lipgloss.Width(label), 0)

	var b strings.Builder
	b.WriteString(border.Render("╭─"))
	b.WriteString(titleStyle.Render(label))
	b.WriteString(border.Render(strings.Repeat("─", fill) + "╮"))
	b.WriteString("\n")

	lines := strings.Split(content, "\n")
	if len(lines) > innerHeight {
		lines = lines[:innerHeight]
	}
	for len(lines) < innerHeight {
		lines = append(lines, "")
	}
	clip := lipgloss.NewStyle().MaxWidth(inner)
	side := border.Render("│")
	for _, line := range lines {
		b.WriteString(side)
		b.WriteString(bg.FillLine(clip.Render(line), inner))
		b.WriteString(side)
		b.WriteString("\n")
	}

	b.WriteString(border.Render("╰" + strings.Repeat("─", inner) + "╯"))
	return b.String()
}

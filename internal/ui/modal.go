package ui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/folio/internal/openlibrary"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// placeModal centers content in a rounded, padded frame.
func placeModal(theme Theme, width, height, modalWidth int, content string) string {
	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Accent)).
		Padding(1, 2).
		Width(modalWidth)

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		frame.Render(content),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}

// Choices offered by the filter modal. The empty value means "any".
var (
	languageOptions = []string{"", "eng", "fre", "spa", "ger", "ita", "por"}
	typeOptions     = []string{"", "fiction", "non-fiction", "biography", "poetry", "history"}
)

const (
	filterFieldLanguage = iota
	filterFieldYear
	filterFieldType
	filterFieldCovers
	filterFieldCount
)

// filterModal edits the search filters.
type filterModal struct {
	focus     int
	languages []string
	language  int
	kind      int
	kinds     []string
	year      textinput.Model
	covers    bool
	err       string
	applied   bool
}

func newFilterModal(f openlibrary.Filters) *filterModal {
	year := textinput.New()
	year.Placeholder = "any"
	year.Prompt = ""
	year.CharLimit = 4
	year.Width = 6
	if f.Year > 0 {
		year.SetValue(strconv.Itoa(f.Year))
	}

	languages := withOption(languageOptions, f.Language)
	kinds := withOption(typeOptions, f.Type)
	return &filterModal{
		languages: languages,
		language:  slices.Index(languages, f.Language),
		kinds:     kinds,
		kind:      slices.Index(kinds, f.Type),
		year:      year,
		covers:    f.HasCovers,
	}
}

// withOption returns options extended with value when it is not offered yet.
func withOption(options []string, value string) []string {
	if slices.Contains(options, value) {
		return options
	}
	return append(slices.Clone(options), value)
}

// Update implements Modal.
func (fm *filterModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return fm, nil, false
	}

	switch {
	case key.Matches(km, keys.Escape):
		return fm, nil, true

	case key.Matches(km, keys.Confirm):
		if err := fm.validate(); err != "" {
			fm.err = err
			return fm, nil, false
		}
		fm.applied = true
		return fm, nil, true

	case key.Matches(km, keys.Tab), key.Matches(km, keys.Down):
		return fm, fm.move(1), false

	case key.Matches(km, keys.ShiftTab), key.Matches(km, keys.Up):
		return fm, fm.move(-1), false
	}

	switch fm.focus {
	case filterFieldYear:
		if km.Type == tea.KeyRunes && !allDigits(km.Runes) {
			return fm, nil, false
		}
		var cmd tea.Cmd
		fm.year, cmd = fm.year.Update(km)
		fm.err = ""
		return fm, cmd, false

	case filterFieldLanguage:
		fm.language = cycle(fm.language, len(fm.languages), direction(km, keys))

	case filterFieldType:
		fm.kind = cycle(fm.kind, len(fm.kinds), direction(km, keys))

	case filterFieldCovers:
		if direction(km, keys) != 0 {
			fm.covers = !fm.covers
		}
	}
	return fm, nil, false
}

func (fm *filterModal) move(step int) tea.Cmd {
	fm.focus = (fm.focus + step + filterFieldCount) % filterFieldCount
	if fm.focus == filterFieldYear {
		return fm.year.Focus()
	}
	fm.year.Blur()
	return nil
}

func (fm *filterModal) validate() string {
	value := strings.TrimSpace(fm.year.Value())
	if value == "" {
		return ""
	}
	if year, err := strconv.Atoi(value); err != nil || year < 1000 {
		return "Year must be a four-digit number"
	}
	return ""
}

// filters returns the edited filters without a free-text query.
func (fm *filterModal) filters() openlibrary.Filters {
	year, _ := strconv.Atoi(strings.TrimSpace(fm.year.Value()))
	return openlibrary.Filters{
		Language:  fm.languages[fm.language],
		Year:      year,
		Type:      fm.kinds[fm.kind],
		HasCovers: fm.covers,
	}
}

// View implements Modal.
func (fm *filterModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Search Filters"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	selected := lipgloss.NewStyle().
		Background(lipgloss.Color(theme.SelectionBg)).
		Foreground(lipgloss.Color(theme.SelectionText))

	field := func(idx int, label, value string) {
		labelStyle := styles.MutedText.Width(12)
		valueStyle := styles.Text
		if fm.focus == idx {
			labelStyle = styles.AccentText.Bold(true).Width(12)
			valueStyle = selected
		}
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}

	field(filterFieldLanguage, "Language", fmt.Sprintf("‹ %s ›", optionLabel(fm.languages[fm.language])))
	b.WriteString(styles.MutedText.Width(12).Render("Year"))
	if fm.focus == filterFieldYear {
		b.WriteString(fm.year.View())
	} else {
		b.WriteString(styles.Text.Render(optionLabel(strings.TrimSpace(fm.year.Value()))))
	}
	b.WriteString("\n")
	field(filterFieldType, "Type", fmt.Sprintf("‹ %s ›", optionLabel(fm.kinds[fm.kind])))
	field(filterFieldCovers, "Covers", ternary(fm.covers, "[x] only with covers", "[ ] only with covers"))

	if fm.err != "" {
		b.WriteString("\n")
		b.WriteString(styles.DangerText.Render(fm.err))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("tab move  ←/→ change  enter apply  esc cancel"))

	return placeModal(theme, width, height, 48, b.String())
}

func optionLabel(value string) string {
	if value == "" {
		return "any"
	}
	return value
}

// direction maps left/right/toggle keys onto -1, +1 or 0.
func direction(km tea.KeyMsg, keys keyMap) int {
	switch {
	case key.Matches(km, keys.Left):
		return -1
	case key.Matches(km, keys.Right), key.Matches(km, keys.Toggle):
		return 1
	}
	return 0
}

func cycle(idx, n, step int) int {
	if n == 0 {
		return 0
	}
	return (idx + step + n) % n
}

func allDigits(runes []rune) bool {
	for _, r := range runes {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/folio/internal/details"
	"github.com/five82/folio/internal/openlibrary"
	"github.com/five82/folio/internal/prefs"
	"github.com/five82/folio/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewSearch View = iota
	ViewDetail
	ViewRecent
	ViewLogs
)

var viewOrder = []View{ViewSearch, ViewDetail, ViewRecent, ViewLogs}

func (v View) String() string {
	switch v {
	case ViewDetail:
		return "Detail"
	case ViewRecent:
		return "Recent"
	case ViewLogs:
		return "Logs"
	default:
		return "Search"
	}
}

// Actions are the operations the UI triggers. Results reach the UI through
// the store, not through the return values.
type Actions interface {
	Search(ctx context.Context, q openlibrary.Query) ([]openlibrary.BookSummary, error)
	BrowseSubject(ctx context.Context, subject string) ([]openlibrary.BookSummary, error)
	LoadDetails(ctx context.Context, key string) (*details.Book, error)
	RefreshRecent(ctx context.Context) ([]openlibrary.ChangeEvent, error)
	WatchRecent(ctx context.Context) (stop func())
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Actions   Actions
	Store     *state.Store
	Prefs     prefs.Prefs
	PrefsPath string
	LogPath   string
	ErrorText func(error) string // renders stored errors; defaults to err.Error()
	Tick      time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	actions   Actions
	store     *state.Store
	changes   <-chan struct{}
	prefs     prefs.Prefs
	prefsPath string
	logPath   string
	errorText func(error) string
	tick      time.Duration
	keys      keyMap

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	now         time.Time

	// Data state
	snapshot state.Snapshot

	// Search state
	searchInput textinput.Model
	filters     openlibrary.Filters
	selectedRow int

	// Detail state
	detailViewport viewport.Model
	detailContent  string
	detailKey      string

	// Recent state
	stopRecent func()

	// Log state
	logViewport viewport.Model
	logState    logState

	// Overlays
	showHelp bool
	modal    Modal
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	tick := opts.Tick
	if tick <= 0 {
		tick = DefaultUIInterval
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	errorText := opts.ErrorText
	if errorText == nil {
		errorText = func(err error) string { return err.Error() }
	}

	input := textinput.New()
	input.Placeholder = "Title, author or keywords"
	input.CharLimit = 200
	input.Prompt = "/ "
	input.Focus()

	m := Model{
		ctx:         ctx,
		actions:     opts.Actions,
		store:       opts.Store,
		prefs:       opts.Prefs,
		prefsPath:   prefsPath,
		logPath:     opts.LogPath,
		errorText:   errorText,
		tick:        tick,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(opts.Prefs.Theme),
		currentView: ViewSearch,
		now:         time.Now(),
		searchInput: input,
		filters: openlibrary.Filters{
			Language:  opts.Prefs.Language,
			HasCovers: opts.Prefs.HasCovers,
		},
	}
	if m.store != nil {
		m.changes = m.store.Subscribe()
		m.snapshot = m.store.Snapshot()
	}
	m.initLogState()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		tickCmd(m.tick),
	}
	if m.store != nil {
		cmds = append(cmds, waitForChangeCmd(m.ctx, m.store, m.changes))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		var cmds []tea.Cmd
		if m.currentView == ViewLogs && m.logState.follow {
			cmds = append(cmds, m.refreshLogs())
		}
		cmds = append(cmds, tickCmd(m.tick))
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.applySnapshot(state.Snapshot(msg))
		return m, waitForChangeCmd(m.ctx, m.store, m.changes)

	case logLinesMsg:
		m.handleLogLines(msg)
		return m, nil

	case actionDoneMsg:
		// Outcomes arrive through the store subscription.
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

// handleKey processes keyboard input. Overlays and focused inputs see keys
// before the global bindings do.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m.quit()
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		return m.handleModalKey(msg)
	}

	if m.currentView == ViewSearch && m.searchInput.Focused() {
		return m.handleSearchInput(msg)
	}
	if m.currentView == ViewLogs && m.logState.searchActive {
		return m.handleLogSearchInput(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		m.detailContent = ""
		m.logState.contentVersion++
		m.resize()
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		cmd := m.setView(m.nextView(1))
		return m, cmd

	case key.Matches(msg, m.keys.ShiftTab):
		cmd := m.setView(m.nextView(-1))
		return m, cmd

	case key.Matches(msg, m.keys.ViewSearch):
		cmd := m.setView(ViewSearch)
		return m, cmd

	case key.Matches(msg, m.keys.ViewDetail):
		cmd := m.setView(ViewDetail)
		return m, cmd

	case key.Matches(msg, m.keys.ViewRecent):
		cmd := m.setView(ViewRecent)
		return m, cmd

	case key.Matches(msg, m.keys.ViewLogs):
		cmd := m.setView(ViewLogs)
		return m, cmd
	}

	switch m.currentView {
	case ViewSearch:
		return m.handleSearchKey(msg)
	case ViewDetail:
		return m.handleDetailKey(msg)
	case ViewRecent:
		return m.handleRecentKey(msg)
	case ViewLogs:
		return m.handleLogsKey(msg)
	}
	return m, nil
}

// handleModalKey forwards keys to the open modal and applies its result when
// it closes.
func (m Model) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	next, cmd, closed := m.modal.Update(msg, m.keys)
	if !closed {
		m.modal = next
		return m, cmd
	}
	m.modal = nil
	if fm, ok := next.(*filterModal); ok && fm.applied {
		m.filters = fm.filters()
		m.prefs.Language = m.filters.Language
		m.prefs.HasCovers = m.filters.HasCovers
		m.savePrefs()
	}
	return m, cmd
}

// nextView returns the view step positions away in viewOrder.
func (m Model) nextView(step int) View {
	for i, v := range viewOrder {
		if v == m.currentView {
			return viewOrder[(i+step+len(viewOrder))%len(viewOrder)]
		}
	}
	return ViewSearch
}

// setView switches views. The recent changes feed refreshes only while its
// view is mounted.
func (m *Model) setView(v View) tea.Cmd {
	if v == m.currentView {
		return nil
	}
	if m.currentView == ViewRecent {
		m.unmountRecent()
	}
	m.currentView = v

	switch v {
	case ViewRecent:
		m.mountRecent()
	case ViewLogs:
		return m.refreshLogs()
	case ViewDetail:
		m.updateDetailViewport()
	}
	return nil
}

func (m *Model) mountRecent() {
	if m.actions == nil || m.stopRecent != nil {
		return
	}
	m.stopRecent = m.actions.WatchRecent(m.ctx)
}

func (m *Model) unmountRecent() {
	if m.stopRecent == nil {
		return
	}
	m.stopRecent()
	m.stopRecent = nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.unmountRecent()
	return m, tea.Quit
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	_ = prefs.Save(m.prefsPath, m.prefs)
}

// applySnapshot stores a new snapshot and refreshes derived view state.
func (m *Model) applySnapshot(snap state.Snapshot) {
	m.snapshot = snap
	if n := len(snap.Search.Results); m.selectedRow >= n {
		m.selectedRow = max(n-1, 0)
	}
	m.updateDetailViewport()
}

// resize recomputes viewport dimensions after a size or theme change.
func (m *Model) resize() {
	if !m.ready {
		return
	}
	m.searchInput.Width = max(m.width-12, 10)
	m.updateDetailViewport()
	m.updateLogViewport()
}

// renderMain renders header, command bar and the active view.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewDetail:
		return m.renderDetail()
	case ViewRecent:
		return m.renderRecent()
	case ViewLogs:
		return m.renderLogs()
	default:
		return m.renderSearch()
	}
}

// contentHeight is the height left below the header and command bar.
func (m Model) contentHeight() int {
	return max(m.height-2, 3)
}

// errText renders a stored error.
func (m Model) errText(err error) string {
	if err == nil {
		return ""
	}
	return m.errorText(err)
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type actionDoneMsg struct {
	err error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForChangeCmd blocks until the store signals a change and then delivers
// a fresh snapshot. It returns nil once ctx is done.
func waitForChangeCmd(ctx context.Context, store *state.Store, changes <-chan struct{}) tea.Cmd {
	if store == nil || changes == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-changes:
			return snapshotMsg(store.Snapshot())
		case <-ctx.Done():
			return nil
		}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.unmountRecent()
	}
	// A cancelled context is a normal shutdown.
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}

package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/five82/tuner/internal/bridge"
	"github.com/five82/tuner/internal/catalog"
	"github.com/five82/tuner/internal/config"
	"github.com/five82/tuner/internal/favorites"
	"github.com/five82/tuner/internal/grid"
	"github.com/five82/tuner/internal/playback"
	"github.com/five82/tuner/internal/prefs"
	"github.com/five82/tuner/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewStations View = iota
	ViewLogs
)

// Player is the playback surface the UI drives. *playback.Controller
// implements it.
type Player interface {
	Catalog() *catalog.Catalog
	State() playback.State
	TogglePlay() <-chan playback.Outcome
	Next() <-chan playback.Outcome
	Previous() <-chan playback.Outcome
	PlayStationByID(id int) <-chan playback.Outcome
	SetVolume(v float64)
	Volume() float64
}

// Suspender pauses the visualizer draw loop while the terminal is unfocused.
type Suspender interface {
	Suspend()
	Resume()
}

// Pip is the optional widget bridge.
type Pip interface {
	Commands() <-chan bridge.Command
	SetPip(on bool)
}

// Options configures the UI.
type Options struct {
	Context    context.Context
	Player     Player
	Store      *state.Store
	Favorites  favorites.Store
	Spectrum   *Spectrum
	Visualizer Suspender
	Bridge     Pip
	Config     *config.Config
	Tick       time.Duration
	ThemeName  string
	PrefsPath  string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	player    Player
	store     *state.Store
	favStore  favorites.Store
	spectrum  *Spectrum
	vis       Suspender
	pip       Pip
	config    *config.Config
	prefsPath string
	tick      time.Duration

	// UI state
	keys        keyMap
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	showViz     bool
	mini        bool
	focused     bool
	notice      string

	// Data state
	snapshot  state.Snapshot
	playState playback.State
	favs      favorites.Set

	// Station grid
	grid      grid.Model
	cursor    int
	search    textinput.Model
	searching bool
	query     string

	spinner spinner.Model

	// Log view
	logViewport viewport.Model
	logState    logState
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

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Nightfox"
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	favStore := opts.Favorites
	if favStore == nil {
		favStore = favorites.PrefsStore{Path: prefsPath}
	}

	ti := textinput.New()
	ti.Placeholder = "Search by name or genre..."
	ti.Prompt = "/ "
	ti.CharLimit = 64

	m := Model{
		ctx:         ctx,
		player:      opts.Player,
		store:       opts.Store,
		favStore:    favStore,
		spectrum:    opts.Spectrum,
		vis:         opts.Visualizer,
		pip:         opts.Bridge,
		config:      opts.Config,
		prefsPath:   prefsPath,
		tick:        tick,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(themeName),
		currentView: ViewStations,
		showViz:     opts.Spectrum != nil,
		focused:     true,
		favs:        favorites.NewSet(),
		search:      ti,
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		logState:    logState{follow: true},
	}
	m.playState = m.player.State()
	m.rebuildGrid()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(m.tick),
		fetchSnapshotCmd(m.store, m.player),
		loadFavoritesCmd(m.favStore),
		m.spinner.Tick,
	}
	if m.pip != nil {
		cmds = append(cmds, waitCommandCmd(m.pip.Commands()))
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

	case tea.BlurMsg:
		m.focused = false
		if m.vis != nil {
			m.vis.Suspend()
		}
		return m, nil

	case tea.FocusMsg:
		m.focused = true
		if m.vis != nil {
			m.vis.Resume()
		}
		return m, nil

	case tickMsg:
		return m.handleTick(time.Time(msg))

	case snapshotMsg:
		m.snapshot = msg.snapshot
		m.playState = msg.playback
		m.rebuildGrid()
		return m, nil

	case outcomeMsg:
		if msg.Err != nil && !errors.Is(msg.Err, playback.ErrSuperseded) {
			log.Debug().Err(msg.Err).Int("station", msg.Station.ID).Msg("play request finished")
		}
		return m, fetchSnapshotCmd(m.store, m.player)

	case favoritesMsg:
		if msg.err != nil {
			m.notice = msg.err.Error()
			log.Warn().Err(msg.err).Msg("favorites")
		} else {
			m.notice = ""
		}
		if msg.favs != nil {
			m.favs = msg.favs
		}
		m.rebuildGrid()
		return m, nil

	case commandMsg:
		return m.handleCommand(bridge.Command(msg))

	case logsMsg:
		m.handleLogs(msg)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.searching {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
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

	if m.mini {
		return m.renderMini()
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.searching {
		return m.handleSearchInput(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		return m, saveThemeCmd(m.prefsPath, m.theme.Name)

	case key.Matches(msg, m.keys.ViewLogs):
		if m.currentView == ViewLogs {
			m.currentView = ViewStations
			m.resize()
			return m, nil
		}
		m.currentView = ViewLogs
		m.resize()
		return m, m.refreshLogs()

	case key.Matches(msg, m.keys.MiniPlayer):
		m.setMini(!m.mini)
		return m, nil

	case key.Matches(msg, m.keys.Visualizer):
		m.showViz = !m.showViz && m.spectrum != nil
		m.resize()
		return m, nil

	case key.Matches(msg, m.keys.TogglePlay):
		return m, m.play(m.player.TogglePlay())

	case key.Matches(msg, m.keys.Next):
		return m, m.play(m.player.Next())

	case key.Matches(msg, m.keys.Previous):
		return m, m.play(m.player.Previous())

	case key.Matches(msg, m.keys.VolumeUp):
		m.player.SetVolume(m.player.Volume() + VolumeStep)
		return m, fetchSnapshotCmd(m.store, m.player)

	case key.Matches(msg, m.keys.VolumeDown):
		m.player.SetVolume(m.player.Volume() - VolumeStep)
		return m, fetchSnapshotCmd(m.store, m.player)
	}

	if m.mini {
		if key.Matches(msg, m.keys.Escape) {
			m.setMini(false)
		}
		return m, nil
	}

	switch m.currentView {
	case ViewLogs:
		return m.handleLogsKey(msg)
	default:
		return m.handleStationsKey(msg)
	}
}

// handleStationsKey processes keyboard input for the station grid.
func (m Model) handleStationsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(m.query)
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.Escape):
		if m.query != "" {
			m.setQuery("")
		}
		return m, nil
	}

	if m.grid.Empty() {
		return m, nil
	}

	cols := m.gridColumns()
	switch {
	case key.Matches(msg, m.keys.Play):
		card := m.grid.Cards[m.cursor]
		return m, m.play(m.player.PlayStationByID(card.Station.ID))

	case key.Matches(msg, m.keys.Favorite):
		card := m.grid.Cards[m.cursor]
		return m, toggleFavoriteCmd(m.favStore, card.Station.ID)

	case key.Matches(msg, m.keys.Left):
		m.cursor = max(m.cursor-1, 0)
	case key.Matches(msg, m.keys.Right):
		m.cursor = min(m.cursor+1, len(m.grid.Cards)-1)
	case key.Matches(msg, m.keys.Down):
		m.cursor = stepRow(m.grid, m.cursor, cols, 1)
	case key.Matches(msg, m.keys.Up):
		m.cursor = stepRow(m.grid, m.cursor, cols, -1)
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = len(m.grid.Cards) - 1
	}
	return m, nil
}

// handleSearchInput handles keyboard input while the search box is focused.
// Filtering is live; enter keeps the filter and esc clears it.
func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.searching = false
		m.search.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.setQuery("")
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if v := m.search.Value(); v != m.query {
		m.setQuery(v)
	}
	return m, cmd
}

// handleCommand applies a bridge command and waits for the next one.
func (m Model) handleCommand(c bridge.Command) (tea.Model, tea.Cmd) {
	next := waitCommandCmd(m.pip.Commands())
	switch c {
	case bridge.CmdToggle:
		return m, tea.Batch(next, m.play(m.player.TogglePlay()))
	case bridge.CmdNext:
		return m, tea.Batch(next, m.play(m.player.Next()))
	case bridge.CmdPrevious:
		return m, tea.Batch(next, m.play(m.player.Previous()))
	case bridge.CmdEnterPip:
		m.setMini(true)
	case bridge.CmdExitPip:
		m.setMini(false)
	}
	return m, next
}

// handleTick refreshes the snapshot and, when following, the log view.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{
		fetchSnapshotCmd(m.store, m.player),
		tickCmd(m.tick),
	}
	if m.currentView == ViewLogs && m.logState.follow && now.Sub(m.logState.lastRefresh) >= LogRefreshInterval {
		m.logState.lastRefresh = now
		if cmd := m.refreshLogs(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, tea.Batch(cmds...)
}

// play turns a pending outcome into a message and shows the pending state
// right away.
func (m Model) play(ch <-chan playback.Outcome) tea.Cmd {
	return tea.Batch(
		fetchSnapshotCmd(m.store, m.player),
		waitOutcomeCmd(ch),
	)
}

// setMini switches the compact player and tells bridge clients.
func (m *Model) setMini(on bool) {
	if m.mini == on {
		return
	}
	m.mini = on
	if m.pip != nil {
		m.pip.SetPip(on)
	}
	m.resize()
}

// setQuery filters the grid and moves the cursor to the first match.
func (m *Model) setQuery(q string) {
	m.query = q
	m.cursor = 0
	m.rebuildGrid()
	m.cursor = 0
}

// stationView is the catalog filtered by the active query.
func (m Model) stationView() []catalog.Station {
	cat := m.player.Catalog()
	if strings.TrimSpace(m.query) == "" {
		return cat.All()
	}
	return cat.Search(m.query)
}

// pinned returns the configured pinned categories.
func (m Model) pinned() []string {
	if m.config == nil {
		return config.Default().PinnedCategories
	}
	return m.config.PinnedCategories
}

// rebuildGrid rebuilds the grid model, keeping the cursor on the same station.
func (m *Model) rebuildGrid() {
	selected := -1
	if m.cursor >= 0 && m.cursor < len(m.grid.Cards) {
		selected = m.grid.Cards[m.cursor].Station.ID
	}
	m.grid = grid.Build(m.stationView(), m.favs, m.playState, m.pinned())
	if selected >= 0 {
		if pos := m.grid.Position(selected); pos >= 0 {
			m.cursor = pos
		}
	}
	m.cursor = max(min(m.cursor, len(m.grid.Cards)-1), 0)
}

// resize recomputes the spectrum and log panel sizes.
func (m *Model) resize() {
	if !m.ready {
		return
	}
	if m.spectrum != nil {
		cols, rows := 0, 0
		switch {
		case m.mini:
			cols, rows = m.width-4, MiniSpectrumRows
		case m.showViz && m.currentView == ViewStations:
			cols, rows = m.width-4, spectrumRows(m.height)
		}
		m.spectrum.Resize(max(cols, 0), rows)
	}
	m.updateLogViewport()
}

// spectrumRows sizes the spectrum body to a quarter of the terminal.
func spectrumRows(height int) int {
	return min(max(height/4, SpectrumMinRows), SpectrumMaxRows)
}

// gridColumns returns how many cards fit on one grid row.
func (m Model) gridColumns() int {
	return max((m.width-2)/CardWidth, 1)
}

// stepRow moves pos one visual row up or down. Rows wrap inside a section
// and continue into the neighbouring section, keeping the column when
// possible.
func stepRow(g grid.Model, pos, cols, delta int) int {
	if len(g.Cards) == 0 {
		return 0
	}
	sec, off := g.SectionOf(pos)
	if sec < 0 {
		return 0
	}
	col := off % cols
	row := off/cols + delta
	start := pos - off

	size := len(g.Sections[sec].Cards)
	rows := (size + cols - 1) / cols
	switch {
	case row >= 0 && row < rows:
		return start + min(row*cols+col, size-1)
	case row >= rows:
		if sec == len(g.Sections)-1 {
			return pos
		}
		nextStart := start + size
		nextSize := len(g.Sections[sec+1].Cards)
		return nextStart + min(col, nextSize-1)
	default:
		if sec == 0 {
			return pos
		}
		prevSize := len(g.Sections[sec-1].Cards)
		prevStart := start - prevSize
		prevRows := (prevSize + cols - 1) / cols
		return prevStart + min((prevRows-1)*cols+col, prevSize-1)
	}
}

// renderMain renders the full UI.
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
	case ViewLogs:
		return m.renderLogs()
	default:
		return m.renderStations()
	}
}

// Messages

type tickMsg time.Time

type snapshotMsg struct {
	snapshot state.Snapshot
	playback playback.State
}

type outcomeMsg playback.Outcome

type commandMsg bridge.Command

type favoritesMsg struct {
	favs favorites.Set
	err  error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store, player Player) tea.Cmd {
	return func() tea.Msg {
		var snap state.Snapshot
		if store != nil {
			snap = store.Snapshot()
		}
		return snapshotMsg{snapshot: snap, playback: player.State()}
	}
}

func waitOutcomeCmd(ch <-chan playback.Outcome) tea.Cmd {
	return func() tea.Msg {
		return outcomeMsg(<-ch)
	}
}

func waitCommandCmd(ch <-chan bridge.Command) tea.Cmd {
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return nil
		}
		return commandMsg(c)
	}
}

func loadFavoritesCmd(store favorites.Store) tea.Cmd {
	return func() tea.Msg {
		favs, err := store.Get()
		return favoritesMsg{favs: favs, err: err}
	}
}

func toggleFavoriteCmd(store favorites.Store, id int) tea.Cmd {
	return func() tea.Msg {
		favs, added, err := favorites.Toggle(store, id)
		if err == nil {
			log.Debug().Int("station", id).Bool("favorite", added).Msg("favorite toggled")
		}
		return favoritesMsg{favs: favs, err: err}
	}
}

func saveThemeCmd(path, name string) tea.Cmd {
	return func() tea.Msg {
		if _, err := prefs.Update(path, func(p *prefs.Prefs) { p.Theme = name }); err != nil {
			log.Warn().Err(err).Str("theme", name).Msg("save theme")
		}
		return nil
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithReportFocus(),
		tea.WithContext(m.ctx),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}

package ui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/five82/tuner/internal/bridge"
	"github.com/five82/tuner/internal/catalog"
	"github.com/five82/tuner/internal/favorites"
	"github.com/five82/tuner/internal/grid"
	"github.com/five82/tuner/internal/logtail"
	"github.com/five82/tuner/internal/playback"
	"github.com/five82/tuner/internal/prefs"
	"github.com/five82/tuner/internal/state"
	"github.com/five82/tuner/internal/visualizer"
)

type fakePlayer struct {
	cat     *catalog.Catalog
	state   playback.State
	volume  float64
	played  []int
	toggles int
	nexts   int
	prevs   int
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{cat: catalog.Default(), volume: playback.DefaultVolume}
}

func (p *fakePlayer) Catalog() *catalog.Catalog { return p.cat }

func (p *fakePlayer) State() playback.State {
	s := p.state
	s.Volume = p.volume
	return s
}

func (p *fakePlayer) outcome() <-chan playback.Outcome {
	ch := make(chan playback.Outcome, 1)
	ch <- playback.Outcome{Station: p.state.Station, Playing: true}
	close(ch)
	return ch
}

func (p *fakePlayer) TogglePlay() <-chan playback.Outcome {
	p.toggles++
	return p.outcome()
}

func (p *fakePlayer) Next() <-chan playback.Outcome {
	p.nexts++
	return p.outcome()
}

func (p *fakePlayer) Previous() <-chan playback.Outcome {
	p.prevs++
	return p.outcome()
}

func (p *fakePlayer) PlayStationByID(id int) <-chan playback.Outcome {
	p.played = append(p.played, id)
	if st, ok := p.cat.ByID(id); ok {
		p.state = playback.State{Loaded: true, Playing: true, Station: st}
	}
	return p.outcome()
}

func (p *fakePlayer) SetVolume(v float64) { p.volume = min(max(v, 0), 1) }

func (p *fakePlayer) Volume() float64 { return p.volume }

type fakeSuspender struct{ suspended bool }

func (s *fakeSuspender) Suspend() { s.suspended = true }
func (s *fakeSuspender) Resume()  { s.suspended = false }

type fakePip struct {
	cmds chan bridge.Command
	pip  []bool
}

func (f *fakePip) Commands() <-chan bridge.Command { return f.cmds }
func (f *fakePip) SetPip(on bool)                  { f.pip = append(f.pip, on) }

type harness struct {
	player *fakePlayer
	vis    *fakeSuspender
	pip    *fakePip
	favs   *favorites.MemoryStore
	prefs  string
	m      Model
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		player: newFakePlayer(),
		vis:    &fakeSuspender{},
		pip:    &fakePip{cmds: make(chan bridge.Command, 1)},
		favs:   &favorites.MemoryStore{},
		prefs:  filepath.Join(t.TempDir(), "prefs.toml"),
	}
	h.m = New(Options{
		Player:     h.player,
		Store:      &state.Store{},
		Favorites:  h.favs,
		Spectrum:   NewSpectrum(),
		Visualizer: h.vis,
		Bridge:     h.pip,
		PrefsPath:  h.prefs,
	})
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func (h *harness) press(keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		cmd = h.send(keyMsg(k))
	}
	return cmd
}

// drain runs cmd and feeds every resulting message back into the model.
// Timers and bridge waits are dropped.
func (h *harness) drain(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case nil, tickMsg, commandMsg, spinner.TickMsg:
	case tea.BatchMsg:
		for _, c := range msg {
			h.drain(c)
		}
	default:
		h.drain(h.send(msg))
	}
}

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func TestThemeNamesAndCycle(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames() returned %d names, want 3", len(names))
	}
	for i, name := range names {
		want := names[(i+1)%len(names)]
		if got := NextTheme(name); got != want {
			t.Fatalf("NextTheme(%q) = %q, want %q", name, got, want)
		}
	}
	if got := NextTheme("missing"); got != names[0] {
		t.Fatalf("NextTheme(missing) = %q, want %q", got, names[0])
	}
	if got := GetTheme("missing").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(missing) = %q, want Nightfox", got)
	}
}

func TestRasterize(t *testing.T) {
	f := visualizer.Frame{
		Width:  8,
		Height: 16,
		Bars: []visualizer.Bar{
			{X: 0, W: 4, H: 16},
			{X: 4, W: 4, H: 4},
		},
	}
	got := rasterize(f, 2, 2)
	if string(got[0]) != "█ " {
		t.Fatalf("top row = %q, want %q", string(got[0]), "█ ")
	}
	if string(got[1]) != "█▄" {
		t.Fatalf("bottom row = %q, want %q", string(got[1]), "█▄")
	}
}

func TestRasterizeLeavesGaps(t *testing.T) {
	f := visualizer.Frame{
		Width:  8,
		Height: 8,
		Bars: []visualizer.Bar{
			{X: 0, W: 1, H: 8},
			{X: 4, W: 1, H: 8},
		},
	}
	got := rasterize(f, 4, 1)
	if string(got[0]) != "    " {
		t.Fatalf("row = %q, want blanks between thin bars", string(got[0]))
	}
}

func TestRasterizeEmptyFrame(t *testing.T) {
	got := rasterize(visualizer.Frame{}, 3, 2)
	if len(got) != 2 {
		t.Fatalf("rasterize(empty) returned %d rows, want 2", len(got))
	}
	for i, row := range got {
		if string(row) != "   " {
			t.Fatalf("row %d = %q, want blanks", i, string(row))
		}
	}
}

func TestSpectrumSurface(t *testing.T) {
	s := NewSpectrum()
	if w, h := s.Size(); w != 0 || h != 0 {
		t.Fatalf("Size() before Resize = %d,%d, want 0,0", w, h)
	}
	s.Resize(20, 5)
	if w, h := s.Size(); w != 20*cellUnitsX || h != 5*cellUnitsY {
		t.Fatalf("Size() = %d,%d, want %d,%d", w, h, 20*cellUnitsX, 5*cellUnitsY)
	}
	if _, ok := s.Frame(); ok {
		t.Fatalf("Frame() ready before any Draw")
	}
	s.Draw(visualizer.Frame{Width: 80, Height: 40})
	if _, ok := s.Frame(); !ok {
		t.Fatalf("Frame() not ready after Draw")
	}
	s.Resize(10, 5)
	if _, ok := s.Frame(); ok {
		t.Fatalf("Frame() still ready after resize")
	}
}

func TestStepRow(t *testing.T) {
	g := grid.Build(catalog.Default().All(), favorites.NewSet(), playback.State{}, []string{"Italian"})
	// Italian: 5 cards, International: 6 cards; two columns.
	tests := []struct {
		name       string
		pos, delta int
		want       int
	}{
		{"down inside section", 0, 1, 2},
		{"down into short last row", 3, 1, 4},
		{"down into next section", 4, 1, 5},
		{"jump past section end lands in next section", 3, 2, 6},
		{"up into previous section", 5, -1, 4},
		{"up at top stays", 0, -1, 0},
		{"down at bottom stays", 10, 1, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stepRow(g, tt.pos, 2, tt.delta); got != tt.want {
				t.Fatalf("stepRow(%d, %d) = %d, want %d", tt.pos, tt.delta, got, tt.want)
			}
		})
	}
}

func TestEnterPlaysSelectedStationByID(t *testing.T) {
	h := newHarness(t)
	// Pinned Italian section comes first; its first card is station 7.
	h.drain(h.press("enter"))
	if len(h.player.played) != 1 || h.player.played[0] != 7 {
		t.Fatalf("played = %v, want [7]", h.player.played)
	}

	h.press("l")
	h.drain(h.press("enter"))
	if got := h.player.played[len(h.player.played)-1]; got != 8 {
		t.Fatalf("played after moving right = %d, want 8", got)
	}
	if !h.m.playState.Playing || h.m.playState.Station.ID != 8 {
		t.Fatalf("playState = %+v, want playing station 8", h.m.playState)
	}
}

func TestTransportKeys(t *testing.T) {
	h := newHarness(t)
	h.drain(h.press(" "))
	h.drain(h.press("n"))
	h.drain(h.press("p"))
	if h.player.toggles != 1 || h.player.nexts != 1 || h.player.prevs != 1 {
		t.Fatalf("toggles/nexts/prevs = %d/%d/%d, want 1/1/1", h.player.toggles, h.player.nexts, h.player.prevs)
	}
}

func TestVolumeKeysStepAndClamp(t *testing.T) {
	h := newHarness(t)
	h.press("+")
	if got := h.player.volume; got < 0.849 || got > 0.851 {
		t.Fatalf("volume after + = %v, want 0.85", got)
	}
	h.press("-", "-")
	if got := h.player.volume; got < 0.749 || got > 0.751 {
		t.Fatalf("volume after - - = %v, want 0.75", got)
	}
	for i := 0; i < 30; i++ {
		h.press("+")
	}
	if got := h.player.volume; got != 1 {
		t.Fatalf("volume after many + = %v, want 1", got)
	}
}

func TestSearchFiltersLiveAndEscClears(t *testing.T) {
	h := newHarness(t)
	h.press("/", "j", "a", "z", "z")
	if !h.m.searching {
		t.Fatalf("searching = false after /")
	}
	if len(h.m.grid.Cards) != 1 || h.m.grid.Cards[0].Station.ID != 4 {
		t.Fatalf("grid after jazz = %d cards, want only Jazz Cafe", len(h.m.grid.Cards))
	}

	// Enter keeps the filter and leaves input mode; enter again plays.
	h.press("enter")
	if h.m.searching || h.m.query != "jazz" {
		t.Fatalf("searching=%v query=%q after enter, want false/jazz", h.m.searching, h.m.query)
	}
	h.drain(h.press("enter"))
	if got := h.player.played; len(got) != 1 || got[0] != 4 {
		t.Fatalf("played = %v, want [4]", got)
	}

	h.press("esc")
	if h.m.query != "" || len(h.m.grid.Cards) != 11 {
		t.Fatalf("after esc query=%q cards=%d, want empty/11", h.m.query, len(h.m.grid.Cards))
	}
}

func TestSearchNoMatches(t *testing.T) {
	h := newHarness(t)
	h.press("/", "x", "y", "z", "q")
	if !h.m.grid.Empty() {
		t.Fatalf("grid not empty for unmatched query")
	}
	// q is typed into the box, not treated as quit.
	if h.m.query != "xyzq" {
		t.Fatalf("query = %q, want xyzq", h.m.query)
	}
	h.press("enter")
	if cmd := h.press("enter"); cmd != nil {
		t.Fatalf("enter on empty grid returned a command")
	}
	if len(h.player.played) != 0 {
		t.Fatalf("played = %v, want none", h.player.played)
	}
}

func TestFavoriteToggle(t *testing.T) {
	h := newHarness(t)
	h.drain(h.press("f"))
	if !h.m.grid.Cards[0].Favorite {
		t.Fatalf("first card not favorite after f")
	}
	got, _ := h.favs.Get()
	if !got.Has(7) {
		t.Fatalf("store favorites = %v, want 7", got.IDs())
	}
	h.drain(h.press("f"))
	if h.m.grid.Cards[0].Favorite {
		t.Fatalf("first card still favorite after second f")
	}
}

func TestFocusSuspendsVisualizer(t *testing.T) {
	h := newHarness(t)
	h.send(tea.BlurMsg{})
	if !h.vis.suspended {
		t.Fatalf("visualizer not suspended on blur")
	}
	h.send(tea.FocusMsg{})
	if h.vis.suspended {
		t.Fatalf("visualizer still suspended on focus")
	}
}

func TestResizeSyncsSpectrum(t *testing.T) {
	h := newHarness(t)
	cols, rows := h.m.spectrum.Cells()
	if cols != 116 || rows != spectrumRows(40) {
		t.Fatalf("spectrum cells = %d,%d, want 116,%d", cols, rows, spectrumRows(40))
	}

	h.send(tea.WindowSizeMsg{Width: 60, Height: 20})
	cols, rows = h.m.spectrum.Cells()
	if cols != 56 || rows != spectrumRows(20) {
		t.Fatalf("spectrum cells = %d,%d, want 56,%d", cols, rows, spectrumRows(20))
	}

	h.press("v")
	if cols, rows = h.m.spectrum.Cells(); cols != 0 || rows != 0 {
		t.Fatalf("hidden spectrum cells = %d,%d, want 0,0", cols, rows)
	}
}

func TestBridgeCommands(t *testing.T) {
	h := newHarness(t)
	h.send(commandMsg(bridge.CmdEnterPip))
	if !h.m.mini {
		t.Fatalf("mini = false after enterPip")
	}
	if len(h.pip.pip) != 1 || !h.pip.pip[0] {
		t.Fatalf("SetPip calls = %v, want [true]", h.pip.pip)
	}
	if _, rows := h.m.spectrum.Cells(); rows != MiniSpectrumRows {
		t.Fatalf("mini spectrum rows = %d, want %d", rows, MiniSpectrumRows)
	}

	// A closed channel ends the bridge wait instead of blocking the drain.
	close(h.pip.cmds)
	h.drain(h.send(commandMsg(bridge.CmdToggle)))
	if h.player.toggles != 1 {
		t.Fatalf("toggles = %d, want 1", h.player.toggles)
	}

	h.send(commandMsg(bridge.CmdExitPip))
	if h.m.mini {
		t.Fatalf("mini = true after exitPip")
	}
	if len(h.pip.pip) != 2 || h.pip.pip[1] {
		t.Fatalf("SetPip calls = %v, want [true false]", h.pip.pip)
	}
}

func TestThemeKeyPersists(t *testing.T) {
	h := newHarness(t)
	h.drain(h.press("T"))
	if h.m.theme.Name != "Kanagawa" {
		t.Fatalf("theme = %q, want Kanagawa", h.m.theme.Name)
	}
	p, err := prefs.Load(h.prefs)
	if err != nil {
		t.Fatalf("prefs.Load: %v", err)
	}
	if p.Theme != "Kanagawa" {
		t.Fatalf("saved theme = %q, want Kanagawa", p.Theme)
	}
}

func TestHelpClosesOnAnyKey(t *testing.T) {
	h := newHarness(t)
	h.press("?")
	if !h.m.showHelp {
		t.Fatalf("showHelp = false after ?")
	}
	if !strings.Contains(h.m.View(), "Keyboard Shortcuts") {
		t.Fatalf("help view missing title")
	}
	h.press("n")
	if h.m.showHelp || h.player.nexts != 0 {
		t.Fatalf("showHelp=%v nexts=%d, want help closed without acting", h.m.showHelp, h.player.nexts)
	}
}

func TestQuitKeys(t *testing.T) {
	h := newHarness(t)
	for _, k := range []tea.KeyMsg{keyMsg("q"), {Type: tea.KeyCtrlC}} {
		cmd := h.send(k)
		if cmd == nil {
			t.Fatalf("%q returned no command", k.String())
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("%q did not quit", k.String())
		}
	}
}

func TestHeaderShowsStationTrackAndError(t *testing.T) {
	h := newHarness(t)
	store := &state.Store{}
	st, _ := catalog.Default().ByID(4)
	store.OnStationChanged(st)
	store.SetTrack("Miles Davis - So What")
	store.OnPlaybackError(errors.New("stream unavailable"))
	h.m.store = store
	h.player.state = playback.State{Loaded: true, Station: st}
	h.drain(fetchSnapshotCmd(store, h.player))

	view := h.m.View()
	for _, want := range []string{"Jazz Cafe", "Miles Davis - So What", "stream unavailable", "Paused"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q", want)
		}
	}
}

func TestLogViewRendersEntries(t *testing.T) {
	h := newHarness(t)
	h.press("L")
	if h.m.currentView != ViewLogs {
		t.Fatalf("currentView = %v, want logs", h.m.currentView)
	}
	h.send(logsMsg{entries: logtail.ParseLines([]string{
		`{"level":"warn","station":4,"time":"2026-01-02T03:04:05Z","message":"stream stalled"}`,
	})})
	view := h.m.View()
	if !strings.Contains(view, "WRN") || !strings.Contains(view, "stream stalled") || !strings.Contains(view, "station=") {
		t.Fatalf("log view missing entry:\n%s", view)
	}
	h.press("esc")
	if h.m.currentView != ViewStations {
		t.Fatalf("esc did not leave the log view")
	}
}

func TestLevelLabel(t *testing.T) {
	tests := map[string]string{
		"info":   "INF",
		"WARN":   "WRN",
		"error":  "ERR",
		"debug":  "DBG",
		"":       "???",
		"notice": "NOT",
	}
	for level, want := range tests {
		if got := levelLabel(level); got != want {
			t.Fatalf("levelLabel(%q) = %q, want %q", level, got, want)
		}
	}
}

func TestGaugeAndTruncate(t *testing.T) {
	if got := gauge(0.5, 4); got != "██░░" {
		t.Fatalf("gauge(0.5,4) = %q", got)
	}
	if got := gauge(2, 3); got != "███" {
		t.Fatalf("gauge(2,3) = %q", got)
	}
	if got := truncate("Classical Masterpieces", 10); got != "Classical…" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("Jazz", 10); got != "Jazz" {
		t.Fatalf("truncate short = %q", got)
	}
}

func TestTickReschedules(t *testing.T) {
	h := newHarness(t)
	if cmd := h.send(tickMsg(time.Now())); cmd == nil {
		t.Fatalf("tick returned no command")
	}
}

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/tuner/internal/catalog"
)

// renderHeader renders the transport bar: play state, station, stream
// title, volume and the last error.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	content := bg.Join(m.transportParts(styles, bg, m.width < LayoutCompactWidth), "  ")
	return styles.Header.Width(m.width).Render(content)
}

// transportParts builds the header segments. Compact mode drops the genre
// and the volume gauge.
func (m Model) transportParts(styles Styles, bg BgStyle, compact bool) []string {
	st := m.playState
	parts := []string{bg.Render("tuner", styles.Logo)}

	switch {
	case st.Pending:
		parts = append(parts, bg.Render(m.spinner.View()+" Buffering", styles.WarningText))
	case st.Playing:
		parts = append(parts, bg.Render("▶ Playing", styles.SuccessText))
	case st.Loaded:
		parts = append(parts, bg.Render("⏸ Paused", styles.MutedText))
	default:
		parts = append(parts, bg.Render("■ Stopped", styles.FaintText))
	}

	if st.Loaded {
		parts = append(parts, m.stationLabel(st.Station, styles, bg, compact))
	} else {
		parts = append(parts, bg.Render("Pick a station", styles.FaintText))
	}

	if track := m.currentTrack(); track != "" {
		parts = append(parts, bg.Render("♪ "+truncate(track, max(m.width/3, 12)), styles.InfoText))
	}

	vol := m.playState.Volume
	if compact {
		parts = append(parts, bg.Render(fmt.Sprintf("Vol %d%%", volumePercent(vol)), styles.MutedText))
	} else {
		parts = append(parts,
			bg.Render("Vol", styles.MutedText)+bg.Space()+
				bg.Render(gauge(vol, 10), styles.AccentText)+bg.Space()+
				bg.Render(fmt.Sprintf("%3d%%", volumePercent(vol)), styles.Text))
	}

	if err := m.snapshot.LastError; err != nil {
		label := truncate(err.Error(), max(m.width/3, 16))
		if m.snapshot.IsOffline() {
			label = "Offline: " + label
		}
		parts = append(parts, bg.Render("⚠ "+label, styles.DangerText))
	}
	return parts
}

// stationLabel renders the station name with its accent colour.
func (m Model) stationLabel(s catalog.Station, styles Styles, bg BgStyle, compact bool) string {
	name := bg.Render(s.Name, styles.Text.Bold(true))
	if s.Color != (catalog.RGB{}) {
		name = bg.Render("●", lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color.Hex()))) + bg.Space() + name
	}
	if compact || s.Genre == "" {
		return name
	}
	return name + bg.Space() + bg.Render("· "+s.Genre, styles.MutedText)
}

// currentTrack returns the stream title if it belongs to the loaded station.
func (m Model) currentTrack() string {
	if !m.snapshot.HasStation || !m.playState.Loaded {
		return ""
	}
	if m.snapshot.Station.ID != m.playState.Station.ID {
		return ""
	}
	return m.snapshot.Track
}

// renderCommandBar renders the command hints bar.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewLogs:
		followLabel := "Pause"
		if !m.logState.follow {
			followLabel = "Follow"
		}
		commands = []cmd{
			{"F", followLabel},
			{"j/k", "Scroll"},
			{"g/G", "Top/Bottom"},
			{"L", "Stations"},
			{"?", "More"},
		}
	default:
		commands = []cmd{
			{"enter", "Play"},
			{"space", ternary(m.playState.Playing || m.playState.Pending, "Pause", "Play")},
			{"n/p", "Next/Prev"},
			{"+/-", "Volume"},
			{"f", "Fav"},
			{"/", "Search"},
			{"v", "Viz"},
			{"m", "Mini"},
			{"L", "Logs"},
			{"?", "More"},
		}
	}

	colon := bg.Render(":", styles.FaintText)
	segments := make([]string, 0, len(commands)+3)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	if m.currentView == ViewStations && m.query != "" {
		segments = append(segments, bg.Render("/"+truncate(m.query, 18), styles.AccentText))
	}
	if !m.focused {
		segments = append(segments, bg.Render("viz paused", styles.FaintText))
	}
	if m.notice != "" {
		segments = append(segments, bg.Render(truncate(m.notice, 40), styles.WarningText))
	}

	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(bg.Join(segments, "  "))
}

// renderMini renders the compact player: transport line and a slim spectrum.
func (m Model) renderMini() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	header := styles.Header.Width(m.width).Render(bg.Join(m.transportParts(styles, bg, true), "  "))
	if m.spectrum == nil {
		return header
	}
	cols, rows := m.spectrum.Cells()
	box := m.renderBox("", m.renderSpectrum(cols, rows), m.width, rows+2, false)
	return header + "\n" + box
}

// volumePercent rounds v to a whole percentage.
func volumePercent(v float64) int {
	return int(v*100 + 0.5)
}

// iconGlyphs maps catalog icon names onto single-width glyphs.
var iconGlyphs = map[string]string{
	"fa-coffee":          "◒",
	"fa-violin":          "♬",
	"fa-headphones":      "☊",
	"fa-saxophone":       "♫",
	"fa-music":           "♪",
	"fa-newspaper":       "≡",
	"fa-record-vinyl":    "◉",
	"fa-bolt":            "ϟ",
	"fa-tower-broadcast": "⌁",
	"fa-star":            "★",
	"fa-radio":           "◍",
}

// stationGlyph returns the glyph for icon, or a note for unknown icons.
func stationGlyph(icon string) string {
	if g, ok := iconGlyphs[strings.TrimSpace(icon)]; ok {
		return g
	}
	return "♪"
}

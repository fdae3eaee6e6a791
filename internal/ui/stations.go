package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/tuner/internal/catalog"
	"github.com/five82/tuner/internal/grid"
)

// renderStations renders the spectrum panel, the search line and the
// station grid below the header.
func (m Model) renderStations() string {
	remaining := m.height - 2
	var blocks []string

	if m.showViz && m.spectrum != nil {
		cols, rows := m.spectrum.Cells()
		if rows > 0 && remaining > rows+2+4 {
			blocks = append(blocks, m.renderBox("Spectrum", m.renderSpectrum(cols, rows), m.width, rows+2, false))
			remaining -= rows + 2
		}
	}

	if m.searching || m.query != "" {
		blocks = append(blocks, m.renderSearchLine())
		remaining--
	}

	title := "Stations"
	if m.query != "" {
		title = fmt.Sprintf("Stations (%d found)", len(m.grid.Cards))
	}
	if remaining >= 3 {
		body := m.renderGrid(m.width-2, remaining-2)
		blocks = append(blocks, m.renderBox(title, body, m.width, remaining, !m.searching))
	}
	return strings.Join(blocks, "\n")
}

// renderSearchLine renders the search input or the active filter.
func (m Model) renderSearchLine() string {
	styles := m.theme.Styles()
	if m.searching {
		return " " + m.search.View()
	}
	return " " + styles.AccentText.Render("/"+m.query) + "  " + styles.FaintText.Render("esc clears")
}

// renderGrid lays the grid sections out in rows of cards, scrolled so the
// selected card stays visible.
func (m Model) renderGrid(width, height int) string {
	styles := m.theme.Styles()
	if m.grid.Empty() {
		msg := "No stations"
		if m.query != "" {
			msg = fmt.Sprintf("No stations match %q", m.query)
		}
		return styles.FaintText.Render(msg)
	}

	cols := max(width/CardWidth, 1)
	var lines []string
	cursorLine := 0
	pos := 0
	for i, sec := range m.grid.Sections {
		if i > 0 {
			lines = append(lines, "")
		}
		heading := fmt.Sprintf("%s (%d)", sec.Category, len(sec.Cards))
		lines = append(lines, styles.AccentText.Bold(true).Render(heading))

		for start := 0; start < len(sec.Cards); start += cols {
			end := min(start+cols, len(sec.Cards))
			var top, bottom []string
			for j := start; j < end; j++ {
				selected := pos+j == m.cursor
				if selected {
					cursorLine = len(lines)
				}
				t, b := m.renderCard(sec.Cards[j], selected, styles)
				top = append(top, t)
				bottom = append(bottom, b)
			}
			lines = append(lines, strings.Join(top, ""), strings.Join(bottom, ""))
		}
		pos += len(sec.Cards)
	}

	if height <= 0 || len(lines) <= height {
		return strings.Join(lines, "\n")
	}
	offset := 0
	if cursorLine+2 > height {
		offset = cursorLine + 2 - height
	}
	offset = min(offset, len(lines)-height)
	return strings.Join(lines[offset:offset+height], "\n")
}

// renderCard renders one station card as two lines of CardWidth cells.
func (m Model) renderCard(c grid.Card, selected bool, styles Styles) (string, string) {
	inner := CardWidth - 2
	heart := " "
	if c.Favorite {
		heart = "♥"
	}
	marker := " "
	switch {
	case c.Pending:
		marker = "…"
	case c.Playing:
		marker = "▶"
	case c.Current:
		marker = "⏸"
	}

	glyph := stationGlyph(c.Station.Icon)
	name := truncate(c.Station.Name, inner-6)
	genre := truncate(c.Station.Genre, inner-6)

	if selected {
		box := styles.Selected.Width(inner)
		top := box.Render(fmt.Sprintf("%s %s %s %s", marker, heart, glyph, name))
		bottom := box.Render("      " + genre)
		return " " + top + " ", " " + bottom + " "
	}

	nameStyle := styles.Text
	if c.Current {
		nameStyle = styles.SuccessText
	}
	top := styles.SuccessText.Render(marker) + " " +
		styles.HeartText.Render(heart) + " " +
		lipgloss.NewStyle().Foreground(lipgloss.Color(glyphColor(c.Station, m.theme))).Render(glyph) + " " +
		nameStyle.Render(name)
	bottom := styles.MutedText.Render("      " + genre)
	cell := lipgloss.NewStyle().Width(inner)
	return " " + cell.Render(top) + " ", " " + cell.Render(bottom) + " "
}

// glyphColor picks the station accent, falling back to the theme accent for
// unset or black colours.
func glyphColor(s catalog.Station, t Theme) string {
	if s.Color == (catalog.RGB{}) {
		return t.Accent
	}
	return s.Color.Hex()
}

package ui

import (
	"math"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/tuner/internal/visualizer"
)

// Surface units per terminal cell. Eight vertical units match the eighth
// block glyphs.
const (
	cellUnitsX = 4
	cellUnitsY = 8
)

// blocks indexes eighth-height glyphs by filled eighths.
var blocks = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Spectrum is the terminal visualizer.Surface. The engine draws into it from
// its own goroutine; the UI reads the latest frame on render.
type Spectrum struct {
	mu    sync.Mutex
	cols  int
	rows  int
	frame visualizer.Frame
	ready bool
}

// NewSpectrum returns a zero-sized surface. The engine skips frames until
// Resize gives it a size.
func NewSpectrum() *Spectrum {
	return &Spectrum{}
}

// Resize sets the panel body size in cells. A zero size pauses drawing.
func (s *Spectrum) Resize(cols, rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cols != s.cols || rows != s.rows {
		s.ready = false
	}
	s.cols, s.rows = max(cols, 0), max(rows, 0)
}

// Size implements visualizer.Surface in surface units.
func (s *Spectrum) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cols * cellUnitsX, s.rows * cellUnitsY
}

// Draw implements visualizer.Surface.
func (s *Spectrum) Draw(f visualizer.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = f
	s.ready = true
}

// Cells returns the current panel size in cells.
func (s *Spectrum) Cells() (cols, rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cols, s.rows
}

// Frame returns the last drawn frame and whether it matches the current size.
func (s *Spectrum) Frame() (visualizer.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame, s.ready
}

// rasterize maps a frame onto a rows x cols glyph grid, top row first. Each
// column samples the bar under its centre; bar tops use eighth blocks.
func rasterize(f visualizer.Frame, cols, rows int) [][]rune {
	grid := make([][]rune, rows)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", cols))
	}
	if len(f.Bars) == 0 || f.Width <= 0 || cols <= 0 || rows <= 0 {
		return grid
	}

	scaleX := f.Width / float64(cols)
	scaleY := f.Height / float64(rows)
	pitch := f.Width / float64(len(f.Bars))

	for c := 0; c < cols; c++ {
		x := (float64(c) + 0.5) * scaleX
		i := int(x / pitch)
		if i < 0 || i >= len(f.Bars) {
			continue
		}
		bar := f.Bars[i]
		if x < bar.X || x >= bar.X+bar.W || bar.H <= 0 {
			continue
		}
		height := bar.H / scaleY
		for r := 0; r < rows; r++ {
			fromBottom := float64(rows - 1 - r)
			fill := height - fromBottom
			switch {
			case fill >= 1:
				grid[r][c] = blocks[len(blocks)-1]
			case fill > 0:
				eighths := int(math.Round(fill * 8))
				if bar.Radius > 0 && eighths > 1 {
					eighths--
				}
				grid[r][c] = blocks[eighths]
			}
		}
	}
	return grid
}

// renderSpectrum rasterises the latest frame and colours each row with the
// frame gradient, bottom row at offset 0.
func (m Model) renderSpectrum(cols, rows int) string {
	if m.spectrum == nil || cols <= 0 || rows <= 0 {
		return ""
	}
	frame, ok := m.spectrum.Frame()
	if !ok {
		frame = visualizer.Frame{}
	}
	grid := rasterize(frame, cols, rows)
	gradient := frame.Gradient
	if gradient == (visualizer.Gradient{}) {
		gradient = visualizer.DefaultGradient
	}

	lines := make([]string, rows)
	for r, row := range grid {
		t := 0.0
		if rows > 1 {
			t = float64(rows-1-r) / float64(rows-1)
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(gradient.At(t)))
		lines[r] = style.Render(string(row))
	}
	return strings.Join(lines, "\n")
}

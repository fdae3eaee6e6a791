package visualizer

import (
	"github.com/lucasb-eyer/go-colorful"
)

// Stop is one colour stop of the bar gradient, Offset 0 at the bottom of the
// surface and 1 at the top.
type Stop struct {
	Offset float64
	Color  string
}

// Gradient is the fixed vertical fill shared by every bar.
type Gradient [3]Stop

// DefaultGradient is purple at the floor, teal in the middle and light
// purple at the top.
var DefaultGradient = Gradient{
	{Offset: 0, Color: "#6c5ce7"},
	{Offset: 0.5, Color: "#00cec9"},
	{Offset: 1, Color: "#a29bfe"},
}

// At returns the gradient colour at t in [0,1] as "#rrggbb".
func (g Gradient) At(t float64) string {
	if t <= g[0].Offset {
		return g[0].Color
	}
	for i := 1; i < len(g); i++ {
		if t == g[i].Offset {
			return g[i].Color
		}
		if t < g[i].Offset {
			lo, hi := g[i-1], g[i]
			span := hi.Offset - lo.Offset
			if span <= 0 {
				return hi.Color
			}
			a, errA := colorful.Hex(lo.Color)
			b, errB := colorful.Hex(hi.Color)
			if errA != nil || errB != nil {
				return hi.Color
			}
			return a.BlendRgb(b, (t-lo.Offset)/span).Clamped().Hex()
		}
	}
	return g[len(g)-1].Color
}

// Style holds the tunables of the bar layout.
type Style struct {
	// UsedFraction is the share of low bins that are drawn.
	UsedFraction float64
	// HeightScale caps the tallest bar as a share of surface height.
	HeightScale float64
	// Gap is subtracted from every bar's width.
	Gap float64
	// Radius is the corner radius of each bar.
	Radius   float64
	Gradient Gradient
}

// DefaultStyle matches the canvas renderer: 70% of bins, 80% headroom cap,
// 2 unit gaps and 4 unit corners.
func DefaultStyle() Style {
	return Style{
		UsedFraction: 0.7,
		HeightScale:  0.8,
		Gap:          2,
		Radius:       4,
		Gradient:     DefaultGradient,
	}
}

// Bar is one rounded rectangle rising from the bottom of the surface.
type Bar struct {
	X, Y, W, H float64
	Radius     float64
	Value      uint8
}

// Frame is everything a surface needs to paint one visualizer frame.
type Frame struct {
	Width, Height float64
	Bars          []Bar
	Gradient      Gradient
}

// UsedBins returns how many of n bins are drawn.
func UsedBins(n int, fraction float64) int {
	if fraction <= 0 || fraction > 1 {
		fraction = 1
	}
	return int(float64(n) * fraction)
}

// Layout maps frequency bins onto bars for a surface of the given size.
func Layout(bins []uint8, width, height float64, st Style) Frame {
	frame := Frame{Width: width, Height: height, Gradient: st.Gradient}
	used := UsedBins(len(bins), st.UsedFraction)
	if used == 0 || width <= 0 || height <= 0 {
		return frame
	}

	barWidth := width / float64(used)
	drawn := barWidth - st.Gap
	if drawn < 0 {
		drawn = 0
	}

	frame.Bars = make([]Bar, used)
	for i := 0; i < used; i++ {
		h := float64(bins[i]) / 255 * height * st.HeightScale
		r := st.Radius
		if drawn < 2*r {
			r = drawn / 2
		}
		if h < 2*r {
			r = h / 2
		}
		frame.Bars[i] = Bar{
			X:      float64(i) * barWidth,
			Y:      height - h,
			W:      drawn,
			H:      h,
			Radius: r,
			Value:  bins[i],
		}
	}
	return frame
}

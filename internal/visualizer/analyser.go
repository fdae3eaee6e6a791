package visualizer

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// DefaultFFTSize yields 128 usable frequency bins.
const DefaultFFTSize = 256

const (
	minDecibels         = -100.0
	maxDecibels         = -30.0
	smoothingTimeConst  = 0.8
	minFFTSize          = 32
	maxFFTSize          = 32768
	maxByteFrequencyVal = 255.0
)

// Analyser turns the most recent time-domain samples into byte-scaled
// frequency magnitudes, one per bin, each in [0,255].
type Analyser struct {
	size     int
	window   []float64
	frame    []float64
	smoothed []float64
	bins     []uint8
}

// NewAnalyser allocates an analyser for a power-of-two transform size.
func NewAnalyser(fftSize int) (*Analyser, error) {
	if fftSize < minFFTSize || fftSize > maxFFTSize || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("fft size %d: must be a power of two in [%d, %d]", fftSize, minFFTSize, maxFFTSize)
	}
	return &Analyser{
		size:     fftSize,
		window:   window.Blackman(fftSize),
		frame:    make([]float64, fftSize),
		smoothed: make([]float64, fftSize/2),
		bins:     make([]uint8, fftSize/2),
	}, nil
}

// FFTSize returns the transform size.
func (a *Analyser) FFTSize() int { return a.size }

// BinCount returns the number of usable frequency bins (half the FFT size).
func (a *Analyser) BinCount() int { return a.size / 2 }

// ByteFrequencyData samples src and returns the analyser's bin buffer.
// The returned slice is reused by the next call.
func (a *Analyser) ByteFrequencyData(src Source) []uint8 {
	n := src.Samples(a.frame)
	if n < 0 {
		n = 0
	}
	if n > a.size {
		n = a.size
	}
	if n < a.size {
		// Right-align what we have; the missing head is silence.
		copy(a.frame[a.size-n:], a.frame[:n])
		clear(a.frame[:a.size-n])
	}
	return a.process(a.frame)
}

// Process analyses an explicit block of samples. Only the last FFTSize
// samples are used.
func (a *Analyser) Process(samples []float64) []uint8 {
	clear(a.frame)
	if len(samples) > a.size {
		samples = samples[len(samples)-a.size:]
	}
	copy(a.frame[a.size-len(samples):], samples)
	return a.process(a.frame)
}

func (a *Analyser) process(frame []float64) []uint8 {
	windowed := make([]float64, a.size)
	for i, v := range frame {
		windowed[i] = v * a.window[i]
	}
	spectrum := fft.FFTReal(windowed)

	scale := maxByteFrequencyVal / (maxDecibels - minDecibels)
	for k := range a.bins {
		mag := cmplx.Abs(spectrum[k]) / float64(a.size)
		a.smoothed[k] = smoothingTimeConst*a.smoothed[k] + (1-smoothingTimeConst)*mag
		if a.smoothed[k] <= 0 {
			a.bins[k] = 0
			continue
		}
		db := 20 * math.Log10(a.smoothed[k])
		v := scale * (db - minDecibels)
		switch {
		case v <= 0 || math.IsNaN(v):
			a.bins[k] = 0
		case v >= maxByteFrequencyVal:
			a.bins[k] = 255
		default:
			a.bins[k] = uint8(v)
		}
	}
	return a.bins
}

// Package visualizer renders a live bar chart of the playing audio's
// frequency spectrum.
package visualizer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	// ErrUnavailable means the analysis graph could not be bound.
	ErrUnavailable = errors.New("visualizer unavailable")
	// ErrNotInitialized is returned by Start before a successful Setup.
	ErrNotInitialized = errors.New("visualizer not initialized")
)

// DefaultFrameRate is used when Config.FrameRate is unset.
const DefaultFrameRate = 30

// Source exposes the most recent audio of the shared output.
type Source interface {
	// Samples fills dst[:n] with the latest n mono samples in
	// chronological order and returns n.
	Samples(dst []float64) int
	SampleRate() int
}

// Graph is implemented by sources whose processing can be auto-suspended.
type Graph interface {
	Suspended() bool
	Resume() error
}

// Surface is where frames are drawn.
type Surface interface {
	Size() (width, height int)
	Draw(Frame)
}

// Phase is the engine lifecycle state.
type Phase int

const (
	Uninitialized Phase = iota
	Initialized
	Running
)

func (p Phase) String() string {
	switch p {
	case Initialized:
		return "initialized"
	case Running:
		return "running"
	default:
		return "uninitialized"
	}
}

// Config tunes the engine.
type Config struct {
	FFTSize   int
	FrameRate int
	Style     Style
}

// Engine owns the analysis graph binding and the per-frame draw loop.
type Engine struct {
	cfg     Config
	surface Surface

	mu       sync.Mutex
	phase    Phase
	source   Source
	analyser *Analyser

	suspended atomic.Bool
	frames    atomic.Uint64
}

// NewEngine builds an uninitialized engine drawing onto surface.
func NewEngine(surface Surface, cfg Config) *Engine {
	if cfg.FFTSize == 0 {
		cfg.FFTSize = DefaultFFTSize
	}
	if cfg.FrameRate <= 0 {
		cfg.FrameRate = DefaultFrameRate
	}
	if cfg.Style == (Style{}) {
		cfg.Style = DefaultStyle()
	}
	return &Engine{cfg: cfg, surface: surface}
}

// Setup binds the analyser to src. Only the first successful call has any
// effect; later calls return nil without rebinding.
func (e *Engine) Setup(src Source) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != Uninitialized {
		return nil
	}
	if src == nil {
		return fmt.Errorf("%w: no audio source", ErrUnavailable)
	}
	if e.surface == nil {
		return fmt.Errorf("%w: no drawing surface", ErrUnavailable)
	}
	analyser, err := NewAnalyser(e.cfg.FFTSize)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	e.source = src
	e.analyser = analyser
	e.phase = Initialized
	log.Debug().Int("fft_size", analyser.FFTSize()).Int("bins", analyser.BinCount()).Msg("visualizer initialized")
	return nil
}

// Start resumes a suspended graph and begins the frame loop. The loop runs
// until ctx is cancelled. Calling Start on a running engine is a no-op.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.phase {
	case Uninitialized:
		return ErrNotInitialized
	case Running:
		return nil
	}

	if g, ok := e.source.(Graph); ok && g.Suspended() {
		if err := g.Resume(); err != nil {
			log.Warn().Err(err).Msg("resume audio graph")
		}
	}

	e.phase = Running
	interval := time.Second / time.Duration(e.cfg.FrameRate)
	go e.loop(ctx, interval)
	log.Debug().Dur("interval", interval).Msg("visualizer running")
	return nil
}

func (e *Engine) loop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if e.suspended.Load() {
				continue
			}
			e.drawFrame()
		}
	}
}

func (e *Engine) drawFrame() {
	w, h := e.surface.Size()
	if w <= 0 || h <= 0 {
		return
	}
	bins := e.analyser.ByteFrequencyData(e.source)
	e.surface.Draw(Layout(bins, float64(w), float64(h), e.cfg.Style))
	e.frames.Add(1)
}

// Suspend stops drawing without leaving the Running phase.
func (e *Engine) Suspend() { e.suspended.Store(true) }

// Resume restarts drawing after Suspend.
func (e *Engine) Resume() { e.suspended.Store(false) }

// Suspended reports whether drawing is suspended.
func (e *Engine) Suspended() bool { return e.suspended.Load() }

// Phase reports the lifecycle state.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Frames returns how many frames have been drawn.
func (e *Engine) Frames() uint64 { return e.frames.Load() }

// BinCount returns the analyser bin count, or zero before Setup.
func (e *Engine) BinCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.analyser == nil {
		return 0
	}
	return e.analyser.BinCount()
}

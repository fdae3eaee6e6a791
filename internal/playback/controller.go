package playback

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/five82/tuner/internal/catalog"
	"github.com/five82/tuner/internal/visualizer"
)

var (
	// ErrNoStation is returned by Play when nothing has been loaded.
	ErrNoStation = errors.New("no station loaded")
	// ErrEmptyCatalog is returned by transport operations on an empty catalog.
	ErrEmptyCatalog = errors.New("catalog is empty")
	// ErrUnknownStation marks a lookup miss. It is never reported to the binding.
	ErrUnknownStation = errors.New("unknown station")
	// ErrSuperseded resolves a play request overtaken by a later operation.
	ErrSuperseded = errors.New("play request superseded")
)

// DefaultVolume is the initial output volume when none is configured.
const DefaultVolume = 0.8

// Output is the one shared audio output.
type Output interface {
	// Load replaces the current source with url and stops any playback.
	Load(url string)
	// Start blocks until audio is flowing or starting has failed.
	Start(ctx context.Context) error
	Stop()
	SetVolume(v float64)
}

// Visualizer is the spectrum engine driven by the controller.
type Visualizer interface {
	Setup(src visualizer.Source) error
	Start(ctx context.Context) error
}

// State is a snapshot of the playback session.
type State struct {
	Index   int
	Loaded  bool
	Playing bool
	Pending bool
	Volume  float64
	Station catalog.Station
}

// Outcome is the deferred result of a play request.
type Outcome struct {
	Station catalog.Station
	Playing bool
	Err     error
}

// Started reports whether the request ended with audio flowing.
func (o Outcome) Started() bool { return o.Err == nil && o.Playing }

// Config wires a controller to its collaborators. Catalog and Output are
// required.
type Config struct {
	Catalog    *catalog.Catalog
	Output     Output
	Visualizer Visualizer
	// Source is the tap the visualizer analyses.
	Source  visualizer.Source
	Binding Binding
	Volume  float64
}

// Controller is the playback session. It is safe for concurrent use.
type Controller struct {
	ctx     context.Context
	catalog *catalog.Catalog
	output  Output
	vis     Visualizer
	source  visualizer.Source
	binding Binding

	mu        sync.Mutex
	index     int
	loaded    bool
	playing   bool
	pending   bool
	volume    float64
	gen       uint64
	cancel    context.CancelFunc
	visReady  bool
	visFailed int
}

// New builds a controller. ctx bounds every play request and the visualizer
// draw loop.
func New(ctx context.Context, cfg Config) *Controller {
	c := &Controller{
		ctx:     ctx,
		catalog: cfg.Catalog,
		output:  cfg.Output,
		vis:     cfg.Visualizer,
		source:  cfg.Source,
		binding: cfg.Binding,
		volume:  DefaultVolume,
	}
	if c.binding == nil {
		c.binding = nopBinding{}
	}
	if c.catalog == nil {
		c.catalog, _ = catalog.New(nil)
	}
	if cfg.Volume != 0 {
		c.volume = clampVolume(cfg.Volume)
	}
	c.output.SetVolume(c.volume)
	return c
}

// Catalog returns the full catalog the controller indexes into.
func (c *Controller) Catalog() *catalog.Catalog { return c.catalog }

// LoadStation points the output at station and announces it. Play state is
// left alone.
func (c *Controller) LoadStation(station catalog.Station) error {
	idx, ok := c.catalog.IndexOf(station.ID)
	if !ok {
		return fmt.Errorf("%w: id %d", ErrUnknownStation, station.ID)
	}
	c.load(idx)
	return nil
}

func (c *Controller) load(idx int) catalog.Station {
	st := c.catalog.At(idx)

	c.mu.Lock()
	c.supersedeLocked()
	c.index = idx
	c.loaded = true
	c.mu.Unlock()

	c.output.Load(st.URL)
	log.Debug().Int("id", st.ID).Str("station", st.Name).Msg("station loaded")
	c.binding.OnStationChanged(st)
	return st
}

// Play starts the loaded station. The visualizer is set up on the first
// play that reaches it.
func (c *Controller) Play() <-chan Outcome {
	c.mu.Lock()
	if !c.loaded {
		c.mu.Unlock()
		return resolved(Outcome{Err: ErrNoStation})
	}
	c.setupVisualizerLocked()

	c.supersedeLocked()
	c.gen++
	gen := c.gen
	ctx, cancel := context.WithCancel(c.ctx)
	c.cancel = cancel
	c.pending = true
	st := c.catalog.At(c.index)
	c.mu.Unlock()

	out := make(chan Outcome, 1)
	go func() {
		defer cancel()
		err := c.output.Start(ctx)
		out <- c.finish(gen, st, err)
		close(out)
	}()
	return out
}

func (c *Controller) finish(gen uint64, st catalog.Station, err error) Outcome {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return Outcome{Station: st, Err: ErrSuperseded}
	}
	c.pending = false
	c.cancel = nil

	if err != nil {
		wasPlaying := c.playing
		c.playing = false
		c.mu.Unlock()

		err = fmt.Errorf("play %s: %w", st.Name, err)
		log.Warn().Err(err).Int("id", st.ID).Msg("playback failed")
		if wasPlaying {
			c.binding.OnPlayStateChanged(false)
		}
		c.binding.OnPlaybackError(err)
		return Outcome{Station: st, Err: err}
	}

	c.playing = true
	startVis := c.visReady
	c.mu.Unlock()

	if startVis {
		if verr := c.vis.Start(c.ctx); verr != nil {
			log.Warn().Err(verr).Msg("visualizer start")
		}
	}
	log.Info().Int("id", st.ID).Str("station", st.Name).Msg("playing")
	c.binding.OnPlayStateChanged(true)
	return Outcome{Station: st, Playing: true}
}

// setupVisualizerLocked binds the visualizer once. A failure is logged and
// retried on the next play; playback proceeds either way.
func (c *Controller) setupVisualizerLocked() {
	if c.vis == nil || c.visReady {
		return
	}
	if err := c.vis.Setup(c.source); err != nil {
		c.visFailed++
		log.Warn().Err(err).Int("attempt", c.visFailed).Msg("visualizer unavailable")
		return
	}
	c.visReady = true
}

func (c *Controller) supersedeLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.pending {
		c.gen++
		c.pending = false
	}
}

// Pause stops the output. A pending play request resolves as superseded.
func (c *Controller) Pause() {
	c.mu.Lock()
	c.supersedeLocked()
	wasPlaying := c.playing
	c.playing = false
	c.mu.Unlock()

	c.output.Stop()
	log.Debug().Msg("paused")
	if wasPlaying {
		c.binding.OnPlayStateChanged(false)
	}
}

// Interrupted records that the output dropped after it had started. The
// session flips to paused and the binding hears about it once.
func (c *Controller) Interrupted(err error) {
	c.mu.Lock()
	if !c.playing || c.pending {
		c.mu.Unlock()
		return
	}
	c.playing = false
	c.gen++
	st := c.catalog.At(c.index)
	c.mu.Unlock()

	c.output.Stop()
	err = fmt.Errorf("play %s: %w", st.Name, err)
	log.Warn().Err(err).Int("id", st.ID).Msg("stream interrupted")
	c.binding.OnPlayStateChanged(false)
	c.binding.OnPlaybackError(err)
}

// TogglePlay plays the first station on a fresh session, otherwise flips
// between playing and paused. A pending request counts as playing.
func (c *Controller) TogglePlay() <-chan Outcome {
	if c.catalog.Len() == 0 {
		return resolved(Outcome{Err: ErrEmptyCatalog})
	}

	c.mu.Lock()
	loaded, active := c.loaded, c.playing || c.pending
	st := c.catalog.At(c.index)
	c.mu.Unlock()

	switch {
	case !loaded:
		c.load(0)
		return c.Play()
	case active:
		c.Pause()
		return resolved(Outcome{Station: st})
	default:
		return c.Play()
	}
}

// Next loads and plays the following station, wrapping to the first.
func (c *Controller) Next() <-chan Outcome { return c.step(1) }

// Previous loads and plays the preceding station, wrapping to the last.
func (c *Controller) Previous() <-chan Outcome { return c.step(-1) }

func (c *Controller) step(delta int) <-chan Outcome {
	n := c.catalog.Len()
	if n == 0 {
		return resolved(Outcome{Err: ErrEmptyCatalog})
	}
	c.mu.Lock()
	idx := ((c.index+delta)%n + n) % n
	c.mu.Unlock()

	c.load(idx)
	return c.Play()
}

// PlayStationByID resolves id against the full catalog and plays it. An
// unknown id changes nothing and resolves with ErrUnknownStation.
func (c *Controller) PlayStationByID(id int) <-chan Outcome {
	idx, ok := c.catalog.IndexOf(id)
	if !ok {
		log.Debug().Int("id", id).Msg("play by id: no such station")
		return resolved(Outcome{Err: fmt.Errorf("%w: id %d", ErrUnknownStation, id)})
	}
	c.load(idx)
	return c.Play()
}

// SetVolume clamps v into [0,1] and applies it. NaN is ignored.
func (c *Controller) SetVolume(v float64) {
	if math.IsNaN(v) {
		return
	}
	v = clampVolume(v)

	c.mu.Lock()
	c.volume = v
	c.mu.Unlock()

	c.output.SetVolume(v)
}

// Volume returns the current volume.
func (c *Controller) Volume() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volume
}

// State returns a snapshot of the session.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := State{
		Index:   c.index,
		Loaded:  c.loaded,
		Playing: c.playing,
		Pending: c.pending,
		Volume:  c.volume,
	}
	if c.loaded {
		s.Station = c.catalog.At(c.index)
	}
	return s
}

func clampVolume(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func resolved(o Outcome) <-chan Outcome {
	ch := make(chan Outcome, 1)
	ch <- o
	close(ch)
	return ch
}

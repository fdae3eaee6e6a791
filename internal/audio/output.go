// Package audio is the shared audio output: it connects to an MP3 radio
// stream over HTTP, decodes it with beep and plays it through the speaker.
package audio

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/rs/zerolog/log"
)

const (
	DefaultSampleRate   = beep.SampleRate(44100)
	DefaultUserAgent    = "tuner/1.0"
	DefaultTapSize      = 4096
	SpeakerBufferSize   = 250 * time.Millisecond
	SampleChannelSize   = 8192
	ReadTimeout         = 10 * time.Second
	VolumeCurveExponent = 0.5
	MinVolumeDB         = -10.0
	resampleQuality     = 4
)

// Config tunes an Output. The zero value is usable.
type Config struct {
	UserAgent string
	Client    *http.Client
	TapSize   int
	// OnTitle receives ICY StreamTitle changes.
	OnTitle func(string)
	// OnDrop is called once when a started stream ends on its own.
	OnDrop func(error)
}

// Output plays one stream at a time. Loading a new URL replaces the source.
type Output struct {
	cfg    Config
	client *http.Client
	tap    *Tap

	sink sink

	mu          sync.Mutex
	url         string
	volume      float64
	vol         *effects.Volume
	sess        *session
	rate        beep.SampleRate
	speakerInit bool
	suspended   bool
}

type session struct {
	cancel  context.CancelFunc
	samples chan [2]float64
	wg      sync.WaitGroup
	closers []func() error

	// Guarded by Output.mu.
	ctrl      *beep.Ctrl
	installed bool
	dropErr   error
}

// sink is the process-wide speaker.
type sink interface {
	Init(rate beep.SampleRate, bufferSize int) error
	Play(s ...beep.Streamer)
	Lock()
	Unlock()
	Suspend() error
	Resume() error
}

type beepSpeaker struct{}

func (beepSpeaker) Init(rate beep.SampleRate, n int) error { return speaker.Init(rate, n) }
func (beepSpeaker) Play(s ...beep.Streamer)                { speaker.Play(s...) }
func (beepSpeaker) Lock()                                  { speaker.Lock() }
func (beepSpeaker) Unlock()                                { speaker.Unlock() }
func (beepSpeaker) Suspend() error                         { return speaker.Suspend() }
func (beepSpeaker) Resume() error                          { return speaker.Resume() }

// New builds an idle output.
func New(cfg Config) *Output {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.TapSize <= 0 {
		cfg.TapSize = DefaultTapSize
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				DialContext:           (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 15 * time.Second,
				IdleConnTimeout:       90 * time.Second,
				DisableCompression:    true,
			},
		}
	}
	return &Output{
		cfg:    cfg,
		client: client,
		sink:   beepSpeaker{},
		tap:    NewTap(cfg.TapSize),
		volume: 1,
		rate:   DefaultSampleRate,
	}
}

// Load replaces the source and stops whatever was playing.
func (o *Output) Load(url string) {
	o.Stop()
	o.mu.Lock()
	o.url = url
	o.mu.Unlock()
}

// URL returns the loaded source.
func (o *Output) URL() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.url
}

// Start connects to the loaded URL and returns once decoded audio is handed
// to the speaker. ctx bounds only the connect and first decode; the stream
// then runs until Stop or Load.
func (o *Output) Start(ctx context.Context) error {
	url := o.URL()
	if url == "" {
		return fmt.Errorf("%w: no source loaded", ErrStreamUnavailable)
	}
	if err := checkURL(url); err != nil {
		return err
	}
	o.Stop()

	sessCtx, cancel := context.WithCancel(context.Background())
	detach := context.AfterFunc(ctx, cancel)
	sess := &session{cancel: cancel, samples: make(chan [2]float64, SampleChannelSize)}
	fail := func(err error) error {
		detach()
		cancel()
		sess.wg.Wait()
		sess.close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}

	req, err := http.NewRequestWithContext(sessCtx, http.MethodGet, url, nil)
	if err != nil {
		return fail(fmt.Errorf("%w: %v", ErrStreamUnavailable, err))
	}
	req.Header.Set("User-Agent", o.cfg.UserAgent)
	req.Header.Set("Icy-MetaData", "1")

	log.Debug().Str("url", url).Msg("connecting to stream")
	resp, err := o.client.Do(req)
	if err != nil {
		return fail(fmt.Errorf("%w: %v", ErrStreamUnavailable, err))
	}
	sess.closers = append(sess.closers, resp.Body.Close)
	if resp.StatusCode != http.StatusOK {
		return fail(&StatusError{Code: resp.StatusCode, Status: resp.Status})
	}
	if err := checkContentType(resp.Header.Get("Content-Type")); err != nil {
		return fail(err)
	}

	metaint, _ := strconv.Atoi(resp.Header.Get("icy-metaint"))
	body := newICYReader(resp.Body, &stallReader{ctx: sessCtx, r: resp.Body, timeout: ReadTimeout}, metaint, o.cfg.OnTitle)

	decoded, format, err := mp3.Decode(body)
	if err != nil {
		return fail(fmt.Errorf("%w: %v", ErrUnsupportedFormat, err))
	}
	sess.closers = append(sess.closers, decoded.Close)

	rate, err := o.initSpeaker()
	if err != nil {
		return fail(err)
	}
	var src beep.Streamer = decoded
	if format.SampleRate != rate {
		log.Debug().Int("from", int(format.SampleRate)).Int("to", int(rate)).Msg("resampling stream")
		src = beep.Resample(resampleQuality, format.SampleRate, rate, decoded)
	}

	sess.wg.Add(1)
	go o.pump(sessCtx, sess, src)

	if !detach() {
		// ctx was cancelled while we were connecting.
		return fail(ctx.Err())
	}

	old, err := o.install(ctx, sess)
	if err != nil {
		return fail(err)
	}
	if old != nil {
		old.teardown()
	}
	log.Info().Str("url", url).Int("sample_rate", int(format.SampleRate)).Msg("stream playing")
	return nil
}

// install makes sess the playing session. The cancellation check and the
// swap happen under one lock with Stop, so a cancelled request never starts
// audio and a replaced session is silenced before the new one plays. The
// caller tears down the returned old session.
func (o *Output) install(ctx context.Context, sess *session) (*session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if sess.dropErr != nil {
		return nil, sess.dropErr
	}

	old := o.sess
	if old != nil {
		o.silence(old)
	}
	o.sess = sess
	sess.installed = true
	o.tap.Reset()
	o.tap.SetSource(&feed{samples: sess.samples})
	o.vol = &effects.Volume{Streamer: o.tap, Base: 2}
	applyVolume(o.vol, o.volume)
	sess.ctrl = &beep.Ctrl{Streamer: o.vol}

	if err := o.resumeLocked(); err != nil {
		log.Warn().Err(err).Msg("resume speaker")
	}
	o.sink.Play(sess.ctrl)
	return old, nil
}

// silence detaches sess from the speaker mixer. A Ctrl without a streamer
// is dropped on the next mix. Callers hold o.mu.
func (o *Output) silence(sess *session) {
	if sess.ctrl == nil {
		return
	}
	o.sink.Lock()
	sess.ctrl.Streamer = nil
	o.sink.Unlock()
}

func (o *Output) initSpeaker() (beep.SampleRate, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.speakerInit {
		return o.rate, nil
	}
	if err := o.sink.Init(o.rate, o.rate.N(SpeakerBufferSize)); err != nil {
		return 0, fmt.Errorf("init speaker: %w", err)
	}
	o.speakerInit = true
	log.Debug().Int("sample_rate", int(o.rate)).Dur("buffer", SpeakerBufferSize).Msg("speaker initialized")
	return o.rate, nil
}

// pump moves decoded samples into the session channel so the speaker never
// blocks on the network.
func (o *Output) pump(ctx context.Context, sess *session, src beep.Streamer) {
	defer sess.wg.Done()
	defer close(sess.samples)

	buf := make([][2]float64, 512)
	for {
		n, ok := src.Stream(buf)
		for i := range n {
			select {
			case sess.samples <- buf[i]:
			case <-ctx.Done():
				return
			}
		}
		if !ok {
			break
		}
	}
	if ctx.Err() != nil {
		return
	}

	err := src.Err()
	if err == nil {
		err = fmt.Errorf("%w: stream ended", ErrStreamUnavailable)
	}

	o.mu.Lock()
	if !sess.installed {
		// Start is still connecting and will fail with this error.
		sess.dropErr = err
		o.mu.Unlock()
		return
	}
	o.mu.Unlock()

	log.Warn().Err(err).Msg("stream dropped")
	if o.cfg.OnDrop != nil {
		go func() {
			if o.current(sess) {
				o.cfg.OnDrop(err)
			}
		}()
	}
}

// current reports whether sess is still the playing session.
func (o *Output) current(sess *session) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sess == sess
}

// Stop ends the current stream and suspends the speaker.
func (o *Output) Stop() {
	o.mu.Lock()
	sess := o.sess
	o.sess = nil
	if sess != nil {
		o.silence(sess)
		o.tap.SetSource(nil)
		o.tap.Reset()
		if err := o.suspendLocked(); err != nil {
			log.Warn().Err(err).Msg("suspend speaker")
		}
	}
	o.mu.Unlock()

	if sess == nil {
		return
	}
	sess.teardown()
	log.Debug().Msg("stream stopped")
}

// teardown cancels the session and waits for its pump to exit.
func (s *session) teardown() {
	s.cancel()
	s.wg.Wait()
	s.close()
}

func (s *session) close() {
	for _, c := range s.closers {
		_ = c()
	}
	s.closers = nil
}

// SetVolume applies v in [0,1] on a perceptual curve.
func (o *Output) SetVolume(v float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.volume = v
	if o.vol == nil {
		return
	}
	o.sink.Lock()
	applyVolume(o.vol, v)
	o.sink.Unlock()
}

func applyVolume(vol *effects.Volume, v float64) {
	vol.Volume = VolumeLevel(v)
	vol.Silent = v <= 0
}

// VolumeLevel maps a linear volume in [0,1] to the exponent effects.Volume
// expects with base 2.
func VolumeLevel(v float64) float64 {
	if v <= 0 {
		return MinVolumeDB
	}
	if v >= 1 {
		return 0
	}
	return (1 - math.Pow(v, VolumeCurveExponent)) * MinVolumeDB
}

// Samples exposes the tap to the visualizer.
func (o *Output) Samples(dst []float64) int { return o.tap.Samples(dst) }

// SampleRate is the speaker rate all streams are resampled to.
func (o *Output) SampleRate() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return int(o.rate)
}

// Suspended reports whether the speaker is suspended.
func (o *Output) Suspended() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.suspended
}

// Resume restarts a suspended speaker.
func (o *Output) Resume() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.resumeLocked()
}

func (o *Output) resumeLocked() error {
	if !o.speakerInit || !o.suspended {
		return nil
	}
	if err := o.sink.Resume(); err != nil {
		return fmt.Errorf("resume speaker: %w", err)
	}
	o.suspended = false
	return nil
}

func (o *Output) suspendLocked() error {
	if !o.speakerInit || o.suspended {
		return nil
	}
	if err := o.sink.Suspend(); err != nil {
		return fmt.Errorf("suspend speaker: %w", err)
	}
	o.suspended = true
	return nil
}

// feed drains the session channel without blocking; an empty channel plays
// silence.
type feed struct {
	samples <-chan [2]float64
	done    bool
}

func (f *feed) Stream(samples [][2]float64) (int, bool) {
	filled := 0
	if !f.done {
	loop:
		for filled < len(samples) {
			select {
			case s, ok := <-f.samples:
				if !ok {
					f.done = true
					break loop
				}
				samples[filled] = s
				filled++
			default:
				break loop
			}
		}
	}
	clear(samples[filled:])
	return len(samples), true
}

func (f *feed) Err() error { return nil }

func checkURL(raw string) error {
	lower := strings.ToLower(raw)
	if i := strings.IndexAny(lower, "?#"); i >= 0 {
		lower = lower[:i]
	}
	for _, ext := range []string{".m3u8", ".aac", ".ogg", ".opus", ".flac"} {
		if strings.HasSuffix(lower, ext) {
			return fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
		}
	}
	return nil
}

func checkContentType(ct string) error {
	ct = strings.ToLower(ct)
	for _, bad := range []string{"mpegurl", "aac", "ogg", "opus", "flac"} {
		if strings.Contains(ct, bad) {
			return fmt.Errorf("%w: %s", ErrUnsupportedFormat, ct)
		}
	}
	return nil
}

package audio

import (
	"sync"

	"github.com/gopxl/beep/v2"
)

// Tap sits between the decoder and the volume stage and keeps a mono ring
// buffer of the most recent samples for the visualizer.
type Tap struct {
	mu     sync.Mutex
	s      beep.Streamer
	buf    []float64
	pos    int
	filled int
}

// NewTap allocates a tap holding size samples.
func NewTap(size int) *Tap {
	return &Tap{buf: make([]float64, size)}
}

// SetSource replaces the upstream streamer. A nil source streams silence.
func (t *Tap) SetSource(s beep.Streamer) {
	t.mu.Lock()
	t.s = s
	t.mu.Unlock()
}

// Reset drops captured samples.
func (t *Tap) Reset() {
	t.mu.Lock()
	clear(t.buf)
	t.pos, t.filled = 0, 0
	t.mu.Unlock()
}

// Stream passes audio through while capturing a mono mix.
func (t *Tap) Stream(samples [][2]float64) (int, bool) {
	t.mu.Lock()
	s := t.s
	t.mu.Unlock()

	if s == nil {
		clear(samples)
		return len(samples), true
	}
	n, ok := s.Stream(samples)

	t.mu.Lock()
	size := len(t.buf)
	for i := range n {
		t.buf[t.pos] = (samples[i][0] + samples[i][1]) / 2
		t.pos = (t.pos + 1) % size
	}
	t.filled = min(t.filled+n, size)
	t.mu.Unlock()
	return n, ok
}

// Err returns the upstream error.
func (t *Tap) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.s == nil {
		return nil
	}
	return t.s.Err()
}

// Samples copies the latest captured samples into dst in chronological
// order and returns how many were written.
func (t *Tap) Samples(dst []float64) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	size := len(t.buf)
	n := min(len(dst), t.filled)
	start := (t.pos - n + size) % size
	for i := range n {
		dst[i] = t.buf[(start+i)%size]
	}
	return n
}

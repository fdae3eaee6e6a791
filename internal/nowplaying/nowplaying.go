// Package nowplaying maintains the home-widget feed: the current station's
// title, subtitle, artwork and play state, persisted as TOML for widget
// renderers and pushed to in-process subscribers.
package nowplaying

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"

	"github.com/five82/tuner/internal/catalog"
)

const (
	DefaultTitle    = "Tuner"
	DefaultSubtitle = "Tap to listen"
)

// Widget is what a home-screen widget displays.
type Widget struct {
	Title     string    `toml:"title" json:"title"`
	Subtitle  string    `toml:"subtitle" json:"subtitle"`
	Artwork   string    `toml:"album_art,omitempty" json:"albumArt,omitempty"`
	StationID int       `toml:"station_id,omitempty" json:"stationId,omitempty"`
	Playing   bool      `toml:"playing" json:"playing"`
	UpdatedAt time.Time `toml:"updated_at" json:"updatedAt"`
}

// Default is the widget shown before anything has played.
func Default() Widget {
	return Widget{Title: DefaultTitle, Subtitle: DefaultSubtitle}
}

// Load reads a persisted widget. A missing file yields Default.
func Load(path string) (Widget, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("read now playing: %w", err)
	}
	w := Default()
	if err := toml.Unmarshal(data, &w); err != nil {
		return Default(), fmt.Errorf("parse now playing: %w", err)
	}
	return w, nil
}

// Publisher implements playback.Binding and keeps the widget current.
type Publisher struct {
	path string

	// writeMu serialises file writes; each write takes the newest widget.
	writeMu sync.Mutex

	mu     sync.Mutex
	widget Widget
	genre  string
	subs   map[int]chan Widget
	nextID int
}

// NewPublisher persists to path. An empty path keeps the widget in memory.
func NewPublisher(path string) *Publisher {
	return &Publisher{
		path:   path,
		widget: Default(),
		subs:   make(map[int]chan Widget),
	}
}

// Current returns the widget as last published.
func (p *Publisher) Current() Widget {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.widget
}

// Subscribe returns a channel that always holds the latest widget and a
// function that ends the subscription.
func (p *Publisher) Subscribe() (<-chan Widget, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	ch := make(chan Widget, 1)
	ch <- p.widget
	p.subs[id] = ch

	return ch, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if c, ok := p.subs[id]; ok {
			delete(p.subs, id)
			close(c)
		}
	}
}

func (p *Publisher) OnStationChanged(station catalog.Station) {
	p.update(func(w *Widget) {
		w.Title = station.Name
		w.Subtitle = station.Genre
		w.Artwork = station.Logo
		w.StationID = station.ID
		p.genre = station.Genre
	})
}

func (p *Publisher) OnPlayStateChanged(playing bool) {
	p.update(func(w *Widget) { w.Playing = playing })
}

func (p *Publisher) OnPlaybackError(error) {
	p.update(func(w *Widget) { w.Playing = false })
}

// SetTrack shows the stream title as the subtitle, falling back to the genre.
func (p *Publisher) SetTrack(title string) {
	p.update(func(w *Widget) {
		if title == "" {
			w.Subtitle = p.genre
			return
		}
		w.Subtitle = title
	})
}

func (p *Publisher) update(fn func(*Widget)) {
	p.mu.Lock()
	fn(&p.widget)
	p.widget.UpdatedAt = time.Now()
	w := p.widget
	for _, ch := range p.subs {
		select {
		case <-ch:
		default:
		}
		ch <- w
	}
	p.mu.Unlock()

	p.flush()
}

// flush writes the latest widget, so the file never ends on a stale update.
func (p *Publisher) flush() {
	if p.path == "" {
		return
	}
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	if err := p.persist(p.Current()); err != nil {
		log.Warn().Err(err).Str("path", p.path).Msg("persist now playing")
	}
}

func (p *Publisher) persist(w Widget) error {
	if p.path == "" {
		return nil
	}
	data, err := toml.Marshal(w)
	if err != nil {
		return fmt.Errorf("encode now playing: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("create now playing dir: %w", err)
	}
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write now playing: %w", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		return fmt.Errorf("replace now playing: %w", err)
	}
	return nil
}

package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/tuner/internal/catalog"
)

// Snapshot represents the latest playback data available to the UI.
type Snapshot struct {
	Station             catalog.Station
	HasStation          bool
	Playing             bool
	Track               string // ICY StreamTitle of the current station
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // playback failures since the last successful start
}

// IsOffline returns true once several plays in a row have failed.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot. It implements
// playback.Binding.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// OnPlayStateChanged records the play state. Starting playback clears the
// last error.
func (s *Store) OnPlayStateChanged(playing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Playing = playing
	if playing {
		s.snapshot.LastError = nil
		s.snapshot.ConsecutiveFailures = 0
	}
	s.snapshot.LastUpdated = time.Now()
}

// OnStationChanged records the loaded station and forgets the old track.
func (s *Store) OnStationChanged(station catalog.Station) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.snapshot.HasStation || s.snapshot.Station.ID != station.ID {
		s.snapshot.Track = ""
	}
	s.snapshot.Station = station
	s.snapshot.HasStation = true
	s.snapshot.LastUpdated = time.Now()
}

// OnPlaybackError keeps the station but records the failure.
func (s *Store) OnPlaybackError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Playing = false
	s.snapshot.LastError = err
	s.snapshot.ConsecutiveFailures++
	s.snapshot.LastUpdated = time.Now()
}

// SetTrack records the stream title announced by the station.
func (s *Store) SetTrack(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Track = title
	s.snapshot.LastUpdated = time.Now()
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/five82/tuner/internal/catalog"
)

func TestStore_StationAndPlayState(t *testing.T) {
	var s Store

	before := time.Now()
	s.OnStationChanged(catalog.Station{ID: 3, Name: "Jazz"})
	s.OnPlayStateChanged(true)

	snap := s.Snapshot()
	if !snap.HasStation || snap.Station.ID != 3 {
		t.Fatalf("snapshot station = %#v, want id=3 HasStation=true", snap.Station)
	}
	if !snap.Playing {
		t.Fatal("Playing = false, want true")
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}
}

func TestStore_ErrorKeepsStation(t *testing.T) {
	var s Store

	s.OnStationChanged(catalog.Station{ID: 1})
	s.OnPlayStateChanged(true)

	origErr := errors.New("boom")
	s.OnPlaybackError(origErr)

	snap := s.Snapshot()
	if !snap.HasStation || snap.Station.ID != 1 {
		t.Fatalf("station changed on error: got %#v", snap.Station)
	}
	if snap.Playing {
		t.Fatal("Playing = true after error")
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if !errors.Is(snap.LastError, origErr) {
		t.Fatalf("LastError should wrap the original error")
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
}

func TestStore_TrackResetsOnStationChange(t *testing.T) {
	var s Store

	s.OnStationChanged(catalog.Station{ID: 1})
	s.SetTrack("Artist - Song")
	s.OnStationChanged(catalog.Station{ID: 1})
	if got := s.Snapshot().Track; got != "Artist - Song" {
		t.Fatalf("Track = %q after reloading same station", got)
	}

	s.OnStationChanged(catalog.Station{ID: 2})
	if got := s.Snapshot().Track; got != "" {
		t.Fatalf("Track = %q, want empty after station change", got)
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	snap := s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("fresh store failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.OnPlaybackError(errors.New("fail 1"))
	if snap = s.Snapshot(); snap.ConsecutiveFailures != 1 || snap.IsOffline() {
		t.Fatalf("after one failure: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.OnPlaybackError(errors.New("fail 2"))
	if snap = s.Snapshot(); !snap.IsOffline() {
		t.Fatal("IsOffline() = false, want true with 2 failures")
	}

	// Pausing does not count as recovery.
	s.OnPlayStateChanged(false)
	if snap = s.Snapshot(); snap.ConsecutiveFailures != 2 {
		t.Fatalf("ConsecutiveFailures = %d after pause, want 2", snap.ConsecutiveFailures)
	}

	s.OnPlayStateChanged(true)
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() || snap.LastError != nil {
		t.Fatalf("after success: failures=%d offline=%v err=%v", snap.ConsecutiveFailures, snap.IsOffline(), snap.LastError)
	}
}

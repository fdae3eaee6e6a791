// Package state provides thread-safe state management for the tuner UI.
//
// # Overview
//
// The playback controller reports changes from whichever goroutine resolved
// a play request. The UI renders on its own tick. Store sits between the two:
// it implements playback.Binding on the write side and hands out Snapshot
// copies on the read side.
//
//	Controller (binding calls):      UI (tick):
//	OnStationChanged ─┐
//	OnPlayStateChanged├─→ Store ─→ Snapshot() ─→ render
//	OnPlaybackError  ─┤
//	SetTrack (ICY)   ─┘
//
// # Error semantics
//
// A playback error keeps the station in place and increments
// ConsecutiveFailures. Only a successful start (OnPlayStateChanged(true))
// clears LastError and resets the counter; pausing does not. IsOffline
// reports two or more failures in a row.
//
// # Copying
//
// Snapshot returns the struct by value. LastError is re-wrapped so callers
// never hold the stored error value itself; errors.Is still matches the
// original.
//
// The zero Store is ready to use.
package state

package playback

import "github.com/five82/tuner/internal/catalog"

// Binding receives state changes from the controller. Methods are called
// from arbitrary goroutines and must not call back into the controller
// synchronously.
type Binding interface {
	OnPlayStateChanged(playing bool)
	OnStationChanged(station catalog.Station)
	OnPlaybackError(err error)
}

// Bindings fans every event out to each binding in order.
type Bindings []Binding

func (bs Bindings) OnPlayStateChanged(playing bool) {
	for _, b := range bs {
		b.OnPlayStateChanged(playing)
	}
}

func (bs Bindings) OnStationChanged(station catalog.Station) {
	for _, b := range bs {
		b.OnStationChanged(station)
	}
}

func (bs Bindings) OnPlaybackError(err error) {
	for _, b := range bs {
		b.OnPlaybackError(err)
	}
}

type nopBinding struct{}

func (nopBinding) OnPlayStateChanged(bool)          {}
func (nopBinding) OnStationChanged(catalog.Station) {}
func (nopBinding) OnPlaybackError(error)            {}

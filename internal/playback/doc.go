// Package playback owns the single shared audio output, the current station
// index and the play/pause state. It drives the visualizer lifecycle and
// reports state changes through a Binding.
//
// Starting playback is asynchronous: transport operations return a channel
// that receives exactly one Outcome once the output is either flowing or has
// failed. A later Pause, Play or LoadStation supersedes a pending request.
package playback

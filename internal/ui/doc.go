// Package ui provides the Bubble Tea terminal interface for tuner.
//
// # Layout
//
// The main screen stacks four parts:
//
//   - Transport header: play state (with a spinner while a play request is
//     pending), station, ICY stream title, volume gauge and the last error
//   - Command bar: key hints for the active view and the theme name
//   - Spectrum panel: the visualizer frame rasterised with eighth-block
//     glyphs and coloured per row by the frame gradient
//   - Station grid: cards grouped by category, pinned categories first,
//     with a heart on favorites and a marker on the current station
//
// The mini player (m, or enterPip from the bridge) shows only the transport
// line and a slim spectrum. The log view (L) tails the zerolog file through
// internal/logtail.
//
// # Concurrency
//
// Model is a value type driven by the Bubble Tea loop. Play requests return
// channels; a command waits on each and feeds the outcome back as a message.
// The visualizer engine draws into Spectrum from its own goroutine, and the
// UI picks up the latest frame on every render. Bridge commands arrive the
// same way as play outcomes, one waiting command at a time.
//
// # Focus
//
// The program runs with focus reporting. Losing terminal focus suspends the
// visualizer draw loop and regaining it resumes the loop.
//
// # Keys
//
//	enter   play selected      space  play/pause     n/p  next/previous
//	f       favorite           +/-    volume         /    search
//	esc     clear search       v      visualizer     m    mini player
//	L       logs               T      theme          ?    help
//	h/j/k/l move               q      quit
package ui

// Package app is the composition root for tuner.
//
// # Overview
//
// Run loads configuration, sets up file logging and builds every long-lived
// component before handing control to the Bubble Tea UI:
//
//  1. Load ~/.config/tuner/config.toml (defaults when missing)
//  2. Route zerolog output to the log file so the terminal stays clean
//  3. Load the station catalog from catalog_path or use the built-in list
//  4. Read preferences for the saved theme
//  5. Create the audio output, the visualizer engine and the playback
//     controller, binding the controller to state.Store and the now-playing
//     publisher
//  6. Start the websocket bridge when bridge_addr is set
//  7. Run the TUI until the user quits or the context is cancelled
//
// # Data Flow
//
// The playback controller pushes state changes into its bindings. The store
// feeds the UI snapshot and the publisher feeds the now-playing file and the
// bridge. ICY stream titles go from the audio output to both. A stream that
// drops mid-play reports back to the controller, which flips to paused and
// records the error without retrying.
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Config file present but invalid
//   - Log file cannot be opened
//   - Catalog file configured but unreadable or empty
//
// Everything after startup is recoverable: playback failures surface in the
// header, bridge failures are logged and the UI keeps running.
package app

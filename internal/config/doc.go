// Package config loads tuner's TOML configuration.
//
// # Configuration Discovery
//
// Load follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/tuner/config.toml
//  3. If the file doesn't exist, use Default()
//  4. If the file exists but fields are missing or blank, use defaults
//
// # TOML Format
//
//	catalog_path = "~/.config/tuner/stations.yaml"
//	log_path = "~/.local/state/tuner/tuner.log"
//	log_level = "debug"
//	nowplaying_path = "~/.local/state/tuner/nowplaying.toml"
//	bridge_addr = "127.0.0.1:7488"
//	frame_rate = 30
//	fft_size = 256
//	volume = 0.8
//	pinned_categories = ["Italian"]
//	user_agent = "tuner/1.0"
//
// Every field is optional. Tilde expansion is applied to paths. Volume is
// clamped into [0,1] and frame_rate is capped at 120. An fft_size that is not
// a power of two is a load error, as is malformed TOML.
//
// User preferences (theme, favorites) live separately in prefs.toml; see
// package prefs.
package config

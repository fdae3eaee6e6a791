package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the tuner settings read from config.toml.
type Config struct {
	CatalogPath      string // empty means the built-in station list
	LogPath          string
	LogLevel         string
	NowPlayingPath   string
	BridgeAddr       string // empty disables the bridge
	FrameRate        int
	FFTSize          int
	Volume           float64
	PinnedCategories []string
	UserAgent        string
}

const (
	defaultConfigPath     = "~/.config/tuner/config.toml"
	defaultLogPath        = "~/.local/state/tuner/tuner.log"
	defaultNowPlayingPath = "~/.local/state/tuner/nowplaying.toml"
	defaultLogLevel       = "info"
	defaultFrameRate      = 30
	maxFrameRate          = 120
	defaultFFTSize        = 256
	defaultVolume         = 0.8
	defaultUserAgent      = "tuner/1.0"
)

var defaultPinned = []string{"Italian"}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		LogPath:          mustExpand(defaultLogPath),
		LogLevel:         defaultLogLevel,
		NowPlayingPath:   mustExpand(defaultNowPlayingPath),
		FrameRate:        defaultFrameRate,
		FFTSize:          defaultFFTSize,
		Volume:           defaultVolume,
		PinnedCategories: append([]string(nil), defaultPinned...),
		UserAgent:        defaultUserAgent,
	}
}

// Load locates and parses the tuner config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		CatalogPath      string   `toml:"catalog_path"`
		LogPath          string   `toml:"log_path"`
		LogLevel         string   `toml:"log_level"`
		NowPlayingPath   string   `toml:"nowplaying_path"`
		BridgeAddr       string   `toml:"bridge_addr"`
		FrameRate        int      `toml:"frame_rate"`
		FFTSize          int      `toml:"fft_size"`
		Volume           *float64 `toml:"volume"`
		PinnedCategories []string `toml:"pinned_categories"`
		UserAgent        string   `toml:"user_agent"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if p := strings.TrimSpace(raw.CatalogPath); p != "" {
		cfg.CatalogPath = mustExpand(p)
	}
	if p := strings.TrimSpace(raw.LogPath); p != "" {
		cfg.LogPath = mustExpand(p)
	}
	if p := strings.TrimSpace(raw.NowPlayingPath); p != "" {
		cfg.NowPlayingPath = mustExpand(p)
	}
	if lvl := strings.ToLower(strings.TrimSpace(raw.LogLevel)); lvl != "" {
		cfg.LogLevel = lvl
	}
	cfg.BridgeAddr = strings.TrimSpace(raw.BridgeAddr)
	if ua := strings.TrimSpace(raw.UserAgent); ua != "" {
		cfg.UserAgent = ua
	}

	switch {
	case raw.FrameRate > maxFrameRate:
		cfg.FrameRate = maxFrameRate
	case raw.FrameRate > 0:
		cfg.FrameRate = raw.FrameRate
	}

	if raw.FFTSize != 0 {
		if raw.FFTSize < 32 || raw.FFTSize&(raw.FFTSize-1) != 0 {
			return Config{}, fmt.Errorf("invalid fft_size %d: must be a power of two >= 32", raw.FFTSize)
		}
		cfg.FFTSize = raw.FFTSize
	}

	if raw.Volume != nil {
		cfg.Volume = min(max(*raw.Volume, 0), 1)
	}

	if raw.PinnedCategories != nil {
		cfg.PinnedCategories = cfg.PinnedCategories[:0]
		for _, c := range raw.PinnedCategories {
			if c = strings.TrimSpace(c); c != "" {
				cfg.PinnedCategories = append(cfg.PinnedCategories, c)
			}
		}
	}

	return cfg, nil
}

// StateDir is the directory holding the log and now-playing files.
func (c Config) StateDir() string {
	if strings.TrimSpace(c.LogPath) == "" {
		return filepath.Dir(mustExpand(defaultLogPath))
	}
	return filepath.Dir(c.LogPath)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

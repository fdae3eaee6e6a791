package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/five82/tuner/internal/audio"
	"github.com/five82/tuner/internal/bridge"
	"github.com/five82/tuner/internal/catalog"
	"github.com/five82/tuner/internal/config"
	"github.com/five82/tuner/internal/favorites"
	"github.com/five82/tuner/internal/logging"
	"github.com/five82/tuner/internal/nowplaying"
	"github.com/five82/tuner/internal/playback"
	"github.com/five82/tuner/internal/prefs"
	"github.com/five82/tuner/internal/state"
	"github.com/five82/tuner/internal/ui"
	"github.com/five82/tuner/internal/visualizer"
)

// Options configure the tuner application.
type Options struct {
	ConfigPath  string
	PrefsPath   string // empty uses default ~/.config/tuner/prefs.toml
	CatalogPath string // overrides catalog_path from config
	LogLevel    string // overrides log_level from config
}

// Run boots the tuner TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.CatalogPath != "" {
		cfg.CatalogPath = opts.CatalogPath
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	closer, err := logging.Setup(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	defer closer.Close()

	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs, err := prefs.Load(prefsPath)
	if err != nil {
		// Start with the default theme; favorites stay read-only until the file is fixed.
		log.Warn().Err(err).Msg("load prefs")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store := &state.Store{}
	publisher := nowplaying.NewPublisher(cfg.NowPlayingPath)

	var ctrl *playback.Controller
	out := audio.New(audio.Config{
		UserAgent: cfg.UserAgent,
		OnTitle: func(title string) {
			store.SetTrack(title)
			publisher.SetTrack(title)
		},
		OnDrop: func(err error) {
			if ctrl != nil {
				ctrl.Interrupted(err)
			}
		},
	})
	defer out.Stop()

	spectrum := ui.NewSpectrum()
	engine := visualizer.NewEngine(spectrum, visualizer.Config{
		FFTSize:   cfg.FFTSize,
		FrameRate: cfg.FrameRate,
	})

	ctrl = playback.New(ctx, playback.Config{
		Catalog:    cat,
		Output:     out,
		Visualizer: engine,
		Source:     out,
		Binding:    playback.Bindings{store, publisher},
		Volume:     cfg.Volume,
	})

	log.Info().
		Int("stations", cat.Len()).
		Str("theme", userPrefs.Theme).
		Msg("tuner starting")

	var pip ui.Pip
	if cfg.BridgeAddr != "" {
		srv := bridge.New(publisher)
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.BridgeAddr); err != nil {
				log.Error().Err(err).Str("addr", cfg.BridgeAddr).Msg("bridge stopped")
			}
		}()
		pip = srv
	}

	return ui.Run(ui.Options{
		Context:    ctx,
		Player:     ctrl,
		Store:      store,
		Favorites:  favorites.PrefsStore{Path: prefsPath},
		Spectrum:   spectrum,
		Visualizer: engine,
		Bridge:     pip,
		Config:     &cfg,
		ThemeName:  userPrefs.Theme,
		PrefsPath:  prefsPath,
	})
}

// loadCatalog reads the station file when one is configured and otherwise
// returns the built-in list.
func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return cat, nil
}

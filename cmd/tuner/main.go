package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/tuner/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional)")
	prefsPath := flag.String("prefs", "", "override prefs path (optional)")
	catalogPath := flag.String("catalog", "", "station catalog YAML file (optional, defaults to the built-in list)")
	logLevel := flag.String("log-level", "", "log level: trace, debug, info, warn, error (optional)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath:  *configPath,
		PrefsPath:   *prefsPath,
		CatalogPath: *catalogPath,
		LogLevel:    *logLevel,
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "tuner: %v\n", err)
		return 1
	}
	return 0
}

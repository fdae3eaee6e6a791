package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/five82/tuner/internal/logtail"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{"", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, false},
		{" WARN ", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"loud", zerolog.NoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseLevel(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if !tt.wantErr && got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetupWritesJSONLines(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	path := filepath.Join(t.TempDir(), "nested", "tuner.log")
	closer, err := Setup(path, "info")
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}

	log.Debug().Msg("hidden")
	log.Info().Int("id", 3).Msg("playing")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	lines, err := logtail.Read(path, 10)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("lines = %v, want only the info line", lines)
	}
	e := logtail.Parse(lines[0])
	if e.Level != "INFO" || e.Message != "playing" || e.Field("id") != "3" || e.Time.IsZero() {
		t.Fatalf("entry = %+v", e)
	}
}

func TestSetupRejectsBadLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuner.log")
	if _, err := Setup(path, "chatty"); err == nil || !strings.Contains(err.Error(), "log level") {
		t.Fatalf("Setup err = %v, want level error", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("log file created despite bad level")
	}
}

package ui

import "time"

// Layout dimensions.
const (
	// CardWidth is the outer width of one station card in the grid.
	CardWidth = 26

	// LayoutCompactWidth is the threshold below which the header drops the
	// volume gauge and genre.
	LayoutCompactWidth = 80

	// SpectrumMinRows is the smallest spectrum panel body.
	SpectrumMinRows = 3

	// SpectrumMaxRows caps the spectrum panel body.
	SpectrumMaxRows = 12

	// MiniSpectrumRows is the spectrum body height in the mini player.
	MiniSpectrumRows = 2
)

// Log display limits.
const (
	// LogTailLines is how many trailing log lines the log view reads.
	LogTailLines = 500
)

// Timing constants.
const (
	// DefaultUIInterval is the snapshot refresh interval.
	DefaultUIInterval = 250 * time.Millisecond

	// LogRefreshInterval is how often a following log view re-reads the file.
	LogRefreshInterval = 2 * time.Second
)

// VolumeStep is the change applied by one volume key press.
const VolumeStep = 0.05

package audio

import (
	"errors"
	"fmt"
)

var (
	// ErrStreamUnavailable covers network, DNS and HTTP failures.
	ErrStreamUnavailable = errors.New("stream unavailable")
	// ErrUnsupportedFormat is returned for anything that is not an MP3 stream.
	ErrUnsupportedFormat = errors.New("unsupported stream format")
)

// StatusError is a non-200 response from a stream endpoint.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("stream returned status %d: %s", e.Code, e.Status)
}

// Is makes a status failure match ErrStreamUnavailable.
func (e *StatusError) Is(target error) bool {
	return target == ErrStreamUnavailable
}

// Permanent reports whether retrying the same URL is pointless.
func (e *StatusError) Permanent() bool {
	switch e.Code {
	case 401, 403, 404, 410:
		return true
	}
	return false
}

// Package logtail reads the tail of tuner's log file and decodes its lines
// for the log view.
//
// # Reading
//
// Read uses a ring buffer of size maxLines:
//
//	1. Allocate ring buffer of size maxLines
//	2. For each line in file:
//	   - Store line at current index
//	   - Increment index (wrapping at maxLines)
//	   - Track total lines seen
//	3. If total < maxLines:
//	   - Return first 'count' entries from buffer
//	4. If total >= maxLines:
//	   - Return buffer starting from current index (oldest line)
//
// Memory stays O(maxLines) however large the file grows. A missing file
// yields nil, nil.
//
// # Parsing
//
// The log is zerolog JSON, one object per line:
//
//	{"level":"warn","error":"play RDS: stream unavailable","id":11,"time":"2026-01-02T15:04:05Z","message":"playback failed"}
//
// Parse lifts level, message, error and time into Entry and leaves the rest
// in Fields. Lines that are not JSON objects are kept verbatim as the
// message, so a hand-edited or truncated log still renders.
package logtail

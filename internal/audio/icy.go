package audio

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

const maxMetaLen = 4080

// icyReader strips in-band SHOUTcast metadata blocks from a stream body and
// reports StreamTitle changes.
type icyReader struct {
	r         *bufio.Reader
	body      io.Closer
	metaint   int
	remaining int
	title     string
	onTitle   func(string)
}

func newICYReader(body io.ReadCloser, src io.Reader, metaint int, onTitle func(string)) *icyReader {
	return &icyReader{
		r:         bufio.NewReader(src),
		body:      body,
		metaint:   metaint,
		remaining: metaint,
		onTitle:   onTitle,
	}
}

func (ir *icyReader) Read(p []byte) (int, error) {
	if ir.metaint <= 0 {
		return ir.r.Read(p)
	}
	if ir.remaining == 0 {
		if err := ir.readMeta(); err != nil {
			return 0, err
		}
		ir.remaining = ir.metaint
	}
	if len(p) > ir.remaining {
		p = p[:ir.remaining]
	}
	n, err := ir.r.Read(p)
	ir.remaining -= n
	return n, err
}

func (ir *icyReader) Close() error {
	return ir.body.Close()
}

func (ir *icyReader) readMeta() error {
	b, err := ir.r.ReadByte()
	if err != nil {
		return err
	}
	n := int(b) * 16
	if n == 0 {
		return nil
	}
	if n > maxMetaLen {
		_, err := io.CopyN(io.Discard, ir.r, int64(n))
		return err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(ir.r, buf); err != nil {
		return fmt.Errorf("read icy metadata: %w", err)
	}
	if title, ok := ParseStreamTitle(string(buf)); ok && title != ir.title {
		ir.title = title
		if ir.onTitle != nil {
			ir.onTitle(title)
		}
	}
	return nil
}

// ParseStreamTitle extracts StreamTitle from an ICY metadata block.
func ParseStreamTitle(meta string) (string, bool) {
	const key = "StreamTitle='"
	start := strings.Index(meta, key)
	if start < 0 {
		return "", false
	}
	rest := meta[start+len(key):]
	end := strings.Index(rest, "';")
	if end < 0 {
		end = strings.LastIndex(rest, "'")
		if end < 0 {
			return "", false
		}
	}
	return strings.TrimSpace(strings.TrimRight(rest[:end], "\x00")), true
}

// stallReader fails a Read that produces nothing within timeout. Reads go
// through a private buffer, and an abandoned read closes the body, so a late
// result never lands in the caller's slice.
type stallReader struct {
	ctx     context.Context
	r       io.ReadCloser
	timeout time.Duration

	buf []byte
	err error
}

func (sr *stallReader) Read(p []byte) (int, error) {
	if sr.err != nil {
		return 0, sr.err
	}
	if err := sr.ctx.Err(); err != nil {
		return 0, sr.abort(err)
	}
	if len(p) == 0 {
		return 0, nil
	}
	if cap(sr.buf) < len(p) {
		sr.buf = make([]byte, len(p))
	}
	buf := sr.buf[:len(p)]

	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		n, err := sr.r.Read(buf)
		done <- result{n, err}
	}()

	timer := time.NewTimer(sr.timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		return copy(p, buf[:res.n]), res.err
	case <-timer.C:
		return 0, sr.abort(fmt.Errorf("%w: no data for %v", ErrStreamUnavailable, sr.timeout))
	case <-sr.ctx.Done():
		return 0, sr.abort(sr.ctx.Err())
	}
}

// abort closes the body and makes err sticky. The buffer still owned by
// the abandoned read is never handed out again.
func (sr *stallReader) abort(err error) error {
	sr.err = err
	sr.buf = nil
	_ = sr.r.Close()
	return err
}

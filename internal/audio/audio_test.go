package audio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
)

func TestParseStreamTitle(t *testing.T) {
	tests := []struct {
		meta   string
		want   string
		wantOK bool
	}{
		{"StreamTitle='Artist - Song';StreamUrl='';", "Artist - Song", true},
		{"StreamTitle='';\x00\x00", "", true},
		{"StreamTitle='It's Here';\x00", "It's Here", true},
		{"StreamTitle='Unterminated\x00\x00", "Unterminated", false},
		{"StreamUrl='x';", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseStreamTitle(tt.meta)
		if tt.wantOK && (!ok || got != tt.want) {
			t.Errorf("ParseStreamTitle(%q) = %q, %v; want %q", tt.meta, got, ok, tt.want)
		}
		if !tt.wantOK && ok && got != tt.want {
			t.Errorf("ParseStreamTitle(%q) = %q, want no title", tt.meta, got)
		}
	}
}

func metaBlock(s string) []byte {
	n := (len(s) + 15) / 16
	b := make([]byte, 1+n*16)
	b[0] = byte(n)
	copy(b[1:], s)
	return b
}

func TestICYReaderStripsMetadata(t *testing.T) {
	var stream bytes.Buffer
	stream.WriteString("abcd")
	stream.Write(metaBlock("StreamTitle='First';"))
	stream.WriteString("efgh")
	stream.WriteByte(0)
	stream.WriteString("ijkl")
	stream.Write(metaBlock("StreamTitle='First';"))
	stream.WriteString("mn")

	var titles []string
	body := io.NopCloser(&stream)
	r := newICYReader(body, body, 4, func(s string) { titles = append(titles, s) })

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "abcdefghijklmn" {
		t.Fatalf("audio = %q, want %q", got, "abcdefghijklmn")
	}
	if len(titles) != 1 || titles[0] != "First" {
		t.Fatalf("titles = %v, want [First]", titles)
	}
}

func TestICYReaderPassThroughWithoutMetaint(t *testing.T) {
	body := io.NopCloser(strings.NewReader("plain mp3 bytes"))
	got, err := io.ReadAll(newICYReader(body, body, 0, nil))
	if err != nil || string(got) != "plain mp3 bytes" {
		t.Fatalf("ReadAll = %q, %v", got, err)
	}
}

func TestTapCapturesChronologicalMono(t *testing.T) {
	next := 0.0
	src := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			next++
			samples[i] = [2]float64{next, next + 2}
		}
		return len(samples), true
	})

	tap := NewTap(4)
	dst := make([]float64, 4)
	if n := tap.Samples(dst); n != 0 {
		t.Fatalf("empty tap returned %d samples", n)
	}

	tap.SetSource(src)
	tap.Stream(make([][2]float64, 6))

	n := tap.Samples(dst)
	if n != 4 {
		t.Fatalf("Samples = %d, want 4", n)
	}
	want := []float64{4, 5, 6, 7}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("samples = %v, want %v", dst, want)
		}
	}

	short := make([]float64, 2)
	tap.Samples(short)
	if short[0] != 6 || short[1] != 7 {
		t.Fatalf("latest two = %v, want [6 7]", short)
	}

	tap.Reset()
	if n := tap.Samples(dst); n != 0 {
		t.Fatalf("after Reset Samples = %d, want 0", n)
	}
}

func TestTapWithoutSourceIsSilent(t *testing.T) {
	tap := NewTap(8)
	buf := [][2]float64{{1, 1}, {1, 1}}
	n, ok := tap.Stream(buf)
	if n != 2 || !ok || buf[0] != [2]float64{} {
		t.Fatalf("Stream = %d, %v, %v", n, ok, buf)
	}
}

func TestFeedPadsWithSilence(t *testing.T) {
	ch := make(chan [2]float64, 3)
	ch <- [2]float64{1, 1}
	ch <- [2]float64{2, 2}
	f := &feed{samples: ch}

	buf := make([][2]float64, 4)
	n, ok := f.Stream(buf)
	if n != 4 || !ok {
		t.Fatalf("Stream = %d, %v", n, ok)
	}
	if buf[1] != [2]float64{2, 2} || buf[2] != [2]float64{} {
		t.Fatalf("buf = %v", buf)
	}

	close(ch)
	f.Stream(buf)
	if !f.done {
		t.Fatal("feed not done after channel closed")
	}
}

func TestVolumeLevel(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-1, MinVolumeDB},
		{0, MinVolumeDB},
		{0.25, -5},
		{1, 0},
		{2, 0},
	}
	for _, tt := range tests {
		if got := VolumeLevel(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("VolumeLevel(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStartWithoutSource(t *testing.T) {
	o := New(Config{})
	if err := o.Start(context.Background()); !errors.Is(err, ErrStreamUnavailable) {
		t.Fatalf("err = %v, want ErrStreamUnavailable", err)
	}
}

func TestStartErrors(t *testing.T) {
	var gotUA, gotIcy string
	mux := http.NewServeMux()
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotIcy = r.Header.Get("Icy-MetaData")
		http.NotFound(w, r)
	})
	mux.HandleFunc("/hls", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
		_, _ = io.WriteString(w, "#EXTM3U\n")
	})
	mux.HandleFunc("/garbage", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = io.WriteString(w, "this is not an mp3 stream")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	tests := []struct {
		name string
		url  string
		want error
	}{
		{"not found", srv.URL + "/missing", ErrStreamUnavailable},
		{"hls content type", srv.URL + "/hls", ErrUnsupportedFormat},
		{"hls extension", srv.URL + "/live/index.m3u8?token=1", ErrUnsupportedFormat},
		{"not mp3", srv.URL + "/garbage", ErrUnsupportedFormat},
		{"unreachable", closedURL + "/stream", ErrStreamUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := New(Config{UserAgent: "tuner-test"})
			o.Load(tt.url)
			err := o.Start(context.Background())
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if gotUA != "tuner-test" || gotIcy != "1" {
		t.Fatalf("headers = %q, %q; want tuner-test and 1", gotUA, gotIcy)
	}
}

func TestStartStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	o := New(Config{})
	o.Load(srv.URL)
	err := o.Start(context.Background())

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if se.Code != http.StatusForbidden || !se.Permanent() {
		t.Fatalf("status error = %+v", se)
	}
}

func TestStartHonoursCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	o := New(Config{})
	o.Load(srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- o.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

// lateBody blocks every Read until Close, then scribbles over the buffer.
type lateBody struct {
	closed chan struct{}
	wrote  chan struct{}
}

func (b *lateBody) Read(p []byte) (int, error) {
	<-b.closed
	for i := range p {
		p[i] = 'x'
	}
	close(b.wrote)
	return len(p), nil
}

func (b *lateBody) Close() error {
	close(b.closed)
	return nil
}

func TestStallReaderTimeoutKeepsCallerBuffer(t *testing.T) {
	body := &lateBody{closed: make(chan struct{}), wrote: make(chan struct{})}
	sr := &stallReader{ctx: context.Background(), r: body, timeout: 20 * time.Millisecond}

	p := make([]byte, 16)
	if _, err := sr.Read(p); !errors.Is(err, ErrStreamUnavailable) {
		t.Fatalf("err = %v, want ErrStreamUnavailable", err)
	}

	select {
	case <-body.wrote:
	case <-time.After(2 * time.Second):
		t.Fatal("body was not closed after the timeout")
	}
	if !bytes.Equal(p, make([]byte, 16)) {
		t.Fatalf("late read wrote into caller buffer: %q", p)
	}
	if _, err := sr.Read(p); !errors.Is(err, ErrStreamUnavailable) {
		t.Fatalf("second read err = %v, want sticky ErrStreamUnavailable", err)
	}
}

func TestStallReaderCopiesData(t *testing.T) {
	sr := &stallReader{ctx: context.Background(), r: io.NopCloser(strings.NewReader("abc")), timeout: time.Second}
	p := make([]byte, 8)
	n, err := sr.Read(p)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := string(p[:n]); got != "abc" {
		t.Fatalf("got %q, want abc", got)
	}
}

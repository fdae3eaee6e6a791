// Package bridge exposes the now-playing widget and picture-in-picture style
// controls to local companion processes over HTTP and a websocket.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/five82/tuner/internal/nowplaying"
)

// Command is a transport or window request from a bridge client.
type Command string

const (
	CmdToggle   Command = "toggle"
	CmdNext     Command = "next"
	CmdPrevious Command = "previous"
	CmdEnterPip Command = "enterPip"
	CmdExitPip  Command = "exitPip"
)

// ErrNotImplemented is the reply to an unknown method.
const ErrNotImplemented = "notImplemented"

// Request is a client message.
type Request struct {
	ID     string `json:"id,omitempty"`
	Method string `json:"method"`
}

// Response answers one Request.
type Response struct {
	ID     string `json:"id,omitempty"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Event is pushed to every client.
type Event struct {
	Method string `json:"method"`
	Params any    `json:"params"`
}

// WidgetSource is the now-playing feed.
type WidgetSource interface {
	Current() nowplaying.Widget
	Subscribe() (<-chan nowplaying.Widget, func())
}

// Server is the bridge. Commands received from clients are delivered on
// Commands.
type Server struct {
	src      WidgetSource
	hub      *hub
	commands chan Command
	upgrader websocket.Upgrader
}

// New builds a bridge backed by src.
func New(src WidgetSource) *Server {
	return &Server{
		src:      src,
		hub:      newHub(),
		commands: make(chan Command, 16),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkLocalOrigin,
		},
	}
}

// Commands delivers client requests to the application.
func (s *Server) Commands() <-chan Command { return s.commands }

// Clients returns the number of connected websocket clients.
func (s *Server) Clients() int { return s.hub.clientCount() }

// Handler returns the bridge routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /nowplaying", s.handleNowPlaying)
	mux.HandleFunc("GET /ws", s.handleWS)
	return mux
}

// Start runs the hub and forwards widget updates until ctx is done.
func (s *Server) Start(ctx context.Context) {
	go s.hub.run(ctx)

	updates, cancel := s.src.Subscribe()
	go func() {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case w, ok := <-updates:
				if !ok {
					return
				}
				if err := s.hub.broadcastJSON(Event{Method: "nowPlaying", Params: w}); err != nil {
					log.Warn().Err(err).Msg("broadcast now playing")
				}
			}
		}
	}()
}

// SetPip tells clients whether the compact player is showing.
func (s *Server) SetPip(on bool) {
	if err := s.hub.broadcastJSON(Event{Method: "pipModeChanged", Params: on}); err != nil {
		log.Warn().Err(err).Msg("broadcast pip mode")
	}
}

// ListenAndServe serves the bridge on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen bridge: %w", err)
	}
	s.Start(ctx)

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", ln.Addr().String()).Msg("bridge listening")
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve bridge: %w", err)
	}
	return nil
}

func (s *Server) handleNowPlaying(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.src.Current()); err != nil {
		log.Warn().Err(err).Msg("write now playing")
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("bridge upgrade")
		return
	}
	c := newClient(s.hub, conn)
	c.queue(Event{Method: "nowPlaying", Params: s.src.Current()})
	select {
	case s.hub.register <- c:
	case <-s.hub.done:
		conn.Close()
		return
	}

	go c.writePump()
	c.readPump(s.handleMessage)
}

func (s *Server) handleMessage(c *client, data []byte) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		c.queue(Response{Error: "badRequest"})
		return
	}

	cmd := Command(req.Method)
	switch cmd {
	case CmdToggle, CmdNext, CmdPrevious, CmdEnterPip, CmdExitPip:
	default:
		c.queue(Response{ID: req.ID, Error: ErrNotImplemented})
		return
	}

	select {
	case s.commands <- cmd:
		log.Debug().Str("client", c.id).Str("command", string(cmd)).Msg("bridge command")
		c.queue(Response{ID: req.ID, Result: "ok"})
	default:
		c.queue(Response{ID: req.ID, Error: "busy"})
	}
}

// checkLocalOrigin accepts requests without an Origin header and browser
// pages served from loopback.
func checkLocalOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

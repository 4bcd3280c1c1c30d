// Package hachimi implements a stand-in for Hachimi's IPC endpoint, for
// working on localized data without the game running.
package hachimi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/d2verb/zokuzoku/internal/protocol"
)

const maxRequestBytes = 1 << 20

// Handler runs commands received by the server.
// A returned error is sent back as an Error response with its message.
type Handler interface {
	StoryGotoBlock(ctx context.Context, cmd protocol.StoryGotoBlock) error
	ReloadLocalizedData(ctx context.Context) error
}

// Endpoint is an http.Handler speaking the Hachimi IPC protocol.
type Endpoint struct {
	handler Handler
	logger  *slog.Logger
}

// NewEndpoint creates an endpoint dispatching to handler.
func NewEndpoint(handler Handler, logger *slog.Logger) *Endpoint {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Endpoint{handler: handler, logger: logger}
}

func (e *Endpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		http.Error(w, "read request", http.StatusBadRequest)
		return
	}

	cmd, err := protocol.DecodeCommand(body)
	if err != nil {
		e.logger.Warn("invalid command", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := e.dispatch(r.Context(), cmd)
	e.writeResponse(w, resp)
}

func (e *Endpoint) dispatch(ctx context.Context, cmd protocol.Command) protocol.Response {
	var err error
	switch c := cmd.(type) {
	case protocol.StoryGotoBlock:
		err = e.handler.StoryGotoBlock(ctx, c)
	case protocol.ReloadLocalizedData:
		err = e.handler.ReloadLocalizedData(ctx)
	default:
		err = fmt.Errorf("unsupported command %s", cmd.Type())
	}

	if err != nil {
		e.logger.Info("command failed", "command", cmd.Type(), "error", err)
		return protocol.NewErrorResponse(err.Error())
	}
	e.logger.Info("command handled", "command", cmd.Type())
	return protocol.OK{}
}

func (e *Endpoint) writeResponse(w http.ResponseWriter, resp protocol.Response) {
	data, err := protocol.EncodeResponse(resp)
	if err != nil {
		http.Error(w, "encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// Server serves an Endpoint over TCP.
type Server struct {
	addr     string
	endpoint http.Handler
	logger   *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	srv      *http.Server
}

// NewServer creates a server that will listen on addr.
func NewServer(addr string, handler Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		addr:     addr,
		endpoint: NewEndpoint(handler, logger),
		logger:   logger,
	}
}

// Start starts listening. It returns once the listener is bound.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return errors.New("server already started")
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	s.listener = listener
	s.srv = &http.Server{
		Handler:           s.endpoint,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := s.srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("serve", "error", err)
		}
	}()
	s.logger.Info("hachimi stub listening", "addr", listener.Addr().String())
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down, waiting up to five seconds for in-flight requests.
func (s *Server) Stop() error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

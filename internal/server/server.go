// Package server exposes the advisor over WebSocket.
//
// Each connection owns one session. Nothing is shared between connections
// except the advisor, which is stateless, and its sink.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lox/pokerkelly/internal/advisor"
	"github.com/lox/pokerkelly/session"
	"github.com/rs/zerolog"
)

// Settings are the per-connection defaults.
type Settings struct {
	StartingBankroll float64
	HalfKelly        bool
	Trials           int
	Profile          string
}

// Server represents the WebSocket server
type Server struct {
	advisor     *advisor.Advisor
	settings    Settings
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	logger      zerolog.Logger
	mu          sync.RWMutex
}

// NewServer creates a new WebSocket server
func NewServer(adv *advisor.Advisor, settings Settings, logger zerolog.Logger) *Server {
	if settings.StartingBankroll == 0 {
		settings.StartingBankroll = session.DefaultBankroll
	}
	return &Server{
		advisor:  adv,
		settings: settings,
		upgrader: websocket.Upgrader{
			// Local tool; browsers on any origin may connect.
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		logger:      logger.With().Str("component", "server").Logger(),
	}
}

// Handler returns the HTTP routes: /ws and /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Serve listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("Starting WebSocket server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

// Stop closes every open connection.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.connections {
		_ = conn.Close() // Ignore close errors during shutdown
	}
}

// ConnectionCount returns the number of open connections.
func (s *Server) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to upgrade connection")
		return
	}

	state, err := session.New(s.settings.StartingBankroll)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to start session")
		_ = ws.Close()
		return
	}

	conn := NewConnection(ws, s.advisor, s.settings, state, s.logger)
	s.mu.Lock()
	s.connections[conn] = true
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info().Str("session", state.ID).Int("total", total).Msg("Client connected")

	conn.Start()

	go func() {
		<-conn.Done()
		s.mu.Lock()
		delete(s.connections, conn)
		total := len(s.connections)
		s.mu.Unlock()
		s.logger.Info().Str("session", state.ID).Int("total", total).Msg("Client disconnected")
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK") // Ignore write errors for health check
}

// Package gateway serves spectators: a WebSocket fan-out of live
// transcript entries plus health and metrics endpoints. It is read-only;
// spectators never influence the debate.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/soyeahso/arena/internal/config"
	"github.com/soyeahso/arena/internal/domain"
	"github.com/soyeahso/arena/internal/logging"
	"github.com/soyeahso/arena/internal/metrics"
)

// HealthFunc supplies the payload for the health endpoint.
type HealthFunc func() any

// Server is the spectator HTTP + WebSocket server. Its Publish method
// satisfies the engine's Publisher interface.
type Server struct {
	cfg      config.GatewayConfig
	log      *logging.Logger
	health   HealthFunc
	upgrader websocket.Upgrader

	httpServer *http.Server

	mu         sync.Mutex
	spectators map[*spectator]struct{}
}

// spectator is one connected display client.
type spectator struct {
	conn *websocket.Conn
	send chan domain.TranscriptEntry
}

// New creates a spectator server.
func New(cfg config.GatewayConfig, health HealthFunc, log *logging.Logger) *Server {
	return &Server{
		cfg:        cfg,
		log:        log.Sub("gateway"),
		health:     health,
		spectators: make(map[*spectator]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Spectator stream is read-only and unauthenticated; any origin may watch.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Publish fans a transcript entry out to every connected spectator.
// Slow clients are dropped rather than blocking the debate.
func (s *Server) Publish(entry domain.TranscriptEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for sp := range s.spectators {
		select {
		case sp.send <- entry:
		default:
			s.log.Warn().Str("remote", sp.conn.RemoteAddr().String()).Msg("spectator too slow, dropping")
			close(sp.send)
			delete(s.spectators, sp)
		}
	}
}

// Spectators returns the number of connected display clients.
func (s *Server) Spectators() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.spectators)
}

// Handler returns the HTTP routing for the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

// resolveBindAddr computes the listen address from config.
func resolveBindAddr(cfg config.GatewayConfig) string {
	switch cfg.Bind {
	case "lan":
		return fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	default:
		return fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	}
}

// Start begins listening. It blocks until the context is cancelled or an
// error occurs.
func (s *Server) Start(ctx context.Context) error {
	addr := resolveBindAddr(s.cfg)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.log.Info().Str("addr", ln.Addr().String()).Str("bind", s.cfg.Bind).Msg("spectator server ready")

	go func() {
		<-ctx.Done()
		s.log.Info().Msg("shutting down spectator server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.closeAll()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sp := range s.spectators {
		close(sp.send)
		delete(s.spectators, sp)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	sp := &spectator{conn: conn, send: make(chan domain.TranscriptEntry, 64)}

	s.mu.Lock()
	s.spectators[sp] = struct{}{}
	s.mu.Unlock()

	s.log.Debug().Str("remote", r.RemoteAddr).Msg("spectator connected")

	go s.writeLoop(sp)
	s.readLoop(sp)
}

// writeLoop pushes transcript entries to one spectator until its channel
// closes.
func (s *Server) writeLoop(sp *spectator) {
	defer sp.conn.Close()

	for entry := range sp.send {
		sp.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := sp.conn.WriteJSON(entry); err != nil {
			s.log.Debug().Err(err).Msg("spectator write failed")
			s.remove(sp)
			return
		}
	}
}

// readLoop drains the connection. Spectators send nothing meaningful;
// reading just detects closure.
func (s *Server) readLoop(sp *spectator) {
	sp.conn.SetReadLimit(512)
	for {
		if _, _, err := sp.conn.ReadMessage(); err != nil {
			s.remove(sp)
			sp.conn.Close()
			return
		}
	}
}

// remove detaches a spectator if still registered.
func (s *Server) remove(sp *spectator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.spectators[sp]; ok {
		close(sp.send)
		delete(s.spectators, sp)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var payload any = map[string]string{"status": "healthy"}
	if s.health != nil {
		payload = s.health()
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error().Err(err).Msg("failed to write health response")
	}
}

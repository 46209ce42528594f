package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"bard/internal/logging"
	"bard/internal/session"
)

const (
	writeTimeout = 5 * time.Second
	pingInterval = 30 * time.Second
)

// Server exposes the live event stream and status over HTTP for the shell UI.
type Server struct {
	manager *session.Manager
	logger  *slog.Logger
	httpSrv *http.Server
	ln      net.Listener
}

// NewServer builds an unstarted server bound to addr.
func NewServer(addr string, manager *session.Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		manager: manager,
		logger:  logging.WithComponent(logger, "api"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/healthz", s.handleHealth)

	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start begins listening. Serve runs on its own goroutine; errors after a
// clean shutdown are swallowed.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpSrv.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server failed", logging.Error(err))
		}
	}()
	s.logger.Info("api listening", logging.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound address, useful when the port was chosen by the OS.
func (s *Server) Addr() string {
	if s.ln == nil {
		return s.httpSrv.Addr
	}
	return s.ln.Addr().String()
}

// Shutdown drains the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, statusDTO(s.manager.Status()))
}

// handleEvents upgrades to a websocket and streams session events until the
// client goes away. Local UIs only, so any origin is accepted.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	events, unsubscribe := s.manager.Subscribe()
	defer unsubscribe()

	// Reader goroutine: we never expect client frames, but reading is how
	// the close handshake surfaces.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// First frame is always a status snapshot so clients render immediately.
	if err := s.writeEnvelope(conn, envelope{Type: "status", Payload: statusDTO(s.manager.Status())}); err != nil {
		return
	}

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	for {
		select {
		case <-gone:
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case event := <-events:
			env, ok := convert(event)
			if !ok {
				continue
			}
			if err := s.writeEnvelope(conn, env); err != nil {
				return
			}
		}
	}
}

func (s *Server) writeEnvelope(conn *websocket.Conn, env envelope) error {
	env.Time = time.Now().UTC().Format(time.RFC3339Nano)
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(env)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

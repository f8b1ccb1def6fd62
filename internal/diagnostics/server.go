// Package diagnostics implements the engine's read-only observability
// transport (spec §6 "Diagnostics transport"): liveness, equity/tag/
// regime snapshots, a WebSocket push stream, and Prometheus exposition.
// It is ambient tooling layered over the engine the way the teacher's
// internal/api server is layered over its backtester core, scaled down
// to a single read-only surface since this engine takes no runtime
// commands.
package diagnostics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/atlas-desktop/pairs-engine/pkg/types"
)

// EngineSnapshot is the read-only view of engine state the diagnostics
// server needs. *engine.Engine satisfies this directly; the interface
// exists so this package does not need to import internal/engine for
// its own tests.
type EngineSnapshot interface {
	EquitySnapshot() []types.EquityPoint
	TagsSnapshot() []string
	RegimeSnapshot() types.RegimeState
}

// Server is the HTTP/WebSocket diagnostics server.
type Server struct {
	log    *zap.Logger
	engine EngineSnapshot
	hub    *Hub
	reg    *prometheus.Registry

	router     *mux.Router
	httpServer *http.Server
}

// Config holds the server's listen address and timeouts, mirroring the
// fields the teacher's types.ServerConfig carries for the same purpose.
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns sane defaults for the local replay harness.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         8090,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// NewServer constructs a Server. reg is the *prometheus.Registry
// internal/telemetry.New registered the engine's metrics against; with
// a nil reg no /metrics route is registered, so a harness that skips
// metrics wiring still gets the rest of the surface.
func NewServer(log *zap.Logger, cfg Config, eng EngineSnapshot, reg *prometheus.Registry) *Server {
	s := &Server{
		log:    log,
		engine: eng,
		hub:    NewHub(log),
		reg:    reg,
		router: mux.NewRouter(),
	}
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET"},
	}).Handler(s.router)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/healthz", s.handleHealthz).Methods("GET")
	s.router.HandleFunc("/v1/equity", s.handleEquity).Methods("GET")
	s.router.HandleFunc("/v1/tags", s.handleTags).Methods("GET")
	s.router.HandleFunc("/v1/regime", s.handleRegime).Methods("GET")
	s.router.HandleFunc("/v1/stream", s.handleStream)

	if s.reg != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{})).Methods("GET")
	}
}

// Start blocks serving HTTP until the server is stopped, matching the
// teacher's Server.Start/cmd/server "go func() { server.Start() }()"
// pattern: the caller runs this on its own goroutine.
func (s *Server) Start() error {
	if s.log != nil {
		s.log.Info("starting diagnostics server", zap.String("addr", s.httpServer.Addr))
	}
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts the server down, closing any open WebSocket
// connections first.
func (s *Server) Stop(ctx context.Context) error {
	s.hub.mu.Lock()
	for c := range s.hub.clients {
		c.conn.Close()
	}
	s.hub.mu.Unlock()
	return s.httpServer.Shutdown(ctx)
}

// Hub exposes the push hub so the caller can wire internal/recorder's
// new-equity/new-tag events into PublishEquity/PublishTag.
func (s *Server) Hub() *Hub { return s.hub }

// Router exposes the underlying mux.Router for tests that want to
// drive requests through httptest.NewServer without binding a real
// port.
func (s *Server) Router() *mux.Router { return s.router }

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleEquity(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.EquitySnapshot())
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.TagsSnapshot())
}

func (s *Server) handleRegime(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.RegimeSnapshot())
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if s.log != nil {
			s.log.Warn("diagnostics: websocket upgrade failed", zap.Error(err))
		}
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 256)}
	s.hub.register(c)

	go c.writePump()
	go c.readPump(s.hub)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

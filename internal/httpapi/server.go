// Package httpapi exposes the read-only HTTP surface over the registry:
// health check, single-symbol and all-symbol stats, and a supplemented
// live-tick WebSocket stream.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"pulsewatch/internal/registry"
)

// Server wires the registry to an HTTP router. Handlers only ever read
// from the registry; they never reach into a poller or block on one.
type Server struct {
	httpServer *http.Server
	log        *zap.Logger
}

// New builds a Server listening on addr. streamTick controls how often the
// /stream websocket relay polls each symbol's reader for a new snapshot.
func New(addr string, reg *registry.Registry, log *zap.Logger, streamTick time.Duration) *Server {
	router := mux.NewRouter()
	h := &handlers{reg: reg, log: log, streamTick: streamTick}

	router.HandleFunc("/health", h.health).Methods(http.MethodGet)
	router.HandleFunc("/stats", h.stat).Methods(http.MethodGet)
	router.HandleFunc("/stats/", h.stats).Methods(http.MethodGet)
	router.HandleFunc("/stream", h.stream).Methods(http.MethodGet)

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log,
	}
}

// Start runs the server until it errors or Shutdown is called. It never
// returns http.ErrServerClosed as an error.
func (s *Server) Start() error {
	s.log.Info("http server listening", zap.String("addr", s.httpServer.Addr))
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully drains in-flight requests and closes listeners.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

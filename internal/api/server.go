// Package api exposes the HTTP interface: the tryout listing, manual check
// trigger, scheduler status, and history endpoints.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/nathannam/aau-tryouts/internal/logger"
)

// Server wraps the http.Server to provide graceful shutdown.
type Server struct {
	httpServer *http.Server
	log        *logger.Logger
}

// NewServer creates and configures the API server.
func NewServer(addr string, h *Handlers, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(h),
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Start runs the HTTP server in a new goroutine. Fatal listen errors are
// reported on the returned channel.
func (s *Server) Start() <-chan error {
	errCh := make(chan error, 1)
	s.log.Info("Starting HTTP server", logger.Fields{"addr": s.httpServer.Addr})
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	return errCh
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server", nil)
	return s.httpServer.Shutdown(ctx)
}

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/phuslu/log"

	"github.com/a3tai/w2-intake/internal/config"
	"github.com/a3tai/w2-intake/internal/pipeline"
	"github.com/a3tai/w2-intake/internal/store"
	"github.com/a3tai/w2-intake/internal/upstream"
)

// Server manages the HTTP server and routes.
type Server struct {
	cfg      *config.Config
	logger   *log.Logger
	pipeline *pipeline.Pipeline
	history  *store.Store // nil when history is disabled
	mockAPI  *upstream.MockAPI
	router   *http.ServeMux
	server   *http.Server
}

// New creates the HTTP server. history may be nil; mockAPI is mounted
// only when non-nil (stub upstream mode).
func New(cfg *config.Config, p *pipeline.Pipeline, history *store.Store, mockAPI *upstream.MockAPI, logger *log.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		pipeline: p,
		history:  history,
		mockAPI:  mockAPI,
	}

	s.router = s.setupRoutes()

	s.server = &http.Server{
		Addr:    cfg.Address(),
		Handler: s.withMiddleware(s.router),
		// Generous read timeout so large uploads can finish.
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// setupRoutes registers all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/w2", s.handleUpload)
	mux.HandleFunc("GET /api/v1/submissions", s.handleListSubmissions)
	mux.HandleFunc("GET /api/v1/submissions/{id}", s.handleGetSubmission)
	mux.HandleFunc("GET /health", s.handleHealth)

	if s.mockAPI != nil {
		s.mockAPI.Register(mux)
	}

	return mux
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.logger.Info().
		Str("address", s.cfg.Address()).
		Str("upstream", s.cfg.UpstreamMode).
		Msg("HTTP server starting")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info().Msg("HTTP server stopped")
	return nil
}

// Handler returns the fully wrapped handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.withMiddleware(s.router)
}

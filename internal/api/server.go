// Package api exposes the model over HTTP. Every data route resolves through
// the query engine and wraps its result in the standard response envelope;
// mutating routes are guarded by bearer-token auth.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/auth"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/config"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/logging"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/metrics"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/query"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/storage"
)

// Server represents the HTTP API server
type Server struct {
	router  *http.ServeMux
	server  *http.Server
	addr    string
	logger  *logging.Logger
	engine  *query.Engine
	auth    *auth.Manager
	metrics *metrics.Registry
	config  *config.Config
	db      *storage.DB
}

// Options configures a Server. Engine is required; a nil Auth manager keeps
// mutating routes closed, a nil Metrics registry disables the scrape endpoint.
type Options struct {
	Addr    string
	Engine  *query.Engine
	Logger  *logging.Logger
	Auth    *auth.Manager
	Metrics *metrics.Registry
	Config  *config.Config
	DB      *storage.DB
}

// NewServer creates a new HTTP server instance
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	s := &Server{
		addr:    opts.Addr,
		logger:  logger,
		engine:  opts.Engine,
		auth:    opts.Auth,
		metrics: opts.Metrics,
		config:  cfg,
		db:      opts.DB,
		router:  http.NewServeMux(),
	}

	// Register routes
	s.registerRoutes()

	// Create HTTP server with configured router and middleware
	handler := s.applyMiddleware(s.router)
	s.server = &http.Server{
		Addr:         opts.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", map[string]interface{}{
		"addr": s.addr,
	})

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server", nil)

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info("Server shut down successfully", nil)
	return nil
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.server.Handler.ServeHTTP(w, r)
}

// applyMiddleware wraps the handler with middleware in the correct order
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	// Apply middleware in reverse order (last one wraps first)
	handler = RecoveryMiddleware(s.logger)(handler)
	handler = AuthMiddleware(s.auth, s.config.Server.AuthRequired)(handler)
	handler = MetricsMiddleware(s.metrics)(handler)
	handler = LoggingMiddleware(s.logger)(handler)
	handler = RequestIDMiddleware()(handler)
	handler = CORSMiddleware()(handler)
	return handler
}

// Package api serves the review UI: running a match, applying decisions,
// and managing tags, place aliases and past runs.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/api/handlers"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/api/middleware"
)

// Config holds API server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults for the API server.
func DefaultConfig() Config {
	return Config{
		Port:           8085,
		AllowedOrigins: middleware.DefaultCORSConfig().AllowedOrigins,
	}
}

// Server is the HTTP API server.
type Server struct {
	config     Config
	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger
	svc        handlers.Reconciler
}

// NewServer creates a new API server backed by svc.
func NewServer(cfg Config, svc handlers.Reconciler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config: cfg,
		router: chi.NewRouter(),
		logger: logger,
		svc:    svc,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	corsConfig := middleware.DefaultCORSConfig()
	if len(s.config.AllowedOrigins) > 0 {
		corsConfig.AllowedOrigins = s.config.AllowedOrigins
	}
	s.router.Use(middleware.CORS(corsConfig))
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.Recoverer)
	s.router.Use(middleware.Logging(s.logger))
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check (no /api prefix - for load balancers)
	healthHandler := handlers.NewHealthHandler()
	s.router.Get("/health", healthHandler.ServeHTTP)

	s.router.Route("/api", func(r chi.Router) {
		matchHandler := handlers.NewMatchHandler(s.svc, s.logger)
		r.Post("/match", matchHandler.Run)

		runsHandler := handlers.NewRunsHandler(s.svc, s.logger)
		r.Get("/runs", runsHandler.List)
		r.Get("/runs/{id}", runsHandler.Get)

		decisionsHandler := handlers.NewDecisionsHandler(s.svc, s.logger)
		r.Get("/decisions", decisionsHandler.List)
		r.Post("/decisions", decisionsHandler.Apply)

		tagsHandler := handlers.NewTagsHandler(s.svc, s.logger)
		r.Get("/tags", tagsHandler.List)
		r.Post("/tags/sync", tagsHandler.Sync)
		r.Put("/tags/{id}", tagsHandler.Update)

		locationsHandler := handlers.NewLocationsHandler(s.svc, s.logger)
		r.Get("/locations", locationsHandler.List)
		r.Put("/locations", locationsHandler.Replace)

		credentialsHandler := handlers.NewCredentialsHandler(s.svc, s.logger)
		r.Get("/credentials", credentialsHandler.Status)
	})
}

// Start starts the HTTP server. A match run can take minutes across
// paginated providers, so writes get a long timeout.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

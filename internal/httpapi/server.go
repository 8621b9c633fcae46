// Package httpapi exposes splat-replay's operator-facing HTTP surface:
// health, setup-flow control, progress streaming, asset management, and
// manual process triggers. It never drives recording sessions directly —
// AutoRecordingUseCase owns that state machine end to end (see recording.go).
package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// ServerConfig holds HTTP server bind/timeout settings, translated from
// internal/config's ServerConfig.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DefaultServerConfig returns sensible bind/timeout defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "localhost",
		Port:            8787,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Server wraps the chi router and Huma API splat-replay registers its
// handlers against.
type Server struct {
	config     ServerConfig
	router     *chi.Mux
	api        huma.API
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer builds a Server with the standard middleware chain applied.
// version is surfaced in the OpenAPI document.
func NewServer(config ServerConfig, logger *slog.Logger, version string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if version == "" {
		version = "dev"
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.RequestID)
	router.Use(newLoggingMiddleware(logger))
	router.Use(newRecoveryMiddleware(logger))
	router.Use(newCORSMiddleware())

	// SSE (the progress stream) needs unbuffered writes; compression would
	// interfere with flushing, so it is skipped for any request whose Accept
	// header asks for text/event-stream rather than globally disabled.
	router.Use(skipCompressionForSSE(chimiddleware.Compress(5)))

	humaConfig := huma.DefaultConfig("splat-replay API", version)
	humaConfig.Info.Description = "Capture, edit, and upload automation for Splatoon recordings"

	api := humachi.New(router, humaConfig)

	return &Server{config: config, router: router, api: api, logger: logger}
}

// API returns the Huma API instance for registering REST operations.
func (s *Server) API() huma.API { return s.api }

// Router returns the chi router for registering raw routes (SSE).
func (s *Server) Router() *chi.Mux { return s.router }

// Start begins serving and blocks until the listener stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	s.logger.Info("starting HTTP server", slog.String("address", addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}

// Shutdown gracefully drains in-flight requests within the configured
// timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}

// ListenAndServe starts the server and blocks until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() { errChan <- s.Start() }()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	handler    http.Handler
	version    string
	maxUpload  int64
	logger     *slog.Logger

	// Services
	qaService       driving.QAService
	settingsService driving.AISettingsService

	// Infrastructure checked by /ready, keyed by backend name
	checks map[string]Pinger
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	Version        string
	AllowedOrigins []string
	MaxUploadBytes int64
	Logger         *slog.Logger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8080,
		Version:        "dev",
		AllowedOrigins: []string{"*"},
		MaxUploadBytes: 20 << 20,
	}
}

// NewServer creates a new HTTP server.
// checks may be nil when the deployment has no external backends.
func NewServer(
	cfg Config,
	qaService driving.QAService,
	settingsService driving.AISettingsService,
	checks map[string]Pinger,
) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = DefaultConfig().MaxUploadBytes
	}

	s := &Server{
		router:          http.NewServeMux(),
		version:         cfg.Version,
		maxUpload:       maxUpload,
		logger:          logger,
		qaService:       qaService,
		settingsService: settingsService,
		checks:          checks,
	}
	s.setupRoutes()

	// Outermost first: recover, log, CORS, then cap request bodies
	s.handler = NewRecoveryMiddleware(logger).Handler(
		NewLoggingMiddleware(logger).Handler(
			NewCORSMiddleware(cfg.AllowedOrigins).Handler(
				NewBodyLimitMiddleware(maxUpload + multipartOverhead).Handler(s.router))))

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		// Uploads embed the whole document before responding
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health endpoints
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)
	s.router.HandleFunc("GET /swagger/doc.json", s.handleSwaggerDoc)

	// Sessions
	s.router.HandleFunc("POST /api/v1/sessions", s.handleCreateSession)
	s.router.HandleFunc("GET /api/v1/sessions/{id}", s.handleGetSession)
	s.router.HandleFunc("DELETE /api/v1/sessions/{id}", s.handleResetSession)
	s.router.HandleFunc("POST /api/v1/sessions/{id}/document", s.handleUploadDocument)
	s.router.HandleFunc("POST /api/v1/sessions/{id}/ask", s.handleAsk)
	s.router.HandleFunc("GET /api/v1/sessions/{id}/history", s.handleHistory)
	s.router.HandleFunc("GET /api/v1/sessions/{id}/transcript", s.handleTranscript)

	// AI settings
	s.router.HandleFunc("GET /api/v1/settings/ai/status", s.handleGetAIStatus)
	s.router.HandleFunc("PUT /api/v1/settings/ai", s.handleUpdateAISettings)
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

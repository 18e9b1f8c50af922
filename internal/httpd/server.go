// Package httpd exposes the ingestion pipeline over a long-lived HTTP
// listener. This is the standalone deployment variant; the
// socket-activated variant lives in internal/pipeline and shares the
// same core.
package httpd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/lei/hookspool/internal/config"
	"github.com/lei/hookspool/internal/payload"
	"github.com/lei/hookspool/pkg/logger"
)

// Server is the standalone HTTP listener
type Server struct {
	addr   string
	router http.Handler
	server *http.Server
	logger *logger.Logger
}

// NewServer creates a server bound to a loaded configuration
func NewServer(addr string, cfg *config.Config, log *logger.Logger) *Server {
	handlers := NewHandlers(cfg, log)
	router := NewRouter(handlers, NewLoggingMiddleware(log))

	return &Server{
		addr:   addr,
		router: router,
		server: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		logger: log,
	}
}

// NewRouter creates and configures the HTTP router
func NewRouter(handlers *Handlers, loggingMiddleware *LoggingMiddleware) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware - ORDER MATTERS!
	r.Use(middleware.RequestID)      // Generate request ID first
	r.Use(middleware.RealIP)         // Extract real IP
	r.Use(loggingMiddleware.Handler) // Add request fields to logs
	r.Use(middleware.Recoverer)      // Panic recovery
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", handlers.Health)
	r.Get("/version", handlers.Version)

	// Ingest endpoints accept POST and PUT; chi answers 405 for
	// everything else on a known path and 404 for unknown paths.
	for path, normalize := range payload.ByPath {
		handler := handlers.Ingest(normalize)
		r.Post(path, handler)
		r.Put(path, handler)
	}

	return r
}

// Handler returns the http.Handler for the server, for tests and for
// embedding into an existing mux.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the listener until the context is canceled or the server
// fails. Blocking.
func (s *Server) Start(ctx context.Context) error {
	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Infow("starting http listener", "addr", s.addr)
		serverErrors <- s.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case <-ctx.Done():
		s.logger.Infow("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.server.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}

		s.logger.Infow("server stopped gracefully")
		return nil
	}
}

// Package api exposes discovered plugins over HTTP: listing, introspection,
// and invocation. This is a host surface only; the plugin transport behind
// it is still one process per call with argv and stdio.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mattjoyce/sprocket/internal/auth"
	"github.com/mattjoyce/sprocket/internal/invoke"
	"github.com/mattjoyce/sprocket/internal/plugin"
	"github.com/mattjoyce/sprocket/internal/protocol"
)

// PluginRegistry defines the interface for plugin lookup.
type PluginRegistry interface {
	Get(name string) (*plugin.Plugin, bool)
	All() []*plugin.Plugin
}

// Invoker defines the interface for running plugin actions.
type Invoker interface {
	Invoke(ctx context.Context, plug *plugin.Plugin, action string, params map[string]any) (*invoke.Invocation, error)
	Metadata(ctx context.Context, plug *plugin.Plugin) (protocol.Metadata, error)
	Actions(ctx context.Context, plug *plugin.Plugin) (map[string]protocol.ActionSpec, error)
}

// HistoryAppender records completed invocations. May be nil when history is
// disabled.
type HistoryAppender interface {
	Append(ctx context.Context, inv *invoke.Invocation) error
}

// Config holds API server configuration.
type Config struct {
	Listen string
	// AuthToken enables bearer-token auth on /v1 routes when non-empty.
	// /healthz stays open for probes.
	AuthToken string
}

// Server represents the HTTP API server.
type Server struct {
	config    Config
	registry  PluginRegistry
	invoker   Invoker
	history   HistoryAppender
	logger    *slog.Logger
	server    *http.Server
	startedAt time.Time
}

// New creates a new API server instance.
func New(config Config, registry PluginRegistry, invoker Invoker, history HistoryAppender, logger *slog.Logger) *Server {
	return &Server{
		config:    config,
		registry:  registry,
		invoker:   invoker,
		history:   history,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// Start starts the HTTP server (blocking until ctx is cancelled).
func (s *Server) Start(ctx context.Context) error {
	router := s.setupRoutes()

	s.server = &http.Server{
		Addr:         s.config.Listen,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute, // invocations run synchronously inside the request
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("API server starting", "listen", s.config.Listen)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("API server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// Handler returns the configured router without binding a listener. Useful
// for embedding the API in another server or in tests.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// setupRoutes configures the HTTP router.
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)

	r.Route("/v1", func(r chi.Router) {
		r.Use(auth.Middleware(s.config.AuthToken))
		r.Get("/plugins", s.handleListPlugins)
		r.Get("/plugins/{plugin}", s.handleMetadata)
		r.Get("/plugins/{plugin}/actions", s.handleActions)
		r.Post("/plugins/{plugin}/actions/{action}", s.handleInvoke)
	})

	return r
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

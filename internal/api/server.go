// Package api exposes the HTTP surface the browser editor talks to: run
// execution, run history, library listings, and live progress over SSE.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/weft-dev/weft/internal/core"
	"github.com/weft-dev/weft/internal/events"
	"github.com/weft-dev/weft/internal/logging"
	"github.com/weft-dev/weft/internal/service/flow"
)

// VersionLister lists the prompt version IDs available to the editor.
type VersionLister interface {
	Versions() []string
}

// Server serves the editor-facing HTTP API.
type Server struct {
	router   chi.Router
	runner   *flow.Runner
	store    core.RunStore
	bus      *events.Bus
	versions VersionLister
	logger   *logging.Logger
}

// ServerOption configures the server.
type ServerOption func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *logging.Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

// WithRunStore enables run persistence and the history endpoints.
func WithRunStore(store core.RunStore) ServerOption {
	return func(s *Server) { s.store = store }
}

// WithVersionLister enables the version listing endpoint.
func WithVersionLister(lister VersionLister) ServerOption {
	return func(s *Server) { s.versions = lister }
}

// NewServer creates an API server around a configured runner and event bus.
func NewServer(runner *flow.Runner, bus *events.Bus, opts ...ServerOption) *Server {
	s := &Server{
		runner: runner,
		bus:    bus,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.setupRouter()
	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))
	r.Use(s.loggingMiddleware)

	// CORS for the browser editor.
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: false,
		MaxAge:           300,
	})
	r.Use(corsHandler.Handler)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/runs", func(r chi.Router) {
			r.Post("/", s.handleCreateRun)
			r.Get("/", s.handleListRuns)
			r.Get("/{runID}", s.handleGetRun)
		})
		r.Get("/versions", s.handleListVersions)
		r.Get("/events", s.handleSSE)
	})

	return r
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"bytes", ww.BytesWritten(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// respondJSON sends a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.Error("encoding response", "error", err)
		}
	}
}

// respondError sends a JSON error response.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// respondDomainError maps error categories onto HTTP statuses.
func (s *Server) respondDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch core.GetCategory(err) {
	case core.ErrCatValidation:
		status = http.StatusBadRequest
	case core.ErrCatNotFound:
		status = http.StatusNotFound
	case core.ErrCatGeneration:
		status = http.StatusBadGateway
	}

	var domErr *core.DomainError
	if errors.As(err, &domErr) {
		s.respondError(w, status, domErr.Message)
		return
	}
	s.respondError(w, status, err.Error())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleListVersions(w http.ResponseWriter, _ *http.Request) {
	if s.versions == nil {
		s.respondError(w, http.StatusNotFound, "no library configured")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"versions": s.versions.Versions()})
}

// ListenAndServe starts the HTTP server and shuts it down gracefully when
// ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("starting API server", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

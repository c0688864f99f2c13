// Package server exposes the render pipeline over HTTP.
//
// Routes:
//
//	POST /api/v1/render?format=svg   graph JSON in, artifact out
//	POST /api/v1/layout              graph JSON in, positions JSON out
//	GET  /api/v1/palette             current type → color assignments
//	GET  /health                     liveness and build info
//	GET  /metrics                    Prometheus metrics, when enabled
//
// Every render response carries an X-Render-ID header. Errors are JSON
// bodies with a machine-readable code.
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/forcegraph/pkg/pipeline"
)

// Defaults applied when options are unset.
const (
	DefaultRenderTimeout = 30 * time.Second
	DefaultMaxBodyBytes  = 5 << 20
	DefaultShutdown      = 10 * time.Second
)

// Response headers.
const (
	HeaderRenderID = "X-Render-ID"
	HeaderCache    = "X-Cache"
)

// Server serves the render API.
type Server struct {
	runner        *pipeline.Runner
	logger        *log.Logger
	defaultsMu    sync.RWMutex
	defaults      pipeline.Options
	renderTimeout time.Duration
	maxBody       int64
	metrics       http.Handler
	readTimeout   time.Duration
	writeTimeout  time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDefaults sets the options used for fields a request leaves unset.
func WithDefaults(o pipeline.Options) Option {
	return func(s *Server) { s.defaults = o }
}

// WithRenderTimeout bounds each render request.
func WithRenderTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.renderTimeout = d
		}
	}
}

// WithMaxBodyBytes limits request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// SetDefaults replaces the request defaults while serving. The config
// watcher calls it on reload.
func (s *Server) SetDefaults(o pipeline.Options) {
	s.defaultsMu.Lock()
	defer s.defaultsMu.Unlock()
	s.defaults = o
}

// WithTimeouts sets the http.Server read and write timeouts.
func WithTimeouts(read, write time.Duration) Option {
	return func(s *Server) { s.readTimeout, s.writeTimeout = read, write }
}

// New creates a server around runner.
func New(runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{
		runner:        runner,
		logger:        log.New(io.Discard),
		renderTimeout: DefaultRenderTimeout,
		maxBody:       DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(instrument)

	r.Get("/health", s.health)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/render", s.render)
		r.Post("/layout", s.layout)
		r.Get("/palette", s.palette)
	})

	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdown)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

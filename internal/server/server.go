// Package server exposes the briefing pipeline over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/briefing-service/internal/config"
	"github.com/sells-group/briefing-service/internal/model"
	"github.com/sells-group/briefing-service/internal/monitoring"
	"github.com/sells-group/briefing-service/internal/pipeline"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "AI Pre-Call Briefing Assistant"

// Runner executes one briefing request.
type Runner interface {
	Run(ctx context.Context, req model.BriefingRequest) (*pipeline.Response, error)
	Target() model.Target
}

// LeadLister lists stored briefing records. It is nil when briefings go to the CRM.
type LeadLister interface {
	List(ctx context.Context) ([]model.BriefingRecord, error)
}

// Server routes webhook and status requests.
type Server struct {
	router  *chi.Mux
	runner  Runner
	leads   LeadLister
	metrics *monitoring.Collector
	cfg     *config.Config
	version string
}

// Option configures a Server.
type Option func(*Server)

// WithVersion sets the version reported by the health endpoint.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// WithLeads enables the local store listing on GET /leads.
func WithLeads(l LeadLister) Option {
	return func(s *Server) { s.leads = l }
}

// WithMetrics records every webhook outcome and serves totals on GET /stats.
func WithMetrics(c *monitoring.Collector) Option {
	return func(s *Server) { s.metrics = c }
}

// New creates a Server and registers its routes.
func New(runner Runner, cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		runner:  runner,
		cfg:     cfg,
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(requestLogger)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	s.router.Get("/", s.handleHealth)
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/config", s.handleConfig)
	s.router.Get("/leads", s.handleLeads)
	s.router.Get("/stats", s.handleStats)
	s.router.Post("/webhook", s.handleWebhook)

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on port until ctx is cancelled, then shuts down
// and waits up to grace for in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, port int, grace time.Duration) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		zap.L().Info("server: listening", zap.Int("port", port),
			zap.String("persistence_target", string(s.runner.Target())))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- eris.Wrap(err, "server: listen")
			return
		}
		errc <- nil
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	zap.L().Info("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "server: shutdown")
	}
	return <-errc
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("server: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

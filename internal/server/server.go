// Package server exposes the local trigger API: small POST endpoints that
// desktop tooling calls to kick off report uploads and login analysis.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"orgreport/internal/config"
	"orgreport/internal/middleware"
	"orgreport/internal/services"
)

// Runner is the pipeline surface the handlers invoke; satisfied by
// *services.ReportService and by test fakes.
type Runner interface {
	Run(ctx context.Context, opts services.Options) (*services.RunResult, error)
	RunLoginAnalysis(ctx context.Context, folder string) error
}

// Server is the trigger HTTP server.
type Server struct {
	cfg     *config.Config
	runner  Runner
	logger  *slog.Logger
	metrics *Metrics
	http    *http.Server
}

// New builds the server with its full middleware chain and routes.
func New(cfg *config.Config, runner Runner, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	s := &Server{
		cfg:     cfg,
		runner:  runner,
		logger:  logger,
		metrics: NewMetrics(reg),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.Recoverer(logger))
	if cfg.Server.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.Server.RateLimit.RPS, cfg.Server.RateLimit.Burst, logger)
		r.Use(limiter.Handler)
	}

	r.Post("/upload", s.handleUpload)
	r.Post("/run-login-analysis", s.handleRunLoginAnalysis)
	r.Post("/save-share-prefs", s.handleSaveSharePrefs)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	s.http = &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:     r,
		ReadTimeout: cfg.Server.ReadTimeout,
		// Uploads respond synchronously, so the write timeout must outlast
		// the upload deadline.
		WriteTimeout: cfg.Server.UploadTimeout + cfg.Server.WriteTimeout,
	}
	return s
}

// ListenAndServe runs the server until the listener fails or Shutdown is
// called.
func (s *Server) ListenAndServe() error {
	s.logger.Info("trigger server listening", slog.String("addr", s.http.Addr))
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Server.ShutdownTimeout)
	defer cancel()
	return s.http.Shutdown(ctx)
}

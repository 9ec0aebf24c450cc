// SPDX-License-Identifier: MIT

// Package api exposes the enriched recording table over HTTP: rows with the
// filter set applied, the filter-widget metadata, CSV export of the visible
// subset, and a rate-limited manual refresh.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kazlabs/kzrec/internal/pipeline"
	"github.com/kazlabs/kzrec/internal/view"
)

// Config holds the HTTP surface options.
type Config struct {
	DateOrder        pipeline.DateOrder
	DefaultPreset    string
	RefreshRateLimit int // requests per window per IP on /refresh
	RefreshRateWin   time.Duration
}

// Server wires the view service into the router.
type Server struct {
	svc *view.Service
	cfg Config
}

// NewServer creates a Server.
func NewServer(svc *view.Service, cfg Config) *Server {
	if cfg.RefreshRateLimit <= 0 {
		cfg.RefreshRateLimit = 10
	}
	if cfg.RefreshRateWin <= 0 {
		cfg.RefreshRateWin = time.Minute
	}
	if cfg.DefaultPreset == "" {
		cfg.DefaultPreset = "all"
	}
	return &Server{svc: svc, cfg: cfg}
}

// Router builds the chi router with request-ID and logging middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/recordings", s.handleRecordings)
		r.Get("/recordings/export", s.handleExport)
		r.Get("/filters", s.handleFilters)
		r.With(httprate.Limit(
			s.cfg.RefreshRateLimit,
			s.cfg.RefreshRateWin,
			httprate.WithKeyFuncs(httprate.KeyByIP),
		)).Post("/refresh", s.handleRefresh)
	})

	return r
}

// Resonance - Shared Listening Session Queue with Vibe Ranking
// Copyright 2026 Aux Party Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auxparty/resonance

// Package api provides the HTTP surface for session queues, ranking passes,
// and recommendations, routed with Chi.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/auxparty/resonance/internal/config"
	"github.com/auxparty/resonance/internal/middleware"
)

// NewRouter assembles the full route tree with the global middleware stack.
func NewRouter(h *Handler, cfg *config.SecurityConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health probes stay outside the rate limit so orchestrators are never
	// throttled away from them.
	r.Get("/api/v1/health", h.Health)
	r.Get("/api/v1/health/live", h.HealthLive)
	r.Get("/api/v1/health/ready", h.HealthReady)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/sessions/{sessionID}", func(r chi.Router) {
		r.Use(httprate.LimitByIP(cfg.RateLimitReqs, cfg.RateLimitWindow))
		r.Use(middleware.PrometheusMetrics)

		r.Post("/rerank", h.Rerank)
		r.Post("/recommendations", h.Recommendations)
		r.Get("/queue", h.GetQueue)
		r.Post("/queue", h.AddSong)
		r.Post("/queue/{entryID}/played", h.MarkPlayed)
	})

	return r
}

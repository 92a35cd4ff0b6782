// Resonance - Shared Listening Session Queue with Vibe Ranking
// Copyright 2026 Aux Party Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auxparty/resonance

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - Database query performance (DuckDB)
// - API endpoint latency and throughput
// - Rank pass outcomes and coalescing
// - Recommendation requests
// - Feature lookup results and circuit breaker state

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Ranking Metrics
	RankPassDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rank_pass_duration_seconds",
			Help:    "Duration of queue rank passes in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	RankPasses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rank_passes_total",
			Help: "Total number of rank passes by outcome status",
		},
		[]string{"status"},
	)

	RankCoalesced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rank_coalesced_total",
			Help: "Total number of rank requests coalesced into an in-flight pass",
		},
	)

	RankSongsNotFound = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rank_songs_not_found_total",
			Help: "Total number of queued songs dropped from scoring because features were unavailable",
		},
	)

	// Recommendation Metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of recommendation requests by outcome status",
		},
		[]string{"status"},
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_duration_seconds",
			Help:    "Duration of recommendation computation in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	// Feature Lookup Metrics
	FeatureLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feature_lookups_total",
			Help: "Total number of audio feature lookups by result",
		},
		[]string{"result"}, // "hit", "miss", "error"
	)

	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// RecordDBQuery records database query metrics.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records API endpoint metrics.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordRankPass records the outcome of a rank pass.
func RecordRankPass(status string, duration time.Duration, songsNotFound int) {
	RankPasses.WithLabelValues(status).Inc()
	RankPassDuration.Observe(duration.Seconds())
	if songsNotFound > 0 {
		RankSongsNotFound.Add(float64(songsNotFound))
	}
}

// RecordRecommendRequest records the outcome of a recommendation request.
func RecordRecommendRequest(status string, duration time.Duration) {
	RecommendRequests.WithLabelValues(status).Inc()
	RecommendDuration.Observe(duration.Seconds())
}

// RecordFeatureLookup records a feature lookup result: "hit", "miss" or "error".
func RecordFeatureLookup(result string) {
	FeatureLookups.WithLabelValues(result).Inc()
}

// RecordBreakerState records a circuit breaker state transition.
func RecordBreakerState(name string, state float64) {
	BreakerState.WithLabelValues(name).Set(state)
}

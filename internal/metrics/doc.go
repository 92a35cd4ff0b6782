// Resonance - Shared Listening Session Queue with Vibe Ranking
// Copyright 2026 Aux Party Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auxparty/resonance

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package instruments the application with the Prometheus client library,
exposing metrics for monitoring performance, errors, and ranking behavior.

# Overview

The package provides metrics for:
  - HTTP request latency and throughput
  - Database query performance (DuckDB)
  - Rank pass outcomes, durations, and request coalescing
  - Recommendation request outcomes
  - Audio feature lookup results and circuit breaker state

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8440/metrics

# Usage

Metrics are registered globally via promauto and recorded through helper
functions:

	start := time.Now()
	rows, err := db.Query(...)
	metrics.RecordDBQuery("SELECT", "queue_entries", time.Since(start), err)

	metrics.RecordRankPass("ranked", elapsed, songsNotFound)
	metrics.RecordFeatureLookup("hit")
*/
package metrics

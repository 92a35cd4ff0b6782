// Resonance - Shared Listening Session Queue with Vibe Ranking
// Copyright 2026 Aux Party Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auxparty/resonance

package api

import (
	"net/http"
	"time"
)

// Health reports overall service health. Degraded means the process is up
// but the database is unreachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.db != nil && h.db.Ping(r.Context()) == nil
	status := "healthy"
	if !dbConnected {
		status = "degraded"
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"status":             status,
		"database_connected": dbConnected,
		"uptime":             time.Since(h.startTime).Seconds(),
	}, time.Now())
}

// HealthLive handles liveness probe requests (Kubernetes-style).
// Returns 200 OK if the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, time.Now())
}

// HealthReady handles readiness probe requests (Kubernetes-style).
// Returns 200 only when the database answers a ping, 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.db != nil && h.db.Ping(r.Context()) == nil
	if !dbConnected {
		respondError(w, http.StatusServiceUnavailable, "NOT_READY", "Database is not reachable", nil)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"ready":              true,
		"database_connected": true,
		"uptime":             time.Since(h.startTime).Seconds(),
	}, time.Now())
}

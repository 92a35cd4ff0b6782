// Resonance - Shared Listening Session Queue with Vibe Ranking
// Copyright 2026 Aux Party Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auxparty/resonance

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/auxparty/resonance/internal/config"
	"github.com/auxparty/resonance/internal/database"
	"github.com/auxparty/resonance/internal/logging"
	"github.com/auxparty/resonance/internal/models"
	"github.com/auxparty/resonance/internal/ranking"
	"github.com/auxparty/resonance/internal/recommend"
)

// Ranker reorders a session queue by vibe distance.
type Ranker interface {
	Rerank(ctx context.Context, sessionID, currentlyPlayingURI string) (*ranking.Result, error)
}

// Recommender suggests songs near a session's recent listening history.
type Recommender interface {
	Recommend(ctx context.Context, sessionID string, limit int) (*recommend.Result, error)
}

// QueueStore is the subset of database operations the handlers need.
type QueueStore interface {
	QueuedEntries(ctx context.Context, sessionID string) ([]models.QueueEntry, error)
	AddEntry(ctx context.Context, sessionID, uri, title, artist string) (*models.QueueEntry, error)
	MarkPlayed(ctx context.Context, sessionID string, entryID uuid.UUID) (*models.QueueEntry, error)
}

// TrackResolver looks a title up in the feature catalog. Used to backfill
// display metadata when a guest adds a song without a URI or artist.
type TrackResolver interface {
	Track(ctx context.Context, title string) (*models.Track, error)
}

// Pinger reports backing-store connectivity for readiness probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the session queue API.
type Handler struct {
	store       QueueStore
	ranker      Ranker
	recommender Recommender
	tracks      TrackResolver
	db          Pinger
	cfg         *config.Config
	startTime   time.Time
}

// NewHandler creates a Handler wired to the given store and engines.
func NewHandler(store QueueStore, ranker Ranker, recommender Recommender, tracks TrackResolver, db Pinger, cfg *config.Config) *Handler {
	return &Handler{
		store:       store,
		ranker:      ranker,
		recommender: recommender,
		tracks:      tracks,
		db:          db,
		cfg:         cfg,
		startTime:   time.Now(),
	}
}

// Rerank triggers a ranking pass over a session's queued entries.
// Insufficient-data outcomes (empty queue, too few songs, unresolvable
// reference) are successful responses distinguished by the result status,
// not errors.
func (h *Handler) Rerank(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	sessionID := chi.URLParam(r, "sessionID")

	var req RerankRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Request body is not valid JSON", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	result, err := h.ranker.Rerank(r.Context(), sessionID, req.CurrentlyPlayingURI)
	if err != nil {
		if errors.Is(err, ranking.ErrMissingSession) {
			respondError(w, http.StatusBadRequest, "MISSING_SESSION", "Session ID is required", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "RANK_FAILED", "Ranking pass failed", err)
		return
	}

	respondSuccess(w, http.StatusOK, result, started)
}

// Recommendations returns songs from the catalog closest to the vibe of the
// session's recently played history.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	sessionID := chi.URLParam(r, "sessionID")

	var req RecommendRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Request body is not valid JSON", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	result, err := h.recommender.Recommend(r.Context(), sessionID, req.Limit)
	if err != nil {
		if errors.Is(err, recommend.ErrMissingSession) {
			respondError(w, http.StatusBadRequest, "MISSING_SESSION", "Session ID is required", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "RECOMMEND_FAILED", "Recommendation pass failed", err)
		return
	}

	respondSuccess(w, http.StatusOK, result, started)
}

// queueResponse carries a session's queued entries plus the client-side
// re-trigger hint for recommendation refreshes.
type queueResponse struct {
	SessionID            string              `json:"session_id"`
	Entries              []models.QueueEntry `json:"entries"`
	TriggerWindowSeconds float64             `json:"trigger_window_seconds"`
}

// GetQueue lists a session's queued entries in position order.
func (h *Handler) GetQueue(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	sessionID := chi.URLParam(r, "sessionID")

	entries, err := h.store.QueuedEntries(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUEUE_LOAD_FAILED", "Failed to load queue", err)
		return
	}
	if entries == nil {
		entries = []models.QueueEntry{}
	}

	respondSuccess(w, http.StatusOK, queueResponse{
		SessionID:            sessionID,
		Entries:              entries,
		TriggerWindowSeconds: h.cfg.Recommend.TriggerWindow.Seconds(),
	}, started)
}

// AddSong appends a song to the tail of a session's queue. Songs without a
// player URI get a synthetic one so history exclusion still works for them.
func (h *Handler) AddSong(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	sessionID := chi.URLParam(r, "sessionID")

	var req AddSongRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Request body is not valid JSON", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	uri, artist := req.URI, req.Artist
	if (uri == "" || artist == "") && h.tracks != nil {
		// Backfill missing metadata from the catalog. Lookup failures are
		// fine; the song just keeps what the guest typed.
		if track, err := h.tracks.Track(r.Context(), req.Title); err == nil && track != nil {
			if uri == "" {
				uri = track.URI
			}
			if artist == "" {
				artist = track.Artist
			}
		}
	}
	if uri == "" {
		uri = "resonance:track:" + uuid.NewString()
	}

	entry, err := h.store.AddEntry(r.Context(), sessionID, uri, req.Title, artist)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUEUE_ADD_FAILED", "Failed to add song to queue", err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("session_id", sanitizeLogValue(sessionID)).
		Str("title", sanitizeLogValue(req.Title)).
		Msg("Song added to queue")

	respondSuccess(w, http.StatusCreated, entry, started)
}

// MarkPlayed moves a queued entry into the session's play history and
// compacts the remaining positions.
func (h *Handler) MarkPlayed(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	sessionID := chi.URLParam(r, "sessionID")

	entryID, err := uuid.Parse(chi.URLParam(r, "entryID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_ENTRY_ID", "Entry ID must be a UUID", nil)
		return
	}

	entry, err := h.store.MarkPlayed(r.Context(), sessionID, entryID)
	if err != nil {
		if errors.Is(err, database.ErrEntryNotFound) {
			respondError(w, http.StatusNotFound, "ENTRY_NOT_FOUND", "No queued entry with that ID in this session", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "MARK_PLAYED_FAILED", "Failed to mark entry as played", err)
		return
	}

	respondSuccess(w, http.StatusOK, entry, started)
}

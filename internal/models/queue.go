// Resonance - Shared Listening Session Queue with Vibe Ranking
// Copyright 2026 Aux Party Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auxparty/resonance

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/auxparty/resonance/internal/vibe"
)

// EntryStatus is the lifecycle state of a queue entry.
type EntryStatus string

const (
	// StatusQueued marks an entry that is waiting in the queue and holds a
	// contiguous position. The entry at position 0 is the currently playing
	// song.
	StatusQueued EntryStatus = "queued"

	// StatusPlayed marks an entry that has finished playing. Played entries
	// hold no position and record when playback completed.
	StatusPlayed EntryStatus = "played"
)

// QueueEntry is a song inside a listening session, either waiting in the
// queue or already played. Queued entries carry a contiguous Pos starting at
// 0; played entries have a nil Pos and a non-nil PlayedAt.
type QueueEntry struct {
	ID        uuid.UUID   `json:"id"`
	SessionID string      `json:"session_id"`
	URI       string      `json:"uri"`
	Title     string      `json:"title"`
	Artist    string      `json:"artist,omitempty"`
	Pos       *int        `json:"pos,omitempty"`
	Status    EntryStatus `json:"status"`
	PlayedAt  *time.Time  `json:"played_at,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// IsPlaying reports whether the entry occupies the pinned now-playing slot.
func (e *QueueEntry) IsPlaying() bool {
	return e.Status == StatusQueued && e.Pos != nil && *e.Pos == 0
}

// Track is a row from the audio feature dataset. URI is the canonical track
// identifier; Title is matched case-insensitively during feature resolution.
type Track struct {
	URI      string             `json:"uri"`
	Title    string             `json:"title"`
	Artist   string             `json:"artist,omitempty"`
	Features vibe.FeatureVector `json:"features"`
}

// Recommendation is a single scored suggestion returned by the recommendation
// engine, ordered by ascending Distance from the session's vibe centroid.
type Recommendation struct {
	URI      string  `json:"uri"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist,omitempty"`
	Distance float64 `json:"distance"`
}

// Resonance - Shared Listening Session Queue with Vibe Ranking
// Copyright 2026 Aux Party Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auxparty/resonance

package api

// RerankRequest carries the optional now-playing pin for a rerank pass.
type RerankRequest struct {
	CurrentlyPlayingURI string `json:"currently_playing_uri" validate:"omitempty,max=512"`
}

// RecommendRequest carries the optional result cap for a recommendation pass.
// Zero means "use the server default"; the engine clamps oversized values.
type RecommendRequest struct {
	Limit int `json:"limit" validate:"omitempty,gte=1,lte=50"`
}

// AddSongRequest adds a song to the tail of a session queue.
type AddSongRequest struct {
	Title  string `json:"title" validate:"required,max=512"`
	URI    string `json:"uri" validate:"omitempty,max=512"`
	Artist string `json:"artist" validate:"omitempty,max=512"`
}

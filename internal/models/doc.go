// Resonance - Shared Listening Session Queue with Vibe Ranking
// Copyright 2026 Aux Party Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auxparty/resonance

/*
Package models defines data structures shared across the Resonance application.

This package contains the database models, API request/response structures, and
internal data transfer objects used by the queue, ranking, and recommendation
subsystems. It serves as the single source of truth for data structure
definitions.

Key Components:

  - QueueEntry: Core database model for a song in a listening session queue
  - Track: Audio feature dataset row resolved during ranking
  - APIResponse: Standardized API response wrapper
  - APIError: Structured error details
  - Metadata: Response metadata (timestamp, query time)

Entry lifecycle:

A QueueEntry is created with StatusQueued and a contiguous queue position.
When a song finishes playing it transitions to StatusPlayed, loses its
position, and records the play time. Played entries stay in the session
history and seed the recommendation engine.
*/
package models

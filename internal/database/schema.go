// Resonance - Shared Listening Session Queue with Vibe Ranking
// Copyright 2026 Aux Party Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auxparty/resonance

package database

import (
	"context"
	"fmt"
)

// schemaStatements are applied in order at startup. DuckDB DDL is
// idempotent via IF NOT EXISTS, so restarts are safe.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS queue_entries (
		id UUID PRIMARY KEY,
		session_id VARCHAR NOT NULL,
		uri VARCHAR NOT NULL,
		title VARCHAR NOT NULL,
		artist VARCHAR,
		pos INTEGER,
		status VARCHAR NOT NULL DEFAULT 'queued',
		played_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
	)`,
	`CREATE INDEX IF NOT EXISTS idx_queue_session_status
		ON queue_entries (session_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_queue_session_pos
		ON queue_entries (session_id, pos)`,
	`CREATE TABLE IF NOT EXISTS tracks (
		uri VARCHAR PRIMARY KEY,
		title VARCHAR NOT NULL,
		title_norm VARCHAR NOT NULL,
		artist VARCHAR,
		tempo DOUBLE NOT NULL,
		energy DOUBLE NOT NULL,
		danceability DOUBLE NOT NULL,
		valence DOUBLE NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tracks_title_norm
		ON tracks (title_norm)`,
}

// initSchema creates the queue and dataset tables if they do not exist.
func (db *DB) initSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}

// Resonance - Shared Listening Session Queue with Vibe Ranking
// Copyright 2026 Aux Party Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auxparty/resonance

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/auxparty/resonance/internal/metrics"
	"github.com/auxparty/resonance/internal/models"
)

// ErrEntryNotFound is returned when a queue entry does not exist or is not
// in the expected state.
var ErrEntryNotFound = errors.New("queue entry not found")

// QueuedEntries returns the queued (non-played) entries of a session ordered
// by ascending position.
func (db *DB) QueuedEntries(ctx context.Context, sessionID string) ([]models.QueueEntry, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, session_id, uri, title, artist, pos, status, played_at, created_at
		FROM queue_entries
		WHERE session_id = ? AND status = 'queued'
		ORDER BY pos ASC`, sessionID)
	metrics.RecordDBQuery("SELECT", "queue_entries", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("querying queued entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// RecentlyPlayed returns up to limit played entries of a session, most
// recently played first.
func (db *DB) RecentlyPlayed(ctx context.Context, sessionID string, limit int) ([]models.QueueEntry, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, session_id, uri, title, artist, pos, status, played_at, created_at
		FROM queue_entries
		WHERE session_id = ? AND status = 'played'
		ORDER BY played_at DESC
		LIMIT ?`, sessionID, limit)
	metrics.RecordDBQuery("SELECT", "queue_entries", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("querying recently played: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// SessionURIs returns the set of all track URIs present in a session, both
// queued and played. Used to exclude known songs from recommendations.
func (db *DB) SessionURIs(ctx context.Context, sessionID string) (map[string]struct{}, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT DISTINCT uri FROM queue_entries WHERE session_id = ?`, sessionID)
	metrics.RecordDBQuery("SELECT", "queue_entries", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("querying session URIs: %w", err)
	}
	defer rows.Close()

	uris := make(map[string]struct{})
	for rows.Next() {
		var uri string
		if err := rows.Scan(&uri); err != nil {
			return nil, fmt.Errorf("scanning session URI: %w", err)
		}
		uris[uri] = struct{}{}
	}
	return uris, rows.Err()
}

// AddEntry appends a song to the end of a session queue and returns the
// created entry. The position is assigned inside a transaction so two
// concurrent adds cannot claim the same slot.
func (db *DB) AddEntry(ctx context.Context, sessionID, uri, title, artist string) (*models.QueueEntry, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var nextPos int
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(pos) + 1, 0)
		FROM queue_entries
		WHERE session_id = ? AND status = 'queued'`, sessionID).Scan(&nextPos)
	if err != nil {
		return nil, fmt.Errorf("computing next position: %w", err)
	}

	entry := &models.QueueEntry{
		ID:        uuid.New(),
		SessionID: sessionID,
		URI:       uri,
		Title:     title,
		Artist:    artist,
		Pos:       &nextPos,
		Status:    models.StatusQueued,
		CreatedAt: time.Now().UTC(),
	}

	start := time.Now()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO queue_entries (id, session_id, uri, title, artist, pos, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID.String(), entry.SessionID, entry.URI, entry.Title, entry.Artist,
		nextPos, string(entry.Status), entry.CreatedAt)
	metrics.RecordDBQuery("INSERT", "queue_entries", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("inserting queue entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing queue entry: %w", err)
	}
	return entry, nil
}

// MarkPlayed transitions a queued entry to played, drops its position, and
// compacts the positions of the remaining queued entries so they stay
// contiguous. Returns ErrEntryNotFound if the entry is missing or already
// played.
func (db *DB) MarkPlayed(ctx context.Context, sessionID string, entryID uuid.UUID) (*models.QueueEntry, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var oldPos sql.NullInt64
	err = tx.QueryRowContext(ctx, `
		SELECT pos FROM queue_entries
		WHERE id = ? AND session_id = ? AND status = 'queued'`,
		entryID.String(), sessionID).Scan(&oldPos)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading queue entry: %w", err)
	}

	playedAt := time.Now().UTC()
	start := time.Now()
	_, err = tx.ExecContext(ctx, `
		UPDATE queue_entries
		SET status = 'played', pos = NULL, played_at = ?
		WHERE id = ?`, playedAt, entryID.String())
	metrics.RecordDBQuery("UPDATE", "queue_entries", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("marking entry played: %w", err)
	}

	// Close the gap left by the played entry so queued positions stay
	// contiguous.
	if oldPos.Valid {
		_, err = tx.ExecContext(ctx, `
			UPDATE queue_entries
			SET pos = pos - 1
			WHERE session_id = ? AND status = 'queued' AND pos > ?`,
			sessionID, oldPos.Int64)
		if err != nil {
			return nil, fmt.Errorf("compacting positions: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing played transition: %w", err)
	}

	entry, err := db.entryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// UpdatePositions writes new positions for queued entries as independent
// per-entry updates. A failure part way through leaves earlier writes in
// place; the caller owns serialization so a follow-up rank pass repairs
// any gap.
func (db *DB) UpdatePositions(ctx context.Context, sessionID string, positions map[uuid.UUID]int) error {
	for id, pos := range positions {
		start := time.Now()
		res, err := db.conn.ExecContext(ctx, `
			UPDATE queue_entries
			SET pos = ?
			WHERE id = ? AND session_id = ? AND status = 'queued'`,
			pos, id.String(), sessionID)
		metrics.RecordDBQuery("UPDATE", "queue_entries", time.Since(start), err)
		if err != nil {
			return fmt.Errorf("updating position of %s: %w", id, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("updating position of %s: %w", id, ErrEntryNotFound)
		}
	}
	return nil
}

// entryByID loads a single entry by ID.
func (db *DB) entryByID(ctx context.Context, entryID uuid.UUID) (*models.QueueEntry, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, session_id, uri, title, artist, pos, status, played_at, created_at
		FROM queue_entries WHERE id = ?`, entryID.String())
	if err != nil {
		return nil, fmt.Errorf("loading entry: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrEntryNotFound
	}
	return &entries[0], nil
}

// parseEntryID decodes an id column value. DuckDB hands UUID columns back as
// their raw 16 bytes, not text, so try that form first.
func parseEntryID(raw []byte) (uuid.UUID, error) {
	if len(raw) == 16 {
		return uuid.FromBytes(raw)
	}
	return uuid.ParseBytes(raw)
}

// scanEntries scans queue entry rows into models.
func scanEntries(rows *sql.Rows) ([]models.QueueEntry, error) {
	var entries []models.QueueEntry
	for rows.Next() {
		var (
			e        models.QueueEntry
			idRaw    []byte
			artist   sql.NullString
			pos      sql.NullInt64
			playedAt sql.NullTime
			status   string
		)
		if err := rows.Scan(&idRaw, &e.SessionID, &e.URI, &e.Title, &artist, &pos, &status, &playedAt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning queue entry: %w", err)
		}

		id, err := parseEntryID(idRaw)
		if err != nil {
			return nil, fmt.Errorf("parsing entry id %q: %w", idRaw, err)
		}
		e.ID = id
		e.Status = models.EntryStatus(status)
		if artist.Valid {
			e.Artist = artist.String
		}
		if pos.Valid {
			p := int(pos.Int64)
			e.Pos = &p
		}
		if playedAt.Valid {
			t := playedAt.Time
			e.PlayedAt = &t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

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
	"strings"
	"time"

	"github.com/auxparty/resonance/internal/logging"
	"github.com/auxparty/resonance/internal/metrics"
	"github.com/auxparty/resonance/internal/models"
)

// NormalizeTitle lowers and trims a track title for dataset matching.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// TrackByTitle looks up a track in the audio feature dataset by normalized
// title. Returns (nil, nil) when no track matches.
func (db *DB) TrackByTitle(ctx context.Context, title string) (*models.Track, error) {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `
		SELECT uri, title, artist, tempo, energy, danceability, valence
		FROM tracks
		WHERE title_norm = ?
		LIMIT 1`, NormalizeTitle(title))

	var (
		t      models.Track
		artist sql.NullString
	)
	err := row.Scan(&t.URI, &t.Title, &artist,
		&t.Features.Tempo, &t.Features.Energy, &t.Features.Danceability, &t.Features.Valence)
	metrics.RecordDBQuery("SELECT", "tracks", time.Since(start), err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up track %q: %w", title, err)
	}
	if artist.Valid {
		t.Artist = artist.String
	}
	return &t, nil
}

// SampleTracks returns up to limit tracks from the dataset, excluding any
// URI present in the exclude set. Used as the recommendation candidate pool.
func (db *DB) SampleTracks(ctx context.Context, limit int, exclude map[string]struct{}) ([]models.Track, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT uri, title, artist, tempo, energy, danceability, valence
		FROM tracks
		LIMIT ?`, limit+len(exclude))
	metrics.RecordDBQuery("SELECT", "tracks", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("sampling tracks: %w", err)
	}
	defer rows.Close()

	var tracks []models.Track
	for rows.Next() {
		var (
			t      models.Track
			artist sql.NullString
		)
		if err := rows.Scan(&t.URI, &t.Title, &artist,
			&t.Features.Tempo, &t.Features.Energy, &t.Features.Danceability, &t.Features.Valence); err != nil {
			return nil, fmt.Errorf("scanning track: %w", err)
		}
		if _, skip := exclude[t.URI]; skip {
			continue
		}
		if artist.Valid {
			t.Artist = artist.String
		}
		tracks = append(tracks, t)
		if len(tracks) >= limit {
			break
		}
	}
	return tracks, rows.Err()
}

// UpsertTrack inserts or replaces a dataset track. Primarily used by tests
// and small manual imports; bulk loads should use LoadTracksCSV.
func (db *DB) UpsertTrack(ctx context.Context, t models.Track) error {
	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT OR REPLACE INTO tracks (uri, title, title_norm, artist, tempo, energy, danceability, valence)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.URI, t.Title, NormalizeTitle(t.Title), t.Artist,
		t.Features.Tempo, t.Features.Energy, t.Features.Danceability, t.Features.Valence)
	metrics.RecordDBQuery("INSERT", "tracks", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("upserting track %q: %w", t.URI, err)
	}
	return nil
}

// LoadTracksCSV bulk-loads the audio feature dataset from a CSV file using
// DuckDB's read_csv_auto. The CSV must provide uri, title, artist, tempo,
// energy, danceability and valence columns. Existing rows are replaced.
func (db *DB) LoadTracksCSV(ctx context.Context, path string) (int64, error) {
	start := time.Now()
	res, err := db.conn.ExecContext(ctx, `
		INSERT OR REPLACE INTO tracks
		SELECT
			uri,
			title,
			lower(trim(title)) AS title_norm,
			artist,
			tempo,
			energy,
			danceability,
			valence
		FROM read_csv_auto(?)`, path)
	metrics.RecordDBQuery("INSERT", "tracks", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("loading track dataset from %s: %w", path, err)
	}

	loaded, err := res.RowsAffected()
	if err != nil {
		loaded = -1
	}
	logging.Info().
		Str("path", path).
		Int64("rows", loaded).
		Msg("Track dataset loaded")
	return loaded, nil
}

// Resonance - Shared Listening Session Queue with Vibe Ranking
// Copyright 2026 Aux Party Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auxparty/resonance

package database

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/auxparty/resonance/internal/config"
	"github.com/auxparty/resonance/internal/models"
	"github.com/auxparty/resonance/internal/vibe"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "500MB",
	}

	db, err := New(cfg)
	if err != nil {
		t.Fatalf("creating test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("closing test database: %v", err)
		}
	})
	return db
}

func mustAdd(t *testing.T, db *DB, session, uri, title string) *models.QueueEntry {
	t.Helper()
	entry, err := db.AddEntry(context.Background(), session, uri, title, "")
	if err != nil {
		t.Fatalf("adding entry %q: %v", title, err)
	}
	return entry
}

func TestAddEntry_AssignsContiguousPositions(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	e0 := mustAdd(t, db, "s1", "res:track:1", "First")
	e1 := mustAdd(t, db, "s1", "res:track:2", "Second")
	e2 := mustAdd(t, db, "s1", "res:track:3", "Third")

	for i, e := range []*models.QueueEntry{e0, e1, e2} {
		if e.Pos == nil || *e.Pos != i {
			t.Errorf("entry %d: expected pos %d, got %v", i, i, e.Pos)
		}
	}

	entries, err := db.QueuedEntries(ctx, "s1")
	if err != nil {
		t.Fatalf("QueuedEntries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 queued entries, got %d", len(entries))
	}
	for i, e := range entries {
		if *e.Pos != i {
			t.Errorf("position %d: got %d", i, *e.Pos)
		}
	}
}

func TestAddEntry_SessionsIndependent(t *testing.T) {
	db := setupTestDB(t)

	a := mustAdd(t, db, "s1", "res:track:1", "Song A")
	b := mustAdd(t, db, "s2", "res:track:2", "Song B")

	if *a.Pos != 0 || *b.Pos != 0 {
		t.Errorf("expected both sessions to start at pos 0, got %d and %d", *a.Pos, *b.Pos)
	}
}

func TestMarkPlayed_CompactsPositions(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	mustAdd(t, db, "s1", "res:track:1", "First")
	middle := mustAdd(t, db, "s1", "res:track:2", "Second")
	mustAdd(t, db, "s1", "res:track:3", "Third")

	played, err := db.MarkPlayed(ctx, "s1", middle.ID)
	if err != nil {
		t.Fatalf("MarkPlayed: %v", err)
	}
	if played.Status != models.StatusPlayed {
		t.Errorf("expected status played, got %s", played.Status)
	}
	if played.Pos != nil {
		t.Errorf("expected nil pos after play, got %d", *played.Pos)
	}
	if played.PlayedAt == nil {
		t.Error("expected played_at to be set")
	}

	entries, err := db.QueuedEntries(ctx, "s1")
	if err != nil {
		t.Fatalf("QueuedEntries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 queued entries, got %d", len(entries))
	}
	for i, e := range entries {
		if *e.Pos != i {
			t.Errorf("expected contiguous positions after compaction, pos[%d]=%d", i, *e.Pos)
		}
	}
}

func TestMarkPlayed_NotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.MarkPlayed(context.Background(), "s1", uuid.New())
	if !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestMarkPlayed_AlreadyPlayed(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	e := mustAdd(t, db, "s1", "res:track:1", "Only")
	if _, err := db.MarkPlayed(ctx, "s1", e.ID); err != nil {
		t.Fatalf("first MarkPlayed: %v", err)
	}
	if _, err := db.MarkPlayed(ctx, "s1", e.ID); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("expected ErrEntryNotFound on replay, got %v", err)
	}
}

func TestRecentlyPlayed_MostRecentFirst(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := mustAdd(t, db, "s1", "res:track:1", "First")
	second := mustAdd(t, db, "s1", "res:track:2", "Second")
	third := mustAdd(t, db, "s1", "res:track:3", "Third")

	for _, e := range []*models.QueueEntry{first, second, third} {
		if _, err := db.MarkPlayed(ctx, "s1", e.ID); err != nil {
			t.Fatalf("MarkPlayed: %v", err)
		}
	}

	played, err := db.RecentlyPlayed(ctx, "s1", 2)
	if err != nil {
		t.Fatalf("RecentlyPlayed: %v", err)
	}
	if len(played) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(played))
	}
	if played[0].URI != "res:track:3" {
		t.Errorf("expected most recent first, got %s", played[0].URI)
	}
}

func TestSessionURIs_QueuedAndPlayed(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	e := mustAdd(t, db, "s1", "res:track:1", "Played One")
	mustAdd(t, db, "s1", "res:track:2", "Still Queued")
	mustAdd(t, db, "s2", "res:track:9", "Other Session")

	if _, err := db.MarkPlayed(ctx, "s1", e.ID); err != nil {
		t.Fatalf("MarkPlayed: %v", err)
	}

	uris, err := db.SessionURIs(ctx, "s1")
	if err != nil {
		t.Fatalf("SessionURIs: %v", err)
	}
	if len(uris) != 2 {
		t.Fatalf("expected 2 URIs, got %d", len(uris))
	}
	if _, ok := uris["res:track:1"]; !ok {
		t.Error("expected played URI in set")
	}
	if _, ok := uris["res:track:9"]; ok {
		t.Error("other session URI must not leak into set")
	}
}

func TestUpdatePositions(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	a := mustAdd(t, db, "s1", "res:track:1", "A")
	b := mustAdd(t, db, "s1", "res:track:2", "B")
	c := mustAdd(t, db, "s1", "res:track:3", "C")

	err := db.UpdatePositions(ctx, "s1", map[uuid.UUID]int{
		a.ID: 2,
		b.ID: 0,
		c.ID: 1,
	})
	if err != nil {
		t.Fatalf("UpdatePositions: %v", err)
	}

	entries, err := db.QueuedEntries(ctx, "s1")
	if err != nil {
		t.Fatalf("QueuedEntries: %v", err)
	}
	wantOrder := []string{"res:track:2", "res:track:3", "res:track:1"}
	for i, want := range wantOrder {
		if entries[i].URI != want {
			t.Errorf("pos %d: expected %s, got %s", i, want, entries[i].URI)
		}
	}
}

func TestUpdatePositions_UnknownEntry(t *testing.T) {
	db := setupTestDB(t)

	err := db.UpdatePositions(context.Background(), "s1", map[uuid.UUID]int{uuid.New(): 0})
	if !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestParseEntryID_RawBytesAndText(t *testing.T) {
	want := uuid.New()

	// The duckdb driver returns UUID columns as their raw 16 bytes.
	got, err := parseEntryID(want[:])
	if err != nil {
		t.Fatalf("parseEntryID(raw): %v", err)
	}
	if got != want {
		t.Errorf("raw bytes: got %s, want %s", got, want)
	}

	got, err = parseEntryID([]byte(want.String()))
	if err != nil {
		t.Fatalf("parseEntryID(text): %v", err)
	}
	if got != want {
		t.Errorf("text: got %s, want %s", got, want)
	}

	if _, err := parseEntryID([]byte("not-a-uuid")); err == nil {
		t.Error("expected error for malformed id")
	}
}

func TestEntryRoundTrip_PreservesID(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	added := mustAdd(t, db, "s1", "res:track:1", "A")

	entries, err := db.QueuedEntries(ctx, "s1")
	if err != nil {
		t.Fatalf("QueuedEntries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].ID != added.ID {
		t.Errorf("read back ID %s, want %s", entries[0].ID, added.ID)
	}

	played, err := db.MarkPlayed(ctx, "s1", added.ID)
	if err != nil {
		t.Fatalf("MarkPlayed: %v", err)
	}
	if played.ID != added.ID {
		t.Errorf("played ID %s, want %s", played.ID, added.ID)
	}
}

func TestTrackByTitle_NormalizedMatch(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	track := models.Track{
		URI:    "res:track:mc",
		Title:  "Midnight City",
		Artist: "M83",
		Features: vibe.FeatureVector{
			Tempo: 105, Energy: 0.81, Danceability: 0.58, Valence: 0.42,
		},
	}
	if err := db.UpsertTrack(ctx, track); err != nil {
		t.Fatalf("UpsertTrack: %v", err)
	}

	for _, query := range []string{"Midnight City", "  midnight city ", "MIDNIGHT CITY"} {
		got, err := db.TrackByTitle(ctx, query)
		if err != nil {
			t.Fatalf("TrackByTitle(%q): %v", query, err)
		}
		if got == nil {
			t.Fatalf("TrackByTitle(%q): expected match, got nil", query)
		}
		if got.URI != track.URI {
			t.Errorf("TrackByTitle(%q) = %s, want %s", query, got.URI, track.URI)
		}
		if got.Features.Tempo != 105 {
			t.Errorf("expected features to round-trip, got tempo %v", got.Features.Tempo)
		}
	}
}

func TestTrackByTitle_NoMatchIsNotError(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.TrackByTitle(context.Background(), "Does Not Exist")
	if err != nil {
		t.Fatalf("TrackByTitle: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing track, got %+v", got)
	}
}

func TestSampleTracks_Excludes(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for i, uri := range []string{"res:track:1", "res:track:2", "res:track:3"} {
		err := db.UpsertTrack(ctx, models.Track{
			URI:   uri,
			Title: uri,
			Features: vibe.FeatureVector{
				Tempo: float64(100 + i), Energy: 0.5, Danceability: 0.5, Valence: 0.5,
			},
		})
		if err != nil {
			t.Fatalf("UpsertTrack: %v", err)
		}
	}

	tracks, err := db.SampleTracks(ctx, 10, map[string]struct{}{"res:track:2": {}})
	if err != nil {
		t.Fatalf("SampleTracks: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("expected 2 tracks after exclusion, got %d", len(tracks))
	}
	for _, tr := range tracks {
		if tr.URI == "res:track:2" {
			t.Error("excluded URI returned")
		}
	}
}

func TestPing(t *testing.T) {
	db := setupTestDB(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

// Resonance - Shared Listening Session Queue with Vibe Ranking
// Copyright 2026 Aux Party Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auxparty/resonance

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/auxparty/resonance/internal/logging"
	"github.com/auxparty/resonance/internal/metrics"
	"github.com/auxparty/resonance/internal/models"
	"github.com/auxparty/resonance/internal/vibe"
)

// Status reports the terminal state of a recommendation request. All
// statuses are successful outcomes; a session without enough history is a
// normal steady-state.
type Status string

const (
	// StatusOK means recommendations were produced (possibly an empty
	// list when exclusion removed every candidate).
	StatusOK Status = "ok"

	// StatusNoPlayedSongs means the session has no play history yet, so
	// no taste signal exists.
	StatusNoPlayedSongs Status = "no_played_songs"

	// StatusSeedsNotFound means no recently played song had resolvable
	// features.
	StatusSeedsNotFound Status = "seed_songs_not_found"

	// StatusNoCandidates means the dataset yielded no candidates outside
	// the session's history.
	StatusNoCandidates Status = "no_candidates"
)

// ErrMissingSession is returned when a recommendation is requested without
// a session identifier.
var ErrMissingSession = errors.New("recommend: session id is required")

// resolveConcurrency bounds the seed feature lookup fan-out.
const resolveConcurrency = 8

// Config holds the tunable constants of the recommendation engine.
type Config struct {
	// SeedLimit is how many recently played songs seed the vibe.
	SeedLimit int

	// DefaultLimit is the recommendation count when the caller passes 0.
	DefaultLimit int

	// MaxLimit caps the requested recommendation count.
	MaxLimit int

	// CandidatePool caps how many dataset tracks are scored.
	CandidatePool int

	// Epsilon guards the inverse-variance weights against division by
	// zero.
	Epsilon float64
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		SeedLimit:     5,
		DefaultLimit:  5,
		MaxLimit:      50,
		CandidatePool: 1000,
		Epsilon:       vibe.DefaultEpsilon,
	}
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	if c.SeedLimit < 1 {
		return fmt.Errorf("recommend: seed limit must be at least 1, got %d", c.SeedLimit)
	}
	if c.DefaultLimit < 1 {
		return fmt.Errorf("recommend: default limit must be at least 1, got %d", c.DefaultLimit)
	}
	if c.MaxLimit < c.DefaultLimit {
		return fmt.Errorf("recommend: max limit (%d) below default limit (%d)", c.MaxLimit, c.DefaultLimit)
	}
	if c.CandidatePool < 1 {
		return fmt.Errorf("recommend: candidate pool must be at least 1, got %d", c.CandidatePool)
	}
	return nil
}

// HistoryStore is the session history access the engine needs.
type HistoryStore interface {
	RecentlyPlayed(ctx context.Context, sessionID string, limit int) ([]models.QueueEntry, error)
	SessionURIs(ctx context.Context, sessionID string) (map[string]struct{}, error)
}

// CandidateSource supplies the bounded candidate pool, already excluding
// the given URIs.
type CandidateSource interface {
	SampleTracks(ctx context.Context, limit int, exclude map[string]struct{}) ([]models.Track, error)
}

// FeatureSource resolves a song title to its audio feature vector.
type FeatureSource interface {
	Resolve(ctx context.Context, title string) (vibe.FeatureVector, bool, error)
}

// Result is the outcome of a recommendation request.
type Result struct {
	Status          Status                  `json:"status"`
	Recommendations []models.Recommendation `json:"recommendations"`
	SeedSongsUsed   int                     `json:"seed_songs_used"`
	Centroid        vibe.FeatureVector      `json:"centroid"`
	Weights         vibe.WeightVector       `json:"weights"`
}

// Engine produces recommendations. Safe for concurrent use; it holds no
// per-session state and never mutates the queue.
type Engine struct {
	history    HistoryStore
	candidates CandidateSource
	features   FeatureSource
	cfg        Config
	logger     zerolog.Logger
}

// NewEngine creates a recommendation engine.
func NewEngine(history HistoryStore, candidates CandidateSource, features FeatureSource, cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		history:    history,
		candidates: candidates,
		features:   features,
		cfg:        cfg,
		logger:     logging.WithComponent("recommend"),
	}, nil
}

// Recommend scores dataset candidates against the vibe of the session's
// recently played songs and returns up to limit of them, closest first.
// limit 0 means the configured default; values above the maximum are
// clamped.
func (e *Engine) Recommend(ctx context.Context, sessionID string, limit int) (*Result, error) {
	if sessionID == "" {
		return nil, ErrMissingSession
	}
	if limit <= 0 {
		limit = e.cfg.DefaultLimit
	}
	if limit > e.cfg.MaxLimit {
		limit = e.cfg.MaxLimit
	}

	start := time.Now()
	result, err := e.recommend(ctx, sessionID, limit)
	if err != nil {
		e.logger.Error().Err(err).Str("session", sessionID).Msg("Recommendation failed")
		return nil, err
	}

	metrics.RecordRecommendRequest(string(result.Status), time.Since(start))
	logging.Ctx(ctx).Info().
		Str("session", sessionID).
		Str("status", string(result.Status)).
		Int("seeds", result.SeedSongsUsed).
		Int("returned", len(result.Recommendations)).
		Dur("elapsed", time.Since(start)).
		Msg("Recommendation complete")
	return result, nil
}

func (e *Engine) recommend(ctx context.Context, sessionID string, limit int) (*Result, error) {
	seeds, err := e.history.RecentlyPlayed(ctx, sessionID, e.cfg.SeedLimit)
	if err != nil {
		return nil, fmt.Errorf("loading play history: %w", err)
	}
	if len(seeds) == 0 {
		return &Result{Status: StatusNoPlayedSongs, Recommendations: []models.Recommendation{}}, nil
	}

	seedVectors := e.resolveSeeds(ctx, seeds)
	if len(seedVectors) == 0 {
		return &Result{Status: StatusSeedsNotFound, Recommendations: []models.Recommendation{}}, nil
	}

	centroid, err := vibe.Centroid(seedVectors)
	if err != nil {
		return nil, fmt.Errorf("computing centroid: %w", err)
	}
	weights := vibe.Weights(seedVectors, e.cfg.Epsilon)

	// Anything the session has already seen, queued or played, is out.
	exclude, err := e.history.SessionURIs(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session URIs: %w", err)
	}

	candidates, err := e.candidates.SampleTracks(ctx, e.cfg.CandidatePool, exclude)
	if err != nil {
		return nil, fmt.Errorf("loading candidates: %w", err)
	}
	if len(candidates) == 0 {
		return &Result{
			Status:          StatusNoCandidates,
			Recommendations: []models.Recommendation{},
			SeedSongsUsed:   len(seedVectors),
			Centroid:        centroid,
			Weights:         weights,
		}, nil
	}

	scored := make([]models.Recommendation, 0, len(candidates))
	for _, c := range candidates {
		if _, seen := exclude[c.URI]; seen {
			continue
		}
		scored = append(scored, models.Recommendation{
			URI:      c.URI,
			Title:    c.Title,
			Artist:   c.Artist,
			Distance: vibe.Distance(c.Features, centroid, weights),
		})
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Distance < scored[b].Distance
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}

	return &Result{
		Status:          StatusOK,
		Recommendations: scored,
		SeedSongsUsed:   len(seedVectors),
		Centroid:        centroid,
		Weights:         weights,
	}, nil
}

// resolveSeeds fans out feature resolution for the seed songs and drops
// the ones that do not resolve.
func (e *Engine) resolveSeeds(ctx context.Context, seeds []models.QueueEntry) []vibe.FeatureVector {
	type resolved struct {
		features vibe.FeatureVector
		ok       bool
	}
	results := make([]resolved, len(seeds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for i := range seeds {
		g.Go(func() error {
			features, ok, err := e.features.Resolve(gctx, seeds[i].Title)
			if err != nil {
				e.logger.Warn().Err(err).
					Str("title", seeds[i].Title).
					Msg("Seed feature resolution failed, dropping seed")
				return nil
			}
			results[i] = resolved{features: features, ok: ok}
			return nil
		})
	}
	_ = g.Wait()

	vectors := make([]vibe.FeatureVector, 0, len(seeds))
	for _, r := range results {
		if r.ok {
			vectors = append(vectors, r.features)
		}
	}
	return vectors
}

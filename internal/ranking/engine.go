// Resonance - Shared Listening Session Queue with Vibe Ranking
// Copyright 2026 Aux Party Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auxparty/resonance

package ranking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/auxparty/resonance/internal/logging"
	"github.com/auxparty/resonance/internal/metrics"
	"github.com/auxparty/resonance/internal/models"
	"github.com/auxparty/resonance/internal/vibe"
)

// Status reports the terminal state of a rank pass. Every status other
// than a hard error is a successful outcome; thin queues and missing
// features are expected steady-states of a live session, not failures.
type Status string

const (
	// StatusRanked means positions were recomputed and written.
	StatusRanked Status = "ranked"

	// StatusQueueEmpty means the session has no queued entries.
	StatusQueueEmpty Status = "queue_empty"

	// StatusNotEnoughSongs means the ranking pool was below the minimum
	// and no positions were touched.
	StatusNotEnoughSongs Status = "not_enough_songs"

	// StatusReferenceNotFound means no reference song had resolvable
	// features, so no vibe could be established and no positions were
	// touched.
	StatusReferenceNotFound Status = "reference_not_found"
)

// ErrMissingSession is returned when a rank pass is requested without a
// session identifier.
var ErrMissingSession = errors.New("ranking: session id is required")

// resolveConcurrency bounds the feature lookup fan-out per pass.
const resolveConcurrency = 8

// Config holds the tunable constants of the ranking engine. The defaults
// are product-tuned; change them only with explicit product direction.
type Config struct {
	// ReferenceSize is the number of leading pool entries anchoring the
	// vibe. The effective size is capped at poolSize-1.
	ReferenceSize int

	// MinRankable is the smallest ranking pool that gets reordered.
	MinRankable int

	// Epsilon guards the inverse-variance weights against division by
	// zero.
	Epsilon float64
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		ReferenceSize: 2,
		MinRankable:   3,
		Epsilon:       vibe.DefaultEpsilon,
	}
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	if c.ReferenceSize < 1 {
		return fmt.Errorf("ranking: reference size must be at least 1, got %d", c.ReferenceSize)
	}
	if c.MinRankable < 2 {
		return fmt.Errorf("ranking: min rankable must be at least 2, got %d", c.MinRankable)
	}
	if c.Epsilon <= 0 {
		return fmt.Errorf("ranking: epsilon must be positive, got %g", c.Epsilon)
	}
	return nil
}

// QueueStore is the queue access the engine needs.
type QueueStore interface {
	QueuedEntries(ctx context.Context, sessionID string) ([]models.QueueEntry, error)
	UpdatePositions(ctx context.Context, sessionID string, positions map[uuid.UUID]int) error
}

// FeatureSource resolves a song title to its audio feature vector. The
// second return value reports whether features were found; failures are
// expected to be absorbed by the source and reported as not found.
type FeatureSource interface {
	Resolve(ctx context.Context, title string) (vibe.FeatureVector, bool, error)
}

// Result is the outcome of a rank pass.
type Result struct {
	Status        Status             `json:"status"`
	RankedCount   int                `json:"ranked_count"`
	SongsNotFound int                `json:"songs_not_found"`
	ReferenceSize int                `json:"reference_size"`
	Centroid      vibe.FeatureVector `json:"centroid"`
	Weights       vibe.WeightVector  `json:"weights"`

	// Coalesced marks a caller whose request was folded into a rank pass
	// already in flight for the session.
	Coalesced bool `json:"coalesced,omitempty"`
}

// Engine runs rank passes. Safe for concurrent use; passes are serialized
// per session.
type Engine struct {
	store    QueueStore
	features FeatureSource
	cfg      Config
	logger   zerolog.Logger
	group    singleflight.Group
}

// NewEngine creates a ranking engine.
func NewEngine(store QueueStore, features FeatureSource, cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		store:    store,
		features: features,
		cfg:      cfg,
		logger:   logging.WithComponent("ranking"),
	}, nil
}

// Rerank runs a rank pass for one session. currentlyPlayingURI, when it
// matches a queued entry, pins that entry at position 0 and exempts it from
// scoring. Concurrent calls for the same session coalesce into the pass
// already in flight.
func (e *Engine) Rerank(ctx context.Context, sessionID, currentlyPlayingURI string) (*Result, error) {
	if sessionID == "" {
		return nil, ErrMissingSession
	}

	// singleflight's shared flag is true for the executing caller too, so
	// track execution directly: only callers whose closure never ran joined
	// someone else's pass.
	executed := false
	v, err, _ := e.group.Do(sessionID, func() (interface{}, error) {
		executed = true
		return e.rerank(ctx, sessionID, currentlyPlayingURI)
	})
	if err != nil {
		return nil, err
	}

	result := v.(*Result)
	if !executed {
		metrics.RankCoalesced.Inc()
		// Hand coalesced callers their own copy so the flag does not
		// leak into the primary caller's result.
		copied := *result
		copied.Coalesced = true
		return &copied, nil
	}
	return result, nil
}

func (e *Engine) rerank(ctx context.Context, sessionID, currentlyPlayingURI string) (*Result, error) {
	start := time.Now()
	result, err := e.rankPass(ctx, sessionID, currentlyPlayingURI)
	if err != nil {
		e.logger.Error().Err(err).Str("session", sessionID).Msg("Rank pass failed")
		return nil, err
	}

	metrics.RecordRankPass(string(result.Status), time.Since(start), result.SongsNotFound)
	logging.Ctx(ctx).Info().
		Str("session", sessionID).
		Str("status", string(result.Status)).
		Int("ranked", result.RankedCount).
		Int("songs_not_found", result.SongsNotFound).
		Dur("elapsed", time.Since(start)).
		Msg("Rank pass complete")
	return result, nil
}

func (e *Engine) rankPass(ctx context.Context, sessionID, currentlyPlayingURI string) (*Result, error) {
	entries, err := e.store.QueuedEntries(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading queue: %w", err)
	}
	if len(entries) == 0 {
		return &Result{Status: StatusQueueEmpty}, nil
	}

	// Pull the currently-playing entry out of the ranking pool. It keeps
	// position 0 no matter what the scoring says.
	var pinned *models.QueueEntry
	pool := make([]models.QueueEntry, 0, len(entries))
	for i := range entries {
		if pinned == nil && currentlyPlayingURI != "" && entries[i].URI == currentlyPlayingURI {
			pinned = &entries[i]
			continue
		}
		pool = append(pool, entries[i])
	}

	if len(pool) < e.cfg.MinRankable {
		return &Result{Status: StatusNotEnoughSongs}, nil
	}

	refSize := e.cfg.ReferenceSize
	if limit := len(pool) - 1; refSize > limit {
		refSize = limit
	}

	// Establish the vibe from the songs already next up.
	refVectors := e.resolvePool(ctx, pool[:refSize])
	resolved := make([]vibe.FeatureVector, 0, refSize)
	for _, rv := range refVectors {
		if rv.ok {
			resolved = append(resolved, rv.features)
		}
	}
	if len(resolved) == 0 {
		return &Result{Status: StatusReferenceNotFound, ReferenceSize: refSize}, nil
	}

	centroid, err := vibe.Centroid(resolved)
	if err != nil {
		return nil, fmt.Errorf("computing centroid: %w", err)
	}
	weights := vibe.Weights(resolved, e.cfg.Epsilon)

	// Score the whole pool against the centroid. Unresolvable songs get
	// an infinite distance so they sort strictly last, keeping their
	// relative order.
	poolVectors := e.resolvePool(ctx, pool)
	distances := make([]float64, len(pool))
	songsNotFound := 0
	for i, pv := range poolVectors {
		if pv.ok {
			distances[i] = vibe.Distance(pv.features, centroid, weights)
		} else {
			distances[i] = math.Inf(1)
			songsNotFound++
		}
	}

	order := make([]int, len(pool))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return distances[order[a]] < distances[order[b]]
	})

	positions := make(map[uuid.UUID]int, len(pool)+1)
	next := 0
	if pinned != nil {
		positions[pinned.ID] = 0
		next = 1
	}
	for _, idx := range order {
		positions[pool[idx].ID] = next
		next++
	}

	if err := e.store.UpdatePositions(ctx, sessionID, positions); err != nil {
		return nil, fmt.Errorf("writing positions: %w", err)
	}

	return &Result{
		Status:        StatusRanked,
		RankedCount:   len(pool),
		SongsNotFound: songsNotFound,
		ReferenceSize: refSize,
		Centroid:      centroid,
		Weights:       weights,
	}, nil
}

type resolvedVector struct {
	features vibe.FeatureVector
	ok       bool
}

// resolvePool fans out feature resolution across the entries and joins on
// completion. Individual failures are absorbed as not found.
func (e *Engine) resolvePool(ctx context.Context, pool []models.QueueEntry) []resolvedVector {
	results := make([]resolvedVector, len(pool))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for i := range pool {
		g.Go(func() error {
			features, ok, err := e.features.Resolve(gctx, pool[i].Title)
			if err != nil {
				e.logger.Warn().Err(err).
					Str("title", pool[i].Title).
					Msg("Feature resolution failed, treating as not found")
				return nil
			}
			results[i] = resolvedVector{features: features, ok: ok}
			return nil
		})
	}
	// Workers never return errors; Wait is the barrier join.
	_ = g.Wait()

	return results
}

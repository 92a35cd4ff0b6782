// Resonance - Shared Listening Session Queue with Vibe Ranking
// Copyright 2026 Aux Party Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auxparty/resonance

// Package features resolves song titles to audio feature vectors.
//
// The resolver sits between the ranking/recommendation engines and the
// dataset store. Lookups are bounded by a per-call timeout and protected by
// a circuit breaker; a tripped breaker or a timed-out lookup degrades to
// "feature not found" rather than failing the caller, so a flaky dataset
// drops individual songs from scoring instead of aborting whole rank passes.
package features

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/auxparty/resonance/internal/config"
	"github.com/auxparty/resonance/internal/logging"
	"github.com/auxparty/resonance/internal/metrics"
	"github.com/auxparty/resonance/internal/models"
	"github.com/auxparty/resonance/internal/vibe"
)

const breakerName = "feature_lookup"

// Source looks up a dataset track by title. Returns (nil, nil) when the
// title has no match.
type Source interface {
	TrackByTitle(ctx context.Context, title string) (*models.Track, error)
}

// Resolver resolves titles to feature vectors with timeout and circuit
// breaker protection.
type Resolver struct {
	src     Source
	cb      *gobreaker.CircuitBreaker[*models.Track]
	timeout time.Duration
	logger  zerolog.Logger
}

// NewResolver creates a Resolver over the given source.
//
// Circuit breaker configuration:
//   - Opens after cfg.BreakerThreshold consecutive failures
//   - Stays open for cfg.BreakerCooldown before probing
//   - Allows one probe request in half-open state
func NewResolver(src Source, cfg *config.DatasetConfig) *Resolver {
	logger := logging.WithComponent("features")

	metrics.RecordBreakerState(breakerName, 0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[*models.Track](gobreaker.Settings{
		Name:    breakerName,
		Timeout: cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(cfg.BreakerThreshold)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Feature lookup breaker state transition")
			metrics.RecordBreakerState(name, stateToFloat(to))
		},
	})

	return &Resolver{
		src:     src,
		cb:      cb,
		timeout: cfg.LookupTimeout,
		logger:  logger,
	}
}

// Resolve looks up the feature vector for a song title. The second return
// value reports whether features were found. Lookup failures, timeouts, and
// an open breaker all degrade to (zero, false, nil); only programming errors
// surface as errors.
func (r *Resolver) Resolve(ctx context.Context, title string) (vibe.FeatureVector, bool, error) {
	lookupCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		lookupCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	track, err := r.cb.Execute(func() (*models.Track, error) {
		return r.src.TrackByTitle(lookupCtx, title)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			r.logger.Warn().Str("title", title).Msg("Feature lookup rejected by open breaker")
		} else {
			r.logger.Warn().Err(err).Str("title", title).Msg("Feature lookup failed")
		}
		metrics.RecordFeatureLookup("error")
		return vibe.FeatureVector{}, false, nil
	}

	if track == nil {
		metrics.RecordFeatureLookup("miss")
		return vibe.FeatureVector{}, false, nil
	}

	metrics.RecordFeatureLookup("hit")
	return track.Features, true, nil
}

// Track resolves the full dataset track for a title, with the same breaker
// and timeout protection as Resolve. Used where the caller needs URI and
// artist, not just the feature vector.
func (r *Resolver) Track(ctx context.Context, title string) (*models.Track, error) {
	lookupCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		lookupCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	track, err := r.cb.Execute(func() (*models.Track, error) {
		return r.src.TrackByTitle(lookupCtx, title)
	})
	if err != nil {
		metrics.RecordFeatureLookup("error")
		return nil, nil
	}
	if track == nil {
		metrics.RecordFeatureLookup("miss")
		return nil, nil
	}
	metrics.RecordFeatureLookup("hit")
	return track, nil
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// Resonance - Shared Listening Session Queue with Vibe Ranking
// Copyright 2026 Aux Party Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auxparty/resonance

package vibe

import (
	"errors"
	"math"
)

// DefaultEpsilon guards the inverse-variance weight computation against
// division by zero when a feature is perfectly constant across the
// reference set.
const DefaultEpsilon = 1e-6

// ErrNoVectors is returned by Centroid when the input is empty.
var ErrNoVectors = errors.New("vibe: centroid requires at least one vector")

// FeatureVector holds the four audio features of one track.
//
// Tempo is BPM-scale; the remaining fields are 0-1 scale in the source
// dataset. The model makes no range assumption and does not normalize
// across the scales.
type FeatureVector struct {
	Tempo        float64 `json:"tempo"`
	Energy       float64 `json:"energy"`
	Danceability float64 `json:"danceability"`
	Valence      float64 `json:"valence"`
}

// WeightVector holds per-feature distance weights. Each weight is the
// inverse of that feature's empirical variance across a reference set,
// plus epsilon. All weights are positive.
type WeightVector struct {
	Tempo        float64 `json:"tempo"`
	Energy       float64 `json:"energy"`
	Danceability float64 `json:"danceability"`
	Valence      float64 `json:"valence"`
}

// UniformWeights returns the degenerate all-1.0 weight vector used when
// fewer than two reference samples are available (variance undefined).
func UniformWeights() WeightVector {
	return WeightVector{Tempo: 1, Energy: 1, Danceability: 1, Valence: 1}
}

// Centroid returns the per-field arithmetic mean of the given vectors.
// It fails on empty input rather than producing NaN.
func Centroid(vectors []FeatureVector) (FeatureVector, error) {
	if len(vectors) == 0 {
		return FeatureVector{}, ErrNoVectors
	}

	var sum FeatureVector
	for _, v := range vectors {
		sum.Tempo += v.Tempo
		sum.Energy += v.Energy
		sum.Danceability += v.Danceability
		sum.Valence += v.Valence
	}

	n := float64(len(vectors))
	return FeatureVector{
		Tempo:        sum.Tempo / n,
		Energy:       sum.Energy / n,
		Danceability: sum.Danceability / n,
		Valence:      sum.Valence / n,
	}, nil
}

// Weights computes inverse-variance weights over the given vectors.
//
// Fewer than two vectors yield uniform 1.0 weights regardless of content.
// Otherwise each field's weight is 1/(variance+epsilon), where variance is
// the population variance (divide by n). Lower variance means the feature
// is consistent across the reference set and contributes more to distance.
// A non-positive epsilon falls back to DefaultEpsilon.
func Weights(vectors []FeatureVector, epsilon float64) WeightVector {
	if len(vectors) < 2 {
		return UniformWeights()
	}
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}

	mean, _ := Centroid(vectors) // nonempty by the guard above

	var varTempo, varEnergy, varDance, varValence float64
	for _, v := range vectors {
		varTempo += sq(v.Tempo - mean.Tempo)
		varEnergy += sq(v.Energy - mean.Energy)
		varDance += sq(v.Danceability - mean.Danceability)
		varValence += sq(v.Valence - mean.Valence)
	}

	n := float64(len(vectors))
	return WeightVector{
		Tempo:        1 / (varTempo/n + epsilon),
		Energy:       1 / (varEnergy/n + epsilon),
		Danceability: 1 / (varDance/n + epsilon),
		Valence:      1 / (varValence/n + epsilon),
	}
}

// Distance returns the weighted Euclidean distance between a point and a
// centroid. It is never negative, zero iff the vectors are equal on every
// field, symmetric under point/centroid swap, and monotonic in per-field
// absolute deviation.
func Distance(point, centroid FeatureVector, weights WeightVector) float64 {
	sum := weights.Tempo*sq(point.Tempo-centroid.Tempo) +
		weights.Energy*sq(point.Energy-centroid.Energy) +
		weights.Danceability*sq(point.Danceability-centroid.Danceability) +
		weights.Valence*sq(point.Valence-centroid.Valence)
	return math.Sqrt(sum)
}

func sq(x float64) float64 { return x * x }

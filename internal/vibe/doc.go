// Resonance - Shared Listening Session Queue with Vibe Ranking
// Copyright 2026 Aux Party Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auxparty/resonance

// Package vibe implements the deterministic feature-space model behind queue
// ranking and recommendations.
//
// A session's "vibe" is represented as a centroid plus a weight vector over
// four audio features (tempo, energy, danceability, valence). Given a
// reference set of feature vectors:
//
//   - Centroid is the per-field arithmetic mean.
//   - Weights is the per-field inverse population variance (1/(var+eps)):
//     a feature that is stable across the reference set defines the vibe,
//     so deviations from it are penalized more heavily.
//   - Distance is the weighted Euclidean distance to the centroid:
//     sqrt(sum_f w_f * (p_f - c_f)^2).
//
// All functions are pure and safe for concurrent use. Computation is in
// 64-bit floating point with no internal rounding.
//
// Two semantics are load-bearing and must not be "fixed":
//
//   - Variance is population variance (divide by n, not n-1). With the tiny
//     reference sets used for ranking this materially changes weight
//     magnitudes, and downstream ordering depends on it.
//   - Features are NOT rescaled before distance computation. Tempo is
//     BPM-scale while the other three are 0-1 scale; inverse-variance
//     weighting partially compensates, but this is not a z-score
//     standardization and must not become one.
package vibe

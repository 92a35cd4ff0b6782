// Resonance - Shared Listening Session Queue with Vibe Ranking
// Copyright 2026 Aux Party Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auxparty/resonance

/*
Package recommend implements the recommendation engine.

Recommendations are seeded from what a session actually played: the feature
vectors of the most recently played songs define a centroid and
inverse-variance weights, and a bounded pool of dataset candidates is scored
by weighted distance to that centroid. Everything the session has already
seen, queued or played, is excluded.

The engine never mutates the queue. It scores and returns; queueing a
recommendation is the caller's decision, made against the live state of the
session at that moment.

A session with no play history yet is a normal state, not an error: the
engine reports it with a descriptive status and an empty list.
*/
package recommend

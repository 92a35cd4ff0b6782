// Resonance - Shared Listening Session Queue with Vibe Ranking
// Copyright 2026 Aux Party Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auxparty/resonance

/*
Package ranking implements the queue ranking engine.

A rank pass reorders the queued entries of one session so that songs closer
to the session's vibe play sooner, while keeping the currently-playing entry
pinned at position 0. The vibe is anchored to the next few songs already at
the front of the queue: their feature vectors define the centroid and the
inverse-variance weights used to score every other queued song.

Songs whose audio features cannot be resolved are never dropped from the
queue; they receive an infinite distance and sort after every scored song,
preserving their relative order among themselves.

At most one rank pass runs per session at any time. Concurrent triggers are
coalesced through a per-session single-flight group; callers whose request
was folded into an in-flight pass receive the shared result flagged as
coalesced.

The engine is stateless across invocations. Session state such as "did we
already queue a recommendation" belongs to the caller.
*/
package ranking

// Resonance - Shared Listening Session Queue with Vibe Ranking
// Copyright 2026 Aux Party Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auxparty/resonance

/*
Package database provides DuckDB-backed persistence for Resonance.

It holds two tables:

  - queue_entries: the per-session listening queue. Queued entries carry a
    contiguous pos starting at 0 (0 = currently playing); played entries
    drop their pos and record played_at.
  - tracks: the audio feature dataset, keyed by URI and matched by
    normalized (lowercased, trimmed) title during feature resolution.

Writes that must be internally consistent (appending an entry, marking an
entry played and compacting the gap) run inside transactions. Batch position
writes from a rank pass are deliberately independent per-entry updates; the
ranking engine serializes passes per session so a failed batch is repaired
by the next pass.

The DuckDB connection is tuned for an embedded analytical store: pool size
follows NumCPU, memory is capped via max_memory, and the database file is
checkpointed on shutdown to avoid WAL replay on the next start.
*/
package database

// Resonance - Shared Listening Session Queue with Vibe Ranking
// Copyright 2026 Aux Party Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auxparty/resonance

package main

// version is overridden at build time via -ldflags "-X main.version=...".
var version = "dev"

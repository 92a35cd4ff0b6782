// Resonance - Shared Listening Session Queue with Vibe Ranking
// Copyright 2026 Aux Party Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auxparty/resonance

// Package main is the entry point for the Resonance server.
//
// Resonance keeps a shared listening session's queue sorted by vibe. Guests
// add songs, the ranking engine reorders the queue around the current song's
// audio features, and the recommendation engine suggests catalog tracks close
// to what the room has been playing.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered load from defaults, config.yaml, and environment (Koanf v2)
//  2. Database: DuckDB holding queue entries and the audio feature catalog
//  3. Feature resolver: circuit-breaker protected title lookups against the catalog
//  4. Engines: the ranking and recommendation engines over the resolver
//  5. HTTP server: Chi-routed REST API with Prometheus metrics
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (HTTP_PORT, DUCKDB_PATH, DATASET_PATH, ...)
//   - Config file (config.yaml, or the path in CONFIG_PATH)
//   - Built-in defaults
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//   - Checkpoints and closes the database
//
// # Example Usage
//
//	export DUCKDB_PATH=/data/resonance.duckdb
//	export DATASET_PATH=/data/tracks.csv
//	./resonance
//
// # Port 8440
//
// The default port 8440 references A440, the standard tuning pitch.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/auxparty/resonance/internal/api"
	"github.com/auxparty/resonance/internal/config"
	"github.com/auxparty/resonance/internal/database"
	"github.com/auxparty/resonance/internal/features"
	"github.com/auxparty/resonance/internal/logging"
	"github.com/auxparty/resonance/internal/ranking"
	"github.com/auxparty/resonance/internal/recommend"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
}

func run() error {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logging.Info().Str("version", version).Msg("Starting Resonance")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close database")
		}
	}()

	if cfg.Dataset.Path != "" {
		loadCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		rows, err := db.LoadTracksCSV(loadCtx, cfg.Dataset.Path)
		cancel()
		if err != nil {
			return fmt.Errorf("loading feature dataset: %w", err)
		}
		logging.Info().Str("path", cfg.Dataset.Path).Int64("tracks", rows).Msg("Feature dataset loaded")
	}

	resolver := features.NewResolver(db, &cfg.Dataset)

	ranker, err := ranking.NewEngine(db, resolver, ranking.Config{
		ReferenceSize: cfg.Ranking.ReferenceSize,
		MinRankable:   cfg.Ranking.MinRankable,
		Epsilon:       cfg.Ranking.Epsilon,
	})
	if err != nil {
		return fmt.Errorf("creating ranking engine: %w", err)
	}

	recommender, err := recommend.NewEngine(db, db, resolver, recommend.Config{
		SeedLimit:     cfg.Recommend.SeedLimit,
		DefaultLimit:  cfg.Recommend.DefaultLimit,
		MaxLimit:      cfg.Recommend.MaxLimit,
		CandidatePool: cfg.Recommend.CandidatePool,
		Epsilon:       cfg.Ranking.Epsilon,
	})
	if err != nil {
		return fmt.Errorf("creating recommendation engine: %w", err)
	}

	handler := api.NewHandler(db, ranker, recommender, resolver, db, cfg)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(handler, &cfg.Security),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}

	logging.Info().Msg("Server stopped")
	return nil
}

// Resonance - Shared Listening Session Queue with Vibe Ranking
// Copyright 2026 Aux Party Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auxparty/resonance

// Package config provides layered configuration for Resonance.
//
// Configuration is loaded via Koanf v2 with clear precedence:
// environment variables override the optional YAML config file, which
// overrides built-in defaults. See LoadWithKoanf.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the Resonance server.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Dataset   DatasetConfig   `koanf:"dataset"`
	Ranking   RankingConfig   `koanf:"ranking"`
	Recommend RecommendConfig `koanf:"recommend"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port    int           `koanf:"port"`
	Host    string        `koanf:"host"`
	Timeout time.Duration `koanf:"timeout"`
}

// DatabaseConfig holds DuckDB settings for the queue store.
type DatabaseConfig struct {
	// Path is the DuckDB database file. Empty means in-memory.
	Path string `koanf:"path"`

	// MaxMemory limits DuckDB memory usage, e.g. "1GB".
	MaxMemory string `koanf:"max_memory"`

	// Threads sets DuckDB worker threads. 0 means runtime.NumCPU().
	Threads int `koanf:"threads"`
}

// DatasetConfig holds audio feature dataset settings.
type DatasetConfig struct {
	// Path is an optional CSV file of tracks with audio features,
	// loaded into the tracks table at startup via read_csv_auto.
	Path string `koanf:"path"`

	// LookupTimeout bounds a single feature lookup.
	LookupTimeout time.Duration `koanf:"lookup_timeout"`

	// BreakerThreshold is the consecutive failure count that opens the
	// feature lookup circuit breaker.
	BreakerThreshold int `koanf:"breaker_threshold"`

	// BreakerCooldown is how long the breaker stays open before probing.
	BreakerCooldown time.Duration `koanf:"breaker_cooldown"`
}

// RankingConfig holds queue ranking engine settings.
type RankingConfig struct {
	// ReferenceSize is the number of leading songs used to build the
	// vibe reference set. The effective size never exceeds poolSize-1.
	ReferenceSize int `koanf:"reference_size"`

	// MinRankable is the minimum queue size for a rank pass to proceed.
	MinRankable int `koanf:"min_rankable"`

	// Epsilon guards against division by zero in variance weighting.
	Epsilon float64 `koanf:"epsilon"`
}

// RecommendConfig holds recommendation engine settings.
type RecommendConfig struct {
	// SeedLimit is the number of recently played songs used as seeds.
	SeedLimit int `koanf:"seed_limit"`

	// DefaultLimit is the recommendation count when the request omits one.
	DefaultLimit int `koanf:"default_limit"`

	// MaxLimit caps the requested recommendation count.
	MaxLimit int `koanf:"max_limit"`

	// CandidatePool caps how many dataset tracks are scored per request.
	CandidatePool int `koanf:"candidate_pool"`

	// TriggerWindow is how close to the end of the current song clients
	// should request recommendations. Surfaced as a hint to clients.
	TriggerWindow time.Duration `koanf:"trigger_window"`
}

// SecurityConfig holds rate limiting and CORS settings.
type SecurityConfig struct {
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateRanking(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	return nil
}

func (c *Config) validateRanking() error {
	if c.Ranking.ReferenceSize < 1 {
		return fmt.Errorf("ranking.reference_size must be at least 1, got %d", c.Ranking.ReferenceSize)
	}
	if c.Ranking.MinRankable < 2 {
		return fmt.Errorf("ranking.min_rankable must be at least 2, got %d", c.Ranking.MinRankable)
	}
	if c.Ranking.Epsilon <= 0 {
		return fmt.Errorf("ranking.epsilon must be positive, got %g", c.Ranking.Epsilon)
	}
	return nil
}

func (c *Config) validateRecommend() error {
	if c.Recommend.SeedLimit < 1 {
		return fmt.Errorf("recommend.seed_limit must be at least 1, got %d", c.Recommend.SeedLimit)
	}
	if c.Recommend.DefaultLimit < 1 {
		return fmt.Errorf("recommend.default_limit must be at least 1, got %d", c.Recommend.DefaultLimit)
	}
	if c.Recommend.MaxLimit < c.Recommend.DefaultLimit {
		return fmt.Errorf("recommend.max_limit (%d) must be at least recommend.default_limit (%d)",
			c.Recommend.MaxLimit, c.Recommend.DefaultLimit)
	}
	if c.Recommend.CandidatePool < 1 {
		return fmt.Errorf("recommend.candidate_pool must be at least 1, got %d", c.Recommend.CandidatePool)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("logging.level must be a valid level, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

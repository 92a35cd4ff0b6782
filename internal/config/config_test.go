// Resonance - Shared Listening Session Queue with Vibe Ranking
// Copyright 2026 Aux Party Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auxparty/resonance

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got: %v", err)
	}

	if cfg.Server.Port != 8440 {
		t.Errorf("expected default port 8440, got %d", cfg.Server.Port)
	}
	if cfg.Ranking.MinRankable != 3 {
		t.Errorf("expected min_rankable 3, got %d", cfg.Ranking.MinRankable)
	}
	if cfg.Recommend.SeedLimit != 5 {
		t.Errorf("expected seed_limit 5, got %d", cfg.Recommend.SeedLimit)
	}
	if cfg.Recommend.CandidatePool != 1000 {
		t.Errorf("expected candidate_pool 1000, got %d", cfg.Recommend.CandidatePool)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, true},
		{"zero timeout", func(c *Config) { c.Server.Timeout = 0 }, true},
		{"reference size zero", func(c *Config) { c.Ranking.ReferenceSize = 0 }, true},
		{"min rankable one", func(c *Config) { c.Ranking.MinRankable = 1 }, true},
		{"negative epsilon", func(c *Config) { c.Ranking.Epsilon = -1 }, true},
		{"seed limit zero", func(c *Config) { c.Recommend.SeedLimit = 0 }, true},
		{"max limit below default", func(c *Config) { c.Recommend.MaxLimit = 2 }, true},
		{"candidate pool zero", func(c *Config) { c.Recommend.CandidatePool = 0 }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"console format ok", func(c *Config) { c.Logging.Format = "console" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadWithKoanf_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("DUCKDB_PATH", "/tmp/test.duckdb")
	t.Setenv("RANKING_REFERENCE_SIZE", "3")
	t.Setenv("RECOMMEND_DEFAULT_LIMIT", "10")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000 from env, got %d", cfg.Server.Port)
	}
	if cfg.Database.Path != "/tmp/test.duckdb" {
		t.Errorf("expected env database path, got %s", cfg.Database.Path)
	}
	if cfg.Ranking.ReferenceSize != 3 {
		t.Errorf("expected reference size 3 from env, got %d", cfg.Ranking.ReferenceSize)
	}
	if cfg.Recommend.DefaultLimit != 10 {
		t.Errorf("expected default limit 10 from env, got %d", cfg.Recommend.DefaultLimit)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level from env, got %s", cfg.Logging.Level)
	}
}

func TestLoadWithKoanf_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 8800
ranking:
  min_rankable: 4
security:
  cors_origins:
    - "https://aux.party"
    - "https://beta.aux.party"
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 8800 {
		t.Errorf("expected port 8800 from file, got %d", cfg.Server.Port)
	}
	if cfg.Ranking.MinRankable != 4 {
		t.Errorf("expected min_rankable 4 from file, got %d", cfg.Ranking.MinRankable)
	}
	if len(cfg.Security.CORSOrigins) != 2 {
		t.Errorf("expected 2 CORS origins from file, got %v", cfg.Security.CORSOrigins)
	}
	// Unset fields keep defaults
	if cfg.Recommend.SeedLimit != 5 {
		t.Errorf("expected default seed_limit 5, got %d", cfg.Recommend.SeedLimit)
	}
}

func TestLoadWithKoanf_CommaSeparatedCORS(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://aux.party, https://beta.aux.party")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if len(cfg.Security.CORSOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.Security.CORSOrigins)
	}
	if cfg.Security.CORSOrigins[1] != "https://beta.aux.party" {
		t.Errorf("expected trimmed origin, got %q", cfg.Security.CORSOrigins[1])
	}
}

func TestEnvTransformFunc_UnknownKeysSkipped(t *testing.T) {
	if got := envTransformFunc("PATH"); got != "" {
		t.Errorf("expected unmapped env var to be skipped, got %q", got)
	}
	if got := envTransformFunc("HTTP_PORT"); got != "server.port" {
		t.Errorf("expected server.port, got %q", got)
	}
}

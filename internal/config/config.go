// Baraka - Campaign Recommendation Engine for Donation Platforms
// Copyright 2026 Baraka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/baraka-giving/baraka

// Package config loads and validates the Baraka service configuration.
//
// Configuration is layered: built-in defaults, then an optional YAML file,
// then environment variables. See LoadWithKoanf.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config is the root configuration for the Baraka service.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Embed    EmbedConfig    `koanf:"embed"`
	Engine   EngineConfig   `koanf:"engine"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`

	// Environment is "development" or "production".
	Environment string `koanf:"environment"`

	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB thread count. 0 = use runtime.NumCPU().
	Threads int `koanf:"threads"`

	// SeedMockData populates the database with sample campaigns and
	// donations on startup. Development only.
	SeedMockData bool `koanf:"seed_mock_data"`
}

// EmbedConfig holds settings for the embedding service client.
// When Enabled is false, or the service is unreachable, every
// recommendation path falls back to rule-based scoring.
type EmbedConfig struct {
	Enabled       bool          `koanf:"enabled"`
	URL           string        `koanf:"url"`
	PrimaryModel  string        `koanf:"primary_model"`
	FallbackModel string        `koanf:"fallback_model"`
	Timeout       time.Duration `koanf:"timeout"`

	// Circuit breaker: after BreakerMaxFailures consecutive failures the
	// breaker opens for BreakerOpenTimeout before allowing a probe.
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerOpenTimeout time.Duration `koanf:"breaker_open_timeout"`
}

// EngineConfig holds runtime knobs for the recommendation engine.
// Scoring constants live in the recommend package's own config.
type EngineConfig struct {
	// RefreshInterval is the maximum snapshot age before a lazy rebuild.
	RefreshInterval time.Duration `koanf:"refresh_interval"`

	DefaultTopN int `koanf:"default_top_n"`
	MaxTopN     int `koanf:"max_top_n"`

	TrendingDefaultDays int `koanf:"trending_default_days"`
	TrendingMaxTopN     int `koanf:"trending_max_top_n"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateEmbed(); err != nil {
		return err
	}
	if err := c.validateEngine(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	if !c.Server.RateLimitDisabled {
		if c.Server.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive, got %d", c.Server.RateLimitReqs)
		}
		if c.Server.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", c.Server.RateLimitWindow)
		}
	}
	switch c.Server.Environment {
	case "development", "production":
	default:
		return fmt.Errorf("ENVIRONMENT must be development or production, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be non-negative, got %d", c.Database.Threads)
	}
	return nil
}

func (c *Config) validateEmbed() error {
	if !c.Embed.Enabled {
		return nil // embedding service is optional - rule-based paths cover everything
	}
	if c.Embed.URL == "" {
		return fmt.Errorf("EMBED_URL is required when EMBED_ENABLED=true")
	}
	if err := validateHTTPURL(c.Embed.URL); err != nil {
		return fmt.Errorf("EMBED_URL is invalid: %w", err)
	}
	if c.Embed.PrimaryModel == "" {
		return fmt.Errorf("EMBED_PRIMARY_MODEL is required when EMBED_ENABLED=true")
	}
	if c.Embed.Timeout <= 0 {
		return fmt.Errorf("EMBED_TIMEOUT must be positive, got %v", c.Embed.Timeout)
	}
	if c.Embed.BreakerMaxFailures < 1 {
		return fmt.Errorf("EMBED_BREAKER_MAX_FAILURES must be positive, got %d", c.Embed.BreakerMaxFailures)
	}
	if c.Embed.BreakerOpenTimeout <= 0 {
		return fmt.Errorf("EMBED_BREAKER_OPEN_TIMEOUT must be positive, got %v", c.Embed.BreakerOpenTimeout)
	}
	return nil
}

func (c *Config) validateEngine() error {
	if c.Engine.RefreshInterval <= 0 {
		return fmt.Errorf("ENGINE_REFRESH_INTERVAL must be positive, got %v", c.Engine.RefreshInterval)
	}
	if c.Engine.MaxTopN < 1 {
		return fmt.Errorf("ENGINE_MAX_TOP_N must be positive, got %d", c.Engine.MaxTopN)
	}
	if c.Engine.DefaultTopN < 1 || c.Engine.DefaultTopN > c.Engine.MaxTopN {
		return fmt.Errorf("ENGINE_DEFAULT_TOP_N must be between 1 and %d, got %d",
			c.Engine.MaxTopN, c.Engine.DefaultTopN)
	}
	if c.Engine.TrendingDefaultDays < 1 {
		return fmt.Errorf("ENGINE_TRENDING_DEFAULT_DAYS must be positive, got %d", c.Engine.TrendingDefaultDays)
	}
	if c.Engine.TrendingMaxTopN < 1 {
		return fmt.Errorf("ENGINE_TRENDING_MAX_TOP_N must be positive, got %d", c.Engine.TrendingMaxTopN)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, fatal, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// validateHTTPURL checks that a string is an absolute http(s) URL.
func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

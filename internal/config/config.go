// DataPulse - E-Commerce Order Analytics Dashboard Backend
// Copyright 2026 DataPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/datapulse/datapulse

// Package config loads and validates the DataPulse server configuration.
//
// Configuration is layered with koanf: built-in defaults, then an optional
// YAML config file, then DATAPULSE_* environment variables (highest
// priority). Example: DATAPULSE_SOURCE_URL overrides source.url.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration for the DataPulse server.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Source    SourceConfig    `koanf:"source"`
	Assistant AssistantConfig `koanf:"assistant"`
	Cache     CacheConfig     `koanf:"cache"`
	Refresh   RefreshConfig   `koanf:"refresh"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs" validate:"min=1"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// SourceConfig configures the published CSV order feed.
type SourceConfig struct {
	// URL is the HTTP location of the delimited-text export.
	URL string `koanf:"url" validate:"required,url"`

	// Timeout is the budget for one fetch, including body read.
	Timeout time.Duration `koanf:"timeout"`

	// MinFetchInterval throttles real refetches of the upstream feed.
	// Cache hits are not affected.
	MinFetchInterval time.Duration `koanf:"min_fetch_interval"`
}

// AssistantConfig configures the workflow-automation webhook behind the
// chat panel.
type AssistantConfig struct {
	WebhookURL string        `koanf:"webhook_url" validate:"required,url"`
	Timeout    time.Duration `koanf:"timeout"`

	// UserID is the fixed user identifier sent with every chat turn.
	UserID string `koanf:"user_id" validate:"required"`
}

// CacheConfig configures the persisted snapshot cache.
type CacheConfig struct {
	// Path is the BadgerDB directory. Empty selects in-memory mode
	// (used by tests; snapshots then do not survive restarts).
	Path string `koanf:"path"`

	// TTL is the age beyond which a cached snapshot is stale.
	TTL time.Duration `koanf:"ttl" validate:"min=1s"`
}

// RefreshConfig configures the periodic snapshot drivers.
type RefreshConfig struct {
	// Interval is the cadence of the non-forced refresh loop. Most ticks
	// are served from cache; only a stale cache triggers a refetch.
	Interval time.Duration `koanf:"interval" validate:"min=1s"`

	// JitterInterval is the cadence of the cosmetic liveliness pass that
	// nudges headline figures without refetching. Distinct from the real
	// refresh path.
	JitterInterval time.Duration `koanf:"jitter_interval"`

	// JitterEnabled toggles the liveliness pass.
	JitterEnabled bool `koanf:"jitter_enabled"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all defaults applied. Defaults are
// loaded first, then overridden by the config file and environment.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   300,
			RateLimitWindow: time.Minute,
		},
		Source: SourceConfig{
			URL:              "",
			Timeout:          30 * time.Second,
			MinFetchInterval: 5 * time.Second,
		},
		Assistant: AssistantConfig{
			WebhookURL: "",
			Timeout:    30 * time.Second,
			UserID:     "datapulse-user",
		},
		Cache: CacheConfig{
			Path: "/data/datapulse/cache",
			TTL:  5 * time.Minute,
		},
		Refresh: RefreshConfig{
			Interval:       30 * time.Second,
			JitterInterval: 10 * time.Second,
			JitterEnabled:  true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the configuration using go-playground/validator.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// DataPulse - E-Commerce Order Analytics Dashboard Backend
// Copyright 2026 DataPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/datapulse/datapulse

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// setRequiredEnv supplies the two URLs validation demands.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATAPULSE_SOURCE_URL", "https://example.com/export.csv")
	t.Setenv("DATAPULSE_ASSISTANT_WEBHOOK_URL", "https://example.com/webhook")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("cache ttl = %v", cfg.Cache.TTL)
	}
	if cfg.Refresh.Interval != 30*time.Second || cfg.Refresh.JitterInterval != 10*time.Second {
		t.Errorf("refresh config = %+v", cfg.Refresh)
	}
	if !cfg.Refresh.JitterEnabled {
		t.Error("jitter defaults on")
	}
	if cfg.Assistant.UserID != "datapulse-user" {
		t.Errorf("assistant user id = %q", cfg.Assistant.UserID)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATAPULSE_SERVER_PORT", "9090")
	t.Setenv("DATAPULSE_CACHE_TTL", "2m")
	t.Setenv("DATAPULSE_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Cache.TTL != 2*time.Minute {
		t.Errorf("cache ttl = %v", cfg.Cache.TTL)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
}

func TestLoadCORSOriginsFromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATAPULSE_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.Server.CORSOrigins) != len(want) {
		t.Fatalf("cors origins = %v", cfg.Server.CORSOrigins)
	}
	for i := range want {
		if cfg.Server.CORSOrigins[i] != want[i] {
			t.Errorf("cors[%d] = %q, want %q", i, cfg.Server.CORSOrigins[i], want[i])
		}
	}
}

func TestLoadConfigFile(t *testing.T) {
	setRequiredEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte("server:\n  port: 7070\nrefresh:\n  jitter_enabled: false\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Refresh.JitterEnabled {
		t.Error("jitter must be disabled by the file")
	}
}

func TestLoadRejectsMissingSourceURL(t *testing.T) {
	t.Setenv("DATAPULSE_ASSISTANT_WEBHOOK_URL", "https://example.com/webhook")
	t.Setenv("DATAPULSE_SOURCE_URL", "")

	if _, err := Load(); err == nil {
		t.Error("missing source url must fail validation")
	}
}

func TestLoadRejectsBadLevel(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATAPULSE_LOGGING_LEVEL", "verbose")

	if _, err := Load(); err == nil {
		t.Error("unknown log level must fail validation")
	}
}

func TestEnvTransform(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"DATAPULSE_SOURCE_URL", "source.url"},
		{"DATAPULSE_SERVER_RATE_LIMIT_REQS", "server.rate_limit_reqs"},
		{"DATAPULSE_CACHE_TTL", "cache.ttl"},
	}
	for _, tc := range cases {
		if got := envTransform(tc.in); got != tc.want {
			t.Errorf("envTransform(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Errorf("expected default poll interval 5s, got %s", cfg.PollInterval)
	}
	if cfg.Providers.RequestTimeout != 10*time.Second {
		t.Errorf("expected default provider timeout 10s, got %s", cfg.Providers.RequestTimeout)
	}
	if cfg.Providers.RapidAPIHost == "" {
		t.Error("expected a default RapidAPI host")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("PRICE_POLL_INTERVAL_SEC", "30")
	t.Setenv("RAPIDAPI_KEY", "test-key")

	cfg := Load()

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.PollInterval != 30*time.Second {
		t.Errorf("expected poll interval 30s, got %s", cfg.PollInterval)
	}
	if cfg.Providers.RapidAPIKey != "test-key" {
		t.Errorf("expected RapidAPI key override, got %q", cfg.Providers.RapidAPIKey)
	}
}

func TestGetDurationRejectsGarbage(t *testing.T) {
	t.Setenv("PRICE_POLL_INTERVAL_SEC", "not-a-number")
	if got := getDuration("PRICE_POLL_INTERVAL_SEC", 5*time.Second); got != 5*time.Second {
		t.Errorf("expected fallback 5s, got %s", got)
	}

	t.Setenv("PRICE_POLL_INTERVAL_SEC", "-3")
	if got := getDuration("PRICE_POLL_INTERVAL_SEC", 5*time.Second); got != 5*time.Second {
		t.Errorf("expected fallback 5s for negative value, got %s", got)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Matchmaking.WaitTimeoutDuration() != 5*time.Minute {
		t.Errorf("expected default wait timeout 5m, got %s", cfg.Matchmaking.WaitTimeoutDuration())
	}
	if cfg.Matchmaking.ChannelDurationDuration() != 10*time.Minute {
		t.Errorf("expected default channel duration 10m, got %s", cfg.Matchmaking.ChannelDurationDuration())
	}
}

func TestLoadFromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9090
agora:
  app_id: test-app
  app_certificate: test-cert
matchmaking:
  wait_timeout: 120
  sweep_interval: 30
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Agora.AppID != "test-app" {
		t.Errorf("expected app id test-app, got %q", cfg.Agora.AppID)
	}
	if cfg.Matchmaking.WaitTimeoutDuration() != 2*time.Minute {
		t.Errorf("expected wait timeout 2m, got %s", cfg.Matchmaking.WaitTimeoutDuration())
	}
	// Unset fields keep defaults.
	if cfg.Matchmaking.ChannelDurationDuration() != 10*time.Minute {
		t.Errorf("expected default channel duration, got %s", cfg.Matchmaking.ChannelDurationDuration())
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PAIRLINE_PORT", "3000")
	t.Setenv("PAIRLINE_AGORA_APP_ID", "env-app")
	t.Setenv("PAIRLINE_LOG_FORMAT", "json")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("expected env port 3000, got %d", cfg.Server.Port)
	}
	if cfg.Agora.AppID != "env-app" {
		t.Errorf("expected env app id, got %q", cfg.Agora.AppID)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected json log format, got %q", cfg.Logging.Format)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"empty address", func(c *Config) { c.Server.Address = "" }},
		{"negative rpm", func(c *Config) { c.Server.RateLimitRPM = -1 }},
		{"zero wait timeout", func(c *Config) { c.Matchmaking.WaitTimeout = 0 }},
		{"zero sweep interval", func(c *Config) { c.Matchmaking.SweepInterval = 0 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error for %s", tc.name)
			}
		})
	}
}

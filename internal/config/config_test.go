package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const validYAML = `
instance:
  id: test-engine
venues:
  - name: kalshi
    url: wss://demo-api.kalshi.co/trade-api/ws/v2
    channels: [ticker, trade]
engine:
  strategies:
    - name: sma_cross
      priority: 10
      fast: 5
      slow: 20
      quantity: 10
database:
  host: localhost
  name: test_db
  user: testuser
  password: testpass
`

func TestLoad(t *testing.T) {
	path := writeTempFile(t, validYAML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Instance.ID != "test-engine" {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "test-engine")
	}
	if len(cfg.Venues) != 1 {
		t.Fatalf("len(Venues) = %d, want 1", len(cfg.Venues))
	}
	if cfg.Venues[0].Name != "kalshi" {
		t.Errorf("Venues[0].Name = %q, want %q", cfg.Venues[0].Name, "kalshi")
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("Database.Host = %q, want %q", cfg.Database.Host, "localhost")
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_VENUE_KEY", "secret123")

	yaml := `
instance:
  id: test-engine
venues:
  - name: kalshi
    url: wss://example.com/ws
    api_key: ${TEST_VENUE_KEY}
engine:
  strategies:
    - name: sma_cross
database:
  host: localhost
  name: test_db
  user: testuser
  password: testpass
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Venues[0].APIKey != "secret123" {
		t.Errorf("APIKey = %q, want %q", cfg.Venues[0].APIKey, "secret123")
	}
}

func TestDefaults(t *testing.T) {
	path := writeTempFile(t, validYAML)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Router.Shards != DefaultShards {
		t.Errorf("Router.Shards = %d, want %d", cfg.Router.Shards, DefaultShards)
	}
	if cfg.Router.FastRingSize != DefaultFastRingSize {
		t.Errorf("Router.FastRingSize = %d, want %d", cfg.Router.FastRingSize, DefaultFastRingSize)
	}
	if cfg.Coordinator.Window != DefaultCoordinatorWindow {
		t.Errorf("Coordinator.Window = %v, want %v", cfg.Coordinator.Window, DefaultCoordinatorWindow)
	}
	if cfg.Gateway.Mode != "simulation" {
		t.Errorf("Gateway.Mode = %q, want simulation", cfg.Gateway.Mode)
	}
	if cfg.Ingest.ReconnectMaxDelay != 60*time.Second {
		t.Errorf("ReconnectMaxDelay = %v, want 60s", cfg.Ingest.ReconnectMaxDelay)
	}
	if cfg.Venues[0].Connections != 1 {
		t.Errorf("Venues[0].Connections = %d, want 1", cfg.Venues[0].Connections)
	}
	if cfg.Database.Port != DefaultDBPort {
		t.Errorf("Database.Port = %d, want %d", cfg.Database.Port, DefaultDBPort)
	}
}

func TestValidate(t *testing.T) {
	path := writeTempFile(t, validYAML)

	if _, err := LoadAndValidate(path); err != nil {
		t.Fatalf("LoadAndValidate failed: %v", err)
	}
}

func TestValidateFailures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing instance id", func(c *Config) { c.Instance.ID = "" }},
		{"no venues", func(c *Config) { c.Venues = nil }},
		{"venue missing url", func(c *Config) { c.Venues[0].URL = "" }},
		{"zero shards", func(c *Config) { c.Router.Shards = 0 }},
		{"no strategies", func(c *Config) { c.Engine.Strategies = nil }},
		{"bad gateway mode", func(c *Config) { c.Gateway.Mode = "paper" }},
		{"zero window", func(c *Config) { c.Coordinator.Window = 0 }},
		{"missing db host", func(c *Config) { c.Database.Host = "" }},
		{"min conns above max", func(c *Config) { c.Database.MinConns = 99 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeTempFile(t, validYAML)
			cfg, err := LoadWithDefaults(path)
			if err != nil {
				t.Fatalf("LoadWithDefaults failed: %v", err)
			}
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

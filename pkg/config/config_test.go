package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default configuration should validate: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero workers", func(c *Config) { c.Performance.MaxWorkers = 0 }},
		{"tiny buffer", func(c *Config) { c.Performance.BufferSize = 100 }},
		{"zero threshold", func(c *Config) { c.Sync.LargeChangeThreshold = 0 }},
		{"unknown backend", func(c *Config) { c.State.Backend = "redis" }},
		{"unknown format", func(c *Config) { c.Output.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	dir, err := os.MkdirTemp("", "artifactsync-config-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	cfg := Default()
	cfg.Sync.LargeChangeThreshold = 50
	cfg.Sync.RequireBase = true
	cfg.State.Backend = "sqlite"
	cfg.Ignore = []string{"*.bak"}

	path := filepath.Join(dir, "config.yaml")
	if err := SaveToFile(cfg, path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if loaded.Sync.LargeChangeThreshold != 50 {
		t.Errorf("LargeChangeThreshold = %d, want 50", loaded.Sync.LargeChangeThreshold)
	}
	if !loaded.Sync.RequireBase {
		t.Error("RequireBase flag lost in round trip")
	}
	if loaded.State.Backend != "sqlite" {
		t.Errorf("Backend = %s, want sqlite", loaded.State.Backend)
	}
	if len(loaded.Ignore) != 1 || loaded.Ignore[0] != "*.bak" {
		t.Errorf("Ignore = %v, want [*.bak]", loaded.Ignore)
	}
}

func TestLoadFromFilePartial(t *testing.T) {
	dir, err := os.MkdirTemp("", "artifactsync-config-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	// Unset keys keep their defaults.
	path := filepath.Join(dir, "config.yaml")
	partial := "sync:\n  large_change_threshold: 7\n"
	if err := os.WriteFile(path, []byte(partial), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if cfg.Sync.LargeChangeThreshold != 7 {
		t.Errorf("LargeChangeThreshold = %d, want 7", cfg.Sync.LargeChangeThreshold)
	}
	if cfg.Performance.MaxWorkers != Default().Performance.MaxWorkers {
		t.Errorf("MaxWorkers = %d, want default", cfg.Performance.MaxWorkers)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	dir, err := os.MkdirTemp("", "artifactsync-config-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("state:\n  backend: redis\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := LoadFromFile(path); err == nil {
		t.Error("invalid backend should fail to load")
	}
}

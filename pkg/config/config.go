package config

import (
	"github.com/sdejongh/artifactsync/pkg/hash"
	"github.com/sdejongh/artifactsync/pkg/models"
	"github.com/sdejongh/artifactsync/pkg/sync"
	"github.com/sdejongh/artifactsync/pkg/tree"
)

// Config represents the application configuration
type Config struct {
	Diff        DiffConfig        `yaml:"diff"`
	Sync        SyncConfig        `yaml:"sync"`
	Performance PerformanceConfig `yaml:"performance"`
	State       StateConfig       `yaml:"state"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
	Ignore      []string          `yaml:"ignore"`
}

// DiffConfig holds diff-related settings
type DiffConfig struct {
	// Context is reserved for future context-size tuning; diffs currently
	// always use three context lines.
	Context int `yaml:"context"`
}

// SyncConfig holds sync-related settings
type SyncConfig struct {
	// LargeChangeThreshold routes changesets above this many files to
	// manual review
	LargeChangeThreshold int `yaml:"large_change_threshold"`

	// RequireBase refuses degraded-mode merges when no ancestor snapshot
	// is tracked
	RequireBase bool `yaml:"require_base"`
}

// PerformanceConfig holds performance-related settings
type PerformanceConfig struct {
	MaxWorkers     int   `yaml:"max_workers"`
	BufferSize     int   `yaml:"buffer_size"`
	BandwidthLimit int64 `yaml:"bandwidth_limit"`

	// HashCacheSize bounds the file-hash cache; 0 disables caching
	HashCacheSize int `yaml:"hash_cache_size"`
}

// StateConfig selects the deployment-record store
type StateConfig struct {
	// Backend is "file" or "sqlite"
	Backend string `yaml:"backend"`

	// Path is the state file or database path; empty uses the platform
	// default
	Path string `yaml:"path"`
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "human" or "json"
	Progress bool   `yaml:"progress"` // Show progress bars
	Color    bool   `yaml:"color"`    // Colorize human output
	Quiet    bool   `yaml:"quiet"`    // Suppress non-error output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Format  string `yaml:"format"` // "json" or "text"
	Level   string `yaml:"level"`  // "debug", "info", "warn", "error"
	File    string `yaml:"file"`   // Log file path (empty = stderr)
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Sync: SyncConfig{
			LargeChangeThreshold: sync.DefaultLargeChangeThreshold,
		},
		Performance: PerformanceConfig{
			MaxWorkers:     tree.DefaultMaxWorkers,
			BufferSize:     65536,
			BandwidthLimit: 0,
			HashCacheSize:  hash.DefaultCacheSize,
		},
		State: StateConfig{
			Backend: "file",
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: true,
			Color:    true,
		},
		Logging: LoggingConfig{
			Enabled: true,
			Format:  "json",
			Level:   "info",
		},
		Ignore: tree.DefaultIgnores,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Performance.MaxWorkers < 1 {
		return &models.ValidationError{
			Field:   "performance.max_workers",
			Message: "must be at least 1",
		}
	}
	if c.Performance.BufferSize < 1024 {
		return &models.ValidationError{
			Field:   "performance.buffer_size",
			Message: "must be at least 1024 bytes",
		}
	}
	if c.Performance.HashCacheSize < 0 {
		return &models.ValidationError{
			Field:   "performance.hash_cache_size",
			Message: "must not be negative",
		}
	}
	if c.Sync.LargeChangeThreshold < 1 {
		return &models.ValidationError{
			Field:   "sync.large_change_threshold",
			Message: "must be at least 1",
		}
	}
	switch c.State.Backend {
	case "file", "sqlite":
	default:
		return &models.ValidationError{
			Field:   "state.backend",
			Message: "must be \"file\" or \"sqlite\"",
		}
	}
	switch c.Output.Format {
	case "human", "json":
	default:
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be \"human\" or \"json\"",
		}
	}
	return nil
}

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/sdejongh/artifactsync/internal/platform"
	"github.com/sdejongh/artifactsync/pkg/compare"
	"github.com/sdejongh/artifactsync/pkg/config"
	"github.com/sdejongh/artifactsync/pkg/hash"
	"github.com/sdejongh/artifactsync/pkg/logging"
	"github.com/sdejongh/artifactsync/pkg/merge"
	"github.com/sdejongh/artifactsync/pkg/output"
	"github.com/sdejongh/artifactsync/pkg/ratelimit"
	"github.com/sdejongh/artifactsync/pkg/snapshot"
	"github.com/sdejongh/artifactsync/pkg/state"
	"github.com/sdejongh/artifactsync/pkg/sync"
	"github.com/sdejongh/artifactsync/pkg/tree"
)

// engine bundles the wired components behind the CLI commands
type engine struct {
	cfg         *config.Config
	hasher      *hash.SHA256Hasher
	comparator  *compare.FileComparator
	matcher     *tree.Matcher
	differ      *tree.Differ
	classifier  *merge.Classifier
	executor    *merge.Executor
	detector    *sync.Detector
	coordinator *sync.Coordinator
	store       state.Store
	logger      logging.Logger
	formatter   output.Formatter
}

// loadConfig resolves the configuration from the --config flag or defaults
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// newEngine wires the full engine from configuration. extraIgnores extend
// the configured ignore patterns for this invocation.
func newEngine(cfg *config.Config, extraIgnores []string) (*engine, error) {
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	hasher := hash.NewSHA256Hasher(cfg.Performance.BufferSize)
	if limiter := ratelimit.NewLimiter(cfg.Performance.BandwidthLimit); limiter != nil {
		hasher.SetReaderWrapper(func(r io.Reader) io.Reader {
			return ratelimit.NewReader(r, limiter)
		})
	}

	patterns := append(append([]string{}, cfg.Ignore...), extraIgnores...)
	matcher := tree.NewMatcher(patterns...)

	// Drift checks re-hash unchanged trees constantly; memoize by size+mtime.
	var treeHasher hash.Hasher = hasher
	if cfg.Performance.HashCacheSize > 0 {
		cache := hash.NewCache(cfg.Performance.HashCacheSize, hash.DefaultCacheTTL)
		treeHasher = hash.NewCachedHasher(hasher, cache)
	}

	comparator := compare.NewFileComparator(treeHasher)
	differ := tree.NewDiffer(comparator, matcher, cfg.Performance.MaxWorkers)
	classifier := merge.NewClassifier(treeHasher, matcher)
	executor := merge.NewExecutor(snapshot.NewDirSnapshotter())
	detector := sync.NewDetector(treeHasher, matcher)

	store, err := newStore(cfg)
	if err != nil {
		logger.Close()
		return nil, err
	}

	coordinator := sync.NewCoordinator(differ, classifier, executor, detector, store, treeHasher, matcher, logger)
	coordinator.LargeChangeThreshold = cfg.Sync.LargeChangeThreshold

	return &engine{
		cfg:         cfg,
		hasher:      hasher,
		comparator:  comparator,
		matcher:     matcher,
		differ:      differ,
		classifier:  classifier,
		executor:    executor,
		detector:    detector,
		coordinator: coordinator,
		store:       store,
		logger:      logger,
		formatter:   output.New(cfg.Output.Format, cfg.Output.Color),
	}, nil
}

// Close releases the engine's resources
func (e *engine) Close() {
	if e.store != nil {
		e.store.Close()
	}
	if e.logger != nil {
		e.logger.Close()
	}
}

// progress creates a progress display honoring quiet mode and config
func (e *engine) progress() *output.Progress {
	enabled := e.cfg.Output.Progress && !globalFlags.Quiet && e.cfg.Output.Format == "human"
	return output.NewProgress(enabled)
}

func newLogger(cfg *config.Config) (logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NewNullLogger(), nil
	}

	format := logging.FormatJSON
	if cfg.Logging.Format == "text" {
		format = logging.FormatText
	}
	level := logging.ParseLevel(cfg.Logging.Level)
	if globalFlags.Verbose {
		level = logging.DebugLevel
	}

	if cfg.Logging.File != "" {
		return logging.NewFileLogger(cfg.Logging.File, format, level)
	}
	return logging.NewWriterLogger(os.Stderr, format, level), nil
}

func newStore(cfg *config.Config) (state.Store, error) {
	switch cfg.State.Backend {
	case "sqlite":
		path := cfg.State.Path
		if path == "" {
			var err error
			if path, err = platform.DefaultStatePath("deployments.db"); err != nil {
				return nil, err
			}
		}
		return state.NewSQLiteStore(path)
	case "file":
		path := cfg.State.Path
		if path == "" {
			var err error
			if path, err = platform.DefaultStatePath("deployments.json"); err != nil {
				return nil, err
			}
		}
		return state.NewFileStore(path)
	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.State.Backend)
	}
}

package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sdejongh/artifactsync/internal/platform"
	"github.com/sdejongh/artifactsync/pkg/models"
	"github.com/sdejongh/artifactsync/pkg/state"
	"github.com/sdejongh/artifactsync/pkg/sync"
	"github.com/sdejongh/artifactsync/pkg/tree"
)

// SyncFlags holds the artifact selection flags shared by sync subcommands
type SyncFlags struct {
	Artifact          string
	Project           string
	Collection        string
	Base              string
	CollectionVersion string
	Ignore            []string
	Format            string
}

var syncFlags SyncFlags

// NewSyncCommand creates the sync command
func NewSyncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Track and reconcile deployed artifact copies",
		Long: `Track artifacts deployed from a collection into projects and reconcile
divergence between the deployed copy and the collection copy.

register records the current deployed state; check reports drift and
pending updates from hashes alone; preview adds a full diff and conflict
classification; pull merges collection changes into the project copy;
push merges project changes back into the collection.`,
	}

	cmd.PersistentFlags().StringVarP(&syncFlags.Artifact, "artifact", "a", "", "artifact identifier (required)")
	cmd.PersistentFlags().StringVarP(&syncFlags.Project, "project", "p", "", "deployed project copy (required)")
	cmd.PersistentFlags().StringVarP(&syncFlags.Collection, "collection", "c", "", "canonical collection copy")
	cmd.PersistentFlags().StringVar(&syncFlags.Base, "base", "", "ancestor snapshot recorded at deploy time")
	cmd.PersistentFlags().StringVar(&syncFlags.CollectionVersion, "collection-version", "", "current collection version")
	cmd.PersistentFlags().StringSliceVar(&syncFlags.Ignore, "ignore", nil, "additional glob patterns to ignore")
	cmd.PersistentFlags().StringVar(&syncFlags.Format, "format", "", "output format: human, json (default from config)")

	cmd.AddCommand(newSyncRegisterCommand())
	cmd.AddCommand(newSyncCheckCommand())
	cmd.AddCommand(newSyncPreviewCommand())
	cmd.AddCommand(newSyncPullCommand())
	cmd.AddCommand(newSyncPushCommand())

	return cmd
}

// artifact assembles the artifact description from flags
func artifact() (sync.Artifact, error) {
	for _, path := range []string{syncFlags.Project, syncFlags.Collection, syncFlags.Base} {
		if path == "" {
			continue
		}
		if err := platform.ValidatePath(path); err != nil {
			return sync.Artifact{}, err
		}
	}

	art := sync.Artifact{
		ID:                syncFlags.Artifact,
		CollectionVersion: syncFlags.CollectionVersion,
	}
	// Cleaning an empty path would turn it into ".", hiding a missing flag
	// from validation.
	if syncFlags.Project != "" {
		art.ProjectPath = platform.NormalizePath(syncFlags.Project)
	}
	if syncFlags.Collection != "" {
		art.CollectionPath = platform.NormalizePath(syncFlags.Collection)
	}
	if syncFlags.Base != "" {
		art.BasePath = platform.NormalizePath(syncFlags.Base)
	}
	return art, nil
}

// syncEngine loads config and wires the engine for a sync subcommand
func syncEngine() (*engine, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if syncFlags.Format != "" {
		cfg.Output.Format = syncFlags.Format
	}
	return newEngine(cfg, syncFlags.Ignore)
}

func newSyncRegisterCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Record the deployed state of an artifact",
		Long: `Record the project copy's current content hash as the deployed state.
Run once after deploying an artifact; check, pull and push compare
against this record.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if syncFlags.Artifact == "" || syncFlags.Project == "" {
				return errors.New("--artifact and --project are required")
			}

			eng, err := syncEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			ctx := cmd.Context()

			deployedHash, err := tree.Hash(ctx, syncFlags.Project, eng.matcher, eng.hasher)
			if err != nil {
				return fmt.Errorf("failed to hash project copy: %w", err)
			}

			record := &models.DeployedArtifactRecord{
				ArtifactID:      syncFlags.Artifact,
				DeployedHash:    deployedHash,
				DeployedVersion: syncFlags.CollectionVersion,
				DeployedAt:      time.Now(),
			}
			if err := eng.store.Save(ctx, record); err != nil {
				return fmt.Errorf("failed to save deployment record: %w", err)
			}

			if !globalFlags.Quiet {
				fmt.Printf("Registered %s (%s)\n", record.ArtifactID, record.DeployedHash[:12])
			}
			return nil
		},
	}
}

func newSyncCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report drift and update state from hashes alone",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := syncEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			art, err := artifact()
			if err != nil {
				return err
			}

			status, err := eng.coordinator.Check(cmd.Context(), art)
			if err != nil {
				return describeMissingRecord(err)
			}

			if !globalFlags.Quiet {
				if err := eng.formatter.SyncStatus(os.Stdout, status); err != nil {
					return err
				}
			}

			if !status.InSync() {
				os.Exit(1)
			}
			return nil
		},
	}
}

func newSyncPreviewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Show the full diff and merge classification without writing",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := syncEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			art, err := artifact()
			if err != nil {
				return err
			}

			preview, err := eng.coordinator.Preview(cmd.Context(), art)
			if err != nil {
				return describeMissingRecord(err)
			}

			if !globalFlags.Quiet {
				if err := eng.formatter.SyncStatus(os.Stdout, preview.Status); err != nil {
					return err
				}
				if err := eng.formatter.DiffResult(os.Stdout, preview.Diff, globalFlags.Verbose); err != nil {
					return err
				}
			}

			if preview.ThreeWay.HasConflicts() {
				os.Exit(2)
			}
			if preview.Status != nil && !preview.Status.InSync() {
				os.Exit(1)
			}
			return nil
		},
	}
}

func newSyncPullCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Merge collection changes into the project copy",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSyncMerge(cmd, false)
		},
	}
}

func newSyncPushCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Merge project changes back into the collection copy",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSyncMerge(cmd, true)
		},
	}
}

func runSyncMerge(cmd *cobra.Command, push bool) error {
	eng, err := syncEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	art, err := artifact()
	if err != nil {
		return err
	}
	if eng.cfg.Sync.RequireBase && !art.HasBase() {
		return errors.New("no ancestor snapshot given and sync.require_base is set")
	}

	ctx := cmd.Context()
	var result *models.MergeResult
	if push {
		result, err = eng.coordinator.Push(ctx, art)
	} else {
		result, err = eng.coordinator.Pull(ctx, art)
	}
	if err != nil {
		if result != nil && result.RolledBack {
			fmt.Fprintln(os.Stderr, "merge failed; output tree restored from snapshot")
		}
		return describeMissingRecord(err)
	}

	if !globalFlags.Quiet {
		if err := eng.formatter.MergeResult(os.Stdout, result); err != nil {
			return err
		}
	}

	os.Exit(result.ExitCode())
	return nil
}

// describeMissingRecord turns a bare not-found error into a hint to run
// sync register first.
func describeMissingRecord(err error) error {
	if errors.Is(err, state.ErrRecordNotFound) {
		return fmt.Errorf("%w; run 'artifactsync sync register' after deploying", err)
	}
	return err
}

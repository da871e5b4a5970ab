package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdejongh/artifactsync/pkg/logging"
	"github.com/sdejongh/artifactsync/pkg/merge"
)

// MergeFlags holds merge command flags
type MergeFlags struct {
	Base   string
	Local  string
	Remote string
	Output string
	Ignore []string
	Format string
	DryRun bool
}

var mergeFlags MergeFlags

// NewMergeCommand creates the merge command
func NewMergeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Three-way merge of two directory trees",
		Long: `Merge local and remote directory trees using a common ancestor snapshot.
Files changed on only one side merge automatically; files changed on both
sides are written with git-style conflict markers for manual resolution.

Without --base the local tree stands in for the ancestor, which degrades
conflict detection to plain diff fidelity.`,
		RunE: runMerge,
	}

	cmd.Flags().StringVar(&mergeFlags.Base, "base", "", "ancestor snapshot directory")
	cmd.Flags().StringVarP(&mergeFlags.Local, "local", "l", "", "local tree (required)")
	cmd.Flags().StringVarP(&mergeFlags.Remote, "remote", "r", "", "remote tree (required)")
	cmd.Flags().StringVarP(&mergeFlags.Output, "output", "o", "", "output tree (default: the local tree)")
	cmd.Flags().StringSliceVar(&mergeFlags.Ignore, "ignore", nil, "additional glob patterns to ignore")
	cmd.Flags().StringVar(&mergeFlags.Format, "format", "", "output format: human, json (default from config)")
	cmd.Flags().BoolVar(&mergeFlags.DryRun, "dry-run", false, "classify only, don't write anything")
	cmd.MarkFlagRequired("local")
	cmd.MarkFlagRequired("remote")

	return cmd
}

func runMerge(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if mergeFlags.Format != "" {
		cfg.Output.Format = mergeFlags.Format
	}

	eng, err := newEngine(cfg, mergeFlags.Ignore)
	if err != nil {
		return err
	}
	defer eng.Close()

	ctx := cmd.Context()

	base := mergeFlags.Base
	fallback := base == ""
	if fallback {
		if cfg.Sync.RequireBase {
			return errors.New("no ancestor snapshot given and sync.require_base is set")
		}
		base = mergeFlags.Local
		eng.logger.Warn(ctx, "no ancestor snapshot; conflict detection degraded to diff fidelity", nil)
	}

	output := mergeFlags.Output
	if output == "" {
		output = mergeFlags.Local
	}

	threeWay, err := eng.classifier.Classify(ctx, base, mergeFlags.Local, mergeFlags.Remote,
		merge.ClassifyOptions{BaseFallback: fallback})
	if err != nil {
		return err
	}
	for _, fe := range threeWay.Errors {
		eng.logger.Warn(ctx, "file skipped: unreadable during classification",
			logging.Fields{"path": fe.Path, "error": fe.Message})
	}

	if mergeFlags.DryRun {
		if !globalFlags.Quiet {
			fmt.Printf("Auto-mergeable: %d\n", len(threeWay.AutoMergeable))
			fmt.Printf("Conflicts:      %d\n", len(threeWay.Conflicts))
			for _, c := range threeWay.Conflicts {
				fmt.Printf("  %s (%s)\n", c.Path, c.Kind)
			}
			if len(threeWay.Errors) > 0 {
				fmt.Printf("Unreadable:     %d\n", len(threeWay.Errors))
				for _, fe := range threeWay.Errors {
					fmt.Printf("  %s: %s\n", fe.Path, fe.Message)
				}
			}
		}
		if threeWay.HasConflicts() {
			os.Exit(2)
		}
		return nil
	}

	result, err := eng.executor.Apply(ctx, threeWay, base, mergeFlags.Local, mergeFlags.Remote, output)
	if err != nil {
		return err
	}

	if !globalFlags.Quiet {
		if err := eng.formatter.MergeResult(os.Stdout, result); err != nil {
			return err
		}
	}

	os.Exit(result.ExitCode())
	return nil
}

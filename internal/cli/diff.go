package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdejongh/artifactsync/pkg/models"
)

// DiffFlags holds diff command flags
type DiffFlags struct {
	Ignore []string
	Output string
	Report string
}

var diffFlags DiffFlags

// NewDiffCommand creates the diff command
func NewDiffCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Compare two files or directory trees",
		Long: `Compare two files or two directory trees and report added, removed and
modified files with line-level unified diffs for text content.`,
		Args: cobra.ExactArgs(2),
		RunE: runDiff,
	}

	cmd.Flags().StringSliceVar(&diffFlags.Ignore, "ignore", nil, "additional glob patterns to ignore")
	cmd.Flags().StringVarP(&diffFlags.Output, "output", "o", "", "output format: human, json (default from config)")
	cmd.Flags().StringVar(&diffFlags.Report, "report", "", "write the unified diff report to a file")

	return cmd
}

func runDiff(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if diffFlags.Output != "" {
		cfg.Output.Format = diffFlags.Output
	}

	eng, err := newEngine(cfg, diffFlags.Ignore)
	if err != nil {
		return err
	}
	defer eng.Close()

	ctx := cmd.Context()

	oldInfo, err := os.Stat(args[0])
	if err != nil {
		return fmt.Errorf("failed to access %s: %w", args[0], err)
	}
	newInfo, err := os.Stat(args[1])
	if err != nil {
		return fmt.Errorf("failed to access %s: %w", args[1], err)
	}

	var result *models.DiffResult
	switch {
	case oldInfo.IsDir() && newInfo.IsDir():
		progress := eng.progress()
		result, err = eng.differ.DiffTreesWithProgress(ctx, args[0], args[1], progress.Update)
		progress.Finish()
		if err != nil {
			return err
		}
	case !oldInfo.IsDir() && !newInfo.IsDir():
		fileDiff, err := eng.comparator.Compare(ctx, newInfo.Name(), args[0], args[1])
		if err != nil {
			return err
		}
		result = &models.DiffResult{}
		result.Add(*fileDiff)
	default:
		return fmt.Errorf("cannot compare a file with a directory")
	}

	if diffFlags.Report != "" {
		if err := writeDiffReport(diffFlags.Report, result); err != nil {
			return err
		}
	}

	if !globalFlags.Quiet {
		if err := eng.formatter.DiffResult(os.Stdout, result, globalFlags.Verbose); err != nil {
			return err
		}
	}

	if result.HasChanges() {
		os.Exit(1)
	}
	return nil
}

// writeDiffReport writes every unified diff in the result to a file
func writeDiffReport(path string, result *models.DiffResult) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	for _, group := range [][]models.FileDiff{result.Added, result.Removed, result.Modified} {
		for _, d := range group {
			if d.UnifiedDiff != "" {
				if _, err := file.WriteString(d.UnifiedDiff); err != nil {
					return fmt.Errorf("failed to write report: %w", err)
				}
			}
		}
	}
	return nil
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdejongh/artifactsync/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:   "artifactsync",
		Short: "Diff, merge and sync engine for versioned artifact trees",
		Long: `artifactsync tracks artifacts deployed from a versioned collection into
projects and keeps the copies reconciled. It compares directory trees with
line-level diffs, performs three-way merges with git-style conflict
markers, and detects drift between deployed copies and their collection.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cli.AddGlobalFlags(rootCmd)

	rootCmd.AddCommand(cli.NewDiffCommand())
	rootCmd.AddCommand(cli.NewMergeCommand())
	rootCmd.AddCommand(cli.NewSyncCommand())
	rootCmd.AddCommand(cli.NewConfigCommand())
	rootCmd.AddCommand(cli.NewVersionCommand())

	return rootCmd.Execute()
}

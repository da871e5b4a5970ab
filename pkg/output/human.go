package output

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/sdejongh/artifactsync/pkg/models"
)

// HumanFormatter renders results for terminal consumption
type HumanFormatter struct {
	added    *color.Color
	removed  *color.Color
	modified *color.Color
	warn     *color.Color
}

// NewHumanFormatter creates a terminal formatter; colorize toggles ANSI
// colors regardless of terminal detection.
func NewHumanFormatter(colorize bool) *HumanFormatter {
	f := &HumanFormatter{
		added:    color.New(color.FgGreen),
		removed:  color.New(color.FgRed),
		modified: color.New(color.FgYellow),
		warn:     color.New(color.FgMagenta),
	}
	if !colorize {
		for _, c := range []*color.Color{f.added, f.removed, f.modified, f.warn} {
			c.DisableColor()
		}
	}
	return f
}

// DiffResult renders a tree comparison
func (f *HumanFormatter) DiffResult(w io.Writer, result *models.DiffResult, verbose bool) error {
	for _, d := range result.Added {
		f.added.Fprintf(w, "A  %s%s\n", d.Path, binaryTag(d.IsBinary))
	}
	for _, d := range result.Removed {
		f.removed.Fprintf(w, "D  %s%s\n", d.Path, binaryTag(d.IsBinary))
	}
	for _, d := range result.Modified {
		f.modified.Fprintf(w, "M  %s%s (+%d -%d)\n", d.Path, binaryTag(d.IsBinary), d.LinesAdded, d.LinesRemoved)
	}
	for _, e := range result.Errors {
		f.warn.Fprintf(w, "E  %s: %s\n", e.Path, e.Message)
	}

	if verbose {
		for _, d := range result.Modified {
			if d.UnifiedDiff != "" {
				fmt.Fprintln(w)
				fmt.Fprint(w, d.UnifiedDiff)
			}
		}
	}

	s := result.Stats
	fmt.Fprintf(w, "\n%d added, %d removed, %d modified, %d unchanged",
		s.FilesAdded, s.FilesRemoved, s.FilesModified, s.FilesUnchanged)
	if s.FilesErrored > 0 {
		fmt.Fprintf(w, ", %d errored", s.FilesErrored)
	}
	fmt.Fprintf(w, " (+%d -%d lines)\n", s.TotalLinesAdded, s.TotalLinesRemoved)

	return nil
}

// MergeResult renders a merge outcome
func (f *HumanFormatter) MergeResult(w io.Writer, result *models.MergeResult) error {
	for _, path := range result.AutoMerged {
		f.added.Fprintf(w, "merged    %s\n", path)
	}
	for _, c := range result.Conflicts {
		f.removed.Fprintf(w, "conflict  %s (%s)%s\n", c.Path, c.Kind, binaryTag(c.IsBinary))
	}

	if result.Success {
		fmt.Fprintf(w, "\nMerge complete: %d files merged, %d deleted, %d bytes written in %s\n",
			result.Stats.FilesMerged, result.Stats.FilesDeleted,
			result.Stats.BytesWritten, result.Stats.Duration.Round(time.Millisecond))
	} else {
		fmt.Fprintf(w, "\nMerge finished with %d conflicts (%d marker files written, %d binary left untouched)\n",
			len(result.Conflicts), result.Stats.ConflictsWritten, result.Stats.BinaryConflicts)
	}
	if result.RolledBack {
		f.warn.Fprintln(w, "Merge failed; the output tree was rolled back to its pre-merge state")
	}

	return nil
}

// SyncStatus renders a sync check
func (f *HumanFormatter) SyncStatus(w io.Writer, status *models.SyncStatus) error {
	fmt.Fprintf(w, "%s: %s\n", status.ArtifactID, status.State)
	fmt.Fprintf(w, "  drift:  %v\n", status.HasDrift)
	fmt.Fprintf(w, "  update: %v\n", status.HasUpdate)
	if status.Recommended != "" {
		fmt.Fprintf(w, "  recommended: %s\n", status.Recommended)
	}
	if status.ConflictKind != nil {
		f.warn.Fprintf(w, "  conflict kind: %s\n", *status.ConflictKind)
	}
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

func binaryTag(isBinary bool) string {
	if isBinary {
		return " [binary]"
	}
	return ""
}

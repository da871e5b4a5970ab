package output

import (
	"io"

	"github.com/sdejongh/artifactsync/pkg/models"
)

// Formatter renders engine results for the CLI surface.
// Implementations include human-readable and JSON formatters.
type Formatter interface {
	// DiffResult renders a tree comparison. verbose includes unified diffs.
	DiffResult(w io.Writer, result *models.DiffResult, verbose bool) error

	// MergeResult renders a merge outcome
	MergeResult(w io.Writer, result *models.MergeResult) error

	// SyncStatus renders a sync check
	SyncStatus(w io.Writer, status *models.SyncStatus) error

	// Name returns the formatter name
	Name() string
}

// New returns the formatter for the given format name
func New(format string, color bool) Formatter {
	if format == "json" {
		return NewJSONFormatter()
	}
	return NewHumanFormatter(color)
}

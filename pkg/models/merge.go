package models

import (
	"time"
)

// MergeStats holds merge operation metrics
type MergeStats struct {
	// FilesMerged is the number of auto-mergeable files applied
	FilesMerged int

	// FilesDeleted is the number of deletion resolutions applied
	FilesDeleted int

	// ConflictsWritten is the number of conflict-marker files written
	ConflictsWritten int

	// BinaryConflicts is the number of binary conflicts left untouched
	BinaryConflicts int

	// BytesWritten is the total payload published to the output tree
	BytesWritten int64

	// Duration is the wall-clock time of the apply
	Duration time.Duration
}

// MergeResult is the outcome of applying a three-way classification to an
// output tree. Success means every classified file was auto-merged.
type MergeResult struct {
	// OperationID uniquely identifies this merge
	OperationID string

	// Success is true when no conflicts remain
	Success bool

	// AutoMerged lists the paths applied automatically, ordered by path
	AutoMerged []string

	// Conflicts lists the files left for manual resolution, ordered by path
	Conflicts []ConflictMetadata

	// Stats summarizes the operation
	Stats MergeStats

	// OutputRoot is the tree the merge was applied to
	OutputRoot string

	// RolledBack is true when a failure triggered snapshot restoration
	RolledBack bool
}

// ExitCode returns the process exit code for a merge outcome
func (r *MergeResult) ExitCode() int {
	if r.Success {
		return 0
	}
	return 1
}

package models

import (
	"sort"
)

// FileStatus classifies how a file changed between two trees
type FileStatus string

const (
	// StatusAdded indicates the file exists only in the new tree
	StatusAdded FileStatus = "added"
	// StatusRemoved indicates the file exists only in the old tree
	StatusRemoved FileStatus = "removed"
	// StatusModified indicates the file exists in both trees with different content
	StatusModified FileStatus = "modified"
	// StatusUnchanged indicates the file content is identical in both trees
	StatusUnchanged FileStatus = "unchanged"
)

// FileDiff holds the result of comparing one file pair.
//
// Invariants: a binary file never carries a unified diff, and an unchanged
// file never carries line counts.
type FileDiff struct {
	// Path is the path relative to the compared roots
	Path string

	// Status classifies the change
	Status FileStatus

	// IsBinary indicates binary content on at least one side
	IsBinary bool

	// LinesAdded is the number of lines added (text files only)
	LinesAdded int

	// LinesRemoved is the number of lines removed (text files only)
	LinesRemoved int

	// UnifiedDiff is the unified-diff rendering, empty for binary or
	// unchanged files
	UnifiedDiff string
}

// FileError records a file that could not be compared during a tree scan.
// Scans continue past these; they are data, not failures.
type FileError struct {
	Path    string
	Message string
}

// DiffStats summarizes a tree comparison
type DiffStats struct {
	FilesAdded        int
	FilesRemoved      int
	FilesModified     int
	FilesUnchanged    int
	FilesErrored      int
	TotalLinesAdded   int
	TotalLinesRemoved int
}

// DiffResult aggregates per-file diffs for a tree comparison.
// All sequences are ordered by path; results are produced fresh per
// comparison and never persisted.
type DiffResult struct {
	Added     []FileDiff
	Removed   []FileDiff
	Modified  []FileDiff
	Unchanged []FileDiff
	Errors    []FileError
	Stats     DiffStats
}

// Add places a file diff into the matching category and updates stats
func (r *DiffResult) Add(d FileDiff) {
	switch d.Status {
	case StatusAdded:
		r.Added = append(r.Added, d)
		r.Stats.FilesAdded++
	case StatusRemoved:
		r.Removed = append(r.Removed, d)
		r.Stats.FilesRemoved++
	case StatusModified:
		r.Modified = append(r.Modified, d)
		r.Stats.FilesModified++
	case StatusUnchanged:
		r.Unchanged = append(r.Unchanged, d)
		r.Stats.FilesUnchanged++
	}
	r.Stats.TotalLinesAdded += d.LinesAdded
	r.Stats.TotalLinesRemoved += d.LinesRemoved
}

// AddError records a per-file scan error
func (r *DiffResult) AddError(path string, err error) {
	r.Errors = append(r.Errors, FileError{Path: path, Message: err.Error()})
	r.Stats.FilesErrored++
}

// Sort orders every category by path. Tree scans may complete out of
// order when parallelized; callers rely on deterministic sequencing.
func (r *DiffResult) Sort() {
	byPath := func(s []FileDiff) {
		sort.Slice(s, func(i, j int) bool { return s[i].Path < s[j].Path })
	}
	byPath(r.Added)
	byPath(r.Removed)
	byPath(r.Modified)
	byPath(r.Unchanged)
	sort.Slice(r.Errors, func(i, j int) bool { return r.Errors[i].Path < r.Errors[j].Path })
}

// HasChanges reports whether any file was added, removed or modified
func (r *DiffResult) HasChanges() bool {
	return r.Stats.FilesAdded > 0 || r.Stats.FilesRemoved > 0 || r.Stats.FilesModified > 0
}

// ChangedFiles returns the total number of changed files
func (r *DiffResult) ChangedFiles() int {
	return r.Stats.FilesAdded + r.Stats.FilesRemoved + r.Stats.FilesModified
}

// Package tree walks directory trees and aggregates per-file comparisons
// into deterministic diff results.
package tree

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/sdejongh/artifactsync/pkg/compare"
	"github.com/sdejongh/artifactsync/pkg/models"
)

// DefaultMaxWorkers bounds the per-file comparison pool
const DefaultMaxWorkers = 5

// Differ compares two directory trees file by file. It holds no per-run
// state; concurrent DiffTrees calls on one Differ are safe.
type Differ struct {
	comparator *compare.FileComparator
	matcher    *Matcher
	maxWorkers int
}

// NewDiffer creates a tree differ. A nil matcher means nothing is ignored.
func NewDiffer(comparator *compare.FileComparator, matcher *Matcher, maxWorkers int) *Differ {
	if maxWorkers < 1 {
		maxWorkers = DefaultMaxWorkers
	}
	return &Differ{
		comparator: comparator,
		matcher:    matcher,
		maxWorkers: maxWorkers,
	}
}

// DiffTrees compares the trees rooted at a and b. Individual unreadable
// files become per-file error entries; only a missing root aborts the scan.
// Per-file comparisons run on a bounded worker pool, but every sequence in
// the result is sorted by path so output is deterministic regardless of
// completion order.
func (d *Differ) DiffTrees(ctx context.Context, a, b string) (*models.DiffResult, error) {
	return d.DiffTreesWithProgress(ctx, a, b, nil)
}

// DiffTreesWithProgress is DiffTrees with a per-call progress callback,
// invoked after each file comparison completes. Calls may arrive from
// worker goroutines.
func (d *Differ) DiffTreesWithProgress(ctx context.Context, a, b string, progress func(done, total int)) (*models.DiffResult, error) {
	union, err := UnionFiles(ctx, d.matcher, a, b)
	if err != nil {
		return nil, err
	}

	type outcome struct {
		path string
		diff *models.FileDiff
		err  error
	}

	results := make([]outcome, len(union))
	semaphore := make(chan struct{}, d.maxWorkers)
	var wg sync.WaitGroup
	var done atomic.Int64

	for i, relPath := range union {
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		case semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, relPath string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			oldPath := ""
			if FileExists(a, relPath) {
				oldPath = filepath.Join(a, filepath.FromSlash(relPath))
			}
			newPath := ""
			if FileExists(b, relPath) {
				newPath = filepath.Join(b, filepath.FromSlash(relPath))
			}

			diff, err := d.comparator.Compare(ctx, relPath, oldPath, newPath)
			results[i] = outcome{path: relPath, diff: diff, err: err}

			if progress != nil {
				progress(int(done.Add(1)), len(union))
			}
		}(i, relPath)
	}
	wg.Wait()

	result := &models.DiffResult{}
	for _, r := range results {
		if r.err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			result.AddError(r.path, r.err)
			continue
		}
		if r.diff != nil {
			result.Add(*r.diff)
		}
	}
	result.Sort()

	return result, nil
}

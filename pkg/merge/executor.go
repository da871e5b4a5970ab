package merge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/sdejongh/artifactsync/pkg/models"
	"github.com/sdejongh/artifactsync/pkg/snapshot"
	"github.com/sdejongh/artifactsync/pkg/storage"
)

// Executor applies a three-way classification to an output tree as an
// all-or-nothing transaction. Every write is staged in a temporary
// directory first; the output tree is only touched after a snapshot of the
// affected paths exists, and any publish failure restores that snapshot.
type Executor struct {
	snapshotter snapshot.Snapshotter
}

// NewExecutor creates a merge executor backed by the given snapshotter
func NewExecutor(snapshotter snapshot.Snapshotter) *Executor {
	return &Executor{snapshotter: snapshotter}
}

// stagedWrite is one pending mutation of the output tree
type stagedWrite struct {
	relPath string
	src     string // staged file to publish; empty for deletions
	size    int64
}

// Apply executes the merge. Auto-mergeable entries copy the winning side
// (or delete); text conflicts become marker files; binary conflicts leave
// the output untouched and stay unresolved in the result. Cancellation
// between files before publish leaves the output unchanged.
func (e *Executor) Apply(ctx context.Context, res *models.ThreeWayDiffResult, base, local, remote, output string) (*models.MergeResult, error) {
	start := time.Now()

	result := &models.MergeResult{
		OperationID: uuid.New().String(),
		OutputRoot:  output,
	}

	if info, err := os.Stat(output); err != nil {
		return nil, fmt.Errorf("failed to access output root: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("output root is not a directory: %s", output)
	}

	// Staging area lives outside the output tree and is removed on every
	// exit path.
	stagingDir, err := os.MkdirTemp("", "artifactsync-merge-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(stagingDir)

	var writes []stagedWrite

	for _, entry := range res.AutoMergeable {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if entry.Delete {
			writes = append(writes, stagedWrite{relPath: entry.Path})
			continue
		}

		srcRoot, err := strategyRoot(entry.Strategy, base, local, remote)
		if err != nil {
			return nil, err
		}
		src := filepath.Join(srcRoot, filepath.FromSlash(entry.Path))
		staged := filepath.Join(stagingDir, filepath.FromSlash(entry.Path))
		if err := storage.CopyFile(src, staged); err != nil {
			return nil, fmt.Errorf("failed to stage %s: %w", entry.Path, err)
		}
		info, err := os.Stat(staged)
		if err != nil {
			return nil, fmt.Errorf("failed to stat staged file: %w", err)
		}
		writes = append(writes, stagedWrite{relPath: entry.Path, src: staged, size: info.Size()})
	}

	for _, conflict := range res.Conflicts {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		result.Conflicts = append(result.Conflicts, conflict)

		if conflict.IsBinary {
			// Binary conflicts are never merged into a single file; the
			// existing local copy stays as it is.
			result.Stats.BinaryConflicts++
			continue
		}

		markers := RenderMarkers(conflict.LocalContent, conflict.RemoteContent)
		staged := filepath.Join(stagingDir, filepath.FromSlash(conflict.Path))
		if err := storage.WriteFile(staged, markers, 0o644); err != nil {
			return nil, fmt.Errorf("failed to stage conflict markers for %s: %w", conflict.Path, err)
		}
		writes = append(writes, stagedWrite{relPath: conflict.Path, src: staged, size: int64(len(markers))})
		result.Stats.ConflictsWritten++
	}

	// Everything is staged; snapshot the affected output paths, then
	// publish through a single writer.
	affected := make([]string, len(writes))
	for i, w := range writes {
		affected[i] = w.relPath
	}

	snap, err := e.snapshotter.Create(ctx, output, affected)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot output: %w", err)
	}

	if err := e.publish(ctx, writes, output, result); err != nil {
		if restoreErr := e.snapshotter.Restore(ctx, snap); restoreErr != nil {
			e.snapshotter.Discard(snap)
			return nil, fmt.Errorf("merge failed (%v) and rollback failed: %w", err, restoreErr)
		}
		e.snapshotter.Discard(snap)
		result.RolledBack = true
		return result, fmt.Errorf("merge rolled back: %w", err)
	}
	e.snapshotter.Discard(snap)

	for _, entry := range res.AutoMergeable {
		result.AutoMerged = append(result.AutoMerged, entry.Path)
		if entry.Delete {
			result.Stats.FilesDeleted++
		} else {
			result.Stats.FilesMerged++
		}
	}

	result.Success = len(result.Conflicts) == 0
	result.Stats.Duration = time.Since(start)

	return result, nil
}

// publish applies staged writes to the output tree. Runs single-writer;
// any error aborts so the caller can roll back.
func (e *Executor) publish(ctx context.Context, writes []stagedWrite, output string, result *models.MergeResult) error {
	for _, w := range writes {
		// Once publishing has begun, cancellation is treated as a failure
		// so the snapshot restore brings the tree back whole.
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if w.src == "" {
			if err := storage.Remove(output, w.relPath); err != nil {
				return fmt.Errorf("failed to delete %s: %w", w.relPath, err)
			}
			continue
		}

		dst := filepath.Join(output, filepath.FromSlash(w.relPath))
		if err := storage.CopyFile(w.src, dst); err != nil {
			return fmt.Errorf("failed to publish %s: %w", w.relPath, err)
		}
		result.Stats.BytesWritten += w.size
	}
	return nil
}

// strategyRoot maps a non-manual strategy to its source tree
func strategyRoot(strategy models.Strategy, base, local, remote string) (string, error) {
	switch strategy {
	case models.UseLocal:
		return local, nil
	case models.UseRemote:
		return remote, nil
	case models.UseBase:
		return base, nil
	default:
		return "", fmt.Errorf("strategy %q cannot be applied automatically", strategy)
	}
}

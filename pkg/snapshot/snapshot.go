// Package snapshot captures and restores the pre-merge state of output
// trees. The merge executor snapshots every path it is about to touch,
// restores on any failure before commit and discards on success.
package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sdejongh/artifactsync/pkg/storage"
)

// Snapshot is a handle to a captured tree state
type Snapshot struct {
	// Root is the tree the snapshot protects
	Root string

	// dir holds the saved copies
	dir string

	// saved maps relative paths to their staged copies
	saved map[string]string

	// absent lists paths that did not exist at capture time; Restore
	// deletes them if they appeared since
	absent []string
}

// Snapshotter creates and restores snapshots of selected paths in a tree
type Snapshotter interface {
	// Create captures the current state of the given relative paths under root
	Create(ctx context.Context, root string, relPaths []string) (*Snapshot, error)

	// Restore puts every captured path back to its captured state
	Restore(ctx context.Context, snap *Snapshot) error

	// Discard releases a snapshot's storage without restoring
	Discard(snap *Snapshot) error
}

// DirSnapshotter stores snapshots as file copies in a temporary directory
type DirSnapshotter struct{}

// NewDirSnapshotter creates a directory-backed snapshotter
func NewDirSnapshotter() *DirSnapshotter {
	return &DirSnapshotter{}
}

// Create copies each existing path into a temporary area and records the
// rest as absent.
func (s *DirSnapshotter) Create(ctx context.Context, root string, relPaths []string) (*Snapshot, error) {
	dir, err := os.MkdirTemp("", "artifactsync-snapshot-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	snap := &Snapshot{
		Root:  root,
		dir:   dir,
		saved: make(map[string]string),
	}

	for _, relPath := range relPaths {
		select {
		case <-ctx.Done():
			s.Discard(snap)
			return nil, ctx.Err()
		default:
		}

		src := filepath.Join(root, filepath.FromSlash(relPath))
		if !storage.Exists(src) {
			snap.absent = append(snap.absent, relPath)
			continue
		}

		dst := filepath.Join(dir, filepath.FromSlash(relPath))
		if err := storage.CopyFile(src, dst); err != nil {
			s.Discard(snap)
			return nil, fmt.Errorf("failed to snapshot %s: %w", relPath, err)
		}
		snap.saved[relPath] = dst
	}

	return snap, nil
}

// Restore copies every saved file back and removes files that did not
// exist at capture time.
func (s *DirSnapshotter) Restore(ctx context.Context, snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("nil snapshot")
	}

	for relPath, saved := range snap.saved {
		dst := filepath.Join(snap.Root, filepath.FromSlash(relPath))
		if err := storage.CopyFile(saved, dst); err != nil {
			return fmt.Errorf("failed to restore %s: %w", relPath, err)
		}
	}

	for _, relPath := range snap.absent {
		if err := storage.Remove(snap.Root, relPath); err != nil {
			return fmt.Errorf("failed to remove %s: %w", relPath, err)
		}
	}

	return nil
}

// Discard removes the snapshot's temporary storage
func (s *DirSnapshotter) Discard(snap *Snapshot) error {
	if snap == nil || snap.dir == "" {
		return nil
	}
	return os.RemoveAll(snap.dir)
}

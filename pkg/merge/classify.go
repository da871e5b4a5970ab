// Package merge implements three-way classification and transactional
// application of merge results.
//
// Classification reproduces merge-base semantics over three directory
// snapshots: the base tree stands in for the common ancestor, and per-file
// change flags relative to it decide whether a file resolves automatically
// or conflicts.
package merge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sdejongh/artifactsync/pkg/compare"
	"github.com/sdejongh/artifactsync/pkg/hash"
	"github.com/sdejongh/artifactsync/pkg/models"
	"github.com/sdejongh/artifactsync/pkg/tree"
)

// Classifier assigns every path in base, local and remote to exactly one
// of: omitted (unchanged), auto-mergeable, conflicting, or errored.
type Classifier struct {
	hasher  hash.Hasher
	matcher *tree.Matcher
}

// NewClassifier creates a three-way classifier
func NewClassifier(hasher hash.Hasher, matcher *tree.Matcher) *Classifier {
	return &Classifier{hasher: hasher, matcher: matcher}
}

// ClassifyOptions tunes a classification run
type ClassifyOptions struct {
	// BaseFallback marks that the base tree is not a true ancestor snapshot
	// (typically the local copy standing in). The result carries the flag so
	// callers can surface the reduced conflict-detection fidelity.
	BaseFallback bool
}

// side is the per-tree state of one path
type side struct {
	exists bool
	path   string
	hash   string
}

// Classify walks the union of paths across the three trees and applies the
// merge-base decision table. Identical unchanged files are omitted from the
// result entirely. An unreadable side is recorded as a per-file error and
// the scan continues; only a missing root or cancellation aborts the run.
func (c *Classifier) Classify(ctx context.Context, base, local, remote string, opts ClassifyOptions) (*models.ThreeWayDiffResult, error) {
	union, err := tree.UnionFiles(ctx, c.matcher, base, local, remote)
	if err != nil {
		return nil, err
	}

	result := &models.ThreeWayDiffResult{BaseFallback: opts.BaseFallback}

	for _, relPath := range union {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		entry, conflict, err := c.classifyOne(ctx, base, local, remote, relPath)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			result.AddError(relPath, err)
			continue
		}
		if entry != nil {
			result.AutoMergeable = append(result.AutoMergeable, *entry)
		}
		if conflict != nil {
			result.Conflicts = append(result.Conflicts, *conflict)
		}
	}

	return result, nil
}

// classifyOne resolves all three sides of a path and applies the decision
// table to it
func (c *Classifier) classifyOne(ctx context.Context, base, local, remote, relPath string) (*models.AutoMergeEntry, *models.ConflictMetadata, error) {
	b, err := c.resolve(ctx, base, relPath)
	if err != nil {
		return nil, nil, err
	}
	l, err := c.resolve(ctx, local, relPath)
	if err != nil {
		return nil, nil, err
	}
	r, err := c.resolve(ctx, remote, relPath)
	if err != nil {
		return nil, nil, err
	}
	return classifyPath(relPath, b, l, r)
}

// resolve stats and hashes one side of a path
func (c *Classifier) resolve(ctx context.Context, root, relPath string) (side, error) {
	s := side{path: filepath.Join(root, filepath.FromSlash(relPath))}
	if !tree.FileExists(root, relPath) {
		return s, nil
	}
	s.exists = true

	h, err := c.hasher.HashFile(ctx, s.path)
	if err != nil {
		return s, fmt.Errorf("failed to hash %s: %w", relPath, err)
	}
	s.hash = h
	return s, nil
}

// changed reports whether a side diverged from base, counting deletion and
// addition as changes.
func changed(base, other side) bool {
	if base.exists != other.exists {
		return true
	}
	if !base.exists {
		return false
	}
	return base.hash != other.hash
}

// classifyPath applies the decision table to one path. Exactly one of the
// returned entry and conflict is non-nil, or both are nil for unchanged
// paths.
func classifyPath(relPath string, b, l, r side) (*models.AutoMergeEntry, *models.ConflictMetadata, error) {
	localChanged := changed(b, l)
	remoteChanged := changed(b, r)

	switch {
	case !localChanged && !remoteChanged:
		// Unchanged on both sides: omitted from the result.
		return nil, nil, nil

	case !localChanged:
		// Only remote changed; remote wins, including remote deletions.
		return &models.AutoMergeEntry{
			Path:     relPath,
			Strategy: models.UseRemote,
			Delete:   !r.exists,
		}, nil, nil

	case !remoteChanged:
		// Only local changed; local wins, including local deletions.
		return &models.AutoMergeEntry{
			Path:     relPath,
			Strategy: models.UseLocal,
			Delete:   !l.exists,
		}, nil, nil
	}

	// Both sides changed from here on.

	if !l.exists && !r.exists {
		// Both deleted: converged on deletion.
		return &models.AutoMergeEntry{
			Path:     relPath,
			Strategy: models.UseLocal,
			Delete:   true,
		}, nil, nil
	}

	if l.exists && r.exists && l.hash == r.hash {
		// Converged on identical content.
		return &models.AutoMergeEntry{
			Path:     relPath,
			Strategy: models.UseLocal,
		}, nil, nil
	}

	// True conflict; determine the kind and collect payloads.
	var kind models.ConflictKind
	switch {
	case !l.exists || !r.exists:
		kind = models.ConflictDeleteModify
	case !b.exists:
		kind = models.ConflictAddAdd
	default:
		kind = models.ConflictBothModified
	}

	isBinary, err := anyBinary(b, l, r)
	if err != nil {
		return nil, nil, err
	}

	var baseContent, localContent, remoteContent []byte
	if !isBinary {
		if baseContent, err = readSide(b); err != nil {
			return nil, nil, err
		}
		if localContent, err = readSide(l); err != nil {
			return nil, nil, err
		}
		if remoteContent, err = readSide(r); err != nil {
			return nil, nil, err
		}
	}

	conflict := models.NewConflict(relPath, kind, baseContent, localContent, remoteContent, isBinary)
	return nil, &conflict, nil
}

// anyBinary reports whether any existing side holds binary content
func anyBinary(sides ...side) (bool, error) {
	for _, s := range sides {
		if !s.exists {
			continue
		}
		binary, err := compare.IsBinaryFile(s.path)
		if err != nil {
			return false, err
		}
		if binary {
			return true, nil
		}
	}
	return false, nil
}

// readSide loads an existing side's content, nil for deleted sides
func readSide(s side) ([]byte, error) {
	if !s.exists {
		return nil, nil
	}
	content, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	return content, nil
}

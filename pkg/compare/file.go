// Package compare classifies single file pairs for the diff engine.
//
// A comparison short-circuits through cheap checks before any line diffing:
// size, then SHA-256 content hash. Only text files whose hashes differ pay
// for a full line-level diff, which keeps throughput acceptable on trees
// where most content is unchanged.
package compare

import (
	"context"
	"fmt"
	"os"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/sdejongh/artifactsync/pkg/hash"
	"github.com/sdejongh/artifactsync/pkg/models"
)

// FileComparator classifies file pairs as added, removed, modified or
// unchanged and produces unified diffs for text files.
type FileComparator struct {
	hasher hash.Hasher
}

// NewFileComparator creates a comparator backed by the given hasher
func NewFileComparator(hasher hash.Hasher) *FileComparator {
	return &FileComparator{hasher: hasher}
}

// Compare classifies the pair (oldPath, newPath). Either side may be empty,
// covering adds and removes. relPath names the file in the result.
func (c *FileComparator) Compare(ctx context.Context, relPath, oldPath, newPath string) (*models.FileDiff, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	switch {
	case oldPath == "" && newPath == "":
		return nil, fmt.Errorf("compare %s: both sides absent", relPath)
	case oldPath == "":
		return c.oneSided(relPath, newPath, models.StatusAdded)
	case newPath == "":
		return c.oneSided(relPath, oldPath, models.StatusRemoved)
	}

	oldInfo, err := os.Stat(oldPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat old file: %w", err)
	}
	newInfo, err := os.Stat(newPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat new file: %w", err)
	}

	// Hash fast path: equal sizes and equal hashes mean unchanged without
	// ever reading for a diff.
	if oldInfo.Size() == newInfo.Size() {
		oldHash, err := c.hasher.HashFile(ctx, oldPath)
		if err != nil {
			return nil, fmt.Errorf("failed to hash old file: %w", err)
		}
		newHash, err := c.hasher.HashFile(ctx, newPath)
		if err != nil {
			return nil, fmt.Errorf("failed to hash new file: %w", err)
		}
		if oldHash == newHash {
			return &models.FileDiff{
				Path:   relPath,
				Status: models.StatusUnchanged,
			}, nil
		}
	}

	oldBinary, err := IsBinaryFile(oldPath)
	if err != nil {
		return nil, err
	}
	newBinary, err := IsBinaryFile(newPath)
	if err != nil {
		return nil, err
	}

	if oldBinary || newBinary {
		return &models.FileDiff{
			Path:     relPath,
			Status:   models.StatusModified,
			IsBinary: true,
		}, nil
	}

	oldContent, err := os.ReadFile(oldPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read old file: %w", err)
	}
	newContent, err := os.ReadFile(newPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read new file: %w", err)
	}

	ops := diffLines(string(oldContent), string(newContent))
	added, removed := countLines(ops)

	return &models.FileDiff{
		Path:         relPath,
		Status:       models.StatusModified,
		LinesAdded:   added,
		LinesRemoved: removed,
		UnifiedDiff:  renderUnified("a/"+relPath, "b/"+relPath, ops),
	}, nil
}

// oneSided handles files present in only one tree
func (c *FileComparator) oneSided(relPath, path string, status models.FileStatus) (*models.FileDiff, error) {
	binary, err := IsBinaryFile(path)
	if err != nil {
		return nil, err
	}

	diff := &models.FileDiff{
		Path:     relPath,
		Status:   status,
		IsBinary: binary,
	}
	if binary {
		return diff, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var ops []lineOp
	if status == models.StatusAdded {
		ops = diffLines("", string(content))
		diff.LinesAdded, _ = countLines(ops)
		diff.UnifiedDiff = renderUnified("/dev/null", "b/"+relPath, ops)
	} else {
		ops = diffLines(string(content), "")
		_, diff.LinesRemoved = countLines(ops)
		diff.UnifiedDiff = renderUnified("a/"+relPath, "/dev/null", ops)
	}

	return diff, nil
}

// diffLines computes a line-level diff using diffmatchpatch's line mode
func diffLines(oldText, newText string) []lineOp {
	dmp := diffmatchpatch.New()
	oldChars, newChars, lines := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(oldChars, newChars, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)
	return splitLineOps(diffs)
}

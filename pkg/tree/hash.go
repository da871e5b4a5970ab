package tree

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"

	"github.com/sdejongh/artifactsync/pkg/hash"
)

// Hash computes a deterministic content hash of an entire tree: SHA-256
// over the sorted (relative path, file hash) pairs of every non-ignored
// file. Two trees hash equal exactly when their file sets and contents
// match, which makes drift checks a single string comparison.
func Hash(ctx context.Context, root string, matcher *Matcher, hasher hash.Hasher) (string, error) {
	files, err := ListFiles(ctx, root, matcher)
	if err != nil {
		return "", err
	}

	agg := sha256.New()
	for _, relPath := range files {
		fileHash, err := hasher.HashFile(ctx, filepath.Join(root, filepath.FromSlash(relPath)))
		if err != nil {
			return "", fmt.Errorf("failed to hash %s: %w", relPath, err)
		}
		fmt.Fprintf(agg, "%s\x00%s\x00", relPath, fileHash)
	}

	return hex.EncodeToString(agg.Sum(nil)), nil
}

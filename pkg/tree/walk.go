package tree

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// ListFiles enumerates the relative paths of all regular files under root,
// skipping anything the matcher excludes. Empty directories are not listed;
// only files are diffed. A missing or unreadable root is a hard failure.
func ListFiles(ctx context.Context, root string, matcher *Matcher) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to access root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", root)
	}

	var files []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		relPath, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}

		if matcher.Match(relPath) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type().IsRegular() {
			files = append(files, filepath.ToSlash(relPath))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk tree: %w", err)
	}

	sort.Strings(files)
	return files, nil
}

// UnionFiles enumerates the sorted union of relative file paths across the
// given roots. A root may appear in any subset of the trees.
func UnionFiles(ctx context.Context, matcher *Matcher, roots ...string) ([]string, error) {
	seen := make(map[string]struct{})
	for _, root := range roots {
		files, err := ListFiles(ctx, root, matcher)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			seen[f] = struct{}{}
		}
	}

	union := make([]string, 0, len(seen))
	for f := range seen {
		union = append(union, f)
	}
	sort.Strings(union)
	return union, nil
}

// FileExists reports whether the relative path resolves to a regular file
// under root.
func FileExists(root, relPath string) bool {
	info, err := os.Stat(filepath.Join(root, filepath.FromSlash(relPath)))
	return err == nil && info.Mode().IsRegular()
}

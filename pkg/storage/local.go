// Package storage provides local filesystem operations for the merge and
// snapshot layers. All multi-file mutations in this codebase funnel through
// these helpers so that mode preservation and parent-directory handling
// stay consistent.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
)

// CopyFile copies src to dst, creating parent directories and preserving
// the source file mode.
func CopyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat source: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", src)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to copy content: %w", err)
	}

	if err := out.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("failed to close destination: %w", err)
	}

	// Re-apply the mode in case umask interfered at creation.
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to set mode: %w", err)
	}

	return nil
}

// WriteFile writes content to path with the given mode, creating parent
// directories as needed.
func WriteFile(path string, content []byte, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}
	if err := os.WriteFile(path, content, mode); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Remove deletes a file if it exists and prunes parent directories that
// became empty, stopping at root. A parent component that is not a
// directory means the path cannot exist, so that also counts as removed.
func Remove(root, relPath string) error {
	full := filepath.Join(root, filepath.FromSlash(relPath))
	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) || errors.Is(err, syscall.ENOTDIR) {
			return nil
		}
		return fmt.Errorf("failed to remove file: %w", err)
	}

	// Prune empty parents up to root.
	dir := filepath.Dir(full)
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return nil
	}
	for {
		dirAbs, err := filepath.Abs(dir)
		if err != nil || dirAbs == rootAbs {
			return nil
		}
		if err := os.Remove(dir); err != nil {
			return nil // not empty or gone, stop pruning
		}
		dir = filepath.Dir(dir)
	}
}

// Exists reports whether a path exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

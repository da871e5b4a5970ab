package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func tempDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "artifactsync-storage-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func TestCopyFile(t *testing.T) {
	dir := tempDir(t)

	src := filepath.Join(dir, "src.txt")
	if err := os.WriteFile(src, []byte("payload\n"), 0755); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}

	dst := filepath.Join(dir, "deep", "nested", "dst.txt")
	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile failed: %v", err)
	}

	content, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("failed to read destination: %v", err)
	}
	if string(content) != "payload\n" {
		t.Errorf("content = %q, want %q", content, "payload\n")
	}

	info, err := os.Stat(dst)
	if err != nil {
		t.Fatalf("failed to stat destination: %v", err)
	}
	if info.Mode().Perm() != 0755 {
		t.Errorf("mode = %o, want 0755", info.Mode().Perm())
	}
}

func TestCopyFileMissingSource(t *testing.T) {
	dir := tempDir(t)
	if err := CopyFile(filepath.Join(dir, "absent"), filepath.Join(dir, "dst")); err == nil {
		t.Error("expected error for missing source")
	}
}

func TestCopyFileRejectsDirectory(t *testing.T) {
	dir := tempDir(t)
	if err := CopyFile(dir, filepath.Join(dir, "dst")); err == nil {
		t.Error("expected error copying a directory")
	}
}

func TestWriteFile(t *testing.T) {
	dir := tempDir(t)

	path := filepath.Join(dir, "sub", "f.txt")
	if err := WriteFile(path, []byte("content"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil || string(content) != "content" {
		t.Errorf("read back = %q, %v", content, err)
	}
}

func TestRemovePrunesEmptyParents(t *testing.T) {
	dir := tempDir(t)

	path := filepath.Join(dir, "a", "b", "f.txt")
	if err := WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if err := Remove(dir, "a/b/f.txt"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "a")); !os.IsNotExist(err) {
		t.Error("empty parent directories should be pruned")
	}
	if _, err := os.Stat(dir); err != nil {
		t.Error("root itself must survive pruning")
	}
}

func TestRemoveKeepsOccupiedParents(t *testing.T) {
	dir := tempDir(t)

	if err := WriteFile(filepath.Join(dir, "a", "f.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := WriteFile(filepath.Join(dir, "a", "g.txt"), []byte("y"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if err := Remove(dir, "a/f.txt"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "a", "g.txt")); err != nil {
		t.Error("sibling file should survive")
	}
}

func TestRemoveMissingIsNoop(t *testing.T) {
	dir := tempDir(t)
	if err := Remove(dir, "never/existed.txt"); err != nil {
		t.Errorf("Remove of missing file = %v, want nil", err)
	}
}

func TestRemoveBlockedParentIsNoop(t *testing.T) {
	dir := tempDir(t)

	// "blocked" is a file, so blocked/f.txt cannot exist.
	if err := os.WriteFile(filepath.Join(dir, "blocked"), []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write blocker: %v", err)
	}

	if err := Remove(dir, "blocked/f.txt"); err != nil {
		t.Errorf("Remove under blocked parent = %v, want nil", err)
	}
}

func TestExists(t *testing.T) {
	dir := tempDir(t)

	if Exists(filepath.Join(dir, "absent")) {
		t.Error("Exists should be false for missing path")
	}
	if !Exists(dir) {
		t.Error("Exists should be true for the directory itself")
	}
}

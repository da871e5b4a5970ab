package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func makeRoot(t *testing.T, files map[string]string) string {
	t.Helper()

	dir, err := os.MkdirTemp("", "artifactsync-snapshot-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	for relPath, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(relPath))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create parent dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", relPath, err)
		}
	}
	return dir
}

func TestSnapshotRestore(t *testing.T) {
	root := makeRoot(t, map[string]string{
		"kept.txt":    "original\n",
		"sub/nested":  "nested\n",
		"outside.txt": "untouched\n",
	})

	s := NewDirSnapshotter()
	ctx := context.Background()

	snap, err := s.Create(ctx, root, []string{"kept.txt", "sub/nested", "new.txt"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer s.Discard(snap)

	// Mutate everything the snapshot covers.
	if err := os.WriteFile(filepath.Join(root, "kept.txt"), []byte("clobbered\n"), 0644); err != nil {
		t.Fatalf("failed to overwrite: %v", err)
	}
	if err := os.Remove(filepath.Join(root, "sub", "nested")); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "new.txt"), []byte("newcomer\n"), 0644); err != nil {
		t.Fatalf("failed to add: %v", err)
	}

	if err := s.Restore(ctx, snap); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	if content, _ := os.ReadFile(filepath.Join(root, "kept.txt")); string(content) != "original\n" {
		t.Errorf("kept.txt = %q, want %q", content, "original\n")
	}
	if content, _ := os.ReadFile(filepath.Join(root, "sub", "nested")); string(content) != "nested\n" {
		t.Errorf("sub/nested = %q, want %q", content, "nested\n")
	}
	if _, err := os.Stat(filepath.Join(root, "new.txt")); !os.IsNotExist(err) {
		t.Error("file absent at capture time should be removed on restore")
	}
	if content, _ := os.ReadFile(filepath.Join(root, "outside.txt")); string(content) != "untouched\n" {
		t.Errorf("outside.txt = %q, want %q", content, "untouched\n")
	}
}

func TestSnapshotDiscard(t *testing.T) {
	root := makeRoot(t, map[string]string{"f.txt": "v1\n"})

	s := NewDirSnapshotter()
	snap, err := s.Create(context.Background(), root, []string{"f.txt"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := s.Discard(snap); err != nil {
		t.Errorf("Discard failed: %v", err)
	}
	if _, err := os.Stat(snap.dir); !os.IsNotExist(err) {
		t.Error("discarded snapshot storage should be gone")
	}
}

func TestRestoreNilSnapshot(t *testing.T) {
	s := NewDirSnapshotter()
	if err := s.Restore(context.Background(), nil); err == nil {
		t.Error("expected error restoring nil snapshot")
	}
	if err := s.Discard(nil); err != nil {
		t.Errorf("Discard(nil) = %v, want nil", err)
	}
}

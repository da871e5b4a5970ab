package compare

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sdejongh/artifactsync/pkg/hash"
	"github.com/sdejongh/artifactsync/pkg/models"
)

// writeTempFile creates a file with the given content in a fresh temp dir
func writeTempFile(t *testing.T, name string, content []byte) string {
	t.Helper()

	dir, err := os.MkdirTemp("", "artifactsync-compare-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	return path
}

func newTestComparator() *FileComparator {
	return NewFileComparator(hash.NewSHA256Hasher(65536))
}

func TestIsBinaryData(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		binary bool
	}{
		{"empty", []byte{}, false},
		{"plain text", []byte("hello world\n"), false},
		{"utf8 text", []byte("héllo wörld ☃\n"), false},
		{"nul byte", []byte("hel\x00lo"), true},
		{"invalid utf8", []byte{0xff, 0xfe, 0x41}, true},
		{"png header", []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBinaryData(tt.data); got != tt.binary {
				t.Errorf("IsBinaryData() = %v, want %v", got, tt.binary)
			}
		})
	}
}

func TestIsBinaryFile(t *testing.T) {
	textPath := writeTempFile(t, "text.txt", []byte("just text\n"))
	binPath := writeTempFile(t, "data.bin", []byte{0x00, 0x01, 0x02})

	if binary, err := IsBinaryFile(textPath); err != nil || binary {
		t.Errorf("IsBinaryFile(text) = %v, %v, want false, nil", binary, err)
	}
	if binary, err := IsBinaryFile(binPath); err != nil || !binary {
		t.Errorf("IsBinaryFile(binary) = %v, %v, want true, nil", binary, err)
	}
}

func TestCompareUnchanged(t *testing.T) {
	content := []byte("same content\non two lines\n")
	oldPath := writeTempFile(t, "a.txt", content)
	newPath := writeTempFile(t, "a.txt", content)

	diff, err := newTestComparator().Compare(context.Background(), "a.txt", oldPath, newPath)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if diff.Status != models.StatusUnchanged {
		t.Errorf("Status = %s, want %s", diff.Status, models.StatusUnchanged)
	}
	if diff.UnifiedDiff != "" {
		t.Error("unchanged file should carry no unified diff")
	}
	if diff.LinesAdded != 0 || diff.LinesRemoved != 0 {
		t.Errorf("line counts = +%d/-%d, want 0/0", diff.LinesAdded, diff.LinesRemoved)
	}
}

func TestCompareModifiedText(t *testing.T) {
	oldPath := writeTempFile(t, "f.txt", []byte("alpha\nbravo\ncharlie\n"))
	newPath := writeTempFile(t, "f.txt", []byte("alpha\nxray\ncharlie\n"))

	diff, err := newTestComparator().Compare(context.Background(), "f.txt", oldPath, newPath)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if diff.Status != models.StatusModified {
		t.Errorf("Status = %s, want %s", diff.Status, models.StatusModified)
	}
	if diff.IsBinary {
		t.Error("text file flagged binary")
	}
	if diff.LinesAdded != 1 || diff.LinesRemoved != 1 {
		t.Errorf("line counts = +%d/-%d, want +1/-1", diff.LinesAdded, diff.LinesRemoved)
	}

	for _, want := range []string{
		"--- a/f.txt\n",
		"+++ b/f.txt\n",
		"@@ -1,3 +1,3 @@\n",
		"-bravo\n",
		"+xray\n",
		" charlie\n",
	} {
		if !strings.Contains(diff.UnifiedDiff, want) {
			t.Errorf("unified diff missing %q:\n%s", want, diff.UnifiedDiff)
		}
	}
}

func TestCompareModifiedBinary(t *testing.T) {
	oldPath := writeTempFile(t, "f.bin", []byte{0x00, 0x01})
	newPath := writeTempFile(t, "f.bin", []byte{0x00, 0x02, 0x03})

	diff, err := newTestComparator().Compare(context.Background(), "f.bin", oldPath, newPath)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if diff.Status != models.StatusModified {
		t.Errorf("Status = %s, want %s", diff.Status, models.StatusModified)
	}
	if !diff.IsBinary {
		t.Error("binary file not flagged binary")
	}
	if diff.UnifiedDiff != "" {
		t.Error("binary file should carry no unified diff")
	}
}

func TestCompareAdded(t *testing.T) {
	newPath := writeTempFile(t, "new.txt", []byte("one\ntwo\n"))

	diff, err := newTestComparator().Compare(context.Background(), "new.txt", "", newPath)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if diff.Status != models.StatusAdded {
		t.Errorf("Status = %s, want %s", diff.Status, models.StatusAdded)
	}
	if diff.LinesAdded != 2 {
		t.Errorf("LinesAdded = %d, want 2", diff.LinesAdded)
	}
	if !strings.Contains(diff.UnifiedDiff, "--- /dev/null\n") {
		t.Errorf("added file diff should name /dev/null as old side:\n%s", diff.UnifiedDiff)
	}
	if !strings.Contains(diff.UnifiedDiff, "@@ -0,0 +1,2 @@\n") {
		t.Errorf("unexpected hunk header:\n%s", diff.UnifiedDiff)
	}
}

func TestCompareRemoved(t *testing.T) {
	oldPath := writeTempFile(t, "old.txt", []byte("gone\n"))

	diff, err := newTestComparator().Compare(context.Background(), "old.txt", oldPath, "")
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if diff.Status != models.StatusRemoved {
		t.Errorf("Status = %s, want %s", diff.Status, models.StatusRemoved)
	}
	if diff.LinesRemoved != 1 {
		t.Errorf("LinesRemoved = %d, want 1", diff.LinesRemoved)
	}
	if !strings.Contains(diff.UnifiedDiff, "+++ /dev/null\n") {
		t.Errorf("removed file diff should name /dev/null as new side:\n%s", diff.UnifiedDiff)
	}
}

func TestCompareBothAbsent(t *testing.T) {
	if _, err := newTestComparator().Compare(context.Background(), "x", "", ""); err == nil {
		t.Error("expected error when both sides are absent")
	}
}

func TestCompareCancelled(t *testing.T) {
	path := writeTempFile(t, "f.txt", []byte("content\n"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newTestComparator().Compare(ctx, "f.txt", path, path); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestUnifiedDiffSeparateHunks(t *testing.T) {
	var oldLines, newLines []string
	for i := 0; i < 30; i++ {
		oldLines = append(oldLines, "line")
		newLines = append(newLines, "line")
	}
	oldLines[2] = "old-top"
	newLines[2] = "new-top"
	oldLines[27] = "old-bottom"
	newLines[27] = "new-bottom"

	oldPath := writeTempFile(t, "f.txt", []byte(strings.Join(oldLines, "\n")+"\n"))
	newPath := writeTempFile(t, "f.txt", []byte(strings.Join(newLines, "\n")+"\n"))

	diff, err := newTestComparator().Compare(context.Background(), "f.txt", oldPath, newPath)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if got := strings.Count(diff.UnifiedDiff, "@@ "); got != 2 {
		t.Errorf("hunk count = %d, want 2:\n%s", got, diff.UnifiedDiff)
	}
}

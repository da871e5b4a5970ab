package sync

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sdejongh/artifactsync/pkg/hash"
	"github.com/sdejongh/artifactsync/pkg/models"
	"github.com/sdejongh/artifactsync/pkg/tree"
)

// makeTree materializes relative paths to contents as a temp tree
func makeTree(t *testing.T, files map[string]string) string {
	t.Helper()

	dir, err := os.MkdirTemp("", "artifactsync-sync-test-*")
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

// recordFor builds a deployment record matching the tree's current content
func recordFor(t *testing.T, id, root, version string) *models.DeployedArtifactRecord {
	t.Helper()

	treeHash, err := tree.Hash(context.Background(), root, nil, hash.NewSHA256Hasher(65536))
	if err != nil {
		t.Fatalf("failed to hash tree: %v", err)
	}
	return &models.DeployedArtifactRecord{
		ArtifactID:      id,
		DeployedHash:    treeHash,
		DeployedVersion: version,
		DeployedAt:      time.Now(),
	}
}

func TestDetectorStates(t *testing.T) {
	detector := NewDetector(hash.NewSHA256Hasher(65536), nil)
	ctx := context.Background()

	project := makeTree(t, map[string]string{"f.txt": "deployed\n"})
	record := recordFor(t, "tracker", project, "1.0.0")

	tests := []struct {
		name              string
		collectionVersion string
		mutate            func(t *testing.T)
		wantState         models.SyncState
		wantDrift         bool
		wantUpdate        bool
	}{
		{
			name:              "synced",
			collectionVersion: "1.0.0",
			wantState:         models.StateSynced,
		},
		{
			name:              "outdated",
			collectionVersion: "1.1.0",
			wantState:         models.StateOutdated,
			wantUpdate:        true,
		},
		{
			name:              "modified",
			collectionVersion: "1.0.0",
			mutate: func(t *testing.T) {
				if err := os.WriteFile(filepath.Join(project, "f.txt"), []byte("edited\n"), 0644); err != nil {
					t.Fatalf("failed to edit: %v", err)
				}
			},
			wantState: models.StateModified,
			wantDrift: true,
		},
		{
			name:              "conflict",
			collectionVersion: "1.1.0",
			wantState:         models.StateConflict,
			wantDrift:         true,
			wantUpdate:        true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.mutate != nil {
				tt.mutate(t)
			}

			art := Artifact{
				ID:                "tracker",
				ProjectPath:       project,
				CollectionPath:    project,
				CollectionVersion: tt.collectionVersion,
			}
			status, err := detector.Check(ctx, art, record)
			if err != nil {
				t.Fatalf("Check failed: %v", err)
			}

			if status.State != tt.wantState {
				t.Errorf("State = %s, want %s", status.State, tt.wantState)
			}
			if status.HasDrift != tt.wantDrift {
				t.Errorf("HasDrift = %v, want %v", status.HasDrift, tt.wantDrift)
			}
			if status.HasUpdate != tt.wantUpdate {
				t.Errorf("HasUpdate = %v, want %v", status.HasUpdate, tt.wantUpdate)
			}
			if !tt.wantDrift && status.Recommended != models.RecommendOverwrite {
				t.Errorf("clean copy should recommend overwrite, got %s", status.Recommended)
			}
			if status.InSync() != (tt.wantState == models.StateSynced) {
				t.Errorf("InSync = %v for state %s", status.InSync(), status.State)
			}
		})
	}
}

func TestDetectorEmptyVersionNeverUpdates(t *testing.T) {
	project := makeTree(t, map[string]string{"f.txt": "x\n"})
	record := recordFor(t, "tracker", project, "1.0.0")

	detector := NewDetector(hash.NewSHA256Hasher(65536), nil)
	art := Artifact{ID: "tracker", ProjectPath: project, CollectionPath: project}

	status, err := detector.Check(context.Background(), art, record)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if status.HasUpdate {
		t.Error("unknown collection version should not report an update")
	}
}

func TestDetectorNilRecord(t *testing.T) {
	detector := NewDetector(hash.NewSHA256Hasher(65536), nil)
	project := makeTree(t, map[string]string{"f.txt": "x\n"})

	art := Artifact{ID: "tracker", ProjectPath: project, CollectionPath: project}
	if _, err := detector.Check(context.Background(), art, nil); !errors.Is(err, ErrNilRecord) {
		t.Errorf("err = %v, want ErrNilRecord", err)
	}
}

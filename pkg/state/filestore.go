package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sdejongh/artifactsync/pkg/models"
)

const stateFileVersion = 1

// stateFile is the on-disk layout of the JSON store
type stateFile struct {
	Version int                                       `json:"version"`
	Records map[string]*models.DeployedArtifactRecord `json:"records"`
}

// FileStore persists records in a single versioned JSON file. Suited to
// per-project state kept next to the deployment itself.
type FileStore struct {
	path string

	mu      sync.Mutex
	records map[string]*models.DeployedArtifactRecord
}

// NewFileStore opens (or initializes) a JSON-backed store at path
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path:    path,
		records: make(map[string]*models.DeployedArtifactRecord),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var file stateFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	if file.Version != stateFileVersion {
		return nil, fmt.Errorf("unsupported state file version %d", file.Version)
	}
	if file.Records != nil {
		s.records = file.Records
	}

	return s, nil
}

// Load returns the record for an artifact, or ErrRecordNotFound
func (s *FileStore) Load(ctx context.Context, artifactID string) (*models.DeployedArtifactRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[artifactID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	copy := *record
	return &copy, nil
}

// Save creates or replaces the record and flushes the file
func (s *FileStore) Save(ctx context.Context, record *models.DeployedArtifactRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *record
	s.records[copy.ArtifactID] = &copy
	return s.flush()
}

// Delete removes an artifact's record if present
func (s *FileStore) Delete(ctx context.Context, artifactID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[artifactID]; !ok {
		return nil
	}
	delete(s.records, artifactID)
	return s.flush()
}

// Close flushes the store
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flush()
}

// flush writes the state file via a temp-file rename so a crash never
// leaves a truncated file. Caller holds the lock.
func (s *FileStore) flush() error {
	data, err := json.MarshalIndent(stateFile{
		Version: stateFileVersion,
		Records: s.records,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	return nil
}

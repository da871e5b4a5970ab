package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sdejongh/artifactsync/pkg/models"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS deployments (
	artifact_id      TEXT PRIMARY KEY,
	deployed_hash    TEXT NOT NULL,
	deployed_version TEXT NOT NULL,
	deployed_at      TIMESTAMP NOT NULL
);
`

// SQLiteStore persists deployment records in a SQLite database. Suited to
// a central store covering many projects and artifacts.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed initializes) a SQLite-backed store
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL keeps concurrent readers from blocking the sync writer.
	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Load returns the record for an artifact, or ErrRecordNotFound
func (s *SQLiteStore) Load(ctx context.Context, artifactID string) (*models.DeployedArtifactRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT artifact_id, deployed_hash, deployed_version, deployed_at
		 FROM deployments WHERE artifact_id = ?`, artifactID)

	var record models.DeployedArtifactRecord
	var deployedAt string
	err := row.Scan(&record.ArtifactID, &record.DeployedHash, &record.DeployedVersion, &deployedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record: %w", err)
	}

	record.DeployedAt, err = time.Parse(time.RFC3339Nano, deployedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse deployed_at: %w", err)
	}

	return &record, nil
}

// Save creates or replaces the record for its artifact
func (s *SQLiteStore) Save(ctx context.Context, record *models.DeployedArtifactRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO deployments (artifact_id, deployed_hash, deployed_version, deployed_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(artifact_id) DO UPDATE SET
			deployed_hash = excluded.deployed_hash,
			deployed_version = excluded.deployed_version,
			deployed_at = excluded.deployed_at`,
		record.ArtifactID, record.DeployedHash, record.DeployedVersion,
		record.DeployedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	return nil
}

// Delete removes an artifact's record if present
func (s *SQLiteStore) Delete(ctx context.Context, artifactID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM deployments WHERE artifact_id = ?`, artifactID); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Package state persists deployed-artifact records: the content hash,
// version and timestamp recorded when an artifact was deployed into a
// project. The sync engine reads these records on every check and rewrites
// them only after a successful sync.
package state

import (
	"context"
	"errors"

	"github.com/sdejongh/artifactsync/pkg/models"
)

// ErrRecordNotFound is returned when no record exists for an artifact
var ErrRecordNotFound = errors.New("deployment record not found")

// Store is the narrow persistence interface the sync engine depends on
type Store interface {
	// Load returns the record for an artifact, or ErrRecordNotFound
	Load(ctx context.Context, artifactID string) (*models.DeployedArtifactRecord, error)

	// Save creates or replaces the record for its artifact
	Save(ctx context.Context, record *models.DeployedArtifactRecord) error

	// Delete removes an artifact's record if present
	Delete(ctx context.Context, artifactID string) error

	// Close releases any resources held by the store
	Close() error
}

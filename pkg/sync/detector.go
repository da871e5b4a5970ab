package sync

import (
	"context"
	"errors"

	"github.com/sdejongh/artifactsync/pkg/hash"
	"github.com/sdejongh/artifactsync/pkg/models"
	"github.com/sdejongh/artifactsync/pkg/tree"
)

// ErrNilRecord is returned when a drift check is attempted without a
// deployment record.
var ErrNilRecord = errors.New("nil deployment record")

// Detector derives the deployment state of an artifact from content hashes
// alone, without diffing. Hash mismatches are data, never errors.
type Detector struct {
	hasher  hash.Hasher
	matcher *tree.Matcher
}

// NewDetector creates a drift detector
func NewDetector(hasher hash.Hasher, matcher *tree.Matcher) *Detector {
	return &Detector{hasher: hasher, matcher: matcher}
}

// Check compares the project copy's current tree hash against the
// deployment record (drift) and the record's version against the
// collection version (update availability).
//
// The state machine: Synced when neither drift nor update, Modified on
// drift alone, Outdated on update alone, Conflict when both hold.
// Recommendation here covers only the hash-cheap branch: a clean copy is
// safe to overwrite. Drifted copies get their recommendation from a full
// preview, which needs a three-way classification.
func (d *Detector) Check(ctx context.Context, art Artifact, record *models.DeployedArtifactRecord) (*models.SyncStatus, error) {
	if record == nil {
		return nil, ErrNilRecord
	}

	currentHash, err := tree.Hash(ctx, art.ProjectPath, d.matcher, d.hasher)
	if err != nil {
		return nil, err
	}

	status := &models.SyncStatus{
		ArtifactID:  art.ID,
		CurrentHash: currentHash,
		HasDrift:    currentHash != record.DeployedHash,
		HasUpdate:   art.CollectionVersion != "" && art.CollectionVersion != record.DeployedVersion,
	}

	switch {
	case status.HasDrift && status.HasUpdate:
		status.State = models.StateConflict
	case status.HasDrift:
		status.State = models.StateModified
	case status.HasUpdate:
		status.State = models.StateOutdated
	default:
		status.State = models.StateSynced
	}

	if !status.HasDrift {
		status.Recommended = models.RecommendOverwrite
	}

	return status, nil
}

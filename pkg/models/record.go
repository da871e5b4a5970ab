package models

import (
	"time"
)

// DeployedArtifactRecord captures what was deployed into a project copy.
// It is created at deploy time, read on every sync check and rewritten only
// after a successful sync. Persistence belongs to the state store; the
// engine only reads records and proposes updates.
type DeployedArtifactRecord struct {
	// ArtifactID identifies the artifact within its collection
	ArtifactID string `json:"artifact_id" yaml:"artifact_id"`

	// DeployedHash is the content hash of the tree as deployed
	DeployedHash string `json:"deployed_hash" yaml:"deployed_hash"`

	// DeployedVersion is the collection version that was deployed
	DeployedVersion string `json:"deployed_version" yaml:"deployed_version"`

	// DeployedAt is when the deployment (or last sync) completed
	DeployedAt time.Time `json:"deployed_at" yaml:"deployed_at"`
}

// Validate checks that the record is complete enough to sync against
func (r *DeployedArtifactRecord) Validate() error {
	if r.ArtifactID == "" {
		return &ValidationError{Field: "ArtifactID", Message: "artifact id is required"}
	}
	if r.DeployedHash == "" {
		return &ValidationError{Field: "DeployedHash", Message: "deployed hash is required"}
	}
	return nil
}

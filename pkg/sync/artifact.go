// Package sync coordinates drift detection and three-way reconciliation
// between a canonical collection copy and its deployed project copies.
package sync

import (
	"github.com/sdejongh/artifactsync/pkg/models"
)

// Artifact describes one deployment pairing: a versioned artifact held in
// a collection and its copy deployed into a project. Paths arrive already
// resolved; manifest and lock-file handling happens upstream.
type Artifact struct {
	// ID identifies the artifact within its collection
	ID string

	// ProjectPath is the deployed copy (the "local" side of a pull)
	ProjectPath string

	// CollectionPath is the canonical copy (the "remote" side of a pull)
	CollectionPath string

	// BasePath is the ancestor snapshot recorded at deploy time. Empty
	// means no true ancestor exists and the engine falls back to the
	// project copy, with reduced conflict-detection fidelity.
	BasePath string

	// CollectionVersion is the collection's current version string
	CollectionVersion string
}

// Validate checks the artifact is complete enough to sync
func (a *Artifact) Validate() error {
	if a.ID == "" {
		return &models.ValidationError{Field: "ID", Message: "artifact id is required"}
	}
	if a.ProjectPath == "" {
		return &models.ValidationError{Field: "ProjectPath", Message: "project path is required"}
	}
	if a.CollectionPath == "" {
		return &models.ValidationError{Field: "CollectionPath", Message: "collection path is required"}
	}
	return nil
}

// HasBase reports whether a true ancestor snapshot is available
func (a *Artifact) HasBase() bool {
	return a.BasePath != ""
}

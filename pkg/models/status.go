package models

// SyncState is the per-artifact deployment state derived by a sync check
type SyncState string

const (
	// StateSynced indicates the project copy matches the deployment record
	// and the collection has not moved on
	StateSynced SyncState = "synced"
	// StateModified indicates the project copy drifted from the recorded hash
	StateModified SyncState = "modified"
	// StateOutdated indicates the project copy is clean but the collection
	// holds a newer version
	StateOutdated SyncState = "outdated"
	// StateConflict indicates drift and a newer collection version at once
	StateConflict SyncState = "conflict"
)

// Recommendation is the suggested way to reconcile an artifact
type Recommendation string

const (
	// RecommendOverwrite means the project copy is clean and safe to replace
	RecommendOverwrite Recommendation = "overwrite"
	// RecommendMerge means drift exists but a three-way merge resolves it
	RecommendMerge Recommendation = "merge"
	// RecommendManualReview means conflicts or a large changeset need a human
	RecommendManualReview Recommendation = "manual-review"
)

// SyncStatus is the derived, never-persisted result of a sync check
type SyncStatus struct {
	// ArtifactID identifies the checked artifact
	ArtifactID string

	// State is the deployment state machine position
	State SyncState

	// HasDrift is true when the project hash differs from the recorded hash
	HasDrift bool

	// HasUpdate is true when the collection version is newer than deployed
	HasUpdate bool

	// CurrentHash is the project copy's tree hash at check time
	CurrentHash string

	// Recommended is the suggested reconciliation strategy
	Recommended Recommendation

	// ConflictKind is set when a preview identified a dominant conflict kind
	ConflictKind *ConflictKind
}

// InSync reports whether no action is needed
func (s *SyncStatus) InSync() bool {
	return s.State == StateSynced
}

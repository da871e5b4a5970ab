package models

// ConflictKind categorizes why a file could not be auto-merged
type ConflictKind string

const (
	// ConflictContent indicates content divergence that has no safe resolution
	ConflictContent ConflictKind = "content"
	// ConflictDeleteModify indicates one side deleted while the other modified
	ConflictDeleteModify ConflictKind = "delete-modify"
	// ConflictBothModified indicates both sides modified with differing content
	ConflictBothModified ConflictKind = "both-modified"
	// ConflictAddAdd indicates the file was added independently on both sides
	// with differing content
	ConflictAddAdd ConflictKind = "add-add"
)

// Strategy is the resolution applied to an auto-mergeable file
type Strategy string

const (
	// UseLocal takes the local side's content (or deletion)
	UseLocal Strategy = "use-local"
	// UseRemote takes the remote side's content (or deletion)
	UseRemote Strategy = "use-remote"
	// UseBase restores the common-ancestor content
	UseBase Strategy = "use-base"
	// Manual means no automatic resolution exists
	Manual Strategy = "manual"
)

// ConflictMetadata describes a single conflicting file in a three-way
// comparison. Content fields are nil for deleted sides and always nil for
// binary files; binary payloads are never embedded in results.
type ConflictMetadata struct {
	// Path is the path relative to the compared roots
	Path string

	// Kind categorizes the conflict
	Kind ConflictKind

	// BaseContent is the common-ancestor content, nil if absent in base
	BaseContent []byte

	// LocalContent is the local side's content, nil if deleted locally
	LocalContent []byte

	// RemoteContent is the remote side's content, nil if deleted remotely
	RemoteContent []byte

	// IsBinary indicates binary content on at least one side
	IsBinary bool

	// Strategy is always Manual for conflicts
	Strategy Strategy
}

// NewConflict constructs conflict metadata, enforcing that binary
// conflicts carry no content payloads.
func NewConflict(path string, kind ConflictKind, base, local, remote []byte, isBinary bool) ConflictMetadata {
	if isBinary {
		base, local, remote = nil, nil, nil
	}
	return ConflictMetadata{
		Path:          path,
		Kind:          kind,
		BaseContent:   base,
		LocalContent:  local,
		RemoteContent: remote,
		IsBinary:      isBinary,
		Strategy:      Manual,
	}
}

// AutoMergeEntry is a file whose three-way resolution needs no human input
type AutoMergeEntry struct {
	// Path is the path relative to the compared roots
	Path string

	// Strategy names the winning side; never Manual
	Strategy Strategy

	// Delete indicates the resolution is a deletion rather than a copy
	Delete bool
}

// ThreeWayDiffResult classifies every changed path in base, local and remote.
// Paths identical on all three sides are omitted entirely; the AutoMergeable,
// Conflicts and Errors path sets are disjoint and together cover the rest.
type ThreeWayDiffResult struct {
	AutoMergeable []AutoMergeEntry
	Conflicts     []ConflictMetadata

	// Errors records paths that could not be classified because a side was
	// unreadable. They are excluded from any merge application.
	Errors []FileError

	// BaseFallback is true when no true ancestor snapshot was available and
	// the local copy stood in for base. Conflict detection degrades to
	// two-way fidelity in that mode; callers must surface it.
	BaseFallback bool
}

// AddError records a per-file classification error
func (r *ThreeWayDiffResult) AddError(path string, err error) {
	r.Errors = append(r.Errors, FileError{Path: path, Message: err.Error()})
}

// HasConflicts reports whether any file needs manual resolution
func (r *ThreeWayDiffResult) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

// TotalFiles returns the number of classified (changed) paths
func (r *ThreeWayDiffResult) TotalFiles() int {
	return len(r.AutoMergeable) + len(r.Conflicts)
}

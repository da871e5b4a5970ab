package output

import (
	"encoding/json"
	"io"

	"github.com/sdejongh/artifactsync/pkg/models"
)

// JSONFormatter renders results as JSON for automation and scripting
type JSONFormatter struct{}

// NewJSONFormatter creates a JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// jsonFileDiff is the wire shape of a single file diff
type jsonFileDiff struct {
	Path         string `json:"path"`
	Status       string `json:"status"`
	IsBinary     bool   `json:"is_binary,omitempty"`
	LinesAdded   int    `json:"lines_added,omitempty"`
	LinesRemoved int    `json:"lines_removed,omitempty"`
	UnifiedDiff  string `json:"unified_diff,omitempty"`
}

// jsonDiffResult is the wire shape of a tree comparison
type jsonDiffResult struct {
	Files  []jsonFileDiff     `json:"files"`
	Errors []models.FileError `json:"errors,omitempty"`
	Stats  models.DiffStats   `json:"stats"`
}

// DiffResult renders a tree comparison
func (f *JSONFormatter) DiffResult(w io.Writer, result *models.DiffResult, verbose bool) error {
	out := jsonDiffResult{Errors: result.Errors, Stats: result.Stats}
	for _, group := range [][]models.FileDiff{result.Added, result.Removed, result.Modified} {
		for _, d := range group {
			fd := jsonFileDiff{
				Path:         d.Path,
				Status:       string(d.Status),
				IsBinary:     d.IsBinary,
				LinesAdded:   d.LinesAdded,
				LinesRemoved: d.LinesRemoved,
			}
			if verbose {
				fd.UnifiedDiff = d.UnifiedDiff
			}
			out.Files = append(out.Files, fd)
		}
	}
	return encode(w, out)
}

// jsonConflict is the wire shape of a conflict; payloads are omitted
type jsonConflict struct {
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	IsBinary bool   `json:"is_binary,omitempty"`
}

// jsonMergeResult is the wire shape of a merge outcome
type jsonMergeResult struct {
	OperationID string            `json:"operation_id"`
	Success     bool              `json:"success"`
	AutoMerged  []string          `json:"auto_merged"`
	Conflicts   []jsonConflict    `json:"conflicts,omitempty"`
	Stats       models.MergeStats `json:"stats"`
	OutputRoot  string            `json:"output_root"`
	RolledBack  bool              `json:"rolled_back,omitempty"`
}

// MergeResult renders a merge outcome
func (f *JSONFormatter) MergeResult(w io.Writer, result *models.MergeResult) error {
	out := jsonMergeResult{
		OperationID: result.OperationID,
		Success:     result.Success,
		AutoMerged:  result.AutoMerged,
		Stats:       result.Stats,
		OutputRoot:  result.OutputRoot,
		RolledBack:  result.RolledBack,
	}
	for _, c := range result.Conflicts {
		out.Conflicts = append(out.Conflicts, jsonConflict{
			Path:     c.Path,
			Kind:     string(c.Kind),
			IsBinary: c.IsBinary,
		})
	}
	return encode(w, out)
}

// jsonSyncStatus is the wire shape of a sync check
type jsonSyncStatus struct {
	ArtifactID   string `json:"artifact_id"`
	State        string `json:"state"`
	HasDrift     bool   `json:"has_drift"`
	HasUpdate    bool   `json:"has_update"`
	CurrentHash  string `json:"current_hash"`
	Recommended  string `json:"recommended,omitempty"`
	ConflictKind string `json:"conflict_kind,omitempty"`
}

// SyncStatus renders a sync check
func (f *JSONFormatter) SyncStatus(w io.Writer, status *models.SyncStatus) error {
	out := jsonSyncStatus{
		ArtifactID:  status.ArtifactID,
		State:       string(status.State),
		HasDrift:    status.HasDrift,
		HasUpdate:   status.HasUpdate,
		CurrentHash: status.CurrentHash,
		Recommended: string(status.Recommended),
	}
	if status.ConflictKind != nil {
		out.ConflictKind = string(*status.ConflictKind)
	}
	return encode(w, out)
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

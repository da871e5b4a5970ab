package sync

import (
	"context"
	"fmt"
	stdsync "sync"
	"time"

	"github.com/sdejongh/artifactsync/pkg/hash"
	"github.com/sdejongh/artifactsync/pkg/logging"
	"github.com/sdejongh/artifactsync/pkg/merge"
	"github.com/sdejongh/artifactsync/pkg/models"
	"github.com/sdejongh/artifactsync/pkg/state"
	"github.com/sdejongh/artifactsync/pkg/tree"
)

// DefaultLargeChangeThreshold is the changeset size above which a merge is
// routed to manual review even without conflicts.
const DefaultLargeChangeThreshold = 20

// Preview is the detailed result of a sync inspection
type Preview struct {
	// Status is the hash-level check with the full recommendation filled in
	Status *models.SyncStatus

	// Diff compares the project copy against the collection copy
	Diff *models.DiffResult

	// ThreeWay classifies every changed path for mergeability
	ThreeWay *models.ThreeWayDiffResult
}

// Coordinator orchestrates check, preview, pull and push across the diff,
// classification, merge and persistence layers. Operations on the same
// artifact are serialized; different artifacts are independent.
type Coordinator struct {
	differ     *tree.Differ
	classifier *merge.Classifier
	executor   *merge.Executor
	detector   *Detector
	store      state.Store
	hasher     hash.Hasher
	matcher    *tree.Matcher
	logger     logging.Logger

	// LargeChangeThreshold routes oversized changesets to manual review
	LargeChangeThreshold int

	mu    stdsync.Mutex
	locks map[string]*stdsync.Mutex
}

// NewCoordinator wires a coordinator from its collaborators
func NewCoordinator(
	differ *tree.Differ,
	classifier *merge.Classifier,
	executor *merge.Executor,
	detector *Detector,
	store state.Store,
	hasher hash.Hasher,
	matcher *tree.Matcher,
	logger logging.Logger,
) *Coordinator {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Coordinator{
		differ:               differ,
		classifier:           classifier,
		executor:             executor,
		detector:             detector,
		store:                store,
		hasher:               hasher,
		matcher:              matcher,
		logger:               logger,
		LargeChangeThreshold: DefaultLargeChangeThreshold,
		locks:                make(map[string]*stdsync.Mutex),
	}
}

// lockArtifact serializes operations per artifact ID
func (c *Coordinator) lockArtifact(id string) func() {
	c.mu.Lock()
	lock, ok := c.locks[id]
	if !ok {
		lock = &stdsync.Mutex{}
		c.locks[id] = lock
	}
	c.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// Check derives the artifact's deployment state from hashes alone
func (c *Coordinator) Check(ctx context.Context, art Artifact) (*models.SyncStatus, error) {
	if err := art.Validate(); err != nil {
		return nil, err
	}
	defer c.lockArtifact(art.ID)()

	record, err := c.store.Load(ctx, art.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load deployment record for %s: %w", art.ID, err)
	}

	status, err := c.detector.Check(ctx, art, record)
	if err != nil {
		return nil, err
	}

	c.logger.Debug(ctx, "sync check", logging.Fields{
		"artifact": art.ID,
		"state":    string(status.State),
	})

	return status, nil
}

// Preview runs the full diff and three-way classification and completes
// the strategy recommendation for drifted artifacts.
func (c *Coordinator) Preview(ctx context.Context, art Artifact) (*Preview, error) {
	if err := art.Validate(); err != nil {
		return nil, err
	}
	defer c.lockArtifact(art.ID)()

	record, err := c.store.Load(ctx, art.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load deployment record for %s: %w", art.ID, err)
	}

	status, err := c.detector.Check(ctx, art, record)
	if err != nil {
		return nil, err
	}

	diff, err := c.differ.DiffTrees(ctx, art.ProjectPath, art.CollectionPath)
	if err != nil {
		return nil, err
	}

	basePath, fallback := c.basePath(art)
	threeWay, err := c.classifier.Classify(ctx, basePath, art.ProjectPath, art.CollectionPath,
		merge.ClassifyOptions{BaseFallback: fallback})
	if err != nil {
		return nil, err
	}

	status.Recommended = c.recommend(status, threeWay)
	if len(threeWay.Conflicts) > 0 {
		kind := threeWay.Conflicts[0].Kind
		status.ConflictKind = &kind
	}

	return &Preview{Status: status, Diff: diff, ThreeWay: threeWay}, nil
}

// recommend applies the strategy decision tree in priority order
func (c *Coordinator) recommend(status *models.SyncStatus, threeWay *models.ThreeWayDiffResult) models.Recommendation {
	if !status.HasDrift {
		return models.RecommendOverwrite
	}

	threshold := c.LargeChangeThreshold
	if threshold <= 0 {
		threshold = DefaultLargeChangeThreshold
	}

	if threeWay.HasConflicts() || threeWay.TotalFiles() > threshold {
		return models.RecommendManualReview
	}
	return models.RecommendMerge
}

// Pull merges collection changes into the project copy. Base is the
// recorded deployed snapshot; local is the project copy; remote is the
// collection copy; output is the project copy.
func (c *Coordinator) Pull(ctx context.Context, art Artifact) (*models.MergeResult, error) {
	return c.sync(ctx, art, false)
}

// Push merges project changes back into the collection copy; sides are
// reversed relative to Pull and the output is the collection copy.
func (c *Coordinator) Push(ctx context.Context, art Artifact) (*models.MergeResult, error) {
	return c.sync(ctx, art, true)
}

func (c *Coordinator) sync(ctx context.Context, art Artifact, push bool) (*models.MergeResult, error) {
	if err := art.Validate(); err != nil {
		return nil, err
	}
	defer c.lockArtifact(art.ID)()

	record, err := c.store.Load(ctx, art.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load deployment record for %s: %w", art.ID, err)
	}

	basePath, fallback := c.basePath(art)
	if fallback {
		c.logger.Warn(ctx, "no ancestor snapshot; conflict detection degraded to diff fidelity",
			logging.Fields{"artifact": art.ID})
	}

	local, remote, output := art.ProjectPath, art.CollectionPath, art.ProjectPath
	if push {
		local, remote, output = art.CollectionPath, art.ProjectPath, art.CollectionPath
	}

	threeWay, err := c.classifier.Classify(ctx, basePath, local, remote,
		merge.ClassifyOptions{BaseFallback: fallback})
	if err != nil {
		return nil, err
	}
	for _, fe := range threeWay.Errors {
		c.logger.Warn(ctx, "file skipped: unreadable during classification",
			logging.Fields{"artifact": art.ID, "path": fe.Path, "error": fe.Message})
	}

	result, err := c.executor.Apply(ctx, threeWay, basePath, local, remote, output)
	if err != nil {
		return result, err
	}

	if result.Success {
		if err := c.updateRecord(ctx, art, record); err != nil {
			return result, err
		}
	}

	c.logger.Info(ctx, "sync applied", logging.Fields{
		"artifact":  art.ID,
		"operation": result.OperationID,
		"push":      push,
		"merged":    len(result.AutoMerged),
		"conflicts": len(result.Conflicts),
	})

	return result, nil
}

// updateRecord rewrites the deployment record after a fully successful sync
func (c *Coordinator) updateRecord(ctx context.Context, art Artifact, record *models.DeployedArtifactRecord) error {
	projectHash, err := tree.Hash(ctx, art.ProjectPath, c.matcher, c.hasher)
	if err != nil {
		return fmt.Errorf("failed to hash project copy: %w", err)
	}

	record.DeployedHash = projectHash
	if art.CollectionVersion != "" {
		record.DeployedVersion = art.CollectionVersion
	}
	record.DeployedAt = time.Now()

	if err := c.store.Save(ctx, record); err != nil {
		return fmt.Errorf("failed to save deployment record: %w", err)
	}
	return nil
}

// basePath resolves the merge base, falling back to the project copy when
// no ancestor snapshot is tracked.
func (c *Coordinator) basePath(art Artifact) (string, bool) {
	if art.HasBase() {
		return art.BasePath, false
	}
	return art.ProjectPath, true
}

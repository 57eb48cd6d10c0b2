package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/posture-cli/internal/core/domain"
	"github.com/custodia-labs/posture-cli/internal/core/ports/driven"
	"github.com/custodia-labs/posture-cli/internal/core/ports/driving"
	"github.com/custodia-labs/posture-cli/internal/logger"
)

// Ensure RunOrchestrator implements the interface.
var _ driving.AssessmentRunner = (*RunOrchestrator)(nil)

// cancelledMessage is the run error recorded for a cancelled run.
const cancelledMessage = "Cancelled by user"

// DefaultTopK is the default number of evidence chunks retrieved per
// criterion.
const DefaultTopK = 5

// RunOrchestrator drives the evidence pipeline for one assessment at a
// time per assessment id: retrieval, classification, scoring, finding
// generation, and rollup. Safeguards and criteria are processed
// sequentially; the only suspension points are the retrieval and
// classification network calls.
type RunOrchestrator struct {
	store      driven.AssessmentStore
	retriever  driven.EvidenceRetriever
	classifier driven.EvidenceClassifier
	findings   *FindingGenerator
	topK       int
	registry   *runRegistry
}

// NewRunOrchestrator creates a run orchestrator. All collaborators are
// required; topK <= 0 uses DefaultTopK.
func NewRunOrchestrator(
	store driven.AssessmentStore,
	retriever driven.EvidenceRetriever,
	classifier driven.EvidenceClassifier,
	topK int,
) *RunOrchestrator {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &RunOrchestrator{
		store:      store,
		retriever:  retriever,
		classifier: classifier,
		findings:   NewFindingGenerator(store),
		topK:       topK,
		registry:   newRunRegistry(),
	}
}

// Run executes the pipeline for one assessment and blocks until it
// reaches a terminal state.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (o *RunOrchestrator) Run(ctx context.Context, assessmentID string, opts driving.RunOptions) (*driving.RunResult, error) {
	if o.retriever == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, domain.ErrRetrievalUnavailable)
	}
	if o.classifier == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, domain.ErrClassifierUnavailable)
	}

	// 1. Load the assessment
	assessment, err := o.store.GetAssessment(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("get assessment: %w", err)
	}

	// 2. Concurrency guard: one active run per assessment id
	if assessment.RunStatus == domain.RunRunning {
		return nil, domain.ErrRunInProgress
	}
	handle, ok := o.registry.begin(assessmentID)
	if !ok {
		return nil, domain.ErrRunInProgress
	}
	defer o.registry.end(assessmentID)

	// 3. Mark running
	assessment.RunStatus = domain.RunRunning
	assessment.RunProgress = 0
	assessment.RunStartedAt = time.Now().UTC()
	assessment.RunCompletedAt = time.Time{}
	assessment.RunError = ""
	if err := o.store.UpdateAssessment(ctx, assessment); err != nil {
		return nil, fmt.Errorf("mark running: %w", err)
	}
	emit(opts.Progress, driving.ProgressEvent{Phase: driving.PhaseStarting, PercentComplete: 0})

	logger.Section("Assessment Run")
	logger.Info("Starting run for assessment %s", assessmentID)

	// 4. Load safeguards
	safeguards, err := o.store.GetSafeguardsByAssessment(ctx, assessmentID)
	if err != nil {
		o.failRun(ctx, assessment, fmt.Sprintf("load safeguards: %v", err))
		return nil, fmt.Errorf("load safeguards: %w", err)
	}
	if len(safeguards) == 0 {
		o.failRun(ctx, assessment, domain.ErrNoSafeguards.Error())
		return nil, domain.ErrNoSafeguards
	}

	partition := domain.Partition(assessment.CompanyID)
	if opts.CompanyID != "" {
		// Administrative re-run against another tenant's partition.
		partition = domain.Partition(opts.CompanyID)
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = o.topK
	}

	// 5. Process safeguards sequentially; one failure never aborts the run
	var runErrors []string
	processed := 0

	for i := range safeguards {
		if handle.cancelled.Load() {
			logger.Warn("Run for assessment %s cancelled after %d safeguards", assessmentID, processed)
			o.failRun(ctx, assessment, cancelledMessage)
			return &driving.RunResult{
				Status:              domain.RunFailed,
				SafeguardsProcessed: processed,
				Errors:              runErrors,
			}, nil
		}

		sg := &safeguards[i]
		if err := o.processSafeguard(ctx, sg, partition, topK); err != nil {
			msg := fmt.Sprintf("safeguard %s: %v", sg.CatalogID, err)
			logger.Warn("%s", msg)
			runErrors = append(runErrors, msg)
		} else {
			processed++
		}

		assessment.RunProgress = (i + 1) * 100 / len(safeguards)
		if err := o.store.UpdateAssessment(ctx, assessment); err != nil {
			logger.Warn("Failed to persist progress: %v", err)
		}
		emit(opts.Progress, driving.ProgressEvent{
			Phase:           driving.PhaseProcessing,
			PercentComplete: assessment.RunProgress,
		})
	}

	// 6. Rollup and terminal state
	updated, err := o.store.GetSafeguardsByAssessment(ctx, assessmentID)
	if err != nil {
		o.failRun(ctx, assessment, fmt.Sprintf("reload safeguards: %v", err))
		return nil, fmt.Errorf("reload safeguards: %w", err)
	}
	stats := CalculateAssessmentStats(updated)
	assessment.MaturityScore = stats.MaturityScore
	assessment.ControlsCovered = stats.ControlsCovered
	assessment.ControlsPartial = stats.ControlsPartial
	assessment.ControlsGap = stats.ControlsGap
	assessment.TotalControls = stats.TotalControls

	assessment.RunStatus = domain.RunCompleted
	if len(runErrors) > 0 {
		assessment.RunStatus = domain.RunCompletedWithErrors
	}
	assessment.RunProgress = 100
	assessment.RunCompletedAt = time.Now().UTC()
	if err := o.store.UpdateAssessment(ctx, assessment); err != nil {
		return nil, fmt.Errorf("persist run result: %w", err)
	}
	emit(opts.Progress, driving.ProgressEvent{Phase: driving.PhaseCompleted, PercentComplete: 100})

	logger.Info("Run complete: %d safeguards, %d errors, maturity %d",
		processed, len(runErrors), stats.MaturityScore)

	return &driving.RunResult{
		Status:              assessment.RunStatus,
		SafeguardsProcessed: processed,
		Errors:              runErrors,
	}, nil
}

// Start begins a run asynchronously. Not-found and conflict guards are
// checked synchronously so callers get immediate feedback; the pipeline
// itself runs on a background goroutine.
func (o *RunOrchestrator) Start(ctx context.Context, assessmentID string, opts driving.RunOptions) error {
	assessment, err := o.store.GetAssessment(ctx, assessmentID)
	if err != nil {
		return fmt.Errorf("get assessment: %w", err)
	}
	if assessment.RunStatus == domain.RunRunning || o.registry.active(assessmentID) {
		return domain.ErrRunInProgress
	}

	go func() {
		// The run outlives the caller's request context.
		if _, err := o.Run(context.Background(), assessmentID, opts); err != nil {
			logger.Warn("Background run for %s failed: %v", assessmentID, err)
		}
	}()
	return nil
}

// Status returns the run-field projection for an assessment, or nil
// (with a nil error) if the assessment does not exist.
func (o *RunOrchestrator) Status(ctx context.Context, assessmentID string) (*driving.RunStatusInfo, error) {
	assessment, err := o.store.GetAssessment(ctx, assessmentID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get assessment: %w", err)
	}

	return &driving.RunStatusInfo{
		Status:      assessment.RunStatus,
		Progress:    assessment.RunProgress,
		StartedAt:   assessment.RunStartedAt,
		CompletedAt: assessment.RunCompletedAt,
		Error:       assessment.RunError,
	}, nil
}

// Cancel flags a running assessment for cooperative cancellation and
// records the cancelled state. Returns false if no run is active.
func (o *RunOrchestrator) Cancel(ctx context.Context, assessmentID string) (bool, error) {
	assessment, err := o.store.GetAssessment(ctx, assessmentID)
	if err != nil {
		return false, fmt.Errorf("get assessment: %w", err)
	}
	if assessment.RunStatus != domain.RunRunning {
		return false, nil
	}

	o.registry.cancel(assessmentID)

	assessment.RunStatus = domain.RunFailed
	assessment.RunError = cancelledMessage
	assessment.RunCompletedAt = time.Now().UTC()
	if err := o.store.UpdateAssessment(ctx, assessment); err != nil {
		return false, fmt.Errorf("persist cancellation: %w", err)
	}
	return true, nil
}

// Reset returns an assessment's run fields to their idle defaults.
// Returns false if a run is active.
func (o *RunOrchestrator) Reset(ctx context.Context, assessmentID string) (bool, error) {
	assessment, err := o.store.GetAssessment(ctx, assessmentID)
	if err != nil {
		return false, fmt.Errorf("get assessment: %w", err)
	}
	if assessment.RunStatus == domain.RunRunning || o.registry.active(assessmentID) {
		return false, nil
	}

	assessment.ResetRun()
	if err := o.store.UpdateAssessment(ctx, assessment); err != nil {
		return false, fmt.Errorf("persist reset: %w", err)
	}
	return true, nil
}

// processSafeguard runs the retrieval-classification-scoring pipeline
// for one safeguard and persists the results.
func (o *RunOrchestrator) processSafeguard(ctx context.Context, sg *domain.Safeguard, partition string, topK int) error {
	criteria, err := o.store.GetCriteriaBySafeguard(ctx, sg.ID)
	if err != nil {
		return fmt.Errorf("load criteria: %w", err)
	}

	logger.Debug("Processing safeguard %s (%d criteria)", sg.CatalogID, len(criteria))

	for i := range criteria {
		if err := o.processCriterion(ctx, &criteria[i], partition, topK); err != nil {
			return fmt.Errorf("criterion %s: %w", criteria[i].ID, err)
		}
	}

	score := CalculateSafeguardScore(criteria)
	sg.Score = score.Score
	sg.Status = score.Status
	sg.ManualOverride = false
	if err := o.store.UpdateSafeguard(ctx, sg); err != nil {
		return fmt.Errorf("update safeguard: %w", err)
	}
	logger.Debug("Safeguard %s scored %d (%s)", sg.CatalogID, sg.Score, sg.Status)

	if sg.Status == domain.SafeguardGap || sg.Status == domain.SafeguardPartial {
		if _, err := o.findings.Generate(ctx, sg); err != nil {
			return fmt.Errorf("generate finding: %w", err)
		}
	}
	return nil
}

// processCriterion retrieves evidence for one criterion, classifies it,
// and persists the outcome. Retrieval failure degrades to an empty
// chunk list; classification failure degrades to a synthetic
// insufficient result. Neither fails the criterion.
func (o *RunOrchestrator) processCriterion(ctx context.Context, c *domain.Criterion, partition string, topK int) error {
	chunks, err := o.retriever.Retrieve(ctx, c.Text, driven.RetrieveOptions{
		Partition: partition,
		TopK:      topK,
		Rerank:    true,
	})
	if err != nil {
		logger.Warn("Retrieval failed for criterion %s, treating as no evidence: %v", c.ID, err)
		chunks = nil
	}

	result, err := o.classifier.Classify(ctx, c.Text, chunks)
	if err != nil {
		logger.Warn("Classification failed for criterion %s: %v", c.ID, err)
		result = &domain.ClassificationResult{
			Status:     domain.CriterionInsufficient,
			Confidence: 0,
			Reasoning:  fmt.Sprintf("Classification unavailable: %v", err),
		}
	}

	c.Status = result.Status
	c.Confidence = result.Confidence
	c.Reasoning = result.Reasoning
	c.Citation = nil
	if (result.Status == domain.CriterionMet || result.Status == domain.CriterionPartial) && result.Chunk != nil {
		c.Citation = &domain.Citation{
			DocumentID:   result.Chunk.DocumentID,
			DocumentName: result.Chunk.DocumentName,
			Page:         result.Chunk.Page,
			Excerpt:      result.Excerpt,
		}
	}

	if err := o.store.UpdateCriterion(ctx, c); err != nil {
		return fmt.Errorf("update criterion: %w", err)
	}
	return nil
}

// failRun records a fatal run failure.
func (o *RunOrchestrator) failRun(ctx context.Context, assessment *domain.Assessment, message string) {
	assessment.RunStatus = domain.RunFailed
	assessment.RunError = message
	assessment.RunCompletedAt = time.Now().UTC()
	if err := o.store.UpdateAssessment(ctx, assessment); err != nil {
		logger.Warn("Failed to persist run failure: %v", err)
	}
}

// emit invokes the progress callback when one is set.
func emit(fn driving.ProgressFunc, ev driving.ProgressEvent) {
	if fn != nil {
		fn(ev)
	}
}

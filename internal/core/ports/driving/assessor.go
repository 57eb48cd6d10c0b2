package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/posture-cli/internal/core/domain"
)

// ProgressPhase identifies where in the pipeline a progress event was
// emitted.
type ProgressPhase string

const (
	// PhaseStarting is emitted once at run start.
	PhaseStarting ProgressPhase = "starting"

	// PhaseProcessing is emitted after each safeguard completes.
	PhaseProcessing ProgressPhase = "processing"

	// PhaseCompleted is emitted once when the run reaches a terminal
	// state.
	PhaseCompleted ProgressPhase = "completed"
)

// ProgressEvent reports run progress to the caller.
type ProgressEvent struct {
	// Phase is the pipeline phase.
	Phase ProgressPhase

	// PercentComplete is the run completion percentage (0-100).
	PercentComplete int
}

// ProgressFunc receives progress events during a run. Invoked from the
// run's goroutine; implementations must be fast and must not block.
type ProgressFunc func(ProgressEvent)

// RunOptions configures a single assessment run.
type RunOptions struct {
	// CompanyID overrides the assessment's own tenant for evidence
	// retrieval. Used for administrative re-runs against another
	// partition. Empty means use the assessment's tenant.
	CompanyID string

	// TopK is the number of evidence chunks retrieved per criterion.
	// Zero uses the runner's default.
	TopK int

	// Progress receives progress events. Optional.
	Progress ProgressFunc
}

// RunResult summarises a finished run.
type RunResult struct {
	// Status is the terminal run status.
	Status domain.RunStatus

	// SafeguardsProcessed counts safeguards that completed processing.
	SafeguardsProcessed int

	// Errors holds one message per failed safeguard, each naming the
	// safeguard's catalog id.
	Errors []string
}

// RunStatusInfo is a read-only projection of an assessment's run fields.
type RunStatusInfo struct {
	// Status is the current run status.
	Status domain.RunStatus

	// Progress is the run completion percentage (0-100).
	Progress int

	// StartedAt is when the current or last run started.
	StartedAt time.Time

	// CompletedAt is when the last run reached a terminal state.
	CompletedAt time.Time

	// Error is the fatal error message for a failed run.
	Error string
}

// AssessmentRunner drives the evidence pipeline for assessments and
// exposes the run control surface.
type AssessmentRunner interface {
	// Run executes the pipeline for one assessment and blocks until it
	// reaches a terminal state. Returns domain.ErrNotFound if the
	// assessment does not exist, domain.ErrRunInProgress if a run is
	// already active, and domain.ErrNoSafeguards if the assessment has
	// no safeguards.
	Run(ctx context.Context, assessmentID string, opts RunOptions) (*RunResult, error)

	// Start begins a run asynchronously. The not-found and conflict
	// guards are checked synchronously; the pipeline itself runs on a
	// background goroutine. Poll Status for completion.
	Start(ctx context.Context, assessmentID string, opts RunOptions) error

	// Status returns the run-field projection for an assessment, or
	// nil (with a nil error) if the assessment does not exist.
	Status(ctx context.Context, assessmentID string) (*RunStatusInfo, error)

	// Cancel flags a running assessment for cooperative cancellation.
	// Returns false if no run is active.
	Cancel(ctx context.Context, assessmentID string) (bool, error)

	// Reset returns an assessment's run fields to their idle defaults.
	// Returns false if a run is active.
	Reset(ctx context.Context, assessmentID string) (bool, error)
}

package domain

import "time"

// RunStatus is the lifecycle state of an assessment run.
type RunStatus string

const (
	// RunIdle means no run has started, or the run fields were reset.
	RunIdle RunStatus = "idle"

	// RunRunning means a run is currently in progress.
	RunRunning RunStatus = "running"

	// RunCompleted means the last run finished with no safeguard errors.
	RunCompleted RunStatus = "completed"

	// RunCompletedWithErrors means the last run finished, but one or more
	// safeguards failed to process and were skipped.
	RunCompletedWithErrors RunStatus = "completed_with_errors"

	// RunFailed means the last run aborted before completing.
	RunFailed RunStatus = "failed"
)

// Terminal reports whether the status is a terminal run state.
func (s RunStatus) Terminal() bool {
	return s == RunCompleted || s == RunCompletedWithErrors || s == RunFailed
}

// Assessment represents one evaluation of a tenant's compliance posture
// against the control catalog. It owns the run state machine fields and
// the rollup statistics computed from its safeguards.
type Assessment struct {
	// ID is the unique identifier for the assessment.
	ID string

	// CompanyID is the owning tenant. It determines the evidence
	// partition queried during a run unless overridden per run.
	CompanyID string

	// Name is the human-readable name for this assessment.
	Name string

	// RunStatus is the current state of the run state machine.
	RunStatus RunStatus

	// RunProgress is the run completion percentage (0-100).
	RunProgress int

	// RunStartedAt is when the current or last run started.
	RunStartedAt time.Time

	// RunCompletedAt is when the last run reached a terminal state.
	RunCompletedAt time.Time

	// RunError holds the fatal error message for a failed run.
	RunError string

	// MaturityScore is the rounded mean of all safeguard scores (0-100).
	MaturityScore int

	// ControlsCovered counts safeguards with status covered.
	ControlsCovered int

	// ControlsPartial counts safeguards with status partial.
	ControlsPartial int

	// ControlsGap counts safeguards with status gap.
	ControlsGap int

	// TotalControls is the number of safeguards in this assessment.
	TotalControls int

	// CreatedAt is when the assessment was instantiated from the catalog.
	CreatedAt time.Time

	// UpdatedAt is when the assessment was last updated.
	UpdatedAt time.Time
}

// ResetRun returns the run fields to their idle defaults. Rollup
// statistics are preserved; only the state machine fields clear.
func (a *Assessment) ResetRun() {
	a.RunStatus = RunIdle
	a.RunProgress = 0
	a.RunStartedAt = time.Time{}
	a.RunCompletedAt = time.Time{}
	a.RunError = ""
}

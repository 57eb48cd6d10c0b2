package domain

import "time"

// Severity grades a finding's urgency.
type Severity string

const (
	// SeverityHigh is assigned to gap safeguards.
	SeverityHigh Severity = "high"

	// SeverityMedium is assigned to partial safeguards.
	SeverityMedium Severity = "medium"
)

// FindingStatus is the remediation workflow state of a finding.
type FindingStatus string

const (
	// FindingOpen is the default state for a newly generated finding.
	FindingOpen FindingStatus = "open"

	// FindingResolved means the gap has been remediated.
	FindingResolved FindingStatus = "resolved"

	// FindingAccepted means the risk was accepted without remediation.
	FindingAccepted FindingStatus = "accepted"
)

// Finding is a tracked remediation item generated for a gap or partial
// safeguard. Findings are keyed by (AssessmentID, CatalogID) so repeated
// runs never duplicate them.
type Finding struct {
	// ID is the unique identifier for the finding.
	ID string

	// AssessmentID links to the owning Assessment.
	AssessmentID string

	// CatalogID is the catalog identifier of the safeguard that
	// produced this finding. One finding per catalog id per assessment.
	CatalogID string

	// Title is a human-readable summary referencing the control.
	Title string

	// Description explains the gap and its coverage level.
	Description string

	// Severity is high for gap safeguards, medium for partial.
	Severity Severity

	// Status is the remediation workflow state.
	Status FindingStatus

	// CreatedAt is when the finding was generated.
	CreatedAt time.Time
}

package domain

// SafeguardStatus is the coverage classification of a safeguard.
type SafeguardStatus string

const (
	// SafeguardCovered means the evidence substantially satisfies the control.
	SafeguardCovered SafeguardStatus = "covered"

	// SafeguardPartial means the evidence satisfies the control in part.
	SafeguardPartial SafeguardStatus = "partial"

	// SafeguardGap means the evidence does not satisfy the control.
	SafeguardGap SafeguardStatus = "gap"
)

// Safeguard is one control from the fixed catalog, instantiated for a
// single assessment. Score and status are derived from its criteria by
// the scoring engine; the manual override path is the only exception.
type Safeguard struct {
	// ID is the unique identifier for this safeguard row.
	ID string

	// AssessmentID links to the owning Assessment.
	AssessmentID string

	// CatalogID is the stable external control identifier (e.g. "1.1").
	CatalogID string

	// Name is the control title from the catalog.
	Name string

	// Description is the control description from the catalog.
	Description string

	// Score is the computed coverage score (0-100).
	Score int

	// Status is the coverage classification derived from the score.
	Status SafeguardStatus

	// ManualOverride marks a safeguard whose score was set by hand
	// rather than by the scoring engine.
	ManualOverride bool
}

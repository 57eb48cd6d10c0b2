package domain

// CriterionStatus is the evidence classification for a single criterion.
type CriterionStatus string

const (
	// CriterionMet means the evidence fully satisfies the criterion.
	CriterionMet CriterionStatus = "met"

	// CriterionPartial means the evidence partially satisfies the criterion.
	CriterionPartial CriterionStatus = "partial"

	// CriterionNotMet means the evidence contradicts or fails the criterion.
	CriterionNotMet CriterionStatus = "not_met"

	// CriterionInsufficient means no evidence was found, or the evidence
	// could not be evaluated.
	CriterionInsufficient CriterionStatus = "insufficient"
)

// ValidCriterionStatus reports whether s is one of the four recognised
// criterion statuses.
func ValidCriterionStatus(s CriterionStatus) bool {
	switch s {
	case CriterionMet, CriterionPartial, CriterionNotMet, CriterionInsufficient:
		return true
	}
	return false
}

// Citation points at the evidence passage that supports a criterion's
// classification. Present only for met or partial criteria.
type Citation struct {
	// DocumentID identifies the source document.
	DocumentID string

	// DocumentName is the display name of the source document.
	DocumentName string

	// Page is the page number within the document, if known.
	Page int

	// Section is the section heading, if known.
	Section string

	// Excerpt is the supporting passage, truncated for display.
	Excerpt string
}

// Criterion is one granular, independently gradable evidence requirement
// within a safeguard.
type Criterion struct {
	// ID is the unique identifier for this criterion row.
	ID string

	// SafeguardID links to the owning Safeguard.
	SafeguardID string

	// Text is the evidence requirement evaluated against the corpus.
	Text string

	// Status is the current classification of this criterion.
	Status CriterionStatus

	// Confidence is the classifier's confidence in the status (0-1).
	Confidence float64

	// Citation is the supporting evidence reference, when one exists.
	Citation *Citation

	// Reasoning is the classifier's explanation for the status.
	Reasoning string
}

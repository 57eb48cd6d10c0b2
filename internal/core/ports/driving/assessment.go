package driving

import (
	"context"

	"github.com/custodia-labs/posture-cli/internal/core/domain"
)

// AssessmentService manages assessment lifecycle outside of runs:
// instantiation from the catalog, listing, manual overrides, and
// finding access.
type AssessmentService interface {
	// Create instantiates a new assessment for a tenant from the fixed
	// catalog, including its safeguards and criteria.
	Create(ctx context.Context, companyID, name string) (*domain.Assessment, error)

	// Get retrieves an assessment by ID.
	Get(ctx context.Context, id string) (*domain.Assessment, error)

	// List returns all assessments.
	List(ctx context.Context) ([]domain.Assessment, error)

	// Safeguards returns an assessment's safeguards in catalog order.
	Safeguards(ctx context.Context, assessmentID string) ([]domain.Safeguard, error)

	// Override sets a safeguard's score by hand. The status is derived
	// from the score thresholds; this is the only path that bypasses
	// the scoring engine.
	Override(ctx context.Context, assessmentID, catalogID string, score int) (*domain.Safeguard, error)

	// Findings returns an assessment's findings.
	Findings(ctx context.Context, assessmentID string) ([]domain.Finding, error)
}

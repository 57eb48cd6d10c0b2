package driven

import (
	"context"

	"github.com/custodia-labs/posture-cli/internal/core/domain"
)

// AssessmentStore persists assessments and everything owned by them.
// The run orchestrator performs all reads and writes through this
// interface so the pipeline stays storage-agnostic.
type AssessmentStore interface {
	// SaveAssessment stores a new assessment.
	SaveAssessment(ctx context.Context, a *domain.Assessment) error

	// GetAssessment retrieves an assessment by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetAssessment(ctx context.Context, id string) (*domain.Assessment, error)

	// UpdateAssessment stores updated assessment fields.
	UpdateAssessment(ctx context.Context, a *domain.Assessment) error

	// ListAssessments returns all assessments, newest first.
	ListAssessments(ctx context.Context) ([]domain.Assessment, error)

	// SaveSafeguards stores the safeguards for an assessment.
	SaveSafeguards(ctx context.Context, safeguards []domain.Safeguard) error

	// GetSafeguardsByAssessment returns an assessment's safeguards in
	// catalog order.
	GetSafeguardsByAssessment(ctx context.Context, assessmentID string) ([]domain.Safeguard, error)

	// UpdateSafeguard stores updated safeguard fields.
	UpdateSafeguard(ctx context.Context, s *domain.Safeguard) error

	// SaveCriteria stores the criteria for a safeguard.
	SaveCriteria(ctx context.Context, criteria []domain.Criterion) error

	// GetCriteriaBySafeguard returns a safeguard's criteria.
	GetCriteriaBySafeguard(ctx context.Context, safeguardID string) ([]domain.Criterion, error)

	// UpdateCriterion stores updated criterion fields.
	UpdateCriterion(ctx context.Context, c *domain.Criterion) error

	// GetFindingsByAssessment returns an assessment's findings.
	GetFindingsByAssessment(ctx context.Context, assessmentID string) ([]domain.Finding, error)

	// CreateFinding stores a new finding.
	CreateFinding(ctx context.Context, f *domain.Finding) error
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/posture-cli/internal/core/domain"
	"github.com/custodia-labs/posture-cli/internal/core/ports/driven"
	"github.com/custodia-labs/posture-cli/internal/core/ports/driving"
)

// Ensure AssessmentService implements the interface.
var _ driving.AssessmentService = (*AssessmentService)(nil)

// AssessmentService manages assessment lifecycle outside of runs.
type AssessmentService struct {
	store driven.AssessmentStore
}

// NewAssessmentService creates an assessment service.
func NewAssessmentService(store driven.AssessmentStore) *AssessmentService {
	return &AssessmentService{store: store}
}

// Create instantiates a new assessment from the fixed catalog. One
// safeguard is created per catalog control and one criterion per
// evidence requirement, all starting unassessed.
func (s *AssessmentService) Create(ctx context.Context, companyID, name string) (*domain.Assessment, error) {
	if companyID == "" {
		return nil, fmt.Errorf("%w: company id is required", domain.ErrInvalidInput)
	}
	if name == "" {
		name = fmt.Sprintf("Assessment %s", time.Now().UTC().Format("2006-01-02"))
	}

	controls := domain.Catalog()
	now := time.Now().UTC()
	assessment := domain.Assessment{
		ID:            uuid.NewString(),
		CompanyID:     companyID,
		Name:          name,
		RunStatus:     domain.RunIdle,
		TotalControls: len(controls),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.SaveAssessment(ctx, &assessment); err != nil {
		return nil, fmt.Errorf("save assessment: %w", err)
	}

	safeguards := make([]domain.Safeguard, 0, len(controls))
	var criteria []domain.Criterion
	for _, control := range controls {
		sg := domain.Safeguard{
			ID:           uuid.NewString(),
			AssessmentID: assessment.ID,
			CatalogID:    control.ID,
			Name:         control.Name,
			Description:  control.Description,
			Status:       domain.SafeguardGap,
		}
		safeguards = append(safeguards, sg)
		for _, text := range control.Criteria {
			criteria = append(criteria, domain.Criterion{
				ID:          uuid.NewString(),
				SafeguardID: sg.ID,
				Text:        text,
				Status:      domain.CriterionInsufficient,
			})
		}
	}

	if err := s.store.SaveSafeguards(ctx, safeguards); err != nil {
		return nil, fmt.Errorf("save safeguards: %w", err)
	}
	if err := s.store.SaveCriteria(ctx, criteria); err != nil {
		return nil, fmt.Errorf("save criteria: %w", err)
	}

	return &assessment, nil
}

// Get retrieves an assessment by ID.
func (s *AssessmentService) Get(ctx context.Context, id string) (*domain.Assessment, error) {
	return s.store.GetAssessment(ctx, id)
}

// List returns all assessments.
func (s *AssessmentService) List(ctx context.Context) ([]domain.Assessment, error) {
	return s.store.ListAssessments(ctx)
}

// Safeguards returns an assessment's safeguards in catalog order.
func (s *AssessmentService) Safeguards(ctx context.Context, assessmentID string) ([]domain.Safeguard, error) {
	return s.store.GetSafeguardsByAssessment(ctx, assessmentID)
}

// Override sets a safeguard's score by hand and derives its status
// from the score thresholds. Rejected while a run is in progress.
func (s *AssessmentService) Override(ctx context.Context, assessmentID, catalogID string, score int) (*domain.Safeguard, error) {
	if score < 0 || score > 100 {
		return nil, fmt.Errorf("%w: score must be 0-100", domain.ErrInvalidInput)
	}

	assessment, err := s.store.GetAssessment(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("get assessment: %w", err)
	}
	if assessment.RunStatus == domain.RunRunning {
		return nil, domain.ErrRunInProgress
	}

	safeguards, err := s.store.GetSafeguardsByAssessment(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("get safeguards: %w", err)
	}

	var target *domain.Safeguard
	for i := range safeguards {
		if safeguards[i].CatalogID == catalogID {
			target = &safeguards[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("safeguard %s: %w", catalogID, domain.ErrNotFound)
	}

	target.Score = score
	target.Status = StatusForScore(score)
	target.ManualOverride = true
	if err := s.store.UpdateSafeguard(ctx, target); err != nil {
		return nil, fmt.Errorf("update safeguard: %w", err)
	}

	// Overrides move the rollup, so recompute it immediately.
	stats := CalculateAssessmentStats(safeguards)
	assessment.MaturityScore = stats.MaturityScore
	assessment.ControlsCovered = stats.ControlsCovered
	assessment.ControlsPartial = stats.ControlsPartial
	assessment.ControlsGap = stats.ControlsGap
	assessment.TotalControls = stats.TotalControls
	if err := s.store.UpdateAssessment(ctx, assessment); err != nil {
		return nil, fmt.Errorf("update assessment: %w", err)
	}

	return target, nil
}

// Findings returns an assessment's findings.
func (s *AssessmentService) Findings(ctx context.Context, assessmentID string) ([]domain.Finding, error) {
	return s.store.GetFindingsByAssessment(ctx, assessmentID)
}

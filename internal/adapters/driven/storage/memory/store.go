// Package memory provides an in-memory AssessmentStore used in tests
// and ephemeral runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/posture-cli/internal/core/domain"
	"github.com/custodia-labs/posture-cli/internal/core/ports/driven"
)

// Ensure AssessmentStore implements the interface.
var _ driven.AssessmentStore = (*AssessmentStore)(nil)

// AssessmentStore is an in-memory implementation of
// driven.AssessmentStore.
type AssessmentStore struct {
	mu          sync.RWMutex
	assessments map[string]domain.Assessment
	// safeguards and criteria keep insertion order, which is catalog
	// order for instantiated assessments.
	safeguards map[string][]domain.Safeguard // keyed by assessment id
	criteria   map[string][]domain.Criterion // keyed by safeguard id
	findings   map[string][]domain.Finding   // keyed by assessment id
}

// NewAssessmentStore creates a new in-memory assessment store.
func NewAssessmentStore() *AssessmentStore {
	return &AssessmentStore{
		assessments: make(map[string]domain.Assessment),
		safeguards:  make(map[string][]domain.Safeguard),
		criteria:    make(map[string][]domain.Criterion),
		findings:    make(map[string][]domain.Finding),
	}
}

// SaveAssessment stores a new assessment.
func (s *AssessmentStore) SaveAssessment(_ context.Context, a *domain.Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.assessments[a.ID]; exists {
		return domain.ErrAlreadyExists
	}
	s.assessments[a.ID] = *a
	return nil
}

// GetAssessment retrieves an assessment by ID.
func (s *AssessmentStore) GetAssessment(_ context.Context, id string) (*domain.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assessments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

// UpdateAssessment stores updated assessment fields.
func (s *AssessmentStore) UpdateAssessment(_ context.Context, a *domain.Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assessments[a.ID]; !ok {
		return domain.ErrNotFound
	}
	s.assessments[a.ID] = *a
	return nil
}

// ListAssessments returns all assessments, newest first.
func (s *AssessmentStore) ListAssessments(_ context.Context) ([]domain.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Assessment, 0, len(s.assessments))
	for _, a := range s.assessments {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// SaveSafeguards stores the safeguards for an assessment.
func (s *AssessmentStore) SaveSafeguards(_ context.Context, safeguards []domain.Safeguard) error {
	if len(safeguards) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	assessmentID := safeguards[0].AssessmentID
	s.safeguards[assessmentID] = append(s.safeguards[assessmentID], safeguards...)
	return nil
}

// GetSafeguardsByAssessment returns an assessment's safeguards in
// insertion (catalog) order.
func (s *AssessmentStore) GetSafeguardsByAssessment(_ context.Context, assessmentID string) ([]domain.Safeguard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Safeguard, len(s.safeguards[assessmentID]))
	copy(out, s.safeguards[assessmentID])
	return out, nil
}

// UpdateSafeguard stores updated safeguard fields.
func (s *AssessmentStore) UpdateSafeguard(_ context.Context, sg *domain.Safeguard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.safeguards[sg.AssessmentID]
	for i := range list {
		if list[i].ID == sg.ID {
			list[i] = *sg
			return nil
		}
	}
	return domain.ErrNotFound
}

// SaveCriteria stores criteria, grouped by their safeguard.
func (s *AssessmentStore) SaveCriteria(_ context.Context, criteria []domain.Criterion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range criteria {
		s.criteria[c.SafeguardID] = append(s.criteria[c.SafeguardID], c)
	}
	return nil
}

// GetCriteriaBySafeguard returns a safeguard's criteria.
func (s *AssessmentStore) GetCriteriaBySafeguard(_ context.Context, safeguardID string) ([]domain.Criterion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Criterion, len(s.criteria[safeguardID]))
	copy(out, s.criteria[safeguardID])
	return out, nil
}

// UpdateCriterion stores updated criterion fields.
func (s *AssessmentStore) UpdateCriterion(_ context.Context, c *domain.Criterion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.criteria[c.SafeguardID]
	for i := range list {
		if list[i].ID == c.ID {
			list[i] = *c
			return nil
		}
	}
	return domain.ErrNotFound
}

// GetFindingsByAssessment returns an assessment's findings.
func (s *AssessmentStore) GetFindingsByAssessment(_ context.Context, assessmentID string) ([]domain.Finding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Finding, len(s.findings[assessmentID]))
	copy(out, s.findings[assessmentID])
	return out, nil
}

// CreateFinding stores a new finding.
func (s *AssessmentStore) CreateFinding(_ context.Context, f *domain.Finding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findings[f.AssessmentID] = append(s.findings[f.AssessmentID], *f)
	return nil
}

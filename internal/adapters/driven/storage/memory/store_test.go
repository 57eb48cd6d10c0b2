package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/posture-cli/internal/core/domain"
)

func TestAssessmentRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewAssessmentStore()

	a := domain.Assessment{ID: "a-1", CompanyID: "acme", Name: "Q3", RunStatus: domain.RunIdle, CreatedAt: time.Now()}
	require.NoError(t, store.SaveAssessment(ctx, &a))

	got, err := store.GetAssessment(ctx, "a-1")
	require.NoError(t, err)
	assert.Equal(t, "acme", got.CompanyID)

	got.RunStatus = domain.RunRunning
	require.NoError(t, store.UpdateAssessment(ctx, got))

	again, err := store.GetAssessment(ctx, "a-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RunRunning, again.RunStatus)
}

func TestGetAssessmentNotFound(t *testing.T) {
	store := NewAssessmentStore()

	_, err := store.GetAssessment(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSaveAssessmentDuplicate(t *testing.T) {
	ctx := context.Background()
	store := NewAssessmentStore()

	a := domain.Assessment{ID: "a-1"}
	require.NoError(t, store.SaveAssessment(ctx, &a))
	assert.ErrorIs(t, store.SaveAssessment(ctx, &a), domain.ErrAlreadyExists)
}

func TestListAssessmentsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewAssessmentStore()

	old := domain.Assessment{ID: "old", CreatedAt: time.Now().Add(-time.Hour)}
	recent := domain.Assessment{ID: "recent", CreatedAt: time.Now()}
	require.NoError(t, store.SaveAssessment(ctx, &old))
	require.NoError(t, store.SaveAssessment(ctx, &recent))

	list, err := store.ListAssessments(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "recent", list[0].ID)
}

func TestSafeguardsKeepOrder(t *testing.T) {
	ctx := context.Background()
	store := NewAssessmentStore()

	sgs := []domain.Safeguard{
		{ID: "s-1", AssessmentID: "a-1", CatalogID: "1.1"},
		{ID: "s-2", AssessmentID: "a-1", CatalogID: "2.1"},
		{ID: "s-3", AssessmentID: "a-1", CatalogID: "3.3"},
	}
	require.NoError(t, store.SaveSafeguards(ctx, sgs))

	got, err := store.GetSafeguardsByAssessment(ctx, "a-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "1.1", got[0].CatalogID)
	assert.Equal(t, "3.3", got[2].CatalogID)
}

func TestUpdateSafeguard(t *testing.T) {
	ctx := context.Background()
	store := NewAssessmentStore()

	require.NoError(t, store.SaveSafeguards(ctx, []domain.Safeguard{
		{ID: "s-1", AssessmentID: "a-1", CatalogID: "1.1"},
	}))

	updated := domain.Safeguard{ID: "s-1", AssessmentID: "a-1", CatalogID: "1.1", Score: 75, Status: domain.SafeguardPartial}
	require.NoError(t, store.UpdateSafeguard(ctx, &updated))

	got, err := store.GetSafeguardsByAssessment(ctx, "a-1")
	require.NoError(t, err)
	assert.Equal(t, 75, got[0].Score)

	missing := domain.Safeguard{ID: "nope", AssessmentID: "a-1"}
	assert.ErrorIs(t, store.UpdateSafeguard(ctx, &missing), domain.ErrNotFound)
}

func TestCriteriaRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewAssessmentStore()

	require.NoError(t, store.SaveCriteria(ctx, []domain.Criterion{
		{ID: "c-1", SafeguardID: "s-1", Text: "first", Status: domain.CriterionInsufficient},
		{ID: "c-2", SafeguardID: "s-1", Text: "second", Status: domain.CriterionInsufficient},
	}))

	criteria, err := store.GetCriteriaBySafeguard(ctx, "s-1")
	require.NoError(t, err)
	require.Len(t, criteria, 2)

	criteria[0].Status = domain.CriterionMet
	require.NoError(t, store.UpdateCriterion(ctx, &criteria[0]))

	got, err := store.GetCriteriaBySafeguard(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, domain.CriterionMet, got[0].Status)
}

func TestFindings(t *testing.T) {
	ctx := context.Background()
	store := NewAssessmentStore()

	f := domain.Finding{ID: "f-1", AssessmentID: "a-1", CatalogID: "1.1", Severity: domain.SeverityHigh}
	require.NoError(t, store.CreateFinding(ctx, &f))

	got, err := store.GetFindingsByAssessment(ctx, "a-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1.1", got[0].CatalogID)

	none, err := store.GetFindingsByAssessment(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, none)
}

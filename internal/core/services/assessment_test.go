package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/posture-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/posture-cli/internal/core/domain"
)

func TestCreate_InstantiatesCatalog(t *testing.T) {
	ctx := context.Background()
	store := memory.NewAssessmentStore()
	svc := NewAssessmentService(store)

	a, err := svc.Create(ctx, "acme", "Q3 review")
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "acme", a.CompanyID)
	assert.Equal(t, "Q3 review", a.Name)
	assert.Equal(t, domain.RunIdle, a.RunStatus)

	controls := domain.Catalog()
	assert.Equal(t, len(controls), a.TotalControls)

	safeguards, err := svc.Safeguards(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, safeguards, len(controls))

	// Safeguards follow catalog order and start unassessed.
	for i, sg := range safeguards {
		assert.Equal(t, controls[i].ID, sg.CatalogID)
		assert.Equal(t, controls[i].Name, sg.Name)
		assert.Equal(t, 0, sg.Score)
		assert.Equal(t, domain.SafeguardGap, sg.Status)
		assert.False(t, sg.ManualOverride)

		criteria, err := store.GetCriteriaBySafeguard(ctx, sg.ID)
		require.NoError(t, err)
		require.Len(t, criteria, len(controls[i].Criteria))
		for j, c := range criteria {
			assert.Equal(t, controls[i].Criteria[j], c.Text)
			assert.Equal(t, domain.CriterionInsufficient, c.Status)
			assert.Nil(t, c.Citation)
		}
	}
}

func TestCreate_RequiresCompanyID(t *testing.T) {
	svc := NewAssessmentService(memory.NewAssessmentStore())

	_, err := svc.Create(context.Background(), "", "name")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreate_DefaultsName(t *testing.T) {
	svc := NewAssessmentService(memory.NewAssessmentStore())

	a, err := svc.Create(context.Background(), "acme", "")
	require.NoError(t, err)
	assert.Contains(t, a.Name, "Assessment")
}

func TestGetAndList(t *testing.T) {
	ctx := context.Background()
	svc := NewAssessmentService(memory.NewAssessmentStore())

	created, err := svc.Create(ctx, "acme", "first")
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestOverride_SetsScoreAndDerivedStatus(t *testing.T) {
	ctx := context.Background()
	store := memory.NewAssessmentStore()
	svc := NewAssessmentService(store)

	a, err := svc.Create(ctx, "acme", "test")
	require.NoError(t, err)

	cases := []struct {
		score  int
		status domain.SafeguardStatus
	}{
		{score: 80, status: domain.SafeguardCovered},
		{score: 79, status: domain.SafeguardPartial},
		{score: 40, status: domain.SafeguardPartial},
		{score: 39, status: domain.SafeguardGap},
		{score: 0, status: domain.SafeguardGap},
		{score: 100, status: domain.SafeguardCovered},
	}
	for _, tc := range cases {
		sg, err := svc.Override(ctx, a.ID, "1.1", tc.score)
		require.NoError(t, err)
		assert.Equal(t, tc.score, sg.Score, "score %d", tc.score)
		assert.Equal(t, tc.status, sg.Status, "score %d", tc.score)
		assert.True(t, sg.ManualOverride)
	}
}

func TestOverride_RecomputesRollup(t *testing.T) {
	ctx := context.Background()
	store := memory.NewAssessmentStore()
	svc := NewAssessmentService(store)

	a, err := svc.Create(ctx, "acme", "test")
	require.NoError(t, err)

	_, err = svc.Override(ctx, a.ID, "1.1", 100)
	require.NoError(t, err)

	got, err := store.GetAssessment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ControlsCovered)
	assert.Greater(t, got.MaturityScore, 0)
}

func TestOverride_Validation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewAssessmentStore()
	svc := NewAssessmentService(store)

	a, err := svc.Create(ctx, "acme", "test")
	require.NoError(t, err)

	_, err = svc.Override(ctx, a.ID, "1.1", -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Override(ctx, a.ID, "1.1", 101)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Override(ctx, a.ID, "99.9", 50)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Override(ctx, "missing", "1.1", 50)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOverride_RejectedWhileRunning(t *testing.T) {
	ctx := context.Background()
	store := memory.NewAssessmentStore()
	svc := NewAssessmentService(store)

	a, err := svc.Create(ctx, "acme", "test")
	require.NoError(t, err)

	a.RunStatus = domain.RunRunning
	require.NoError(t, store.UpdateAssessment(ctx, a))

	_, err = svc.Override(ctx, a.ID, "1.1", 50)
	assert.ErrorIs(t, err, domain.ErrRunInProgress)
}

func TestFindings_EmptyForNewAssessment(t *testing.T) {
	ctx := context.Background()
	svc := NewAssessmentService(memory.NewAssessmentStore())

	a, err := svc.Create(ctx, "acme", "test")
	require.NoError(t, err)

	findings, err := svc.Findings(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

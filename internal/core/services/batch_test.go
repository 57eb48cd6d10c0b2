package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/posture-cli/internal/core/domain"
)

func batchItems(n int) []BatchItem {
	items := make([]BatchItem, n)
	for i := range items {
		items[i] = BatchItem{
			CriterionText: "requirement",
			Chunks:        evidenceChunks(),
		}
	}
	return items
}

func TestEvaluateBatch_AllItemsInOrder(t *testing.T) {
	classifier := &mockClassifier{}

	var order []int
	results, err := EvaluateBatch(context.Background(), classifier, batchItems(3), BatchOptions{
		OnItem: func(index int, result *domain.ClassificationResult, err error) {
			require.NoError(t, err)
			require.NotNil(t, result)
			order = append(order, index)
		},
	})
	require.NoError(t, err)

	require.Len(t, results, 3)
	for _, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, domain.CriterionMet, r.Status)
	}
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestEvaluateBatch_ItemFailureDoesNotStopBatch(t *testing.T) {
	call := 0
	classifier := &mockClassifier{
		classifyFn: func(_ string, _ []domain.EvidenceChunk) (*domain.ClassificationResult, error) {
			call++
			if call == 2 {
				return nil, errors.New("provider overloaded")
			}
			return &domain.ClassificationResult{Status: domain.CriterionMet, Confidence: 0.9}, nil
		},
	}

	var itemErrs []error
	results, err := EvaluateBatch(context.Background(), classifier, batchItems(3), BatchOptions{
		OnItem: func(_ int, _ *domain.ClassificationResult, err error) {
			itemErrs = append(itemErrs, err)
		},
	})
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.NotNil(t, results[0])
	assert.Nil(t, results[1])
	assert.NotNil(t, results[2])

	require.Len(t, itemErrs, 3)
	assert.NoError(t, itemErrs[0])
	assert.Error(t, itemErrs[1])
	assert.NoError(t, itemErrs[2])
}

func TestEvaluateBatch_ThrottleDelay(t *testing.T) {
	classifier := &mockClassifier{}

	start := time.Now()
	_, err := EvaluateBatch(context.Background(), classifier, batchItems(3), BatchOptions{
		Delay: 30 * time.Millisecond,
	})
	require.NoError(t, err)

	// First call is immediate; the remaining two wait out the interval.
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

func TestEvaluateBatch_ContextCancellation(t *testing.T) {
	classifier := &mockClassifier{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := EvaluateBatch(ctx, classifier, batchItems(2), BatchOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 2)
	assert.Nil(t, results[0])
}

func TestEvaluateBatch_NilClassifier(t *testing.T) {
	_, err := EvaluateBatch(context.Background(), nil, batchItems(1), BatchOptions{})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.ErrorIs(t, err, domain.ErrClassifierUnavailable)
}

func TestEvaluateBatch_EmptyItems(t *testing.T) {
	results, err := EvaluateBatch(context.Background(), &mockClassifier{}, nil, BatchOptions{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

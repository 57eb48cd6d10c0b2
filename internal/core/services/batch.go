package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/posture-cli/internal/core/domain"
	"github.com/custodia-labs/posture-cli/internal/core/ports/driven"
)

// BatchItem is one criterion evaluation request in a batch.
type BatchItem struct {
	// CriterionText is the evidence requirement to classify.
	CriterionText string

	// Chunks are the evidence chunks to classify against.
	Chunks []domain.EvidenceChunk
}

// BatchOptions configures batch classification.
type BatchOptions struct {
	// Delay is the minimum interval between classification calls.
	// Used to respect provider rate limits. Zero means no throttling.
	Delay time.Duration

	// OnItem is invoked once per completed item, strictly in
	// submission order. Optional.
	OnItem func(index int, result *domain.ClassificationResult, err error)
}

// EvaluateBatch classifies many criteria sequentially through one
// classifier. Items are processed in submission order; a per-item
// failure is reported through OnItem and recorded in the result slice
// as nil, without stopping the batch. Returns early only on context
// cancellation.
func EvaluateBatch(
	ctx context.Context,
	classifier driven.EvidenceClassifier,
	items []BatchItem,
	opts BatchOptions,
) ([]*domain.ClassificationResult, error) {
	if classifier == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, domain.ErrClassifierUnavailable)
	}

	var limiter *rate.Limiter
	if opts.Delay > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.Delay), 1)
	}

	results := make([]*domain.ClassificationResult, len(items))
	for i, item := range items {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return results, err
			}
		} else if err := ctx.Err(); err != nil {
			return results, err
		}

		result, err := classifier.Classify(ctx, item.CriterionText, item.Chunks)
		if err == nil {
			results[i] = result
		}
		if opts.OnItem != nil {
			opts.OnItem(i, result, err)
		}
	}
	return results, nil
}

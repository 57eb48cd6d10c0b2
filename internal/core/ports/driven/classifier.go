package driven

import (
	"context"

	"github.com/custodia-labs/posture-cli/internal/core/domain"
)

// EvidenceClassifier decides whether a set of evidence chunks satisfies
// one criterion.
//
// Implementations must short-circuit locally when chunks is empty:
// return status insufficient with confidence 1.0 without any network
// call. A response that cannot be parsed into the structured contract
// must also degrade locally (insufficient, confidence 0) rather than
// returning an error. Provider failures after retries are returned as
// errors; the orchestrator handles them per criterion.
type EvidenceClassifier interface {
	// Classify evaluates one criterion against the supplied chunks.
	Classify(ctx context.Context, criterionText string, chunks []domain.EvidenceChunk) (*domain.ClassificationResult, error)

	// ModelName returns the name of the underlying model.
	ModelName() string

	// Ping validates the service is reachable without running inference.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

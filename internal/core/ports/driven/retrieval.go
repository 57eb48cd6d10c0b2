package driven

import (
	"context"

	"github.com/custodia-labs/posture-cli/internal/core/domain"
)

// RetrieveOptions configures one evidence retrieval query.
type RetrieveOptions struct {
	// Partition is the tenant-scoped isolation key. Must be supplied
	// on every call; see domain.Partition.
	Partition string

	// TopK is the maximum number of chunks to return.
	TopK int

	// MaxPerDoc caps the number of chunks drawn from any single
	// document. Zero means no cap.
	MaxPerDoc int

	// Rerank asks the retrieval service to re-rank candidates before
	// returning them.
	Rerank bool
}

// EvidenceRetriever returns the most relevant passages from a tenant's
// indexed corpus for a query. Results are ordered highest relevance
// first; an empty result is valid and is not an error.
type EvidenceRetriever interface {
	// Retrieve runs one query against the partition's corpus.
	Retrieve(ctx context.Context, query string, opts RetrieveOptions) ([]domain.EvidenceChunk, error)

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error
}

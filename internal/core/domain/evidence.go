package domain

// EvidenceChunk is a retrieved passage of source-document text with a
// relevance score. Chunks are ephemeral pipeline values; they are never
// persisted by the core.
type EvidenceChunk struct {
	// Content is the passage text.
	Content string

	// Score is the retrieval relevance score, highest first.
	Score float64

	// ChunkID identifies the chunk within the index, when provided.
	ChunkID string

	// DocumentID identifies the source document.
	DocumentID string

	// DocumentName is the display name of the source document.
	DocumentName string

	// Page is the page number within the document, if known.
	Page int
}

// ClassificationResult is the structured decision produced for one
// criterion from a set of evidence chunks. Ephemeral, never persisted.
type ClassificationResult struct {
	// Status is the selected criterion status.
	Status CriterionStatus

	// Confidence is the model's confidence, clamped to [0,1].
	Confidence float64

	// Excerpt is the supporting passage, at most 500 runes.
	Excerpt string

	// Chunk references the evidence chunk the excerpt came from.
	// Nil when no chunk supports the decision or the reference was
	// out of range.
	Chunk *EvidenceChunk

	// Reasoning is the model's explanation for the status.
	Reasoning string
}

// Partition derives the tenant-scoped evidence partition key from a raw
// tenant identifier. Lower-cases the input and replaces any rune outside
// [a-z0-9_-] with '-'. The same derivation must be used for indexing and
// retrieval so a tenant's queries never cross partitions.
func Partition(tenantID string) string {
	out := make([]rune, 0, len(tenantID))
	for _, r := range tenantID {
		switch {
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-':
			out = append(out, r)
		default:
			out = append(out, '-')
		}
	}
	return string(out)
}

// Package retrieval provides an EvidenceRetriever adapter for the
// evidence retrieval HTTP API.
package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/posture-cli/internal/adapters/driven/httpretry"
	"github.com/custodia-labs/posture-cli/internal/core/domain"
	"github.com/custodia-labs/posture-cli/internal/core/ports/driven"
	"github.com/custodia-labs/posture-cli/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.EvidenceRetriever = (*Client)(nil)

// Default configuration values.
const (
	DefaultTimeout = 30 * time.Second
	DefaultTopK    = 5
)

// Config holds configuration for the retrieval client.
type Config struct {
	// BaseURL is the retrieval service base URL (required).
	BaseURL string

	// APIKey authenticates against the retrieval service, if it
	// requires one.
	APIKey string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// MaxRetries bounds transient-failure retries (default: 3).
	MaxRetries int
}

// Client queries the evidence retrieval service. Transient provider
// failures are retried by the underlying httpretry client; callers
// decide how to degrade when retries exhaust.
type Client struct {
	http    *httpretry.Client
	baseURL string
	apiKey  string
}

// retrieveRequest is the wire-level retrieval request.
type retrieveRequest struct {
	Query     string `json:"query"`
	Partition string `json:"partition"`
	TopK      int    `json:"top_k"`
	MaxPerDoc int    `json:"max_per_doc,omitempty"`
	Rerank    bool   `json:"rerank,omitempty"`
}

// retrieveResponse is the wire-level retrieval response. Field names
// vary across service versions, so chunk fields carry alternates.
type retrieveResponse struct {
	ScoredChunks []wireChunk `json:"scored_chunks"`
}

type wireChunk struct {
	// Content and Text are alternates; at most one is set.
	Content string  `json:"content"`
	Text    string  `json:"text"`
	Score   float64 `json:"score"`
	ChunkID string  `json:"chunk_id"`
	// DocID and Metadata.DocumentID are alternates.
	DocID    string `json:"doc_id"`
	Metadata struct {
		DocumentID   string `json:"document_id"`
		DocumentName string `json:"document_name"`
		Page         int    `json:"page"`
	} `json:"metadata"`
}

// NewClient creates a retrieval client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("retrieval: base URL is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		http: httpretry.New(httpretry.Config{
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
		}),
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}, nil
}

// Retrieve runs one query against the partition's corpus. Results come
// back highest relevance first; an empty result is not an error.
func (c *Client) Retrieve(ctx context.Context, query string, opts driven.RetrieveOptions) ([]domain.EvidenceChunk, error) {
	if opts.Partition == "" {
		return nil, fmt.Errorf("retrieval: partition is required")
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	body, err := json.Marshal(retrieveRequest{
		Query:     query,
		Partition: opts.Partition,
		TopK:      topK,
		MaxPerDoc: opts.MaxPerDoc,
		Rerank:    opts.Rerank,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	headers := http.Header{"Content-Type": []string{"application/json"}}
	if c.apiKey != "" {
		headers.Set("Authorization", "Bearer "+c.apiKey)
	}

	_, respBody, err := c.http.Do(ctx, http.MethodPost, c.baseURL+"/v1/retrieve", headers, body)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	var resp retrieveResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	chunks := make([]domain.EvidenceChunk, 0, len(resp.ScoredChunks))
	for _, wc := range resp.ScoredChunks {
		chunks = append(chunks, wc.toDomain())
	}

	logger.Debug("Retrieved %d chunks for query %q (partition %s)", len(chunks), query, opts.Partition)
	return chunks, nil
}

// Ping validates the service is reachable.
func (c *Client) Ping(ctx context.Context) error {
	headers := http.Header{}
	if c.apiKey != "" {
		headers.Set("Authorization", "Bearer "+c.apiKey)
	}
	if _, _, err := c.http.Do(ctx, http.MethodGet, c.baseURL+"/v1/health", headers, nil); err != nil {
		return fmt.Errorf("retrieval: ping failed: %w", err)
	}
	return nil
}

// toDomain maps a wire chunk to the domain type, resolving alternate
// field names.
func (wc wireChunk) toDomain() domain.EvidenceChunk {
	content := wc.Content
	if content == "" {
		content = wc.Text
	}
	docID := wc.Metadata.DocumentID
	if docID == "" {
		docID = wc.DocID
	}
	return domain.EvidenceChunk{
		Content:      content,
		Score:        wc.Score,
		ChunkID:      wc.ChunkID,
		DocumentID:   docID,
		DocumentName: wc.Metadata.DocumentName,
		Page:         wc.Metadata.Page,
	}
}

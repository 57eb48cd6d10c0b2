// Package anthropic provides an EvidenceClassifier adapter using the
// Anthropic API with a forced tool invocation, so the model returns a
// structured decision rather than prose.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/posture-cli/internal/adapters/driven/httpretry"
	"github.com/custodia-labs/posture-cli/internal/core/domain"
	"github.com/custodia-labs/posture-cli/internal/core/ports/driven"
	"github.com/custodia-labs/posture-cli/internal/logger"
)

// Ensure Classifier implements the interfaces.
var (
	_ driven.EvidenceClassifier = (*Classifier)(nil)
	_ driven.PromptStoreAware   = (*Classifier)(nil)
)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.anthropic.com"
	DefaultModel   = "claude-3-5-sonnet-latest"
	DefaultTimeout = 120 * time.Second

	// anthropicVersion is the required API version header.
	anthropicVersion = "2023-06-01"

	// toolName is the forced tool the model must invoke.
	toolName = "record_classification"

	// maxExcerptRunes bounds the supporting excerpt length.
	maxExcerptRunes = 500
)

// Config holds configuration for the Anthropic classifier.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com).
	BaseURL string

	// Model is the model to use (default: claude-3-5-sonnet-latest).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// MaxRetries bounds transient-failure retries (default: 3).
	MaxRetries int
}

// Classifier classifies criteria against evidence chunks using the
// Anthropic messages API.
type Classifier struct {
	http        *httpretry.Client
	baseURL     string
	apiKey      string
	model       string
	promptStore driven.PromptStore
}

// messagesRequest is the Anthropic /v1/messages request format.
type messagesRequest struct {
	Model      string            `json:"model"`
	Messages   []messagesMessage `json:"messages"`
	MaxTokens  int               `json:"max_tokens"`
	System     string            `json:"system,omitempty"`
	Tools      []toolDefinition  `json:"tools,omitempty"`
	ToolChoice *toolChoice       `json:"tool_choice,omitempty"`
}

type messagesMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type toolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

type toolChoice struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// messagesResponse is the Anthropic /v1/messages response format.
type messagesResponse struct {
	Content []struct {
		Type  string          `json:"type"`
		Name  string          `json:"name"`
		Input json.RawMessage `json:"input"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// classificationPayload is the structured tool input the model returns.
type classificationPayload struct {
	Status     string   `json:"status"`
	Confidence float64  `json:"confidence"`
	Excerpt    string   `json:"excerpt"`
	ChunkIndex *int     `json:"chunk_index"`
	Reasoning  string   `json:"reasoning"`
}

// NewClassifier creates an Anthropic classifier.
func NewClassifier(cfg Config) (*Classifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: %w: API key is required", domain.ErrConfiguration)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Classifier{
		http: httpretry.New(httpretry.Config{
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
		}),
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// defaultClassifyPrompt is the fallback system prompt when no
// PromptStore is configured.
const defaultClassifyPrompt = `You are a compliance analyst. Decide whether the evidence passages satisfy the stated criterion.
Call the record_classification tool with exactly one status:
- "met": the evidence clearly satisfies the criterion
- "partial": the evidence partially satisfies the criterion
- "not_met": the evidence shows the criterion is not satisfied
- "insufficient": the evidence is unrelated or too thin to decide
Quote the single most supportive passage as the excerpt and reference its chunk index.`

// Classify evaluates one criterion against the supplied chunks.
// With zero chunks it short-circuits locally to insufficient without a
// network call. An unparseable model response degrades locally to
// insufficient with confidence 0. Provider failures after retries are
// returned as errors.
func (c *Classifier) Classify(ctx context.Context, criterionText string, chunks []domain.EvidenceChunk) (*domain.ClassificationResult, error) {
	if len(chunks) == 0 {
		return &domain.ClassificationResult{
			Status:     domain.CriterionInsufficient,
			Confidence: 1.0,
			Reasoning:  "No evidence passages were retrieved for this criterion.",
		}, nil
	}

	reqBody, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: 1024,
		System:    c.loadPrompt(driven.PromptClassify, defaultClassifyPrompt),
		Messages: []messagesMessage{
			{Role: "user", Content: buildUserMessage(criterionText, chunks)},
		},
		Tools:      []toolDefinition{classificationTool()},
		ToolChoice: &toolChoice{Type: "tool", Name: toolName},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	headers := http.Header{
		"Content-Type":      []string{"application/json"},
		"x-api-key":         []string{c.apiKey},
		"anthropic-version": []string{anthropicVersion},
	}

	_, respBody, err := c.http.Do(ctx, http.MethodPost, c.baseURL+"/v1/messages", headers, reqBody)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	var msgResp messagesResponse
	if err := json.Unmarshal(respBody, &msgResp); err != nil {
		return parseFallback(fmt.Sprintf("response was not valid JSON: %v", err)), nil
	}
	if msgResp.Error != nil {
		return nil, fmt.Errorf("anthropic error: %s", msgResp.Error.Message)
	}

	payload, ok := extractPayload(&msgResp)
	if !ok {
		return parseFallback("response contained no recognisable tool invocation"), nil
	}

	return c.toResult(payload, chunks), nil
}

// toResult validates the structured payload against the chunk set.
func (c *Classifier) toResult(payload *classificationPayload, chunks []domain.EvidenceChunk) *domain.ClassificationResult {
	status := domain.CriterionStatus(payload.Status)
	if !domain.ValidCriterionStatus(status) {
		return parseFallback(fmt.Sprintf("response status %q is not a recognised value", payload.Status))
	}

	result := &domain.ClassificationResult{
		Status:     status,
		Confidence: clamp01(payload.Confidence),
		Excerpt:    truncateExcerpt(payload.Excerpt),
		Reasoning:  payload.Reasoning,
	}

	// Out-of-range chunk references resolve to no reference, not an error.
	if payload.ChunkIndex != nil {
		idx := *payload.ChunkIndex
		if idx >= 0 && idx < len(chunks) {
			chunk := chunks[idx]
			result.Chunk = &chunk
		} else {
			logger.Debug("Classification referenced chunk %d of %d, dropping reference", idx, len(chunks))
		}
	}

	return result
}

// classificationTool is the structured-output contract the model must
// follow.
func classificationTool() toolDefinition {
	return toolDefinition{
		Name:        toolName,
		Description: "Record the classification decision for one compliance criterion.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"status": map[string]any{
					"type": "string",
					"enum": []string{"met", "partial", "not_met", "insufficient"},
				},
				"confidence": map[string]any{
					"type":        "number",
					"description": "Confidence in the status, 0 to 1.",
				},
				"excerpt": map[string]any{
					"type":        "string",
					"description": "The most supportive evidence passage, verbatim.",
				},
				"chunk_index": map[string]any{
					"type":        "integer",
					"description": "Zero-based index of the chunk the excerpt came from.",
				},
				"reasoning": map[string]any{
					"type":        "string",
					"description": "Short explanation of the decision.",
				},
			},
			"required": []string{"status", "confidence", "reasoning"},
		},
	}
}

// buildUserMessage renders the criterion and numbered chunks for the
// model.
func buildUserMessage(criterionText string, chunks []domain.EvidenceChunk) string {
	var b strings.Builder
	b.WriteString("Criterion:\n")
	b.WriteString(criterionText)
	b.WriteString("\n\nEvidence passages:\n")
	for i, chunk := range chunks {
		fmt.Fprintf(&b, "[%d] (%s", i, chunk.DocumentName)
		if chunk.Page > 0 {
			fmt.Fprintf(&b, ", page %d", chunk.Page)
		}
		b.WriteString(")\n")
		b.WriteString(chunk.Content)
		b.WriteString("\n\n")
	}
	return b.String()
}

// extractPayload pulls the tool invocation out of the response.
func extractPayload(resp *messagesResponse) (*classificationPayload, bool) {
	for _, block := range resp.Content {
		if block.Type != "tool_use" || block.Name != toolName {
			continue
		}
		var payload classificationPayload
		if err := json.Unmarshal(block.Input, &payload); err != nil {
			return nil, false
		}
		return &payload, true
	}
	return nil, false
}

// parseFallback is the deterministic result for unparseable responses.
func parseFallback(detail string) *domain.ClassificationResult {
	return &domain.ClassificationResult{
		Status:     domain.CriterionInsufficient,
		Confidence: 0,
		Reasoning:  "Could not parse the classification response: " + detail,
	}
}

// truncateExcerpt bounds the excerpt to maxExcerptRunes, marking the
// cut with an ellipsis.
func truncateExcerpt(s string) string {
	runes := []rune(s)
	if len(runes) <= maxExcerptRunes {
		return s
	}
	return string(runes[:maxExcerptRunes-1]) + "…"
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// loadPrompt loads a prompt from the store, falling back to the
// default if unavailable.
func (c *Classifier) loadPrompt(name, fallback string) string {
	if c.promptStore == nil {
		return fallback
	}
	prompt, err := c.promptStore.Load(name)
	if err != nil {
		return fallback
	}
	return prompt
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the classifier uses the hardcoded default prompt.
func (c *Classifier) SetPromptStore(store driven.PromptStore) {
	c.promptStore = store
}

// ModelName returns the name of the model being used.
func (c *Classifier) ModelName() string {
	return c.model
}

// Ping validates the service is reachable by checking the /v1/models
// endpoint. This validates the API key without running inference.
func (c *Classifier) Ping(ctx context.Context) error {
	headers := http.Header{
		"x-api-key":         []string{c.apiKey},
		"anthropic-version": []string{anthropicVersion},
	}
	if _, _, err := c.http.Do(ctx, http.MethodGet, c.baseURL+"/v1/models", headers, nil); err != nil {
		return fmt.Errorf("anthropic: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (c *Classifier) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

// Package httpretry provides a retrying HTTP client used by the
// evidence provider adapters. It distinguishes transient failures
// (retried with exponential backoff) from terminal ones, and honours a
// server-supplied Retry-After hint when present.
package httpretry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/custodia-labs/posture-cli/internal/logger"
)

// Default configuration values.
const (
	DefaultTimeout     = 60 * time.Second
	DefaultMaxRetries  = 3
	DefaultBackoffBase = 500 * time.Millisecond

	// HeaderRetryAfter is the retry-after header (seconds).
	HeaderRetryAfter = "Retry-After"
)

// TransientError is a retryable provider failure: HTTP 429, any 5xx,
// or a network-level error such as a timeout.
type TransientError struct {
	// StatusCode is the HTTP status, or 0 for network-level failures.
	StatusCode int

	// RetryAfter is the server-supplied retry hint, when present.
	RetryAfter time.Duration

	// Err is the underlying error, if any.
	Err error
}

func (e *TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transient provider error: %v", e.Err)
	}
	return fmt.Sprintf("transient provider error: status %d", e.StatusCode)
}

func (e *TransientError) Unwrap() error { return e.Err }

// TerminalError is a non-retryable provider failure: a 4xx other than
// 429, or a malformed response.
type TerminalError struct {
	// StatusCode is the HTTP status.
	StatusCode int

	// Body is the response body, for diagnostics.
	Body string
}

func (e *TerminalError) Error() string {
	return fmt.Sprintf("provider error: status %d: %s", e.StatusCode, e.Body)
}

// Config holds configuration for the retrying client.
type Config struct {
	// Timeout is the per-request timeout (default: 60s).
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt
	// (default: 3).
	MaxRetries int

	// BackoffBase is the base backoff; attempt n waits
	// BackoffBase * 2^n unless the server supplies a retry hint
	// (default: 500ms).
	BackoffBase time.Duration
}

// Client issues HTTP requests with bounded retries. It is stateless
// beyond its configuration and safe for concurrent reuse.
type Client struct {
	http        *http.Client
	maxRetries  int
	backoffBase time.Duration
}

// New creates a retrying client. Zero config fields use the defaults.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.BackoffBase == 0 {
		cfg.BackoffBase = DefaultBackoffBase
	}
	return &Client{
		http:        &http.Client{Timeout: cfg.Timeout},
		maxRetries:  cfg.MaxRetries,
		backoffBase: cfg.BackoffBase,
	}
}

// Do issues the request, retrying transient failures. On success it
// returns the status code and response body. Failure is either a
// *TransientError (retries exhausted) or a *TerminalError.
func (c *Client) Do(ctx context.Context, method, url string, headers http.Header, body []byte) (int, []byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := c.wait(ctx, attempt-1, lastErr); err != nil {
				return 0, nil, err
			}
			logger.Debug("Retrying %s %s (attempt %d/%d)", method, url, attempt, c.maxRetries)
		}

		status, respBody, err := c.once(ctx, method, url, headers, body)
		if err == nil {
			return status, respBody, nil
		}

		var transient *TransientError
		if !errors.As(err, &transient) {
			return 0, nil, err
		}
		lastErr = err
	}

	return 0, nil, lastErr
}

// once performs a single attempt.
func (c *Client) once(ctx context.Context, method, url string, headers http.Header, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Network failures, including client timeouts, are retryable.
		if ctx.Err() != nil {
			return 0, nil, ctx.Err()
		}
		return 0, nil, &TransientError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &TransientError{Err: fmt.Errorf("read response: %w", err)}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return resp.StatusCode, respBody, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return 0, nil, &TransientError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get(HeaderRetryAfter)),
		}
	default:
		return 0, nil, &TerminalError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
}

// wait sleeps for the backoff before retry n, preferring the server's
// retry hint when the last failure carried one.
func (c *Client) wait(ctx context.Context, attempt int, lastErr error) error {
	delay := c.backoffBase * (1 << attempt)

	var transient *TransientError
	if errors.As(lastErr, &transient) && transient.RetryAfter > 0 {
		delay = transient.RetryAfter
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

// parseRetryAfter parses a Retry-After header value in seconds.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// Package cloudclient forwards analysis requests verbatim to a hosted
// LangPatrol-compatible API, for callers that supply options.apiKey and
// options.apiBaseUrl instead of running the local engine (spec.md §6). The
// engine package never imports this package; only cmd/langpatrol wires it
// in (internal/api does not), matching the outbound-HTTP idiom in
// internal/service/model_detector.go and internal/service/embedding_service.go.
package cloudclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/user/langpatrol/internal/models"
)

const requestTimeout = 30 * time.Second

// Client forwards analyze/redact/optimize/sanitize calls to a hosted API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// New constructs a Client for the given base URL and API key.
func New(baseURL, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// RedactResult is the response shape from the redactPII endpoint.
type RedactResult struct {
	RedactedPrompt   string    `json:"redactedPrompt,omitempty"`
	RedactedMessages []string  `json:"redactedMessages,omitempty"`
	Report           models.Report `json:"report"`
}

// OptimizeResult is the response shape from the optimizePrompt endpoint.
type OptimizeResult struct {
	OptimizedPrompt string        `json:"optimizedPrompt"`
	Report          models.Report `json:"report"`
}

// SanitizeResult is the response shape from the sanitize endpoint.
type SanitizeResult struct {
	SanitizedPrompt string        `json:"sanitizedPrompt"`
	Report          models.Report `json:"report"`
}

// Analyze forwards an AnalyzeInput to {baseURL}/api/v1/analyze and decodes
// the Report response.
func (c *Client) Analyze(ctx context.Context, input models.AnalyzeInput) (models.Report, error) {
	var out models.Report
	err := c.postJSON(ctx, "/api/v1/analyze", input, &out)
	return out, err
}

// RedactPII forwards to {baseURL}/api/v1/ai-analytics/redact-pii.
func (c *Client) RedactPII(ctx context.Context, input models.AnalyzeInput) (RedactResult, error) {
	var out RedactResult
	err := c.postJSON(ctx, "/api/v1/ai-analytics/redact-pii", input, &out)
	return out, err
}

// Optimize forwards to {baseURL}/api/v1/compression/optimize.
func (c *Client) Optimize(ctx context.Context, input models.AnalyzeInput) (OptimizeResult, error) {
	var out OptimizeResult
	err := c.postJSON(ctx, "/api/v1/compression/optimize", input, &out)
	return out, err
}

// Sanitize forwards to {baseURL}/api/v1/ai-analytics/sanitize.
func (c *Client) Sanitize(ctx context.Context, input models.AnalyzeInput) (SanitizeResult, error) {
	var out SanitizeResult
	err := c.postJSON(ctx, "/api/v1/ai-analytics/sanitize", input, &out)
	return out, err
}

func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal cloud request: %w", err)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build cloud request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cloud request to %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read cloud response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cloud API returned %s: %s", resp.Status, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode cloud response: %w", err)
	}
	return nil
}

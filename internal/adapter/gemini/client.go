package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/impact-simulator/internal/domain"
	"github.com/couchcryptid/impact-simulator/internal/observability"
)

// ErrNotConfigured is returned by every call when no API key is set.
var ErrNotConfigured = errors.New("gemini narrator not configured: GEMINI_API_KEY is empty")

// Client implements domain.Narrator using the Gemini generateContent API.
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Gemini narrative client.
func NewClient(apiKey, model, baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		metrics: metrics,
		logger:  logger,
	}
}

// Narrate asks the model for a three-paragraph account of the impact.
func (c *Client) Narrate(ctx context.Context, params domain.Params, calc domain.ImpactCalculations) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(request{
		Contents: []content{{Parts: []part{{Text: domain.NarrativePrompt(params, calc)}}}},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	u := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.NarrativeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("generate content request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("gemini API error: status %d: %s", resp.StatusCode, msg)
	}

	var genResp response
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	text := genResp.text()
	if text == "" {
		return "", errors.New("gemini returned no text")
	}
	c.logger.Debug("narrative generated", "model", c.model, "chars", len(text))
	return text, nil
}

// Gemini API request and response types.

type request struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text,omitempty"`
}

type response struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

// text concatenates the text parts of the first candidate.
func (r response) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return strings.TrimSpace(b.String())
}

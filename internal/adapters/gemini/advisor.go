// Package gemini adapts the Google Gemini generateContent API into the
// session advisor the playlist engine consults. The advisor is strictly
// best-effort: any transport, decode, or validation failure yields an error
// the engine degrades on, never a partial result.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/karl2522/audiora/backend/internal/core/domain"
	"github.com/karl2522/audiora/backend/internal/core/ports"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// defaultModels are tried in order until one answers.
var defaultModels = []string{
	"gemini-2.5-pro",
	"gemini-2.5-flash",
	"gemini-2.0-flash-exp",
	"gemini-1.5-flash",
	"gemini-1.5-pro",
}

// ErrNoAPIKey means the advisor was constructed without credentials.
var ErrNoAPIKey = errors.New("gemini: api key not configured")

// Config tunes the Gemini client.
type Config struct {
	APIKey     string
	BaseURL    string
	Models     []string
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client calls Gemini's generateContent endpoint with model fallback.
type Client struct {
	apiKey     string
	baseURL    string
	models     []string
	httpClient *http.Client
	validate   *validator.Validate
	logger     zerolog.Logger
}

var _ ports.SessionAdvisor = (*Client)(nil)

// NewClient constructs a Gemini advisor client.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	models := cfg.Models
	if len(models) == 0 {
		models = defaultModels
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		models:     models,
		httpClient: httpClient,
		validate:   validator.New(),
		logger:     cfg.Logger.With().Str("component", "gemini").Logger(),
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// GetSessionParameters asks the model to configure the session for this
// profile. The response must decode and pass range validation as a whole.
func (c *Client) GetSessionParameters(ctx context.Context, profile domain.TasteProfile, sessionContext string) (*domain.SessionParameters, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	text, err := c.generateWithFallback(ctx, buildPrompt(profile, sessionContext))
	if err != nil {
		return nil, err
	}

	var params domain.SessionParameters
	if err := json.Unmarshal([]byte(stripFences(text)), &params); err != nil {
		return nil, fmt.Errorf("gemini: decode session parameters: %w", err)
	}
	if err := c.validate.Struct(&params); err != nil {
		return nil, fmt.Errorf("gemini: invalid session parameters: %w", err)
	}

	params.VibeDescription = stripMarkup(params.VibeDescription)
	return &params, nil
}

// generateWithFallback walks the model list, retrying rate limits per model,
// and returns the first non-empty response text.
func (c *Client) generateWithFallback(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for _, model := range c.models {
		text, err := c.generate(ctx, model, prompt)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("gemini: %w", ctx.Err())
		}
		lastErr = err
		c.logger.Warn().Err(err).Str("model", model).Msg("model failed, trying next")
	}
	return "", fmt.Errorf("gemini: all models failed: %w", lastErr)
}

type rateLimitError struct{}

func (rateLimitError) Error() string { return "gemini: rate limited" }

func (c *Client) generate(ctx context.Context, model, prompt string) (string, error) {
	var text string
	err := retry.Do(
		func() error {
			var err error
			text, err = c.generateOnce(ctx, model, prompt)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(2*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var rl rateLimitError
			return errors.As(err, &rl)
		}),
	)
	return text, err
}

func (c *Client) generateOnce(ctx context.Context, model, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("gemini: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("gemini: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", rateLimitError{}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("gemini: unexpected status %d", resp.StatusCode)
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("gemini: decode response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: empty response")
	}

	text := strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", fmt.Errorf("gemini: empty response")
	}
	return text, nil
}

// stripFences removes markdown code fences models wrap JSON in.
func stripFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// stripMarkup drops angle brackets from model-written copy before it reaches
// any rendering surface.
func stripMarkup(s string) string {
	s = strings.ReplaceAll(s, "<", "")
	s = strings.ReplaceAll(s, ">", "")
	return strings.TrimSpace(s)
}

package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/sightline/sightline/internal/config"
	"github.com/sightline/sightline/pkg/logger"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiProvider calls the Gemini generateContent API.
type GeminiProvider struct {
	logger  logger.Logger
	client  *http.Client
	limiter *rate.Limiter
	apiKey  string
	model   string
	baseURL string
	timeout time.Duration
}

// NewGeminiProvider creates a provider from config. A nil client gets a
// default one; callers normally pass a shared instrumented client.
func NewGeminiProvider(cfg config.ProviderConfig, client *http.Client) *GeminiProvider {
	return NewGeminiProviderWithLogger(cfg, client, logger.GetGlobalLogger())
}

// NewGeminiProviderWithLogger creates a provider with a custom logger.
func NewGeminiProviderWithLogger(cfg config.ProviderConfig, client *http.Client, log logger.Logger) *GeminiProvider {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	return &GeminiProvider{
		logger:  log,
		client:  client,
		limiter: newProviderLimiter(cfg.RequestsPerMinute),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		timeout: cfg.Timeout.Std(),
	}
}

// Name identifies the provider in logs.
func (p *GeminiProvider) Name() string { return "gemini" }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

// geminiResponse is the subset of the generateContent reply we read.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Suggest sends the prompt and returns the first candidate's text.
func (p *GeminiProvider) Suggest(ctx context.Context, prompt string) (string, error) {
	if p.apiKey == "" {
		return "", fmt.Errorf("gemini: %w: no api key configured", ErrUnavailable)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("gemini: waiting for rate limiter: %w", err)
		}
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("gemini: encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, p.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("gemini: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini: sending request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("gemini: %w", ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini: unexpected status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	var decoded geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("gemini: decoding response: %w", err)
	}

	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: %w", ErrNoResponse)
	}

	text := strings.TrimSpace(decoded.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", fmt.Errorf("gemini: %w", ErrNoResponse)
	}

	p.logger.Debug("Gemini suggestion generated", "model", p.model, "chars", len(text))
	return text, nil
}

// newProviderLimiter spaces requests evenly across a minute. Zero or
// negative rates mean no limiting.
func newProviderLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
}

// readErrorBody returns a short excerpt of an error response body.
func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil {
		return "<unreadable body>"
	}
	return strings.TrimSpace(string(body))
}

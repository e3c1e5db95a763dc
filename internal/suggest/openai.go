package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/sightline/sightline/internal/config"
	"github.com/sightline/sightline/pkg/logger"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIProvider calls the OpenAI chat completions API.
type OpenAIProvider struct {
	logger  logger.Logger
	client  *http.Client
	limiter *rate.Limiter
	apiKey  string
	model   string
	baseURL string
	timeout time.Duration
}

// NewOpenAIProvider creates a provider from config.
func NewOpenAIProvider(cfg config.ProviderConfig, client *http.Client) *OpenAIProvider {
	return NewOpenAIProviderWithLogger(cfg, client, logger.GetGlobalLogger())
}

// NewOpenAIProviderWithLogger creates a provider with a custom logger.
func NewOpenAIProviderWithLogger(cfg config.ProviderConfig, client *http.Client, log logger.Logger) *OpenAIProvider {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &OpenAIProvider{
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
func (p *OpenAIProvider) Name() string { return "openai" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

// chatResponse is the subset of the completions reply we read.
type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Suggest sends the prompt and returns the first choice's content.
func (p *OpenAIProvider) Suggest(ctx context.Context, prompt string) (string, error) {
	if p.apiKey == "" {
		return "", fmt.Errorf("openai: %w: no api key configured", ErrUnavailable)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("openai: waiting for rate limiter: %w", err)
		}
	}

	body, err := json.Marshal(chatRequest{
		Model:    p.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("openai: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("openai: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai: sending request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("openai: %w", ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai: unexpected status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("openai: decoding response: %w", err)
	}

	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("openai: %w", ErrNoResponse)
	}

	text := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("openai: %w", ErrNoResponse)
	}

	p.logger.Debug("OpenAI suggestion generated", "model", p.model, "chars", len(text))
	return text, nil
}

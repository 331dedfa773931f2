package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultGrokBaseURL = "https://api.x.ai/v1"
	DefaultGrokModel   = "grok-3-mini"
)

const systemPrompt = "You write short, natural social media posts. Reply with the post text only."

// GrokClient xAI chat completions over HTTP.
type GrokClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

type GrokConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

func NewGrokClient(cfg GrokConfig, logger *zap.Logger) *GrokClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGrokBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGrokModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &GrokClient{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

type grokMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type grokRequest struct {
	Model       string        `json:"model"`
	Messages    []grokMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type grokResponse struct {
	Choices []struct {
		Message grokMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *GrokClient) Name() string { return ProviderGrok }

func (c *GrokClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("grok: API key not configured")
	}

	payload, err := json.Marshal(grokRequest{
		Model: c.model,
		Messages: []grokMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   300,
		Temperature: 0.8,
	})
	if err != nil {
		return "", fmt.Errorf("grok: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("grok: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("grok: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("grok: failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("grok: request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var out grokResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("grok: failed to parse response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("grok: API error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("grok: no completion returned")
	}

	text := strings.TrimSpace(out.Choices[0].Message.Content)
	c.logger.Debug("grok completion", zap.String("model", c.model), zap.Duration("took", time.Since(start)), zap.Int("len", len(text)))
	return text, nil
}

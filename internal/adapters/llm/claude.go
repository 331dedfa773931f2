package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"
)

const DefaultClaudeModel = "claude-3-5-haiku-latest"

// ClaudeClient Anthropic Messages API through the official SDK.
type ClaudeClient struct {
	client *anthropic.Client
	model  string
	logger *zap.Logger
}

func NewClaudeClient(apiKey, model string, logger *zap.Logger, opts ...option.RequestOption) *ClaudeClient {
	if model == "" {
		model = DefaultClaudeModel
	}
	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &ClaudeClient{
		client: &client,
		model:  model,
		logger: logger,
	}
}

func (c *ClaudeClient) Name() string { return ProviderClaude }

func (c *ClaudeClient) Generate(ctx context.Context, prompt string) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 300,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude: failed to call API: %w", err)
	}

	var text string
	for _, block := range message.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("claude: empty response")
	}
	c.logger.Debug("claude completion", zap.String("model", c.model), zap.Int("len", len(text)))
	return text, nil
}

// Package llm holds the text generation providers and picks one from config.
package llm

import (
	"fmt"

	llmPort "xpilot/internal/ports/llm"

	"go.uber.org/zap"
)

const (
	ProviderGrok   = "grok"
	ProviderClaude = "claude"
)

type Config struct {
	Provider     string
	GrokAPIKey   string
	GrokModel    string
	GrokBaseURL  string
	ClaudeAPIKey string
	ClaudeModel  string
}

// New returns the preferred provider. The other provider is used only when
// the preferred one has no API key.
func New(cfg Config, logger *zap.Logger) (llmPort.TextGenerator, error) {
	grok := func() llmPort.TextGenerator {
		return NewGrokClient(GrokConfig{APIKey: cfg.GrokAPIKey, Model: cfg.GrokModel, BaseURL: cfg.GrokBaseURL}, logger)
	}
	claude := func() llmPort.TextGenerator {
		return NewClaudeClient(cfg.ClaudeAPIKey, cfg.ClaudeModel, logger)
	}

	preferred, fallback := ProviderGrok, ProviderClaude
	switch cfg.Provider {
	case ProviderClaude:
		preferred, fallback = ProviderClaude, ProviderGrok
	case ProviderGrok, "":
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}

	keys := map[string]string{ProviderGrok: cfg.GrokAPIKey, ProviderClaude: cfg.ClaudeAPIKey}
	build := map[string]func() llmPort.TextGenerator{ProviderGrok: grok, ProviderClaude: claude}

	if keys[preferred] != "" {
		return build[preferred](), nil
	}
	if keys[fallback] != "" {
		logger.Warn("⚠️ preferred llm provider has no API key, falling back", zap.String("preferred", preferred), zap.String("fallback", fallback))
		return build[fallback](), nil
	}
	return nil, fmt.Errorf("no API key configured for %s or %s", ProviderGrok, ProviderClaude)
}

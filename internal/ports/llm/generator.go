package llm

import "context"

// TextGenerator produces a single completion for prompt.
type TextGenerator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

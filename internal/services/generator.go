package services

import "context"

// GenerateOptions tunes a single model call.
type GenerateOptions struct {
	MaxOutputTokens int
	Temperature     float32
}

// TextGenerator is the minimal surface the assistant needs from a language
// model provider. Implementations return the raw model text; parsing and
// fallback handling live in AssistantService.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	Name() string
	Model() string
}

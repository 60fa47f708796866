// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// GenerationService produces answer text from a fully assembled prompt.
//
// Implementations may include:
//   - OpenAI (gpt-4o-mini, gpt-4o)
//   - Ollama (local models)
//   - Any OpenAI-compatible inference server
type GenerationService interface {
	// Generate produces a completion for the prompt. The context
	// deadline bounds the call; implementations must return promptly
	// once it expires.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}

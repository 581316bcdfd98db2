package driven

import (
	"context"
)

// CompletionRequest is a single-shot prompt for a language model
type CompletionRequest struct {
	// System sets the model's instructions; may be empty
	System string

	// Prompt is the user message
	Prompt string

	// MaxTokens bounds the response length; 0 uses the adapter default
	MaxTokens int

	// Temperature controls sampling; adapters clamp to the provider's range
	Temperature float32
}

// LLMService provides large language model completions
type LLMService interface {
	// Complete sends one prompt and returns the text of the reply
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// Model returns the model name being used
	Model() string

	// Ping verifies the LLM service is available
	Ping(ctx context.Context) error

	// Close releases resources held by the LLM service
	Close() error
}

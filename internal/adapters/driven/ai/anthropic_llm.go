package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure AnthropicLLM implements LLMService
var _ driven.LLMService = (*AnthropicLLM)(nil)

const defaultAnthropicModel = "claude-3-5-haiku-latest"

// AnthropicLLM implements LLMService using the Anthropic Messages API
type AnthropicLLM struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicLLM creates a new Anthropic chat service
func NewAnthropicLLM(apiKey, model, baseURL string) (driven.LLMService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}
	if model == "" {
		model = defaultAnthropicModel
	}

	opts := []anthropicopt.RequestOption{
		anthropicopt.WithAPIKey(apiKey),
		anthropicopt.WithRequestTimeout(defaultRequestTimeout),
	}
	if baseURL != "" {
		opts = append(opts, anthropicopt.WithBaseURL(strings.TrimRight(baseURL, "/")+"/"))
	}

	client := anthropic.NewClient(opts...)
	return &AnthropicLLM{client: &client, model: model}, nil
}

// Complete sends one prompt and returns the reply text
func (l *AnthropicLLM) Complete(ctx context.Context, req driven.CompletionRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(l.model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(float64(clampTemperature(req.Temperature, 1))),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	resp, err := l.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("messages request failed: %w", err)
	}

	var b strings.Builder
	for _, content := range resp.Content {
		if text, ok := content.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(text.Text)
		}
	}

	result := strings.TrimSpace(b.String())
	if result == "" {
		return "", errors.New("no response from Anthropic")
	}
	return result, nil
}

// Model returns the model name
func (l *AnthropicLLM) Model() string {
	return l.model
}

// Ping sends a one-token request
func (l *AnthropicLLM) Ping(ctx context.Context) error {
	_, err := l.Complete(ctx, driven.CompletionRequest{Prompt: "ping", MaxTokens: 1})
	return err
}

// Close releases resources
func (l *AnthropicLLM) Close() error {
	return nil
}

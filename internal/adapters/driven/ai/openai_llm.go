package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure OpenAILLM implements LLMService
var _ driven.LLMService = (*OpenAILLM)(nil)

const (
	defaultOpenAIChatModel = "gpt-4o-mini"
	defaultOllamaChatModel = "llama3.2"
	defaultMaxTokens       = 1024
)

// OpenAILLM implements LLMService with the chat completions API.
// Ollama's OpenAI-compatible endpoint is served by the same type.
type OpenAILLM struct {
	client *openai.Client
	model  string
}

// NewOpenAILLM creates a new OpenAI chat service
func NewOpenAILLM(apiKey, model, baseURL string) (driven.LLMService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		model = defaultOpenAIChatModel
	}
	return &OpenAILLM{
		client: openai.NewClientWithConfig(openAIConfig(apiKey, baseURL)),
		model:  model,
	}, nil
}

// NewOllamaLLM creates a chat service backed by a local Ollama server
func NewOllamaLLM(baseURL, model string) (driven.LLMService, error) {
	if model == "" {
		model = defaultOllamaChatModel
	}
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	return &OpenAILLM{
		client: openai.NewClientWithConfig(openAIConfig("ollama", ollamaAPIBase(baseURL))),
		model:  model,
	}, nil
}

// Complete sends one prompt and returns the reply text
func (l *OpenAILLM) Complete(ctx context.Context, req driven.CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	resp, err := l.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       l.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: clampTemperature(req.Temperature, 2),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", describeOpenAIError(err))
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("empty response from OpenAI")
	}
	return content, nil
}

// Model returns the model name
func (l *OpenAILLM) Model() string {
	return l.model
}

// Ping lists models to verify the endpoint and credentials
func (l *OpenAILLM) Ping(ctx context.Context) error {
	if _, err := l.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models failed: %w", describeOpenAIError(err))
	}
	return nil
}

// Close releases resources
func (l *OpenAILLM) Close() error {
	return nil
}

func clampTemperature(t, max float32) float32 {
	switch {
	case t < 0:
		return 0
	case t > max:
		return max
	default:
		return t
	}
}

package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	genaiopt "google.golang.org/api/option"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure GoogleLLM implements LLMService
var _ driven.LLMService = (*GoogleLLM)(nil)

const defaultGoogleChatModel = "gemini-1.5-flash"

// GoogleLLM implements LLMService using the Gemini API
type GoogleLLM struct {
	client *genai.Client
	model  string
}

// NewGoogleLLM creates a new Gemini chat service
func NewGoogleLLM(apiKey, model string) (driven.LLMService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Google API key is required")
	}
	if model == "" {
		model = defaultGoogleChatModel
	}

	client, err := genai.NewClient(context.Background(), genaiopt.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GoogleLLM{client: client, model: model}, nil
}

// Complete sends one prompt and returns the reply text
func (l *GoogleLLM) Complete(ctx context.Context, req driven.CompletionRequest) (string, error) {
	// GenerativeModel carries per-call settings, so each call gets its own
	model := l.client.GenerativeModel(l.model)
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	model.SetMaxOutputTokens(int32(maxTokens))
	model.SetTemperature(clampTemperature(req.Temperature, 2))
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("generate content failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no response from Google")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	result := strings.TrimSpace(b.String())
	if result == "" {
		return "", errors.New("empty response from Google")
	}
	return result, nil
}

// Model returns the model name
func (l *GoogleLLM) Model() string {
	return l.model
}

// Ping counts tokens for a short prompt, which needs a valid key but no generation
func (l *GoogleLLM) Ping(ctx context.Context) error {
	if _, err := l.client.GenerativeModel(l.model).CountTokens(ctx, genai.Text("ping")); err != nil {
		return fmt.Errorf("count tokens failed: %w", err)
	}
	return nil
}

// Close releases the underlying gRPC connection
func (l *GoogleLLM) Close() error {
	return l.client.Close()
}

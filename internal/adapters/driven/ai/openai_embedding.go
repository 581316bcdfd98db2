package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure OpenAIEmbedding implements EmbeddingService
var _ driven.EmbeddingService = (*OpenAIEmbedding)(nil)

const (
	defaultOpenAIEmbeddingModel = "text-embedding-3-small"
	defaultOllamaEmbeddingModel = "nomic-embed-text"
	defaultOllamaBaseURL        = "http://localhost:11434/v1"
	defaultRequestTimeout       = 60 * time.Second
)

// Model dimensions for embedding models served over the OpenAI wire format
var openAIModelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
	"nomic-embed-text":       768,
	"mxbai-embed-large":      1024,
	"all-minilm":             384,
}

// OpenAIEmbedding implements EmbeddingService using the OpenAI embeddings API.
// Ollama exposes the same API under /v1, so it shares this adapter.
type OpenAIEmbedding struct {
	client     *openai.Client
	model      string
	dimensions atomic.Int64
}

// NewOpenAIEmbedding creates a new OpenAI embedding service
func NewOpenAIEmbedding(apiKey, model, baseURL string) (driven.EmbeddingService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		model = defaultOpenAIEmbeddingModel
	}
	return newOpenAICompatibleEmbedding(apiKey, model, baseURL), nil
}

// NewOllamaEmbedding creates an embedding service backed by a local Ollama server
func NewOllamaEmbedding(baseURL, model string) (driven.EmbeddingService, error) {
	if model == "" {
		model = defaultOllamaEmbeddingModel
	}
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	return newOpenAICompatibleEmbedding("ollama", model, ollamaAPIBase(baseURL)), nil
}

func newOpenAICompatibleEmbedding(apiKey, model, baseURL string) *OpenAIEmbedding {
	e := &OpenAIEmbedding{
		client: openai.NewClientWithConfig(openAIConfig(apiKey, baseURL)),
		model:  model,
	}
	// Unknown models learn their dimension from the first response
	if dims, ok := openAIModelDimensions[model]; ok {
		e.dimensions.Store(int64(dims))
	}
	return e
}

// Embed generates embeddings for multiple texts
func (e *OpenAIEmbedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", describeOpenAIError(err))
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response has %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	// Responses carry an index; order by it rather than trusting array order
	embeddings := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) || embeddings[d.Index] != nil {
			return nil, fmt.Errorf("embedding response has invalid index %d", d.Index)
		}
		embeddings[d.Index] = d.Embedding
	}
	if len(embeddings[0]) > 0 {
		e.dimensions.CompareAndSwap(0, int64(len(embeddings[0])))
	}
	return embeddings, nil
}

// EmbedQuery generates an embedding for a search query
func (e *OpenAIEmbedding) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	embeddings, err := e.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// Dimensions returns the embedding dimension size, 0 until known
func (e *OpenAIEmbedding) Dimensions() int {
	return int(e.dimensions.Load())
}

// Model returns the model name
func (e *OpenAIEmbedding) Model() string {
	return e.model
}

// HealthCheck verifies the embedding service is available
func (e *OpenAIEmbedding) HealthCheck(ctx context.Context) error {
	_, err := e.EmbedQuery(ctx, "health check")
	return err
}

// Close releases resources
func (e *OpenAIEmbedding) Close() error {
	return nil
}

func openAIConfig(apiKey, baseURL string) openai.ClientConfig {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: defaultRequestTimeout}
	return cfg
}

// ollamaAPIBase points a bare Ollama host at its OpenAI-compatible endpoint
func ollamaAPIBase(baseURL string) string {
	baseURL = strings.TrimRight(baseURL, "/")
	if !strings.HasSuffix(baseURL, "/v1") {
		baseURL += "/v1"
	}
	return baseURL
}

func describeOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("status %d: %w", apiErr.HTTPStatusCode, err)
	}
	return err
}

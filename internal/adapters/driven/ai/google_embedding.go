package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	genaiopt "google.golang.org/api/option"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure GoogleEmbedding implements EmbeddingService
var _ driven.EmbeddingService = (*GoogleEmbedding)(nil)

const (
	defaultGoogleEmbeddingModel = "text-embedding-004"

	// Gemini rejects batch requests above this many contents
	googleMaxBatch = 100
)

var googleModelDimensions = map[string]int{
	"text-embedding-004": 768,
	"embedding-001":      768,
}

// GoogleEmbedding implements EmbeddingService using the Gemini embedding API
type GoogleEmbedding struct {
	client     *genai.Client
	model      string
	dimensions int
}

// NewGoogleEmbedding creates a new Gemini embedding service
func NewGoogleEmbedding(apiKey, model string) (driven.EmbeddingService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Google API key is required")
	}
	if model == "" {
		model = defaultGoogleEmbeddingModel
	}
	dimensions, ok := googleModelDimensions[model]
	if !ok {
		dimensions = 768
	}

	client, err := genai.NewClient(context.Background(), genaiopt.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GoogleEmbedding{client: client, model: model, dimensions: dimensions}, nil
}

// Embed generates embeddings for multiple texts
func (e *GoogleEmbedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	em := e.client.EmbeddingModel(e.model)
	embeddings := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += googleMaxBatch {
		end := min(start+googleMaxBatch, len(texts))
		batch := em.NewBatch()
		for _, t := range texts[start:end] {
			batch.AddContent(genai.Text(t))
		}

		resp, err := em.BatchEmbedContents(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("batch embed failed: %w", err)
		}
		if len(resp.Embeddings) != end-start {
			return nil, fmt.Errorf("embedding response has %d vectors for %d inputs", len(resp.Embeddings), end-start)
		}
		for _, emb := range resp.Embeddings {
			if emb == nil || len(emb.Values) == 0 {
				return nil, errors.New("empty embedding from Google")
			}
			embeddings = append(embeddings, emb.Values)
		}
	}
	return embeddings, nil
}

// EmbedQuery generates an embedding for a search query
func (e *GoogleEmbedding) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	resp, err := e.client.EmbeddingModel(e.model).EmbedContent(ctx, genai.Text(query))
	if err != nil {
		return nil, fmt.Errorf("embed failed: %w", err)
	}
	if resp == nil || resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, errors.New("no response from Google")
	}
	return resp.Embedding.Values, nil
}

// Dimensions returns the embedding dimension size
func (e *GoogleEmbedding) Dimensions() int {
	return e.dimensions
}

// Model returns the model name
func (e *GoogleEmbedding) Model() string {
	return e.model
}

// HealthCheck verifies the embedding service is available
func (e *GoogleEmbedding) HealthCheck(ctx context.Context) error {
	_, err := e.EmbedQuery(ctx, "health check")
	return err
}

// Close releases the underlying gRPC connection
func (e *GoogleEmbedding) Close() error {
	return e.client.Close()
}

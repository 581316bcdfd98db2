package mocks

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*MockEmbeddingService)(nil)

// MockEmbeddingService is a mock implementation of EmbeddingService for testing.
// Texts listed in Vectors embed to that vector; everything else gets a
// deterministic hash-derived vector.
type MockEmbeddingService struct {
	mu         sync.Mutex
	dimensions int
	model      string
	failNext   bool
	closed     bool

	// Vectors pins the embedding of specific texts
	Vectors map[string][]float32

	// Custom behavior hooks (optional)
	EmbedFn      func(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQueryFn func(ctx context.Context, query string) ([]float32, error)
	HealthFn     func(ctx context.Context) error

	EmbedCalls      int
	EmbedQueryCalls int
}

// NewMockEmbeddingService creates a new MockEmbeddingService
func NewMockEmbeddingService() *MockEmbeddingService {
	return &MockEmbeddingService{
		dimensions: 384,
		model:      "mock-embedding-model",
		Vectors:    make(map[string][]float32),
	}
}

func (m *MockEmbeddingService) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.EmbedCalls++
	fn := m.EmbedFn
	fail := m.failNext
	m.failNext = false
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, texts)
	}
	if fail {
		return nil, context.DeadlineExceeded
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := make([][]float32, len(texts))
	for i, text := range texts {
		result[i] = m.vector(text)
	}
	return result, nil
}

func (m *MockEmbeddingService) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	m.mu.Lock()
	m.EmbedQueryCalls++
	fn := m.EmbedQueryFn
	fail := m.failNext
	m.failNext = false
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, query)
	}
	if fail {
		return nil, context.DeadlineExceeded
	}
	return m.vector(query), nil
}

func (m *MockEmbeddingService) Dimensions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dimensions
}

func (m *MockEmbeddingService) Model() string {
	return m.model
}

func (m *MockEmbeddingService) HealthCheck(ctx context.Context) error {
	if m.HealthFn != nil {
		return m.HealthFn(ctx)
	}
	return nil
}

func (m *MockEmbeddingService) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MockEmbeddingService) vector(text string) []float32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.Vectors[text]; ok {
		out := make([]float32, len(v))
		copy(out, v)
		return out
	}
	return generateEmbedding(text, m.dimensions)
}

// generateEmbedding generates a deterministic embedding based on text hash
func generateEmbedding(text string, dims int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	embedding := make([]float32, dims)
	for i := range embedding {
		seed = seed*1103515245 + 12345
		embedding[i] = float32(seed%1000) / 1000.0
	}
	return embedding
}

// Helper methods for testing

func (m *MockEmbeddingService) SetFailNext(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = fail
}

func (m *MockEmbeddingService) SetDimensions(dim int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dimensions = dim
}

func (m *MockEmbeddingService) SetVector(text string, v []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Vectors[text] = v
}

func (m *MockEmbeddingService) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

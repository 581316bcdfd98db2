package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.LLMService = (*MockLLMService)(nil)

// MockLLMService records prompts and returns canned replies.
type MockLLMService struct {
	mu       sync.Mutex
	model    string
	requests []driven.CompletionRequest
	closed   bool

	// Reply is returned when CompleteFn is nil
	Reply string

	// Custom behavior hooks (optional)
	CompleteFn func(ctx context.Context, req driven.CompletionRequest) (string, error)
	PingFn     func(ctx context.Context) error
}

// NewMockLLMService creates a mock that answers every prompt with reply
func NewMockLLMService(reply string) *MockLLMService {
	return &MockLLMService{model: "mock-llm", Reply: reply}
}

func (m *MockLLMService) Complete(ctx context.Context, req driven.CompletionRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	fn := m.CompleteFn
	reply := m.Reply
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return reply, nil
}

func (m *MockLLMService) Model() string {
	return m.model
}

func (m *MockLLMService) Ping(ctx context.Context) error {
	if m.PingFn != nil {
		return m.PingFn(ctx)
	}
	return nil
}

func (m *MockLLMService) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Requests returns every prompt received so far
func (m *MockLLMService) Requests() []driven.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]driven.CompletionRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// Calls returns the number of Complete calls
func (m *MockLLMService) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *MockLLMService) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

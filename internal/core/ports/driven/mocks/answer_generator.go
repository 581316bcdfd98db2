package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.AnswerGenerator = (*MockAnswerGenerator)(nil)

// MockAnswerGenerator returns a fixed answer and records the chunks it was given
type MockAnswerGenerator struct {
	mu     sync.Mutex
	Answer string
	Err    error

	// GenerateFn overrides Answer and Err when set
	GenerateFn func(ctx context.Context, question string, chunks []domain.Chunk) (string, error)

	LastQuestion string
	LastChunks   []domain.Chunk
	Calls        int
}

func (m *MockAnswerGenerator) Generate(ctx context.Context, question string, chunks []domain.Chunk) (string, error) {
	m.mu.Lock()
	m.Calls++
	m.LastQuestion = question
	m.LastChunks = chunks
	fn := m.GenerateFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, question, chunks)
	}
	if m.Err != nil {
		return "", m.Err
	}
	return m.Answer, nil
}

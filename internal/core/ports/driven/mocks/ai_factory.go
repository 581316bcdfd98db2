package mocks

import (
	"errors"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.AIServiceFactory = (*MockAIServiceFactory)(nil)

// MockAIServiceFactory hands out the configured mock services
type MockAIServiceFactory struct {
	Embedding *MockEmbeddingService
	LLM       *MockLLMService

	// Err fails every Create call when set
	Err error
}

func (f *MockAIServiceFactory) CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if f.Embedding == nil {
		return nil, errors.New("no mock embedding service")
	}
	return f.Embedding, nil
}

func (f *MockAIServiceFactory) CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if f.LLM == nil {
		return nil, errors.New("no mock llm service")
	}
	return f.LLM, nil
}

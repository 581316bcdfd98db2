package runtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Services holds the embedding and language model services that can be
// swapped at runtime without restarting. Readers always see a whole service,
// never a half-swapped one.
type Services struct {
	mu sync.RWMutex

	config *domain.RuntimeConfig

	// Dynamic services (can be nil, updated at runtime)
	embeddingService driven.EmbeddingService
	llmService       driven.LLMService
}

// NewServices creates a new Services registry
func NewServices(config *domain.RuntimeConfig) *Services {
	return &Services{
		config: config,
	}
}

// Config returns the runtime configuration
func (s *Services) Config() *domain.RuntimeConfig {
	return s.config
}

// EmbeddingService returns the current embedding service (may be nil)
func (s *Services) EmbeddingService() driven.EmbeddingService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.embeddingService
}

// LLMService returns the current LLM service (may be nil)
func (s *Services) LLMService() driven.LLMService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.llmService
}

// Embedder returns the embedding service or domain.ErrEmbeddingUnavailable if none is configured
func (s *Services) Embedder() (driven.EmbeddingService, error) {
	svc := s.EmbeddingService()
	if svc == nil {
		return nil, fmt.Errorf("%w: no embedding provider configured", domain.ErrEmbeddingUnavailable)
	}
	return svc, nil
}

// LLM returns the LLM service or domain.ErrGenerationUnavailable if none is configured
func (s *Services) LLM() (driven.LLMService, error) {
	svc := s.LLMService()
	if svc == nil {
		return nil, fmt.Errorf("%w: no language model configured", domain.ErrGenerationUnavailable)
	}
	return svc, nil
}

// SetEmbeddingService updates the embedding service.
// Closes the old service if present. Updates config flags.
func (s *Services) SetEmbeddingService(svc driven.EmbeddingService) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.embeddingService != nil && s.embeddingService != svc {
		_ = s.embeddingService.Close()
	}

	s.embeddingService = svc
	s.config.SetEmbeddingAvailable(svc != nil)
}

// SetLLMService updates the LLM service.
// Closes the old service if present. Updates config flags.
func (s *Services) SetLLMService(svc driven.LLMService) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.llmService != nil && s.llmService != svc {
		_ = s.llmService.Close()
	}

	s.llmService = svc
	s.config.SetLLMAvailable(svc != nil)
}

// Close shuts down all services
func (s *Services) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.embeddingService != nil {
		_ = s.embeddingService.Close()
		s.embeddingService = nil
	}
	if s.llmService != nil {
		_ = s.llmService.Close()
		s.llmService = nil
	}

	s.config.SetEmbeddingAvailable(false)
	s.config.SetLLMAvailable(false)

	return nil
}

// ValidateAndSetEmbedding health-checks svc before swapping it in.
// On failure svc is closed and the current service stays active.
func (s *Services) ValidateAndSetEmbedding(ctx context.Context, svc driven.EmbeddingService) error {
	if svc == nil {
		s.SetEmbeddingService(nil)
		return nil
	}

	if err := svc.HealthCheck(ctx); err != nil {
		_ = svc.Close()
		return fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}

	s.SetEmbeddingService(svc)
	return nil
}

// ValidateAndSetLLM pings svc before swapping it in.
// On failure svc is closed and the current service stays active.
func (s *Services) ValidateAndSetLLM(ctx context.Context, svc driven.LLMService) error {
	if svc == nil {
		s.SetLLMService(nil)
		return nil
	}

	if err := svc.Ping(ctx); err != nil {
		_ = svc.Close()
		return fmt.Errorf("%w: %v", domain.ErrGenerationUnavailable, err)
	}

	s.SetLLMService(svc)
	return nil
}

package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/runtime"
)

// Ensure aiSettingsService implements AISettingsService
var _ driving.AISettingsService = (*aiSettingsService)(nil)

// aiSettingsService implements the AISettingsService interface.
// Settings live in memory; the process starts from configuration.
type aiSettingsService struct {
	mu        sync.Mutex
	settings  domain.AISettings
	lastError map[string]string

	aiFactory driven.AIServiceFactory
	services  *runtime.Services
	logger    *slog.Logger
}

// NewAISettingsService creates a new AISettingsService
func NewAISettingsService(aiFactory driven.AIServiceFactory, services *runtime.Services, logger *slog.Logger) driving.AISettingsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &aiSettingsService{
		aiFactory: aiFactory,
		services:  services,
		lastError: make(map[string]string),
		logger:    logger,
	}
}

// UpdateAISettings updates AI configuration and hot-reloads services
func (s *aiSettingsService) UpdateAISettings(ctx context.Context, req driving.UpdateAISettingsRequest) (*driving.AISettingsStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.settings

	if req.Embedding != nil {
		next.Embedding = domain.EmbeddingSettings{
			Provider: req.Embedding.Provider,
			Model:    req.Embedding.Model,
			APIKey:   req.Embedding.APIKey,
			BaseURL:  req.Embedding.BaseURL,
		}
	}
	if req.LLM != nil {
		next.LLM = domain.LLMSettings{
			Provider: req.LLM.Provider,
			Model:    req.LLM.Model,
			APIKey:   req.LLM.APIKey,
			BaseURL:  req.LLM.BaseURL,
		}
	}

	if err := next.Validate(); err != nil {
		return nil, err
	}
	next.UpdatedAt = time.Now()

	// A provider that fails to activate leaves the previous one, and its settings, in place
	if req.Embedding != nil && !s.applyEmbedding(ctx, &next.Embedding) {
		next.Embedding = s.settings.Embedding
	}
	if req.LLM != nil && !s.applyLLM(ctx, &next.LLM) {
		next.LLM = s.settings.LLM
	}

	s.settings = next
	return s.status(), nil
}

func (s *aiSettingsService) applyEmbedding(ctx context.Context, settings *domain.EmbeddingSettings) bool {
	delete(s.lastError, "embedding")

	if !settings.IsConfigured() {
		// Explicitly disable
		s.services.SetEmbeddingService(nil)
		return true
	}

	svc, err := s.aiFactory.CreateEmbeddingService(settings)
	if err == nil {
		err = s.services.ValidateAndSetEmbedding(ctx, svc)
	}
	if err != nil {
		s.lastError["embedding"] = err.Error()
		s.logger.Warn("embedding provider not activated", "provider", settings.Provider, "error", err)
		return false
	}
	s.logger.Info("embedding provider activated", "provider", settings.Provider, "model", svc.Model())
	return true
}

func (s *aiSettingsService) applyLLM(ctx context.Context, settings *domain.LLMSettings) bool {
	delete(s.lastError, "llm")

	if !settings.IsConfigured() {
		s.services.SetLLMService(nil)
		return true
	}

	svc, err := s.aiFactory.CreateLLMService(settings)
	if err == nil {
		err = s.services.ValidateAndSetLLM(ctx, svc)
	}
	if err != nil {
		s.lastError["llm"] = err.Error()
		s.logger.Warn("language model not activated", "provider", settings.Provider, "error", err)
		return false
	}
	s.logger.Info("language model activated", "provider", settings.Provider, "model", svc.Model())
	return true
}

// GetAIStatus returns the current status of AI services
func (s *aiSettingsService) GetAIStatus(ctx context.Context) (*driving.AISettingsStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status(), nil
}

func (s *aiSettingsService) status() *driving.AISettingsStatus {
	cfg := s.services.Config()
	status := &driving.AISettingsStatus{
		CanAnswer:         cfg.CanAnswer(),
		LockBackend:       cfg.LockBackend,
		TranscriptBackend: cfg.TranscriptBackend,
	}

	status.Embedding.Error = s.lastError["embedding"]
	if embSvc := s.services.EmbeddingService(); embSvc != nil {
		status.Embedding.Available = true
		status.Embedding.Provider = s.settings.Embedding.Provider
		status.Embedding.Model = embSvc.Model()
		status.Embedding.EmbeddingDim = embSvc.Dimensions()
	}

	status.LLM.Error = s.lastError["llm"]
	if llmSvc := s.services.LLMService(); llmSvc != nil {
		status.LLM.Available = true
		status.LLM.Provider = s.settings.LLM.Provider
		status.LLM.Model = llmSvc.Model()
	}

	return status
}

package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// AISettingsService manages the embedding and language model providers at runtime
type AISettingsService interface {
	// GetAIStatus returns the current status of AI services
	GetAIStatus(ctx context.Context) (*AISettingsStatus, error)

	// UpdateAISettings validates, health-checks and hot-swaps AI services.
	// A service whose health check fails is not swapped in and the previous one stays active.
	UpdateAISettings(ctx context.Context, req UpdateAISettingsRequest) (*AISettingsStatus, error)
}

// UpdateAISettingsRequest represents a request to update AI settings
type UpdateAISettingsRequest struct {
	Embedding *EmbeddingSettingsInput `json:"embedding,omitempty"`
	LLM       *LLMSettingsInput       `json:"llm,omitempty"`
}

// EmbeddingSettingsInput is the input for embedding configuration
type EmbeddingSettingsInput struct {
	Provider domain.AIProvider `json:"provider"`
	Model    string            `json:"model"`
	APIKey   string            `json:"api_key"`
	BaseURL  string            `json:"base_url,omitempty"`
}

// LLMSettingsInput is the input for LLM configuration
type LLMSettingsInput struct {
	Provider domain.AIProvider `json:"provider"`
	Model    string            `json:"model"`
	APIKey   string            `json:"api_key"`
	BaseURL  string            `json:"base_url,omitempty"`
}

// AISettingsStatus represents the status of AI services
type AISettingsStatus struct {
	Embedding         AIServiceStatus `json:"embedding"`
	LLM               AIServiceStatus `json:"llm"`
	CanAnswer         bool            `json:"can_answer"`
	LockBackend       string          `json:"lock_backend"`
	TranscriptBackend string          `json:"transcript_backend"`
}

// AIServiceStatus represents the status of a single AI service
type AIServiceStatus struct {
	Available    bool              `json:"available"`
	Provider     domain.AIProvider `json:"provider,omitempty"`
	Model        string            `json:"model,omitempty"`
	EmbeddingDim int               `json:"embedding_dim,omitempty"` // Only for embedding service
	Error        string            `json:"error,omitempty"`         // Set when the last update failed
}

package domain

import (
	"fmt"
	"time"
)

// AIProvider identifies the AI/embedding provider
type AIProvider string

const (
	AIProviderOpenAI    AIProvider = "openai"
	AIProviderAnthropic AIProvider = "anthropic"
	AIProviderOllama    AIProvider = "ollama"
	AIProviderGoogle    AIProvider = "google"
)

// AISettings holds AI service configuration (embedding and LLM)
// This can be updated at runtime via API
type AISettings struct {
	Embedding EmbeddingSettings `json:"embedding" yaml:"embedding"`
	LLM       LLMSettings       `json:"llm" yaml:"llm"`
	UpdatedAt time.Time         `json:"updated_at" yaml:"-"`
}

// EmbeddingSettings configures the embedding service
type EmbeddingSettings struct {
	Provider AIProvider `json:"provider" yaml:"provider"`
	Model    string     `json:"model" yaml:"model"`
	APIKey   string     `json:"api_key,omitempty" yaml:"api_key"`
	BaseURL  string     `json:"base_url,omitempty" yaml:"base_url"`
}

// IsConfigured returns true if embedding settings are properly configured
func (e *EmbeddingSettings) IsConfigured() bool {
	if e.Provider == "" {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings configures the LLM service
type LLMSettings struct {
	Provider AIProvider `json:"provider" yaml:"provider"`
	Model    string     `json:"model" yaml:"model"`
	APIKey   string     `json:"api_key,omitempty" yaml:"api_key"`
	BaseURL  string     `json:"base_url,omitempty" yaml:"base_url"`
}

// IsConfigured returns true if LLM settings are properly configured
func (l *LLMSettings) IsConfigured() bool {
	if l.Provider == "" {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// RequiresAPIKey returns true if this provider requires an API key
func (p AIProvider) RequiresAPIKey() bool {
	switch p {
	case AIProviderOllama:
		return false // Self-hosted, no API key needed
	default:
		return true
	}
}

// IsValid returns true if this is a known provider
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOpenAI, AIProviderAnthropic, AIProviderOllama, AIProviderGoogle:
		return true
	default:
		return false
	}
}

// SupportsEmbedding returns true if the provider offers an embedding API
func (p AIProvider) SupportsEmbedding() bool {
	return p != AIProviderAnthropic
}

// Validate checks if AISettings are valid
func (s *AISettings) Validate() error {
	if s.Embedding.Provider != "" {
		if !s.Embedding.Provider.IsValid() {
			return ErrInvalidProvider
		}
		if !s.Embedding.Provider.SupportsEmbedding() {
			return fmt.Errorf("%w: %s has no embedding API", ErrInvalidProvider, s.Embedding.Provider)
		}
	}
	if s.LLM.Provider != "" && !s.LLM.Provider.IsValid() {
		return ErrInvalidProvider
	}
	return nil
}

// QASettings tunes chunking, retrieval and embedding throughput
type QASettings struct {
	MaxChunkSize     int     `json:"max_chunk_size" yaml:"max_chunk_size"`
	ChunkOverlap     int     `json:"chunk_overlap" yaml:"chunk_overlap"`
	TopK             int     `json:"top_k" yaml:"top_k"`
	HistoryWindow    int     `json:"history_window" yaml:"history_window"` // Turns fed to the reformulator
	EmbedBatchSize   int     `json:"embed_batch_size" yaml:"embed_batch_size"`
	EmbedConcurrency int     `json:"embed_concurrency" yaml:"embed_concurrency"`
	EmbedRateLimit   float64 `json:"embed_rate_limit" yaml:"embed_rate_limit"` // Batches per second, 0 = unlimited
	MaxUploadBytes   int64   `json:"max_upload_bytes" yaml:"max_upload_bytes"`
}

// DefaultQASettings returns sensible defaults
func DefaultQASettings() QASettings {
	return QASettings{
		MaxChunkSize:     1000,
		ChunkOverlap:     200,
		TopK:             DefaultTopK,
		HistoryWindow:    6,
		EmbedBatchSize:   100,
		EmbedConcurrency: 4,
		EmbedRateLimit:   0,
		MaxUploadBytes:   20 << 20,
	}
}

// Validate checks chunking and retrieval settings
func (s QASettings) Validate() error {
	if s.MaxChunkSize <= 0 {
		return fmt.Errorf("%w: max chunk size must be positive, got %d", ErrInvalidConfig, s.MaxChunkSize)
	}
	if s.ChunkOverlap < 0 || s.ChunkOverlap >= s.MaxChunkSize {
		return fmt.Errorf("%w: overlap must be in [0, %d), got %d", ErrInvalidConfig, s.MaxChunkSize, s.ChunkOverlap)
	}
	if s.TopK <= 0 {
		return fmt.Errorf("%w: top k must be positive, got %d", ErrInvalidConfig, s.TopK)
	}
	if s.HistoryWindow < 0 {
		return fmt.Errorf("%w: history window must not be negative", ErrInvalidConfig)
	}
	if s.EmbedBatchSize <= 0 || s.EmbedConcurrency <= 0 {
		return fmt.Errorf("%w: embedding batch size and concurrency must be positive", ErrInvalidConfig)
	}
	if s.EmbedRateLimit < 0 {
		return fmt.Errorf("%w: embedding rate limit must not be negative", ErrInvalidConfig)
	}
	return nil
}

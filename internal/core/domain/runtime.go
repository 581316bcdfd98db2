package domain

import "sync"

// RuntimeConfig tracks which services are available at runtime.
// This is determined at startup and can be updated dynamically for AI services.
// Thread-safe for concurrent access.
type RuntimeConfig struct {
	mu sync.RWMutex

	// Static (set at startup, read-only)
	LockBackend       string // "redis", "postgres" or "local"
	TranscriptBackend string // "redis", "postgres" or "none"

	// Dynamic capability flags (updated when AI services change)
	embeddingAvailable bool
	llmAvailable       bool
}

// NewRuntimeConfig creates a new RuntimeConfig with initial values
func NewRuntimeConfig(lockBackend, transcriptBackend string) *RuntimeConfig {
	return &RuntimeConfig{
		LockBackend:       lockBackend,
		TranscriptBackend: transcriptBackend,
	}
}

// EmbeddingAvailable returns whether embedding service is available
func (c *RuntimeConfig) EmbeddingAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.embeddingAvailable
}

// LLMAvailable returns whether LLM service is available
func (c *RuntimeConfig) LLMAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.llmAvailable
}

// SetEmbeddingAvailable updates the embedding availability flag
func (c *RuntimeConfig) SetEmbeddingAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.embeddingAvailable = available
}

// SetLLMAvailable updates the LLM availability flag
func (c *RuntimeConfig) SetLLMAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.llmAvailable = available
}

// CanIndex returns true if uploads can be embedded
func (c *RuntimeConfig) CanIndex() bool {
	return c.EmbeddingAvailable()
}

// CanAnswer returns true if questions can be answered end to end
func (c *RuntimeConfig) CanAnswer() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.embeddingAvailable && c.llmAvailable
}

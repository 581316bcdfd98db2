package services

import (
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// LLMProvider resolves the language model for one call.
// *runtime.Services implements it, so provider changes apply to the next call.
type LLMProvider interface {
	LLM() (driven.LLMService, error)
}

// EmbedderProvider resolves the embedding service for one call.
type EmbedderProvider interface {
	Embedder() (driven.EmbeddingService, error)
}

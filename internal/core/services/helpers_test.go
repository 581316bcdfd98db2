package services

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// staticProvider serves fixed AI services, or the unavailable errors when nil
type staticProvider struct {
	llm      driven.LLMService
	embedder driven.EmbeddingService
}

func (p staticProvider) LLM() (driven.LLMService, error) {
	if p.llm == nil {
		return nil, fmt.Errorf("%w: none configured", domain.ErrGenerationUnavailable)
	}
	return p.llm, nil
}

func (p staticProvider) Embedder() (driven.EmbeddingService, error) {
	if p.embedder == nil {
		return nil, fmt.Errorf("%w: none configured", domain.ErrEmbeddingUnavailable)
	}
	return p.embedder, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func itoa(n int) string {
	return fmt.Sprintf("%d", n)
}

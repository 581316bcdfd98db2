package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// AnswerGenerator synthesises an answer from a question and supporting chunks.
// Implementations hold no conversation state; each call is independent.
type AnswerGenerator interface {
	// Generate returns the answer text.
	// chunks are ordered by relevance and already deduplicated.
	// Fails with domain.ErrGenerationUnavailable on upstream failure.
	Generate(ctx context.Context, question string, chunks []domain.Chunk) (string, error)
}

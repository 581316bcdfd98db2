package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.AnswerGenerator = (*LLMAnswerGenerator)(nil)

const answerSystemPrompt = "You answer questions about an uploaded document. " +
	"Use only the numbered context passages. " +
	"If the passages do not contain the answer, say that you don't know."

// LLMAnswerGenerator answers from retrieved chunks with a language model.
type LLMAnswerGenerator struct {
	llm       LLMProvider
	maxTokens int
}

// NewLLMAnswerGenerator creates an answer generator
func NewLLMAnswerGenerator(llm LLMProvider) *LLMAnswerGenerator {
	return &LLMAnswerGenerator{llm: llm, maxTokens: 1024}
}

// Generate asks the model to answer question from chunks.
func (g *LLMAnswerGenerator) Generate(ctx context.Context, question string, chunks []domain.Chunk) (string, error) {
	llm, err := g.llm.LLM()
	if err != nil {
		return "", err
	}

	answer, err := llm.Complete(ctx, driven.CompletionRequest{
		System:      answerSystemPrompt,
		Prompt:      BuildAnswerPrompt(question, chunks),
		MaxTokens:   g.maxTokens,
		Temperature: 0.2,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationUnavailable, err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", fmt.Errorf("%w: empty answer", domain.ErrGenerationUnavailable)
	}
	return answer, nil
}

// BuildAnswerPrompt numbers the chunks in the order given and appends the question.
func BuildAnswerPrompt(question string, chunks []domain.Chunk) string {
	var sb strings.Builder
	sb.WriteString("Context:\n")
	for i, c := range chunks {
		sb.WriteString(fmt.Sprintf("[%d] %s\n\n", i+1, strings.TrimSpace(c.Text)))
	}
	sb.WriteString("Question:\n")
	sb.WriteString(strings.TrimSpace(question))
	sb.WriteString("\n\nAnswer:")
	return sb.String()
}

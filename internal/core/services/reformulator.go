package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

const reformulateSystemPrompt = "You rewrite follow-up questions about a document into standalone questions. " +
	"Resolve pronouns and references using the conversation. " +
	"Reply with the rewritten question only, without quotes or commentary."

// DefaultHistoryWindow is the number of recent turns shown to the reformulator
const DefaultHistoryWindow = 6

// Reformulation is the outcome of rewriting a question.
type Reformulation struct {
	// Question is the text to retrieve with; always usable
	Question string

	// Rewritten is true when Question came from the language model
	Rewritten bool

	// Warning is set when the rewrite was attempted and fell back to the original
	Warning error
}

// QueryReformulator rewrites a follow-up question into a standalone question
// using the most recent conversation turns.
type QueryReformulator struct {
	llm    LLMProvider
	window int
	logger *slog.Logger
}

// NewQueryReformulator creates a reformulator that shows at most window turns to the model.
// A window of 0 or less uses DefaultHistoryWindow.
func NewQueryReformulator(llm LLMProvider, window int, logger *slog.Logger) *QueryReformulator {
	if window <= 0 {
		window = DefaultHistoryWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryReformulator{llm: llm, window: window, logger: logger}
}

// Reformulate returns question unchanged when history is empty. Otherwise it asks
// the language model for a standalone restatement, falling back to question with
// a Warning when the model is unavailable, fails or returns nothing.
func (r *QueryReformulator) Reformulate(ctx context.Context, question string, history []domain.ConversationTurn) Reformulation {
	if len(history) == 0 {
		return Reformulation{Question: question}
	}

	llm, err := r.llm.LLM()
	if err != nil {
		return r.fallback(question, err)
	}

	rewritten, err := llm.Complete(ctx, driven.CompletionRequest{
		System:      reformulateSystemPrompt,
		Prompt:      BuildReformulationPrompt(question, history, r.window),
		MaxTokens:   256,
		Temperature: 0,
	})
	if err != nil {
		return r.fallback(question, fmt.Errorf("%w: %v", domain.ErrGenerationUnavailable, err))
	}

	rewritten = cleanRewrite(rewritten)
	if rewritten == "" {
		return r.fallback(question, fmt.Errorf("%w: empty rewrite", domain.ErrGenerationUnavailable))
	}

	r.logger.Debug("question reformulated", "original", question, "standalone", rewritten)
	return Reformulation{Question: rewritten, Rewritten: true}
}

func (r *QueryReformulator) fallback(question string, err error) Reformulation {
	r.logger.Warn("reformulation failed, using original question", "error", err)
	return Reformulation{Question: question, Warning: err}
}

// BuildReformulationPrompt renders the last window turns, oldest first, followed by the question.
func BuildReformulationPrompt(question string, history []domain.ConversationTurn, window int) string {
	if window > 0 && len(history) > window {
		history = history[len(history)-window:]
	}

	var sb strings.Builder
	sb.WriteString("Conversation History:\n")
	for _, turn := range history {
		sb.WriteString(fmt.Sprintf("[%s]: %s\n", turn.Role, strings.TrimSpace(turn.Content)))
	}
	sb.WriteString("\nFollow-up question:\n")
	sb.WriteString(strings.TrimSpace(question))
	sb.WriteString("\n\nStandalone question:")
	return sb.String()
}

// cleanRewrite strips labels and wrapping quotes models tend to add.
func cleanRewrite(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "Standalone question:")
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}

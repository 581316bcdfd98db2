package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/postprocessors"
)

// OrchestratorConfig holds dependencies for the Orchestrator.
type OrchestratorConfig struct {
	Sessions     *SessionStore
	Embedder     EmbedderProvider
	Reformulator *QueryReformulator
	Generator    driven.AnswerGenerator
	Deduplicator *postprocessors.Deduplicator

	// Transcripts archives answered exchanges; optional
	Transcripts driven.TranscriptStore

	TopK   int
	Logger *slog.Logger
}

// Orchestrator answers one question per call against a session's document:
// reformulate, retrieve, generate, record. Nothing is retried.
type Orchestrator struct {
	sessions     *SessionStore
	embedder     EmbedderProvider
	reformulator *QueryReformulator
	generator    driven.AnswerGenerator
	dedup        *postprocessors.Deduplicator
	transcripts  driven.TranscriptStore
	topK         int
	logger       *slog.Logger
}

// NewOrchestrator creates an orchestrator
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	topK := cfg.TopK
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	dedup := cfg.Deduplicator
	if dedup == nil {
		dedup = postprocessors.NewDeduplicator(postprocessors.DefaultDeduplicatorConfig())
	}
	return &Orchestrator{
		sessions:     cfg.Sessions,
		embedder:     cfg.Embedder,
		reformulator: cfg.Reformulator,
		generator:    cfg.Generator,
		dedup:        dedup,
		transcripts:  cfg.Transcripts,
		topK:         topK,
		logger:       logger,
	}
}

// AnswerQuestion answers question for the session and records the exchange.
// The conversation gains exactly a user and an assistant turn on success and
// is left untouched on any error, including cancellation.
func (o *Orchestrator) AnswerQuestion(ctx context.Context, sessionID, question string) (*domain.AnswerResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}

	session, release, err := o.sessions.Acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	memory := session.Memory()
	result := &domain.AnswerResult{SessionID: sessionID, Question: question}

	index := session.Index()
	if index == nil {
		result.State = domain.AnswerStateNoDocument
		result.Answer = domain.NoDocumentMessage
		result.History = memory.History()
		return result, nil
	}

	reform := o.reformulator.Reformulate(ctx, question, memory.History())
	result.StandaloneQuestion = reform.Question
	if reform.Warning != nil {
		result.Warnings = append(result.Warnings, reform.Warning.Error())
	}

	hits, err := o.retrieve(ctx, index, reform.Question)
	if err != nil {
		o.logger.Warn("retrieval failed", "session_id", sessionID, "error", err)
		return nil, err
	}
	hits = o.dedup.Dedupe(hits)

	answer, err := o.generator.Generate(ctx, reform.Question, domain.Chunks(hits))
	if err != nil {
		if ctx.Err() != nil {
			o.logger.Info("question cancelled", "session_id", sessionID, "error", err)
		} else {
			o.logger.Warn("generation failed", "session_id", sessionID, "error", err)
		}
		return nil, err
	}

	// A caller that has gone away gets no half-recorded exchange
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	userTurn := domain.NewUserTurn(question)
	assistantTurn := domain.NewAssistantTurn(answer)
	memory.Append(userTurn, assistantTurn)

	result.State = domain.AnswerStateAnswered
	result.Answer = answer
	result.Sources = hits
	result.History = memory.History()

	o.archive(sessionID, result.History[len(result.History)-2:])

	o.logger.Info("question answered",
		"session_id", sessionID,
		"sources", len(hits),
		"rewritten", reform.Rewritten,
		"turns", len(result.History),
	)
	return result, nil
}

func (o *Orchestrator) retrieve(ctx context.Context, index *VectorIndex, question string) ([]domain.SearchHit, error) {
	embedder, err := o.embedder.Embedder()
	if err != nil {
		return nil, err
	}

	query, err := embedder.EmbedQuery(ctx, question)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}

	hits, err := index.Search(query, o.topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrieval, err)
	}
	return hits, nil
}

// archive writes the exchange to the transcript store without failing the turn.
func (o *Orchestrator) archive(sessionID string, turns []domain.ConversationTurn) {
	if o.transcripts == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := o.transcripts.Append(ctx, sessionID, turns...); err != nil {
		o.logger.Warn("failed to archive transcript", "session_id", sessionID, "error", err)
	}
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Verify interface compliance
var _ driving.QAService = (*qaService)(nil)

// QAServiceConfig holds dependencies for the QA service.
type QAServiceConfig struct {
	Sessions     *SessionStore
	Indexer      *DocumentIndexer
	Orchestrator *Orchestrator

	// Transcripts is optional
	Transcripts driven.TranscriptStore

	Logger *slog.Logger
}

// qaService implements driving.QAService
type qaService struct {
	sessions     *SessionStore
	indexer      *DocumentIndexer
	orchestrator *Orchestrator
	transcripts  driven.TranscriptStore
	logger       *slog.Logger
}

// NewQAService creates a new QAService
func NewQAService(cfg QAServiceConfig) driving.QAService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &qaService{
		sessions:     cfg.Sessions,
		indexer:      cfg.Indexer,
		orchestrator: cfg.Orchestrator,
		transcripts:  cfg.Transcripts,
		logger:       logger,
	}
}

// UploadDocument indexes the file and swaps it into the session.
func (s *qaService) UploadDocument(ctx context.Context, sessionID string, raw []byte, filename string) (*domain.UploadResult, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, fmt.Errorf("%w: filename is required", domain.ErrInvalidInput)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", domain.ErrParseError, filename)
	}

	_, release, err := s.sessions.Acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	doc, index, err := s.indexer.Index(ctx, raw, filename)
	if err != nil {
		s.logger.Warn("upload failed", "session_id", sessionID, "filename", filename, "error", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc.ID = uuid.NewString()
	doc.SessionID = sessionID
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	if err := s.sessions.ReplaceDocument(sessionID, doc, index); err != nil {
		return nil, err
	}

	return &domain.UploadResult{
		SessionID:  sessionID,
		DocumentID: doc.ID,
		Filename:   doc.Filename,
		ChunkCount: index.Len(),
		Dimensions: index.Dimensions(),
		Message:    fmt.Sprintf("Document %s processed: %d chunks indexed", doc.Filename, index.Len()),
	}, nil
}

// Ask answers a question
func (s *qaService) Ask(ctx context.Context, sessionID, question string) (*domain.AnswerResult, error) {
	return s.orchestrator.AnswerQuestion(ctx, sessionID, question)
}

// History returns the in-memory conversation
func (s *qaService) History(ctx context.Context, sessionID string) ([]domain.ConversationTurn, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return session.Memory().History(), nil
}

// Transcript returns the archived conversation
func (s *qaService) Transcript(ctx context.Context, sessionID string) ([]domain.ConversationTurn, error) {
	if s.transcripts == nil {
		return nil, fmt.Errorf("%w: no transcript store configured", domain.ErrServiceUnavailable)
	}
	return s.transcripts.List(ctx, sessionID)
}

// CreateSession starts an empty session under a fresh ID
func (s *qaService) CreateSession(ctx context.Context) (*domain.SessionInfo, error) {
	session := s.sessions.GetOrCreate(uuid.NewString())
	s.logger.Debug("session created", "session_id", session.ID())
	return session.Info(), nil
}

// Session returns a session snapshot
func (s *qaService) Session(ctx context.Context, sessionID string) (*domain.SessionInfo, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return session.Info(), nil
}

// Reset discards the session and its archived transcript
func (s *qaService) Reset(ctx context.Context, sessionID string) error {
	if err := s.sessions.Reset(ctx, sessionID); err != nil {
		return err
	}
	if s.transcripts != nil {
		if err := s.transcripts.Delete(ctx, sessionID); err != nil {
			s.logger.Warn("failed to delete transcript", "session_id", sessionID, "error", err)
		}
	}
	return nil
}

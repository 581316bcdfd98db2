package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// QAService is the top-level conversational question answering API.
// All operations on one session are serialised; a concurrent call fails with domain.ErrSessionBusy.
type QAService interface {
	// CreateSession starts an empty session with a generated ID
	CreateSession(ctx context.Context) (*domain.SessionInfo, error)

	// UploadDocument ingests, chunks, embeds and indexes a file, replacing any previous
	// document of the session and clearing its conversation.
	// The previous index stays active if any step fails.
	UploadDocument(ctx context.Context, sessionID string, raw []byte, filename string) (*domain.UploadResult, error)

	// Ask answers a question against the session's document and records the exchange.
	Ask(ctx context.Context, sessionID, question string) (*domain.AnswerResult, error)

	// History returns the session's conversation, oldest first
	History(ctx context.Context, sessionID string) ([]domain.ConversationTurn, error)

	// Transcript returns archived turns, which outlive the in-memory session
	Transcript(ctx context.Context, sessionID string) ([]domain.ConversationTurn, error)

	// Session returns a snapshot of the session
	Session(ctx context.Context, sessionID string) (*domain.SessionInfo, error)

	// Reset discards the session's document and conversation
	Reset(ctx context.Context, sessionID string) error
}

package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// TranscriptStore archives answered exchanges outside the process.
// It is write-behind: conversation memory never reads from it.
type TranscriptStore interface {
	// Append records turns for a session after any already archived.
	// The archive numbers turns itself; the turns' in-memory Order is not kept,
	// since it restarts whenever the session's memory is cleared.
	Append(ctx context.Context, sessionID string, turns ...domain.ConversationTurn) error

	// List returns all archived turns for a session, oldest first, with Order
	// set to the archive position
	List(ctx context.Context, sessionID string) ([]domain.ConversationTurn, error)

	// Delete removes a session's transcript
	Delete(ctx context.Context, sessionID string) error

	// Ping checks if the backend is healthy
	Ping(ctx context.Context) error
}

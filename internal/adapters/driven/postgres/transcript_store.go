package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TranscriptStore = (*TranscriptStore)(nil)

// TranscriptStore archives turns in the transcript_turns table
type TranscriptStore struct {
	db *DB
}

// NewTranscriptStore creates a PostgreSQL transcript archive
func NewTranscriptStore(db *DB) *TranscriptStore {
	return &TranscriptStore{db: db}
}

// Append inserts turns in one transaction.
// The archive sequence comes from the id column, not from the turns' Order.
func (s *TranscriptStore) Append(ctx context.Context, sessionID string, turns ...domain.ConversationTurn) error {
	if len(turns) == 0 {
		return nil
	}

	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO transcript_turns (session_id, role, content, created_at)
			VALUES ($1, $2, $3, $4)`)
		if err != nil {
			return fmt.Errorf("prepare transcript insert: %w", err)
		}
		defer stmt.Close()

		for i, t := range turns {
			if _, err := stmt.ExecContext(ctx, sessionID, string(t.Role), t.Content, t.Timestamp); err != nil {
				return fmt.Errorf("insert turn %d: %w", i, err)
			}
		}
		return nil
	})
}

// List returns archived turns, oldest first, numbered by archive position
func (s *TranscriptStore) List(ctx context.Context, sessionID string) ([]domain.ConversationTurn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role, content, created_at
		FROM transcript_turns
		WHERE session_id = $1
		ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list transcript %s: %w", sessionID, err)
	}
	defer rows.Close()

	var turns []domain.ConversationTurn
	for rows.Next() {
		var (
			t    domain.ConversationTurn
			role string
		)
		if err := rows.Scan(&role, &t.Content, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		t.Role = domain.Role(role)
		t.Order = len(turns)
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// Delete removes a session's transcript
func (s *TranscriptStore) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM transcript_turns WHERE session_id = $1", sessionID); err != nil {
		return fmt.Errorf("delete transcript %s: %w", sessionID, err)
	}
	return nil
}

// Ping checks if the database is reachable
func (s *TranscriptStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

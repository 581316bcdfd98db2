package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TranscriptStore = (*TranscriptStore)(nil)

const transcriptPrefix = "docqa:transcript:"

// DefaultTranscriptTTL bounds how long an idle transcript survives
const DefaultTranscriptTTL = 7 * 24 * time.Hour

// TranscriptStore archives turns as a JSON list per session.
// Every append refreshes the key's TTL.
type TranscriptStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewTranscriptStore creates a Redis transcript archive; ttl <= 0 keeps keys forever
func NewTranscriptStore(client redis.UniversalClient, ttl time.Duration) *TranscriptStore {
	return &TranscriptStore{client: client, ttl: ttl}
}

// Append pushes turns in order and refreshes the TTL atomically
func (s *TranscriptStore) Append(ctx context.Context, sessionID string, turns ...domain.ConversationTurn) error {
	if len(turns) == 0 {
		return nil
	}

	values := make([]any, 0, len(turns))
	for _, turn := range turns {
		data, err := json.Marshal(turn)
		if err != nil {
			return fmt.Errorf("marshal turn: %w", err)
		}
		values = append(values, data)
	}

	key := transcriptPrefix + sessionID
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, values...)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("append transcript %s: %w", sessionID, err)
	}
	return nil
}

// List returns the archived turns, oldest first.
// Order is the list position, so it keeps increasing across re-uploads.
func (s *TranscriptStore) List(ctx context.Context, sessionID string) ([]domain.ConversationTurn, error) {
	raw, err := s.client.LRange(ctx, transcriptPrefix+sessionID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list transcript %s: %w", sessionID, err)
	}

	turns := make([]domain.ConversationTurn, 0, len(raw))
	for i, r := range raw {
		var turn domain.ConversationTurn
		if err := json.Unmarshal([]byte(r), &turn); err != nil {
			return nil, fmt.Errorf("unmarshal turn: %w", err)
		}
		turn.Order = i
		turns = append(turns, turn)
	}
	return turns, nil
}

// Delete removes a session's transcript
func (s *TranscriptStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, transcriptPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("delete transcript %s: %w", sessionID, err)
	}
	return nil
}

// Ping checks if the Redis backend is healthy.
func (s *TranscriptStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.TranscriptStore = (*MockTranscriptStore)(nil)

// MockTranscriptStore keeps transcripts in memory
type MockTranscriptStore struct {
	mu          sync.Mutex
	transcripts map[string][]domain.ConversationTurn

	// AppendErr makes every Append fail
	AppendErr error
}

// NewMockTranscriptStore creates an empty transcript store
func NewMockTranscriptStore() *MockTranscriptStore {
	return &MockTranscriptStore{transcripts: make(map[string][]domain.ConversationTurn)}
}

func (m *MockTranscriptStore) Append(ctx context.Context, sessionID string, turns ...domain.ConversationTurn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendErr != nil {
		return m.AppendErr
	}
	for _, t := range turns {
		t.Order = len(m.transcripts[sessionID])
		m.transcripts[sessionID] = append(m.transcripts[sessionID], t)
	}
	return nil
}

func (m *MockTranscriptStore) List(ctx context.Context, sessionID string) ([]domain.ConversationTurn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ConversationTurn, len(m.transcripts[sessionID]))
	copy(out, m.transcripts[sessionID])
	return out, nil
}

func (m *MockTranscriptStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.transcripts, sessionID)
	return nil
}

func (m *MockTranscriptStore) Ping(ctx context.Context) error {
	return nil
}

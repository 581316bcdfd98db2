package services

import (
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// ConversationMemory is the ordered, append-only log of one session's turns.
// Turns leave the log only through Clear. Safe for concurrent use.
type ConversationMemory struct {
	mu    sync.RWMutex
	turns []domain.ConversationTurn
}

// NewConversationMemory creates an empty memory
func NewConversationMemory() *ConversationMemory {
	return &ConversationMemory{}
}

// Append records turns in the given order as one step.
// Each turn's Order is set to its position in the log.
func (m *ConversationMemory) Append(turns ...domain.ConversationTurn) {
	if len(turns) == 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range turns {
		t.Order = len(m.turns)
		m.turns = append(m.turns, t)
	}
}

// History returns a copy of all turns, oldest first
func (m *ConversationMemory) History() []domain.ConversationTurn {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.ConversationTurn, len(m.turns))
	copy(out, m.turns)
	return out
}

// Recent returns a copy of at most the last n turns, oldest first
func (m *ConversationMemory) Recent(n int) []domain.ConversationTurn {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if n <= 0 {
		return []domain.ConversationTurn{}
	}
	start := len(m.turns) - n
	if start < 0 {
		start = 0
	}
	out := make([]domain.ConversationTurn, len(m.turns)-start)
	copy(out, m.turns[start:])
	return out
}

// Len returns the number of recorded turns
func (m *ConversationMemory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.turns)
}

// Clear removes every turn
func (m *ConversationMemory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = nil
}

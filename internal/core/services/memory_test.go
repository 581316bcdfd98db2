package services

import (
	"sync"
	"testing"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestConversationMemory_AppendAndHistory(t *testing.T) {
	m := NewConversationMemory()
	m.Append(domain.NewUserTurn("q1"), domain.NewAssistantTurn("a1"))
	m.Append(domain.NewUserTurn("q2"), domain.NewAssistantTurn("a2"))

	history := m.History()
	if len(history) != 4 {
		t.Fatalf("expected 4 turns, got %d", len(history))
	}

	wantContent := []string{"q1", "a1", "q2", "a2"}
	wantRole := []domain.Role{domain.RoleUser, domain.RoleAssistant, domain.RoleUser, domain.RoleAssistant}
	for i, turn := range history {
		if turn.Content != wantContent[i] || turn.Role != wantRole[i] {
			t.Errorf("turn %d: got %s %q", i, turn.Role, turn.Content)
		}
		if turn.Order != i {
			t.Errorf("turn %d: expected order %d, got %d", i, i, turn.Order)
		}
	}
}

func TestConversationMemory_HistoryIsSnapshot(t *testing.T) {
	m := NewConversationMemory()
	m.Append(domain.NewUserTurn("q1"))

	history := m.History()
	history[0].Content = "edited"

	if m.History()[0].Content != "q1" {
		t.Error("mutating a snapshot changed the memory")
	}
}

func TestConversationMemory_Recent(t *testing.T) {
	m := NewConversationMemory()
	for _, c := range []string{"1", "2", "3", "4", "5"} {
		m.Append(domain.NewUserTurn(c))
	}

	recent := m.Recent(2)
	if len(recent) != 2 || recent[0].Content != "4" || recent[1].Content != "5" {
		t.Errorf("unexpected recent turns: %+v", recent)
	}
	if got := len(m.Recent(10)); got != 5 {
		t.Errorf("expected all 5 turns, got %d", got)
	}
	if got := len(m.Recent(0)); got != 0 {
		t.Errorf("expected no turns, got %d", got)
	}
}

func TestConversationMemory_Clear(t *testing.T) {
	m := NewConversationMemory()
	m.Append(domain.NewUserTurn("q1"), domain.NewAssistantTurn("a1"))
	m.Clear()

	if m.Len() != 0 {
		t.Errorf("expected empty memory, got %d turns", m.Len())
	}

	m.Append(domain.NewUserTurn("q2"))
	if m.History()[0].Order != 0 {
		t.Errorf("expected order to restart at 0 after clear, got %d", m.History()[0].Order)
	}
}

func TestConversationMemory_AppendNothing(t *testing.T) {
	m := NewConversationMemory()
	m.Append()
	if m.Len() != 0 {
		t.Errorf("expected no turns, got %d", m.Len())
	}
}

func TestConversationMemory_ConcurrentPairsStayAdjacent(t *testing.T) {
	m := NewConversationMemory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Append(domain.NewUserTurn("q"), domain.NewAssistantTurn("a"))
		}()
	}
	wg.Wait()

	history := m.History()
	if len(history) != 100 {
		t.Fatalf("expected 100 turns, got %d", len(history))
	}
	for i := 0; i < len(history); i += 2 {
		if history[i].Role != domain.RoleUser || history[i+1].Role != domain.RoleAssistant {
			t.Fatalf("pair at %d interleaved: %s then %s", i, history[i].Role, history[i+1].Role)
		}
	}
}

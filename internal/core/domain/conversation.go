package domain

import "time"

// Role identifies who produced a conversation turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IsValid returns true if this is a known role
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

// ConversationTurn is one message in a session's conversation.
// Turns are append-only: never reordered or edited after they are recorded.
type ConversationTurn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Order     int       `json:"order"` // Position in the conversation, starting at 0
	Timestamp time.Time `json:"timestamp"`
}

// NewUserTurn creates an unrecorded user turn
func NewUserTurn(content string) ConversationTurn {
	return ConversationTurn{Role: RoleUser, Content: content, Timestamp: time.Now()}
}

// NewAssistantTurn creates an unrecorded assistant turn
func NewAssistantTurn(content string) ConversationTurn {
	return ConversationTurn{Role: RoleAssistant, Content: content, Timestamp: time.Now()}
}

// AnswerState is the terminal state of one question
type AnswerState string

const (
	AnswerStateNoDocument AnswerState = "no_document"
	AnswerStateAnswered   AnswerState = "answered"
)

// NoDocumentMessage is returned when a question arrives before any upload
const NoDocumentMessage = "Please upload a document first."

// AnswerResult is the response to one question
type AnswerResult struct {
	SessionID          string             `json:"session_id"`
	State              AnswerState        `json:"state"`
	Question           string             `json:"question"`
	StandaloneQuestion string             `json:"standalone_question,omitempty"`
	Answer             string             `json:"answer"`
	Sources            []SearchHit        `json:"sources,omitempty"`
	History            []ConversationTurn `json:"history"`
	Warnings           []string           `json:"warnings,omitempty"`
}

// SessionInfo is a read-only snapshot of a session
type SessionInfo struct {
	ID           string    `json:"id"`
	HasDocument  bool      `json:"has_document"`
	DocumentID   string    `json:"document_id,omitempty"`
	Filename     string    `json:"filename,omitempty"`
	ChunkCount   int       `json:"chunk_count"`
	Dimensions   int       `json:"dimensions"`
	TurnCount    int       `json:"turn_count"`
	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`
}

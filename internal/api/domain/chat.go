package domain

import "time"

// Role identifies who authored a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the accepted message roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// ChatSession is an owned conversation. The owning identity is set at
// creation and never changes; UpdatedAt advances on any mutation of the
// title or message list.
type ChatSession struct {
	ID        string
	UserID    string
	Title     string
	Messages  []Message
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ChatSessionSummary is the listing shape: message bodies are omitted, only
// the count is exposed.
type ChatSessionSummary struct {
	ID           string
	Title        string
	MessageCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Message is immutable once appended. There is no single-message deletion,
// only whole-list clearing on the parent session.
type Message struct {
	ID        string
	SessionID string
	Role      Role
	Content   string
	CreatedAt time.Time
}

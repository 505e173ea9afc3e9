package domain

import "time"

// SessionStatus is the lifecycle state of a session.
type SessionStatus string

const (
	SessionActive  SessionStatus = "active"
	SessionExpired SessionStatus = "expired"
)

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Session is one conversation, keyed by a client-supplied identifier.
// The turn log is append-only while the session is active; expiry purges
// the session entirely.
type Session struct {
	SessionID    string        `json:"session_id"`
	Turns        []Turn        `json:"turns"`
	CreatedAt    time.Time     `json:"created_at"`
	LastActivity time.Time     `json:"last_activity"`
	Status       SessionStatus `json:"status"`
}

// Turn is a single message within a session.
type Turn struct {
	TurnID    string       `json:"turn_id"`
	Role      Role         `json:"role"`
	Content   string       `json:"content"`
	Result    *QueryResult `json:"result,omitempty"`
	Failed    bool         `json:"failed,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

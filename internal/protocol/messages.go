// Package protocol defines the JSON envelope exchanged with chat clients.
package protocol

import (
	"encoding/json"
	"time"
)

// Envelope types recognized on the wire.
const (
	TypeUserMessage = "user_message"
	TypeChatReply   = "chat_reply"
	TypeResult      = "result"
)

// Envelope is the wrapper shape shared by all requests and responses.
type Envelope struct {
	Type      string          `json:"type"`
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	Timestamp time.Time       `json:"timestamp,omitzero"`
	Payload   json.RawMessage `json:"payload"`
}

// UserMessagePayload is the inbound payload for a user_message envelope.
type UserMessagePayload struct {
	Text string `json:"text"`
}

// ChatReplyPayload is the outbound payload for a chat_reply envelope.
type ChatReplyPayload struct {
	Text string `json:"text"`
}

// ResultPayload is the outbound payload for a result envelope.
type ResultPayload struct {
	Result []map[string]any `json:"result"`
}

package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrMalformedRequest is returned for inbound envelopes that do not match
// the user_message shape. It is rejected before any session state changes.
var ErrMalformedRequest = errors.New("malformed request")

// ChatRequest is a decoded, validated user message.
type ChatRequest struct {
	ID        string
	SessionID string
	Text      string
}

// DecodeUserMessage validates an inbound envelope and extracts the chat
// request. A missing id is tolerated and minted server-side; a missing
// type, session_id or text is a hard failure.
func DecodeUserMessage(env Envelope) (ChatRequest, error) {
	if env.Type != TypeUserMessage {
		return ChatRequest{}, fmt.Errorf("%w: unrecognized type %q", ErrMalformedRequest, env.Type)
	}
	if env.SessionID == "" {
		return ChatRequest{}, fmt.Errorf("%w: session_id is required", ErrMalformedRequest)
	}

	var payload UserMessagePayload
	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, &payload); err != nil {
			return ChatRequest{}, fmt.Errorf("%w: invalid payload: %v", ErrMalformedRequest, err)
		}
	}
	text := strings.TrimSpace(payload.Text)
	if text == "" {
		return ChatRequest{}, fmt.Errorf("%w: payload.text must be a non-empty string", ErrMalformedRequest)
	}

	id := env.ID
	if id == "" {
		id = uuid.New().String()
	}

	return ChatRequest{ID: id, SessionID: env.SessionID, Text: text}, nil
}

// NewChatReply encodes a chat_reply envelope for the given request ids.
func NewChatReply(id, sessionID, text string) Envelope {
	return newEnvelope(TypeChatReply, id, sessionID, ChatReplyPayload{Text: text})
}

// NewResult encodes a result envelope carrying normalized rows.
func NewResult(id, sessionID string, records []map[string]any) Envelope {
	if records == nil {
		records = []map[string]any{}
	}
	return newEnvelope(TypeResult, id, sessionID, ResultPayload{Result: records})
}

func newEnvelope(msgType, id, sessionID string, payload any) Envelope {
	raw, _ := json.Marshal(payload)
	return Envelope{
		Type:      msgType,
		ID:        id,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
		Payload:   raw,
	}
}

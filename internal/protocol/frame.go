package protocol

import (
	"encoding/json"
	"time"
)

// InboundFrame is the shape every client text frame is parsed as before
// being dispatched against the closed CommandType set.
type InboundFrame struct {
	Type    CommandType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// OutboundFrame is the shape every server frame is serialized as.
// Timestamp is always ISO-8601 UTC (RFC3339Nano in the stdlib's terms).
type OutboundFrame struct {
	Type      EventType   `json:"type"`
	Payload   any         `json:"payload,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// NewEvent builds an OutboundFrame stamped with the current time.
func NewEvent(t EventType, payload any) OutboundFrame {
	return OutboundFrame{
		Type:      t,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
}

// ErrorPayload is the payload shape for ERROR / CHAT_ERROR / LOBBY_ERROR.
type ErrorPayload struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message,omitempty"`
}

// Package transport implements the websocket upgrade handshake,
// bearer-token verification, connection tagging, text-frame-only
// enforcement, and inbound/outbound framing. The duplex connection and
// its read/write pumps carry the room/lobby command and event sets
// defined in internal/protocol.
package transport

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/seednode-labs/dicee/internal/protocol"
)

// Role is what kind of participant a connection was assigned.
type Role string

const (
	RolePlayer    Role = "player"
	RoleSpectator Role = "spectator"
)

// outboundQueueSize bounds the per-connection send buffer: bounded
// buffering with a policy-violation close when it's exceeded.
const outboundQueueSize = 32

// Attachment is the small serializable identity blob persisted via
// store.AttachmentStore, the sole source of connection identity after
// a hibernation resume.
type Attachment struct {
	UserID      string    `json:"userId"`
	DisplayName string    `json:"displayName"`
	AvatarSeed  string    `json:"avatarSeed"`
	Role        Role      `json:"role"`
	ConnectedAt time.Time `json:"connectedAt"`
	IsHost      bool      `json:"isHost"`
}

// Conn wraps one live websocket connection with the tags and identity
// the room/lobby core dispatch on.
type Conn struct {
	ws *websocket.Conn

	ID         string // unique per physical connection, for tagging/logging
	RoomCode   string // "" for lobby connections
	Attachment Attachment

	send   chan protocol.OutboundFrame
	closed chan struct{}
}

// NewConn wraps ws with the given identity. id should be unique per
// physical connection (not per user, since a user may hold at most one
// live connection per room, but the id still distinguishes connections
// across reconnects for logging).
func NewConn(ws *websocket.Conn, id, roomCode string, attachment Attachment) *Conn {
	return &Conn{
		ws:         ws,
		ID:         id,
		RoomCode:   roomCode,
		Attachment: attachment,
		send:       make(chan protocol.OutboundFrame, outboundQueueSize),
		closed:     make(chan struct{}),
	}
}

// Send enqueues an outbound frame without blocking the caller (the room
// writer). If the connection's outbound buffer is full, the connection
// is closed with a policy-violation reason rather than delaying the
// writer.
func (c *Conn) Send(frame protocol.OutboundFrame) {
	select {
	case c.send <- frame:
	case <-c.closed:
	default:
		c.Close(websocket.ClosePolicyViolation, "send buffer exceeded")
	}
}

// Close closes the underlying websocket with the given close code and
// reason, and is safe to call more than once.
func (c *Conn) Close(code int, reason string) {
	select {
	case <-c.closed:
		return
	default:
		close(c.closed)
	}
	msg := websocket.FormatCloseMessage(code, reason)
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	_ = c.ws.Close()
}

// WritePump drains the send channel onto the wire until the connection
// is closed. Run it in its own goroutine per connection.
func (c *Conn) WritePump() {
	defer func() {
		_ = c.ws.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				return
			}
			payload, err := json.Marshal(frame)
			if err != nil {
				continue
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-c.closed:
			return
		}
	}
}

// ReadPump reads frames until the connection closes or a protocol
// violation occurs, invoking handle for every valid inbound frame.
// Binary frames are rejected with a close code; the frame is otherwise
// validated against the closed command-type set by the caller
// (internal/room, internal/lobby), not here.
func (c *Conn) ReadPump(handle func(protocol.InboundFrame)) {
	defer c.Close(websocket.CloseNormalClosure, "connection closed")

	for {
		msgType, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}

		if msgType == websocket.BinaryMessage {
			c.Close(websocket.CloseUnsupportedData, "binary messages not supported")
			return
		}

		var frame protocol.InboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.Send(protocol.NewEvent(protocol.EvtError, protocol.ErrorPayload{
				Code:    protocol.ErrInvalidMessage,
				Message: "malformed frame",
			}))
			continue
		}

		handle(frame)
	}
}

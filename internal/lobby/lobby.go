// Package lobby implements the singleton presence registry and
// cross-room broker. Its actor shape is the same single-writer inbox
// pattern as internal/room, generalized to a lobby-scoped command set
// instead of a per-room one, since presence, the room directory and
// invites all need the same no-concurrent-mutation discipline as
// Room Core.
package lobby

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/seednode-labs/dicee/internal/chat"
	"github.com/seednode-labs/dicee/internal/identity"
	"github.com/seednode-labs/dicee/internal/joinrequest"
	"github.com/seednode-labs/dicee/internal/protocol"
	"github.com/seednode-labs/dicee/internal/room"
	"github.com/seednode-labs/dicee/internal/transport"
)

// InviteTTL sets the ExpiresAt carried on each SEND_INVITE; the lobby
// itself does not check it. Mirrors joinrequest.TTL for a consistent
// user-facing expectation.
const InviteTTL = joinrequest.TTL

// Broker is the narrow view of internal/room.Manager the lobby needs:
// looking up a room by code and brokering REQUEST_JOIN/CANCEL_JOIN_REQUEST
// into it. Kept as an interface (rather than importing *room.Manager
// directly everywhere) so lobby's tests can run against a fake.
type Broker interface {
	Get(code string) (*room.Room, bool)
}

// managerBroker adapts *room.Manager to Broker.
type managerBroker struct{ mgr *room.Manager }

func (b managerBroker) Get(code string) (*room.Room, bool) { return b.mgr.Get(code) }

// NewManagerBroker wraps a room.Manager as a Broker.
func NewManagerBroker(mgr *room.Manager) Broker { return managerBroker{mgr: mgr} }

type presenceEntry struct {
	UserID      string
	DisplayName string
	AvatarSeed  string
	conns       map[string]*transport.Conn
}

type invite struct {
	ID        string
	FromID    string
	FromName  string
	ToID      string
	RoomCode  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Lobby is the single authoritative presence/broker actor. Every field
// is only read or written from the actor goroutine started by Start,
// mirroring internal/room.Room.
type Lobby struct {
	broker Broker
	chat   *chat.Engine

	presence map[string]*presenceEntry   // userID -> entry
	conns    map[string]*transport.Conn  // connID -> conn (lobby connections only)
	rooms    map[string]room.StatusSnapshot
	invites  map[string]*invite

	inbox chan any
}

// New returns a Lobby backed by broker for cross-room RPCs.
func New(broker Broker) *Lobby {
	return &Lobby{
		broker:   broker,
		chat:     chat.New(),
		presence: make(map[string]*presenceEntry),
		conns:    make(map[string]*transport.Conn),
		rooms:    make(map[string]room.StatusSnapshot),
		invites:  make(map[string]*invite),
		inbox:    make(chan any, 64),
	}
}

// Start launches the lobby's actor goroutine. Exactly one Lobby exists
// per process: the singleton authoritative presence registry.
func (l *Lobby) Start(ctx context.Context) {
	go l.run(ctx)
}

type lobbyConnectMsg struct {
	conn   *transport.Conn
	claims identity.Claims
}

type lobbyDisconnectMsg struct {
	connID string
}

type lobbyFrameMsg struct {
	connID string
	frame  protocol.InboundFrame
}

// Connect enqueues a freshly upgraded lobby connection.
func (l *Lobby) Connect(conn *transport.Conn, claims identity.Claims) {
	l.inbox <- lobbyConnectMsg{conn: conn, claims: claims}
}

// Disconnect enqueues a closed lobby connection's teardown.
func (l *Lobby) Disconnect(connID string) {
	l.inbox <- lobbyDisconnectMsg{connID: connID}
}

// Send enqueues a client-originated frame onto the lobby's inbox.
func (l *Lobby) Send(connID string, frame protocol.InboundFrame) {
	l.inbox <- lobbyFrameMsg{connID: connID, frame: frame}
}

// NotifyRoomStatus implements room.StatusListener: Room Core's periodic
// status RPC updates the directory cache and fans out LOBBY_ROOM_UPDATE.
func (l *Lobby) NotifyRoomStatus(s room.StatusSnapshot) {
	l.inbox <- roomStatusMsg{snapshot: s}
}

// NotifyRoomClosed implements room.StatusListener: the room has gone
// abandoned and its actor has exited.
func (l *Lobby) NotifyRoomClosed(code string) {
	l.inbox <- roomClosedMsg{code: code}
}

type roomStatusMsg struct{ snapshot room.StatusSnapshot }
type roomClosedMsg struct{ code string }

func (l *Lobby) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-l.inbox:
			l.dispatch(ctx, m)
		}
	}
}

func (l *Lobby) dispatch(ctx context.Context, m any) {
	switch v := m.(type) {
	case lobbyConnectMsg:
		l.handleConnect(ctx, v)
	case lobbyDisconnectMsg:
		l.handleDisconnect(ctx, v)
	case lobbyFrameMsg:
		l.handleFrame(ctx, v)
	case roomStatusMsg:
		l.handleRoomStatus(v.snapshot)
	case roomClosedMsg:
		l.handleRoomClosed(v.code)
	}
}

func (l *Lobby) sendToUser(userID string, frame protocol.OutboundFrame) {
	entry, ok := l.presence[userID]
	if !ok {
		return
	}
	for _, c := range entry.conns {
		c.Send(frame)
	}
}

func (l *Lobby) broadcast(frame protocol.OutboundFrame, exclude ...string) {
	skip := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}
	for id, c := range l.conns {
		if skip[id] {
			continue
		}
		c.Send(frame)
	}
}

func uuidString() string { return uuid.NewString() }

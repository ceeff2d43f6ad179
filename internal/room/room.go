// Package room implements the single-writer authoritative loop that
// owns a room's connections, validates and applies commands, persists
// state, fans out events, and drives AI turns and timeout alarms. The
// actor shape is one goroutine per room with a channel-based inbox
// carrying a small sum type covering every kind of event the room
// needs to serialize.
package room

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/seednode-labs/dicee/internal/ai"
	"github.com/seednode-labs/dicee/internal/chat"
	"github.com/seednode-labs/dicee/internal/gamestate"
	"github.com/seednode-labs/dicee/internal/joinrequest"
	"github.com/seednode-labs/dicee/internal/protocol"
	"github.com/seednode-labs/dicee/internal/store"
	"github.com/seednode-labs/dicee/internal/transport"
)

// Phase is the room-wide phase (distinct from gamestate.Phase, the
// finer in-game phase).
type Phase string

const (
	PhaseWaiting   Phase = "waiting"
	PhaseStarting  Phase = "starting"
	PhasePlaying   Phase = "playing"
	PhaseCompleted Phase = "completed"
	PhaseAbandoned Phase = "abandoned"
)

// Settings are the room's host-configured parameters.
type Settings struct {
	MaxSeats        int
	Public          bool
	TurnTimeout     time.Duration
	AllowSpectators bool
}

// Config carries the server-wide timing knobs (internal/config.Config)
// a room needs, copied in at creation time so the room package does not
// import internal/config directly.
type Config struct {
	TurnTimeout      time.Duration
	ReconnectWindow  time.Duration
	JoinRequestTTL   time.Duration
	GameStartDelay   time.Duration
	RoomCleanupAfter time.Duration
	ChatHistoryCap   int
}

// Seat is one seated participant: the connection-facing identity plus
// the embedded gamestate.Player the rules engine drives. Disconnection
// bookkeeping lives here rather than in gamestate, since it is a
// room-core concern, not a rules concern.
type Seat struct {
	PlayerID          string
	DisplayName       string
	AvatarSeed        string
	Type              gamestate.PlayerType
	AIProfileID       string
	IsHost            bool
	IsConnected       bool
	DisconnectedAt    time.Time
	ReconnectDeadline time.Time
	TurnOrder         int
	RemainingAtFreeze time.Duration // turn clock remaining, captured on disconnect
	Forfeited         bool          // seat expired mid-game; reconnects land as spectator
}

// Room is one authoritative game instance. Every field below is only
// ever read or written from the actor goroutine started by
// Manager.Create or Manager.Resume (run, in actor.go); nothing outside this package reaches into a
// Room's fields directly.
type Room struct {
	Code      string
	HostID    string
	Settings  Settings
	Phase     Phase
	CreatedAt time.Time
	StartedAt time.Time

	Seats       map[string]*Seat
	SeatOrder   []string // stable order for listing (not game turn order)
	Spectators  map[string]bool

	Game *gamestate.State

	Chat         *chat.Engine
	JoinRequests *joinrequest.Manager

	aiTurn *ai.TurnState

	ns   store.Namespace
	ai   *ai.Controller
	rnd  *rand.Rand
	cfg  Config

	conns      map[string]*transport.Conn   // connID -> conn
	connsByUser map[string][]*transport.Conn // userID -> live conns (at most one "current")

	inbox chan any

	mgr *Manager
}

func newRoom(code string, ns store.Namespace, mgr *Manager, cfg Config) *Room {
	return &Room{
		Code:      code,
		Phase:     PhaseWaiting,
		CreatedAt: time.Now(),
		Settings:  Settings{MaxSeats: 4, TurnTimeout: cfg.TurnTimeout, AllowSpectators: true},
		Seats:        make(map[string]*Seat),
		Spectators:   make(map[string]bool),
		Game:         gamestate.New(),
		Chat:         chat.NewWithCap(cfg.ChatHistoryCap),
		JoinRequests: joinrequest.NewManager(),
		ns:           ns,
		ai:           ai.New(rand.NewSource(time.Now().UnixNano())),
		rnd:          rand.New(rand.NewSource(time.Now().UnixNano())),
		cfg:          cfg,
		conns:        make(map[string]*transport.Conn),
		connsByUser:  make(map[string][]*transport.Conn),
		inbox:        make(chan any, 64),
		mgr:          mgr,
	}
}

func (r *Room) seatedCount() int {
	return len(r.Seats)
}

func (r *Room) seatedPlayerIDs() []string {
	ids := make([]string, 0, len(r.Seats))
	for id := range r.Seats {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return r.Seats[ids[i]].TurnOrder < r.Seats[ids[j]].TurnOrder })
	return ids
}

func (r *Room) freeSeatAvailable() bool {
	return len(r.Seats) < r.Settings.MaxSeats
}

func (r *Room) otherHumanCount(excludeID string) int {
	n := 0
	for id, s := range r.Seats {
		if id == excludeID {
			continue
		}
		if s.Type == gamestate.PlayerHuman {
			n++
		}
	}
	return n
}

// broadcast sends frame to every live connection in the room except any
// whose connID is in exclude.
func (r *Room) broadcast(frame protocol.OutboundFrame, exclude ...string) {
	skip := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}
	for id, c := range r.conns {
		if skip[id] {
			continue
		}
		c.Send(frame)
	}
}

// sendToUser delivers frame to every live connection tagged user:<id>
// (ordinarily exactly one).
func (r *Room) sendToUser(userID string, frame protocol.OutboundFrame) {
	for _, c := range r.connsByUser[userID] {
		c.Send(frame)
	}
}

// systemChat appends a system chat line and persists+broadcasts it,
// used for the "PLAYER_JOINED" etc. companion chat lines.
func (r *Room) systemChat(ctx context.Context, content string) {
	evt := r.Chat.CreateSystem(content)
	r.persistChat(ctx, evt.History)
	r.broadcast(protocol.NewEvent(protocol.EvtChatMessage, evt.Message))
}

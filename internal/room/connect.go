package room

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"github.com/seednode-labs/dicee/internal/chat"
	"github.com/seednode-labs/dicee/internal/gamestate"
	"github.com/seednode-labs/dicee/internal/protocol"
	"github.com/seednode-labs/dicee/internal/transport"
)

// ConnectedPayload is what CONNECTED carries: full current room state,
// seated players (including AI), spectator count, and chat history.
type ConnectedPayload struct {
	Room       RoomView       `json:"room"`
	Players    []SeatView     `json:"players"`
	Spectators int            `json:"spectatorCount"`
	Chat       []chat.Message `json:"chatHistory"`
	YouAre     string         `json:"youAre"` // "player" or "spectator"
	IsHost     bool           `json:"isHost"`
}

// RoomView and SeatView are the client-facing projections of Room and
// Seat; kept separate from the persisted shapes in persist.go so the
// wire contract can evolve independently of storage layout.
type RoomView struct {
	Code      string         `json:"code"`
	Phase     Phase          `json:"phase"`
	GamePhase gamestate.Phase `json:"gamePhase"`
	Settings  Settings       `json:"settings"`
}

type SeatView struct {
	PlayerID    string `json:"playerId"`
	DisplayName string `json:"displayName"`
	AvatarSeed  string `json:"avatarSeed"`
	Type        string `json:"type"`
	IsHost      bool   `json:"isHost"`
	IsConnected bool   `json:"isConnected"`
	TotalScore  int    `json:"totalScore"`
}

func (r *Room) seatViews() []SeatView {
	out := make([]SeatView, 0, len(r.Seats))
	for _, id := range r.seatedPlayerIDs() {
		s := r.Seats[id]
		total := 0
		if p, ok := r.Game.Players[id]; ok {
			total = p.TotalScore()
		}
		out = append(out, SeatView{
			PlayerID: s.PlayerID, DisplayName: s.DisplayName, AvatarSeed: s.AvatarSeed,
			Type: string(s.Type), IsHost: s.IsHost, IsConnected: s.IsConnected, TotalScore: total,
		})
	}
	return out
}

func (r *Room) handleConnect(ctx context.Context, m connectMsg) {
	conn := m.conn
	userID := m.claims.UserID

	// At most one connection per (room, userId) is current; close any
	// older connection for this user before seating the new one.
	if existing := r.connsByUser[userID]; len(existing) > 0 {
		for _, old := range existing {
			delete(r.conns, old.ID)
			old.Close(websocket.CloseNormalClosure, "superseded by new connection")
		}
		r.connsByUser[userID] = nil
	}

	role := transport.RoleSpectator
	var seat *Seat
	isReconnect := false

	if existingSeat, ok := r.Seats[userID]; ok && !existingSeat.Forfeited && !existingSeat.ReconnectDeadline.IsZero() {
		// Reconnect: clear deadline, mark connected, restore the frozen
		// turn clock rather than starting a new one. A forfeited seat
		// (reconnect deadline already expired mid-game) never takes
		// this branch: that userId falls through to spectator below.
		existingSeat.IsConnected = true
		existingSeat.ReconnectDeadline = time.Time{}
		seat = existingSeat
		role = transport.RolePlayer
		isReconnect = true

		if r.Game.CurrentPlayerID() == userID && existingSeat.RemainingAtFreeze > 0 {
			r.Game.TurnDeadline = time.Now().Add(existingSeat.RemainingAtFreeze)
			existingSeat.RemainingAtFreeze = 0
			r.scheduleTurnTimeoutAlarms(ctx, userID)
		}
	} else if r.Phase == PhaseWaiting && r.freeSeatAvailable() {
		seat = &Seat{
			PlayerID: userID, DisplayName: m.claims.DisplayName, AvatarSeed: m.claims.AvatarURL,
			Type: gamestate.PlayerHuman, IsConnected: true, TurnOrder: len(r.Seats),
		}
		if len(r.Seats) == 0 {
			seat.IsHost = true
			r.HostID = userID
		}
		r.Seats[userID] = seat
		role = transport.RolePlayer
	}

	conn.Attachment = transport.Attachment{
		UserID: userID, DisplayName: m.claims.DisplayName, AvatarSeed: m.claims.AvatarURL,
		Role: role, ConnectedAt: time.Now(), IsHost: seat != nil && seat.IsHost,
	}

	r.conns[conn.ID] = conn
	r.connsByUser[userID] = append(r.connsByUser[userID], conn)
	if role == transport.RoleSpectator {
		r.Spectators[userID] = true
	}

	youAre := "spectator"
	if role == transport.RolePlayer {
		youAre = "player"
	}

	conn.Send(protocol.NewEvent(protocol.EvtConnected, ConnectedPayload{
		Room:       RoomView{Code: r.Code, Phase: r.Phase, GamePhase: r.Game.Phase, Settings: r.Settings},
		Players:    r.seatViews(),
		Spectators: len(r.Spectators),
		Chat:       r.Chat.History(),
		YouAre:     youAre,
		IsHost:     conn.Attachment.IsHost,
	}))

	r.persistRoom(ctx)

	switch {
	case isReconnect:
		r.broadcast(protocol.NewEvent(protocol.EvtPlayerReconnected, SeatView{
			PlayerID: userID, DisplayName: seat.DisplayName,
		}), conn.ID)
		r.systemChat(ctx, seat.DisplayName+" reconnected.")
	case role == transport.RolePlayer:
		r.broadcast(protocol.NewEvent(protocol.EvtPlayerJoined, r.seatViews()), conn.ID)
		r.systemChat(ctx, conn.Attachment.DisplayName+" joined the room.")
	default:
		r.broadcast(protocol.NewEvent(protocol.EvtSpectatorJoined, SeatView{DisplayName: conn.Attachment.DisplayName}), conn.ID)
		r.systemChat(ctx, conn.Attachment.DisplayName+" is spectating.")
	}
}

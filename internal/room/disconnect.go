package room

import (
	"context"
	"time"

	"github.com/seednode-labs/dicee/internal/gamestate"
	"github.com/seednode-labs/dicee/internal/protocol"
	"github.com/seednode-labs/dicee/internal/store"
	"github.com/seednode-labs/dicee/internal/transport"
)

// handleDisconnectConn handles a player disconnection: clear the
// typing indicator, mark the seat disconnected, open a reconnect
// window, and freeze the turn clock if it was this player's turn.
func (r *Room) handleDisconnectConn(ctx context.Context, m disconnectMsg) {
	conn, ok := r.conns[m.connID]
	if !ok {
		return
	}
	delete(r.conns, m.connID)

	userID := conn.Attachment.UserID
	live := r.connsByUser[userID][:0]
	for _, c := range r.connsByUser[userID] {
		if c.ID != m.connID {
			live = append(live, c)
		}
	}
	r.connsByUser[userID] = live

	if conn.Attachment.Role != transport.RolePlayer {
		delete(r.Spectators, userID)
		r.maybeScheduleCleanup(ctx)
		return
	}

	seat, ok := r.Seats[userID]
	if !ok || len(live) > 0 {
		// Another live connection for this user remains (should not
		// normally happen, but guards against a stale message), or the
		// seat is already gone.
		return
	}

	r.Chat.TypingStop(userID)
	seat.IsConnected = false
	seat.DisconnectedAt = time.Now()
	seat.ReconnectDeadline = seat.DisconnectedAt.Add(r.cfg.ReconnectWindow)

	if r.Game.Phase != gamestate.PhaseGameOver && r.Game.CurrentPlayerID() == userID && !r.Game.TurnDeadline.IsZero() {
		remaining := time.Until(r.Game.TurnDeadline)
		if remaining < 0 {
			remaining = 0
		}
		seat.RemainingAtFreeze = remaining
		r.Game.TurnDeadline = time.Time{}
	}

	r.persistRoom(ctx)

	_ = r.ns.SetAlarm(ctx, seat.ReconnectDeadline, store.AlarmDescriptor{
		Kind: store.AlarmReconnectDeadline, PlayerID: userID, ScheduledAt: time.Now(),
	})

	r.broadcast(protocol.NewEvent(protocol.EvtPlayerDisconnected, SeatView{
		PlayerID: userID, DisplayName: seat.DisplayName,
	}))
	r.systemChat(ctx, seat.DisplayName+" disconnected.")
}

// expireSeat runs when the reconnect deadline alarm fires: remove the
// seat if the room never started a game, otherwise mark it forfeited
// so a later reconnect seats that userId as a spectator rather than
// restoring them to play, and auto-score/advance only if it happens
// to be that player's turn right now.
func (r *Room) expireSeat(ctx context.Context, userID string) {
	seat, ok := r.Seats[userID]
	if !ok || seat.IsConnected {
		// Reconnected before the alarm fired; nothing to do.
		return
	}

	if r.Phase == PhaseWaiting {
		delete(r.Seats, userID)
		delete(r.connsByUser, userID)
		r.persistRoom(ctx)
		r.broadcast(protocol.NewEvent(protocol.EvtPlayerRemoved, SeatView{
			PlayerID: userID, DisplayName: seat.DisplayName,
		}))
		r.systemChat(ctx, seat.DisplayName+" left the room.")
		r.maybeScheduleCleanup(ctx)
		return
	}

	seat.Forfeited = true
	seat.ReconnectDeadline = time.Time{}
	r.persistRoom(ctx)

	if r.Game.Phase == gamestate.PhaseGameOver || r.Game.CurrentPlayerID() != userID {
		return
	}

	r.autoScoreAndAdvance(ctx, userID, "disconnect")
}

// maybeScheduleCleanup schedules the ROOM_CLEANUP alarm once a room has
// no live connections and no seated players left to reconnect: a room
// is destroyed after an inactivity window with no connections and no
// pending alarms. A room with any seated player still has a
// reconnect-deadline or turn alarm pending, which already occupies the
// single alarm slot and takes priority over cleanup.
func (r *Room) maybeScheduleCleanup(ctx context.Context) {
	if len(r.conns) > 0 || r.seatedCount() > 0 {
		return
	}
	_ = r.ns.SetAlarm(ctx, time.Now().Add(r.cfg.roomCleanupDelay()), store.AlarmDescriptor{
		Kind: store.AlarmRoomCleanup, ScheduledAt: time.Now(),
	})
}

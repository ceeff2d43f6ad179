package room

import (
	"context"
	"time"

	"github.com/seednode-labs/dicee/internal/gamestate"
	"github.com/seednode-labs/dicee/internal/protocol"
	"github.com/seednode-labs/dicee/internal/scoring"
	"github.com/seednode-labs/dicee/internal/store"
)

// handleAlarmFire loads the single pending alarm descriptor and deletes
// it before dispatching by kind, so a handler that schedules the room's
// next alarm keeps it. A descriptor referencing a
// player or seat that no longer exists is a
// silent no-op, per the §7 recovery note.
func (r *Room) handleAlarmFire(ctx context.Context) {
	at, desc, ok, err := r.ns.GetAlarm(ctx)
	if err != nil || !ok || at.After(time.Now()) {
		return
	}
	_ = r.ns.DeleteAlarm(ctx)

	switch desc.Kind {
	case store.AlarmAFKWarning:
		r.handleAFKWarning(ctx, desc.PlayerID)
	case store.AlarmAFKTimeout:
		r.handleAFKTimeout(ctx, desc.PlayerID)
	case store.AlarmReconnectDeadline:
		r.expireSeat(ctx, desc.PlayerID)
	case store.AlarmGameStart:
		r.handleGameStartAlarm(ctx)
	case store.AlarmAITurn:
		r.handleAITurnAlarm(ctx, desc.PlayerID)
	case store.AlarmRoomCleanup:
		r.handleRoomCleanupAlarm(ctx)
	}
}

// scheduleTurnTimeoutAlarms schedules the nearer of the two turn-clock
// alarms for the room's single alarm slot: AFK_WARNING at
// turnTimeout−10s, or AFK_TIMEOUT directly if the deadline is already
// under 10s away.
func (r *Room) scheduleTurnTimeoutAlarms(ctx context.Context, playerID string) {
	deadline := r.Game.TurnDeadline
	if deadline.IsZero() {
		return
	}

	const afkWarningLead = 10 * time.Second
	warnAt := deadline.Add(-afkWarningLead)

	if warnAt.After(time.Now()) {
		_ = r.ns.SetAlarm(ctx, warnAt, store.AlarmDescriptor{
			Kind: store.AlarmAFKWarning, PlayerID: playerID, ScheduledAt: time.Now(),
		})
		return
	}
	_ = r.ns.SetAlarm(ctx, deadline, store.AlarmDescriptor{
		Kind: store.AlarmAFKTimeout, PlayerID: playerID, ScheduledAt: time.Now(),
	})
}

type afkPayload struct {
	PlayerID         string `json:"playerId"`
	SecondsRemaining int    `json:"secondsRemaining"`
}

func (r *Room) handleAFKWarning(ctx context.Context, playerID string) {
	if r.Game.Phase == gamestate.PhaseGameOver || r.Game.CurrentPlayerID() != playerID || r.Game.TurnDeadline.IsZero() {
		return
	}

	remaining := time.Until(r.Game.TurnDeadline)
	r.broadcast(protocol.NewEvent(protocol.EvtPlayerAFK, afkPayload{PlayerID: playerID, SecondsRemaining: int(remaining.Seconds())}))

	_ = r.ns.SetAlarm(ctx, r.Game.TurnDeadline, store.AlarmDescriptor{
		Kind: store.AlarmAFKTimeout, PlayerID: playerID, ScheduledAt: time.Now(),
	})
}

func (r *Room) handleAFKTimeout(ctx context.Context, playerID string) {
	if r.Game.Phase == gamestate.PhaseGameOver || r.Game.CurrentPlayerID() != playerID {
		return
	}
	r.autoScoreAndAdvance(ctx, playerID, "timeout")
}

type turnSkippedPayload struct {
	PlayerID       string           `json:"playerId"`
	Reason         string           `json:"reason"`
	CategoryScored string           `json:"categoryScored"`
	Score          int              `json:"score"`
}

// autoScoreAndAdvance implements the auto-score-zero-and-advance half of
// both the turn-timeout path (§4.7 "Turn timeouts") and the seat
// expiration path (§4.7 "Seat expiration"): reason distinguishes
// TURN_SKIPPED's cause in the broadcast payload.
func (r *Room) autoScoreAndAdvance(ctx context.Context, playerID, reason string) {
	player, ok := r.Game.Players[playerID]
	if !ok {
		return
	}

	cat, ok := player.Scorecard.FirstUnscored()
	if !ok {
		r.advanceTurn(ctx)
		return
	}

	result, err := scoring.ApplyZeroScore(player.Scorecard, cat)
	if err != nil {
		return
	}
	player.Scorecard = result.Scorecard

	r.persistGameState(ctx)
	r.broadcast(protocol.NewEvent(protocol.EvtTurnSkipped, turnSkippedPayload{
		PlayerID: playerID, Reason: reason, CategoryScored: string(cat), Score: 0,
	}))
	if seat := r.Seats[playerID]; seat != nil {
		r.systemChat(ctx, seat.DisplayName+"'s turn was skipped.")
	}

	r.advanceTurn(ctx)
}

func (r *Room) handleRoomCleanupAlarm(ctx context.Context) {
	if r.seatedCount() > 0 {
		return
	}
	r.Phase = PhaseAbandoned
	r.persistRoom(ctx)
	if r.mgr != nil {
		r.mgr.closeRoom(r.Code)
	}
}

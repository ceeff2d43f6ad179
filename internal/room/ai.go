package room

import (
	"context"
	"time"

	"github.com/seednode-labs/dicee/internal/ai"
	"github.com/seednode-labs/dicee/internal/gamestate"
	"github.com/seednode-labs/dicee/internal/protocol"
	"github.com/seednode-labs/dicee/internal/scoring"
	"github.com/seednode-labs/dicee/internal/store"
)

// scheduleAITurn persists the minimal AITurnState and requests an
// AI_TURN alarm at now+delay.
func (r *Room) scheduleAITurn(ctx context.Context, playerID string, delay time.Duration) {
	r.aiTurn = &ai.TurnState{PlayerID: playerID, Step: ai.StepDecide}
	r.persistAITurn(ctx)
	_ = r.ns.SetAlarm(ctx, time.Now().Add(delay), store.AlarmDescriptor{
		Kind: store.AlarmAITurn, PlayerID: playerID, ScheduledAt: time.Now(),
	})
}

// handleAITurnAlarm drives one AI_TURN wake-up: fetch the latest
// state, ask the brain for a decision, and either apply a
// roll/keep step and schedule the next wake-up, or (after the score
// brain has already decided and the presentation delay has elapsed)
// apply the scored category and advance the turn.
func (r *Room) handleAITurnAlarm(ctx context.Context, playerID string) {
	if r.Game.Phase == gamestate.PhaseGameOver || r.Game.CurrentPlayerID() != playerID {
		return
	}
	seat := r.Seats[playerID]
	if seat == nil || seat.Type != gamestate.PlayerAI {
		return
	}
	profile, err := ai.LookupProfile(seat.AIProfileID)
	if err != nil {
		return
	}
	player := r.Game.Players[playerID]
	if player == nil {
		return
	}

	if r.aiTurn != nil && r.aiTurn.Step == ai.StepScoring {
		r.applyAIScore(ctx, playerID, player, scoring.Category(r.aiTurn.Category))
		return
	}

	aiCtx := r.buildAIContext(player)
	step := r.ai.Step(aiCtx, profile)

	if step.Decision.Kind == ai.DecisionScore {
		r.broadcast(protocol.NewEvent(protocol.EvtAIScoring, SeatView{PlayerID: playerID, DisplayName: seat.DisplayName}))
		delay := r.ai.ScoreDelay(profile, step.Decision)
		r.aiTurn = &ai.TurnState{PlayerID: playerID, Step: ai.StepScoring, Category: string(step.Decision.Category)}
		r.persistAITurn(ctx)
		_ = r.ns.SetAlarm(ctx, time.Now().Add(delay), store.AlarmDescriptor{
			Kind: store.AlarmAITurn, PlayerID: playerID, ScheduledAt: time.Now(),
		})
		return
	}

	r.applyAIRoll(ctx, playerID, seat, player, step.Decision.KeepMask)
	r.scheduleAITurn(ctx, playerID, step.Delay)
}

func (r *Room) applyAIRoll(ctx context.Context, playerID string, seat *Seat, player *gamestate.Player, keepMask [5]bool) {
	r.broadcast(protocol.NewEvent(protocol.EvtAIRolling, SeatView{PlayerID: playerID, DisplayName: seat.DisplayName}))

	player.KeptMask = keepMask
	for i := range player.CurrentDice {
		if !player.HasDice || !player.KeptMask[i] {
			player.CurrentDice[i] = r.rnd.Intn(6) + 1
		}
	}
	player.HasDice = true
	player.RollsRemaining--
	r.Game.Phase = gamestate.PhaseTurnDecide

	r.persistGameState(ctx)
	r.broadcast(protocol.NewEvent(protocol.EvtDiceRolled, dicePayload{Dice: player.CurrentDice}))
}

func (r *Room) applyAIScore(ctx context.Context, playerID string, player *gamestate.Player, category scoring.Category) {
	result, err := scoring.ApplyScore(player.Scorecard, category, player.CurrentDice)
	if err != nil {
		// Brain recommended an already-scored or invalid category; fall
		// back to the deterministic first-unscored rather than stall
		// the turn forever.
		if cat, ok := player.Scorecard.FirstUnscored(); ok {
			result, _ = scoring.ApplyScore(player.Scorecard, cat, player.CurrentDice)
			category = cat
		} else {
			r.advanceTurn(ctx)
			return
		}
	}
	player.Scorecard = result.Scorecard

	r.persistGameState(ctx)
	r.broadcast(protocol.NewEvent(protocol.EvtCategoryScored, scoredPayload{
		PlayerID: playerID, Category: category, Score: result.Gained,
		RepeatBonus: result.IsRepeatBonus, UpperBonusAwarded: result.UpperBonusAwarded,
		TotalScore: player.TotalScore(),
	}))

	r.advanceTurn(ctx)
}

// buildAIContext assembles the flat decision context a brain needs,
// built fresh from the just-reloaded game state every wake-up: AI
// decisions must never act on a snapshot captured before the alarm
// fired.
func (r *Room) buildAIContext(player *gamestate.Player) ai.Context {
	open := r.Game.RemainingCategories(player.ID)

	ev := make(map[scoring.Category]int, len(open))
	for _, c := range open {
		v, _ := scoring.Score(c, player.CurrentDice)
		ev[c] = v
	}

	var opponents []int
	for _, id := range r.Game.PlayerOrder {
		if id == player.ID {
			continue
		}
		if p, ok := r.Game.Players[id]; ok {
			opponents = append(opponents, p.TotalScore())
		}
	}

	return ai.Context{
		Dice: player.CurrentDice, RollsRemaining: player.RollsRemaining,
		OpenCategories: open, OwnScore: player.TotalScore(), OpponentScores: opponents,
		RoundNumber: r.Game.RoundNumber, TotalRounds: gamestate.NumTurns, CurrentCategoryEV: ev,
	}
}

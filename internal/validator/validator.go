// Package validator decides, for each client command, whether it is
// legal against the current game state, returning a typed rejection
// from a closed set rather than a bare error string.
package validator

import (
	"errors"

	"github.com/seednode-labs/dicee/internal/gamestate"
	"github.com/seednode-labs/dicee/internal/scoring"
)

// Rejection is one of the closed set of validator outcomes the command
// dispatcher can produce.
type Rejection error

var (
	ErrNotYourTurn           Rejection = errors.New("not your turn")
	ErrInvalidPhase          Rejection = errors.New("invalid phase for this command")
	ErrNoRollsRemaining      Rejection = errors.New("no rolls remaining")
	ErrCategoryAlreadyScored Rejection = errors.New("category already scored")
	ErrUnknownCategory       Rejection = errors.New("unknown category")
	ErrNotHost               Rejection = errors.New("caller is not the host")
	ErrNotEnoughPlayers      Rejection = errors.New("not enough players")
	ErrGameInProgress        Rejection = errors.New("game already in progress")
	ErrGameNotStarted        Rejection = errors.New("game has not started")
)

// Caller carries the request-scoped facts the validator needs: who is
// asking and whether they are the room's host. Seat membership and
// connection state are the room core's concern, not the validator's.
type Caller struct {
	PlayerID string
	IsHost   bool
}

// MinPlayers is the fewest seated players (human or AI) required to
// start a game.
const MinPlayers = 2

// ValidateStartGame checks START_GAME.
func ValidateStartGame(s *gamestate.State, caller Caller, seatedCount int) error {
	if s.Phase != gamestate.PhaseWaiting {
		return ErrInvalidPhase
	}
	if !caller.IsHost {
		return ErrNotHost
	}
	if seatedCount < MinPlayers {
		return ErrNotEnoughPlayers
	}
	return nil
}

// ValidateQuickPlayStart checks QUICK_PLAY_START. otherHumans is the
// count of seated human players other than the caller.
func ValidateQuickPlayStart(s *gamestate.State, caller Caller, otherHumans int) error {
	if s.Phase != gamestate.PhaseWaiting {
		return ErrInvalidPhase
	}
	if !caller.IsHost {
		return ErrNotHost
	}
	if otherHumans > 0 {
		return ErrGameInProgress
	}
	return nil
}

// ValidateDiceRoll checks DICE_ROLL.
func ValidateDiceRoll(s *gamestate.State, caller Caller) error {
	if s.Phase != gamestate.PhaseTurnRoll && s.Phase != gamestate.PhaseTurnDecide {
		return ErrInvalidPhase
	}
	if s.CurrentPlayerID() != caller.PlayerID {
		return ErrNotYourTurn
	}
	p := s.Players[caller.PlayerID]
	if p == nil || p.RollsRemaining <= 0 {
		return ErrNoRollsRemaining
	}
	return nil
}

// ValidateDiceKeep checks DICE_KEEP.
func ValidateDiceKeep(s *gamestate.State, caller Caller) error {
	if s.Phase != gamestate.PhaseTurnDecide {
		return ErrInvalidPhase
	}
	if s.CurrentPlayerID() != caller.PlayerID {
		return ErrNotYourTurn
	}
	return nil
}

// ValidateCategoryScore checks CATEGORY_SCORE.
func ValidateCategoryScore(s *gamestate.State, caller Caller, category scoring.Category) error {
	if s.Phase != gamestate.PhaseTurnDecide {
		return ErrInvalidPhase
	}
	if s.CurrentPlayerID() != caller.PlayerID {
		return ErrNotYourTurn
	}
	if !scoring.IsValid(category) {
		return ErrUnknownCategory
	}
	p := s.Players[caller.PlayerID]
	if p == nil {
		return ErrNotYourTurn
	}
	if p.Scorecard.IsScored(category) {
		return ErrCategoryAlreadyScored
	}
	return nil
}

// ValidateRematch checks REMATCH.
func ValidateRematch(s *gamestate.State, caller Caller) error {
	if s.Phase != gamestate.PhaseGameOver {
		return ErrInvalidPhase
	}
	if !caller.IsHost {
		return ErrNotHost
	}
	return nil
}

// ValidateAddAIPlayer checks ADD_AI_PLAYER. Profile-id validity is the
// AI registry's concern (internal/ai), not the rules engine's, so it is
// checked by the room core before or after this call.
func ValidateAddAIPlayer(s *gamestate.State, caller Caller, seatAvailable bool) error {
	if s.Phase != gamestate.PhaseWaiting {
		return ErrInvalidPhase
	}
	if !caller.IsHost {
		return ErrNotHost
	}
	if !seatAvailable {
		return ErrGameInProgress
	}
	return nil
}

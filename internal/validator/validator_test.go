package validator

import (
	"testing"

	"github.com/seednode-labs/dicee/internal/gamestate"
	"github.com/seednode-labs/dicee/internal/scoring"
	"github.com/stretchr/testify/require"
)

func TestValidateStartGame(t *testing.T) {
	s := gamestate.New()
	err := ValidateStartGame(s, Caller{IsHost: true}, 1)
	require.ErrorIs(t, err, ErrNotEnoughPlayers)

	err = ValidateStartGame(s, Caller{IsHost: false}, 2)
	require.ErrorIs(t, err, ErrNotHost)

	err = ValidateStartGame(s, Caller{IsHost: true}, 2)
	require.NoError(t, err)

	s.Phase = gamestate.PhaseTurnRoll
	err = ValidateStartGame(s, Caller{IsHost: true}, 2)
	require.ErrorIs(t, err, ErrInvalidPhase)
}

func TestValidateDiceRoll(t *testing.T) {
	s := gamestate.New()
	s.PlayerOrder = []string{"p1", "p2"}
	s.Players["p1"] = &gamestate.Player{ID: "p1", RollsRemaining: 3}
	s.Phase = gamestate.PhaseTurnRoll

	err := ValidateDiceRoll(s, Caller{PlayerID: "p2"})
	require.ErrorIs(t, err, ErrNotYourTurn)

	err = ValidateDiceRoll(s, Caller{PlayerID: "p1"})
	require.NoError(t, err)

	s.Players["p1"].RollsRemaining = 0
	err = ValidateDiceRoll(s, Caller{PlayerID: "p1"})
	require.ErrorIs(t, err, ErrNoRollsRemaining)
}

func TestValidateCategoryScore(t *testing.T) {
	s := gamestate.New()
	s.PlayerOrder = []string{"p1"}
	card := scoring.NewScorecard()
	card.Scored[scoring.Aces] = true
	s.Players["p1"] = &gamestate.Player{ID: "p1", Scorecard: card}
	s.Phase = gamestate.PhaseTurnDecide

	err := ValidateCategoryScore(s, Caller{PlayerID: "p1"}, scoring.Aces)
	require.ErrorIs(t, err, ErrCategoryAlreadyScored)

	err = ValidateCategoryScore(s, Caller{PlayerID: "p1"}, scoring.Twos)
	require.NoError(t, err)

	err = ValidateCategoryScore(s, Caller{PlayerID: "p1"}, scoring.Category("bogus"))
	require.ErrorIs(t, err, ErrUnknownCategory)
}

func TestValidateRematch(t *testing.T) {
	s := gamestate.New()
	s.Phase = gamestate.PhaseGameOver

	require.ErrorIs(t, ValidateRematch(s, Caller{IsHost: false}), ErrNotHost)
	require.NoError(t, ValidateRematch(s, Caller{IsHost: true}))
}

package gamestate

import (
	"testing"

	"github.com/seednode-labs/dicee/internal/scoring"
	"github.com/stretchr/testify/require"
)

func newTestState(ids ...string) *State {
	s := New()
	s.PlayerOrder = ids
	for _, id := range ids {
		s.Players[id] = &Player{ID: id, Scorecard: scoring.NewScorecard()}
	}
	return s
}

func TestCurrentPlayer(t *testing.T) {
	s := newTestState("p1", "p2")
	require.Equal(t, "p1", s.CurrentPlayerID())
	require.Equal(t, "p1", s.CurrentPlayer().ID)
}

func TestAdvanceTurnWrapsAndIncrementsRound(t *testing.T) {
	s := newTestState("p1", "p2")
	s.RoundNumber = 1

	s.AdvanceTurn()
	require.Equal(t, 1, s.CurrentPlayerIndex)
	require.Equal(t, 1, s.RoundNumber)

	s.AdvanceTurn()
	require.Equal(t, 0, s.CurrentPlayerIndex)
	require.Equal(t, 2, s.RoundNumber)
}

func TestAutoScoreCategoryIsDeterministic(t *testing.T) {
	s := newTestState("p1")
	p := s.Players["p1"]
	p.Scorecard.Scored[scoring.Aces] = true

	cat, ok := s.AutoScoreCategory("p1")
	require.True(t, ok)
	require.Equal(t, scoring.Twos, cat)
}

func TestAllScorecardsCompleteAndRankings(t *testing.T) {
	s := newTestState("p1", "p2")
	for _, c := range scoring.AllCategories {
		s.Players["p1"].Scorecard.Scored[c] = true
		s.Players["p1"].Scorecard.Values[c] = 5
		s.Players["p2"].Scorecard.Scored[c] = true
		s.Players["p2"].Scorecard.Values[c] = 3
	}

	require.True(t, s.AllScorecardsComplete())

	rankings := s.ComputeRankings()
	require.Len(t, rankings, 2)
	require.Equal(t, "p1", rankings[0].PlayerID)
	require.Equal(t, 1, rankings[0].Place)
	require.Equal(t, 2, rankings[1].Place)
}

func TestRemainingCategories(t *testing.T) {
	s := newTestState("p1")
	s.Players["p1"].Scorecard.Scored[scoring.Aces] = true

	remaining := s.RemainingCategories("p1")
	require.Len(t, remaining, len(scoring.AllCategories)-1)
	require.NotContains(t, remaining, scoring.Aces)
}

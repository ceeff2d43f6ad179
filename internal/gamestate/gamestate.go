// Package gamestate holds the typed representation of a single game of
// dice and the read helpers the validator and room core drive it with.
// It owns no I/O and no concurrency primitives of its own; the room
// core is responsible for serializing access.
package gamestate

import (
	"time"

	"github.com/seednode-labs/dicee/internal/scoring"
)

// Phase is the fine-grained phase of a game in progress, distinct from
// scoring.Phase (the room-wide phase).
type Phase string

const (
	PhaseWaiting    Phase = "waiting"
	PhaseStarting   Phase = "starting"
	PhaseTurnRoll   Phase = "turn_roll"
	PhaseTurnDecide Phase = "turn_decide"
	PhaseGameOver   Phase = "game_over"
)

const (
	MaxRolls = 3
	NumDice  = 5
	NumTurns = 13
)

// PlayerType distinguishes human-controlled from AI-controlled seats.
type PlayerType string

const (
	PlayerHuman PlayerType = "human"
	PlayerAI    PlayerType = "ai"
)

// Player is one seated participant's game-relevant state. Connection
// identity (display name, avatar, host flag) lives alongside this in
// the room's seat table; this struct only carries what the rules need.
type Player struct {
	ID             string
	Type           PlayerType
	AIProfileID    string
	Scorecard      scoring.Scorecard
	CurrentDice    [5]int
	HasDice        bool
	KeptMask       [5]bool
	RollsRemaining int
}

// TotalScore returns the player's current grand total.
func (p Player) TotalScore() int {
	return p.Scorecard.Total()
}

// Ranking is one entry of the final standings, populated when the game
// reaches PhaseGameOver.
type Ranking struct {
	PlayerID string
	Score    int
	Place    int
}

// State is the full authoritative game state for one room's current (or
// most recent) game.
type State struct {
	Phase              Phase
	PlayerOrder        []string
	Players            map[string]*Player
	CurrentPlayerIndex int
	TurnNumber         int
	RoundNumber        int
	TurnStartedAt      time.Time
	TurnDeadline       time.Time // zero when no turn clock is running
	GameStartedAt      time.Time
	GameCompletedAt    time.Time
	Rankings           []Ranking
}

// New returns a fresh, pre-game state.
func New() *State {
	return &State{
		Phase:   PhaseWaiting,
		Players: make(map[string]*Player),
	}
}

// CurrentPlayerID returns the id of the player whose turn it is. Empty
// when there is no active game.
func (s *State) CurrentPlayerID() string {
	if s.CurrentPlayerIndex < 0 || s.CurrentPlayerIndex >= len(s.PlayerOrder) {
		return ""
	}
	return s.PlayerOrder[s.CurrentPlayerIndex]
}

// CurrentPlayer returns the Player whose turn it is, or nil.
func (s *State) CurrentPlayer() *Player {
	id := s.CurrentPlayerID()
	if id == "" {
		return nil
	}
	return s.Players[id]
}

// RemainingCategories returns the categories player has not yet scored,
// in the fixed enumeration order.
func (s *State) RemainingCategories(playerID string) []scoring.Category {
	p, ok := s.Players[playerID]
	if !ok {
		return nil
	}
	var out []scoring.Category
	for _, c := range scoring.AllCategories {
		if !p.Scorecard.IsScored(c) {
			out = append(out, c)
		}
	}
	return out
}

// IsScorecardComplete reports whether playerID has scored every category.
func (s *State) IsScorecardComplete(playerID string) bool {
	p, ok := s.Players[playerID]
	if !ok {
		return false
	}
	return p.Scorecard.IsComplete()
}

// AutoScoreCategory returns the deterministic category to auto-score as
// zero for a skipped turn: the first still-unscored category in the
// fixed enumeration.
func (s *State) AutoScoreCategory(playerID string) (scoring.Category, bool) {
	p, ok := s.Players[playerID]
	if !ok {
		return "", false
	}
	return p.Scorecard.FirstUnscored()
}

// NextPlayerIndex returns the index that follows current in
// PlayerOrder, wrapping around, and reports whether the wrap crossed a
// round boundary (every player has had one turn since the last wrap).
func (s *State) NextPlayerIndex() (index int, wrapped bool) {
	if len(s.PlayerOrder) == 0 {
		return 0, false
	}
	next := s.CurrentPlayerIndex + 1
	if next >= len(s.PlayerOrder) {
		return 0, true
	}
	return next, false
}

// AdvanceTurn moves CurrentPlayerIndex to the next player, incrementing
// TurnNumber always and RoundNumber on wrap.
func (s *State) AdvanceTurn() {
	next, wrapped := s.NextPlayerIndex()
	s.CurrentPlayerIndex = next
	s.TurnNumber++
	if wrapped {
		s.RoundNumber++
	}
}

// AllScorecardsComplete reports whether every seated player has filled
// every category, i.e. the game is over.
func (s *State) AllScorecardsComplete() bool {
	for _, id := range s.PlayerOrder {
		if !s.IsScorecardComplete(id) {
			return false
		}
	}
	return true
}

// ComputeRankings sorts players by total score descending and assigns
// places, with ties sharing a place.
func (s *State) ComputeRankings() []Ranking {
	rankings := make([]Ranking, 0, len(s.PlayerOrder))
	for _, id := range s.PlayerOrder {
		p := s.Players[id]
		if p == nil {
			continue
		}
		rankings = append(rankings, Ranking{PlayerID: id, Score: p.TotalScore()})
	}

	for i := 1; i < len(rankings); i++ {
		j := i
		for j > 0 && rankings[j-1].Score < rankings[j].Score {
			rankings[j-1], rankings[j] = rankings[j], rankings[j-1]
			j--
		}
	}

	place := 0
	prevScore := -1
	for i := range rankings {
		if rankings[i].Score != prevScore {
			place = i + 1
			prevScore = rankings[i].Score
		}
		rankings[i].Place = place
	}

	return rankings
}

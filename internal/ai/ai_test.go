package ai

import (
	"math/rand"
	"testing"

	"github.com/seednode-labs/dicee/internal/scoring"
	"github.com/stretchr/testify/require"
)

func TestLookupProfileKnown(t *testing.T) {
	p, err := LookupProfile("carmen")
	require.NoError(t, err)
	require.Equal(t, BrainPersonality, p.Brain)
}

func TestLookupProfileUnknown(t *testing.T) {
	_, err := LookupProfile("nonexistent")
	require.ErrorIs(t, err, ErrUnknownProfile)
}

func TestOptimalBrainScoresFiveOfAKindWhenRolled(t *testing.T) {
	ctx := Context{
		Dice:           [5]int{6, 6, 6, 6, 6},
		RollsRemaining: 2,
		OpenCategories: scoring.AllCategories,
	}
	decision := decideOptimal(ctx)
	require.Equal(t, DecisionScore, decision.Kind)
	require.Equal(t, scoring.FiveOfAKind, decision.Category)
}

func TestOptimalBrainRollsWhenNothingGood(t *testing.T) {
	ctx := Context{
		Dice:           [5]int{1, 2, 3, 4, 6},
		RollsRemaining: 2,
		OpenCategories: []scoring.Category{scoring.Sixes, scoring.FullHouse},
	}
	decision := decideOptimal(ctx)
	require.Equal(t, DecisionRoll, decision.Kind)
}

func TestRandomBrainOnlyScoresAtZeroRolls(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	ctx := Context{
		Dice:           [5]int{1, 1, 1, 1, 1},
		RollsRemaining: 0,
		OpenCategories: scoring.AllCategories,
	}
	decision := decideRandom(ctx, rnd)
	require.Equal(t, DecisionScore, decision.Kind)
}

func TestControllerStepScoreHasNoDelay(t *testing.T) {
	c := New(rand.NewSource(42))
	profile, err := LookupProfile("otto")
	require.NoError(t, err)

	ctx := Context{
		Dice:           [5]int{6, 6, 6, 6, 6},
		RollsRemaining: 0,
		OpenCategories: scoring.AllCategories,
	}
	step := c.Step(ctx, profile)
	require.Equal(t, DecisionScore, step.Decision.Kind)
	require.Zero(t, step.Delay)
}

func TestControllerStepRollHasPositiveDelay(t *testing.T) {
	c := New(rand.NewSource(42))
	profile, err := LookupProfile("otto")
	require.NoError(t, err)

	ctx := Context{
		Dice:           [5]int{1, 2, 3, 4, 6},
		RollsRemaining: 3,
		OpenCategories: []scoring.Category{scoring.Sixes, scoring.FullHouse},
	}
	step := c.Step(ctx, profile)
	require.Equal(t, DecisionRoll, step.Decision.Kind)
	require.Greater(t, step.Delay.Milliseconds(), int64(0))
}

func TestPersonalityBrainReturnsRollOrScore(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	profile, err := LookupProfile("dice-dan")
	require.NoError(t, err)
	profile.Brain = BrainPersonality

	ctx := Context{
		Dice:              [5]int{1, 2, 3, 4, 6},
		RollsRemaining:    2,
		OpenCategories:    []scoring.Category{scoring.Sixes, scoring.FullHouse},
		CurrentCategoryEV: map[scoring.Category]int{scoring.Sixes: 6, scoring.FullHouse: 0},
	}
	decision := decidePersonality(ctx, profile, rnd)
	require.Contains(t, []DecisionKind{DecisionRoll, DecisionScore}, decision.Kind)
}

func TestKnownProfileIDsNonEmpty(t *testing.T) {
	ids := KnownProfileIDs()
	require.NotEmpty(t, ids)
}

package scoring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScoreUpperCategories(t *testing.T) {
	dice := [5]int{2, 2, 2, 5, 6}

	got, err := Score(Twos, dice)
	require.NoError(t, err)
	require.Equal(t, 6, got)

	got, err = Score(Sixes, dice)
	require.NoError(t, err)
	require.Equal(t, 6, got)
}

func TestScoreThreeAndFourOfAKind(t *testing.T) {
	three := [5]int{3, 3, 3, 4, 5}
	got, err := Score(ThreeOfAKind, three)
	require.NoError(t, err)
	require.Equal(t, 18, got)

	got, err = Score(FourOfAKind, three)
	require.NoError(t, err)
	require.Equal(t, 0, got)

	four := [5]int{3, 3, 3, 3, 5}
	got, err = Score(FourOfAKind, four)
	require.NoError(t, err)
	require.Equal(t, 17, got)
}

func TestScoreFullHouse(t *testing.T) {
	got, err := Score(FullHouse, [5]int{2, 2, 3, 3, 3})
	require.NoError(t, err)
	require.Equal(t, FullHouseScore, got)

	got, err = Score(FullHouse, [5]int{2, 2, 2, 2, 2})
	require.NoError(t, err)
	require.Equal(t, 0, got, "five of a kind is not a full house")

	got, err = Score(FullHouse, [5]int{1, 2, 3, 4, 5})
	require.NoError(t, err)
	require.Equal(t, 0, got)
}

func TestScoreStraights(t *testing.T) {
	small, err := Score(SmallStraight, [5]int{1, 2, 3, 4, 4})
	require.NoError(t, err)
	require.Equal(t, SmallStraightScore, small)

	large, err := Score(LargeStraight, [5]int{2, 3, 4, 5, 6})
	require.NoError(t, err)
	require.Equal(t, LargeStraightScore, large)

	notSmall, err := Score(SmallStraight, [5]int{1, 1, 2, 5, 6})
	require.NoError(t, err)
	require.Equal(t, 0, notSmall)
}

func TestScoreFiveOfAKindAndChance(t *testing.T) {
	five, err := Score(FiveOfAKind, [5]int{4, 4, 4, 4, 4})
	require.NoError(t, err)
	require.Equal(t, FiveOfAKindScore, five)

	chance, err := Score(Chance, [5]int{1, 2, 3, 4, 5})
	require.NoError(t, err)
	require.Equal(t, 15, chance)
}

func TestScoreUnknownCategory(t *testing.T) {
	_, err := Score(Category("nope"), [5]int{1, 1, 1, 1, 1})
	require.ErrorIs(t, err, ErrUnknownCategory)
}

func TestApplyScoreRepeatPatternBonus(t *testing.T) {
	card := NewScorecard()
	card.Values[FiveOfAKind] = FiveOfAKindScore
	card.Scored[FiveOfAKind] = true

	result, err := ApplyScore(card, Fives, [5]int{5, 5, 5, 5, 5})
	require.NoError(t, err)
	require.Equal(t, 25, result.Gained)
	require.True(t, result.IsRepeatBonus)
	require.Equal(t, RepeatPatternBonus, result.Scorecard.RepeatPatternBonus)
}

func TestApplyScoreNoRepeatBonusWhenFirstFiveOfAKindIsZero(t *testing.T) {
	card := NewScorecard()
	card.Scored[FiveOfAKind] = true // scored as zero

	result, err := ApplyScore(card, Fives, [5]int{5, 5, 5, 5, 5})
	require.NoError(t, err)
	require.False(t, result.IsRepeatBonus)
}

func TestApplyScoreUpperBonusCrossing(t *testing.T) {
	card := NewScorecard()
	for _, c := range []Category{Aces, Twos, Threes, Fours, Fives} {
		card.Values[c] = 12
		card.Scored[c] = true
	}
	// upper sum so far = 60

	result, err := ApplyScore(card, Sixes, [5]int{6, 6, 6, 2, 3})
	require.NoError(t, err)
	require.Equal(t, 18, result.Gained)
	require.True(t, result.UpperBonusAwarded)
	require.Equal(t, UpperBonusReward, result.Scorecard.UpperBonus)
}

func TestScorecardFirstUnscoredFixedOrder(t *testing.T) {
	card := NewScorecard()
	card.Scored[Aces] = true
	card.Scored[Twos] = true

	cat, ok := card.FirstUnscored()
	require.True(t, ok)
	require.Equal(t, Threes, cat)
}

func TestIsValidPhaseTransition(t *testing.T) {
	require.True(t, IsValidPhaseTransition(PhaseWaiting, PhaseStarting))
	require.False(t, IsValidPhaseTransition(PhaseComplete, PhaseStarting))
	require.True(t, IsValidPhaseTransition(PhaseComplete, PhaseWaiting))
}

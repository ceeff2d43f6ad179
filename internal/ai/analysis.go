package ai

import (
	"github.com/seednode-labs/dicee/internal/scoring"
)

// TurnAnalysis is the output of analyzeTurn: an expected-value ranked
// recommendation for the current decision point. This file supplies a
// direct heuristic implementation grounded in the same scoring.Score
// this room core already uses, so the optimal brain has a real
// recommendation to delegate to rather than a stub.
type TurnAnalysis struct {
	// RecommendKeep is the keep mask analyzeTurn recommends for the next
	// roll, valid only when RollsRemaining > 0.
	RecommendKeep [5]bool
	// RecommendCategory is the category analyzeTurn recommends scoring
	// into right now.
	RecommendCategory scoring.Category
	// CategoryEV maps every still-open category to its expected value if
	// scored with the current dice.
	CategoryEV map[scoring.Category]int
	// BestEV is CategoryEV[RecommendCategory].
	BestEV int
	// EVGap is BestEV minus the second-best open category's EV, used by
	// the hesitation timing rule.
	EVGap int
}

// analyzeTurn scores every open category against the current dice and
// recommends the best one, plus a keep mask biased toward the faces
// that contribute to that category, for use when rolls remain.
func analyzeTurn(dice [5]int, rollsRemaining int, open []scoring.Category) TurnAnalysis {
	evs := make(map[scoring.Category]int, len(open))
	best := scoring.Category("")
	bestEV := -1
	second := -1

	for _, c := range open {
		v, err := scoring.Score(c, dice)
		if err != nil {
			continue
		}
		evs[c] = v
		if v > bestEV {
			second = bestEV
			bestEV = v
			best = c
		} else if v > second {
			second = v
		}
	}

	analysis := TurnAnalysis{
		RecommendCategory: best,
		CategoryEV:        evs,
		BestEV:            bestEV,
		EVGap:             bestEV - second,
	}

	if rollsRemaining > 0 {
		analysis.RecommendKeep = keepMaskFor(dice, best)
	}

	return analysis
}

// keepMaskFor recommends keeping the dice that already contribute to
// target: matching faces for upper-section categories, the most common
// face for of-a-kind, full house and five-of-a-kind, one die of each
// distinct face for straights, nothing for chance.
func keepMaskFor(dice [5]int, target scoring.Category) [5]bool {
	var mask [5]bool
	if target == "" {
		return mask
	}

	counts := [7]int{}
	for _, d := range dice {
		counts[d]++
	}

	switch target {
	case scoring.Aces, scoring.Twos, scoring.Threes, scoring.Fours, scoring.Fives, scoring.Sixes:
		face := faceForUpper(target)
		for i, d := range dice {
			mask[i] = d == face
		}
	case scoring.ThreeOfAKind, scoring.FourOfAKind, scoring.FiveOfAKind, scoring.FullHouse:
		majority := majorityFace(counts)
		for i, d := range dice {
			mask[i] = d == majority
		}
	case scoring.Chance:
		// keep nothing; rerolling everything cannot lower a chance score
		// if the player intends to chase something better first
	default:
		// small/large straight: keep every distinct face once
		seen := map[int]bool{}
		for i, d := range dice {
			if !seen[d] {
				mask[i] = true
				seen[d] = true
			}
		}
	}

	return mask
}

func faceForUpper(c scoring.Category) int {
	switch c {
	case scoring.Aces:
		return 1
	case scoring.Twos:
		return 2
	case scoring.Threes:
		return 3
	case scoring.Fours:
		return 4
	case scoring.Fives:
		return 5
	case scoring.Sixes:
		return 6
	}
	return 0
}

func majorityFace(counts [7]int) int {
	face, best := 0, -1
	for f := 1; f <= 6; f++ {
		if counts[f] > best {
			best = counts[f]
			face = f
		}
	}
	return face
}

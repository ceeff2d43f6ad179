package ai

import (
	"math/rand"

	"github.com/seednode-labs/dicee/internal/scoring"
)

// DecisionKind distinguishes the two shapes of action an AI turn can
// take, matching the client command pair it will be translated into.
type DecisionKind string

const (
	DecisionRoll  DecisionKind = "roll"
	DecisionScore DecisionKind = "score"
)

// Decision is the sum type produced by a brain: either roll(keepMask)
// or score(category), produced by a single decide operation switched
// over BrainKind below rather than a brain-subclass dynamic dispatch.
type Decision struct {
	Kind     DecisionKind
	KeepMask [5]bool
	Category scoring.Category
	// EVGap carries analyzeTurn's gap forward so the controller can
	// decide whether to add hesitation delay, without recomputing it.
	EVGap int
}

// Context is everything a brain needs to decide: the shape is
// deliberately flat and JSON-free, built fresh from gamestate on every
// alarm wake.
type Context struct {
	Dice             [5]int
	RollsRemaining   int
	OpenCategories   []scoring.Category
	OwnScore         int
	OpponentScores   []int
	RoundNumber      int
	TotalRounds      int
	CurrentCategoryEV map[scoring.Category]int
}

// decide dispatches to the brain named by profile.Brain. rnd is an
// injected source so tests can make deterministic assertions about
// probabilistic/random brains.
func decide(ctx Context, profile Profile, rnd *rand.Rand) Decision {
	switch profile.Brain {
	case BrainOptimal:
		return decideOptimal(ctx)
	case BrainProbabilistic:
		return decideProbabilistic(ctx, rnd)
	case BrainPersonality:
		return decidePersonality(ctx, profile, rnd)
	case BrainRandom:
		return decideRandom(ctx, rnd)
	default:
		return decideOptimal(ctx)
	}
}

func decideOptimal(ctx Context) Decision {
	analysis := analyzeTurn(ctx.Dice, ctx.RollsRemaining, ctx.OpenCategories)

	if ctx.RollsRemaining == 0 || shouldStopRolling(analysis, ctx) {
		return Decision{Kind: DecisionScore, Category: analysis.RecommendCategory, EVGap: analysis.EVGap}
	}
	return Decision{Kind: DecisionRoll, KeepMask: analysis.RecommendKeep, EVGap: analysis.EVGap}
}

// shouldStopRolling is optimal's stopping rule: score now once the best
// open category's value is already at or above the typical ceiling for
// that category, otherwise spend the remaining rolls chasing it.
func shouldStopRolling(analysis TurnAnalysis, ctx Context) bool {
	if ctx.RollsRemaining <= 0 {
		return true
	}
	return analysis.BestEV >= ceilingFor(analysis.RecommendCategory)
}

func ceilingFor(c scoring.Category) int {
	switch c {
	case scoring.FullHouse:
		return scoring.FullHouseScore
	case scoring.SmallStraight:
		return scoring.SmallStraightScore
	case scoring.LargeStraight:
		return scoring.LargeStraightScore
	case scoring.FiveOfAKind:
		return scoring.FiveOfAKindScore
	default:
		return 30 // upper/of-a-kind/chance: stop chasing past a generous ceiling
	}
}

// decideProbabilistic weights each open action (continue rolling vs.
// score into each open category) by its expected value and samples one.
func decideProbabilistic(ctx Context, rnd *rand.Rand) Decision {
	analysis := analyzeTurn(ctx.Dice, ctx.RollsRemaining, ctx.OpenCategories)

	if ctx.RollsRemaining == 0 {
		return Decision{Kind: DecisionScore, Category: analysis.RecommendCategory, EVGap: analysis.EVGap}
	}

	type weighted struct {
		category scoring.Category
		weight   float64
	}
	var options []weighted
	total := 0.0
	for c, ev := range analysis.CategoryEV {
		w := float64(ev) + 1
		options = append(options, weighted{category: c, weight: w})
		total += w
	}

	// A weight proportional to the best EV represents "keep rolling"
	// when nothing open is yet good.
	rollWeight := float64(analysis.BestEV)/2 + 1
	total += rollWeight

	pick := rnd.Float64() * total
	for _, o := range options {
		if pick < o.weight {
			return Decision{Kind: DecisionScore, Category: o.category, EVGap: analysis.EVGap}
		}
		pick -= o.weight
	}

	return Decision{Kind: DecisionRoll, KeepMask: analysis.RecommendKeep, EVGap: analysis.EVGap}
}

// decidePersonality starts from the optimal recommendation, applies
// trait-based biases, then injects skill noise by flipping keep bits.
func decidePersonality(ctx Context, profile Profile, rnd *rand.Rand) Decision {
	base := decideOptimal(ctx)
	traits := profile.Traits

	if base.Kind == DecisionScore && ctx.RollsRemaining > 0 {
		analysis := analyzeTurn(ctx.Dice, ctx.RollsRemaining, ctx.OpenCategories)
		if traits.RiskTolerance > 0.5 && analysis.BestEV < ceilingFor(analysis.RecommendCategory) {
			base = Decision{Kind: DecisionRoll, KeepMask: analysis.RecommendKeep, EVGap: analysis.EVGap}
		}
	}

	if traits.AvoidsEarlyZeros && base.Kind == DecisionScore && ctx.RoundNumber <= 3 {
		if ev, ok := ctx.CurrentCategoryEV[base.Category]; ok && ev == 0 {
			if alt, ok := bestNonZeroAlternative(ctx, base.Category); ok {
				base.Category = alt
			}
		}
	}

	if base.Kind == DecisionRoll {
		noiseChance := (1 - profile.SkillLevel) * 0.35
		for i := range base.KeepMask {
			if rnd.Float64() < noiseChance {
				base.KeepMask[i] = !base.KeepMask[i]
			}
		}
	}

	return base
}

func bestNonZeroAlternative(ctx Context, avoid scoring.Category) (scoring.Category, bool) {
	best := scoring.Category("")
	bestEV := 0
	for c, ev := range ctx.CurrentCategoryEV {
		if c == avoid {
			continue
		}
		if ev > bestEV {
			bestEV = ev
			best = c
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}

// decideRandom picks uniformly among the valid actions: keep-and-roll
// with a random mask, or score into a uniformly chosen open category.
func decideRandom(ctx Context, rnd *rand.Rand) Decision {
	if ctx.RollsRemaining == 0 || len(ctx.OpenCategories) == 0 {
		return decideRandomScore(ctx, rnd)
	}

	if rnd.Float64() < 0.5 {
		return decideRandomScore(ctx, rnd)
	}

	var mask [5]bool
	for i := range mask {
		mask[i] = rnd.Float64() < 0.5
	}
	return Decision{Kind: DecisionRoll, KeepMask: mask}
}

func decideRandomScore(ctx Context, rnd *rand.Rand) Decision {
	if len(ctx.OpenCategories) == 0 {
		return Decision{Kind: DecisionScore}
	}
	pick := ctx.OpenCategories[rnd.Intn(len(ctx.OpenCategories))]
	return Decision{Kind: DecisionScore, Category: pick}
}

package ai

import (
	"math/rand"
	"time"
)

// TurnState is the minimal descriptor the room core persists under
// ai_turn_data between alarm wake-ups: just enough to know whose turn
// it is and which step it is waiting on. It deliberately carries no
// dice or scorecard copy; those are always re-read fresh from
// game_state under the resumption contract.
type TurnState struct {
	PlayerID string `json:"playerId"`
	Step     string `json:"phase"`
	// Category is set only during StepScoring, to carry a brain's
	// already-made (possibly non-deterministic) choice across the
	// score-delay alarm without re-invoking decide.
	Category string `json:"category,omitempty"`
}

const (
	StepDecide  = "decide"
	StepScoring = "scoring"
)

// Step is one output of the controller: the decision to apply plus how
// long to wait before the next alarm, or zero delay when the turn ends.
type Step struct {
	Decision Decision
	// Delay is how long from now the next AI_TURN alarm should be set.
	// Zero when Decision.Kind == DecisionScore, since the turn is over
	// and the room core advances to the next player instead of
	// re-scheduling.
	Delay time.Duration
}

// Controller is the per-process AI turn driver. It holds no per-room or
// per-player state of its own; every call receives a fresh Context
// built by the room core from the latest game_state, since AI
// decisions must never act on a snapshot captured before the alarm
// fired.
type Controller struct {
	rnd *rand.Rand
}

// New returns a Controller. src seeds the decision/timing randomness;
// pass rand.NewSource(time.Now().UnixNano()) in production and a fixed
// seed in tests for determinism.
func New(src rand.Source) *Controller {
	return &Controller{rnd: rand.New(src)}
}

// Step asks profile's brain for the next decision given ctx, and
// computes the delay until the following alarm when the turn
// continues.
func (c *Controller) Step(ctx Context, profile Profile) Step {
	decision := decide(ctx, profile, c.rnd)

	if decision.Kind == DecisionScore {
		return Step{Decision: decision}
	}

	delay := c.nextDelay(ctx, profile, decision)
	return Step{Decision: decision, Delay: delay}
}

// nextDelay samples from the profile's timing range for the decision
// just made, then applies the winning/losing, final-round and
// hesitation modifiers.
func (c *Controller) nextDelay(ctx Context, profile Profile, decision Decision) time.Duration {
	var base time.Duration
	switch {
	case ctx.RollsRemaining == 3:
		base = profile.Timing.RollDecision.sample(c.rnd.Float64)
	default:
		base = profile.Timing.KeepDecision.sample(c.rnd.Float64)
	}

	multiplier := 1.0
	if isWinning(ctx) {
		multiplier *= profile.Timing.FasterWhenWinning
	}
	if ctx.RoundNumber >= 11 {
		multiplier *= profile.Timing.SlowerFinalRounds
	}

	delay := time.Duration(float64(base) * multiplier)

	if profile.Timing.HesitationEVThresh > 0 && float64(decision.EVGap) > profile.Timing.HesitationEVThresh {
		delay += profile.Timing.HesitationRange.sample(c.rnd.Float64)
	}

	return delay
}

// ScoreDelay samples the delay before applying a score decision,
// separate from nextDelay since a score decision ends the turn rather
// than scheduling another roll/keep step.
func (c *Controller) ScoreDelay(profile Profile, decision Decision) time.Duration {
	base := profile.Timing.ScoreDecision.sample(c.rnd.Float64)
	if profile.Timing.HesitationEVThresh > 0 && float64(decision.EVGap) > profile.Timing.HesitationEVThresh {
		base += profile.Timing.HesitationRange.sample(c.rnd.Float64)
	}
	return base
}

func isWinning(ctx Context) bool {
	for _, opp := range ctx.OpponentScores {
		if opp > ctx.OwnScore {
			return false
		}
	}
	return true
}

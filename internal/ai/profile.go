// Package ai implements a per-turn driver that, across repeated alarm
// wake-ups, produces human-plausibly-timed roll/keep/score decisions
// for computer-controlled seats.
package ai

import (
	"errors"
	"time"
)

// BrainKind selects the decision strategy for a profile: a sum type
// switched over in decide (see brain.go) rather than a class hierarchy.
type BrainKind string

const (
	BrainOptimal       BrainKind = "optimal"
	BrainProbabilistic BrainKind = "probabilistic"
	BrainPersonality   BrainKind = "personality"
	BrainRandom        BrainKind = "random"
)

var ErrUnknownProfile = errors.New("ai: unknown profile id")

// Traits bias a personality brain's choices. Each is in [0,1] unless
// noted otherwise.
type Traits struct {
	RiskTolerance       float64
	UpperSectionFocus   float64
	OvervaluesFullHouse bool
	AvoidsEarlyZeros    bool
	AlwaysUsesAllRolls  bool
	ChatFrequency       float64
}

// TimingRange is a half-open millisecond range [MinMS, MaxMS) sampled uniformly, then
// adjusted by modifiers.
type TimingRange struct {
	MinMS int
	MaxMS int
}

// Timing holds the per-decision-kind delay ranges and modifiers used to
// compute the next alarm delay.
type Timing struct {
	RollDecision  TimingRange
	KeepDecision  TimingRange
	ScoreDecision TimingRange

	FasterWhenWinning  float64 // multiplier applied to the sampled delay, <1 speeds up
	SlowerFinalRounds  float64 // multiplier applied from round 11 on, >1 slows down
	HesitationRange    TimingRange
	HesitationEVThresh float64 // extra hesitation applied only above this EV gap
}

// Profile is a named AI personality: its brain, skill, traits and timing.
type Profile struct {
	ID          string
	DisplayName string
	AvatarSeed  string
	Brain       BrainKind
	SkillLevel  float64
	Traits      Traits
	Timing      Timing
}

// registry is the built-in table of selectable AI profiles. It is a
// plain read-only map; nothing here is ever mutated after init.
var registry = map[string]Profile{
	"carmen": {
		ID:          "carmen",
		DisplayName: "Carmen",
		AvatarSeed:  "carmen",
		Brain:       BrainPersonality,
		SkillLevel:  0.8,
		Traits: Traits{
			RiskTolerance:      0.65,
			UpperSectionFocus:  0.4,
			AvoidsEarlyZeros:   true,
			AlwaysUsesAllRolls: false,
			ChatFrequency:      0.3,
		},
		Timing: Timing{
			RollDecision:       TimingRange{MinMS: 600, MaxMS: 1400},
			KeepDecision:       TimingRange{MinMS: 500, MaxMS: 1200},
			ScoreDecision:      TimingRange{MinMS: 800, MaxMS: 1800},
			FasterWhenWinning:  0.85,
			SlowerFinalRounds:  1.2,
			HesitationRange:    TimingRange{MinMS: 400, MaxMS: 1000},
			HesitationEVThresh: 8,
		},
	},
	"otto": {
		ID:          "otto",
		DisplayName: "Otto",
		AvatarSeed:  "otto",
		Brain:       BrainOptimal,
		SkillLevel:  1.0,
		Traits: Traits{
			UpperSectionFocus: 0.5,
		},
		Timing: Timing{
			RollDecision:       TimingRange{MinMS: 400, MaxMS: 900},
			KeepDecision:       TimingRange{MinMS: 400, MaxMS: 800},
			ScoreDecision:      TimingRange{MinMS: 500, MaxMS: 1000},
			FasterWhenWinning:  1.0,
			SlowerFinalRounds:  1.0,
			HesitationRange:    TimingRange{MinMS: 200, MaxMS: 500},
			HesitationEVThresh: 15,
		},
	},
	"dice-dan": {
		ID:          "dice-dan",
		DisplayName: "Dice Dan",
		AvatarSeed:  "dice-dan",
		Brain:       BrainRandom,
		SkillLevel:  0.2,
		Traits:      Traits{},
		Timing: Timing{
			RollDecision:      TimingRange{MinMS: 300, MaxMS: 2500},
			KeepDecision:      TimingRange{MinMS: 300, MaxMS: 2500},
			ScoreDecision:     TimingRange{MinMS: 300, MaxMS: 2500},
			FasterWhenWinning: 1.0,
			SlowerFinalRounds: 1.0,
			HesitationRange:   TimingRange{MinMS: 0, MaxMS: 0},
		},
	},
	"prudence": {
		ID:          "prudence",
		DisplayName: "Prudence",
		AvatarSeed:  "prudence",
		Brain:       BrainProbabilistic,
		SkillLevel:  0.6,
		Traits: Traits{
			RiskTolerance:     0.25,
			UpperSectionFocus: 0.7,
			AvoidsEarlyZeros:  true,
		},
		Timing: Timing{
			RollDecision:       TimingRange{MinMS: 700, MaxMS: 1600},
			KeepDecision:       TimingRange{MinMS: 600, MaxMS: 1400},
			ScoreDecision:      TimingRange{MinMS: 900, MaxMS: 2000},
			FasterWhenWinning:  0.9,
			SlowerFinalRounds:  1.3,
			HesitationRange:    TimingRange{MinMS: 500, MaxMS: 1200},
			HesitationEVThresh: 6,
		},
	},
}

// LookupProfile returns the named profile or ErrUnknownProfile. Profile
// validity is the AI registry's concern, not the command validator's
// (internal/validator deliberately does not check this).
func LookupProfile(id string) (Profile, error) {
	p, ok := registry[id]
	if !ok {
		return Profile{}, ErrUnknownProfile
	}
	return p, nil
}

// KnownProfileIDs lists every registered profile id, for lobby/room
// listings of selectable opponents.
func KnownProfileIDs() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	return ids
}

// sample draws a uniform millisecond duration from r. Zero-width ranges
// return MinMS without consulting rnd.
func (r TimingRange) sample(rnd func() float64) time.Duration {
	if r.MaxMS <= r.MinMS {
		return time.Duration(r.MinMS) * time.Millisecond
	}
	span := r.MaxMS - r.MinMS
	return time.Duration(r.MinMS+int(rnd()*float64(span))) * time.Millisecond
}

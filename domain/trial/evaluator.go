package trial

import (
	"fmt"
	"math/rand"

	"banditlab/domain/core"
	"banditlab/domain/schedule"
)

// DefaultForceThreshold is the trials-since-salient count at which the
// forced policy guarantees the next win salient feedback.
const DefaultForceThreshold = 10

// Evaluator owns the session counters: the schedule cursor, the
// trials-since-salient counter and the running win count. Exactly one of
// Evaluate or Missed is called per presented trial. It is not safe for
// concurrent use; the trial loop is single-threaded.
type Evaluator struct {
	policy     SaliencePolicy
	forceAfter int
	sched      schedule.Schedule
	rng        *rand.Rand

	cursor       int // last consumed schedule index, starts at -1
	sinceSalient int
	wins         int
}

// NewEvaluator builds an evaluator over the given schedule. The rng
// stream is only drawn from when the cursor outruns the schedule and a
// fresh block has to be appended. forceAfter <= 0 selects the default
// threshold; it is ignored under the schedule-driven policy.
func NewEvaluator(sched schedule.Schedule, policy SaliencePolicy, forceAfter int, rng *rand.Rand) (*Evaluator, error) {
	if !policy.Valid() {
		return nil, core.NewValidationError("salience policy", fmt.Sprintf("unknown policy %q", policy))
	}
	if err := sched.Validate(); err != nil {
		return nil, err
	}
	if forceAfter <= 0 {
		forceAfter = DefaultForceThreshold
	}
	return &Evaluator{
		policy:     policy,
		forceAfter: forceAfter,
		sched:      sched,
		rng:        rng,
		cursor:     -1,
	}, nil
}

// Missed records a trial where no response arrived before the deadline.
// The schedule cursor does not move; missed trials cannot consume
// reinforcement.
func (e *Evaluator) Missed() Outcome {
	e.sinceSalient++
	return Outcome{Reward: 0, Condition: ConditionMissed}
}

// Evaluate resolves a responded-to trial: the reward is the chosen
// arm's pre-drawn payoff, and winning trials consume the next schedule
// flag to decide feedback salience.
func (e *Evaluator) Evaluate(arm int, payoff1, payoff2 int) (Outcome, error) {
	if arm != ArmLeft && arm != ArmRight {
		return Outcome{}, fmt.Errorf("%w: %d", core.ErrInvalidArm, arm)
	}
	e.sinceSalient++

	reward := payoff1
	if arm == ArmRight {
		reward = payoff2
	}
	if reward == 0 {
		return Outcome{Reward: 0, Condition: ConditionNonSalient}, nil
	}

	e.wins++
	e.cursor++
	if e.cursor >= len(e.sched) {
		e.sched.Grow(e.rng)
	}
	return Outcome{Reward: 1, Condition: e.feedbackCondition()}, nil
}

func (e *Evaluator) feedbackCondition() Condition {
	switch e.policy {
	case PolicyForcedAfterN:
		if e.sinceSalient >= e.forceAfter || e.sched[e.cursor] == 1 {
			e.sinceSalient = 0
			return ConditionSalient
		}
	default:
		if e.sched[e.cursor] == 1 {
			return ConditionSalient
		}
	}
	return ConditionNonSalient
}

// Wins returns the number of winning trials since the last reset.
func (e *Evaluator) Wins() int {
	return e.wins
}

// ResetWins zeroes the win count between the practice and paid phases.
// The schedule cursor is deliberately left alone: reinforcement
// consumed during practice stays consumed.
func (e *Evaluator) ResetWins() {
	e.wins = 0
}

package trial

import (
	"banditlab/domain/core"
)

// Mode separates the warm-up phase from the paid phase
type Mode string

const (
	ModePractice Mode = "practice"
	ModeMain     Mode = "main"
)

// Condition is the feedback class a trial resolved to
type Condition string

const (
	ConditionNonSalient Condition = "non-salient"
	ConditionSalient    Condition = "salient"
	ConditionMissed     Condition = "missed"
)

// Code returns the numeric encoding used in the trial log:
// 0 non-salient, 1 salient, 2 missed.
func (c Condition) Code() int {
	switch c {
	case ConditionSalient:
		return 1
	case ConditionMissed:
		return 2
	default:
		return 0
	}
}

// Arms of the bandit. The mapping to screen side is randomized per
// trial and never logged; the arm index is what the data carries.
const (
	ArmLeft  = 0
	ArmRight = 1
)

// Choice is a participant's response on one trial. Missed deadlines
// produce a Choice with Made=false and no arm or latency.
type Choice struct {
	Made     bool
	Arm      int
	Reaction core.ReactionTime
}

// Outcome is what the evaluator decided for one responded-to or missed
// trial.
type Outcome struct {
	Reward    int
	Condition Condition
}

// Record is the immutable per-trial log entry, one per presented trial.
type Record struct {
	Mode     Mode
	Trial    int // 1-based within its phase
	Choice   Choice
	Outcome  Outcome
	Prob1    float64
	Prob2    float64
	Payoff1  int
	Payoff2  int
	LoggedAt core.Timestamp
}

// SaliencePolicy selects how winning trials are assigned salient
// feedback.
type SaliencePolicy string

const (
	// PolicyScheduleDriven flags a win salient exactly when the
	// reinforcement schedule says so.
	PolicyScheduleDriven SaliencePolicy = "schedule_driven"
	// PolicyForcedAfterN additionally forces salient feedback once the
	// trials-since-salient counter reaches the forcing threshold.
	PolicyForcedAfterN SaliencePolicy = "forced_after_n"
)

// Valid reports whether p names a known policy.
func (p SaliencePolicy) Valid() bool {
	return p == PolicyScheduleDriven || p == PolicyForcedAfterN
}

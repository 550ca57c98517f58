package ports

import (
	"context"
	"time"

	"banditlab/domain/core"
	"banditlab/domain/trial"
)

// Side is a screen position. The arm-to-side mapping is randomized per
// trial by the session runner; adapters only ever see sides.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

// Layout fixes the arm-to-side mapping for one trial.
type Layout struct {
	ArmOnLeft int
}

// ArmOnSide resolves the arm shown at the given side.
func (l Layout) ArmOnSide(s Side) int {
	if s == SideLeft {
		return l.ArmOnLeft
	}
	return 1 - l.ArmOnLeft
}

// SideOfArm resolves where the given arm is shown.
func (l Layout) SideOfArm(arm int) Side {
	if arm == l.ArmOnLeft {
		return SideLeft
	}
	return SideRight
}

// Feedback is what the presenter shows after a resolved trial.
type Feedback struct {
	Condition trial.Condition
	Text      string
}

// InputSourcePort delivers participant responses. Implementations block;
// the trial loop owns all timing.
type InputSourcePort interface {
	// AwaitChoice blocks until a left/right response arrives or the
	// timeout passes. Expiry is reported as core.ErrNoResponse and is a
	// valid trial outcome, not a failure.
	AwaitChoice(ctx context.Context, timeout time.Duration) (Side, core.ReactionTime, error)

	// AwaitContinue blocks until the participant advances past an
	// instruction page.
	AwaitContinue(ctx context.Context) error
}

// StimulusPresenterPort renders the experiment's screens. Calls that
// take a duration block for it; everything else returns once drawn.
type StimulusPresenterPort interface {
	ShowInstruction(ctx context.Context, body, footer string) error
	ShowChoice(ctx context.Context, layout Layout) error
	ShowFeedback(ctx context.Context, layout Layout, chosen Side, fb Feedback, d time.Duration) error
	ShowMissed(ctx context.Context, text string, d time.Duration) error
	ShowFixation(ctx context.Context, d time.Duration) error
	ShowFinal(ctx context.Context, text string, d time.Duration) error
	Close() error
}

// AudioChannelPort drives the background track and the salient cue.
// Volumes are 0..1.
type AudioChannelPort interface {
	StartBackground(ctx context.Context, volume float64) error
	SetBackgroundVolume(volume float64) error
	// FadeBackgroundVolume ramps to target over the given duration in
	// discrete steps.
	FadeBackgroundVolume(target float64, d time.Duration, steps int) error
	PlayCue(ctx context.Context) error
	// CueBusy reports whether the salient cue is still sounding; the
	// trial loop polls it before fading the background back up.
	CueBusy() bool
	Close() error
}

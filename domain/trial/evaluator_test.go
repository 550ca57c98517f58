package trial

import (
	"errors"
	"math/rand"
	"testing"

	"banditlab/domain/core"
	"banditlab/domain/schedule"
)

func newTestEvaluator(t *testing.T, sched schedule.Schedule, policy SaliencePolicy, forceAfter int) *Evaluator {
	t.Helper()
	e, err := NewEvaluator(sched, policy, forceAfter, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	return e
}

func TestNewEvaluatorRejectsUnknownPolicy(t *testing.T) {
	_, err := NewEvaluator(schedule.Schedule{1, 0, 0, 0}, SaliencePolicy("surprise"), 0, rand.New(rand.NewSource(1)))
	if err == nil {
		t.Fatal("expected error for unknown policy")
	}
}

func TestNewEvaluatorRejectsEmptySchedule(t *testing.T) {
	_, err := NewEvaluator(nil, PolicyScheduleDriven, 0, rand.New(rand.NewSource(1)))
	if !errors.Is(err, core.ErrScheduleNotFound) {
		t.Fatalf("expected ErrScheduleNotFound, got %v", err)
	}
}

func TestEvaluateLoss(t *testing.T) {
	e := newTestEvaluator(t, schedule.Schedule{1, 1, 1, 1}, PolicyScheduleDriven, 0)

	out, err := e.Evaluate(ArmLeft, 0, 1)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if out.Reward != 0 || out.Condition != ConditionNonSalient {
		t.Fatalf("loss should be non-salient with reward 0, got %+v", out)
	}
	if e.cursor != -1 {
		t.Fatalf("loss must not advance the cursor, cursor=%d", e.cursor)
	}
	if e.Wins() != 0 {
		t.Fatalf("loss must not count as win, wins=%d", e.Wins())
	}
}

func TestEvaluateWinFollowsSchedule(t *testing.T) {
	// First win consumes flag 1, second win flag 0.
	e := newTestEvaluator(t, schedule.Schedule{1, 0, 0, 0}, PolicyScheduleDriven, 0)

	out, err := e.Evaluate(ArmRight, 0, 1)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if out.Reward != 1 || out.Condition != ConditionSalient {
		t.Fatalf("first win should be salient, got %+v", out)
	}

	out, err = e.Evaluate(ArmLeft, 1, 0)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if out.Reward != 1 || out.Condition != ConditionNonSalient {
		t.Fatalf("second win should be non-salient, got %+v", out)
	}
	if e.Wins() != 2 {
		t.Fatalf("expected 2 wins, got %d", e.Wins())
	}
}

func TestMissed(t *testing.T) {
	e := newTestEvaluator(t, schedule.Schedule{1, 0, 0, 0}, PolicyScheduleDriven, 0)

	out := e.Missed()
	if out.Reward != 0 || out.Condition != ConditionMissed {
		t.Fatalf("missed trial should yield reward 0 and missed condition, got %+v", out)
	}
	if e.cursor != -1 {
		t.Fatalf("missed trial must not advance the cursor, cursor=%d", e.cursor)
	}
	if e.sinceSalient != 1 {
		t.Fatalf("missed trial must advance the salience counter, got %d", e.sinceSalient)
	}
}

func TestEvaluateRejectsBadArm(t *testing.T) {
	e := newTestEvaluator(t, schedule.Schedule{1, 0, 0, 0}, PolicyScheduleDriven, 0)
	if _, err := e.Evaluate(2, 0, 1); !errors.Is(err, core.ErrInvalidArm) {
		t.Fatalf("expected ErrInvalidArm, got %v", err)
	}
}

func TestForcedPolicyTriggersOnCounter(t *testing.T) {
	// All-zero flags: only the counter can force salience.
	sched := make(schedule.Schedule, 0, schedule.BlockSize*3)
	for i := 0; i < 3; i++ {
		sched = append(sched, 0, 0, 0, 1)
	}
	e := newTestEvaluator(t, sched, PolicyForcedAfterN, 3)

	// Two losses push the counter to 2.
	for i := 0; i < 2; i++ {
		if _, err := e.Evaluate(ArmLeft, 0, 0); err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
	}

	// Third trial reaches the threshold: a win is forced salient even
	// though the consumed flag is 0.
	out, err := e.Evaluate(ArmLeft, 1, 0)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if out.Condition != ConditionSalient {
		t.Fatalf("expected forced salient, got %+v", out)
	}
	if e.sinceSalient != 0 {
		t.Fatalf("salient feedback must reset the counter, got %d", e.sinceSalient)
	}
}

func TestForcedPolicyResetsOnScheduledSalient(t *testing.T) {
	e := newTestEvaluator(t, schedule.Schedule{1, 0, 0, 0}, PolicyForcedAfterN, 10)

	out, err := e.Evaluate(ArmLeft, 1, 0)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if out.Condition != ConditionSalient {
		t.Fatalf("expected scheduled salient, got %+v", out)
	}
	if e.sinceSalient != 0 {
		t.Fatalf("scheduled salient must also reset the counter, got %d", e.sinceSalient)
	}
}

func TestScheduleDrivenIgnoresCounter(t *testing.T) {
	e := newTestEvaluator(t, schedule.Schedule{0, 0, 0, 1}, PolicyScheduleDriven, 2)

	// Far past any forcing threshold.
	for i := 0; i < 20; i++ {
		e.Missed()
	}
	out, err := e.Evaluate(ArmLeft, 1, 0)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if out.Condition != ConditionNonSalient {
		t.Fatalf("schedule-driven policy must ignore the counter, got %+v", out)
	}
}

func TestWinStreakOutrunsSchedule(t *testing.T) {
	e := newTestEvaluator(t, schedule.Schedule{1, 0, 0, 0}, PolicyScheduleDriven, 0)

	salient := 0
	for i := 0; i < 40; i++ {
		out, err := e.Evaluate(ArmLeft, 1, 0)
		if err != nil {
			t.Fatalf("Evaluate at win %d: %v", i, err)
		}
		if out.Condition == ConditionSalient {
			salient++
		}
	}
	if e.Wins() != 40 {
		t.Fatalf("expected 40 wins, got %d", e.Wins())
	}
	// Forty wins consume ten blocks: exactly one salient flag each.
	if salient != 10 {
		t.Fatalf("expected 10 salient trials over 40 wins, got %d", salient)
	}
}

func TestResetWins(t *testing.T) {
	e := newTestEvaluator(t, schedule.Schedule{0, 0, 0, 1}, PolicyScheduleDriven, 0)

	if _, err := e.Evaluate(ArmLeft, 1, 0); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if e.Wins() != 1 {
		t.Fatalf("expected 1 win, got %d", e.Wins())
	}
	cursorBefore := e.cursor

	e.ResetWins()
	if e.Wins() != 0 {
		t.Fatalf("expected 0 wins after reset, got %d", e.Wins())
	}
	if e.cursor != cursorBefore {
		t.Fatal("ResetWins must not move the schedule cursor")
	}
}

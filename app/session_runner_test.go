package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"banditlab/domain/core"
	"banditlab/domain/quest"
	"banditlab/domain/schedule"
	"banditlab/domain/trial"
	"banditlab/domain/walk"
	"banditlab/internal/config"
	"banditlab/internal/testkit"
	"banditlab/ports"
)

const testParticipant = core.ParticipantID("vp001")

func runnerConfig(practiceTrials, mainTrials int) *config.Config {
	return &config.Config{
		Task: config.TaskConfig{
			PracticeTrials: practiceTrials,
			MainTrials:     mainTrials,
			ITIMean:        1.0,
			ITISD:          0.5,
			ITIMin:         0.5,
			MaxResponse:    5 * time.Second,
			FeedbackFor:    3 * time.Second,
			MissedFor:      2 * time.Second,
			FinalFor:       10 * time.Second,
			BonusMaxEUR:    3.0,
			Policy:         trial.PolicyScheduleDriven,
			ForceAfter:     10,
			Seed:           7,
		},
		Audio: config.AudioConfig{
			BackgroundVolume: 0.8,
			SalientVolume:    0.2,
			FadeDuration:     500 * time.Millisecond,
			FadeSteps:        20,
			CueDuration:      time.Second,
		},
	}
}

// winningSides replays the layout stream the runner will draw from and
// returns, per trial, the side showing the always-winning arm.
func winningSides(t *testing.T, rngPort ports.RNGPort, cfg *config.Config, n int) []ports.Side {
	t.Helper()
	layoutRNG, err := rngPort.SessionStream(context.Background(), string(testParticipant), "layout", cfg.Task.Seed)
	if err != nil {
		t.Fatalf("SessionStream: %v", err)
	}
	sides := make([]ports.Side, n)
	for i := range sides {
		layout := ports.Layout{ArmOnLeft: trial.ArmLeft}
		if layoutRNG.Float64() <= 0.5 {
			layout.ArmOnLeft = trial.ArmRight
		}
		sides[i] = layout.SideOfArm(trial.ArmLeft)
	}
	return sides
}

type sessionFixture struct {
	kit       *testkit.TestKit
	input     *testkit.ScriptedInput
	presenter *testkit.RecordingPresenter
	audio     *testkit.SilentAudio
	runner    *SessionRunner
}

func newSessionFixture(t *testing.T, cfg *config.Config, script []testkit.ScriptedResponse, sched schedule.Schedule, practice, main walk.Table, archive ports.SessionArchivePort) *sessionFixture {
	t.Helper()
	f := &sessionFixture{
		kit:       testkit.NewTestKit(),
		input:     testkit.NewScriptedInput(script...),
		presenter: testkit.NewRecordingPresenter(),
		audio:     testkit.NewSilentAudio(),
	}
	runner, err := NewSessionRunner(SessionRunnerDeps{
		Config:    cfg,
		Texts:     config.DefaultTexts(),
		Input:     f.input,
		Presenter: f.presenter,
		Audio:     f.audio,
		Writer:    f.kit.TrialWriter(testParticipant),
		Schedules: testkit.NewMemoryScheduleStore(sched),
		Walks:     testkit.NewMemoryWalkStore(practice, main),
		RNG:       f.kit.RNGAdapter(),
		Archive:   archive,
	})
	if err != nil {
		t.Fatalf("NewSessionRunner: %v", err)
	}
	f.runner = runner
	return f
}

func TestSessionRunnerCompletesSession(t *testing.T) {
	cfg := runnerConfig(2, 4)
	archive := testkit.NewMemoryArchive()

	// Pick the winning arm on every trial, wherever it is shown.
	var script []testkit.ScriptedResponse
	for _, side := range winningSides(t, &testkit.RNGAdapter{}, cfg, 6) {
		script = append(script, testkit.Respond(side, 300*time.Millisecond))
	}
	f := newSessionFixture(t, cfg, script, testkit.FixtureSchedule(3, 1), testkit.AlwaysWinTable(2), testkit.AlwaysWinTable(4), archive)

	session, err := f.runner.Run(context.Background(), testParticipant)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Practice wins never pay; only the four paid-phase wins count.
	if session.Wins != 4 {
		t.Fatalf("expected 4 paid wins, got %d", session.Wins)
	}
	if session.MaxWins != 4 {
		t.Fatalf("expected oracle max of 4, got %d", session.MaxWins)
	}
	if session.Bonus != 3.0 {
		t.Fatalf("perfect session should earn the full bonus, got %.2f", session.Bonus)
	}
	if session.Participant != testParticipant {
		t.Fatalf("session participant = %q", session.Participant)
	}
	if session.ScheduleHash == "" || session.WalkHash == "" {
		t.Fatal("session must record the consumed artifact hashes")
	}
	if session.FinishedAt.Before(session.StartedAt) {
		t.Fatal("session finished before it started")
	}

	records, err := f.kit.TrialReader().ReadTrials(context.Background(), testParticipant)
	if err != nil {
		t.Fatalf("ReadTrials: %v", err)
	}
	if len(records) != 6 {
		t.Fatalf("expected 6 logged trials, got %d", len(records))
	}
	for i, want := range []struct {
		mode trial.Mode
		num  int
	}{
		{trial.ModePractice, 1}, {trial.ModePractice, 2},
		{trial.ModeMain, 1}, {trial.ModeMain, 2}, {trial.ModeMain, 3}, {trial.ModeMain, 4},
	} {
		if records[i].Mode != want.mode || records[i].Trial != want.num {
			t.Fatalf("record %d: got %s/%d, want %s/%d", i, records[i].Mode, records[i].Trial, want.mode, want.num)
		}
		if !records[i].Choice.Made || records[i].Outcome.Reward != 1 {
			t.Fatalf("record %d: expected a rewarded choice, got %+v", i, records[i])
		}
	}

	if got := len(f.presenter.EventsOfKind("instruction")); got != 6 {
		t.Fatalf("expected 6 instruction pages (5 pre-practice + 1 post), got %d", got)
	}
	if got := len(f.presenter.EventsOfKind("choice")); got != 6 {
		t.Fatalf("expected 6 choice screens, got %d", got)
	}
	if got := len(f.presenter.EventsOfKind("feedback")); got != 6 {
		t.Fatalf("expected 6 feedback screens, got %d", got)
	}
	if got := len(f.presenter.EventsOfKind("fixation")); got != 6 {
		t.Fatalf("expected 6 fixation screens, got %d", got)
	}
	finals := f.presenter.EventsOfKind("final")
	if len(finals) != 1 {
		t.Fatalf("expected 1 final screen, got %d", len(finals))
	}
	if !strings.Contains(finals[0].Text, "4 Gewinne") || !strings.Contains(finals[0].Text, "3.00 Euro") {
		t.Fatalf("final screen text = %q", finals[0].Text)
	}

	if !f.audio.Started() {
		t.Fatal("background audio never started")
	}
	if f.input.Remaining() != 0 {
		t.Fatalf("%d scripted responses left unconsumed", f.input.Remaining())
	}

	sessions := archive.Sessions()
	if len(sessions) != 1 {
		t.Fatalf("expected 1 archived session, got %d", len(sessions))
	}
	if got := len(archive.Trials(sessions[0].ID)); got != 6 {
		t.Fatalf("expected 6 archived trials, got %d", got)
	}
}

func TestSessionRunnerLogsMissedTrial(t *testing.T) {
	cfg := runnerConfig(2, 4)
	sides := winningSides(t, &testkit.RNGAdapter{}, cfg, 6)

	script := make([]testkit.ScriptedResponse, 6)
	for i, side := range sides {
		script[i] = testkit.Respond(side, 250*time.Millisecond)
	}
	// Second paid trial lapses.
	script[3] = testkit.Miss()

	f := newSessionFixture(t, cfg, script, testkit.FixtureSchedule(3, 1), testkit.AlwaysWinTable(2), testkit.AlwaysWinTable(4), nil)

	session, err := f.runner.Run(context.Background(), testParticipant)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if session.Wins != 3 {
		t.Fatalf("expected 3 paid wins, got %d", session.Wins)
	}
	// 3 of 4 oracle wins: 2.25 EUR raw, snapped half-to-even down to 2.
	if session.Bonus != 2.0 {
		t.Fatalf("expected 2.00 EUR bonus, got %.2f", session.Bonus)
	}

	records, err := f.kit.TrialReader().ReadTrials(context.Background(), testParticipant)
	if err != nil {
		t.Fatalf("ReadTrials: %v", err)
	}
	missed := records[3]
	if missed.Mode != trial.ModeMain || missed.Trial != 2 {
		t.Fatalf("missed row landed at %s/%d", missed.Mode, missed.Trial)
	}
	if missed.Choice.Made || missed.Choice.Reaction != 0 {
		t.Fatalf("missed row must have no choice, got %+v", missed.Choice)
	}
	if missed.Outcome.Condition != trial.ConditionMissed || missed.Outcome.Reward != 0 {
		t.Fatalf("missed row outcome = %+v", missed.Outcome)
	}

	missedScreens := f.presenter.EventsOfKind("missed")
	if len(missedScreens) != 1 {
		t.Fatalf("expected 1 missed screen, got %d", len(missedScreens))
	}
	if missedScreens[0].Text != "Zu spät" {
		t.Fatalf("missed screen text = %q", missedScreens[0].Text)
	}
	if got := len(f.presenter.EventsOfKind("feedback")); got != 5 {
		t.Fatalf("missed trial must not show feedback, got %d feedback screens", got)
	}
	// The fixation still follows a missed trial.
	if got := len(f.presenter.EventsOfKind("fixation")); got != 6 {
		t.Fatalf("expected 6 fixation screens, got %d", got)
	}
}

func TestSessionRunnerSalientFeedbackDrivesAudio(t *testing.T) {
	cfg := runnerConfig(0, 4)
	// One block; only the first win is flagged salient.
	sched := schedule.Schedule{1, 0, 0, 0}

	var script []testkit.ScriptedResponse
	for _, side := range winningSides(t, &testkit.RNGAdapter{}, cfg, 4) {
		script = append(script, testkit.Respond(side, 200*time.Millisecond))
	}

	f := newSessionFixture(t, cfg, script, sched, testkit.AlwaysWinTable(1), testkit.AlwaysWinTable(4), nil)

	if _, err := f.runner.Run(context.Background(), testParticipant); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := f.audio.Cues(); got != 1 {
		t.Fatalf("expected exactly 1 salient cue, got %d", got)
	}
	// Start at background level, duck for the cue, fade back up.
	wantVolumes := []float64{0.8, 0.2, 0.8}
	volumes := f.audio.Volumes()
	if len(volumes) != len(wantVolumes) {
		t.Fatalf("volume moves = %v, want %v", volumes, wantVolumes)
	}
	for i := range wantVolumes {
		if volumes[i] != wantVolumes[i] {
			t.Fatalf("volume moves = %v, want %v", volumes, wantVolumes)
		}
	}

	feedbacks := f.presenter.EventsOfKind("feedback")
	if len(feedbacks) != 4 {
		t.Fatalf("expected 4 feedback screens, got %d", len(feedbacks))
	}
	if feedbacks[0].Condition != trial.ConditionSalient {
		t.Fatalf("first win should be salient, got %v", feedbacks[0].Condition)
	}
	for i, fb := range feedbacks[1:] {
		if fb.Condition != trial.ConditionNonSalient {
			t.Fatalf("win %d should be non-salient, got %v", i+2, fb.Condition)
		}
	}
}

func TestSessionRunnerFailsWithoutSchedule(t *testing.T) {
	cfg := runnerConfig(1, 1)
	f := newSessionFixture(t, cfg, nil, nil, testkit.AlwaysWinTable(1), testkit.AlwaysWinTable(1), nil)

	_, err := f.runner.Run(context.Background(), testParticipant)
	if !errors.Is(err, core.ErrScheduleNotFound) {
		t.Fatalf("expected ErrScheduleNotFound, got %v", err)
	}
}

func TestSessionRunnerRejectsShortWalk(t *testing.T) {
	cfg := runnerConfig(2, 4)
	f := newSessionFixture(t, cfg, nil, testkit.FixtureSchedule(3, 1), testkit.AlwaysWinTable(1), testkit.AlwaysWinTable(4), nil)

	_, err := f.runner.Run(context.Background(), testParticipant)
	if err == nil || !strings.Contains(err.Error(), "practice walk") {
		t.Fatalf("expected practice walk length error, got %v", err)
	}
}

type failingArchive struct{}

func (failingArchive) SaveSession(context.Context, trial.Session) error {
	return fmt.Errorf("archive down")
}

func (failingArchive) SaveTrials(context.Context, core.SessionID, []trial.Record) error {
	return fmt.Errorf("archive down")
}

func (failingArchive) SaveQuestionnaire(context.Context, core.ParticipantID, *quest.ResponseSet, quest.Scores) error {
	return fmt.Errorf("archive down")
}

func TestSessionRunnerSurvivesArchiveFailure(t *testing.T) {
	cfg := runnerConfig(0, 1)
	var script []testkit.ScriptedResponse
	for _, side := range winningSides(t, &testkit.RNGAdapter{}, cfg, 1) {
		script = append(script, testkit.Respond(side, 200*time.Millisecond))
	}

	f := newSessionFixture(t, cfg, script, schedule.Schedule{0, 0, 0, 1}, testkit.AlwaysWinTable(1), testkit.AlwaysWinTable(1), failingArchive{})

	session, err := f.runner.Run(context.Background(), testParticipant)
	if err != nil {
		t.Fatalf("archive failure must not fail the session: %v", err)
	}
	if session.Wins != 1 {
		t.Fatalf("expected 1 win, got %d", session.Wins)
	}
}

func TestNewSessionRunnerValidatesDeps(t *testing.T) {
	cfg := runnerConfig(1, 1)
	kit := testkit.NewTestKit()

	deps := SessionRunnerDeps{
		Config:    cfg,
		Texts:     config.DefaultTexts(),
		Input:     testkit.NewScriptedInput(),
		Presenter: testkit.NewRecordingPresenter(),
		Audio:     testkit.NewSilentAudio(),
		Writer:    kit.TrialWriter(testParticipant),
		Schedules: testkit.NewMemoryScheduleStore(nil),
		Walks:     testkit.NewMemoryWalkStore(nil, nil),
		RNG:       kit.RNGAdapter(),
	}

	if _, err := NewSessionRunner(deps); err != nil {
		t.Fatalf("complete deps rejected: %v", err)
	}

	broken := deps
	broken.Config = nil
	if _, err := NewSessionRunner(broken); err == nil {
		t.Fatal("expected error for missing config")
	}

	broken = deps
	broken.Input = nil
	if _, err := NewSessionRunner(broken); err == nil {
		t.Fatal("expected error for missing input")
	}

	broken = deps
	broken.RNG = nil
	if _, err := NewSessionRunner(broken); err == nil {
		t.Fatal("expected error for missing rng")
	}
}

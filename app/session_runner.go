package app

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"banditlab/domain/core"
	"banditlab/domain/trial"
	"banditlab/domain/walk"
	"banditlab/internal/config"
	"banditlab/ports"
)

// cuePollInterval is how often the runner checks whether the salient cue
// is still sounding before restoring the background volume.
const cuePollInterval = 10 * time.Millisecond

// SessionRunnerDeps carries everything a session needs. Archive is
// optional; all other ports are required.
type SessionRunnerDeps struct {
	Config    *config.Config
	Texts     config.Texts
	Input     ports.InputSourcePort
	Presenter ports.StimulusPresenterPort
	Audio     ports.AudioChannelPort
	Writer    ports.TrialWriterPort
	Schedules ports.ScheduleStorePort
	Walks     ports.WalkStorePort
	RNG       ports.RNGPort
	Archive   ports.SessionArchivePort
}

// SessionRunner owns the trial loop: instructions, practice phase, paid
// phase, closing screen. It is single-threaded and blocking; all timing
// decisions live here, adapters only render and collect.
type SessionRunner struct {
	cfg       *config.Config
	texts     config.Texts
	input     ports.InputSourcePort
	presenter ports.StimulusPresenterPort
	audio     ports.AudioChannelPort
	writer    ports.TrialWriterPort
	schedules ports.ScheduleStorePort
	walks     ports.WalkStorePort
	rng       ports.RNGPort
	archive   ports.SessionArchivePort
}

// NewSessionRunner creates a session runner.
func NewSessionRunner(deps SessionRunnerDeps) (*SessionRunner, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("session runner requires a config")
	}
	if deps.Input == nil || deps.Presenter == nil || deps.Audio == nil {
		return nil, fmt.Errorf("session runner requires input, presenter and audio ports")
	}
	if deps.Writer == nil || deps.Schedules == nil || deps.Walks == nil || deps.RNG == nil {
		return nil, fmt.Errorf("session runner requires writer, schedule, walk and rng ports")
	}
	return &SessionRunner{
		cfg:       deps.Config,
		texts:     deps.Texts,
		input:     deps.Input,
		presenter: deps.Presenter,
		audio:     deps.Audio,
		writer:    deps.Writer,
		schedules: deps.Schedules,
		walks:     deps.Walks,
		rng:       deps.RNG,
		archive:   deps.Archive,
	}, nil
}

// Run executes one complete session for the participant and returns its
// summary record. Trial rows are flushed as they happen, so rows already
// logged survive a failure partway through.
func (r *SessionRunner) Run(ctx context.Context, participantID core.ParticipantID) (*trial.Session, error) {
	sched, schedHash, err := r.schedules.LoadSchedule(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load reinforcement schedule: %w", err)
	}
	practiceTable, _, err := r.walks.LoadTable(ctx, trial.ModePractice)
	if err != nil {
		return nil, fmt.Errorf("failed to load practice walk: %w", err)
	}
	mainTable, walkHash, err := r.walks.LoadTable(ctx, trial.ModeMain)
	if err != nil {
		return nil, fmt.Errorf("failed to load main walk: %w", err)
	}
	if len(practiceTable) < r.cfg.Task.PracticeTrials {
		return nil, fmt.Errorf("practice walk has %d rows, need %d", len(practiceTable), r.cfg.Task.PracticeTrials)
	}
	if len(mainTable) < r.cfg.Task.MainTrials {
		return nil, fmt.Errorf("main walk has %d rows, need %d", len(mainTable), r.cfg.Task.MainTrials)
	}

	seed := r.cfg.Task.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	pid := string(participantID)
	growthRNG, err := r.rng.SessionStream(ctx, pid, "schedule-growth", seed)
	if err != nil {
		return nil, fmt.Errorf("failed to open schedule growth stream: %w", err)
	}
	layoutRNG, err := r.rng.SessionStream(ctx, pid, "layout", seed)
	if err != nil {
		return nil, fmt.Errorf("failed to open layout stream: %w", err)
	}
	itiRNG, err := r.rng.SessionStream(ctx, pid, "iti", seed)
	if err != nil {
		return nil, fmt.Errorf("failed to open iti stream: %w", err)
	}

	evaluator, err := trial.NewEvaluator(sched, r.cfg.Task.Policy, r.cfg.Task.ForceAfter, growthRNG)
	if err != nil {
		return nil, fmt.Errorf("failed to build outcome evaluator: %w", err)
	}

	session := &trial.Session{
		ID:           core.NewSessionID(),
		Participant:  participantID,
		Policy:       r.cfg.Task.Policy,
		StartedAt:    core.Now(),
		ScheduleHash: schedHash,
		WalkHash:     walkHash,
	}
	log.Printf("[Session] %s started for participant %s (policy %s)", session.ID, participantID, session.Policy)

	if err := r.audio.StartBackground(ctx, r.cfg.Audio.BackgroundVolume); err != nil {
		return nil, fmt.Errorf("failed to start background audio: %w", err)
	}

	var records []trial.Record

	for _, page := range r.texts.PrePractice {
		if err := r.showInstruction(ctx, page); err != nil {
			return nil, err
		}
	}

	for i := 0; i < r.cfg.Task.PracticeTrials; i++ {
		record, err := r.runTrial(ctx, trial.ModePractice, i, practiceTable[i], evaluator, layoutRNG, itiRNG)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	// Practice wins never count toward the bonus. The schedule cursor
	// stays where practice left it.
	evaluator.ResetWins()

	if err := r.showInstruction(ctx, r.texts.PostPractice); err != nil {
		return nil, err
	}

	for i := 0; i < r.cfg.Task.MainTrials; i++ {
		record, err := r.runTrial(ctx, trial.ModeMain, i, mainTable[i], evaluator, layoutRNG, itiRNG)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	session.Wins = evaluator.Wins()
	session.MaxWins = mainTable[:r.cfg.Task.MainTrials].MaxWins()
	session.Bonus = trial.Bonus(session.Wins, session.MaxWins, r.cfg.Task.BonusMaxEUR)
	session.FinishedAt = core.Now()

	final := fmt.Sprintf(r.texts.FinalFormat, session.Wins, session.Bonus)
	if err := r.presenter.ShowFinal(ctx, final, r.cfg.Task.FinalFor); err != nil {
		return nil, err
	}
	log.Printf("[Session] %s finished: %d wins of %d, bonus %.2f EUR", session.ID, session.Wins, session.MaxWins, session.Bonus)

	r.archiveSession(ctx, session, records)
	return session, nil
}

func (r *SessionRunner) showInstruction(ctx context.Context, page config.InstructionPage) error {
	if err := r.presenter.ShowInstruction(ctx, page.Body, page.Footer); err != nil {
		return err
	}
	return r.input.AwaitContinue(ctx)
}

// runTrial presents one trial end to end: choice screen, response
// window, outcome, feedback, log row, inter-trial fixation.
func (r *SessionRunner) runTrial(ctx context.Context, mode trial.Mode, num int, row walk.Row, evaluator *trial.Evaluator, layoutRNG, itiRNG *rand.Rand) (trial.Record, error) {
	layout := ports.Layout{ArmOnLeft: trial.ArmLeft}
	if layoutRNG.Float64() <= 0.5 {
		layout.ArmOnLeft = trial.ArmRight
	}

	if err := r.presenter.ShowChoice(ctx, layout); err != nil {
		return trial.Record{}, err
	}

	record := trial.Record{
		Mode:    mode,
		Trial:   num + 1,
		Prob1:   row.Prob1,
		Prob2:   row.Prob2,
		Payoff1: row.Payoff1,
		Payoff2: row.Payoff2,
	}

	side, reaction, err := r.input.AwaitChoice(ctx, r.cfg.Task.MaxResponse)
	switch {
	case err == nil:
	case core.IsNoResponse(err):
		record.Outcome = evaluator.Missed()
		if err := r.presenter.ShowMissed(ctx, r.texts.Missed, r.cfg.Task.MissedFor); err != nil {
			return trial.Record{}, err
		}
		return r.logAndRest(ctx, record, itiRNG)
	default:
		return trial.Record{}, err
	}

	arm := layout.ArmOnSide(side)
	record.Choice = trial.Choice{Made: true, Arm: arm, Reaction: reaction}

	outcome, err := evaluator.Evaluate(arm, row.Payoff1, row.Payoff2)
	if err != nil {
		return trial.Record{}, err
	}
	record.Outcome = outcome

	feedback := ports.Feedback{Condition: outcome.Condition, Text: r.texts.LossFeedback}
	if outcome.Reward == 1 {
		feedback.Text = r.texts.WinFeedback
	}
	if err := r.showFeedback(ctx, layout, side, feedback); err != nil {
		return trial.Record{}, err
	}
	return r.logAndRest(ctx, record, itiRNG)
}

// showFeedback renders the outcome. Salient feedback ducks the
// background track, sounds the cue, waits for it to end and fades the
// background back up.
func (r *SessionRunner) showFeedback(ctx context.Context, layout ports.Layout, chosen ports.Side, fb ports.Feedback) error {
	if fb.Condition != trial.ConditionSalient {
		return r.presenter.ShowFeedback(ctx, layout, chosen, fb, r.cfg.Task.FeedbackFor)
	}

	if err := r.audio.SetBackgroundVolume(r.cfg.Audio.SalientVolume); err != nil {
		return err
	}
	if err := r.audio.PlayCue(ctx); err != nil {
		return err
	}
	if err := r.presenter.ShowFeedback(ctx, layout, chosen, fb, r.cfg.Task.FeedbackFor); err != nil {
		return err
	}
	for r.audio.CueBusy() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cuePollInterval):
		}
	}
	return r.audio.FadeBackgroundVolume(r.cfg.Audio.BackgroundVolume, r.cfg.Audio.FadeDuration, r.cfg.Audio.FadeSteps)
}

// logAndRest appends the trial row, flushing it to storage, then shows
// the inter-trial fixation.
func (r *SessionRunner) logAndRest(ctx context.Context, record trial.Record, itiRNG *rand.Rand) (trial.Record, error) {
	record.LoggedAt = core.Now()
	if err := r.writer.Append(ctx, record); err != nil {
		return trial.Record{}, fmt.Errorf("failed to log trial %d: %w", record.Trial, err)
	}
	if err := r.presenter.ShowFixation(ctx, r.interTrialInterval(itiRNG)); err != nil {
		return trial.Record{}, err
	}
	return record, nil
}

// interTrialInterval draws the fixation duration: normal around the
// configured mean, floored at the configured minimum.
func (r *SessionRunner) interTrialInterval(itiRNG *rand.Rand) time.Duration {
	seconds := itiRNG.NormFloat64()*r.cfg.Task.ITISD + r.cfg.Task.ITIMean
	if seconds < r.cfg.Task.ITIMin {
		seconds = r.cfg.Task.ITIMin
	}
	return time.Duration(seconds * float64(time.Second))
}

// archiveSession mirrors the finished session into the archive when one
// is configured. The CSV log is the primary record; archive failures are
// logged and never fail the session.
func (r *SessionRunner) archiveSession(ctx context.Context, session *trial.Session, records []trial.Record) {
	if r.archive == nil {
		return
	}
	if err := r.archive.SaveSession(ctx, *session); err != nil {
		log.Printf("[Session] archive of session %s failed: %v", session.ID, err)
		return
	}
	if err := r.archive.SaveTrials(ctx, session.ID, records); err != nil {
		log.Printf("[Session] archive of %d trials for session %s failed: %v", len(records), session.ID, err)
	}
}

package app

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"banditlab/domain/core"
	"banditlab/domain/trial"
	"banditlab/internal/testkit"
)

// sampleLog is a hand-built six-trial log: two practice trials (one win,
// one loss) and four paid trials (salient win, non-salient win, miss,
// loss). Three paid rows carry an oracle win.
func sampleLog() []trial.Record {
	now := core.Now()
	return []trial.Record{
		{
			Mode: trial.ModePractice, Trial: 1,
			Choice:  trial.Choice{Made: true, Arm: trial.ArmLeft, Reaction: core.NewReactionTime(400 * time.Millisecond)},
			Outcome: trial.Outcome{Reward: 1, Condition: trial.ConditionNonSalient},
			Prob1:   0.6, Prob2: 0.4, Payoff1: 1, Payoff2: 0, LoggedAt: now,
		},
		{
			Mode: trial.ModePractice, Trial: 2,
			Choice:  trial.Choice{Made: true, Arm: trial.ArmRight, Reaction: core.NewReactionTime(500 * time.Millisecond)},
			Outcome: trial.Outcome{Reward: 0, Condition: trial.ConditionNonSalient},
			Prob1:   0.6, Prob2: 0.4, Payoff1: 1, Payoff2: 0, LoggedAt: now,
		},
		{
			Mode: trial.ModeMain, Trial: 1,
			Choice:  trial.Choice{Made: true, Arm: trial.ArmLeft, Reaction: core.NewReactionTime(300 * time.Millisecond)},
			Outcome: trial.Outcome{Reward: 1, Condition: trial.ConditionSalient},
			Prob1:   0.55, Prob2: 0.45, Payoff1: 1, Payoff2: 0, LoggedAt: now,
		},
		{
			Mode: trial.ModeMain, Trial: 2,
			Choice:  trial.Choice{Made: true, Arm: trial.ArmLeft, Reaction: core.NewReactionTime(350 * time.Millisecond)},
			Outcome: trial.Outcome{Reward: 1, Condition: trial.ConditionNonSalient},
			Prob1:   0.55, Prob2: 0.45, Payoff1: 1, Payoff2: 1, LoggedAt: now,
		},
		{
			Mode: trial.ModeMain, Trial: 3,
			Outcome: trial.Outcome{Reward: 0, Condition: trial.ConditionMissed},
			Prob1:   0.5, Prob2: 0.5, Payoff1: 0, Payoff2: 1, LoggedAt: now,
		},
		{
			Mode: trial.ModeMain, Trial: 4,
			Choice:  trial.Choice{Made: true, Arm: trial.ArmRight, Reaction: core.NewReactionTime(600 * time.Millisecond)},
			Outcome: trial.Outcome{Reward: 0, Condition: trial.ConditionNonSalient},
			Prob1:   0.5, Prob2: 0.5, Payoff1: 0, Payoff2: 0, LoggedAt: now,
		},
	}
}

func seedTrials(t *testing.T, store *testkit.MemoryTrialStore, pid core.ParticipantID, records []trial.Record) {
	t.Helper()
	w := store.Writer(pid)
	for _, r := range records {
		if err := w.Append(context.Background(), r); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
}

func TestNewAnalyzeServiceValidatesDeps(t *testing.T) {
	store := testkit.NewMemoryTrialStore()

	if _, err := NewAnalyzeService(AnalyzeServiceDeps{Catalog: store}); err == nil {
		t.Fatal("expected error for missing trial reader")
	}
	if _, err := NewAnalyzeService(AnalyzeServiceDeps{Trials: store}); err == nil {
		t.Fatal("expected error for missing catalog")
	}
	if _, err := NewAnalyzeService(AnalyzeServiceDeps{Trials: store, Catalog: store}); err != nil {
		t.Fatalf("complete deps rejected: %v", err)
	}
}

func TestAnalyzeBuildsReport(t *testing.T) {
	store := testkit.NewMemoryTrialStore()
	seedTrials(t, store, "vp001", sampleLog())

	svc, err := NewAnalyzeService(AnalyzeServiceDeps{Trials: store, Catalog: store})
	if err != nil {
		t.Fatalf("NewAnalyzeService: %v", err)
	}

	report, err := svc.Analyze(context.Background(), "vp001")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if report.Participant != "vp001" {
		t.Fatalf("report participant = %q", report.Participant)
	}

	p := report.Practice
	if p.Trials != 2 || p.Missed != 0 || p.Wins != 1 || p.WinRate != 0.5 {
		t.Fatalf("practice stats = %+v", p)
	}
	if p.ArmCounts != [2]int{1, 1} || p.Reaction.Count != 2 {
		t.Fatalf("practice choice stats = %+v", p)
	}

	m := report.Main
	if m.Trials != 4 || m.Missed != 1 || m.Wins != 2 || m.WinRate != 0.5 {
		t.Fatalf("main stats = %+v", m)
	}
	if m.Salient != 1 || m.NonSalient != 2 {
		t.Fatalf("main condition counts = %+v", m)
	}
	if m.ArmCounts != [2]int{2, 1} || m.Reaction.Count != 3 {
		t.Fatalf("main choice stats = %+v", m)
	}

	if report.MaxWins != 3 {
		t.Fatalf("expected 3 oracle wins, got %d", report.MaxWins)
	}
	// 2 of 3 oracle wins at 3 EUR max: 2.00 EUR after snapping.
	if report.Bonus != 2.0 {
		t.Fatalf("expected 2.00 EUR bonus, got %.2f", report.Bonus)
	}
}

func TestAnalyzeMissingParticipant(t *testing.T) {
	store := testkit.NewMemoryTrialStore()
	svc, err := NewAnalyzeService(AnalyzeServiceDeps{Trials: store, Catalog: store})
	if err != nil {
		t.Fatalf("NewAnalyzeService: %v", err)
	}

	_, err = svc.Analyze(context.Background(), "missing")
	if !core.IsNotFoundError(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

// stubTrialStore serves fixed logs, including explicitly empty ones, so
// batch behavior around aborted sessions can be pinned down.
type stubTrialStore struct {
	logs map[core.ParticipantID][]trial.Record
	fail core.ParticipantID
}

func (s *stubTrialStore) ListParticipants(ctx context.Context) ([]core.ParticipantID, error) {
	ids := make([]core.ParticipantID, 0, len(s.logs))
	for pid := range s.logs {
		ids = append(ids, pid)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *stubTrialStore) ReadTrials(ctx context.Context, pid core.ParticipantID) ([]trial.Record, error) {
	if pid == s.fail {
		return nil, fmt.Errorf("disk gone")
	}
	records, ok := s.logs[pid]
	if !ok {
		return nil, core.NewNotFoundError("trial log", string(pid))
	}
	return records, nil
}

func TestAnalyzeAllSkipsEmptyLogs(t *testing.T) {
	store := &stubTrialStore{logs: map[core.ParticipantID][]trial.Record{
		"vp001": sampleLog(),
		"vp002": {},
		"vp003": sampleLog(),
	}}

	svc, err := NewAnalyzeService(AnalyzeServiceDeps{Trials: store, Catalog: store, Concurrency: 2})
	if err != nil {
		t.Fatalf("NewAnalyzeService: %v", err)
	}

	reports, err := svc.AnalyzeAll(context.Background())
	if err != nil {
		t.Fatalf("AnalyzeAll: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
	if reports[0].Participant != "vp001" || reports[1].Participant != "vp003" {
		t.Fatalf("reports out of order: %s, %s", reports[0].Participant, reports[1].Participant)
	}
}

func TestAnalyzeAllPropagatesReadFailure(t *testing.T) {
	store := &stubTrialStore{
		logs: map[core.ParticipantID][]trial.Record{
			"vp001": sampleLog(),
			"vp002": sampleLog(),
		},
		fail: "vp002",
	}

	svc, err := NewAnalyzeService(AnalyzeServiceDeps{Trials: store, Catalog: store})
	if err != nil {
		t.Fatalf("NewAnalyzeService: %v", err)
	}

	if _, err := svc.AnalyzeAll(context.Background()); err == nil {
		t.Fatal("expected batch failure when one log cannot be read")
	}
}

func TestAnalyzeAllEmptyCatalog(t *testing.T) {
	store := testkit.NewMemoryTrialStore()
	svc, err := NewAnalyzeService(AnalyzeServiceDeps{Trials: store, Catalog: store})
	if err != nil {
		t.Fatalf("NewAnalyzeService: %v", err)
	}

	reports, err := svc.AnalyzeAll(context.Background())
	if err != nil {
		t.Fatalf("AnalyzeAll: %v", err)
	}
	if len(reports) != 0 {
		t.Fatalf("expected no reports, got %d", len(reports))
	}
}

package testkit

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"banditlab/domain/core"
	"banditlab/domain/quest"
	"banditlab/domain/schedule"
	"banditlab/domain/trial"
	"banditlab/domain/walk"
	"banditlab/ports"
)

// TestKit provides in-memory adapters and fixtures for driving full
// sessions without a screen, a speaker or the filesystem.
type TestKit struct {
	trials  *MemoryTrialStore
	quests  *MemoryQuestionnaireStore
	archive *MemoryArchive
}

// NewTestKit creates a new test kit instance with empty stores.
func NewTestKit() *TestKit {
	return &TestKit{
		trials:  NewMemoryTrialStore(),
		quests:  NewMemoryQuestionnaireStore(),
		archive: NewMemoryArchive(),
	}
}

// TrialWriter returns a writer appending into the shared in-memory log.
func (t *TestKit) TrialWriter(pid core.ParticipantID) ports.TrialWriterPort {
	return t.trials.Writer(pid)
}

// TrialReader returns a reader over the shared in-memory log.
func (t *TestKit) TrialReader() ports.TrialReaderPort {
	return t.trials
}

// QuestionnaireWriter returns the shared in-memory questionnaire store.
func (t *TestKit) QuestionnaireWriter() ports.QuestionnaireWriterPort {
	return t.quests
}

// QuestionnaireReader reads back what QuestionnaireWriter stored.
func (t *TestKit) QuestionnaireReader() ports.QuestionnaireReaderPort {
	return t.quests
}

// Archive returns the shared in-memory session archive.
func (t *TestKit) Archive() *MemoryArchive {
	return t.archive
}

// RNGAdapter returns a deterministic RNG adapter.
func (t *TestKit) RNGAdapter() ports.RNGPort {
	return &RNGAdapter{}
}

// RNGAdapter implements the RNGPort interface for testing
type RNGAdapter struct{}

// SeededStream creates a deterministic random number generator for a named operation
func (r *RNGAdapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	return rand.New(rand.NewSource(int64(hashString(name)) + seed)), nil
}

// SessionStream creates a deterministic RNG stream scoped to one participant
func (r *RNGAdapter) SessionStream(ctx context.Context, participantID, name string, baseSeed int64) (*rand.Rand, error) {
	seed := baseSeed
	if participantID != "" {
		seed += int64(hashString(participantID))
	}
	if name != "" {
		seed += int64(hashString(name))
	}
	return rand.New(rand.NewSource(seed)), nil
}

// hashString creates a simple hash for deterministic seeding
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c) // djb2 algorithm
	}
	return hash
}

// ScriptedResponse is one pre-planned participant action.
type ScriptedResponse struct {
	Side     ports.Side
	Reaction core.ReactionTime
	// Miss makes AwaitChoice report a lapsed response window instead.
	Miss bool
}

// Respond scripts a left/right press with the given latency.
func Respond(side ports.Side, latency time.Duration) ScriptedResponse {
	return ScriptedResponse{Side: side, Reaction: core.ReactionTime(latency)}
}

// Miss scripts a response window lapse.
func Miss() ScriptedResponse {
	return ScriptedResponse{Miss: true}
}

// RepeatResponses scripts the same action n times.
func RepeatResponses(r ScriptedResponse, n int) []ScriptedResponse {
	out := make([]ScriptedResponse, n)
	for i := range out {
		out[i] = r
	}
	return out
}

// ScriptedInput implements InputSourcePort by replaying a fixed script.
type ScriptedInput struct {
	mu        sync.Mutex
	script    []ScriptedResponse
	next      int
	Continues int
}

// NewScriptedInput creates an input source that replays the given responses in order.
func NewScriptedInput(script ...ScriptedResponse) *ScriptedInput {
	return &ScriptedInput{script: script}
}

// AwaitChoice pops the next scripted response. Running past the end of
// the script is a test bug and fails loudly.
func (s *ScriptedInput) AwaitChoice(ctx context.Context, timeout time.Duration) (ports.Side, core.ReactionTime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.next >= len(s.script) {
		return ports.SideLeft, 0, fmt.Errorf("scripted input exhausted after %d responses", len(s.script))
	}
	r := s.script[s.next]
	s.next++
	if r.Miss {
		return ports.SideLeft, 0, core.ErrNoResponse
	}
	return r.Side, r.Reaction, nil
}

// AwaitContinue advances past an instruction page immediately.
func (s *ScriptedInput) AwaitContinue(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Continues++
	return nil
}

// Remaining reports how many scripted responses were not consumed.
func (s *ScriptedInput) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.script) - s.next
}

// ScreenEvent records one presenter call.
type ScreenEvent struct {
	Kind      string
	Text      string
	Layout    ports.Layout
	Chosen    ports.Side
	Condition trial.Condition
	Duration  time.Duration
}

// RecordingPresenter implements StimulusPresenterPort by recording every
// call and returning instantly, so session tests run at full speed.
type RecordingPresenter struct {
	mu     sync.Mutex
	events []ScreenEvent
	closed bool
}

// NewRecordingPresenter creates an empty recording presenter.
func NewRecordingPresenter() *RecordingPresenter {
	return &RecordingPresenter{}
}

func (p *RecordingPresenter) record(e ScreenEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *RecordingPresenter) ShowInstruction(ctx context.Context, body, footer string) error {
	p.record(ScreenEvent{Kind: "instruction", Text: body})
	return nil
}

func (p *RecordingPresenter) ShowChoice(ctx context.Context, layout ports.Layout) error {
	p.record(ScreenEvent{Kind: "choice", Layout: layout})
	return nil
}

func (p *RecordingPresenter) ShowFeedback(ctx context.Context, layout ports.Layout, chosen ports.Side, fb ports.Feedback, d time.Duration) error {
	p.record(ScreenEvent{Kind: "feedback", Text: fb.Text, Layout: layout, Chosen: chosen, Condition: fb.Condition, Duration: d})
	return nil
}

func (p *RecordingPresenter) ShowMissed(ctx context.Context, text string, d time.Duration) error {
	p.record(ScreenEvent{Kind: "missed", Text: text, Duration: d})
	return nil
}

func (p *RecordingPresenter) ShowFixation(ctx context.Context, d time.Duration) error {
	p.record(ScreenEvent{Kind: "fixation", Duration: d})
	return nil
}

func (p *RecordingPresenter) ShowFinal(ctx context.Context, text string, d time.Duration) error {
	p.record(ScreenEvent{Kind: "final", Text: text, Duration: d})
	return nil
}

func (p *RecordingPresenter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Events returns a copy of everything shown so far.
func (p *RecordingPresenter) Events() []ScreenEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ScreenEvent, len(p.events))
	copy(out, p.events)
	return out
}

// EventsOfKind filters the recorded events by kind.
func (p *RecordingPresenter) EventsOfKind(kind string) []ScreenEvent {
	var out []ScreenEvent
	for _, e := range p.Events() {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Closed reports whether Close was called.
func (p *RecordingPresenter) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// SilentAudio implements AudioChannelPort without making a sound. It
// records volume moves and cue plays; CueBusy stays true for BusyPolls
// polls after each cue so the duck-poll-restore path gets exercised.
type SilentAudio struct {
	mu        sync.Mutex
	BusyPolls int
	busyLeft  int
	volume    float64
	started   bool
	cues      int
	volumes   []float64
}

// NewSilentAudio creates a silent audio channel.
func NewSilentAudio() *SilentAudio {
	return &SilentAudio{BusyPolls: 2}
}

func (a *SilentAudio) StartBackground(ctx context.Context, volume float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.started = true
	a.volume = volume
	a.volumes = append(a.volumes, volume)
	return nil
}

func (a *SilentAudio) SetBackgroundVolume(volume float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.volume = volume
	a.volumes = append(a.volumes, volume)
	return nil
}

func (a *SilentAudio) FadeBackgroundVolume(target float64, d time.Duration, steps int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.volume = target
	a.volumes = append(a.volumes, target)
	return nil
}

func (a *SilentAudio) PlayCue(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cues++
	a.busyLeft = a.BusyPolls
	return nil
}

func (a *SilentAudio) CueBusy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.busyLeft > 0 {
		a.busyLeft--
		return true
	}
	return false
}

func (a *SilentAudio) Close() error {
	return nil
}

// Started reports whether the background track was started.
func (a *SilentAudio) Started() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.started
}

// Cues reports how many times the salient cue played.
func (a *SilentAudio) Cues() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cues
}

// Volume reports the current background volume.
func (a *SilentAudio) Volume() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.volume
}

// Volumes returns every background volume the channel was set to, in order.
func (a *SilentAudio) Volumes() []float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]float64, len(a.volumes))
	copy(out, a.volumes)
	return out
}

// MemoryTrialStore implements TrialReaderPort with in-memory storage,
// handing out per-participant writers that append into it.
type MemoryTrialStore struct {
	mu      sync.RWMutex
	records map[core.ParticipantID][]trial.Record
}

// NewMemoryTrialStore creates an empty trial store.
func NewMemoryTrialStore() *MemoryTrialStore {
	return &MemoryTrialStore{records: make(map[core.ParticipantID][]trial.Record)}
}

// Writer returns an append-only writer for one participant's log.
func (m *MemoryTrialStore) Writer(pid core.ParticipantID) ports.TrialWriterPort {
	return &memoryTrialWriter{store: m, pid: pid}
}

// ListParticipants returns every participant with recorded rows, sorted
// by ID.
func (m *MemoryTrialStore) ListParticipants(ctx context.Context) ([]core.ParticipantID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]core.ParticipantID, 0, len(m.records))
	for pid := range m.records {
		ids = append(ids, pid)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// ReadTrials returns the recorded rows in append order.
func (m *MemoryTrialStore) ReadTrials(ctx context.Context, participantID core.ParticipantID) ([]trial.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records, ok := m.records[participantID]
	if !ok {
		return nil, core.NewNotFoundError("trial log", string(participantID))
	}
	out := make([]trial.Record, len(records))
	copy(out, records)
	return out, nil
}

type memoryTrialWriter struct {
	store  *MemoryTrialStore
	pid    core.ParticipantID
	closed bool
}

func (w *memoryTrialWriter) Append(ctx context.Context, record trial.Record) error {
	if w.closed {
		return fmt.Errorf("append to closed trial writer for %s", w.pid)
	}
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	w.store.records[w.pid] = append(w.store.records[w.pid], record)
	return nil
}

func (w *memoryTrialWriter) Close() error {
	w.closed = true
	return nil
}

// MemoryQuestionnaireStore implements the questionnaire writer and
// reader ports with in-memory storage.
type MemoryQuestionnaireStore struct {
	mu      sync.RWMutex
	entries map[core.ParticipantID]questEntry
}

type questEntry struct {
	responses *quest.ResponseSet
	scores    quest.Scores
}

// NewMemoryQuestionnaireStore creates an empty questionnaire store.
func NewMemoryQuestionnaireStore() *MemoryQuestionnaireStore {
	return &MemoryQuestionnaireStore{entries: make(map[core.ParticipantID]questEntry)}
}

func (m *MemoryQuestionnaireStore) Write(ctx context.Context, responses *quest.ResponseSet, scores quest.Scores) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[responses.ParticipantID] = questEntry{responses: responses, scores: scores}
	return nil
}

func (m *MemoryQuestionnaireStore) ReadQuestionnaire(ctx context.Context, participantID core.ParticipantID) (*quest.ResponseSet, quest.Scores, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[participantID]
	if !ok {
		return nil, quest.Scores{}, core.NewNotFoundError("questionnaire", string(participantID))
	}
	return entry.responses, entry.scores, nil
}

// MemoryArchive implements SessionArchivePort with in-memory storage.
type MemoryArchive struct {
	mu             sync.RWMutex
	sessions       []trial.Session
	trials         map[core.SessionID][]trial.Record
	questionnaires map[core.ParticipantID]questEntry
}

// NewMemoryArchive creates an empty archive.
func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{
		trials:         make(map[core.SessionID][]trial.Record),
		questionnaires: make(map[core.ParticipantID]questEntry),
	}
}

func (m *MemoryArchive) SaveSession(ctx context.Context, s trial.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = append(m.sessions, s)
	return nil
}

func (m *MemoryArchive) SaveTrials(ctx context.Context, sessionID core.SessionID, records []trial.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trials[sessionID] = append(m.trials[sessionID], records...)
	return nil
}

func (m *MemoryArchive) SaveQuestionnaire(ctx context.Context, participantID core.ParticipantID, responses *quest.ResponseSet, scores quest.Scores) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questionnaires[participantID] = questEntry{responses: responses, scores: scores}
	return nil
}

// Sessions returns the archived sessions in save order.
func (m *MemoryArchive) Sessions() []trial.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]trial.Session, len(m.sessions))
	copy(out, m.sessions)
	return out
}

// Trials returns the archived rows for one session.
func (m *MemoryArchive) Trials(sessionID core.SessionID) []trial.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]trial.Record, len(m.trials[sessionID]))
	copy(out, m.trials[sessionID])
	return out
}

// Questionnaires reports how many questionnaires were archived.
func (m *MemoryArchive) Questionnaires() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.questionnaires)
}

// FixtureSchedule builds a deterministic schedule from the given seed.
func FixtureSchedule(blocks int, seed int64) schedule.Schedule {
	return schedule.Generate(blocks, rand.New(rand.NewSource(seed)))
}

// FixtureTable builds a deterministic walk table from the given seed.
func FixtureTable(trials int, seed int64) walk.Table {
	return walk.Generate(walk.DefaultParams(trials), rand.New(rand.NewSource(seed)))
}

// AlwaysWinTable builds a table where the left arm always pays out and
// the right never does, so scripted sessions control wins exactly.
func AlwaysWinTable(trials int) walk.Table {
	t := make(walk.Table, trials)
	for i := range t {
		t[i] = walk.Row{Prob1: 0.75, Prob2: 0.25, Payoff1: 1, Payoff2: 0}
	}
	return t
}

package testkit

import (
	"context"
	"fmt"
	"sync"

	"banditlab/domain/core"
	"banditlab/domain/schedule"
	"banditlab/domain/trial"
	"banditlab/domain/walk"
)

// MemoryScheduleStore implements ScheduleStorePort without touching the
// filesystem. A nil initial schedule reads back as not found.
type MemoryScheduleStore struct {
	mu    sync.RWMutex
	sched schedule.Schedule
}

// NewMemoryScheduleStore creates a store preloaded with the given
// schedule; pass nil for an empty one.
func NewMemoryScheduleStore(s schedule.Schedule) *MemoryScheduleStore {
	return &MemoryScheduleStore{sched: s}
}

func (m *MemoryScheduleStore) SaveSchedule(ctx context.Context, s schedule.Schedule) error {
	if err := s.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sched = append(schedule.Schedule(nil), s...)
	return nil
}

func (m *MemoryScheduleStore) LoadSchedule(ctx context.Context) (schedule.Schedule, core.ScheduleHash, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.sched == nil {
		return nil, "", core.ErrScheduleNotFound
	}
	out := append(schedule.Schedule(nil), m.sched...)
	return out, core.NewScheduleHash([]byte(fmt.Sprint(m.sched))), nil
}

// MemoryWalkStore implements WalkStorePort without touching the
// filesystem.
type MemoryWalkStore struct {
	mu     sync.RWMutex
	tables map[trial.Mode]walk.Table
}

// NewMemoryWalkStore creates a store preloaded with the given phase
// tables; pass nil to leave a phase empty.
func NewMemoryWalkStore(practice, main walk.Table) *MemoryWalkStore {
	tables := make(map[trial.Mode]walk.Table)
	if practice != nil {
		tables[trial.ModePractice] = practice
	}
	if main != nil {
		tables[trial.ModeMain] = main
	}
	return &MemoryWalkStore{tables: tables}
}

func (m *MemoryWalkStore) SaveTable(ctx context.Context, mode trial.Mode, t walk.Table) error {
	if err := t.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[mode] = append(walk.Table(nil), t...)
	return nil
}

func (m *MemoryWalkStore) LoadTable(ctx context.Context, mode trial.Mode) (walk.Table, core.WalkHash, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[mode]
	if !ok {
		return nil, "", core.ErrWalkNotFound
	}
	out := append(walk.Table(nil), t...)
	return out, core.NewWalkHash([]byte(fmt.Sprint(t))), nil
}

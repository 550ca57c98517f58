package csvstore

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"banditlab/domain/core"
	"banditlab/domain/schedule"
	"banditlab/domain/trial"
	"banditlab/domain/walk"
)

// ScheduleStore persists the reinforcement schedule as a one-column CSV,
// one flag per row.
type ScheduleStore struct {
	path string
}

// NewScheduleStore creates a store for the schedule file at path.
func NewScheduleStore(path string) *ScheduleStore {
	return &ScheduleStore{path: path}
}

// SaveSchedule writes the schedule, creating parent directories as needed.
func (s *ScheduleStore) SaveSchedule(ctx context.Context, sched schedule.Schedule) error {
	if err := sched.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create schedule directory: %w", err)
	}

	file, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to create schedule file %s: %w", s.path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"schedule"}); err != nil {
		return fmt.Errorf("failed to write schedule header: %w", err)
	}
	for _, flag := range sched {
		if err := w.Write([]string{strconv.Itoa(flag)}); err != nil {
			return fmt.Errorf("failed to write schedule row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush schedule file: %w", err)
	}

	log.Printf("[ScheduleStore] Saved %d schedule flags to %s", len(sched), s.path)
	return nil
}

// LoadSchedule reads and validates the schedule, returning the file's
// content hash alongside it.
func (s *ScheduleStore) LoadSchedule(ctx context.Context) (schedule.Schedule, core.ScheduleHash, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", core.ErrScheduleNotFound
		}
		return nil, "", fmt.Errorf("failed to read schedule file %s: %w", s.path, err)
	}

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse schedule file %s: %w", s.path, err)
	}
	if len(rows) < 2 {
		return nil, "", fmt.Errorf("schedule file %s has no data rows", s.path)
	}

	sched := make(schedule.Schedule, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != 1 {
			return nil, "", fmt.Errorf("schedule file %s row %d: expected 1 column, got %d", s.path, i+1, len(row))
		}
		flag, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, "", fmt.Errorf("schedule file %s row %d: invalid flag %q: %w", s.path, i+1, row[0], err)
		}
		sched = append(sched, flag)
	}
	if err := sched.Validate(); err != nil {
		return nil, "", fmt.Errorf("schedule file %s: %w", s.path, err)
	}
	return sched, core.NewScheduleHash(data), nil
}

// walkHeader is the fixed column order of a reward walk table.
var walkHeader = []string{"mu_1", "mu_2", "payoff_1", "payoff_2"}

// WalkStore persists the per-phase reward walk tables, one CSV per phase.
type WalkStore struct {
	mainPath     string
	practicePath string
}

// NewWalkStore creates a store with one file per phase.
func NewWalkStore(mainPath, practicePath string) *WalkStore {
	return &WalkStore{mainPath: mainPath, practicePath: practicePath}
}

func (s *WalkStore) pathFor(mode trial.Mode) string {
	if mode == trial.ModePractice {
		return s.practicePath
	}
	return s.mainPath
}

// SaveTable writes the walk table for one phase.
func (s *WalkStore) SaveTable(ctx context.Context, mode trial.Mode, t walk.Table) error {
	if err := t.Validate(); err != nil {
		return err
	}
	path := s.pathFor(mode)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create walk directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create walk file %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(walkHeader); err != nil {
		return fmt.Errorf("failed to write walk header: %w", err)
	}
	for _, row := range t {
		record := []string{
			formatFloat(row.Prob1),
			formatFloat(row.Prob2),
			strconv.Itoa(row.Payoff1),
			strconv.Itoa(row.Payoff2),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write walk row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush walk file: %w", err)
	}

	log.Printf("[WalkStore] Saved %d %s walk rows to %s", len(t), mode, path)
	return nil
}

// LoadTable reads and validates one phase's walk table, returning the
// file's content hash alongside it.
func (s *WalkStore) LoadTable(ctx context.Context, mode trial.Mode) (walk.Table, core.WalkHash, error) {
	path := s.pathFor(mode)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", core.ErrWalkNotFound
		}
		return nil, "", fmt.Errorf("failed to read walk file %s: %w", path, err)
	}

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse walk file %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, "", fmt.Errorf("walk file %s has no data rows", path)
	}

	table := make(walk.Table, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != len(walkHeader) {
			return nil, "", fmt.Errorf("walk file %s row %d: expected %d columns, got %d", path, i+1, len(walkHeader), len(row))
		}
		var r walk.Row
		if r.Prob1, err = strconv.ParseFloat(row[0], 64); err != nil {
			return nil, "", fmt.Errorf("walk file %s row %d: invalid mu_1 %q: %w", path, i+1, row[0], err)
		}
		if r.Prob2, err = strconv.ParseFloat(row[1], 64); err != nil {
			return nil, "", fmt.Errorf("walk file %s row %d: invalid mu_2 %q: %w", path, i+1, row[1], err)
		}
		if r.Payoff1, err = strconv.Atoi(row[2]); err != nil {
			return nil, "", fmt.Errorf("walk file %s row %d: invalid payoff_1 %q: %w", path, i+1, row[2], err)
		}
		if r.Payoff2, err = strconv.Atoi(row[3]); err != nil {
			return nil, "", fmt.Errorf("walk file %s row %d: invalid payoff_2 %q: %w", path, i+1, row[3], err)
		}
		table = append(table, r)
	}
	if err := table.Validate(); err != nil {
		return nil, "", fmt.Errorf("walk file %s: %w", path, err)
	}
	return table, core.NewWalkHash(data), nil
}

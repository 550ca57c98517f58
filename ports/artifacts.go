package ports

import (
	"context"

	"banditlab/domain/core"
	"banditlab/domain/schedule"
	"banditlab/domain/trial"
	"banditlab/domain/walk"
)

// ScheduleStorePort persists and loads reinforcement schedule artifacts.
// Loading returns the artifact's content hash so a session record can
// name the exact file it consumed.
type ScheduleStorePort interface {
	SaveSchedule(ctx context.Context, s schedule.Schedule) error
	LoadSchedule(ctx context.Context) (schedule.Schedule, core.ScheduleHash, error)
}

// WalkStorePort persists and loads the per-phase reward walk tables.
type WalkStorePort interface {
	SaveTable(ctx context.Context, mode trial.Mode, t walk.Table) error
	LoadTable(ctx context.Context, mode trial.Mode) (walk.Table, core.WalkHash, error)
}

package migration

import (
	"context"
	"log"

	"banditlab/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner applies the session archive schema
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all schema migrations in dependency order. Every
// statement is idempotent, so the runner is safe to re-run against a
// live archive.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createParticipantsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create participants table")
	}

	if err := r.createSessionsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create sessions table")
	}

	if err := r.createTrialsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create trials table")
	}

	if err := r.createQuestionnairesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create questionnaires table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createParticipantsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS participants (
			id UUID PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createSessionsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS sessions (
			id UUID PRIMARY KEY,
			participant_id UUID NOT NULL REFERENCES participants(id),
			salience_policy TEXT NOT NULL,
			started_at TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ NOT NULL,
			wins INTEGER NOT NULL,
			max_wins INTEGER NOT NULL,
			bonus_eur DOUBLE PRECISION NOT NULL,
			schedule_hash TEXT NOT NULL,
			walk_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createTrialsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS trials (
			id BIGSERIAL PRIMARY KEY,
			session_id UUID NOT NULL REFERENCES sessions(id),
			mode TEXT NOT NULL,
			trial_no INTEGER NOT NULL,
			arm INTEGER,
			reaction_seconds DOUBLE PRECISION,
			reward INTEGER NOT NULL,
			condition INTEGER NOT NULL,
			prob_1 DOUBLE PRECISION NOT NULL,
			prob_2 DOUBLE PRECISION NOT NULL,
			payoff_1 INTEGER NOT NULL,
			payoff_2 INTEGER NOT NULL,
			logged_at TIMESTAMPTZ NOT NULL,
			UNIQUE (session_id, mode, trial_no)
		)
	`)
	return err
}

func (r *MigrationRunner) createQuestionnairesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS questionnaires (
			id UUID PRIMARY KEY,
			participant_id UUID NOT NULL UNIQUE REFERENCES participants(id),
			answers JSONB NOT NULL,
			bis_total INTEGER NOT NULL,
			sss_thrill INTEGER NOT NULL,
			sss_experience INTEGER NOT NULL,
			sss_disinhibition INTEGER NOT NULL,
			sss_boredom INTEGER NOT NULL,
			sss_total DOUBLE PRECISION NOT NULL,
			sss_percent DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_sessions_participant ON sessions(participant_id)",
		"CREATE INDEX IF NOT EXISTS idx_trials_session ON trials(session_id)",
		"CREATE INDEX IF NOT EXISTS idx_questionnaires_participant ON questionnaires(participant_id)",
	}

	for _, idxSQL := range indexes {
		if _, err := db.ExecContext(ctx, idxSQL); err != nil {
			// Indexes are a performance concern, not a correctness one.
			log.Printf("[Migration] Warning: failed to create index: %v", err)
		}
	}

	return nil
}

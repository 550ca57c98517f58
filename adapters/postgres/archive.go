package postgres

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"time"

	"banditlab/domain/core"
	"banditlab/domain/quest"
	"banditlab/domain/trial"
	"banditlab/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Archive implements SessionArchivePort for PostgreSQL. The CSV files
// written during the run remain the primary record; this adapter mirrors
// them into the lab database so sessions can be queried across machines.
type Archive struct {
	db *sqlx.DB
}

// NewArchive creates a new PostgreSQL session archive
func NewArchive(db *sqlx.DB) ports.SessionArchivePort {
	return &Archive{db: db}
}

// jsonbValue wraps an arbitrary value so it is written as a JSONB
// literal instead of bytea.
type jsonbValue struct{ v any }

func (j jsonbValue) Value() (driver.Value, error) {
	return json.Marshal(j.v)
}

// SaveSession records one completed task run keyed by participant code.
func (a *Archive) SaveSession(ctx context.Context, s trial.Session) error {
	participantID, err := a.upsertParticipant(ctx, s.Participant)
	if err != nil {
		return err
	}

	_, err = a.db.ExecContext(ctx, `
		INSERT INTO sessions (id, participant_id, salience_policy, started_at, finished_at, wins, max_wins, bonus_eur, schedule_hash, walk_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (id) DO NOTHING
	`, s.ID.String(), participantID, string(s.Policy), s.StartedAt.Time(), s.FinishedAt.Time(),
		s.Wins, s.MaxWins, s.Bonus, s.ScheduleHash.String(), s.WalkHash.String())
	return err
}

// SaveTrials appends the per-trial log of a session in one transaction.
// Missed trials carry NULL arm and reaction columns, mirroring the empty
// fields in the CSV.
func (a *Archive) SaveTrials(ctx context.Context, sessionID core.SessionID, records []trial.Record) error {
	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, rec := range records {
		var arm, reaction interface{}
		if rec.Choice.Made {
			arm = rec.Choice.Arm
			reaction = rec.Choice.Reaction.Seconds()
		}

		loggedAt := rec.LoggedAt.Time()
		if loggedAt.IsZero() {
			loggedAt = time.Now()
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO trials (session_id, mode, trial_no, arm, reaction_seconds, reward, condition, prob_1, prob_2, payoff_1, payoff_2, logged_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`, sessionID.String(), string(rec.Mode), rec.Trial, arm, reaction,
			rec.Outcome.Reward, rec.Outcome.Condition.Code(), rec.Prob1, rec.Prob2, rec.Payoff1, rec.Payoff2, loggedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveQuestionnaire stores the raw battery answers as JSONB alongside the
// derived scores. Re-submitting for the same participant replaces the
// earlier row.
func (a *Archive) SaveQuestionnaire(ctx context.Context, participantID core.ParticipantID, responses *quest.ResponseSet, scores quest.Scores) error {
	dbParticipantID, err := a.upsertParticipant(ctx, participantID)
	if err != nil {
		return err
	}

	answers := map[string]any{
		"bis":     responses.BIS,
		"sss":     responses.SSS,
		"debrief": responses.Debrief,
	}

	_, err = a.db.ExecContext(ctx, `
		INSERT INTO questionnaires (id, participant_id, answers, bis_total, sss_thrill, sss_experience, sss_disinhibition, sss_boredom, sss_total, sss_percent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (participant_id) DO UPDATE
		SET answers = EXCLUDED.answers,
		    bis_total = EXCLUDED.bis_total,
		    sss_thrill = EXCLUDED.sss_thrill,
		    sss_experience = EXCLUDED.sss_experience,
		    sss_disinhibition = EXCLUDED.sss_disinhibition,
		    sss_boredom = EXCLUDED.sss_boredom,
		    sss_total = EXCLUDED.sss_total,
		    sss_percent = EXCLUDED.sss_percent,
		    created_at = NOW()
	`, uuid.New(), dbParticipantID, jsonbValue{answers},
		scores.BISTotal, scores.Thrill, scores.Experience, scores.Disinhibition, scores.Boredom,
		scores.SensationTotal, scores.Percent)
	return err
}

// upsertParticipant resolves a participant code to its database id,
// creating the row on first sight.
func (a *Archive) upsertParticipant(ctx context.Context, code core.ParticipantID) (uuid.UUID, error) {
	var id uuid.UUID
	err := a.db.GetContext(ctx, &id, `
		INSERT INTO participants (id, code, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (code) DO UPDATE SET code = EXCLUDED.code
		RETURNING id
	`, uuid.New(), code.String())
	return id, err
}

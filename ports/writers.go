package ports

import (
	"context"

	"banditlab/domain/core"
	"banditlab/domain/quest"
	"banditlab/domain/trial"
)

// TrialWriterPort provides append-only write access to the trial log.
// This is the ONLY way trial rows are written - one append per presented
// trial, flushed before the next trial starts, so a crash loses at most
// the trial in flight.
type TrialWriterPort interface {
	Append(ctx context.Context, record trial.Record) error
	Close() error
}

// TrialReaderPort provides read-only access to recorded trial logs.
// Use this for analysis, export and archival, never during a session.
type TrialReaderPort interface {
	ReadTrials(ctx context.Context, participantID core.ParticipantID) ([]trial.Record, error)
}

// QuestionnaireWriterPort persists one participant's complete battery:
// a single row, written exactly once after validation.
type QuestionnaireWriterPort interface {
	Write(ctx context.Context, responses *quest.ResponseSet, scores quest.Scores) error
}

// QuestionnaireReaderPort reads a persisted battery back for export.
type QuestionnaireReaderPort interface {
	ReadQuestionnaire(ctx context.Context, participantID core.ParticipantID) (*quest.ResponseSet, quest.Scores, error)
}

// TrialCatalogPort enumerates the participants with a recorded trial
// log, for batch analysis and export.
type TrialCatalogPort interface {
	ListParticipants(ctx context.Context) ([]core.ParticipantID, error)
}

package ports

import (
	"context"

	"banditlab/domain/core"
	"banditlab/domain/quest"
	"banditlab/domain/trial"
)

// SessionArchivePort mirrors completed sessions into durable storage.
// The CSV files stay the primary record; archival is write-through and
// optional, and archive failures must never interrupt a session.
type SessionArchivePort interface {
	SaveSession(ctx context.Context, s trial.Session) error
	SaveTrials(ctx context.Context, sessionID core.SessionID, records []trial.Record) error
	SaveQuestionnaire(ctx context.Context, participantID core.ParticipantID, responses *quest.ResponseSet, scores quest.Scores) error
}

package trial

import "banditlab/domain/core"

// Session is the archival record of one completed task run: who ran,
// under which salience policy, what they earned, and the exact artifact
// fingerprints the run consumed.
type Session struct {
	ID           core.SessionID
	Participant  core.ParticipantID
	Policy       SaliencePolicy
	StartedAt    core.Timestamp
	FinishedAt   core.Timestamp
	Wins         int
	MaxWins      int
	Bonus        float64
	ScheduleHash core.ScheduleHash
	WalkHash     core.WalkHash
}

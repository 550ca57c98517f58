package ports

import (
	"context"

	"banditlab/domain/core"
	"banditlab/domain/quest"
	"banditlab/domain/summary"
	"banditlab/domain/trial"
)

// ParticipantExport bundles everything recorded about one participant
// for rendering into an external report format. Responses and Report
// are nil when the corresponding data is not on file.
type ParticipantExport struct {
	Participant core.ParticipantID
	Records     []trial.Record
	Responses   *quest.ResponseSet
	Scores      quest.Scores
	Report      *summary.Report
}

// WorkbookWriterPort renders one participant's export bundle to a
// workbook file and returns the written path.
type WorkbookWriterPort interface {
	WriteWorkbook(ctx context.Context, export ParticipantExport) (string, error)
}

package app

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"banditlab/domain/core"
	"banditlab/domain/summary"
	"banditlab/ports"
)

// ExportServiceDeps carries the ports the export service needs.
type ExportServiceDeps struct {
	Trials   ports.TrialReaderPort
	Catalog  ports.TrialCatalogPort
	Quests   ports.QuestionnaireReaderPort
	Workbook ports.WorkbookWriterPort

	// Concurrency caps the number of workbooks written in parallel
	// during ExportAll. Zero means the default.
	Concurrency int
}

// ExportService gathers a participant's trial log, questionnaire and
// derived summary and hands the bundle to a workbook writer.
type ExportService struct {
	trials      ports.TrialReaderPort
	catalog     ports.TrialCatalogPort
	quests      ports.QuestionnaireReaderPort
	workbook    ports.WorkbookWriterPort
	concurrency int
}

func NewExportService(deps ExportServiceDeps) (*ExportService, error) {
	if deps.Trials == nil || deps.Catalog == nil {
		return nil, fmt.Errorf("export service requires trial reader and catalog ports")
	}
	if deps.Quests == nil {
		return nil, fmt.Errorf("export service requires a questionnaire reader port")
	}
	if deps.Workbook == nil {
		return nil, fmt.Errorf("export service requires a workbook writer port")
	}
	if deps.Concurrency <= 0 {
		deps.Concurrency = defaultAnalyzeConcurrency
	}
	return &ExportService{
		trials:      deps.Trials,
		catalog:     deps.Catalog,
		quests:      deps.Quests,
		workbook:    deps.Workbook,
		concurrency: deps.Concurrency,
	}, nil
}

// ExportParticipant writes one participant's workbook and returns its
// path. The trial log is required; a missing questionnaire leaves the
// questionnaire sheet out rather than failing the export.
func (s *ExportService) ExportParticipant(ctx context.Context, participantID core.ParticipantID) (string, error) {
	records, err := s.trials.ReadTrials(ctx, participantID)
	if err != nil {
		return "", fmt.Errorf("failed to read trials for %s: %w", participantID, err)
	}

	export := ports.ParticipantExport{
		Participant: participantID,
		Records:     records,
	}

	responses, scores, err := s.quests.ReadQuestionnaire(ctx, participantID)
	switch {
	case err == nil:
		export.Responses = responses
		export.Scores = scores
	case core.IsNotFoundError(err):
		log.Printf("[Export] No questionnaire on file for %s", participantID)
	default:
		return "", fmt.Errorf("failed to read questionnaire for %s: %w", participantID, err)
	}

	if len(records) > 0 {
		report, err := summary.Build(participantID, records)
		if err != nil {
			return "", fmt.Errorf("failed to summarize %s: %w", participantID, err)
		}
		export.Report = report
	}

	path, err := s.workbook.WriteWorkbook(ctx, export)
	if err != nil {
		return "", fmt.Errorf("failed to write workbook for %s: %w", participantID, err)
	}
	log.Printf("[Export] Wrote workbook for %s to %s", participantID, path)
	return path, nil
}

// ExportAll writes a workbook for every participant the catalog knows
// about, a bounded number of them at a time. Paths come back in
// catalog order.
func (s *ExportService) ExportAll(ctx context.Context) ([]string, error) {
	participants, err := s.catalog.ListParticipants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	if len(participants) == 0 {
		return nil, nil
	}

	log.Printf("[Export] Exporting %d participants (concurrency %d)", len(participants), s.concurrency)

	paths := make([]string, len(participants))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, pid := range participants {
		g.Go(func() error {
			path, err := s.ExportParticipant(gctx, pid)
			if err != nil {
				return err
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

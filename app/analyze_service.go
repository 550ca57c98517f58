package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"banditlab/domain/core"
	"banditlab/domain/summary"
	"banditlab/ports"
)

const defaultAnalyzeConcurrency = 4

// AnalyzeServiceDeps carries the ports the analyze service needs.
type AnalyzeServiceDeps struct {
	Trials  ports.TrialReaderPort
	Catalog ports.TrialCatalogPort

	// Concurrency caps the number of trial logs summarized in
	// parallel during AnalyzeAll. Zero means the default.
	Concurrency int
}

// AnalyzeService builds descriptive reports from recorded trial logs.
type AnalyzeService struct {
	trials      ports.TrialReaderPort
	catalog     ports.TrialCatalogPort
	concurrency int
}

func NewAnalyzeService(deps AnalyzeServiceDeps) (*AnalyzeService, error) {
	if deps.Trials == nil {
		return nil, fmt.Errorf("analyze service requires a trial reader port")
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("analyze service requires a trial catalog port")
	}
	if deps.Concurrency <= 0 {
		deps.Concurrency = defaultAnalyzeConcurrency
	}
	return &AnalyzeService{
		trials:      deps.Trials,
		catalog:     deps.Catalog,
		concurrency: deps.Concurrency,
	}, nil
}

// Analyze summarizes one participant's trial log.
func (s *AnalyzeService) Analyze(ctx context.Context, participantID core.ParticipantID) (*summary.Report, error) {
	records, err := s.trials.ReadTrials(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to read trials for %s: %w", participantID, err)
	}
	report, err := summary.Build(participantID, records)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize %s: %w", participantID, err)
	}
	return report, nil
}

// AnalyzeAll summarizes every participant the catalog knows about,
// a bounded number of them at a time. Participants whose log holds no
// trials (a session aborted before the first response was recorded)
// are skipped with a log line rather than failing the batch. Reports
// come back in catalog order.
func (s *AnalyzeService) AnalyzeAll(ctx context.Context) ([]*summary.Report, error) {
	participants, err := s.catalog.ListParticipants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	if len(participants) == 0 {
		return nil, nil
	}

	log.Printf("[Analyze] Summarizing %d participants (concurrency %d)", len(participants), s.concurrency)

	slots := make([]*summary.Report, len(participants))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, pid := range participants {
		g.Go(func() error {
			report, err := s.Analyze(gctx, pid)
			if errors.Is(err, core.ErrNoTrials) {
				log.Printf("[Analyze] Skipping %s: no trials logged", pid)
				return nil
			}
			if err != nil {
				return err
			}
			slots[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	reports := make([]*summary.Report, 0, len(slots))
	for _, r := range slots {
		if r != nil {
			reports = append(reports, r)
		}
	}
	return reports, nil
}

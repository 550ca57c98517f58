package excel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"banditlab/domain/quest"
	"banditlab/domain/summary"
	"banditlab/domain/trial"
	"banditlab/ports"
)

const workbookSuffix = "_report.xlsx"

// Exporter writes one workbook per participant with a sheet each for
// the raw trial log, the questionnaire battery and the derived
// summary. It implements the workbook writer port.
type Exporter struct {
	dir string
}

// NewExporter creates an exporter that writes workbooks into dir.
func NewExporter(dir string) *Exporter {
	return &Exporter{dir: dir}
}

// WriteWorkbook renders the export bundle to <participant>_report.xlsx.
// Sheets for data that is not on file are left out.
func (e *Exporter) WriteWorkbook(ctx context.Context, export ports.ParticipantExport) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory %s: %w", e.dir, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeTrialSheet(f, export.Records); err != nil {
		return "", fmt.Errorf("failed to write trial sheet: %w", err)
	}
	if export.Responses != nil {
		if err := writeQuestionnaireSheet(f, export.Responses, export.Scores); err != nil {
			return "", fmt.Errorf("failed to write questionnaire sheet: %w", err)
		}
	}
	if export.Report != nil {
		if err := writeSummarySheet(f, export.Report); err != nil {
			return "", fmt.Errorf("failed to write summary sheet: %w", err)
		}
	}

	// The trial sheet replaces the default sheet, so it is already
	// first and active.
	path := filepath.Join(e.dir, string(export.Participant)+workbookSuffix)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return path, nil
}

// writeTrialSheet renames the default sheet and fills it with the same
// columns as the on-disk trial log, as typed cells.
func writeTrialSheet(f *excelize.File, records []trial.Record) error {
	const sheet = "Trials"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}

	header := []interface{}{
		"mode", "trial", "choice", "reaction_time", "reward", "condition",
		"reward_prob_1", "reward_prob_2", "payoff_1", "payoff_2",
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}

	for i, r := range records {
		var choice, reaction interface{}
		if r.Choice.Made {
			choice = r.Choice.Arm
			reaction = r.Choice.Reaction.Seconds()
		} else {
			choice, reaction = "", ""
		}
		row := []interface{}{
			string(r.Mode), r.Trial, choice, reaction,
			r.Outcome.Reward, r.Outcome.Condition.Code(),
			r.Prob1, r.Prob2, r.Payoff1, r.Payoff2,
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

// writeQuestionnaireSheet lays the battery out as field/value rows,
// using the same field names as the questionnaire CSV.
func writeQuestionnaireSheet(f *excelize.File, responses *quest.ResponseSet, scores quest.Scores) error {
	const sheet = "Questionnaire"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"field", "value"},
		{"participant_id", string(responses.ParticipantID)},
	}
	for i, v := range responses.BIS {
		rows = append(rows, []interface{}{fmt.Sprintf("bis_%d", i+1), v})
	}
	for i, v := range responses.SSS {
		rows = append(rows, []interface{}{fmt.Sprintf("sss_%d", i+1), string(v)})
	}
	rows = append(rows,
		[]interface{}{"bis_total", scores.BISTotal},
		[]interface{}{"SST", scores.Thrill},
		[]interface{}{"SSE", scores.Experience},
		[]interface{}{"SSD", scores.Disinhibition},
		[]interface{}{"SSB", scores.Boredom},
		[]interface{}{"ss_total", scores.SensationTotal},
		[]interface{}{"ss_percent", scores.Percent},
	)
	for i, item := range quest.DebriefItems() {
		rows = append(rows, []interface{}{item.Column, responses.Debrief[i]})
	}

	for i, row := range rows {
		if err := setRow(f, sheet, i+1, row); err != nil {
			return err
		}
	}
	return nil
}

// writeSummarySheet renders the per-phase statistics side by side,
// then the payout figures.
func writeSummarySheet(f *excelize.File, report *summary.Report) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"metric", "practice", "main"},
	}
	rows = append(rows, phaseRows(report.Practice, report.Main)...)
	rows = append(rows,
		[]interface{}{"max_wins", report.MaxWins, ""},
		[]interface{}{"bonus_eur", report.Bonus, ""},
	)

	for i, row := range rows {
		if err := setRow(f, sheet, i+1, row); err != nil {
			return err
		}
	}
	return nil
}

func phaseRows(practice, main summary.PhaseStats) [][]interface{} {
	return [][]interface{}{
		{"trials", practice.Trials, main.Trials},
		{"missed", practice.Missed, main.Missed},
		{"wins", practice.Wins, main.Wins},
		{"win_rate", practice.WinRate, main.WinRate},
		{"non_salient", practice.NonSalient, main.NonSalient},
		{"salient", practice.Salient, main.Salient},
		{"left_choices", practice.ArmCounts[trial.ArmLeft], main.ArmCounts[trial.ArmLeft]},
		{"right_choices", practice.ArmCounts[trial.ArmRight], main.ArmCounts[trial.ArmRight]},
		{"rt_count", practice.Reaction.Count, main.Reaction.Count},
		{"rt_mean", practice.Reaction.Mean, main.Reaction.Mean},
		{"rt_std", practice.Reaction.StdDev, main.Reaction.StdDev},
		{"rt_min", practice.Reaction.Min, main.Reaction.Min},
		{"rt_max", practice.Reaction.Max, main.Reaction.Max},
		{"rt_median", practice.Reaction.Median, main.Reaction.Median},
		{"rt_q25", practice.Reaction.Q25, main.Reaction.Q25},
		{"rt_q75", practice.Reaction.Q75, main.Reaction.Q75},
		{"rt_skewness", practice.Reaction.Skewness, main.Reaction.Skewness},
		{"rt_kurtosis", practice.Reaction.Kurtosis, main.Reaction.Kurtosis},
		{"rt_normal_p", practice.Reaction.NormalP, main.Reaction.NormalP},
		{"rt_is_normal", practice.Reaction.IsNormal, main.Reaction.IsNormal},
	}
}

func setRow(f *excelize.File, sheet string, rowIdx int, values []interface{}) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, rowIdx)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

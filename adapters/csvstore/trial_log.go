package csvstore

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"banditlab/domain/core"
	"banditlab/domain/trial"
)

// trialLogSuffix names the per-participant trial log files.
const trialLogSuffix = "_task_data.csv"

// trialHeader is the fixed column order of a participant's trial log.
var trialHeader = []string{
	"mode", "trial", "choice", "reaction_time", "reward",
	"condition", "reward_prob_1", "reward_prob_2", "payoff_1", "payoff_2",
}

// TrialWriter implements TrialWriterPort on a per-participant CSV file.
// The file is truncated on open and every append is flushed before the
// next trial starts, so a crash loses at most the row in flight.
type TrialWriter struct {
	file   *os.File
	writer *csv.Writer
	path   string
}

// NewTrialWriter creates the participant's trial log and writes the
// header row. An existing log for the same participant is overwritten.
func NewTrialWriter(dataDir string, pid core.ParticipantID) (*TrialWriter, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}

	path := trialLogPath(dataDir, pid)
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create trial log %s: %w", path, err)
	}

	w := &TrialWriter{file: file, writer: csv.NewWriter(file), path: path}
	if err := w.writer.Write(trialHeader); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write trial log header: %w", err)
	}
	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to flush trial log header: %w", err)
	}
	return w, nil
}

// Append writes one trial row and flushes it to disk.
func (w *TrialWriter) Append(ctx context.Context, record trial.Record) error {
	if err := w.writer.Write(trialRow(record)); err != nil {
		return fmt.Errorf("failed to write trial row: %w", err)
	}
	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		return fmt.Errorf("failed to flush trial row: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync trial log: %w", err)
	}
	return nil
}

// Close flushes any buffered output and closes the log file.
func (w *TrialWriter) Close() error {
	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to flush trial log: %w", err)
	}
	return w.file.Close()
}

// Path returns where the log is being written.
func (w *TrialWriter) Path() string {
	return w.path
}

func trialRow(r trial.Record) []string {
	choice := ""
	reaction := ""
	if r.Choice.Made {
		choice = strconv.Itoa(r.Choice.Arm)
		reaction = r.Choice.Reaction.String()
	}
	return []string{
		string(r.Mode),
		strconv.Itoa(r.Trial),
		choice,
		reaction,
		strconv.Itoa(r.Outcome.Reward),
		strconv.Itoa(r.Outcome.Condition.Code()),
		formatFloat(r.Prob1),
		formatFloat(r.Prob2),
		strconv.Itoa(r.Payoff1),
		strconv.Itoa(r.Payoff2),
	}
}

// TrialReader implements TrialReaderPort over the same per-participant
// CSV files the writer produces.
type TrialReader struct {
	dataDir string
}

// NewTrialReader creates a reader rooted at the collected-data directory.
func NewTrialReader(dataDir string) *TrialReader {
	return &TrialReader{dataDir: dataDir}
}

// ListParticipants returns every participant with a trial log in the
// data directory, sorted by ID.
func (r *TrialReader) ListParticipants(ctx context.Context) ([]core.ParticipantID, error) {
	matches, err := filepath.Glob(filepath.Join(r.dataDir, "*"+trialLogSuffix))
	if err != nil {
		return nil, fmt.Errorf("failed to scan data directory %s: %w", r.dataDir, err)
	}

	ids := make([]core.ParticipantID, 0, len(matches))
	for _, match := range matches {
		name := strings.TrimSuffix(filepath.Base(match), trialLogSuffix)
		if name == "" {
			continue
		}
		ids = append(ids, core.ParticipantID(name))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// ReadTrials loads one participant's complete trial log.
func (r *TrialReader) ReadTrials(ctx context.Context, participantID core.ParticipantID) ([]trial.Record, error) {
	path := trialLogPath(r.dataDir, participantID)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, core.NewNotFoundError("trial log", string(participantID))
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trial log %s: %w", path, err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read trial log %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("trial log %s has no header row", path)
	}

	records := make([]trial.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		record, err := parseTrialRow(row)
		if err != nil {
			return nil, fmt.Errorf("trial log %s row %d: %w", path, i+1, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func parseTrialRow(row []string) (trial.Record, error) {
	if len(row) != len(trialHeader) {
		return trial.Record{}, fmt.Errorf("expected %d columns, got %d", len(trialHeader), len(row))
	}

	var r trial.Record
	r.Mode = trial.Mode(row[0])

	num, err := strconv.Atoi(row[1])
	if err != nil {
		return trial.Record{}, fmt.Errorf("invalid trial number %q: %w", row[1], err)
	}
	r.Trial = num

	if row[2] != "" {
		arm, err := strconv.Atoi(row[2])
		if err != nil {
			return trial.Record{}, fmt.Errorf("invalid choice %q: %w", row[2], err)
		}
		seconds, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return trial.Record{}, fmt.Errorf("invalid reaction time %q: %w", row[3], err)
		}
		r.Choice = trial.Choice{
			Made:     true,
			Arm:      arm,
			Reaction: core.NewReactionTime(time.Duration(seconds * float64(time.Second))),
		}
	}

	reward, err := strconv.Atoi(row[4])
	if err != nil {
		return trial.Record{}, fmt.Errorf("invalid reward %q: %w", row[4], err)
	}
	code, err := strconv.Atoi(row[5])
	if err != nil {
		return trial.Record{}, fmt.Errorf("invalid condition %q: %w", row[5], err)
	}
	condition, err := conditionFromCode(code)
	if err != nil {
		return trial.Record{}, err
	}
	r.Outcome = trial.Outcome{Reward: reward, Condition: condition}

	if r.Prob1, err = strconv.ParseFloat(row[6], 64); err != nil {
		return trial.Record{}, fmt.Errorf("invalid reward_prob_1 %q: %w", row[6], err)
	}
	if r.Prob2, err = strconv.ParseFloat(row[7], 64); err != nil {
		return trial.Record{}, fmt.Errorf("invalid reward_prob_2 %q: %w", row[7], err)
	}
	if r.Payoff1, err = strconv.Atoi(row[8]); err != nil {
		return trial.Record{}, fmt.Errorf("invalid payoff_1 %q: %w", row[8], err)
	}
	if r.Payoff2, err = strconv.Atoi(row[9]); err != nil {
		return trial.Record{}, fmt.Errorf("invalid payoff_2 %q: %w", row[9], err)
	}
	return r, nil
}

func conditionFromCode(code int) (trial.Condition, error) {
	switch code {
	case 0:
		return trial.ConditionNonSalient, nil
	case 1:
		return trial.ConditionSalient, nil
	case 2:
		return trial.ConditionMissed, nil
	default:
		return "", fmt.Errorf("unknown condition code %d", code)
	}
}

func trialLogPath(dataDir string, pid core.ParticipantID) string {
	return filepath.Join(dataDir, string(pid)+trialLogSuffix)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package csvstore

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"banditlab/domain/core"
	"banditlab/domain/quest"
)

// QuestionnaireStore persists one row per participant holding the raw
// item responses, the derived scores and the debrief answers. It
// implements both the writer and the reader port.
type QuestionnaireStore struct {
	dataDir string
}

// NewQuestionnaireStore creates a store rooted at the collected-data
// directory.
func NewQuestionnaireStore(dataDir string) *QuestionnaireStore {
	return &QuestionnaireStore{dataDir: dataDir}
}

// questionnaireHeader builds the fixed 40-column header: participant id,
// raw BIS and SSS responses, derived scores, then the debrief columns.
func questionnaireHeader() []string {
	header := []string{"participant_id"}
	for i := 0; i < quest.BISCount; i++ {
		header = append(header, fmt.Sprintf("bis_%d", i+1))
	}
	for i := 0; i < quest.SSSCount; i++ {
		header = append(header, fmt.Sprintf("sss_%d", i+1))
	}
	header = append(header, "bis_total", "SST", "SSE", "SSD", "SSB", "ss_total", "ss_percent")
	for _, item := range quest.DebriefItems() {
		header = append(header, item.Column)
	}
	return header
}

// Write persists the participant's complete battery as a single row,
// overwriting any earlier file for the same participant.
func (s *QuestionnaireStore) Write(ctx context.Context, responses *quest.ResponseSet, scores quest.Scores) error {
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", s.dataDir, err)
	}

	path := questionnairePath(s.dataDir, responses.ParticipantID)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create questionnaire file %s: %w", path, err)
	}
	defer file.Close()

	row := []string{string(responses.ParticipantID)}
	for _, v := range responses.BIS {
		row = append(row, strconv.Itoa(v))
	}
	for _, v := range responses.SSS {
		row = append(row, string(v))
	}
	row = append(row,
		strconv.Itoa(scores.BISTotal),
		strconv.Itoa(scores.Thrill),
		strconv.Itoa(scores.Experience),
		strconv.Itoa(scores.Disinhibition),
		strconv.Itoa(scores.Boredom),
		formatFloat(scores.SensationTotal),
		formatFloat(scores.Percent),
	)
	row = append(row, responses.Debrief[:]...)

	w := csv.NewWriter(file)
	if err := w.Write(questionnaireHeader()); err != nil {
		return fmt.Errorf("failed to write questionnaire header: %w", err)
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("failed to write questionnaire row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush questionnaire file: %w", err)
	}
	return nil
}

// ReadQuestionnaire loads one participant's persisted battery back.
func (s *QuestionnaireStore) ReadQuestionnaire(ctx context.Context, participantID core.ParticipantID) (*quest.ResponseSet, quest.Scores, error) {
	path := questionnairePath(s.dataDir, participantID)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, quest.Scores{}, core.NewNotFoundError("questionnaire", string(participantID))
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, quest.Scores{}, fmt.Errorf("failed to open questionnaire file %s: %w", path, err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, quest.Scores{}, fmt.Errorf("failed to read questionnaire file %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, quest.Scores{}, fmt.Errorf("questionnaire file %s has no data row", path)
	}

	row := rows[1]
	want := len(questionnaireHeader())
	if len(row) != want {
		return nil, quest.Scores{}, fmt.Errorf("questionnaire file %s: expected %d columns, got %d", path, want, len(row))
	}

	rs := &quest.ResponseSet{ParticipantID: core.ParticipantID(row[0])}
	col := 1
	for i := 0; i < quest.BISCount; i++ {
		v, err := strconv.Atoi(row[col])
		if err != nil {
			return nil, quest.Scores{}, fmt.Errorf("invalid bis_%d value %q: %w", i+1, row[col], err)
		}
		rs.BIS[i] = v
		col++
	}
	for i := 0; i < quest.SSSCount; i++ {
		rs.SSS[i] = quest.Option(row[col])
		col++
	}

	var scores quest.Scores
	if scores.BISTotal, err = strconv.Atoi(row[col]); err != nil {
		return nil, quest.Scores{}, fmt.Errorf("invalid bis_total %q: %w", row[col], err)
	}
	col++
	if scores.Thrill, err = strconv.Atoi(row[col]); err != nil {
		return nil, quest.Scores{}, fmt.Errorf("invalid SST %q: %w", row[col], err)
	}
	col++
	if scores.Experience, err = strconv.Atoi(row[col]); err != nil {
		return nil, quest.Scores{}, fmt.Errorf("invalid SSE %q: %w", row[col], err)
	}
	col++
	if scores.Disinhibition, err = strconv.Atoi(row[col]); err != nil {
		return nil, quest.Scores{}, fmt.Errorf("invalid SSD %q: %w", row[col], err)
	}
	col++
	if scores.Boredom, err = strconv.Atoi(row[col]); err != nil {
		return nil, quest.Scores{}, fmt.Errorf("invalid SSB %q: %w", row[col], err)
	}
	col++
	if scores.SensationTotal, err = strconv.ParseFloat(row[col], 64); err != nil {
		return nil, quest.Scores{}, fmt.Errorf("invalid ss_total %q: %w", row[col], err)
	}
	col++
	if scores.Percent, err = strconv.ParseFloat(row[col], 64); err != nil {
		return nil, quest.Scores{}, fmt.Errorf("invalid ss_percent %q: %w", row[col], err)
	}
	col++

	for i := 0; i < quest.DebriefCount; i++ {
		rs.Debrief[i] = row[col]
		col++
	}
	return rs, scores, nil
}

func questionnairePath(dataDir string, pid core.ParticipantID) string {
	return filepath.Join(dataDir, fmt.Sprintf("%s_questionnaire_data.csv", pid))
}

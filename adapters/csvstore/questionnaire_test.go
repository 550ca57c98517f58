package csvstore

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"banditlab/domain/core"
	"banditlab/domain/quest"
)

func sampleResponseSet(pid core.ParticipantID) *quest.ResponseSet {
	rs := &quest.ResponseSet{ParticipantID: pid}
	for i := range rs.BIS {
		rs.BIS[i] = 2
	}
	rs.SSS = [quest.SSSCount]quest.Option{
		quest.OptionA, quest.OptionB, quest.OptionA, quest.OptionB,
		quest.OptionA, quest.OptionB, quest.OptionA, quest.OptionB,
	}
	rs.Debrief = [quest.DebriefCount]string{
		"Belohnungslernen untersuchen",
		"Die lauten Gewinnanimationen",
		"Ja",
		"Sehr auffällig",
		"Unsicher",
		"Ich habe öfter dieselbe Option gewählt.",
		"Nein",
		"Sehr motiviert",
		"Keine weiteren Anmerkungen",
	}
	return rs
}

func TestQuestionnaireRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	store := NewQuestionnaireStore(dir)

	rs := sampleResponseSet("vp07")
	require.NoError(t, rs.Validate())
	scores := quest.Score(rs)

	require.NoError(t, store.Write(ctx, rs, scores))

	gotResponses, gotScores, err := store.ReadQuestionnaire(ctx, "vp07")
	require.NoError(t, err)
	assert.Equal(t, rs, gotResponses)
	assert.Equal(t, scores, gotScores)
}

func TestQuestionnaireFileShape(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	store := NewQuestionnaireStore(dir)

	rs := sampleResponseSet("vp08")
	require.NoError(t, store.Write(ctx, rs, quest.Score(rs)))

	raw, err := os.ReadFile(dir + "/vp08_questionnaire_data.csv")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	require.Len(t, lines, 2)

	header := strings.Split(lines[0], ",")
	assert.Len(t, header, 40)
	assert.Equal(t, "participant_id", header[0])
	assert.Equal(t, "bis_1", header[1])
	assert.Equal(t, "bis_15", header[15])
	assert.Equal(t, "sss_1", header[16])
	assert.Equal(t, "sss_8", header[23])
	assert.Equal(t,
		[]string{"bis_total", "SST", "SSE", "SSD", "SSB", "ss_total", "ss_percent"},
		header[24:31])
	assert.Equal(t, "q-open_goal_of_study", header[31])
	assert.Equal(t, "q-open_comments", header[39])

	assert.True(t, strings.HasPrefix(lines[1], "vp08,2,2,"))
}

func TestQuestionnaireMissing(t *testing.T) {
	store := NewQuestionnaireStore(t.TempDir())
	_, _, err := store.ReadQuestionnaire(context.Background(), "nobody")
	require.Error(t, err)
	assert.True(t, core.IsNotFoundError(err))
}

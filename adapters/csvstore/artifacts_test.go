package csvstore

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"banditlab/domain/core"
	"banditlab/domain/schedule"
	"banditlab/domain/trial"
	"banditlab/domain/walk"
)

func TestScheduleStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vr_schedule.csv")
	ctx := context.Background()
	store := NewScheduleStore(path)

	sched := schedule.Generate(schedule.DefaultBlocks, rand.New(rand.NewSource(7)))
	require.NoError(t, store.SaveSchedule(ctx, sched))

	loaded, hash, err := store.LoadSchedule(ctx)
	require.NoError(t, err)
	assert.Equal(t, sched, loaded)
	assert.False(t, core.Hash(hash).IsEmpty())

	// Loading again yields the same content hash.
	_, again, err := store.LoadSchedule(ctx)
	require.NoError(t, err)
	assert.Equal(t, hash, again)
}

func TestScheduleStoreMissing(t *testing.T) {
	store := NewScheduleStore(filepath.Join(t.TempDir(), "vr_schedule.csv"))
	_, _, err := store.LoadSchedule(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrScheduleNotFound))
}

func TestScheduleStoreRejectsBadFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vr_schedule.csv")
	require.NoError(t, os.WriteFile(path, []byte("schedule\n0\n2\n"), 0o644))

	_, _, err := NewScheduleStore(path).LoadSchedule(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrScheduleFlag))
}

func TestWalkStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	store := NewWalkStore(
		filepath.Join(dir, "main_random_walk.csv"),
		filepath.Join(dir, "prac_random_walk.csv"),
	)

	mainTable := walk.Generate(walk.DefaultParams(200), rand.New(rand.NewSource(1)))
	practiceTable := walk.Generate(walk.DefaultParams(15), rand.New(rand.NewSource(2)))

	require.NoError(t, store.SaveTable(ctx, trial.ModeMain, mainTable))
	require.NoError(t, store.SaveTable(ctx, trial.ModePractice, practiceTable))

	gotMain, mainHash, err := store.LoadTable(ctx, trial.ModeMain)
	require.NoError(t, err)
	assert.Equal(t, mainTable, gotMain)

	gotPractice, practiceHash, err := store.LoadTable(ctx, trial.ModePractice)
	require.NoError(t, err)
	assert.Equal(t, practiceTable, gotPractice)

	assert.NotEqual(t, mainHash, practiceHash)
}

func TestWalkStoreMissing(t *testing.T) {
	dir := t.TempDir()
	store := NewWalkStore(
		filepath.Join(dir, "main_random_walk.csv"),
		filepath.Join(dir, "prac_random_walk.csv"),
	)
	_, _, err := store.LoadTable(context.Background(), trial.ModeMain)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrWalkNotFound))
}

func TestWalkStoreRejectsOutOfRangeProbability(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main_random_walk.csv")
	raw := "mu_1,mu_2,payoff_1,payoff_2\n1.5,0.5,1,0\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	store := NewWalkStore(path, filepath.Join(dir, "prac_random_walk.csv"))
	_, _, err := store.LoadTable(context.Background(), trial.ModeMain)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrProbabilityRange))
}

package journal

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simeksgol/GoL-destroy/internal/ir"
	"github.com/simeksgol/GoL-destroy/internal/search"
	"github.com/simeksgol/GoL-destroy/internal/testutil"
)

func openTestJournal(t *testing.T, opts ...Option) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

var testInfo = RunInfo{
	Pattern:         "demonoid.rle",
	Objects:         "124",
	MaxPoolSize:     5000,
	MaxObjects:      32,
	Seed:            1 << 63,
	Placements:      523,
	RemovedCatalyst: 3,
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Close())
}

func TestStartRun_UsesUUIDv7(t *testing.T) {
	j := openTestJournal(t)

	id, err := j.StartRun(context.Background(), testInfo)
	require.NoError(t, err)

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewDeterministicClock()
	j := openTestJournal(t, WithClock(clock), WithIDGenerator(testutil.NewFixedIDGenerator("run-1")))

	id, err := j.StartRun(ctx, testInfo)
	require.NoError(t, err)
	assert.Equal(t, "run-1", id)

	round1 := search.RoundStats{
		Objects: 1, Filtered: 1, Unfiltered: 1,
		Buckets:    []search.Bucket{{Cost: 77, Count: 1}},
		LowestCost: 77, Cutoff: 16384, Kept: 1,
	}
	round2 := search.RoundStats{Objects: 2, Filtered: 1, Unfiltered: 56}
	require.NoError(t, j.RecordRound(ctx, id, round2))
	require.NoError(t, j.RecordRound(ctx, id, round1))
	// A repeated round is ignored.
	require.NoError(t, j.RecordRound(ctx, id, search.RoundStats{Objects: 1, Filtered: 99}))

	sol := &search.Solution{
		Placements:  []ir.Placement{{Type: 0, X: 4, Y: -1}, {Type: 0, X: -3, Y: -3}},
		PrefixCosts: []int{77},
	}
	require.NoError(t, j.RecordSolution(ctx, id, sol, "x = 1, y = 1, rule = LifeHistory\nA!\n"))
	require.NoError(t, j.FinishRun(ctx, id, search.OutcomeSuccess, 2))

	run, err := j.ReadRun(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, testInfo, run.Info)
	assert.Equal(t, ir.SearchVersion, run.SearchVersion)
	assert.True(t, run.StartedAt.Equal(testutil.DeterministicClockEpoch))
	assert.True(t, run.FinishedAt.After(run.StartedAt))
	assert.Equal(t, search.OutcomeSuccess, run.Outcome)
	assert.Equal(t, 2, run.Rounds)
	assert.Equal(t, []search.RoundStats{round1, round2}, run.Trace)

	require.NotNil(t, run.Solution)
	assert.Equal(t, sol.Placements, run.Solution.Placements)
	assert.Equal(t, []int{77}, run.Solution.PrefixCosts)
	assert.Equal(t, ir.SolutionDigest(sol.Placements), run.Solution.Digest)
	assert.Equal(t, "x = 1, y = 1, rule = LifeHistory\nA!\n", run.Solution.Pattern)
}

func TestReadRun_Unfinished(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	id, err := j.StartRun(ctx, testInfo)
	require.NoError(t, err)

	run, err := j.ReadRun(ctx, id)
	require.NoError(t, err)
	assert.True(t, run.FinishedAt.IsZero())
	assert.Equal(t, search.OutcomeContinue, run.Outcome)
	assert.Empty(t, run.Trace)
	assert.Nil(t, run.Solution)
}

func TestReadRun_NotFound(t *testing.T) {
	j := openTestJournal(t)
	_, err := j.ReadRun(context.Background(), "missing")
	require.ErrorIs(t, err, ErrRunNotFound)
}

func TestFinishRun_NotFound(t *testing.T) {
	j := openTestJournal(t)
	err := j.FinishRun(context.Background(), "missing", search.OutcomeNoContinuation, 1)
	require.ErrorIs(t, err, ErrRunNotFound)
}

func TestRecordRound_UnknownRun(t *testing.T) {
	j := openTestJournal(t)
	err := j.RecordRound(context.Background(), "missing", search.RoundStats{Objects: 1})
	assert.Error(t, err, "foreign keys are enforced")
}

func TestFindSolutions(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)
	sol := &search.Solution{Placements: []ir.Placement{{Type: 0, X: -3, Y: -1}}}

	var ids []string
	for i := 0; i < 2; i++ {
		id, err := j.StartRun(ctx, testInfo)
		require.NoError(t, err)
		require.NoError(t, j.RecordSolution(ctx, id, sol, ""))
		ids = append(ids, id)
	}
	other, err := j.StartRun(ctx, testInfo)
	require.NoError(t, err)
	require.NoError(t, j.RecordSolution(ctx, other, &search.Solution{Placements: []ir.Placement{{Type: 1}}}, ""))

	found, err := j.FindSolutions(ctx, ir.SolutionDigest(sol.Placements))
	require.NoError(t, err)
	assert.ElementsMatch(t, ids, found)

	none, err := j.FindSolutions(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, none)
}

package state

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weft-dev/weft/internal/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleRunLog(id core.RunID, createdAt time.Time) *core.RunLog {
	log := core.NewRunLog(id, map[string]string{"topic": "oceans"})
	log.CreatedAt = createdAt
	log.AddStep(core.Step{
		NodeID:   "entry",
		NodeName: "Entry",
		Status:   core.NodeStatusSuccess,
		Output:   `{"topic":"oceans"}`,
	})
	log.AddStep(core.Step{
		NodeID:   "g1",
		NodeName: "Summarize",
		Status:   core.NodeStatusSuccess,
		Output:   "Oceans cover 70% of Earth.",
		Latency:  120 * time.Millisecond,
	})
	log.SetOutput(core.OutputFinal, "Result: Oceans cover 70% of Earth.")
	log.CompletedAt = createdAt.Add(150 * time.Millisecond)
	return log
}

func TestStore_SaveAndLoad(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	saved := sampleRunLog("run-1", time.Now())
	require.NoError(t, store.SaveRun(ctx, saved))

	loaded, err := store.LoadRun(ctx, "run-1")
	require.NoError(t, err)

	assert.Equal(t, saved.ID, loaded.ID)
	assert.Equal(t, core.RunStatusSuccess, loaded.Status)
	assert.Equal(t, saved.Inputs, loaded.Inputs)
	assert.Equal(t, saved.Outputs, loaded.Outputs)
	require.Len(t, loaded.Steps, 2)
	assert.Equal(t, "Oceans cover 70% of Earth.", loaded.Steps[1].Output)
	assert.Equal(t, 120*time.Millisecond, loaded.Steps[1].Latency)
	assert.WithinDuration(t, saved.CreatedAt, loaded.CreatedAt, time.Millisecond)
}

func TestStore_SaveReplacesExisting(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := sampleRunLog("run-1", time.Now())
	require.NoError(t, store.SaveRun(ctx, first))

	second := sampleRunLog("run-1", time.Now())
	second.AddStep(core.Step{NodeID: "exit", Status: core.NodeStatusError, Output: "boom"})
	require.NoError(t, store.SaveRun(ctx, second))

	loaded, err := store.LoadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, core.RunStatusError, loaded.Status)
	assert.Len(t, loaded.Steps, 3)
}

func TestStore_LoadMissing(t *testing.T) {
	store := openTestStore(t)

	_, err := store.LoadRun(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, core.IsCategory(err, core.ErrCatNotFound))

	var domErr *core.DomainError
	require.ErrorAs(t, err, &domErr)
	assert.Equal(t, core.CodeRunNotFound, domErr.Code)
}

func TestStore_ListRuns(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Now()
	require.NoError(t, store.SaveRun(ctx, sampleRunLog("run-old", base.Add(-time.Hour))))
	require.NoError(t, store.SaveRun(ctx, sampleRunLog("run-new", base)))

	summaries, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, core.RunID("run-new"), summaries[0].ID)
	assert.Equal(t, core.RunID("run-old"), summaries[1].ID)
	assert.Equal(t, 2, summaries[0].Steps)

	limited, err := store.ListRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, core.RunID("run-new"), limited[0].ID)
}

func TestStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runs.db")
	ctx := context.Background()

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.SaveRun(ctx, sampleRunLog("run-1", time.Now())))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	loaded, err := reopened.LoadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, core.RunID("run-1"), loaded.ID)
}

package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsLabeler/internal/domain"
)

func newStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	return store
}

func TestCheckpointRoundTrip(t *testing.T) {
	t.Parallel()

	store := newStore(t)

	_, found, err := store.LoadCheckpoint()
	require.NoError(t, err)
	assert.False(t, found)

	cp := domain.Checkpoint{
		RunID:              "run-1",
		LastProcessedIndex: 40,
		TotalCost:          0.123,
		ProcessedCount:     38,
		SuccessfulCount:    35,
		StartTime:          time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
		LastUpdate:         time.Date(2026, 8, 30, 10, 5, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveCheckpoint(cp))

	got, found, err := store.LoadCheckpoint()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, cp, got)
}

func TestCheckpointCorruptFile(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "checkpoint.json"), []byte("{nope"), 0o644))

	_, _, err := store.LoadCheckpoint()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse checkpoint")
}

func TestAppendResultsAccumulates(t *testing.T) {
	t.Parallel()

	store := newStore(t)

	first, err := store.LoadResults()
	require.NoError(t, err)
	assert.Empty(t, first)

	batch1 := []domain.Outcome{
		{Index: 0, Success: true, ModelUsed: "m", Cost: 0.001,
			Labels: []domain.LabelPrediction{{Label: "Môi trường", Confidence: 0.9}}},
		{Index: 1, Success: false, Error: "boom"},
	}
	batch2 := []domain.Outcome{
		{Index: 2, Success: true, ModelUsed: "m", Cost: 0.002, UsedFallback: true},
	}
	require.NoError(t, store.AppendResults(batch1))
	require.NoError(t, store.AppendResults(batch2))

	all, err := store.LoadResults()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 0, all[0].Index)
	assert.Equal(t, "Môi trường", all[0].Labels[0].Label)
	assert.Equal(t, "boom", all[1].Error)
	assert.True(t, all[2].UsedFallback)
}

func TestSaveSummary(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	require.NoError(t, store.SaveSummary(domain.Summary{RunID: "run-9", TotalRecords: 100}))

	raw, err := os.ReadFile(filepath.Join(store.Dir(), "processing_summary.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"run-9"`)
}

func TestWriteFinalCSV(t *testing.T) {
	t.Parallel()

	store := newStore(t)

	path, err := store.WriteFinalCSV(
		[]string{"Tieu_de", "Predicted_labels"},
		[][]string{{"Bài một", "Môi trường"}, {"Bài hai", ""}},
	)
	require.NoError(t, err)
	assert.Equal(t, store.FinalCSVPath(), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Tieu_de", "Predicted_labels"}, rows[0])
	assert.Equal(t, []string{"Bài hai", ""}, rows[2])
}

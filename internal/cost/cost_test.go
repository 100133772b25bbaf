package cost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableCost(t *testing.T) {
	t.Parallel()

	table := NewTable(nil, "gpt-4o-mini-2024-07-18")

	got := table.Cost("gpt-4o-mini-2024-07-18", 1000, 1000)
	assert.InDelta(t, 0.00030, got, 1e-9)

	assert.Zero(t, table.Cost("gpt-4o-mini-2024-07-18", 0, 0))
}

func TestTableUnknownModelFallsBack(t *testing.T) {
	t.Parallel()

	table := NewTable(nil, "gpt-4o-mini")

	rate := table.Rate("some-future-model")
	assert.InDelta(t, 0.00015, rate.Input, 1e-9)
	assert.InDelta(t, 0.00015, rate.Output, 1e-9)

	// Known and unknown models price identically under the flat gateway
	// rate, so the fallback must not distort totals.
	assert.InDelta(t,
		table.Cost("gpt-4o-mini", 500, 100),
		table.Cost("some-future-model", 500, 100),
		1e-9,
	)
}

func TestEstimateResponseTokens(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 20, EstimateResponseTokens(0))
	assert.Equal(t, 120, EstimateResponseTokens(2))
}

func TestEstimateDataset(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenizer("gpt-4o-mini", nil)
	if err != nil {
		t.Skipf("tokenizer unavailable: %v", err)
	}

	table := NewTable(nil, "gpt-4o-mini")
	est := EstimateDataset(table, tok, 100, 2000, "gpt-4o-mini")

	assert.Equal(t, 100, est.DatasetSize)
	assert.Equal(t, "gpt-4o-mini", est.Model)
	assert.True(t, est.Estimated)
	assert.Greater(t, est.AvgInputTokens, systemPromptTokens)
	assert.Equal(t, EstimateResponseTokens(estimateAvgLabels), est.AvgOutputTokens)
	assert.Greater(t, est.TotalCost, 0.0)
	require.InDelta(t, est.TotalCost/100, est.CostPerRecord, 1e-12)

	empty := EstimateDataset(table, tok, 0, 0, "gpt-4o-mini")
	assert.Zero(t, empty.TotalCost)
	assert.Zero(t, empty.CostPerRecord)
}

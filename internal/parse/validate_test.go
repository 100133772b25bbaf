package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsLabeler/internal/domain"
)

func TestCleanLabelsFiltersTaxonomy(t *testing.T) {
	t.Parallel()

	cands := []Candidate{
		{Label: "Môi trường", Confidence: 0.9},
		{Label: "Thể thao", Confidence: 0.8},
	}

	cleaned, warnings := CleanLabels(cands)
	require.Len(t, cleaned, 1)
	assert.Equal(t, "Môi trường", cleaned[0].Label)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], `invalid label: "Thể thao"`)
}

func TestCleanLabelsClampsConfidence(t *testing.T) {
	t.Parallel()

	cleaned, warnings := CleanLabels([]Candidate{
		{Label: "Đất đai", Confidence: -0.3},
		{Label: "Môi trường", Confidence: 1.7},
	})
	require.Len(t, cleaned, 2)
	assert.Empty(t, warnings)
	assert.Equal(t, 0.0, cleaned[0].Confidence)
	assert.Equal(t, 1.0, cleaned[1].Confidence)
}

func TestCleanLabelsSubstitutesDefaultConfidence(t *testing.T) {
	t.Parallel()

	cleaned, warnings := CleanLabels([]Candidate{
		{Label: "Tài nguyên nước", Confidence: "rất cao"},
	})
	require.Len(t, cleaned, 1)
	assert.Equal(t, 0.5, cleaned[0].Confidence)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "using default 0.5")
}

func TestCleanLabelsTrimsWhitespace(t *testing.T) {
	t.Parallel()

	cleaned, warnings := CleanLabels([]Candidate{
		{Label: "  Môi trường  ", Confidence: 0.8},
	})
	require.Len(t, cleaned, 1)
	assert.Empty(t, warnings)
	assert.Equal(t, "Môi trường", cleaned[0].Label)
}

func TestCheckQuality(t *testing.T) {
	t.Parallel()

	pred := func(label string, conf float64) domain.LabelPrediction {
		return domain.LabelPrediction{Label: label, Confidence: conf}
	}

	ok, issues := CheckQuality(nil, 0.7)
	assert.False(t, ok)
	require.Len(t, issues, 1)
	assert.Equal(t, "no labels predicted", issues[0])

	ok, issues = CheckQuality([]domain.LabelPrediction{pred("Môi trường", 0.9)}, 0.7)
	assert.True(t, ok)
	assert.Empty(t, issues)

	ok, issues = CheckQuality([]domain.LabelPrediction{pred("Môi trường", 0.4)}, 0.7)
	assert.False(t, ok)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0], "low confidence labels: Môi trường")

	many := []domain.LabelPrediction{
		pred("Môi trường", 0.9),
		pred("Đất đai", 0.9),
		pred("Tài nguyên nước", 0.9),
		pred("Viễn thám", 0.9),
		pred("Khác", 0.9),
	}
	ok, issues = CheckQuality(many, 0.7)
	assert.False(t, ok)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0], "too many labels predicted: 5")
}

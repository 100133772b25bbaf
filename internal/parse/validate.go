package parse

import (
	"fmt"
	"strings"

	"NewsLabeler/internal/domain"
	"NewsLabeler/internal/labels"
)

// maxReasonableLabels flags records where the model predicted so many labels
// it was probably confused.
const maxReasonableLabels = 4

const defaultConfidence = 0.5

// CleanLabels filters candidates against the fixed taxonomy and normalizes
// confidences. Every dropped label and every substituted confidence emits a
// warning so no data loss is silent.
func CleanLabels(cands []Candidate) ([]domain.LabelPrediction, []string) {
	cleaned := make([]domain.LabelPrediction, 0, len(cands))
	var warnings []string

	for _, cand := range cands {
		name := strings.TrimSpace(cand.Label)
		if !labels.IsValid(name) {
			warnings = append(warnings, fmt.Sprintf("invalid label: %q - skipping", name))
			continue
		}

		confidence, ok := toFloat(cand.Confidence)
		if !ok {
			confidence = defaultConfidence
			warnings = append(warnings, fmt.Sprintf("invalid confidence for %q - using default %.1f", name, defaultConfidence))
		}
		confidence = clamp(confidence, 0.0, 1.0)

		cleaned = append(cleaned, domain.LabelPrediction{Label: name, Confidence: confidence})
	}

	return cleaned, warnings
}

// CheckQuality applies review heuristics to a cleaned prediction list. The
// issues it returns annotate the outcome for operators; they never reject it.
func CheckQuality(preds []domain.LabelPrediction, minConfidence float64) (bool, []string) {
	var issues []string

	if len(preds) == 0 {
		return false, []string{"no labels predicted"}
	}

	var lowConfidence []string
	for _, p := range preds {
		if p.Confidence < minConfidence {
			lowConfidence = append(lowConfidence, p.Label)
		}
	}
	if len(lowConfidence) > 0 {
		issues = append(issues, fmt.Sprintf("low confidence labels: %s", strings.Join(lowConfidence, ", ")))
	}

	if len(preds) > maxReasonableLabels {
		issues = append(issues, fmt.Sprintf("too many labels predicted: %d", len(preds)))
	}

	return len(issues) == 0, issues
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package cost

import "strings"

// systemPromptTokens is the rough size of the fixed system turn used when
// extrapolating dataset cost without rendering every prompt.
const systemPromptTokens = 500

// estimateAvgLabels is the assumed number of labels per record for output
// sizing in pre-flight estimates.
const estimateAvgLabels = 2

// Estimate is a pre-flight cost preview for a whole dataset, extrapolated
// linearly from a small sample.
type Estimate struct {
	DatasetSize     int     `json:"dataset_size"`
	AvgInputTokens  int     `json:"avg_input_tokens"`
	AvgOutputTokens int     `json:"avg_output_tokens"`
	TotalCost       float64 `json:"total_cost"`
	CostPerRecord   float64 `json:"cost_per_record"`
	Model           string  `json:"model"`
	Estimated       bool    `json:"estimated"`
}

// EstimateDataset extrapolates processing cost for size records whose
// combined text averages avgTextLength characters. O(sample), not
// O(dataset): the caller supplies the average from a small prefix sample.
func EstimateDataset(table *Table, tok *Tokenizer, size, avgTextLength int, model string) Estimate {
	avgTextTokens := tok.Count(strings.Repeat("a", avgTextLength))
	avgInput := systemPromptTokens + avgTextTokens
	avgOutput := EstimateResponseTokens(estimateAvgLabels)

	total := table.Cost(model, avgInput*size, avgOutput*size)

	perRecord := 0.0
	if size > 0 {
		perRecord = total / float64(size)
	}

	return Estimate{
		DatasetSize:     size,
		AvgInputTokens:  avgInput,
		AvgOutputTokens: avgOutput,
		TotalCost:       total,
		CostPerRecord:   perRecord,
		Model:           model,
		Estimated:       true,
	}
}

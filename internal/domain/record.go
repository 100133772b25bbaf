package domain

import "time"

// Record is a dataset row validated and flattened for classification.
type Record struct {
	Index        int
	Title        string
	Description  string
	Content      string
	CombinedText string
}

// LabelPrediction pairs a taxonomy label with the model's confidence.
type LabelPrediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Outcome is the persisted result of attempting to classify one record.
type Outcome struct {
	Index         int               `json:"index"`
	Success       bool              `json:"success"`
	Labels        []LabelPrediction `json:"labels,omitempty"`
	ModelUsed     string            `json:"model_used,omitempty"`
	Cost          float64           `json:"cost"`
	Warnings      []string          `json:"warnings,omitempty"`
	QualityIssues []string          `json:"quality_issues,omitempty"`
	UsedFallback  bool              `json:"used_fallback,omitempty"`
	Error         string            `json:"error,omitempty"`
	RawResponse   string            `json:"raw_response,omitempty"`
}

// Checkpoint is the durable cursor plus running totals for resumable runs.
// LastProcessedIndex is monotonically non-decreasing over a dataset run.
type Checkpoint struct {
	RunID              string    `json:"run_id"`
	LastProcessedIndex int       `json:"last_processed_index"`
	TotalCost          float64   `json:"total_cost"`
	ProcessedCount     int       `json:"processed_count"`
	SuccessfulCount    int       `json:"successful_count"`
	StartTime          time.Time `json:"start_time"`
	LastUpdate         time.Time `json:"last_update"`
}

// Summary aggregates a completed (or interrupted) processing run.
type Summary struct {
	RunID                string  `json:"run_id"`
	TotalRecords         int     `json:"total_records_in_dataset"`
	RecordsProcessed     int     `json:"records_processed"`
	Successful           int     `json:"successful_classifications"`
	SuccessRate          float64 `json:"success_rate"`
	TotalCost            float64 `json:"total_cost"`
	AverageCostPerRecord float64 `json:"average_cost_per_record"`
	StartTime            string  `json:"start_time"`
	EndTime              string  `json:"end_time"`
	BatchSizeUsed        int     `json:"batch_size_used"`
	Interrupted          bool    `json:"interrupted,omitempty"`
}

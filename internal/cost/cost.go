package cost

import (
	"log/slog"

	"github.com/pkoukk/tiktoken-go"
)

// Rate is the price per 1000 tokens for one model.
type Rate struct {
	Input  float64
	Output float64
}

// defaultRate is the estimated third-party gateway price applied to models
// missing from the table ($0.15 per 1M tokens on both sides).
var defaultRate = Rate{Input: 0.00015, Output: 0.00015}

// Table resolves model pricing. It is built once at construction and never
// mutated afterwards; unknown models resolve to the default estimated rate
// with a single warning per model.
type Table struct {
	rates  map[string]Rate
	logger *slog.Logger
	warned map[string]bool
}

// NewTable prices the given models at the default gateway rate. Additional
// models encountered later fall back to the same rate.
func NewTable(logger *slog.Logger, models ...string) *Table {
	rates := make(map[string]Rate, len(models))
	for _, m := range models {
		rates[m] = defaultRate
	}
	return &Table{rates: rates, logger: logger, warned: map[string]bool{}}
}

// Rate returns the pricing for model, falling back to the default estimated
// rate for unknown models.
func (t *Table) Rate(model string) Rate {
	if rate, ok := t.rates[model]; ok {
		return rate
	}
	if !t.warned[model] {
		t.warned[model] = true
		if t.logger != nil {
			t.logger.Warn("using estimated pricing for unknown model", "model", model)
		}
	}
	return defaultRate
}

// Cost converts billed token counts into dollars for model.
func (t *Table) Cost(model string, inputTokens, outputTokens int) float64 {
	rate := t.Rate(model)
	return float64(inputTokens)/1000*rate.Input + float64(outputTokens)/1000*rate.Output
}

// Tokenizer counts tokens the way the target model family does. Counts feed
// pre-flight estimates only; billed cost always comes from service-reported
// usage.
type Tokenizer struct {
	enc *tiktoken.Tiktoken
}

// NewTokenizer resolves the encoder for model, falling back to cl100k_base
// when the model is unknown to the tokenizer tables.
func NewTokenizer(model string, logger *slog.Logger) (*Tokenizer, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		if logger != nil {
			logger.Warn("using fallback encoding for unknown model", "model", model)
		}
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, err
		}
	}
	return &Tokenizer{enc: enc}, nil
}

// Count returns the token count of text.
func (t *Tokenizer) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

// CountMessages sums the token counts of prompt turns.
func (t *Tokenizer) CountMessages(contents ...string) int {
	total := 0
	for _, c := range contents {
		total += t.Count(c)
	}
	return total
}

// EstimateResponseTokens approximates the JSON output size for a prediction
// list: roughly 50 tokens per label plus 20 for the array structure.
func EstimateResponseTokens(numLabels int) int {
	return numLabels*50 + 20
}

package classify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"NewsLabeler/internal/cost"
	"NewsLabeler/internal/domain"
	"NewsLabeler/internal/parse"
	"NewsLabeler/internal/ports"
	"NewsLabeler/internal/prompts"
)

// responseTokenCap bounds completion output; the expected JSON prediction
// array never comes close to it.
const responseTokenCap = 500

// defaultPacing is the fixed delay between consecutive classification calls
// inside a batch, a blunt but predictable way to respect provider limits.
const defaultPacing = time.Second

// Deps wires the driven adapters into the classification client.
type Deps struct {
	Completer ports.Completer
	Pricing   *cost.Table
	Policy    RetryPolicy
	Logger    *slog.Logger
}

// Options configures per-run classification behavior.
type Options struct {
	Model           string
	FallbackModel   string
	Temperature     float64
	ConfidenceFloor float64
	Pacing          time.Duration
}

// Client orchestrates one classification request: prompt assembly,
// call-with-retry, response parsing, quality assessment and usage-based
// cost. It holds no persistent state.
type Client struct {
	completer ports.Completer
	pricing   *cost.Table
	policy    RetryPolicy
	logger    *slog.Logger
	opts      Options
}

var _ ports.BatchClassifier = (*Client)(nil)

// NewClient constructs the classification client.
func NewClient(deps Deps, opts Options) *Client {
	if opts.Pacing == 0 {
		opts.Pacing = defaultPacing
	}
	return &Client{
		completer: deps.Completer,
		pricing:   deps.Pricing,
		policy:    deps.Policy,
		logger:    deps.Logger,
		opts:      opts,
	}
}

// Classify runs one record through the completion service and returns a
// fully populated outcome. Warnings and quality issues annotate the result;
// they never fail it.
func (c *Client) Classify(ctx context.Context, rec domain.Record, useFallback bool) domain.Outcome {
	model := c.opts.Model
	if useFallback {
		model = c.opts.FallbackModel
	}

	req := ports.CompletionRequest{
		Model: model,
		Messages: []ports.Message{
			{Role: ports.RoleSystem, Content: prompts.System()},
			{Role: ports.RoleUser, Content: prompts.User(rec.Title, rec.Description, rec.Content)},
		},
		Temperature: c.opts.Temperature,
		MaxTokens:   responseTokenCap,
		JSONMode:    strings.Contains(model, "gpt-4"),
	}

	var res ports.CompletionResult
	err := c.policy.Do(ctx, c.logger, func() error {
		r, callErr := c.completer.Complete(ctx, req)
		if callErr != nil {
			return callErr
		}
		res = r
		return nil
	})
	if err != nil {
		c.debug("classification failed", "index", rec.Index, "model", model, "error", err)
		return domain.Outcome{
			Index:     rec.Index,
			Success:   false,
			ModelUsed: model,
			Error:     err.Error(),
		}
	}

	callCost := c.pricing.Cost(model, res.InputTokens, res.OutputTokens)
	c.debug("completion succeeded",
		"index", rec.Index,
		"model", model,
		"input_tokens", res.InputTokens,
		"output_tokens", res.OutputTokens,
		"cost", fmt.Sprintf("$%.4f", callCost))

	cands, parseErr := parse.Parse(res.Text)
	if parseErr != nil {
		// The raw text travels with the outcome so the failure stays
		// diagnosable; the money was still spent, so the cost is kept too.
		if c.logger != nil {
			c.logger.Error("invalid response format", "index", rec.Index, "error", parseErr)
		}
		return domain.Outcome{
			Index:       rec.Index,
			Success:     false,
			ModelUsed:   model,
			Cost:        callCost,
			Error:       fmt.Sprintf("invalid response format: %v", parseErr),
			RawResponse: res.Text,
		}
	}

	predictions, warnings := parse.CleanLabels(cands)
	if len(warnings) > 0 && c.logger != nil {
		c.logger.Warn("label validation warnings", "index", rec.Index, "warnings", strings.Join(warnings, "; "))
	}

	acceptable, issues := parse.CheckQuality(predictions, c.opts.ConfidenceFloor)
	if !acceptable && c.logger != nil {
		c.logger.Warn("quality issues detected", "index", rec.Index, "issues", strings.Join(issues, "; "))
	}

	return domain.Outcome{
		Index:         rec.Index,
		Success:       true,
		Labels:        predictions,
		ModelUsed:     model,
		Cost:          callCost,
		Warnings:      warnings,
		QualityIssues: issues,
	}
}

// ClassifyBatch processes records strictly sequentially with fixed pacing
// between calls (never after the last). A failed primary attempt is
// escalated exactly once to the fallback model; if that also fails, the
// primary outcome is recorded as the permanent failure.
func (c *Client) ClassifyBatch(ctx context.Context, records []domain.Record) []domain.Outcome {
	c.debug("starting batch classification", "records", len(records))

	outcomes := make([]domain.Outcome, 0, len(records))
	totalCost := 0.0

	for i, rec := range records {
		out := c.Classify(ctx, rec, false)
		if !out.Success {
			if c.logger != nil {
				c.logger.Warn("retrying record with fallback model", "index", rec.Index)
			}
			fallback := c.Classify(ctx, rec, true)
			if fallback.Success {
				fallback.UsedFallback = true
				out = fallback
			}
		}

		if out.Success {
			totalCost += out.Cost
		}
		outcomes = append(outcomes, out)

		if i < len(records)-1 {
			time.Sleep(c.opts.Pacing)
		}
	}

	c.debug("batch completed", "records", len(records), "cost", fmt.Sprintf("$%.4f", totalCost))
	return outcomes
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

package batch

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"NewsLabeler/internal/dataset"
	"NewsLabeler/internal/domain"
	"NewsLabeler/internal/ports"
)

const defaultBatchSize = 10

// Deps wires the driven adapters into the orchestrator.
type Deps struct {
	Dataset    *dataset.Dataset
	Preparer   *dataset.Preparer
	Classifier ports.BatchClassifier
	Store      ports.ResultStore
	Logger     *slog.Logger
}

// Params configures one processing run.
type Params struct {
	// StartFrom overrides the checkpoint resume position; negative means
	// resume from the checkpoint.
	StartFrom int
	// MaxRecords caps how many rows this run may attempt; zero means all.
	MaxRecords int
	BatchSize  int
	// ShowProgress renders a terminal progress line with running success
	// rate and cumulative cost.
	ShowProgress bool
}

// Orchestrator drives the end-to-end run: resumable checkpointing, batch
// slicing, per-batch classification, result persistence and the final
// report. It is the sole writer of checkpoint and result-log state.
type Orchestrator struct {
	ds         *dataset.Dataset
	preparer   *dataset.Preparer
	classifier ports.BatchClassifier
	store      ports.ResultStore
	logger     *slog.Logger
}

// New constructs the orchestrator.
func New(deps Deps) *Orchestrator {
	return &Orchestrator{
		ds:         deps.Dataset,
		preparer:   deps.Preparer,
		classifier: deps.Classifier,
		store:      deps.Store,
		logger:     deps.Logger,
	}
}

type tracker struct {
	processed  int
	successful int
	totalCost  float64

	// Counts carried over from the checkpoint of a previous run.
	baseProcessed  int
	baseSuccessful int
}

// Run traverses the dataset in batches. Every checkpoint flush marks a safe
// resume point; interrupts are honored between batches after the in-flight
// batch has been fully persisted. One poisoned batch is skipped, never fatal.
func (o *Orchestrator) Run(ctx context.Context, params Params) (domain.Summary, error) {
	stats := o.ds.Describe()
	o.debug("dataset loaded",
		"records", stats.TotalRecords,
		"avg_title_len", fmt.Sprintf("%.0f", stats.AvgTitleLength),
		"avg_content_len", fmt.Sprintf("%.0f", stats.AvgContentLength))

	cp := o.loadCheckpoint()

	start := cp.LastProcessedIndex
	if params.StartFrom >= 0 {
		start = params.StartFrom
	}

	end := o.ds.Len()
	if params.MaxRecords > 0 && start+params.MaxRecords < end {
		end = start + params.MaxRecords
	}

	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	if o.logger != nil {
		o.logger.Info("processing records",
			"from", start, "to", end, "batch_size", batchSize, "run_id", cp.RunID)
	}

	t := &tracker{
		totalCost:      cp.TotalCost,
		baseProcessed:  cp.ProcessedCount,
		baseSuccessful: cp.SuccessfulCount,
	}
	var bar *progressbar.ProgressBar
	if params.ShowProgress && end > start {
		bar = progressbar.NewOptions(end-start,
			progressbar.OptionSetDescription("classifying"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(false),
		)
	}

	interrupted := false
	current := start
	for current < end {
		if ctx.Err() != nil {
			if o.logger != nil {
				o.logger.Info("processing interrupted by user", "resume_index", cp.LastProcessedIndex)
			}
			interrupted = true
			break
		}

		width := batchSize
		if current+width > end {
			width = end - current
		}

		if err := o.runBatch(ctx, &cp, t, current, width); err != nil {
			// Availability over completeness: skip the poisoned batch and
			// keep going.
			if o.logger != nil {
				o.logger.Error("batch failed, skipping", "start", current, "width", width, "error", err)
			}
		}

		if bar != nil {
			_ = bar.Add(width)
			bar.Describe(describeProgress(t))
		}
		current += width
	}
	if bar != nil {
		_ = bar.Finish()
	}

	summary := o.buildSummary(cp, t, batchSize, interrupted)
	if err := o.store.SaveSummary(summary); err != nil && o.logger != nil {
		o.logger.Error("failed to save summary", "error", err)
	}
	if o.logger != nil {
		o.logger.Info("processing completed",
			"processed", summary.RecordsProcessed,
			"successful", summary.Successful,
			"success_rate", fmt.Sprintf("%.1f%%", summary.SuccessRate),
			"total_cost", fmt.Sprintf("$%.4f", summary.TotalCost),
			"interrupted", interrupted)
	}

	return summary, nil
}

// runBatch classifies one slice and flushes results plus checkpoint. A panic
// anywhere inside surfaces as the batch error handled by the caller.
func (o *Orchestrator) runBatch(ctx context.Context, cp *domain.Checkpoint, t *tracker, current, width int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected batch failure: %v", r)
		}
	}()

	records, attempted := o.preparer.Slice(o.ds, current, width)
	if len(records) == 0 {
		if o.logger != nil {
			o.logger.Warn("no valid records in batch", "start", current, "width", width)
		}
		o.flushCheckpoint(cp, t, current+attempted)
		return nil
	}

	o.debug("processing batch", "from", current, "to", current+attempted, "valid_records", len(records))

	// The in-flight batch always completes even when an interrupt arrives;
	// cancellation is honored between batches only.
	outcomes := o.classifier.ClassifyBatch(context.WithoutCancel(ctx), records)

	for _, out := range outcomes {
		t.processed++
		if out.Success {
			t.successful++
			t.totalCost += out.Cost
		}
	}

	if err := o.store.AppendResults(outcomes); err != nil && o.logger != nil {
		o.logger.Error("failed to persist results", "error", err)
	}
	o.flushCheckpoint(cp, t, current+attempted)
	return nil
}

func (o *Orchestrator) loadCheckpoint() domain.Checkpoint {
	cp, found, err := o.store.LoadCheckpoint()
	if err != nil && o.logger != nil {
		o.logger.Error("failed to load checkpoint, starting fresh", "error", err)
	}
	if !found || err != nil {
		return domain.Checkpoint{
			RunID:     uuid.NewString(),
			StartTime: time.Now().UTC(),
		}
	}
	if o.logger != nil {
		o.logger.Info("loaded checkpoint",
			"last_processed_index", cp.LastProcessedIndex,
			"processed_count", cp.ProcessedCount,
			"total_cost", fmt.Sprintf("$%.4f", cp.TotalCost))
	}
	return cp
}

func (o *Orchestrator) flushCheckpoint(cp *domain.Checkpoint, t *tracker, lastIndex int) {
	if lastIndex > cp.LastProcessedIndex {
		cp.LastProcessedIndex = lastIndex
	}
	cp.TotalCost = t.totalCost
	cp.ProcessedCount = t.baseProcessed + t.processed
	cp.SuccessfulCount = t.baseSuccessful + t.successful
	cp.LastUpdate = time.Now().UTC()

	if err := o.store.SaveCheckpoint(*cp); err != nil && o.logger != nil {
		o.logger.Error("failed to save checkpoint", "error", err)
	}
}

func (o *Orchestrator) buildSummary(cp domain.Checkpoint, t *tracker, batchSize int, interrupted bool) domain.Summary {
	successRate := 0.0
	if t.processed > 0 {
		successRate = float64(t.successful) / float64(t.processed) * 100
	}
	avgCost := 0.0
	if t.successful > 0 {
		avgCost = t.totalCost / float64(t.successful)
	}

	return domain.Summary{
		RunID:                cp.RunID,
		TotalRecords:         o.ds.Len(),
		RecordsProcessed:     t.processed,
		Successful:           t.successful,
		SuccessRate:          successRate,
		TotalCost:            t.totalCost,
		AverageCostPerRecord: avgCost,
		StartTime:            cp.StartTime.Format(time.RFC3339),
		EndTime:              time.Now().UTC().Format(time.RFC3339),
		BatchSizeUsed:        batchSize,
		Interrupted:          interrupted,
	}
}

// CreateFinalCSV joins the original dataset with the result log by index and
// writes the joined CSV. Rows without a matching outcome keep empty
// defaults; duplicate outcomes for an index resolve last-write-wins.
func (o *Orchestrator) CreateFinalCSV() (string, error) {
	results, err := o.store.LoadResults()
	if err != nil {
		return "", fmt.Errorf("load results: %w", err)
	}

	byIndex := make(map[int]domain.Outcome, len(results))
	for _, out := range results {
		byIndex[out.Index] = out
	}

	header := append(o.ds.Header(),
		"predicted_labels", "prediction_confidence", "model_used", "classification_success")

	rows := make([][]string, 0, o.ds.Len())
	for i := 0; i < o.ds.Len(); i++ {
		row := append([]string(nil), o.ds.RawRow(i)...)

		labelsCol, confCol, modelCol, successCol := "", "", "", strconv.FormatBool(false)
		if out, ok := byIndex[i]; ok && out.Success {
			names := make([]string, len(out.Labels))
			confs := make([]string, len(out.Labels))
			for j, p := range out.Labels {
				names[j] = p.Label
				confs[j] = fmt.Sprintf("%.2f", p.Confidence)
			}
			labelsCol = strings.Join(names, "; ")
			confCol = strings.Join(confs, "; ")
			modelCol = out.ModelUsed
			successCol = strconv.FormatBool(true)
		}

		rows = append(rows, append(row, labelsCol, confCol, modelCol, successCol))
	}

	path, err := o.store.WriteFinalCSV(header, rows)
	if err != nil {
		return "", err
	}
	if o.logger != nil {
		o.logger.Info("final results saved", "path", path, "rows", len(rows))
	}
	return path, nil
}

func describeProgress(t *tracker) string {
	rate := 0.0
	if t.processed > 0 {
		rate = float64(t.successful) / float64(t.processed) * 100
	}
	return fmt.Sprintf("classifying (success %.1f%%, cost $%.2f)", rate, t.totalCost)
}

func (o *Orchestrator) debug(msg string, args ...any) {
	if o.logger != nil {
		o.logger.Debug(msg, args...)
	}
}

package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsLabeler/internal/batch"
	"NewsLabeler/internal/classify"
	"NewsLabeler/internal/config"
	"NewsLabeler/internal/cost"
	"NewsLabeler/internal/dataset"
	"NewsLabeler/internal/domain"
	"NewsLabeler/internal/infrastructure/llm"
	"NewsLabeler/internal/infrastructure/storage"
	"NewsLabeler/internal/infrastructure/telegram"
	"NewsLabeler/internal/logging"
	"NewsLabeler/internal/ports"
	"NewsLabeler/internal/prompts"
)

// estimateSampleSize caps how many rows feed the average-length sample for
// pre-flight cost estimation.
const estimateSampleSize = 10

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	completer ports.Completer
	pricing   *cost.Table
	tokenizer *cost.Tokenizer
	notifier  ports.Notifier
}

// ProcessOptions are the per-invocation knobs of a processing run.
type ProcessOptions struct {
	DataPath     string
	BatchSize    int
	StartFrom    int
	MaxRecords   int
	OutputDir    string
	ShowProgress bool
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.NewWithFile(cfg.Logging.Level, cfg.Logging.File)
	}

	pricing := cost.NewTable(baseLogger.With("component", "cost"), cfg.Models.Primary, cfg.Models.Fallback)
	tokenizer, err := cost.NewTokenizer(cfg.Models.Primary, baseLogger.With("component", "cost"))
	if err != nil {
		return nil, fmt.Errorf("init tokenizer: %w", err)
	}

	var notifier ports.Notifier
	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID)
	}

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		completer: llm.NewClient(cfg.API.BaseURL, cfg.API.Key, cfg.Models.Primary),
		pricing:   pricing,
		tokenizer: tokenizer,
		notifier:  notifier,
	}, nil
}

// TestConnection probes the completion service with a minimal request.
func (a *Application) TestConnection(ctx context.Context) error {
	if err := a.completer.Probe(ctx); err != nil {
		return fmt.Errorf("connection test: %w", err)
	}
	a.logger.Info("API connection test successful")
	return nil
}

// EstimateCost previews the processing cost of the dataset at path by
// sampling the first rows and extrapolating linearly.
func (a *Application) EstimateCost(path string) (cost.Estimate, error) {
	ds, err := dataset.Load(path)
	if err != nil {
		return cost.Estimate{}, err
	}

	sample := ds.Len()
	if sample > estimateSampleSize {
		sample = estimateSampleSize
	}

	totalLen := 0
	for i := 0; i < sample; i++ {
		row := ds.Row(i)
		content := prompts.Truncate(row.Content, prompts.MaxContentLength)
		totalLen += len([]rune(dataset.CombinedText(row.Title, row.Description, content)))
	}
	avgLen := 0
	if sample > 0 {
		avgLen = totalLen / sample
	}

	estimate := cost.EstimateDataset(a.pricing, a.tokenizer, ds.Len(), avgLen, a.cfg.Models.Primary)
	a.logger.Info("cost estimate",
		"records", estimate.DatasetSize,
		"model", estimate.Model,
		"total_cost", fmt.Sprintf("$%.2f", estimate.TotalCost))
	return estimate, nil
}

// ProcessDataset runs the resumable batch classification end to end and
// writes the final joined CSV. It returns the run summary and the CSV path.
func (a *Application) ProcessDataset(ctx context.Context, opts ProcessOptions) (domain.Summary, string, error) {
	dataPath := opts.DataPath
	if dataPath == "" {
		dataPath = a.cfg.Paths.Data
	}
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = a.cfg.Paths.Output
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = a.cfg.Processing.BatchSize
	}

	ds, err := dataset.Load(dataPath)
	if err != nil {
		return domain.Summary{}, "", err
	}

	store, err := storage.NewFileStore(outputDir)
	if err != nil {
		return domain.Summary{}, "", err
	}

	classifier := classify.NewClient(classify.Deps{
		Completer: a.completer,
		Pricing:   a.pricing,
		Policy: classify.RetryPolicy{
			MaxAttempts:       a.cfg.Processing.MaxRetries,
			InitialDelay:      time.Duration(a.cfg.Processing.RetryDelaySeconds) * time.Second,
			Multiplier:        2,
			RateLimitCooldown: 60 * time.Second,
		},
		Logger: a.logger.With("component", "classify"),
	}, classify.Options{
		Model:           a.cfg.Models.Primary,
		FallbackModel:   a.cfg.Models.Fallback,
		Temperature:     a.cfg.Models.Temperature,
		ConfidenceFloor: a.cfg.Processing.ConfidenceThreshold,
	})

	orchestrator := batch.New(batch.Deps{
		Dataset:    ds,
		Preparer:   dataset.NewPreparer(prompts.MaxContentLength, a.logger.With("component", "preparer")),
		Classifier: classifier,
		Store:      store,
		Logger:     a.logger.With("component", "batch"),
	})

	summary, err := orchestrator.Run(ctx, batch.Params{
		StartFrom:    opts.StartFrom,
		MaxRecords:   opts.MaxRecords,
		BatchSize:    batchSize,
		ShowProgress: opts.ShowProgress,
	})
	if err != nil {
		return summary, "", err
	}

	finalCSV, err := orchestrator.CreateFinalCSV()
	if err != nil {
		return summary, "", fmt.Errorf("create final csv: %w", err)
	}

	a.notifySummary(ctx, summary)
	return summary, finalCSV, nil
}

func (a *Application) notifySummary(ctx context.Context, sum domain.Summary) {
	if a.notifier == nil {
		return
	}

	message := fmt.Sprintf(
		"Classification run %s finished\nProcessed: %d\nSuccessful: %d (%.1f%%)\nTotal cost: $%.4f",
		sum.RunID, sum.RecordsProcessed, sum.Successful, sum.SuccessRate, sum.TotalCost)
	if err := a.notifier.PublishSummary(ctx, message); err != nil {
		a.logger.Warn("failed to publish summary notification", "error", err)
	}
}

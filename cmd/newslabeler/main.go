package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"NewsLabeler/internal/app"
	"NewsLabeler/internal/config"
	"NewsLabeler/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		return fmt.Errorf("missing command")
	}
	command := os.Args[1]

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := logging.NewWithFile(cfg.Logging.Level, cfg.Logging.File)

	application, err := app.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "test":
		return runTest(ctx, application)
	case "estimate":
		return runEstimate(cfg, application)
	case "process":
		return runProcess(ctx, cfg, application)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func runTest(ctx context.Context, application *app.Application) error {
	fmt.Println("Testing API connection...")
	if err := application.TestConnection(ctx); err != nil {
		return err
	}
	fmt.Println("API connection successful")
	return nil
}

func runEstimate(cfg config.Config, application *app.Application) error {
	flags := flag.NewFlagSet("estimate", flag.ExitOnError)
	data := flags.String("data", cfg.Paths.Data, "path to input CSV file")
	if err := flags.Parse(os.Args[2:]); err != nil {
		return err
	}

	estimate, err := application.EstimateCost(*data)
	if err != nil {
		return err
	}

	fmt.Println("Cost estimation:")
	fmt.Printf("  Dataset size: %d records\n", estimate.DatasetSize)
	fmt.Printf("  Model: %s\n", estimate.Model)
	fmt.Printf("  Estimated total cost: $%.2f\n", estimate.TotalCost)
	fmt.Printf("  Cost per record: $%.4f\n", estimate.CostPerRecord)
	fmt.Printf("  Avg input tokens: %d\n", estimate.AvgInputTokens)
	fmt.Printf("  Avg output tokens: %d\n", estimate.AvgOutputTokens)
	return nil
}

func runProcess(ctx context.Context, cfg config.Config, application *app.Application) error {
	flags := flag.NewFlagSet("process", flag.ExitOnError)
	data := flags.String("data", cfg.Paths.Data, "path to input CSV file")
	batchSize := flags.Int("batch-size", cfg.Processing.BatchSize, "batch size for processing")
	startFrom := flags.Int("start-from", -1, "start processing from this index (default: resume from checkpoint)")
	maxRecords := flags.Int("max-records", 0, "maximum number of records to process (0 = all)")
	outputDir := flags.String("output-dir", cfg.Paths.Output, "output directory for results")
	if err := flags.Parse(os.Args[2:]); err != nil {
		return err
	}

	if err := application.TestConnection(ctx); err != nil {
		return fmt.Errorf("cannot proceed without API connection: %w", err)
	}

	if estimate, err := application.EstimateCost(*data); err == nil {
		fmt.Printf("Estimated total cost: $%.2f ($%.4f per record)\n", estimate.TotalCost, estimate.CostPerRecord)
	} else {
		fmt.Printf("Cost estimation failed: %v\n", err)
	}

	summary, finalCSV, err := application.ProcessDataset(ctx, app.ProcessOptions{
		DataPath:     *data,
		BatchSize:    *batchSize,
		StartFrom:    *startFrom,
		MaxRecords:   *maxRecords,
		OutputDir:    *outputDir,
		ShowProgress: true,
	})
	if err != nil {
		return err
	}

	fmt.Println("\nProcessing completed")
	fmt.Printf("  Records processed: %d\n", summary.RecordsProcessed)
	fmt.Printf("  Successful classifications: %d\n", summary.Successful)
	fmt.Printf("  Success rate: %.1f%%\n", summary.SuccessRate)
	fmt.Printf("  Total cost: $%.2f\n", summary.TotalCost)
	fmt.Printf("  Average cost per record: $%.4f\n", summary.AverageCostPerRecord)
	fmt.Printf("  Final results: %s\n", finalCSV)
	return nil
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: newslabeler <command> [flags]

Commands:
  test      check connectivity to the completion service
  estimate  preview processing cost for a dataset (--data)
  process   classify a dataset (--data --batch-size --start-from --max-records --output-dir)`)
}

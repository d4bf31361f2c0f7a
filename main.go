package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"go_extractor/core"
	"go_extractor/db"
	"go_extractor/logging"
	"go_extractor/ocrprocessor"
	"go_extractor/orchestrator"
	"go_extractor/pdfprocessor"
)

// migrationsSource locates the SQLite schema migrations relative to the
// working directory the binary runs from.
const migrationsSource = "file://db/migrations"

func main() {
	jsonOutput := flag.Bool("json", false, "print each extraction record as JSON instead of a summary")
	flag.Parse()

	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Use fmt here since logger isn't initialized yet
		fmt.Printf("Warning: .env file not found: %v\n", err)
	}

	config, err := core.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(config.DevMode, config.LogFilePath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "Usage: %s [-json] <document.pdf> [more.pdf ...]\n", filepath.Base(os.Args[0]))
		os.Exit(2)
	}

	policy, err := core.LoadPolicyOrDefault(config.PolicyPath)
	if err != nil {
		logger.Fatal("Failed to load extraction policy",
			zap.String("path", config.PolicyPath), zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.String("ocr_model", config.OCRModel),
		zap.Int("max_retries", config.MaxRetries),
		zap.Duration("ocr_timeout", config.OCRTimeout),
		zap.Int("max_concurrent", config.MaxConcurrent),
		zap.Int("max_pages", config.MaxPages),
		zap.String("database", config.DatabasePath),
		zap.Bool("dev_mode", config.DevMode),
	)

	store, closeStore, err := openStore(config)
	if err != nil {
		logger.Fatal("Failed to open record store", zap.Error(err))
	}
	defer closeStore()

	var invoker core.OcrInvoker
	if config.OpenAIAPIKey != "" {
		processor, err := ocrprocessor.NewProcessor(config, policy, logger)
		if err != nil {
			logger.Fatal("Failed to initialize OCR processor", zap.Error(err))
		}
		invoker = processor
	} else {
		logger.Warn("OPENAI_API_KEY not set; scanned pages will not be extracted")
	}

	opener := orchestrator.NewPDFOpener(policy, pdfprocessor.DefaultExtractorConfig(), logger)
	pipeline := orchestrator.New(opener, invoker, store, config, logger)

	// Handle interrupt signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	failures := 0
	for _, path := range files {
		if ctx.Err() != nil {
			logger.Info("Interrupted, stopping")
			break
		}
		if !processFile(ctx, pipeline, logger, path, *jsonOutput) {
			failures++
		}
	}

	snap := pipeline.Metrics()
	logger.Info("Run finished",
		zap.Int64("documents", snap.Documents.Total),
		zap.Int64("documents_failed", snap.Documents.Errors),
		zap.Int64("pages", snap.Pages.Total),
		zap.Duration("avg_page_duration", snap.Pages.AvgDuration),
	)

	if failures > 0 {
		os.Exit(1)
	}
}

// openStore picks the record store from configuration: SQLite when a
// database path is set, in-memory otherwise.
func openStore(config *core.Config) (core.RecordStore, func(), error) {
	if config.DatabasePath == "" {
		return db.NewMemoryStore(), func() {}, nil
	}
	store, err := db.NewSQLiteStore(config.DatabasePath, migrationsSource)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

// processFile runs one document through the pipeline and prints its
// summary. Returns false when the document could not be processed or
// finished in failed state.
func processFile(ctx context.Context, pipeline *orchestrator.Orchestrator, logger *logging.Logger, path string, jsonOutput bool) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		color.Red("%s: %v", path, err)
		return false
	}

	record, err := pipeline.Process(ctx, filepath.Base(path), data)
	if err != nil {
		logger.Error("Pipeline error", zap.String("file", path), zap.Error(err))
		color.Red("%s: %v", path, err)
		return false
	}

	if jsonOutput {
		printJSON(record)
	} else {
		printSummary(path, record)
	}
	return record.Status == core.StatusCompleted
}

// printJSON dumps the full extraction record to stdout.
func printJSON(record *core.ExtractionRecord) {
	encoded, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		color.Red("encoding record %s: %v", record.ID, err)
		return
	}
	fmt.Println(string(encoded))
}

// printSummary writes the human-readable result of one extraction to
// stdout.
func printSummary(path string, record *core.ExtractionRecord) {
	fmt.Printf("%s  (record %s)\n", path, record.ID)

	if record.Status != core.StatusCompleted {
		color.Red("  failed: %s", record.ErrorMessage)
		printDiagnostics(record.Diagnostics)
		return
	}

	color.Green("  completed: %d rows x %d columns (%s)",
		record.Table.Metadata.TotalRows,
		record.Table.Metadata.TotalColumns,
		record.Table.Metadata.ExtractionMethod)

	if record.Analytics != nil {
		fmt.Printf("  visits: %d, assessments: %d\n",
			record.Analytics.TotalVisits, record.Analytics.TotalAssessments)
		for _, visit := range record.Analytics.VisitFrequency {
			fmt.Printf("    %-24s %d\n", visit.Visit, visit.Count)
		}
	}
	printDiagnostics(record.Diagnostics)
}

func printDiagnostics(diagnostics []string) {
	for _, note := range diagnostics {
		color.Yellow("  note: %s", note)
	}
}

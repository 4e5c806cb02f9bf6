package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"volcano-platform/internal/config"
	"volcano-platform/internal/repository"
	"volcano-platform/internal/services"
	"volcano-platform/pkg/database"
	"volcano-platform/pkg/logging"
	"volcano-platform/pkg/metrics"
)

func main() {
	// Parse command-line flags
	eruptionFile := flag.String("eruption-file", "", "GVP eruption CSV file")
	sampleDir := flag.String("sample-dir", "", "Directory of per-volcano GEOROC sample CSV files")
	shortAliasFile := flag.String("short-alias-file", "", "Long name -> short form alias CSV file")
	canonicalAliasFile := flag.String("canonical-alias-file", "", "Short form -> GVP name alias CSV file")
	batchSize := flag.Int("batch-size", 1000, "Number of records to insert in each batch")
	flag.Parse()

	if *eruptionFile == "" && *sampleDir == "" && *shortAliasFile == "" && *canonicalAliasFile == "" {
		fmt.Fprintln(os.Stderr, "Nothing to ingest: pass at least one of -eruption-file, -sample-dir, -short-alias-file, -canonical-alias-file")
		flag.Usage()
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := logging.NewStructuredLogger("volcano-ingester", "1.0.0", logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[INGESTER_START] Starting volcano data ingestion", logging.Fields{
		"version":              "1.0.0",
		"eruption_file":        *eruptionFile,
		"sample_dir":           *sampleDir,
		"short_alias_file":     *shortAliasFile,
		"canonical_alias_file": *canonicalAliasFile,
		"batch_size":           *batchSize,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("volcano_ingester")

	// Initialize database
	dbConfig := &database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	}

	db, err := database.NewPostgresDB(dbConfig, logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[INGESTER_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	// Initialize repository and service
	volcanoRepo := repository.NewVolcanoRepository(db, logger, metricsCollector)
	ingestionService := services.NewIngestionService(volcanoRepo, logger, metricsCollector)

	if *shortAliasFile != "" {
		result, err := ingestionService.IngestShortNameAliases(ctx, *shortAliasFile)
		if err != nil {
			logger.Fatal(ctx, "[INGESTION_ERROR] Short-name alias ingestion failed", logging.Fields{}, err)
		}
		printResult("SHORT-NAME ALIASES", result)
	}

	if *canonicalAliasFile != "" {
		result, err := ingestionService.IngestCanonicalNameAliases(ctx, *canonicalAliasFile)
		if err != nil {
			logger.Fatal(ctx, "[INGESTION_ERROR] Canonical-name alias ingestion failed", logging.Fields{}, err)
		}
		printResult("CANONICAL-NAME ALIASES", result)
	}

	if *eruptionFile != "" {
		result, err := ingestionService.IngestEruptionEvents(ctx, *eruptionFile, *batchSize)
		if err != nil {
			logger.Fatal(ctx, "[INGESTION_ERROR] Eruption event ingestion failed", logging.Fields{}, err)
		}
		printResult("ERUPTION EVENTS", result)
	}

	if *sampleDir != "" {
		result, err := ingestionService.IngestSampleDirectory(ctx, *sampleDir, *batchSize)
		if err != nil {
			logger.Fatal(ctx, "[INGESTION_ERROR] Sample ingestion failed", logging.Fields{}, err)
		}
		printResult("ROCK SAMPLES", result)
	}

	logger.Info(ctx, "[INGESTER_COMPLETE] Ingestion completed successfully", logging.Fields{})
}

func printResult(title string, result *services.IngestionResult) {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("%s: INGESTION COMPLETE\n", title)
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Total Files:        %d\n", result.TotalFiles)
	fmt.Printf("Total Records:      %d\n", result.TotalRecords)
	fmt.Printf("Successful Records: %d\n", result.SuccessfulRecords)
	fmt.Printf("Failed Records:     %d\n", result.FailedRecords)
	fmt.Printf("Duration:           %v\n", result.Duration)
	if result.Duration.Seconds() > 0 {
		fmt.Printf("Records/Second:     %.2f\n", float64(result.SuccessfulRecords)/result.Duration.Seconds())
	}

	if len(result.Errors) > 0 {
		fmt.Printf("\nErrors (%d):\n", len(result.Errors))
		for i, errMsg := range result.Errors {
			if i < 10 {
				fmt.Printf("  - %s\n", errMsg)
			}
		}
		if len(result.Errors) > 10 {
			fmt.Printf("  ... and %d more errors\n", len(result.Errors)-10)
		}
	}
}

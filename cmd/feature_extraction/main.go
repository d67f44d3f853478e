package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ThiagoRGoveia/contract-features/internal/config"
	"github.com/ThiagoRGoveia/contract-features/internal/database"
	"github.com/ThiagoRGoveia/contract-features/internal/ingestion"
	"github.com/ThiagoRGoveia/contract-features/internal/logging"
	"github.com/ThiagoRGoveia/contract-features/internal/sink"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	outputPath string
	persist    bool
	numWorkers int
)

var rootCmd = &cobra.Command{
	Use:   "feature_extraction <input-path>",
	Short: "Compute contract features for every application in a CSV file or directory",
	Long: `Reads applications (id, application_date, contracts) from a CSV file, or from every
CSV file under a directory, and writes one feature row per application in input order.

With --persist the rows are also stored in Postgres (DATABASE_URL). Files a previous
persisted run already finished (same checksum, status DONE) are skipped entirely, so
their rows are left out of the CSV output as well.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runExtraction,
}

func init() {
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "contract_features.csv", "output CSV file")
	rootCmd.Flags().BoolVar(&persist, "persist", false, "also store feature rows in Postgres")
	rootCmd.Flags().IntVar(&numWorkers, "workers", 0, "number of feature workers (overrides NUM_FEATURE_WORKERS)")
}

func setup(cfg *config.Config) (*ingestion.IngestionService, sink.Sink, func(), error) {
	var registry database.FileRegistry
	cleanupFunc := func() {}

	csvSink, err := sink.NewCSVFileSink(outputPath)
	if err != nil {
		return nil, nil, nil, err
	}
	sinks := sink.MultiSink{csvSink}

	if persist {
		if err := cfg.RequireDatabase(); err != nil {
			csvSink.Close()
			return nil, nil, nil, err
		}

		dbpool, err := database.ConnectDB(cfg.DatabaseURL)
		if err != nil {
			csvSink.Close()
			return nil, nil, nil, fmt.Errorf("unable to connect to database: %w", err)
		}
		cleanupFunc = dbpool.Close

		dbManager := database.NewPostgresDBManager(context.Background(), dbpool)
		registry = dbManager

		stagingTableName := "contract_features_staging_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
		postgresSink, err := sink.NewPostgresSink(dbManager, stagingTableName)
		if err != nil {
			csvSink.Close()
			dbpool.Close()
			return nil, nil, nil, err
		}
		sinks = append(sinks, postgresSink)
	}

	asyncWorker := ingestion.NewAsyncWorker(registry, ingestion.AsyncWorkerConfig{
		SinkBatchSize: cfg.SinkBatchSize,
	})

	handler := ingestion.NewIngestionService(
		ingestion.Setup{ChannelSize: cfg.ChannelSize},
		asyncWorker,
		ingestion.NewFileProcessor(registry),
		*cfg,
	)

	return handler, sinks, cleanupFunc, nil
}

func runExtraction(cmd *cobra.Command, args []string) error {
	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if numWorkers > 0 {
		cfg.NumFeatureWorkers = numWorkers
	}

	handler, out, cleanupFunc, err := setup(cfg)
	if err != nil {
		return err
	}
	defer func() {
		log.Println("Cleaning up resources...")
		cleanupFunc()
	}()

	log.Println("Starting extraction process...")
	err = handler.Execute(args[0], out)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("error during extraction: %w", err)
	}

	log.Printf("Features written to %s", outputPath)
	log.Printf("Execution time: %s", time.Since(startTime))
	return nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warnf("could not load .env file: %v", err)
	}

	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

package main

import (
	"context"

	"github.com/ThiagoRGoveia/contract-features/internal/config"
	"github.com/ThiagoRGoveia/contract-features/internal/database"
	"github.com/ThiagoRGoveia/contract-features/internal/logging"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// createTables is idempotent, every statement uses IF NOT EXISTS.
func createTables(dbManager database.DBManager) error {
	steps := []struct {
		name string
		run  func() error
	}{
		{"file_records table", dbManager.CreateFileRecordsTable},
		{"contract_features table", dbManager.CreateContractFeaturesTable},
		{"contract_features indexes", dbManager.CreateContractFeatureIndexes},
	}

	for _, step := range steps {
		log.Printf("Creating %s...", step.name)
		if err := step.run(); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warnf("could not load .env file: %v", err)
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.RequireDatabase(); err != nil {
		log.Fatal(err)
	}

	dbpool, err := database.ConnectDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to the database: %v", err)
	}
	defer dbpool.Close()

	if err := createTables(database.NewPostgresDBManager(context.Background(), dbpool)); err != nil {
		log.Fatalf("Failed to setup database: %v", err)
	}
	log.Println("Database setup finished.")
}

package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ThiagoRGoveia/contract-features/internal/config"
	"github.com/ThiagoRGoveia/contract-features/internal/database"
	"github.com/ThiagoRGoveia/contract-features/internal/features"
	"github.com/ThiagoRGoveia/contract-features/internal/logging"
	"github.com/ThiagoRGoveia/contract-features/internal/server"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

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

	dbManager := database.NewPostgresDBManager(context.Background(), dbpool)
	router := server.SetupRoutes(server.NewFeatureService(dbManager, features.NewCalculator(cfg.ClaimWindowDays)))

	log.Printf("Server starting on port %s", cfg.APIPort)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.APIPort), router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

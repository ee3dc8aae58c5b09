package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/okihome/rentwatch-backend-go/internal/config"
	"github.com/okihome/rentwatch-backend-go/internal/database"
	"github.com/okihome/rentwatch-backend-go/internal/logger"
	"github.com/okihome/rentwatch-backend-go/internal/pricing"
	"github.com/okihome/rentwatch-backend-go/internal/repository"
	"github.com/okihome/rentwatch-backend-go/internal/service"
)

// Runs the training pipeline once and prints the report as JSON.
func main() {
	cfg := config.Load()

	zapLogger, err := logger.New(cfg.LogLevel, "console")
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer zapLogger.Sync()

	if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
		zapLogger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer database.Close()
	db := database.GetDB()

	listingRepo := repository.NewListingRepository(db)
	landPriceRepo := repository.NewLandPriceRepository(db)
	modelRepo := repository.NewModelMetadataRepository(db)
	estimator := pricing.NewEstimator(cfg.ModelDir, zapLogger)

	trainingService := service.NewTrainingService(db, listingRepo, landPriceRepo, modelRepo, estimator, zapLogger)

	report, err := trainingService.Run()
	if err != nil {
		zapLogger.Fatal("training failed", zap.Error(err))
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		zapLogger.Fatal("failed to encode report", zap.Error(err))
	}
	fmt.Println(string(out))

	if report.InsufficientData {
		os.Exit(1)
	}
}

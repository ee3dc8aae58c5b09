package main

import (
	"errors"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/okihome/rentwatch-backend-go/internal/api"
	"github.com/okihome/rentwatch-backend-go/internal/config"
	"github.com/okihome/rentwatch-backend-go/internal/database"
	"github.com/okihome/rentwatch-backend-go/internal/handler"
	"github.com/okihome/rentwatch-backend-go/internal/landprice"
	"github.com/okihome/rentwatch-backend-go/internal/logger"
	"github.com/okihome/rentwatch-backend-go/internal/notification"
	"github.com/okihome/rentwatch-backend-go/internal/pricing"
	"github.com/okihome/rentwatch-backend-go/internal/repository"
	"github.com/okihome/rentwatch-backend-go/internal/service"
)

func main() {
	cfg := config.Load()

	zapLogger, err := logger.New(cfg.LogLevel, cfg.LogFormat)
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
	notificationRepo := repository.NewNotificationRepository(db)

	estimator := pricing.NewEstimator(cfg.ModelDir, zapLogger)
	if err := estimator.LoadModel(""); err != nil {
		if errors.Is(err, pricing.ErrModelNotFound) {
			zapLogger.Warn("no trained model on disk, estimation disabled until training runs")
		} else {
			zapLogger.Fatal("failed to load model", zap.Error(err))
		}
	}

	trainingService := service.NewTrainingService(db, listingRepo, landPriceRepo, modelRepo, estimator, zapLogger)
	searchService := service.NewSearchService(listingRepo)
	estimationService := service.NewEstimationService(estimator, landPriceRepo, modelRepo)
	marketService := service.NewMarketService(listingRepo)
	landPriceService := service.NewLandPriceService(landPriceRepo)

	lineClient := notification.NewLineClient(cfg.LineChannelToken)
	notifier := notification.NewNotifier(lineClient, listingRepo, notificationRepo, cfg.BargainThreshold, zapLogger)
	landPriceFetcher := landprice.NewFetcher(landprice.NewClient(cfg.ReinfolibAPIKey), landPriceRepo, zapLogger)

	handlers := api.Handlers{
		Search:     handler.NewSearchHandler(searchService),
		Estimation: handler.NewEstimationHandler(estimationService),
		Market:     handler.NewMarketHandler(marketService),
		LandPrice:  handler.NewLandPriceHandler(landPriceService),
		Admin:      handler.NewAdminHandler(trainingService, estimationService, landPriceFetcher, notifier),
		Webhook:    handler.NewWebhookHandler(cfg.LineChannelSecret, notificationRepo, zapLogger),
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.TrainCron, func() {
		if _, err := trainingService.Run(); err != nil {
			zapLogger.Error("scheduled training failed", zap.Error(err))
		}
	}); err != nil {
		zapLogger.Fatal("invalid TRAIN_CRON", zap.String("spec", cfg.TrainCron), zap.Error(err))
	}
	if _, err := scheduler.AddFunc(cfg.NotifyCron, func() {
		if _, err := notifier.NotifyBargains(); err != nil {
			zapLogger.Error("scheduled notification failed", zap.Error(err))
		}
	}); err != nil {
		zapLogger.Fatal("invalid NOTIFY_CRON", zap.String("spec", cfg.NotifyCron), zap.Error(err))
	}
	scheduler.Start()
	defer func() {
		ctx := scheduler.Stop()
		select {
		case <-ctx.Done():
		case <-time.After(10 * time.Second):
		}
	}()

	router := api.SetupRouter(cfg, zapLogger, handlers)

	zapLogger.Info("server starting", zap.String("port", cfg.Port))
	if err := router.Run(cfg.Port); err != nil {
		zapLogger.Fatal("failed to start server", zap.Error(err))
	}
}

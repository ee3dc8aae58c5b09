package service

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/okihome/rentwatch-backend-go/internal/database"
	"github.com/okihome/rentwatch-backend-go/internal/models"
	"github.com/okihome/rentwatch-backend-go/internal/pricing"
	"github.com/okihome/rentwatch-backend-go/internal/repository"
)

// TrainingService runs the model training pipeline: fit both models on the
// active listings, record metadata, then re-score every active listing.
type TrainingService struct {
	db            *sql.DB
	listingRepo   *repository.ListingRepository
	landPriceRepo *repository.LandPriceRepository
	modelRepo     *repository.ModelMetadataRepository
	estimator     *pricing.Estimator
	logger        *zap.Logger
}

// NewTrainingService creates a new training service
func NewTrainingService(
	db *sql.DB,
	listingRepo *repository.ListingRepository,
	landPriceRepo *repository.LandPriceRepository,
	modelRepo *repository.ModelMetadataRepository,
	estimator *pricing.Estimator,
	logger *zap.Logger,
) *TrainingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrainingService{
		db:            db,
		listingRepo:   listingRepo,
		landPriceRepo: landPriceRepo,
		modelRepo:     modelRepo,
		estimator:     estimator,
		logger:        logger,
	}
}

// Run executes one full training cycle and returns the training report.
// Too little data produces an insufficient-data report, not an error.
func (s *TrainingService) Run() (*pricing.TrainingReport, error) {
	listings, err := s.listingRepo.GetTrainingData()
	if err != nil {
		return nil, fmt.Errorf("failed to load training data: %w", err)
	}

	if len(listings) < pricing.MinTrainingRows {
		s.logger.Warn("skipping training, not enough listings",
			zap.Int("listings", len(listings)),
			zap.Int("required", pricing.MinTrainingRows))
		return &pricing.TrainingReport{InsufficientData: true, ValidRows: len(listings)}, nil
	}

	// Land prices are an optional enrichment; training proceeds without them.
	landPrices, err := s.landPriceRepo.GetAll()
	if err != nil {
		s.logger.Warn("failed to load land prices, training without them", zap.Error(err))
		landPrices = nil
	}

	report, err := s.estimator.Train(listings, landPrices, 0.2)
	if err != nil {
		return nil, fmt.Errorf("training failed: %w", err)
	}
	if report.InsufficientData {
		return report, nil
	}

	if err := s.recordMetadata(report); err != nil {
		return nil, err
	}

	if err := s.RescoreListings(landPrices); err != nil {
		s.logger.Error("failed to re-score listings after training", zap.Error(err))
	}

	s.logger.Info("training cycle complete",
		zap.String("version", report.Version),
		zap.Int("trainingSamples", report.TrainingSamples),
		zap.Float64("forestR2", report.RandomForest.R2))
	return report, nil
}

// recordMetadata demotes the previous active models and inserts one record
// per model type, atomically.
func (s *TrainingService) recordMetadata(report *pricing.TrainingReport) error {
	importancesJSON, err := json.Marshal(report.TopFeatures)
	if err != nil {
		return fmt.Errorf("failed to encode feature importances: %w", err)
	}

	modelPath := s.estimator.ModelPath(report.Version)
	records := []models.ModelMetadata{
		{
			ModelType:       pricing.ModelKindRidge,
			Version:         report.Version,
			TrainingSamples: report.TrainingSamples,
			R2Score:         report.Ridge.R2,
			MAE:             report.Ridge.MAE,
			RMSE:            report.Ridge.RMSE,
			ModelPath:       modelPath,
			IsActive:        true,
		},
		{
			ModelType:          pricing.ModelKindRandomForest,
			Version:            report.Version,
			TrainingSamples:    report.TrainingSamples,
			R2Score:            report.RandomForest.R2,
			MAE:                report.RandomForest.MAE,
			RMSE:               report.RandomForest.RMSE,
			FeatureImportances: string(importancesJSON),
			ModelPath:          modelPath,
			IsActive:           true,
		},
	}

	err = database.Transaction(s.db, func(tx *sql.Tx) error {
		for i := range records {
			if err := s.modelRepo.DemoteActive(tx, records[i].ModelType); err != nil {
				return err
			}
			if err := s.modelRepo.Insert(tx, &records[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record model metadata: %w", err)
	}
	return nil
}

// RescoreListings recomputes estimates and affordability scores for every
// active listing with the current model.
func (s *TrainingService) RescoreListings(landPrices []models.LandPrice) error {
	if !s.estimator.IsFitted() {
		return pricing.ErrNotFitted
	}

	listings, err := s.listingRepo.GetAllActive(0)
	if err != nil {
		return fmt.Errorf("failed to load active listings: %w", err)
	}
	if len(listings) == 0 {
		return nil
	}

	predictions, err := s.estimator.Predict(listings, landPrices, pricing.ModelKindRandomForest)
	if err != nil {
		return fmt.Errorf("failed to predict: %w", err)
	}

	updated := 0
	for _, p := range predictions {
		if p.EstimatedRent <= 0 || p.AffordabilityScore == nil {
			continue
		}
		if err := s.listingRepo.UpdateEstimation(p.ListingID, p.EstimatedRent, *p.AffordabilityScore); err != nil {
			s.logger.Warn("failed to update estimation",
				zap.Int64("listingId", p.ListingID), zap.Error(err))
			continue
		}
		updated++
	}

	s.logger.Info("listings re-scored",
		zap.Int("total", len(listings)), zap.Int("updated", updated))
	return nil
}

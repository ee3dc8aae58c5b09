package service

import (
	"fmt"

	"github.com/okihome/rentwatch-backend-go/internal/models"
	"github.com/okihome/rentwatch-backend-go/internal/pricing"
	"github.com/okihome/rentwatch-backend-go/internal/repository"
)

// EstimationService handles on-demand rent estimation
type EstimationService struct {
	estimator     *pricing.Estimator
	landPriceRepo *repository.LandPriceRepository
	modelRepo     *repository.ModelMetadataRepository
}

// NewEstimationService creates a new estimation service
func NewEstimationService(
	estimator *pricing.Estimator,
	landPriceRepo *repository.LandPriceRepository,
	modelRepo *repository.ModelMetadataRepository,
) *EstimationService {
	return &EstimationService{
		estimator:     estimator,
		landPriceRepo: landPriceRepo,
		modelRepo:     modelRepo,
	}
}

// EstimateResult combines the estimate with its explanation
type EstimateResult struct {
	Prediction   *pricing.Prediction   `json:"prediction"`
	PriceFactors []pricing.PriceFactor `json:"priceFactors,omitempty"`
	ModelVersion string                `json:"modelVersion"`
}

// Estimate predicts rent for one ad-hoc listing and explains the estimate
func (s *EstimationService) Estimate(listing models.Listing) (*EstimateResult, error) {
	if listing.AreaSqm == nil || *listing.AreaSqm <= 0 {
		return nil, fmt.Errorf("areaSqm is required and must be positive")
	}

	// Land prices sharpen the estimate but are not required.
	landPrices, err := s.landPriceRepo.GetAll()
	if err != nil {
		landPrices = nil
	}

	prediction, err := s.estimator.PredictSingle(listing, landPrices)
	if err != nil {
		return nil, err
	}

	factors, err := s.estimator.PriceFactors(listing)
	if err != nil {
		return nil, err
	}

	return &EstimateResult{
		Prediction:   prediction,
		PriceFactors: factors,
		ModelVersion: s.estimator.Version(),
	}, nil
}

// ActiveModels returns the active metadata record per model type
func (s *EstimationService) ActiveModels() ([]models.ModelMetadata, error) {
	var active []models.ModelMetadata
	for _, kind := range []string{pricing.ModelKindRidge, pricing.ModelKindRandomForest} {
		m, err := s.modelRepo.GetActive(kind)
		if err != nil {
			return nil, err
		}
		if m != nil {
			active = append(active, *m)
		}
	}
	return active, nil
}

// ModelHistory returns past model records, newest first
func (s *EstimationService) ModelHistory(limit int) ([]models.ModelMetadata, error) {
	return s.modelRepo.List(limit)
}

// FeatureImportances exposes the active forest's feature ranking
func (s *EstimationService) FeatureImportances() ([]pricing.FeatureImportance, error) {
	if !s.estimator.IsFitted() {
		return nil, pricing.ErrNotFitted
	}
	return s.estimator.FeatureImportances(), nil
}

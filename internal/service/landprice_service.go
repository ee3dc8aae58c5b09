package service

import (
	"fmt"

	"github.com/okihome/rentwatch-backend-go/internal/models"
	"github.com/okihome/rentwatch-backend-go/internal/repository"
)

// LandPriceService handles business logic for land-price lookups
type LandPriceService struct {
	landPriceRepo *repository.LandPriceRepository
}

// NewLandPriceService creates a new land-price service
func NewLandPriceService(landPriceRepo *repository.LandPriceRepository) *LandPriceService {
	return &LandPriceService{
		landPriceRepo: landPriceRepo,
	}
}

// GetNearby retrieves land-price observations within radiusKm of a point
func (s *LandPriceService) GetNearby(lat, lon, radiusKm float64) ([]models.LandPrice, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("invalid coordinates")
	}
	if radiusKm <= 0 || radiusKm > 50 {
		radiusKm = 2
	}
	prices, err := s.landPriceRepo.GetNearby(lat, lon, radiusKm)
	if err != nil {
		return nil, fmt.Errorf("failed to get nearby land prices: %w", err)
	}
	return prices, nil
}

// GetAveragePrice returns the mean land price per sqm for one municipality
func (s *LandPriceService) GetAveragePrice(municipalityCode string, year int) (float64, bool, error) {
	if municipalityCode == "" {
		return 0, false, fmt.Errorf("municipalityCode is required")
	}
	return s.landPriceRepo.GetAveragePrice(municipalityCode, year)
}

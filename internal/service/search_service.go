package service

import (
	"fmt"

	"github.com/okihome/rentwatch-backend-go/internal/models"
	"github.com/okihome/rentwatch-backend-go/internal/repository"
)

// SearchService handles business logic for listing search
type SearchService struct {
	listingRepo *repository.ListingRepository
}

// NewSearchService creates a new search service
func NewSearchService(listingRepo *repository.ListingRepository) *SearchService {
	return &SearchService{
		listingRepo: listingRepo,
	}
}

// Search retrieves listings matching the filter, paginated
func (s *SearchService) Search(filter models.ListingFilter) (*models.ListingsResponse, error) {
	if filter.RentMin != nil && filter.RentMax != nil && *filter.RentMin > *filter.RentMax {
		return nil, fmt.Errorf("rentMin must not exceed rentMax")
	}
	if filter.AreaMin != nil && filter.AreaMax != nil && *filter.AreaMin > *filter.AreaMax {
		return nil, fmt.Errorf("areaMin must not exceed areaMax")
	}

	result, err := s.listingRepo.Search(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}
	return result, nil
}

// GetBargains retrieves the best-scored active listings. maxScore defaults
// to 0.85 and is capped at 1.0 so the endpoint only ever returns listings
// priced at or below their estimate.
func (s *SearchService) GetBargains(maxScore float64, limit int) ([]models.Listing, error) {
	if maxScore <= 0 {
		maxScore = 0.85
	}
	if maxScore > 1.0 {
		maxScore = 1.0
	}
	listings, err := s.listingRepo.GetBargains(maxScore, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get bargains: %w", err)
	}
	return listings, nil
}

// GetByID retrieves one listing, nil when it does not exist
func (s *SearchService) GetByID(id int64) (*models.Listing, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid listing id")
	}
	listing, err := s.listingRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return listing, nil
}

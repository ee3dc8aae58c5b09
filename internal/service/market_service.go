package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/okihome/rentwatch-backend-go/internal/models"
	"github.com/okihome/rentwatch-backend-go/internal/repository"
	"github.com/okihome/rentwatch-backend-go/internal/stats"
)

// minRankingListings keeps municipalities with too few listings out of the
// ranking, where a single outlier would dominate the aggregates.
const minRankingListings = 3

// MarketService handles business logic for market statistics
type MarketService struct {
	listingRepo *repository.ListingRepository
}

// NewMarketService creates a new market service
func NewMarketService(listingRepo *repository.ListingRepository) *MarketService {
	return &MarketService{
		listingRepo: listingRepo,
	}
}

// GetStatistics summarizes active listings, optionally for one municipality
func (s *MarketService) GetStatistics(municipalityCode string) (*models.MarketStatistics, error) {
	result, err := s.listingRepo.GetStatistics(municipalityCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get market statistics: %w", err)
	}

	// SQL gives us the mean; the median needs the raw rents.
	listings, err := s.listingRepo.GetActiveRents()
	if err != nil {
		return nil, fmt.Errorf("failed to get active rents: %w", err)
	}
	var rents []float64
	for _, l := range listings {
		if municipalityCode != "" && l.MunicipalityCode != municipalityCode {
			continue
		}
		rents = append(rents, float64(l.Rent))
	}
	result.MedianRent = stats.Median(rents)
	result.GeneratedAt = time.Now().Format(time.RFC3339)
	return result, nil
}

// GetMunicipalityRankings aggregates active listings per municipality and
// returns rows ordered by rent per sqm descending. Municipalities with fewer
// than minRankingListings listings are excluded.
func (s *MarketService) GetMunicipalityRankings() ([]models.MunicipalityMarket, error) {
	listings, err := s.listingRepo.GetActiveRents()
	if err != nil {
		return nil, fmt.Errorf("failed to get active rents: %w", err)
	}

	type bucket struct {
		rents []float64
		areas []float64
	}
	buckets := make(map[string]*bucket)
	for _, l := range listings {
		if l.Municipality == "" || l.Rent <= 0 {
			continue
		}
		b, ok := buckets[l.Municipality]
		if !ok {
			b = &bucket{}
			buckets[l.Municipality] = b
		}
		b.rents = append(b.rents, float64(l.Rent))
		if l.AreaSqm != nil && *l.AreaSqm > 0 {
			b.areas = append(b.areas, *l.AreaSqm)
		}
	}

	var rankings []models.MunicipalityMarket
	for name, b := range buckets {
		if len(b.rents) < minRankingListings {
			continue
		}
		row := models.MunicipalityMarket{
			Municipality: name,
			Count:        len(b.rents),
			AvgRent:      stats.Mean(b.rents),
			MedianRent:   stats.Median(b.rents),
		}
		if len(b.areas) > 0 {
			row.AvgAreaSqm = stats.Mean(b.areas)
			if row.AvgAreaSqm > 0 {
				row.RentPerSqm = row.AvgRent / row.AvgAreaSqm
			}
		}
		rankings = append(rankings, row)
	}

	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].RentPerSqm != rankings[j].RentPerSqm {
			return rankings[i].RentPerSqm > rankings[j].RentPerSqm
		}
		return rankings[i].Municipality < rankings[j].Municipality
	})
	return rankings, nil
}

package service

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okihome/rentwatch-backend-go/internal/database"
	"github.com/okihome/rentwatch-backend-go/internal/models"
	"github.com/okihome/rentwatch-backend-go/internal/repository"
)

func setupMarketService(t *testing.T) (*MarketService, *repository.ListingRepository) {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.InitSchema(db))

	repo := repository.NewListingRepository(db)
	return NewMarketService(repo), repo
}

func seedMarket(t *testing.T, repo *repository.ListingRepository, municipality, code string, rents []int64) {
	t.Helper()
	for i, rent := range rents {
		area := 40.0
		_, err := repo.Upsert(&models.Listing{
			Source:           "goohome",
			SourceID:         fmt.Sprintf("%s-%d", code, i),
			Municipality:     municipality,
			MunicipalityCode: code,
			Rent:             rent,
			AreaSqm:          &area,
		})
		require.NoError(t, err)
	}
}

func TestGetStatisticsMedian(t *testing.T) {
	svc, repo := setupMarketService(t)
	seedMarket(t, repo, "那覇市", "47201", []int64{60000, 70000, 100000})

	stats, err := svc.GetStatistics("")
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.InDelta(t, 76666.67, stats.AvgRent, 1)
	assert.InDelta(t, 70000, stats.MedianRent, 1e-9)
	assert.NotEmpty(t, stats.GeneratedAt)
}

func TestGetStatisticsByMunicipality(t *testing.T) {
	svc, repo := setupMarketService(t)
	seedMarket(t, repo, "那覇市", "47201", []int64{80000, 90000})
	seedMarket(t, repo, "沖縄市", "47211", []int64{50000})

	stats, err := svc.GetStatistics("47201")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.InDelta(t, 85000, stats.AvgRent, 1e-9)
	assert.InDelta(t, 85000, stats.MedianRent, 1e-9)
}

func TestMunicipalityRankings(t *testing.T) {
	svc, repo := setupMarketService(t)
	seedMarket(t, repo, "那覇市", "47201", []int64{80000, 90000, 100000})
	seedMarket(t, repo, "沖縄市", "47211", []int64{50000, 55000, 60000})
	// Fewer than three listings, excluded from the ranking.
	seedMarket(t, repo, "名護市", "47209", []int64{40000})

	rankings, err := svc.GetMunicipalityRankings()
	require.NoError(t, err)
	require.Len(t, rankings, 2)

	// All areas are equal, so rent per sqm orders by average rent.
	assert.Equal(t, "那覇市", rankings[0].Municipality)
	assert.Equal(t, 3, rankings[0].Count)
	assert.InDelta(t, 90000, rankings[0].AvgRent, 1e-9)
	assert.InDelta(t, 90000, rankings[0].MedianRent, 1e-9)
	assert.InDelta(t, 2250, rankings[0].RentPerSqm, 1e-9)

	assert.Equal(t, "沖縄市", rankings[1].Municipality)
}

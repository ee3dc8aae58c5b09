package service

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okihome/rentwatch-backend-go/internal/database"
	"github.com/okihome/rentwatch-backend-go/internal/models"
	"github.com/okihome/rentwatch-backend-go/internal/pricing"
	"github.com/okihome/rentwatch-backend-go/internal/repository"
)

func setupTrainingService(t *testing.T) (*TrainingService, *sql.DB, *repository.ListingRepository) {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.InitSchema(db))

	listingRepo := repository.NewListingRepository(db)
	landPriceRepo := repository.NewLandPriceRepository(db)
	modelRepo := repository.NewModelMetadataRepository(db)
	estimator := pricing.NewEstimator(t.TempDir(), nil)

	svc := NewTrainingService(db, listingRepo, landPriceRepo, modelRepo, estimator, nil)
	return svc, db, listingRepo
}

func seedListings(t *testing.T, repo *repository.ListingRepository, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		area := 25.0 + float64(i%50)
		age := int64(5 + i%20)
		municipality, code := "那覇市", "47201"
		premium := int64(8000)
		if i%2 == 1 {
			municipality, code = "沖縄市", "47211"
			premium = 0
		}

		_, err := repo.Upsert(&models.Listing{
			Source:           "goohome",
			SourceID:         fmt.Sprintf("seed-%d", i),
			Municipality:     municipality,
			MunicipalityCode: code,
			Rent:             45000 + int64(area*900) + premium,
			Structure:        "RC",
			FloorPlan:        "2DK",
			AreaSqm:          &area,
			BuildingAge:      &age,
		})
		require.NoError(t, err)
	}
}

func TestRunWithTooFewListings(t *testing.T) {
	svc, _, listingRepo := setupTrainingService(t)
	seedListings(t, listingRepo, 10)

	report, err := svc.Run()
	require.NoError(t, err)
	assert.True(t, report.InsufficientData)
	assert.Equal(t, 10, report.ValidRows)
}

func TestRunFullPipeline(t *testing.T) {
	svc, db, listingRepo := setupTrainingService(t)
	seedListings(t, listingRepo, 60)

	report, err := svc.Run()
	require.NoError(t, err)
	require.False(t, report.InsufficientData)
	assert.Equal(t, 60, report.ValidRows)
	assert.NotEmpty(t, report.Version)

	// One active metadata row per model type.
	modelRepo := repository.NewModelMetadataRepository(db)
	for _, kind := range []string{pricing.ModelKindRidge, pricing.ModelKindRandomForest} {
		active, err := modelRepo.GetActive(kind)
		require.NoError(t, err)
		require.NotNil(t, active, "no active %s model", kind)
		assert.Equal(t, report.Version, active.Version)
		assert.Equal(t, report.TrainingSamples, active.TrainingSamples)
	}

	// The forest record carries the importance ranking.
	forest, err := modelRepo.GetActive(pricing.ModelKindRandomForest)
	require.NoError(t, err)
	assert.NotEmpty(t, forest.FeatureImportances)

	// Every listing was re-scored.
	listings, err := listingRepo.GetAllActive(0)
	require.NoError(t, err)
	require.Len(t, listings, 60)
	for _, l := range listings {
		require.NotNil(t, l.EstimatedRent, "listing %s not scored", l.SourceID)
		assert.Greater(t, *l.EstimatedRent, int64(0))
		require.NotNil(t, l.AffordabilityScore)
		assert.InDelta(t, 1.0, *l.AffordabilityScore, 0.35)
	}
}

func TestRunReplacesActiveModel(t *testing.T) {
	svc, db, listingRepo := setupTrainingService(t)
	seedListings(t, listingRepo, 60)

	_, err := svc.Run()
	require.NoError(t, err)
	_, err = svc.Run()
	require.NoError(t, err)

	var activeCount int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM model_metadata WHERE is_active = 1").Scan(&activeCount))
	assert.Equal(t, 2, activeCount)

	var total int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM model_metadata").Scan(&total))
	assert.Equal(t, 4, total)
}

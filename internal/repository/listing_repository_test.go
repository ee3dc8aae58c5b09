package repository

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okihome/rentwatch-backend-go/internal/models"
)

func TestUpsertInsertAndUpdate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListingRepository(db)

	l := testListing("a-1")
	id, err := repo.Upsert(l)
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	// Same (source, source_id) updates in place.
	l.Rent = 68000
	l.HasPetOK = true
	_, err = repo.Upsert(l)
	require.NoError(t, err)

	got, err := repo.GetByID(id)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, int64(68000), got.Rent)
	assert.True(t, got.HasPetOK)
	assert.True(t, got.HasAircon)
	assert.True(t, got.IsActive)
	assert.Equal(t, "那覇市", got.Municipality)
	require.NotNil(t, got.AreaSqm)
	assert.Equal(t, 40.0, *got.AreaSqm)
	require.NotNil(t, got.BuildingAge)
	assert.Equal(t, int64(10), *got.BuildingAge)
	assert.Nil(t, got.FloorNumber)
	assert.Nil(t, got.EstimatedRent)
}

func TestGetByIDMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListingRepository(db)

	got, err := repo.GetByID(9999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSearchFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListingRepository(db)

	for i := 0; i < 5; i++ {
		l := testListing(fmt.Sprintf("s-%d", i))
		l.Rent = int64(50000 + i*10000)
		if i == 4 {
			l.MunicipalityCode = "47208"
			l.Municipality = "浦添市"
		}
		_, err := repo.Upsert(l)
		require.NoError(t, err)
	}

	rentMin := int64(60000)
	rentMax := int64(80000)
	result, err := repo.Search(models.ListingFilter{
		RentMin: &rentMin,
		RentMax: &rentMax,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Total)
	for _, l := range result.Data {
		assert.GreaterOrEqual(t, l.Rent, rentMin)
		assert.LessOrEqual(t, l.Rent, rentMax)
	}

	result, err = repo.Search(models.ListingFilter{
		MunicipalityCodes: []string{"47208"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)

	// Amenity filters map to their has_* columns.
	result, err = repo.Search(models.ListingFilter{
		Amenities: []models.Amenity{models.AmenityPetOK},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Total)
}

func TestSearchSortAndPagination(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListingRepository(db)

	for i := 0; i < 7; i++ {
		l := testListing(fmt.Sprintf("p-%d", i))
		l.Rent = int64(90000 - i*5000)
		_, err := repo.Upsert(l)
		require.NoError(t, err)
	}

	result, err := repo.Search(models.ListingFilter{
		SortBy:    "rent",
		SortOrder: "desc",
		Page:      2,
		PageSize:  3,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(7), result.Total)
	assert.Equal(t, 2, result.Page)
	assert.Equal(t, 3, result.PageSize)
	assert.Equal(t, 3, result.TotalPages)
	require.Len(t, result.Data, 3)
	// Page 2 of a descending sort starts at the 4th highest rent.
	assert.Equal(t, int64(75000), result.Data[0].Rent)

	// Unknown sort keys fall back to rent ascending.
	result, err = repo.Search(models.ListingFilter{SortBy: "evil; DROP TABLE"})
	require.NoError(t, err)
	assert.Equal(t, int64(60000), result.Data[0].Rent)
}

func TestGetTrainingDataExcludesIncompleteRows(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListingRepository(db)

	good := testListing("t-1")
	_, err := repo.Upsert(good)
	require.NoError(t, err)

	noRent := testListing("t-2")
	noRent.Rent = 0
	_, err = repo.Upsert(noRent)
	require.NoError(t, err)

	noArea := testListing("t-3")
	noArea.AreaSqm = nil
	_, err = repo.Upsert(noArea)
	require.NoError(t, err)

	noCode := testListing("t-4")
	noCode.MunicipalityCode = ""
	_, err = repo.Upsert(noCode)
	require.NoError(t, err)

	rows, err := repo.GetTrainingData()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "t-1", rows[0].SourceID)
}

func TestUpdateEstimationAndBargains(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListingRepository(db)

	var ids []int64
	scores := []float64{0.75, 0.95, 0.82}
	for i, score := range scores {
		l := testListing(fmt.Sprintf("b-%d", i))
		id, err := repo.Upsert(l)
		require.NoError(t, err)
		require.NoError(t, repo.UpdateEstimation(id, 90000, score))
		ids = append(ids, id)
	}

	got, err := repo.GetByID(ids[0])
	require.NoError(t, err)
	require.NotNil(t, got.EstimatedRent)
	assert.Equal(t, int64(90000), *got.EstimatedRent)
	require.NotNil(t, got.AffordabilityScore)
	assert.Equal(t, 0.75, *got.AffordabilityScore)
	assert.NotEmpty(t, got.EstimatedAt)

	bargains, err := repo.GetUnnotifiedBargains(0.85, 0)
	require.NoError(t, err)
	require.Len(t, bargains, 2)
	// Best deal first.
	assert.Equal(t, ids[0], bargains[0].ID)
	assert.Equal(t, ids[2], bargains[1].ID)

	require.NoError(t, repo.MarkNotified([]int64{ids[0]}))
	bargains, err = repo.GetUnnotifiedBargains(0.85, 0)
	require.NoError(t, err)
	require.Len(t, bargains, 1)
	assert.Equal(t, ids[2], bargains[0].ID)

	// The public bargain list ignores the notified flag.
	all, err := repo.GetBargains(0.85, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMarkInactiveExcept(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListingRepository(db)

	for _, sid := range []string{"x-1", "x-2", "x-3"} {
		_, err := repo.Upsert(testListing(sid))
		require.NoError(t, err)
	}

	affected, err := repo.MarkInactiveExcept("goohome", []string{"x-1", "x-3"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	active, err := repo.GetAllActive(0)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	// Re-upserting a delisted listing reactivates it.
	_, err = repo.Upsert(testListing("x-2"))
	require.NoError(t, err)
	active, err = repo.GetAllActive(0)
	require.NoError(t, err)
	assert.Len(t, active, 3)
}

func TestGetStatistics(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListingRepository(db)

	rents := []int64{60000, 70000, 80000}
	for i, rent := range rents {
		l := testListing(fmt.Sprintf("st-%d", i))
		l.Rent = rent
		_, err := repo.Upsert(l)
		require.NoError(t, err)
	}

	stats, err := repo.GetStatistics("")
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.InDelta(t, 70000.0, stats.AvgRent, 1e-9)
	assert.Equal(t, int64(60000), stats.MinRent)
	assert.Equal(t, int64(80000), stats.MaxRent)

	empty, err := repo.GetStatistics("99999")
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.Total)
}

func TestGetActiveRents(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListingRepository(db)

	l := testListing("r-1")
	_, err := repo.Upsert(l)
	require.NoError(t, err)

	noRent := testListing("r-2")
	noRent.Rent = 0
	_, err = repo.Upsert(noRent)
	require.NoError(t, err)

	rows, err := repo.GetActiveRents()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "那覇市", rows[0].Municipality)
	assert.Equal(t, "47201", rows[0].MunicipalityCode)
	assert.Equal(t, int64(70000), rows[0].Rent)
}

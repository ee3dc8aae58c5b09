package repository

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/okihome/rentwatch-backend-go/internal/database"
	"github.com/okihome/rentwatch-backend-go/internal/models"
)

// setupTestDB opens a fresh sqlite database in a temp directory
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.InitSchema(db))
	return db
}

func testListing(sourceID string) *models.Listing {
	area := 40.0
	age := int64(10)
	return &models.Listing{
		Source:           "goohome",
		SourceID:         sourceID,
		SourceURL:        "https://example.com/" + sourceID,
		Name:             "テストマンション " + sourceID,
		Municipality:     "那覇市",
		MunicipalityCode: "47201",
		Rent:             70000,
		ManagementFee:    3000,
		Structure:        "RC",
		FloorPlan:        "2LDK",
		AreaSqm:          &area,
		BuildingAge:      &age,
		ParkingAvailable: true,
		HasAircon:        true,
		HasInternet:      true,
	}
}

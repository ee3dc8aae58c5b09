package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okihome/rentwatch-backend-go/internal/models"
)

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

func TestBuildFeaturesKnownValues(t *testing.T) {
	listing := models.Listing{
		Municipality:       "那覇市",
		MunicipalityCode:   "47201",
		AreaSqm:            f64(40),
		BuildingAge:        i64(10),
		FloorNumber:        i64(3),
		TotalFloors:        i64(5),
		StationWalkMinutes: i64(8),
		Structure:          "RC",
		FloorPlan:          "2LDK",
		ParkingAvailable:   true,
		TransportType:      "monorail",
		HasAircon:          true,
		HasInternet:        true,
	}

	m := BuildFeatures([]models.Listing{listing}, nil)
	require.Equal(t, 1, m.NumRows())

	get := func(name string) float64 {
		idx := m.ColumnIndex(name)
		require.GreaterOrEqual(t, idx, 0, "missing column %s", name)
		return m.Rows[0][idx]
	}

	assert.Equal(t, 40.0, get("area_sqm"))
	assert.Equal(t, 10.0, get("building_age"))
	assert.Equal(t, 3.0, get("floor_number"))
	assert.Equal(t, 5.0, get("total_floors"))
	assert.Equal(t, 8.0, get("station_walk_minutes"))
	assert.Equal(t, 4.0, get("structure_score"))
	assert.Equal(t, 7.0, get("floor_plan_score"))
	// Room count falls back to min(floorPlanScore, 4).
	assert.Equal(t, 4.0, get("room_count"))
	assert.Equal(t, 1.0, get("parking_available"))
	assert.Equal(t, 2.0, get("equipment_score"))
	assert.Equal(t, 1.0, get("area_naha"))
	assert.Equal(t, 1.0, get("mc_47201"))
	assert.Equal(t, 1.0, get("is_monorail"))
	assert.Equal(t, 400.0, get("age_area_interaction"))
	assert.InDelta(t, 0.025, get("rent_per_sqm_area"), 1e-12)
	assert.InDelta(t, 0.6, get("floor_ratio"), 1e-12)
}

func TestBuildFeaturesDefaults(t *testing.T) {
	m := BuildFeatures([]models.Listing{{}}, nil)
	require.Equal(t, 1, m.NumRows())

	get := func(name string) float64 {
		return m.Rows[0][m.ColumnIndex(name)]
	}

	assert.Equal(t, 0.0, get("area_sqm"))
	assert.Equal(t, 20.0, get("building_age"))
	assert.Equal(t, 1.0, get("floor_number"))
	assert.Equal(t, 3.0, get("total_floors"))
	assert.Equal(t, 15.0, get("station_walk_minutes"))
	assert.Equal(t, 2.0, get("structure_score"))
	assert.Equal(t, 4.0, get("floor_plan_score"))
	assert.Equal(t, 4.0, get("room_count"))
	assert.Equal(t, 1.0, get("area_other"))
	assert.Equal(t, 1.0, get("mc_unknown"))
	// Missing area zeroes the interaction terms.
	assert.Equal(t, 0.0, get("age_area_interaction"))
	assert.Equal(t, 0.0, get("rent_per_sqm_area"))
	assert.InDelta(t, 1.0/3.0, get("floor_ratio"), 1e-12)
}

func TestBuildFeaturesUnknownStructureAndFloorPlan(t *testing.T) {
	listing := models.Listing{Structure: "ALC", FloorPlan: "5SLDK"}
	m := BuildFeatures([]models.Listing{listing}, nil)

	assert.Equal(t, 2.0, m.Rows[0][m.ColumnIndex("structure_score")])
	assert.Equal(t, 4.0, m.Rows[0][m.ColumnIndex("floor_plan_score")])
}

func TestStructureScoreOrdering(t *testing.T) {
	assert.Equal(t, 5.0, StructureScores["SRC"])
	assert.Equal(t, 4.0, StructureScores["RC"])
	assert.Equal(t, 1.0, StructureScores["W"])
	assert.Equal(t, 1.0, FloorPlanScores["1R"])
	assert.Equal(t, 10.0, FloorPlanScores["3LDK"])
}

func TestBuildFeaturesNeverReturnsNaN(t *testing.T) {
	listings := []models.Listing{
		{},
		{Municipality: "那覇市", MunicipalityCode: "47201", AreaSqm: f64(25)},
		{Municipality: "未知の町", Structure: "??", FloorPlan: "??"},
	}
	m := BuildFeatures(listings, nil)
	for r, row := range m.Rows {
		for j, v := range row {
			assert.False(t, math.IsNaN(v), "NaN at row %d column %s", r, m.Columns[j])
		}
	}
}

func TestBuildFeaturesOneHotColumnsAreSorted(t *testing.T) {
	listings := []models.Listing{
		{Municipality: "浦添市", MunicipalityCode: "47208"},
		{Municipality: "那覇市", MunicipalityCode: "47201"},
	}
	m := BuildFeatures(listings, nil)

	naha := m.ColumnIndex("area_naha")
	urasoe := m.ColumnIndex("area_urasoe")
	require.GreaterOrEqual(t, naha, 0)
	require.GreaterOrEqual(t, urasoe, 0)
	assert.Less(t, naha, urasoe)

	c1 := m.ColumnIndex("mc_47201")
	c2 := m.ColumnIndex("mc_47208")
	require.GreaterOrEqual(t, c1, 0)
	assert.Less(t, c1, c2)

	// Each listing is hot in exactly its own municipality column.
	assert.Equal(t, 1.0, m.Rows[1][naha])
	assert.Equal(t, 0.0, m.Rows[0][naha])
	assert.Equal(t, 1.0, m.Rows[0][urasoe])
}

func TestBuildFeaturesLandPrices(t *testing.T) {
	price := func(v int64) *int64 { return &v }
	landPrices := []models.LandPrice{
		{MunicipalityCode: "47201", PricePerSqm: price(200000)},
		{MunicipalityCode: "47201", PricePerSqm: price(100000)},
		{MunicipalityCode: "47208", PricePerSqm: price(80000)},
	}
	listings := []models.Listing{
		{MunicipalityCode: "47201"},
		{MunicipalityCode: "47211"}, // no land price data, falls back
	}

	m := BuildFeatures(listings, landPrices)
	col := m.Column("avg_land_price")
	require.Len(t, col, 2)

	assert.Equal(t, 150000.0, col[0])
	// Fallback is the median of per-municipality means {150000, 80000}.
	assert.Equal(t, 115000.0, col[1])
}

func TestBuildFeaturesWithoutLandPricesIsZero(t *testing.T) {
	m := BuildFeatures([]models.Listing{{MunicipalityCode: "47201"}}, nil)
	assert.Equal(t, 0.0, m.Rows[0][m.ColumnIndex("avg_land_price")])
}

func TestTarget(t *testing.T) {
	listings := []models.Listing{
		{Rent: 65000},
		{Rent: 0},
		{Rent: -100},
	}
	target := Target(listings)
	require.Len(t, target, 3)

	assert.Equal(t, 65000.0, target[0])
	assert.True(t, math.IsNaN(target[1]))
	assert.True(t, math.IsNaN(target[2]))
}

func TestMatrixAlign(t *testing.T) {
	m := &Matrix{
		Columns: []string{"a", "b", "c"},
		Rows:    [][]float64{{1, 2, 3}},
	}

	aligned := m.Align([]string{"c", "missing", "a"})
	assert.Equal(t, []string{"c", "missing", "a"}, aligned.Columns)
	assert.Equal(t, []float64{3, 0, 1}, aligned.Rows[0])
}

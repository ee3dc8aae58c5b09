package pricing

import (
	"math"
	"sort"

	"github.com/okihome/rentwatch-backend-go/internal/models"
	"github.com/okihome/rentwatch-backend-go/internal/stats"
)

// AreaGroups maps Okinawa municipalities to coarse geographic/economic zones.
var AreaGroups = map[string]string{
	"那覇市":  "naha",
	"浦添市":  "urasoe",
	"豊見城市": "south_urban",
	"糸満市":  "south_urban",
	"南城市":  "south_rural",
	"南風原町": "south_urban",
	"与那原町": "south_urban",
	"八重瀬町": "south_rural",
	"沖縄市":  "central",
	"うるま市": "central",
	"宜野湾市": "central_urban",
	"北谷町":  "central_urban",
	"嘉手納町": "central",
	"読谷村":  "central",
	"中城村":  "central",
	"西原町":  "central_urban",
	"北中城村": "central",
	"名護市":  "north",
	"本部町":  "north",
	"恩納村":  "north_resort",
	"金武町":  "north",
	"宜野座村": "north",
	"国頭村":  "north_remote",
	"大宜味村": "north_remote",
	"東村":   "north_remote",
	"今帰仁村": "north",
	"宮古島市": "island",
	"石垣市":  "island",
	"久米島町": "island_remote",
	"竹富町":  "island_remote",
	"与那国町": "island_remote",
}

// StructureScores encodes building structure by durability.
var StructureScores = map[string]float64{
	"SRC": 5,
	"RC":  4,
	"S":   3,
	"LS":  2,
	"W":   1,
}

// FloorPlanScores encodes floor plans by approximate size.
var FloorPlanScores = map[string]float64{
	"1R": 1, "1K": 2, "1DK": 3, "1LDK": 4,
	"2K": 5, "2DK": 6, "2LDK": 7,
	"3K": 8, "3DK": 9, "3LDK": 10,
	"4K以上": 11,
}

// Defaults applied when a listing attribute is missing or unrecognized.
const (
	defaultBuildingAge    = 20
	defaultFloorNumber    = 1
	defaultTotalFloors    = 3
	defaultStationWalkMin = 15
	defaultStructureScore = 2
	defaultFloorPlanScore = 4
)

// BuildFeatures transforms listings into a numeric feature matrix.
// It is a pure function of its inputs: malformed or missing values degrade
// to defaults per field, never to an error, and the returned matrix contains
// no NaN cells. landPrices may be nil, which pins avg_land_price to zero.
func BuildFeatures(listings []models.Listing, landPrices []models.LandPrice) *Matrix {
	areaGroups, mcCodes := observedCategories(listings)
	landPriceByCode, landPriceFallback := landPriceMeans(landPrices)

	columns := make([]string, 0, 15+len(areaGroups)+len(mcCodes))
	columns = append(columns,
		"area_sqm", "building_age", "floor_number", "total_floors",
		"station_walk_minutes", "structure_score", "floor_plan_score",
		"room_count", "parking_available", "equipment_score",
	)
	for _, g := range areaGroups {
		columns = append(columns, "area_"+g)
	}
	for _, code := range mcCodes {
		columns = append(columns, "mc_"+code)
	}
	columns = append(columns,
		"is_monorail", "avg_land_price",
		"age_area_interaction", "rent_per_sqm_area", "floor_ratio",
	)

	rows := make([][]float64, len(listings))
	for i := range listings {
		l := &listings[i]
		row := make([]float64, 0, len(columns))

		areaSqm := math.NaN()
		if l.AreaSqm != nil {
			areaSqm = *l.AreaSqm
		}
		buildingAge := floatOrDefault(l.BuildingAge, defaultBuildingAge)
		floorNumber := floatOrDefault(l.FloorNumber, defaultFloorNumber)
		totalFloors := floatOrDefault(l.TotalFloors, defaultTotalFloors)
		stationWalk := floatOrDefault(l.StationWalkMinutes, defaultStationWalkMin)

		structureScore, ok := StructureScores[l.Structure]
		if !ok {
			structureScore = defaultStructureScore
		}
		floorPlanScore, ok := FloorPlanScores[l.FloorPlan]
		if !ok {
			floorPlanScore = defaultFloorPlanScore
		}

		roomCount := math.Min(floorPlanScore, 4)
		if l.RoomCount != nil {
			roomCount = float64(*l.RoomCount)
		}

		parking := 0.0
		if l.ParkingAvailable {
			parking = 1
		}

		row = append(row,
			areaSqm, buildingAge, floorNumber, totalFloors, stationWalk,
			structureScore, floorPlanScore, roomCount, parking,
			float64(l.AmenityCount()),
		)

		group := areaGroupFor(l.Municipality)
		for _, g := range areaGroups {
			row = append(row, boolFeature(g == group))
		}
		code := mcCodeFor(l.MunicipalityCode)
		for _, c := range mcCodes {
			row = append(row, boolFeature(c == code))
		}

		row = append(row, boolFeature(l.TransportType == "monorail"))

		avgLandPrice := 0.0
		if len(landPriceByCode) > 0 {
			avgLandPrice = landPriceFallback
			if v, ok := landPriceByCode[l.MunicipalityCode]; ok {
				avgLandPrice = v
			}
		}
		row = append(row, avgLandPrice)

		// Interaction terms. rent_per_sqm_area is an inverse-area proxy,
		// not an actual price per sqm; max(area, 1) avoids division by zero.
		row = append(row,
			buildingAge*areaSqm,
			1.0/math.Max(areaSqm, 1),
			floorNumber/math.Max(totalFloors, 1),
		)

		// Any value still missing degrades to zero
		for j, v := range row {
			if math.IsNaN(v) {
				row[j] = 0
			}
		}
		rows[i] = row
	}

	return &Matrix{Columns: columns, Rows: rows}
}

// Target extracts the rent target series. Missing or non-positive rent is
// NaN; such rows must be filtered out by the caller, never trained on.
func Target(listings []models.Listing) []float64 {
	target := make([]float64, len(listings))
	for i := range listings {
		if listings[i].Rent > 0 {
			target[i] = float64(listings[i].Rent)
		} else {
			target[i] = math.NaN()
		}
	}
	return target
}

// observedCategories returns the sorted area-group and municipality-code
// categories present in the batch. The resulting one-hot columns are
// batch-dependent, which is why trained models realign by column name.
func observedCategories(listings []models.Listing) (areaGroups, mcCodes []string) {
	groupSet := make(map[string]bool)
	codeSet := make(map[string]bool)
	for i := range listings {
		groupSet[areaGroupFor(listings[i].Municipality)] = true
		codeSet[mcCodeFor(listings[i].MunicipalityCode)] = true
	}
	for g := range groupSet {
		areaGroups = append(areaGroups, g)
	}
	for c := range codeSet {
		mcCodes = append(mcCodes, c)
	}
	sort.Strings(areaGroups)
	sort.Strings(mcCodes)
	return areaGroups, mcCodes
}

func areaGroupFor(municipality string) string {
	if g, ok := AreaGroups[municipality]; ok {
		return g
	}
	return "other"
}

func mcCodeFor(code string) string {
	if code == "" {
		return "unknown"
	}
	return code
}

// landPriceMeans computes the mean price per sqm by municipality code and
// the median of those means as the fallback for unmatched codes.
func landPriceMeans(landPrices []models.LandPrice) (map[string]float64, float64) {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i := range landPrices {
		lp := &landPrices[i]
		if lp.MunicipalityCode == "" || lp.PricePerSqm == nil {
			continue
		}
		sums[lp.MunicipalityCode] += float64(*lp.PricePerSqm)
		counts[lp.MunicipalityCode]++
	}

	means := make(map[string]float64, len(sums))
	values := make([]float64, 0, len(sums))
	for code, sum := range sums {
		mean := sum / float64(counts[code])
		means[code] = mean
		values = append(values, mean)
	}
	if len(values) == 0 {
		return means, 0
	}
	return means, stats.Median(values)
}

func floatOrDefault(v *int64, def float64) float64 {
	if v == nil {
		return def
	}
	return float64(*v)
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

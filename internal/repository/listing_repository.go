package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/okihome/rentwatch-backend-go/internal/models"
)

// listingColumns is the canonical SELECT column order shared by every
// listing query; scanListing must match it.
const listingColumns = `id, source, source_id, source_url, name, address,
	municipality, municipality_code, latitude, longitude,
	rent, management_fee, property_type, structure, floor_plan, room_count,
	area_sqm, building_age, floor_number, total_floors,
	nearest_station, station_walk_minutes, transport_type, parking_available,
	has_aircon, has_auto_lock, has_delivery_box, has_bath_dryer, has_reheating,
	has_washstand, has_indoor_laundry, has_internet, has_fiber,
	has_bath_toilet_separate, has_flooring, has_pet_ok,
	estimated_rent, affordability_score, estimated_at,
	scraped_at, updated_at, is_active, notified`

// ListingRepository handles database operations for rental listings
type ListingRepository struct {
	db *sql.DB
}

// NewListingRepository creates a new listing repository
func NewListingRepository(db *sql.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// Upsert inserts a listing or updates the existing row keyed by
// (source, source_id). Re-seen listings are reactivated.
func (r *ListingRepository) Upsert(l *models.Listing) (int64, error) {
	query := `
		INSERT INTO properties (
			source, source_id, source_url, name, address,
			municipality, municipality_code, latitude, longitude,
			rent, management_fee, property_type, structure, floor_plan, room_count,
			area_sqm, building_age, floor_number, total_floors,
			nearest_station, station_walk_minutes, transport_type, parking_available,
			has_aircon, has_auto_lock, has_delivery_box, has_bath_dryer, has_reheating,
			has_washstand, has_indoor_laundry, has_internet, has_fiber,
			has_bath_toilet_separate, has_flooring, has_pet_ok
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source, source_id) DO UPDATE SET
			source_url = excluded.source_url,
			name = excluded.name,
			address = excluded.address,
			municipality = excluded.municipality,
			municipality_code = excluded.municipality_code,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			rent = excluded.rent,
			management_fee = excluded.management_fee,
			property_type = excluded.property_type,
			structure = excluded.structure,
			floor_plan = excluded.floor_plan,
			room_count = excluded.room_count,
			area_sqm = excluded.area_sqm,
			building_age = excluded.building_age,
			floor_number = excluded.floor_number,
			total_floors = excluded.total_floors,
			nearest_station = excluded.nearest_station,
			station_walk_minutes = excluded.station_walk_minutes,
			transport_type = excluded.transport_type,
			parking_available = excluded.parking_available,
			has_aircon = excluded.has_aircon,
			has_auto_lock = excluded.has_auto_lock,
			has_delivery_box = excluded.has_delivery_box,
			has_bath_dryer = excluded.has_bath_dryer,
			has_reheating = excluded.has_reheating,
			has_washstand = excluded.has_washstand,
			has_indoor_laundry = excluded.has_indoor_laundry,
			has_internet = excluded.has_internet,
			has_fiber = excluded.has_fiber,
			has_bath_toilet_separate = excluded.has_bath_toilet_separate,
			has_flooring = excluded.has_flooring,
			has_pet_ok = excluded.has_pet_ok,
			updated_at = datetime('now', 'localtime'),
			is_active = 1`

	result, err := r.db.Exec(query,
		l.Source, l.SourceID, nullStr(l.SourceURL), nullStr(l.Name), nullStr(l.Address),
		nullStr(l.Municipality), nullStr(l.MunicipalityCode), l.Latitude, l.Longitude,
		l.Rent, l.ManagementFee, nullStr(l.PropertyType), nullStr(l.Structure),
		nullStr(l.FloorPlan), l.RoomCount,
		l.AreaSqm, l.BuildingAge, l.FloorNumber, l.TotalFloors,
		nullStr(l.NearestStation), l.StationWalkMinutes, nullStr(l.TransportType),
		boolInt(l.ParkingAvailable),
		boolInt(l.HasAircon), boolInt(l.HasAutoLock), boolInt(l.HasDeliveryBox),
		boolInt(l.HasBathDryer), boolInt(l.HasReheating), boolInt(l.HasWashstand),
		boolInt(l.HasIndoorLaundry), boolInt(l.HasInternet), boolInt(l.HasFiber),
		boolInt(l.HasBathToiletSeparate), boolInt(l.HasFlooring), boolInt(l.HasPetOK),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert listing %s/%s: %w", l.Source, l.SourceID, err)
	}
	return result.LastInsertId()
}

// GetByID retrieves one listing by primary key
func (r *ListingRepository) GetByID(id int64) (*models.Listing, error) {
	row := r.db.QueryRow("SELECT "+listingColumns+" FROM properties WHERE id = ?", id)
	l, err := scanListing(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing %d: %w", id, err)
	}
	return l, nil
}

// Search retrieves active listings matching the filter, paginated
func (r *ListingRepository) Search(filter models.ListingFilter) (*models.ListingsResponse, error) {
	conditions, args := buildListingConditions(filter)
	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	var total int64
	if err := r.db.QueryRow("SELECT COUNT(*) FROM properties"+whereClause, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count listings: %w", err)
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"rent": true, "area_sqm": true, "building_age": true,
		"scraped_at": true, "affordability_score": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "rent"
	}
	sortOrder := "ASC"
	if strings.EqualFold(filter.SortOrder, "DESC") {
		sortOrder = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 500 {
		pageSize = 100
	}

	query := fmt.Sprintf("SELECT %s FROM properties%s ORDER BY %s %s LIMIT ? OFFSET ?",
		listingColumns, whereClause, sortBy, sortOrder)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}
	defer rows.Close()

	listings, err := scanListings(rows)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &models.ListingsResponse{
		Data:       listings,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// GetTrainingData retrieves listings eligible for model training:
// active with rent, area and municipality code all present.
func (r *ListingRepository) GetTrainingData() ([]models.Listing, error) {
	query := "SELECT " + listingColumns + ` FROM properties
		WHERE is_active = 1
			AND rent > 0
			AND area_sqm IS NOT NULL
			AND municipality_code IS NOT NULL
		ORDER BY id`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query training data: %w", err)
	}
	defer rows.Close()
	return scanListings(rows)
}

// GetAllActive retrieves every active listing regardless of completeness,
// used when re-scoring the whole inventory after training.
func (r *ListingRepository) GetAllActive(limit int) ([]models.Listing, error) {
	if limit <= 0 {
		limit = 10000
	}
	query := "SELECT " + listingColumns + " FROM properties WHERE is_active = 1 ORDER BY id LIMIT ?"
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query active listings: %w", err)
	}
	defer rows.Close()
	return scanListings(rows)
}

// UpdateEstimation writes the estimation results back onto a listing
func (r *ListingRepository) UpdateEstimation(id int64, estimatedRent int64, affordabilityScore float64) error {
	_, err := r.db.Exec(`
		UPDATE properties
		SET estimated_rent = ?, affordability_score = ?,
			estimated_at = datetime('now', 'localtime')
		WHERE id = ?`,
		estimatedRent, affordabilityScore, id)
	if err != nil {
		return fmt.Errorf("failed to update estimation for listing %d: %w", id, err)
	}
	return nil
}

// MarkInactiveExcept deactivates listings of a source whose source_id is
// not in the given set (delisting detection after a scrape cycle).
func (r *ListingRepository) MarkInactiveExcept(source string, sourceIDs []string) (int64, error) {
	if len(sourceIDs) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(sourceIDs)), ", ")
	args := make([]interface{}, 0, len(sourceIDs)+1)
	args = append(args, source)
	for _, id := range sourceIDs {
		args = append(args, id)
	}

	result, err := r.db.Exec(fmt.Sprintf(`
		UPDATE properties
		SET is_active = 0, updated_at = datetime('now', 'localtime')
		WHERE source = ? AND source_id NOT IN (%s) AND is_active = 1`, placeholders),
		args...)
	if err != nil {
		return 0, fmt.Errorf("failed to mark listings inactive: %w", err)
	}
	return result.RowsAffected()
}

// GetUnnotifiedBargains retrieves active, unnotified listings whose
// affordability score is at or below the threshold, cheapest deals first.
func (r *ListingRepository) GetUnnotifiedBargains(maxScore float64, limit int) ([]models.Listing, error) {
	if limit <= 0 {
		limit = 20
	}
	query := "SELECT " + listingColumns + ` FROM properties
		WHERE is_active = 1 AND notified = 0
			AND affordability_score IS NOT NULL
			AND affordability_score <= ?
		ORDER BY affordability_score ASC
		LIMIT ?`
	rows, err := r.db.Query(query, maxScore, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query bargains: %w", err)
	}
	defer rows.Close()
	return scanListings(rows)
}

// GetBargains retrieves active listings whose affordability score is at or
// below the threshold, regardless of notification state, cheapest deals first.
func (r *ListingRepository) GetBargains(maxScore float64, limit int) ([]models.Listing, error) {
	if limit <= 0 {
		limit = 50
	}
	query := "SELECT " + listingColumns + ` FROM properties
		WHERE is_active = 1
			AND affordability_score IS NOT NULL
			AND affordability_score <= ?
		ORDER BY affordability_score ASC
		LIMIT ?`
	rows, err := r.db.Query(query, maxScore, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query bargains: %w", err)
	}
	defer rows.Close()
	return scanListings(rows)
}

// MarkNotified sets the notified flag on the given listings
func (r *ListingRepository) MarkNotified(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := r.db.Exec(
		fmt.Sprintf("UPDATE properties SET notified = 1 WHERE id IN (%s)", placeholders),
		args...)
	if err != nil {
		return fmt.Errorf("failed to mark listings notified: %w", err)
	}
	return nil
}

// GetStatistics retrieves aggregate market statistics, optionally
// restricted to one municipality code.
func (r *ListingRepository) GetStatistics(municipalityCode string) (*models.MarketStatistics, error) {
	conditions := []string{"is_active = 1"}
	var args []interface{}
	if municipalityCode != "" {
		conditions = append(conditions, "municipality_code = ?")
		args = append(args, municipalityCode)
	}
	whereClause := strings.Join(conditions, " AND ")

	stats := &models.MarketStatistics{MunicipalityCode: municipalityCode}
	var avgRent, avgArea, avgAge, avgScore sql.NullFloat64
	var minRent, maxRent sql.NullInt64
	err := r.db.QueryRow(fmt.Sprintf(`
		SELECT COUNT(*), AVG(rent), MIN(rent), MAX(rent),
			AVG(area_sqm), AVG(building_age), AVG(affordability_score)
		FROM properties WHERE %s`, whereClause), args...).
		Scan(&stats.Total, &avgRent, &minRent, &maxRent, &avgArea, &avgAge, &avgScore)
	if err != nil {
		return nil, fmt.Errorf("failed to get statistics: %w", err)
	}
	stats.AvgRent = avgRent.Float64
	stats.MinRent = minRent.Int64
	stats.MaxRent = maxRent.Int64
	stats.AvgAreaSqm = avgArea.Float64
	stats.AvgBuildingAge = avgAge.Float64
	stats.AvgScore = avgScore.Float64
	return stats, nil
}

// GetActiveRents returns (municipality, rent, area) triples for all active
// listings, for in-memory ranking computations.
func (r *ListingRepository) GetActiveRents() ([]models.Listing, error) {
	rows, err := r.db.Query(`
		SELECT id, municipality, municipality_code, rent, area_sqm FROM properties
		WHERE is_active = 1 AND rent > 0`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rents: %w", err)
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		var l models.Listing
		var municipality, municipalityCode sql.NullString
		var area sql.NullFloat64
		if err := rows.Scan(&l.ID, &municipality, &municipalityCode, &l.Rent, &area); err != nil {
			return nil, fmt.Errorf("failed to scan rent row: %w", err)
		}
		l.Municipality = municipality.String
		l.MunicipalityCode = municipalityCode.String
		if area.Valid {
			l.AreaSqm = &area.Float64
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func buildListingConditions(filter models.ListingFilter) ([]string, []interface{}) {
	conditions := []string{"is_active = 1"}
	var args []interface{}

	if len(filter.MunicipalityCodes) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(filter.MunicipalityCodes)), ", ")
		conditions = append(conditions, fmt.Sprintf("municipality_code IN (%s)", placeholders))
		for _, code := range filter.MunicipalityCodes {
			args = append(args, code)
		}
	}
	if filter.RentMin != nil {
		conditions = append(conditions, "rent >= ?")
		args = append(args, *filter.RentMin)
	}
	if filter.RentMax != nil {
		conditions = append(conditions, "rent <= ?")
		args = append(args, *filter.RentMax)
	}
	if len(filter.FloorPlans) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(filter.FloorPlans)), ", ")
		conditions = append(conditions, fmt.Sprintf("floor_plan IN (%s)", placeholders))
		for _, fp := range filter.FloorPlans {
			args = append(args, fp)
		}
	}
	if filter.AreaMin != nil {
		conditions = append(conditions, "area_sqm >= ?")
		args = append(args, *filter.AreaMin)
	}
	if filter.AreaMax != nil {
		conditions = append(conditions, "area_sqm <= ?")
		args = append(args, *filter.AreaMax)
	}
	if filter.BuildingAgeMax != nil {
		conditions = append(conditions, "building_age <= ?")
		args = append(args, *filter.BuildingAgeMax)
	}
	if len(filter.Structures) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(filter.Structures)), ", ")
		conditions = append(conditions, fmt.Sprintf("structure IN (%s)", placeholders))
		for _, s := range filter.Structures {
			args = append(args, s)
		}
	}
	if filter.ParkingRequired {
		conditions = append(conditions, "parking_available = 1")
	}
	for _, a := range filter.Amenities {
		if col, ok := amenityColumns[a]; ok {
			conditions = append(conditions, col+" = 1")
		}
	}
	if filter.FloorMin != nil {
		conditions = append(conditions, "floor_number >= ?")
		args = append(args, *filter.FloorMin)
	}

	return conditions, args
}

// amenityColumns maps amenity identifiers to their columns; filtering goes
// through this table so request input never reaches SQL identifiers.
var amenityColumns = map[models.Amenity]string{
	models.AmenityAircon:             "has_aircon",
	models.AmenityAutoLock:           "has_auto_lock",
	models.AmenityDeliveryBox:        "has_delivery_box",
	models.AmenityBathDryer:          "has_bath_dryer",
	models.AmenityReheating:          "has_reheating",
	models.AmenityWashstand:          "has_washstand",
	models.AmenityIndoorLaundry:      "has_indoor_laundry",
	models.AmenityInternet:           "has_internet",
	models.AmenityFiber:              "has_fiber",
	models.AmenityBathToiletSeparate: "has_bath_toilet_separate",
	models.AmenityFlooring:           "has_flooring",
	models.AmenityPetOK:              "has_pet_ok",
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanListing(row rowScanner) (*models.Listing, error) {
	var l models.Listing
	var sourceURL, name, address, municipality, municipalityCode sql.NullString
	var propertyType, structure, floorPlan, nearestStation, transportType sql.NullString
	var estimatedAt, scrapedAt, updatedAt sql.NullString
	var latitude, longitude, areaSqm, affordability sql.NullFloat64
	var roomCount, buildingAge, floorNumber, totalFloors, stationWalk sql.NullInt64
	var estimatedRent sql.NullInt64
	var parking, aircon, autoLock, deliveryBox, bathDryer, reheating int
	var washstand, indoorLaundry, internet, fiber, bathToilet, flooring, petOK int
	var isActive, notified int

	err := row.Scan(
		&l.ID, &l.Source, &l.SourceID, &sourceURL, &name, &address,
		&municipality, &municipalityCode, &latitude, &longitude,
		&l.Rent, &l.ManagementFee, &propertyType, &structure, &floorPlan, &roomCount,
		&areaSqm, &buildingAge, &floorNumber, &totalFloors,
		&nearestStation, &stationWalk, &transportType, &parking,
		&aircon, &autoLock, &deliveryBox, &bathDryer, &reheating,
		&washstand, &indoorLaundry, &internet, &fiber,
		&bathToilet, &flooring, &petOK,
		&estimatedRent, &affordability, &estimatedAt,
		&scrapedAt, &updatedAt, &isActive, &notified,
	)
	if err != nil {
		return nil, err
	}

	l.SourceURL = sourceURL.String
	l.Name = name.String
	l.Address = address.String
	l.Municipality = municipality.String
	l.MunicipalityCode = municipalityCode.String
	if latitude.Valid {
		l.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		l.Longitude = &longitude.Float64
	}
	l.PropertyType = propertyType.String
	l.Structure = structure.String
	l.FloorPlan = floorPlan.String
	if roomCount.Valid {
		l.RoomCount = &roomCount.Int64
	}
	if areaSqm.Valid {
		l.AreaSqm = &areaSqm.Float64
	}
	if buildingAge.Valid {
		l.BuildingAge = &buildingAge.Int64
	}
	if floorNumber.Valid {
		l.FloorNumber = &floorNumber.Int64
	}
	if totalFloors.Valid {
		l.TotalFloors = &totalFloors.Int64
	}
	l.NearestStation = nearestStation.String
	if stationWalk.Valid {
		l.StationWalkMinutes = &stationWalk.Int64
	}
	l.TransportType = transportType.String
	l.ParkingAvailable = parking != 0
	l.HasAircon = aircon != 0
	l.HasAutoLock = autoLock != 0
	l.HasDeliveryBox = deliveryBox != 0
	l.HasBathDryer = bathDryer != 0
	l.HasReheating = reheating != 0
	l.HasWashstand = washstand != 0
	l.HasIndoorLaundry = indoorLaundry != 0
	l.HasInternet = internet != 0
	l.HasFiber = fiber != 0
	l.HasBathToiletSeparate = bathToilet != 0
	l.HasFlooring = flooring != 0
	l.HasPetOK = petOK != 0
	if estimatedRent.Valid {
		l.EstimatedRent = &estimatedRent.Int64
	}
	if affordability.Valid {
		l.AffordabilityScore = &affordability.Float64
	}
	l.EstimatedAt = estimatedAt.String
	l.ScrapedAt = scrapedAt.String
	l.UpdatedAt = updatedAt.String
	l.IsActive = isActive != 0
	l.Notified = notified != 0

	return &l, nil
}

func scanListings(rows *sql.Rows) ([]models.Listing, error) {
	var listings []models.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, *l)
	}
	return listings, rows.Err()
}

func nullStr(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package repository

import (
	"database/sql"
	"fmt"

	"github.com/okihome/rentwatch-backend-go/internal/models"
	"github.com/okihome/rentwatch-backend-go/internal/spatial"
)

// LandPriceRepository handles database operations for land-price data
type LandPriceRepository struct {
	db *sql.DB
}

// NewLandPriceRepository creates a new land-price repository
func NewLandPriceRepository(db *sql.DB) *LandPriceRepository {
	return &LandPriceRepository{db: db}
}

// Upsert inserts or updates one observation keyed by (data_source, year, address)
func (r *LandPriceRepository) Upsert(lp *models.LandPrice) error {
	_, err := r.db.Exec(`
		INSERT INTO land_prices (
			data_source, year, municipality, municipality_code, address,
			latitude, longitude, price_per_sqm, land_use, zoning,
			nearest_station, station_distance_m
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(data_source, year, address) DO UPDATE SET
			municipality = excluded.municipality,
			municipality_code = excluded.municipality_code,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			price_per_sqm = excluded.price_per_sqm,
			land_use = excluded.land_use,
			zoning = excluded.zoning,
			nearest_station = excluded.nearest_station,
			station_distance_m = excluded.station_distance_m,
			fetched_at = datetime('now', 'localtime')`,
		lp.DataSource, lp.Year, nullStr(lp.Municipality), nullStr(lp.MunicipalityCode),
		lp.Address, lp.Latitude, lp.Longitude, lp.PricePerSqm,
		nullStr(lp.LandUse), nullStr(lp.Zoning), nullStr(lp.NearestStation),
		lp.StationDistanceM,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert land price %s/%d/%s: %w",
			lp.DataSource, lp.Year, lp.Address, err)
	}
	return nil
}

// GetAll retrieves the full land-price reference table
func (r *LandPriceRepository) GetAll() ([]models.LandPrice, error) {
	rows, err := r.db.Query(`
		SELECT id, data_source, year, municipality, municipality_code, address,
			latitude, longitude, price_per_sqm, land_use, zoning,
			nearest_station, station_distance_m, fetched_at
		FROM land_prices`)
	if err != nil {
		return nil, fmt.Errorf("failed to query land prices: %w", err)
	}
	defer rows.Close()
	return scanLandPrices(rows)
}

// GetAveragePrice returns the mean price per sqm for one municipality code,
// optionally restricted to a year. Returns 0, false when no data matches.
func (r *LandPriceRepository) GetAveragePrice(municipalityCode string, year int) (float64, bool, error) {
	query := "SELECT AVG(price_per_sqm) FROM land_prices WHERE municipality_code = ?"
	args := []interface{}{municipalityCode}
	if year > 0 {
		query += " AND year = ?"
		args = append(args, year)
	}

	var avg sql.NullFloat64
	if err := r.db.QueryRow(query, args...).Scan(&avg); err != nil {
		return 0, false, fmt.Errorf("failed to get average land price: %w", err)
	}
	return avg.Float64, avg.Valid, nil
}

// GetNearby retrieves observations within radiusKm of a point. A bounding
// box narrows the candidates in SQL; exact distances are checked in Go.
func (r *LandPriceRepository) GetNearby(lat, lon, radiusKm float64) ([]models.LandPrice, error) {
	latMin, latMax, lonMin, lonMax := spatial.BoundingBox(lat, lon, radiusKm)

	rows, err := r.db.Query(`
		SELECT id, data_source, year, municipality, municipality_code, address,
			latitude, longitude, price_per_sqm, land_use, zoning,
			nearest_station, station_distance_m, fetched_at
		FROM land_prices
		WHERE latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?
		ORDER BY price_per_sqm DESC`,
		latMin, latMax, lonMin, lonMax)
	if err != nil {
		return nil, fmt.Errorf("failed to query nearby land prices: %w", err)
	}
	defer rows.Close()

	candidates, err := scanLandPrices(rows)
	if err != nil {
		return nil, err
	}

	var nearby []models.LandPrice
	for _, lp := range candidates {
		if lp.Latitude == nil || lp.Longitude == nil {
			continue
		}
		if spatial.HaversineDistance(lat, lon, *lp.Latitude, *lp.Longitude) <= radiusKm*1000 {
			nearby = append(nearby, lp)
		}
	}
	return nearby, nil
}

func scanLandPrices(rows *sql.Rows) ([]models.LandPrice, error) {
	var prices []models.LandPrice
	for rows.Next() {
		var lp models.LandPrice
		var municipality, municipalityCode, address sql.NullString
		var landUse, zoning, nearestStation, fetchedAt sql.NullString
		var latitude, longitude sql.NullFloat64
		var pricePerSqm, stationDistance sql.NullInt64

		if err := rows.Scan(
			&lp.ID, &lp.DataSource, &lp.Year, &municipality, &municipalityCode,
			&address, &latitude, &longitude, &pricePerSqm, &landUse, &zoning,
			&nearestStation, &stationDistance, &fetchedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan land price: %w", err)
		}

		lp.Municipality = municipality.String
		lp.MunicipalityCode = municipalityCode.String
		lp.Address = address.String
		if latitude.Valid {
			lp.Latitude = &latitude.Float64
		}
		if longitude.Valid {
			lp.Longitude = &longitude.Float64
		}
		if pricePerSqm.Valid {
			lp.PricePerSqm = &pricePerSqm.Int64
		}
		lp.LandUse = landUse.String
		lp.Zoning = zoning.String
		lp.NearestStation = nearestStation.String
		if stationDistance.Valid {
			lp.StationDistanceM = &stationDistance.Int64
		}
		lp.FetchedAt = fetchedAt.String

		prices = append(prices, lp)
	}
	return prices, rows.Err()
}

package models

// LandPrice is one official land-price observation (MLIT published data),
// joined to listings by municipality code as an auxiliary pricing signal.
type LandPrice struct {
	ID               int64    `json:"id" db:"id"`
	DataSource       string   `json:"dataSource" db:"data_source"` // reinfolib/kokudo_l01/kokudo_l02
	Year             int      `json:"year" db:"year"`
	Municipality     string   `json:"municipality,omitempty" db:"municipality"`
	MunicipalityCode string   `json:"municipalityCode,omitempty" db:"municipality_code"`
	Address          string   `json:"address" db:"address"`
	Latitude         *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude        *float64 `json:"longitude,omitempty" db:"longitude"`
	PricePerSqm      *int64   `json:"pricePerSqm,omitempty" db:"price_per_sqm"`
	LandUse          string   `json:"landUse,omitempty" db:"land_use"`
	Zoning           string   `json:"zoning,omitempty" db:"zoning"`
	NearestStation   string   `json:"nearestStation,omitempty" db:"nearest_station"`
	StationDistanceM *int64   `json:"stationDistanceM,omitempty" db:"station_distance_m"`
	FetchedAt        string   `json:"fetchedAt,omitempty" db:"fetched_at"`
}

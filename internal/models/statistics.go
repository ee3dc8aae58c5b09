package models

// MarketStatistics summarizes active listings, optionally for one municipality.
type MarketStatistics struct {
	MunicipalityCode string  `json:"municipalityCode,omitempty"`
	Total            int64   `json:"total"`
	AvgRent          float64 `json:"avgRent"`
	MedianRent       float64 `json:"medianRent"`
	MinRent          int64   `json:"minRent"`
	MaxRent          int64   `json:"maxRent"`
	AvgAreaSqm       float64 `json:"avgAreaSqm"`
	AvgBuildingAge   float64 `json:"avgBuildingAge"`
	AvgScore         float64 `json:"avgScore"`
	GeneratedAt      string  `json:"generatedAt,omitempty"`
}

// MunicipalityMarket is one row of the per-municipality rent ranking.
type MunicipalityMarket struct {
	Municipality string  `json:"municipality"`
	Count        int     `json:"count"`
	AvgRent      float64 `json:"avgRent"`
	MedianRent   float64 `json:"medianRent"`
	AvgAreaSqm   float64 `json:"avgAreaSqm"`
	RentPerSqm   float64 `json:"rentPerSqm"`
}

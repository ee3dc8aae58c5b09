package models

// Amenity identifies one of the twelve equipment flags tracked per listing.
type Amenity string

const (
	AmenityAircon             Amenity = "aircon"
	AmenityAutoLock           Amenity = "auto_lock"
	AmenityDeliveryBox        Amenity = "delivery_box"
	AmenityBathDryer          Amenity = "bath_dryer"
	AmenityReheating          Amenity = "reheating"
	AmenityWashstand          Amenity = "washstand"
	AmenityIndoorLaundry      Amenity = "indoor_laundry"
	AmenityInternet           Amenity = "internet"
	AmenityFiber              Amenity = "fiber"
	AmenityBathToiletSeparate Amenity = "bath_toilet_separate"
	AmenityFlooring           Amenity = "flooring"
	AmenityPetOK              Amenity = "pet_ok"
)

// AllAmenities lists every known amenity in stable order.
var AllAmenities = []Amenity{
	AmenityAircon,
	AmenityAutoLock,
	AmenityDeliveryBox,
	AmenityBathDryer,
	AmenityReheating,
	AmenityWashstand,
	AmenityIndoorLaundry,
	AmenityInternet,
	AmenityFiber,
	AmenityBathToiletSeparate,
	AmenityFlooring,
	AmenityPetOK,
}

// Listing represents one scraped rental-property record.
// Pointer fields map to nullable columns; scraped sources are unreliable
// and most attributes can be absent.
type Listing struct {
	ID               int64  `json:"id" db:"id"`
	Source           string `json:"source" db:"source"`
	SourceID         string `json:"sourceId" db:"source_id"`
	SourceURL        string `json:"sourceUrl,omitempty" db:"source_url"`
	Name             string `json:"name,omitempty" db:"name"`
	Address          string `json:"address,omitempty" db:"address"`
	Municipality     string `json:"municipality,omitempty" db:"municipality"`
	MunicipalityCode string `json:"municipalityCode,omitempty" db:"municipality_code"`

	Latitude  *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude *float64 `json:"longitude,omitempty" db:"longitude"`

	Rent          int64 `json:"rent" db:"rent"` // yen per month, 0 when unknown
	ManagementFee int64 `json:"managementFee" db:"management_fee"`

	PropertyType       string   `json:"propertyType,omitempty" db:"property_type"`
	Structure          string   `json:"structure,omitempty" db:"structure"` // SRC/RC/S/LS/W
	FloorPlan          string   `json:"floorPlan,omitempty" db:"floor_plan"`
	RoomCount          *int64   `json:"roomCount,omitempty" db:"room_count"`
	AreaSqm            *float64 `json:"areaSqm,omitempty" db:"area_sqm"`
	BuildingAge        *int64   `json:"buildingAge,omitempty" db:"building_age"`
	FloorNumber        *int64   `json:"floorNumber,omitempty" db:"floor_number"`
	TotalFloors        *int64   `json:"totalFloors,omitempty" db:"total_floors"`
	NearestStation     string   `json:"nearestStation,omitempty" db:"nearest_station"`
	StationWalkMinutes *int64   `json:"stationWalkMinutes,omitempty" db:"station_walk_minutes"`
	TransportType      string   `json:"transportType,omitempty" db:"transport_type"` // monorail/bus
	ParkingAvailable   bool     `json:"parkingAvailable" db:"parking_available"`

	HasAircon             bool `json:"hasAircon" db:"has_aircon"`
	HasAutoLock           bool `json:"hasAutoLock" db:"has_auto_lock"`
	HasDeliveryBox        bool `json:"hasDeliveryBox" db:"has_delivery_box"`
	HasBathDryer          bool `json:"hasBathDryer" db:"has_bath_dryer"`
	HasReheating          bool `json:"hasReheating" db:"has_reheating"`
	HasWashstand          bool `json:"hasWashstand" db:"has_washstand"`
	HasIndoorLaundry      bool `json:"hasIndoorLaundry" db:"has_indoor_laundry"`
	HasInternet           bool `json:"hasInternet" db:"has_internet"`
	HasFiber              bool `json:"hasFiber" db:"has_fiber"`
	HasBathToiletSeparate bool `json:"hasBathToiletSeparate" db:"has_bath_toilet_separate"`
	HasFlooring           bool `json:"hasFlooring" db:"has_flooring"`
	HasPetOK              bool `json:"hasPetOk" db:"has_pet_ok"`

	EstimatedRent      *int64   `json:"estimatedRent,omitempty" db:"estimated_rent"`
	AffordabilityScore *float64 `json:"affordabilityScore,omitempty" db:"affordability_score"`
	EstimatedAt        string   `json:"estimatedAt,omitempty" db:"estimated_at"`

	ScrapedAt string `json:"scrapedAt,omitempty" db:"scraped_at"`
	UpdatedAt string `json:"updatedAt,omitempty" db:"updated_at"`
	IsActive  bool   `json:"isActive" db:"is_active"`
	Notified  bool   `json:"notified" db:"notified"`
}

// HasAmenity reports whether the given amenity flag is set.
func (l *Listing) HasAmenity(a Amenity) bool {
	switch a {
	case AmenityAircon:
		return l.HasAircon
	case AmenityAutoLock:
		return l.HasAutoLock
	case AmenityDeliveryBox:
		return l.HasDeliveryBox
	case AmenityBathDryer:
		return l.HasBathDryer
	case AmenityReheating:
		return l.HasReheating
	case AmenityWashstand:
		return l.HasWashstand
	case AmenityIndoorLaundry:
		return l.HasIndoorLaundry
	case AmenityInternet:
		return l.HasInternet
	case AmenityFiber:
		return l.HasFiber
	case AmenityBathToiletSeparate:
		return l.HasBathToiletSeparate
	case AmenityFlooring:
		return l.HasFlooring
	case AmenityPetOK:
		return l.HasPetOK
	}
	return false
}

// AmenityCount returns the number of set amenity flags.
func (l *Listing) AmenityCount() int {
	count := 0
	for _, a := range AllAmenities {
		if l.HasAmenity(a) {
			count++
		}
	}
	return count
}

// ListingsResponse represents a paginated response of listings
type ListingsResponse struct {
	Data       []Listing `json:"data"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	TotalPages int       `json:"totalPages"`
}

// ListingFilter represents filter parameters for querying listings
type ListingFilter struct {
	MunicipalityCodes []string  `form:"municipalityCodes"`
	RentMin           *int64    `form:"rentMin"`
	RentMax           *int64    `form:"rentMax"`
	FloorPlans        []string  `form:"floorPlans"`
	AreaMin           *float64  `form:"areaMin"`
	AreaMax           *float64  `form:"areaMax"`
	BuildingAgeMax    *int64    `form:"buildingAgeMax"`
	Structures        []string  `form:"structures"`
	ParkingRequired   bool      `form:"parkingRequired"`
	Amenities         []Amenity `form:"amenities"`
	FloorMin          *int64    `form:"floorMin"`
	SortBy            string    `form:"sortBy"`
	SortOrder         string    `form:"sortOrder"`
	Page              int       `form:"page"`
	PageSize          int       `form:"pageSize"`
}

package landprice

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/okihome/rentwatch-backend-go/internal/models"
	"github.com/okihome/rentwatch-backend-go/internal/repository"
)

const (
	reinfolibBaseURL = "https://www.reinfolib.mlit.go.jp/ex-api/external"

	// OkinawaPrefCode is the prefecture this service covers
	OkinawaPrefCode = "47"

	dataSourceReinfolib = "reinfolib"
)

// Client talks to the 不動産情報ライブラリ (reinfolib) API of MLIT
type Client struct {
	client *resty.Client
	apiKey string
}

// NewClient creates a reinfolib API client
func NewClient(apiKey string) *Client {
	client := resty.New().
		SetBaseURL(reinfolibBaseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetHeader("Ocp-Apim-Subscription-Key", apiKey)

	return &Client{client: client, apiKey: apiKey}
}

// Enabled reports whether an API key is configured
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// geoJSONResponse is the XPT002 response envelope
type geoJSONResponse struct {
	Features []struct {
		Geometry *struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Address          string `json:"address"`
			Municipality     string `json:"municipality"`
			MunicipalityCode string `json:"municipalityCode"`
			Price            *int64 `json:"price"`
			CurrentUse       string `json:"currentUse"`
			CityPlanning     string `json:"cityPlanning"`
			NearestStation   string `json:"nearestStation"`
			StationDistance  *int64 `json:"stationDistance"`
		} `json:"properties"`
	} `json:"features"`
}

// GetLandPrices fetches official land-price points for one year (XPT002).
// Features without geometry are dropped.
func (c *Client) GetLandPrices(year int, area string) ([]models.LandPrice, error) {
	if area == "" {
		area = OkinawaPrefCode
	}

	var body geoJSONResponse
	resp, err := c.client.R().
		SetQueryParam("year", fmt.Sprintf("%d", year)).
		SetQueryParam("area", area).
		SetResult(&body).
		Get("/XPT002")
	if err != nil {
		return nil, fmt.Errorf("reinfolib request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("reinfolib rejected request: status %d", resp.StatusCode())
	}

	var prices []models.LandPrice
	for _, f := range body.Features {
		if f.Geometry == nil || len(f.Geometry.Coordinates) < 2 {
			continue
		}
		lon := f.Geometry.Coordinates[0]
		lat := f.Geometry.Coordinates[1]
		prices = append(prices, models.LandPrice{
			DataSource:       dataSourceReinfolib,
			Year:             year,
			Municipality:     f.Properties.Municipality,
			MunicipalityCode: f.Properties.MunicipalityCode,
			Address:          f.Properties.Address,
			Latitude:         &lat,
			Longitude:        &lon,
			PricePerSqm:      f.Properties.Price,
			LandUse:          f.Properties.CurrentUse,
			Zoning:           f.Properties.CityPlanning,
			NearestStation:   f.Properties.NearestStation,
			StationDistanceM: f.Properties.StationDistance,
		})
	}
	return prices, nil
}

// Municipality is one row of the XIT002 municipality list
type Municipality struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GetMunicipalities fetches the municipality list for a prefecture (XIT002)
func (c *Client) GetMunicipalities(area string) ([]Municipality, error) {
	if area == "" {
		area = OkinawaPrefCode
	}

	var body struct {
		Data []Municipality `json:"data"`
	}
	resp, err := c.client.R().
		SetQueryParam("area", area).
		SetResult(&body).
		Get("/XIT002")
	if err != nil {
		return nil, fmt.Errorf("reinfolib request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("reinfolib rejected request: status %d", resp.StatusCode())
	}
	return body.Data, nil
}

// Fetcher pulls land prices from the API and stores them
type Fetcher struct {
	client *Client
	repo   *repository.LandPriceRepository
	logger *zap.Logger
}

// NewFetcher creates a land-price fetcher
func NewFetcher(client *Client, repo *repository.LandPriceRepository, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{client: client, repo: repo, logger: logger}
}

// FetchAndStore fetches one year of land prices and upserts them.
// Without an API key this is a logged no-op.
func (f *Fetcher) FetchAndStore(year int) (int, error) {
	if !f.client.Enabled() {
		f.logger.Info("reinfolib api key not configured, skipping land price fetch")
		return 0, nil
	}

	prices, err := f.client.GetLandPrices(year, OkinawaPrefCode)
	if err != nil {
		return 0, err
	}

	stored := 0
	for i := range prices {
		if prices[i].Address == "" {
			continue
		}
		if err := f.repo.Upsert(&prices[i]); err != nil {
			f.logger.Warn("failed to store land price",
				zap.String("address", prices[i].Address), zap.Error(err))
			continue
		}
		stored++
	}

	f.logger.Info("land prices stored",
		zap.Int("year", year), zap.Int("fetched", len(prices)), zap.Int("stored", stored))
	return stored, nil
}

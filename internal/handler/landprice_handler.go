package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/okihome/rentwatch-backend-go/internal/service"
	"github.com/okihome/rentwatch-backend-go/pkg/response"
)

// LandPriceHandler handles HTTP requests for land-price lookups
type LandPriceHandler struct {
	landPriceService *service.LandPriceService
}

// NewLandPriceHandler creates a new land-price handler
func NewLandPriceHandler(landPriceService *service.LandPriceService) *LandPriceHandler {
	return &LandPriceHandler{
		landPriceService: landPriceService,
	}
}

// GetNearby handles GET /api/v1/land-prices/nearby
func (h *LandPriceHandler) GetNearby(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		response.BadRequest(c, "Invalid lat parameter")
		return
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		response.BadRequest(c, "Invalid lon parameter")
		return
	}
	radiusKm, err := strconv.ParseFloat(c.DefaultQuery("radiusKm", "2"), 64)
	if err != nil {
		response.BadRequest(c, "Invalid radiusKm parameter")
		return
	}

	prices, err := h.landPriceService.GetNearby(lat, lon, radiusKm)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, prices)
}

package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/okihome/rentwatch-backend-go/internal/service"
	"github.com/okihome/rentwatch-backend-go/pkg/response"
)

// MarketHandler handles HTTP requests for market statistics
type MarketHandler struct {
	marketService *service.MarketService
}

// NewMarketHandler creates a new market handler
func NewMarketHandler(marketService *service.MarketService) *MarketHandler {
	return &MarketHandler{
		marketService: marketService,
	}
}

// GetStatistics handles GET /api/v1/market/statistics
func (h *MarketHandler) GetStatistics(c *gin.Context) {
	municipalityCode := c.Query("municipalityCode")

	stats, err := h.marketService.GetStatistics(municipalityCode)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, stats)
}

// GetRankings handles GET /api/v1/market/rankings
func (h *MarketHandler) GetRankings(c *gin.Context) {
	rankings, err := h.marketService.GetMunicipalityRankings()
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, rankings)
}

package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/okihome/rentwatch-backend-go/internal/models"
	"github.com/okihome/rentwatch-backend-go/internal/service"
	"github.com/okihome/rentwatch-backend-go/pkg/response"
)

// SearchHandler handles HTTP requests for listing search
type SearchHandler struct {
	searchService *service.SearchService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
	}
}

// Search handles GET /api/v1/listings
func (h *SearchHandler) Search(c *gin.Context) {
	var filter models.ListingFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid filter parameters: "+err.Error())
		return
	}

	result, err := h.searchService.Search(filter)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, result)
}

// GetBargains handles GET /api/v1/listings/bargains
func (h *SearchHandler) GetBargains(c *gin.Context) {
	maxScore, err := strconv.ParseFloat(c.DefaultQuery("maxScore", "0.85"), 64)
	if err != nil {
		response.BadRequest(c, "Invalid maxScore parameter")
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		response.BadRequest(c, "Invalid limit parameter")
		return
	}

	listings, err := h.searchService.GetBargains(maxScore, limit)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, listings)
}

// GetByID handles GET /api/v1/listings/:id
func (h *SearchHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid listing id")
		return
	}

	listing, err := h.searchService.GetByID(id)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	if listing == nil {
		response.NotFound(c, "Listing not found")
		return
	}

	response.Success(c, listing)
}

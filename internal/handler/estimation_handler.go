package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/okihome/rentwatch-backend-go/internal/models"
	"github.com/okihome/rentwatch-backend-go/internal/pricing"
	"github.com/okihome/rentwatch-backend-go/internal/service"
	"github.com/okihome/rentwatch-backend-go/pkg/response"
)

// EstimationHandler handles HTTP requests for rent estimation
type EstimationHandler struct {
	estimationService *service.EstimationService
}

// NewEstimationHandler creates a new estimation handler
func NewEstimationHandler(estimationService *service.EstimationService) *EstimationHandler {
	return &EstimationHandler{
		estimationService: estimationService,
	}
}

// Estimate handles POST /api/v1/estimate
func (h *EstimationHandler) Estimate(c *gin.Context) {
	var listing models.Listing
	if err := c.ShouldBindJSON(&listing); err != nil {
		response.BadRequest(c, "Invalid listing payload: "+err.Error())
		return
	}

	result, err := h.estimationService.Estimate(listing)
	if err != nil {
		if errors.Is(err, pricing.ErrNotFitted) {
			response.Error(c, 503, "No trained model available yet")
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, result)
}

// GetActiveModels handles GET /api/v1/models
func (h *EstimationHandler) GetActiveModels(c *gin.Context) {
	active, err := h.estimationService.ActiveModels()
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, active)
}

// GetFeatureImportances handles GET /api/v1/models/importances
func (h *EstimationHandler) GetFeatureImportances(c *gin.Context) {
	importances, err := h.estimationService.FeatureImportances()
	if err != nil {
		if errors.Is(err, pricing.ErrNotFitted) {
			response.Error(c, 503, "No trained model available yet")
			return
		}
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, importances)
}

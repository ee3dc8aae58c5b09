package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/okihome/rentwatch-backend-go/internal/landprice"
	"github.com/okihome/rentwatch-backend-go/internal/notification"
	"github.com/okihome/rentwatch-backend-go/internal/service"
	"github.com/okihome/rentwatch-backend-go/pkg/response"
)

// AdminHandler handles authenticated operational endpoints
type AdminHandler struct {
	trainingService   *service.TrainingService
	estimationService *service.EstimationService
	landPriceFetcher  *landprice.Fetcher
	notifier          *notification.Notifier
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	trainingService *service.TrainingService,
	estimationService *service.EstimationService,
	landPriceFetcher *landprice.Fetcher,
	notifier *notification.Notifier,
) *AdminHandler {
	return &AdminHandler{
		trainingService:   trainingService,
		estimationService: estimationService,
		landPriceFetcher:  landPriceFetcher,
		notifier:          notifier,
	}
}

// Train handles POST /admin/train
func (h *AdminHandler) Train(c *gin.Context) {
	report, err := h.trainingService.Run()
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, report)
}

// ListModels handles GET /admin/models
func (h *AdminHandler) ListModels(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		response.BadRequest(c, "Invalid limit parameter")
		return
	}

	records, err := h.estimationService.ModelHistory(limit)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, records)
}

// FetchLandPrices handles POST /admin/land-prices/fetch
func (h *AdminHandler) FetchLandPrices(c *gin.Context) {
	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(time.Now().Year())))
	if err != nil {
		response.BadRequest(c, "Invalid year parameter")
		return
	}

	stored, err := h.landPriceFetcher.FetchAndStore(year)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"year": year, "stored": stored})
}

// NotifyTest handles POST /admin/notify/test
func (h *AdminHandler) NotifyTest(c *gin.Context) {
	sent, err := h.notifier.NotifyBargains()
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"notified": sent})
}

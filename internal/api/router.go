package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/okihome/rentwatch-backend-go/internal/config"
	"github.com/okihome/rentwatch-backend-go/internal/handler"
	"github.com/okihome/rentwatch-backend-go/internal/middleware"
)

// Handlers bundles every handler the router mounts
type Handlers struct {
	Search     *handler.SearchHandler
	Estimation *handler.EstimationHandler
	Market     *handler.MarketHandler
	LandPrice  *handler.LandPriceHandler
	Admin      *handler.AdminHandler
	Webhook    *handler.WebhookHandler
}

// SetupRouter wires middleware and routes
func SetupRouter(cfg *config.Config, logger *zap.Logger, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.RateLimit(120, time.Minute))

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Rentwatch API is running",
		})
	})

	api := r.Group("/api/v1")
	{
		listings := api.Group("/listings")
		{
			listings.GET("", h.Search.Search)
			listings.GET("/bargains", h.Search.GetBargains)
			listings.GET("/:id", h.Search.GetByID)
		}

		api.POST("/estimate", h.Estimation.Estimate)
		api.GET("/models", h.Estimation.GetActiveModels)
		api.GET("/models/importances", h.Estimation.GetFeatureImportances)

		market := api.Group("/market")
		{
			market.GET("/statistics", h.Market.GetStatistics)
			market.GET("/municipalities", h.Market.GetRankings)
		}

		api.GET("/land-prices/nearby", h.LandPrice.GetNearby)
	}

	admin := r.Group("/admin", middleware.Auth(cfg.JWTSecret))
	{
		admin.POST("/train", h.Admin.Train)
		admin.GET("/models", h.Admin.ListModels)
		admin.POST("/land-prices/fetch", h.Admin.FetchLandPrices)
		admin.POST("/notify/test", h.Admin.NotifyTest)
	}

	r.POST("/webhook/line", h.Webhook.HandleLine)

	return r
}

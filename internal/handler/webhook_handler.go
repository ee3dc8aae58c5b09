package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/okihome/rentwatch-backend-go/internal/notification"
	"github.com/okihome/rentwatch-backend-go/internal/repository"
	"github.com/okihome/rentwatch-backend-go/pkg/response"
)

// WebhookHandler handles LINE platform callbacks
type WebhookHandler struct {
	channelSecret    string
	notificationRepo *repository.NotificationRepository
	logger           *zap.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(channelSecret string, notificationRepo *repository.NotificationRepository, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{
		channelSecret:    channelSecret,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// HandleLine handles POST /webhook/line. Follow events register the user,
// unfollow events remove them; everything else is acknowledged and ignored.
func (h *WebhookHandler) HandleLine(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.BadRequest(c, "Failed to read body")
		return
	}

	signature := c.GetHeader("X-Line-Signature")
	if !notification.VerifySignature(h.channelSecret, body, signature) {
		response.Unauthorized(c, "Invalid signature")
		return
	}

	events, err := notification.ParseWebhookEvents(body)
	if err != nil {
		response.BadRequest(c, "Invalid webhook payload")
		return
	}

	for _, event := range events {
		userID := event.Source.UserID
		if !notification.ValidLineUserID(userID) {
			continue
		}
		switch event.Type {
		case "follow":
			if err := h.notificationRepo.SaveLineUser(userID); err != nil {
				h.logger.Error("failed to register line user", zap.Error(err))
			} else {
				h.logger.Info("line user registered", zap.String("userId", userID))
			}
		case "unfollow":
			if err := h.notificationRepo.RemoveLineUser(userID); err != nil {
				h.logger.Error("failed to remove line user", zap.Error(err))
			}
		}
	}

	c.Status(http.StatusOK)
}

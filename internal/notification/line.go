package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/okihome/rentwatch-backend-go/internal/models"
)

const lineAPIBaseURL = "https://api.line.me"

// LINE multicast accepts at most 500 recipients per call.
const maxMulticastRecipients = 500

// LineClient sends push messages through the LINE Messaging API
type LineClient struct {
	client *resty.Client
	token  string
}

// NewLineClient creates a LINE messaging client.
// An empty token yields a client whose sends are rejected, so callers can
// construct it unconditionally and check Enabled before use.
func NewLineClient(channelToken string) *LineClient {
	client := resty.New().
		SetBaseURL(lineAPIBaseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(2)

	return &LineClient{
		client: client,
		token:  channelToken,
	}
}

// Enabled reports whether a channel token is configured
func (c *LineClient) Enabled() bool {
	return c.token != ""
}

type lineTextMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type lineMulticastRequest struct {
	To       []string          `json:"to"`
	Messages []lineTextMessage `json:"messages"`
}

// Multicast sends one text message to the given user ids, chunked to the
// API's recipient limit
func (c *LineClient) Multicast(userIDs []string, text string) error {
	if !c.Enabled() {
		return fmt.Errorf("line channel token is not configured")
	}
	if len(userIDs) == 0 {
		return nil
	}

	for start := 0; start < len(userIDs); start += maxMulticastRecipients {
		end := start + maxMulticastRecipients
		if end > len(userIDs) {
			end = len(userIDs)
		}

		resp, err := c.client.R().
			SetHeader("Authorization", "Bearer "+c.token).
			SetHeader("Content-Type", "application/json").
			SetBody(lineMulticastRequest{
				To:       userIDs[start:end],
				Messages: []lineTextMessage{{Type: "text", Text: text}},
			}).
			Post("/v2/bot/message/multicast")
		if err != nil {
			return fmt.Errorf("failed to send line multicast: %w", err)
		}
		if resp.IsError() {
			return fmt.Errorf("line multicast rejected: status %d: %s",
				resp.StatusCode(), resp.String())
		}
	}
	return nil
}

// FormatBargainMessage renders the notification text for a batch of
// under-priced listings
func FormatBargainMessage(listings []models.Listing) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🏠 お得な物件が%d件見つかりました\n", len(listings)))

	for i, l := range listings {
		b.WriteString("\n")
		name := l.Name
		if name == "" {
			name = l.Address
		}
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, name))
		b.WriteString(fmt.Sprintf("   家賃: %s円", formatYen(l.Rent)))
		if l.EstimatedRent != nil {
			b.WriteString(fmt.Sprintf(" (相場: %s円)", formatYen(*l.EstimatedRent)))
		}
		b.WriteString("\n")
		if l.FloorPlan != "" || l.AreaSqm != nil {
			b.WriteString("   ")
			if l.FloorPlan != "" {
				b.WriteString(l.FloorPlan)
			}
			if l.AreaSqm != nil {
				if l.FloorPlan != "" {
					b.WriteString(" / ")
				}
				b.WriteString(fmt.Sprintf("%.1f㎡", *l.AreaSqm))
			}
			b.WriteString("\n")
		}
		if l.AffordabilityScore != nil {
			b.WriteString(fmt.Sprintf("   割安度: %.0f%%\n", *l.AffordabilityScore*100))
		}
		if l.SourceURL != "" {
			b.WriteString("   " + l.SourceURL + "\n")
		}
	}
	return b.String()
}

// formatYen inserts thousands separators into a yen amount
func formatYen(v int64) string {
	s := fmt.Sprintf("%d", v)
	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if negative {
		out = "-" + out
	}
	return out
}

// Notifier finds unnotified bargains and pushes them to LINE followers
type Notifier struct {
	client           *LineClient
	listingRepo      listingSource
	notificationRepo userSource
	threshold        float64
	logger           *zap.Logger
}

// listingSource is the slice of the listing repository the notifier needs
type listingSource interface {
	GetUnnotifiedBargains(maxScore float64, limit int) ([]models.Listing, error)
	MarkNotified(ids []int64) error
}

// userSource is the slice of the notification repository the notifier needs
type userSource interface {
	GetLineUserIDs() ([]string, error)
	LogDelivery(propertyID int64, status string) error
}

// NewNotifier creates a bargain notifier
func NewNotifier(
	client *LineClient,
	listingRepo listingSource,
	notificationRepo userSource,
	threshold float64,
	logger *zap.Logger,
) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if threshold <= 0 {
		threshold = 0.85
	}
	return &Notifier{
		client:           client,
		listingRepo:      listingRepo,
		notificationRepo: notificationRepo,
		threshold:        threshold,
		logger:           logger,
	}
}

// NotifyBargains sends one message covering all unnotified bargain listings.
// Listings are marked notified only after a successful send.
func (n *Notifier) NotifyBargains() (int, error) {
	listings, err := n.listingRepo.GetUnnotifiedBargains(n.threshold, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to load bargains: %w", err)
	}
	if len(listings) == 0 {
		n.logger.Debug("no new bargains to notify")
		return 0, nil
	}

	if !n.client.Enabled() {
		n.logger.Warn("line notifications disabled, skipping",
			zap.Int("bargains", len(listings)))
		return 0, nil
	}

	userIDs, err := n.notificationRepo.GetLineUserIDs()
	if err != nil {
		return 0, fmt.Errorf("failed to load line users: %w", err)
	}
	if len(userIDs) == 0 {
		n.logger.Info("no line followers registered, skipping notification")
		return 0, nil
	}

	message := FormatBargainMessage(listings)
	if err := n.client.Multicast(userIDs, message); err != nil {
		for _, l := range listings {
			n.notificationRepo.LogDelivery(l.ID, "failed")
		}
		return 0, err
	}

	ids := make([]int64, len(listings))
	for i, l := range listings {
		ids[i] = l.ID
		if err := n.notificationRepo.LogDelivery(l.ID, "sent"); err != nil {
			n.logger.Warn("failed to log delivery",
				zap.Int64("propertyId", l.ID), zap.Error(err))
		}
	}
	if err := n.listingRepo.MarkNotified(ids); err != nil {
		return len(listings), fmt.Errorf("sent but failed to mark notified: %w", err)
	}

	n.logger.Info("bargain notification sent",
		zap.Int("listings", len(listings)), zap.Int("recipients", len(userIDs)))
	return len(listings), nil
}

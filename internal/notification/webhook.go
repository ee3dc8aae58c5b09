package notification

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"
)

// lineUserIDPattern matches the id format LINE assigns to users
var lineUserIDPattern = regexp.MustCompile(`^U[0-9a-f]{32}$`)

// ValidLineUserID reports whether s looks like a LINE user id
func ValidLineUserID(s string) bool {
	return lineUserIDPattern.MatchString(s)
}

// VerifySignature checks the X-Line-Signature header against the request
// body using the channel secret
func VerifySignature(channelSecret string, body []byte, signature string) bool {
	if channelSecret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(channelSecret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// WebhookEvent is one event in a LINE webhook delivery
type WebhookEvent struct {
	Type   string `json:"type"`
	Source struct {
		Type   string `json:"type"`
		UserID string `json:"userId"`
	} `json:"source"`
}

// webhookBody is the envelope LINE posts to the webhook endpoint
type webhookBody struct {
	Events []WebhookEvent `json:"events"`
}

// ParseWebhookEvents decodes the webhook payload
func ParseWebhookEvents(body []byte) ([]WebhookEvent, error) {
	var envelope webhookBody
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode webhook body: %w", err)
	}
	return envelope.Events, nil
}

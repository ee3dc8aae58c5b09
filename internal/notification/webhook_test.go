package notification

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := "channel-secret"
	body := []byte(`{"events":[]}`)

	assert.True(t, VerifySignature(secret, body, sign(secret, body)))
	assert.False(t, VerifySignature(secret, body, sign("wrong-secret", body)))
	assert.False(t, VerifySignature(secret, []byte("tampered"), sign(secret, body)))
	assert.False(t, VerifySignature(secret, body, ""))
	assert.False(t, VerifySignature("", body, sign("", body)))
}

func TestValidLineUserID(t *testing.T) {
	assert.True(t, ValidLineUserID("U0123456789abcdef0123456789abcdef"))
	assert.False(t, ValidLineUserID(""))
	assert.False(t, ValidLineUserID("U0123"))
	assert.False(t, ValidLineUserID("X0123456789abcdef0123456789abcdef"))
	// Uppercase hex is not part of the format.
	assert.False(t, ValidLineUserID("U0123456789ABCDEF0123456789ABCDEF"))
}

func TestParseWebhookEvents(t *testing.T) {
	body := []byte(`{
		"events": [
			{"type": "follow", "source": {"type": "user", "userId": "U0123456789abcdef0123456789abcdef"}},
			{"type": "message", "source": {"type": "user", "userId": "Ufedcba9876543210fedcba9876543210"}}
		]
	}`)

	events, err := ParseWebhookEvents(body)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "follow", events[0].Type)
	assert.Equal(t, "U0123456789abcdef0123456789abcdef", events[0].Source.UserID)

	_, err = ParseWebhookEvents([]byte("not json"))
	assert.Error(t, err)

	empty, err := ParseWebhookEvents([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okihome/rentwatch-backend-go/internal/models"
)

func TestFormatYen(t *testing.T) {
	assert.Equal(t, "0", formatYen(0))
	assert.Equal(t, "950", formatYen(950))
	assert.Equal(t, "65,000", formatYen(65000))
	assert.Equal(t, "1,234,567", formatYen(1234567))
	assert.Equal(t, "-12,000", formatYen(-12000))
}

func TestFormatBargainMessage(t *testing.T) {
	estimated := int64(80000)
	score := 0.81
	area := 45.5
	listings := []models.Listing{
		{
			Name:               "サンプルハイツ101",
			Rent:               65000,
			EstimatedRent:      &estimated,
			AffordabilityScore: &score,
			FloorPlan:          "2LDK",
			AreaSqm:            &area,
			SourceURL:          "https://example.com/101",
		},
		{
			Address: "那覇市泉崎1-1",
			Rent:    50000,
		},
	}

	msg := FormatBargainMessage(listings)

	assert.Contains(t, msg, "2件")
	assert.Contains(t, msg, "1. サンプルハイツ101")
	assert.Contains(t, msg, "家賃: 65,000円")
	assert.Contains(t, msg, "相場: 80,000円")
	assert.Contains(t, msg, "2LDK / 45.5㎡")
	assert.Contains(t, msg, "割安度: 81%")
	assert.Contains(t, msg, "https://example.com/101")
	// Listings without a name fall back to the address.
	assert.Contains(t, msg, "2. 那覇市泉崎1-1")
}

func TestLineClientDisabled(t *testing.T) {
	c := NewLineClient("")
	assert.False(t, c.Enabled())
	assert.Error(t, c.Multicast([]string{"U0123456789abcdef0123456789abcdef"}, "hi"))
}

func TestMulticastNoRecipients(t *testing.T) {
	c := NewLineClient("token")
	// No recipients means no API call and no error.
	assert.NoError(t, c.Multicast(nil, "hi"))
}

type fakeListingSource struct {
	bargains []models.Listing
	notified []int64
}

func (f *fakeListingSource) GetUnnotifiedBargains(maxScore float64, limit int) ([]models.Listing, error) {
	return f.bargains, nil
}

func (f *fakeListingSource) MarkNotified(ids []int64) error {
	f.notified = append(f.notified, ids...)
	return nil
}

type fakeUserSource struct {
	users []string
	log   []string
}

func (f *fakeUserSource) GetLineUserIDs() ([]string, error) { return f.users, nil }

func (f *fakeUserSource) LogDelivery(propertyID int64, status string) error {
	f.log = append(f.log, status)
	return nil
}

func TestNotifyBargainsNothingToSend(t *testing.T) {
	n := NewNotifier(NewLineClient("token"), &fakeListingSource{}, &fakeUserSource{}, 0.85, nil)

	sent, err := n.NotifyBargains()
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
}

func TestNotifyBargainsSkipsWhenDisabled(t *testing.T) {
	listings := &fakeListingSource{bargains: []models.Listing{{ID: 1, Rent: 50000}}}
	n := NewNotifier(NewLineClient(""), listings, &fakeUserSource{}, 0.85, nil)

	sent, err := n.NotifyBargains()
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Empty(t, listings.notified)
}

func TestNotifyBargainsSkipsWithoutFollowers(t *testing.T) {
	listings := &fakeListingSource{bargains: []models.Listing{{ID: 1, Rent: 50000}}}
	n := NewNotifier(NewLineClient("token"), listings, &fakeUserSource{}, 0.85, nil)

	sent, err := n.NotifyBargains()
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Empty(t, listings.notified)
}

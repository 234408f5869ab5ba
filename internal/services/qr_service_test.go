package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"club-commerce/models"
)

const testQRKey = "6368616e676520746869732070617373776f726420746f206120736563726574"

func TestNewQRServiceKeyValidation(t *testing.T) {
	_, err := NewQRService(testQRKey)
	assert.NoError(t, err)

	_, err = NewQRService("deadbeef")
	assert.Error(t, err, "short keys are rejected")

	_, err = NewQRService("not-hex")
	assert.Error(t, err)
}

func TestQRRoundTrip(t *testing.T) {
	svc, err := NewQRService(testQRKey)
	require.NoError(t, err)

	p := &models.Purchase{
		ID:     "p123",
		Type:   models.PurchaseTicket,
		ClubID: "club9",
	}

	payload, err := svc.Encode(p)
	require.NoError(t, err)
	assert.NotContains(t, payload, "p123", "payload must not leak the purchase id")

	claims, err := svc.Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, "p123", claims.PurchaseID)
	assert.Equal(t, "club9", claims.ClubID)
	assert.Equal(t, string(models.PurchaseTicket), claims.Type)
}

func TestQRNoncesDiffer(t *testing.T) {
	svc, err := NewQRService(testQRKey)
	require.NoError(t, err)

	p := &models.Purchase{ID: "p1", Type: models.PurchaseMenu, ClubID: "c1"}

	a, err := svc.Encode(p)
	require.NoError(t, err)
	b, err := svc.Encode(p)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestQRDecodeRejectsTampering(t *testing.T) {
	svc, err := NewQRService(testQRKey)
	require.NoError(t, err)

	payload, err := svc.Encode(&models.Purchase{ID: "p1", Type: models.PurchaseTicket, ClubID: "c1"})
	require.NoError(t, err)

	// flip a character near the end of the ciphertext
	tampered := payload[:len(payload)-2] + strings.Map(func(r rune) rune {
		if r == 'A' {
			return 'B'
		}
		return 'A'
	}, payload[len(payload)-2:])

	_, err = svc.Decode(tampered)
	assert.Error(t, err)

	_, err = svc.Decode("!!!not-base64!!!")
	assert.Error(t, err)

	_, err = svc.Decode("c2hvcnQ")
	assert.Error(t, err, "payload shorter than a nonce is rejected")
}

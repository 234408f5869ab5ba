package flashpay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"club-commerce/internal/services/gateway"
)

func TestMapStatus(t *testing.T) {
	tests := []struct {
		provider string
		want     gateway.Status
	}{
		{"CREATED", gateway.StatusPending},
		{"pending", gateway.StatusPending},
		{"PROCESSING", gateway.StatusPending},
		{"APPROVED", gateway.StatusApproved},
		{"PAID", gateway.StatusApproved},
		{"FNLD", gateway.StatusApproved},
		{"DECLINED", gateway.StatusDeclined},
		{"rejected", gateway.StatusDeclined},
		{"CANCELLED", gateway.StatusDeclined},
		{"SOMETHING_NEW", gateway.StatusError},
		{"", gateway.StatusError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, mapStatus(tt.provider), "provider status %q", tt.provider)
	}
}

func TestPayloadToDomain(t *testing.T) {
	p := &payload{
		TxID:      "fp-1",
		Reference: "ref-1",
		Status:    "APPROVED",
		Currency:  "COP",
		CreatedAt: "2026-06-12 21:30:00",
	}

	tran, err := p.ToDomain()
	require.NoError(t, err)
	assert.Equal(t, "fp-1", tran.ID)
	assert.Equal(t, "ref-1", tran.Reference)
	assert.Equal(t, gateway.StatusApproved, tran.Status)
	assert.Equal(t, 2026, tran.CreatedAt.Year())
	assert.Equal(t, 21, tran.CreatedAt.Hour())
}

func TestPayloadToDomainBadTimestamp(t *testing.T) {
	p := &payload{TxID: "fp-1", Status: "APPROVED", CreatedAt: "12/06/2026"}
	_, err := p.ToDomain()
	assert.Error(t, err)
}

func TestHmacSignVerify(t *testing.T) {
	key := []byte("secret-key")
	body := []byte("50000|COP|ref-1")

	sig := Hmac256(body, key)
	assert.NotEmpty(t, sig)
	assert.True(t, VerifyHmac256(body, key, sig))
	assert.False(t, VerifyHmac256([]byte("50001|COP|ref-1"), key, sig))
	assert.False(t, VerifyHmac256(body, []byte("other-key"), sig))
}

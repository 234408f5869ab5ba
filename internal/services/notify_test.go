package services

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"club-commerce/models"
)

func TestInvoiceHTML(t *testing.T) {
	txn := &models.PaymentTransaction{
		Reference: "ref-1",
		TotalPaid: decimal.NewFromInt(6000),
	}
	purchases := []*models.Purchase{
		{Type: models.PurchaseTicket, PriceAtCheckout: decimal.NewFromInt(3000), QRPayload: "sealed-1"},
		{Type: models.PurchaseTicket, PriceAtCheckout: decimal.NewFromInt(3000)},
	}

	html := invoiceHTML(txn, purchases)
	assert.Contains(t, html, "ref-1")
	assert.Contains(t, html, "6000.00")
	assert.Equal(t, 2, strings.Count(html, "<li>"), "one line item per purchase")
	assert.Equal(t, 1, strings.Count(html, "api.qrserver.com"), "only purchases with a code embed a QR image")
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PurchaseType string

const (
	PurchaseTicket PurchaseType = "ticket"
	PurchaseMenu   PurchaseType = "menu"
)

// Purchase is one unit sold, created only after the transaction reached
// APPROVED. DynamicPricingReason values form an append-only vocabulary
// persisted for financial auditing.
type Purchase struct {
	ID                string          `json:"id"`
	Type              PurchaseType    `json:"type"`
	TransactionID     string          `json:"transaction_id"`
	ClubID            string          `json:"club_id"`
	ItemID            string          `json:"item_id"`
	VariantID         string          `json:"variant_id,omitempty"`
	EventID           string          `json:"event_id,omitempty"`
	OriginalBasePrice decimal.Decimal `json:"original_base_price"`
	PriceAtCheckout   decimal.Decimal `json:"price_at_checkout"`
	DynamicPricing    bool            `json:"dynamic_pricing_applied"`
	DynamicReason     string          `json:"dynamic_pricing_reason"`
	PlatformFee       decimal.Decimal `json:"platform_fee"`
	ClubReceives      decimal.Decimal `json:"club_receives"`
	IsUsed            bool            `json:"is_used"` // redemption flag, set by the scanning flow
	QRPayload         string          `json:"qr_payload"`
	CreatedAt         time.Time       `json:"created_at"`
}

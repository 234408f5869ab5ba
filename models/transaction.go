package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentApproved PaymentStatus = "APPROVED"
	PaymentDeclined PaymentStatus = "DECLINED"
	PaymentVoided   PaymentStatus = "VOIDED" // administrative override only
)

// Terminal reports whether no further automatic transition is possible.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentApproved || s == PaymentDeclined || s == PaymentVoided
}

// PaymentTransaction is the persistent record of one checkout attempt.
// Created PENDING before the gateway is called and updated in place,
// never replaced, so a webhook or poll arriving first can find it.
type PaymentTransaction struct {
	ID               string          `json:"id"`
	Reference        string          `json:"reference"` // local provider-agnostic reference
	Identity         string          `json:"identity"`
	ClubID           string          `json:"club_id"`
	Email            string          `json:"email"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	ClubReceives     decimal.Decimal `json:"club_receives"`
	PlatformReceives decimal.Decimal `json:"platform_receives"`
	GatewayFee       decimal.Decimal `json:"gateway_fee"`
	GatewayTax       decimal.Decimal `json:"gateway_tax"`
	Provider         string          `json:"provider"`
	ProviderTxID     string          `json:"provider_tx_id,omitempty"` // unique, empty until the gateway responds
	Status           PaymentStatus   `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	ResolvedAt       *time.Time      `json:"resolved_at,omitempty"`
}

package models

import (
	"github.com/shopspring/decimal"
)

type TicketCategory string

const (
	TicketGeneral TicketCategory = "GENERAL"
	TicketFree    TicketCategory = "FREE"
	TicketEvent   TicketCategory = "EVENT"
)

type Ticket struct {
	ID             string          `json:"id"`
	ClubID         string          `json:"club_id"`
	EventID        string          `json:"event_id,omitempty"` // set only for EVENT tickets
	Name           string          `json:"name"`
	Category       TicketCategory  `json:"category"`
	BasePrice      decimal.Decimal `json:"base_price"`
	DynamicPricing bool            `json:"dynamic_pricing"` // always false for FREE tickets
	Remaining      int             `json:"remaining"`       // -1 means unlimited
	Active         bool            `json:"active"`
}

func (t *Ticket) IsFree() bool {
	return t.Category == TicketFree || t.BasePrice.IsZero()
}

func (t *Ticket) Limited() bool {
	return t.Remaining >= 0
}

type MenuItem struct {
	ID             string          `json:"id"`
	ClubID         string          `json:"club_id"`
	ParentID       string          `json:"parent_id,omitempty"` // set when this is a variant
	Name           string          `json:"name"`
	BasePrice      decimal.Decimal `json:"base_price"`
	DynamicPricing bool            `json:"dynamic_pricing"`
	HasVariants    bool            `json:"has_variants"` // a parent exposing variants never gets dynamic pricing
	Active         bool            `json:"active"`
}

func (m *MenuItem) IsVariant() bool {
	return m.ParentID != ""
}

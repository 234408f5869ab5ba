// Package fees derives platform commission, gateway fees, and tax on
// fees from a checkout price using a fixed configuration table.
package fees

import (
	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindCover Kind = "cover"
	KindEvent Kind = "event"
	KindMenu  Kind = "menu"
)

// Table holds the fee rates. Rates are configuration, not protocol:
// call sites never hard-code a percentage.
type Table struct {
	CoverCommissionRate decimal.Decimal
	EventCommissionRate decimal.Decimal
	MenuCommissionRate  decimal.Decimal

	GatewayFixed   decimal.Decimal
	GatewayRate    decimal.Decimal
	GatewayTaxRate decimal.Decimal

	// MinTransaction is the checkout floor in currency minor units.
	// Totals below it are rejected before any gateway call.
	MinTransaction decimal.Decimal
}

type Breakdown struct {
	Price        decimal.Decimal
	Commission   decimal.Decimal
	GatewayFee   decimal.Decimal
	GatewayTax   decimal.Decimal
	ClubReceives decimal.Decimal
}

func (t Table) commissionRate(kind Kind) decimal.Decimal {
	switch kind {
	case KindEvent:
		return t.EventCommissionRate
	case KindMenu:
		return t.MenuCommissionRate
	default:
		return t.CoverCommissionRate
	}
}

// ForPrice computes the full fee breakdown for one priced unit. All
// components round half-up to cents.
func (t Table) ForPrice(kind Kind, price decimal.Decimal) Breakdown {
	commission := price.Mul(t.commissionRate(kind)).Round(2)
	gatewayFee := t.GatewayFixed.Add(price.Mul(t.GatewayRate)).Round(2)
	gatewayTax := gatewayFee.Mul(t.GatewayTaxRate).Round(2)

	return Breakdown{
		Price:        price,
		Commission:   commission,
		GatewayFee:   gatewayFee,
		GatewayTax:   gatewayTax,
		ClubReceives: price.Sub(commission),
	}
}

// ForTotal computes the gateway fee and its tax on a whole transaction.
// The fixed component is charged once per transaction, not per item.
func (t Table) ForTotal(total decimal.Decimal) (fee, tax decimal.Decimal) {
	fee = t.GatewayFixed.Add(total.Mul(t.GatewayRate)).Round(2)
	tax = fee.Mul(t.GatewayTaxRate).Round(2)
	return fee, tax
}

// MeetsMinimum reports whether a transaction total clears the floor.
func (t Table) MeetsMinimum(total decimal.Decimal) bool {
	return total.GreaterThanOrEqual(t.MinTransaction)
}

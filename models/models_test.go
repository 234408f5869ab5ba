package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestIdentity(t *testing.T) {
	assert.Equal(t, "user:u1", Identity("u1", ""))
	assert.Equal(t, "user:u1", Identity("u1", "s1"), "authenticated user wins over the session id")
	assert.Equal(t, "session:s1", Identity("", "s1"))
}

func TestClubWindowFor(t *testing.T) {
	club := &Club{
		OpenDays: []string{"Friday", "Saturday", "Sunday"},
		OpenHours: []OpenHour{
			{Weekday: "Friday", Open: "21:00", Close: "03:00"},
			{Weekday: "Saturday", Open: "22:00", Close: "04:00"},
		},
	}

	h, ok := club.WindowFor("Friday")
	assert.True(t, ok)
	assert.Equal(t, "21:00", h.Open)
	assert.Equal(t, "03:00", h.Close)

	_, ok = club.WindowFor("Monday")
	assert.False(t, ok, "weekday not in OpenDays is closed")

	_, ok = club.WindowFor("Sunday")
	assert.False(t, ok, "open day without matching hours is closed")
}

func TestPaymentStatusTerminal(t *testing.T) {
	assert.False(t, PaymentPending.Terminal())
	assert.True(t, PaymentApproved.Terminal())
	assert.True(t, PaymentDeclined.Terminal())
	assert.True(t, PaymentVoided.Terminal())
}

func TestTicketIsFree(t *testing.T) {
	free := &Ticket{Category: TicketFree, BasePrice: decimal.NewFromInt(5000)}
	assert.True(t, free.IsFree(), "FREE category is free regardless of price")

	zero := &Ticket{Category: TicketGeneral, BasePrice: decimal.Zero}
	assert.True(t, zero.IsFree(), "zero base price is free regardless of category")

	paid := &Ticket{Category: TicketGeneral, BasePrice: decimal.NewFromInt(5000)}
	assert.False(t, paid.IsFree())
}

func TestTicketLimited(t *testing.T) {
	assert.True(t, (&Ticket{Remaining: 0}).Limited(), "sold out still counts as limited")
	assert.True(t, (&Ticket{Remaining: 20}).Limited())
	assert.False(t, (&Ticket{Remaining: -1}).Limited())
}

func TestMenuItemIsVariant(t *testing.T) {
	assert.True(t, (&MenuItem{ParentID: "bottle1"}).IsVariant())
	assert.False(t, (&MenuItem{}).IsVariant())
}

func TestEventHasOwnWindow(t *testing.T) {
	assert.True(t, (&Event{OpenTime: "20:00", CloseTime: "02:00"}).HasOwnWindow())
	assert.False(t, (&Event{OpenTime: "20:00"}).HasOwnWindow(), "both bounds are required")
	assert.False(t, (&Event{}).HasOwnWindow())
}

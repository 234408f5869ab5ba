// Package pricing computes checkout prices from an item, its venue or
// event timing, and the current instant. Every function here is pure:
// callers resolve schedules to absolute instants first (see venuetime)
// and pass them in.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"club-commerce/internal/venuetime"
)

var (
	multDiscount30  = decimal.NewFromFloat(0.70)
	multDiscount10  = decimal.NewFromFloat(0.90)
	multBase        = decimal.NewFromInt(1)
	multSurcharge20 = decimal.NewFromFloat(1.20)
	multSurcharge30 = decimal.NewFromFloat(1.30)
)

// Quote is the tagged pricing outcome. A Blocked quote means the sale is
// a hard stop (expired event), not a price of any kind.
type Quote struct {
	Price   decimal.Decimal
	Reason  string
	Blocked bool
}

func priced(price decimal.Decimal, reason string) Quote {
	return Quote{Price: price, Reason: reason}
}

func blocked(reason string) Quote {
	return Quote{Price: decimal.Zero, Reason: reason, Blocked: true}
}

// Discounted reports whether the quote ended below the given base.
func (q Quote) Discounted(base decimal.Decimal) bool {
	return !q.Blocked && q.Price.LessThan(base)
}

// apply multiplies, rounds half-up to cents, and clamps discounts to
// [0, base]. Surcharges are never clamped.
func apply(base, mult decimal.Decimal, reason string) Quote {
	price := base.Mul(mult).Round(2)
	if mult.LessThanOrEqual(multBase) {
		if price.IsNegative() {
			price = decimal.Zero
		}
		if price.GreaterThan(base) {
			price = base
		}
	}
	return priced(price, reason)
}

// tier maps a "minutes (or hours) until threshold" lower bound to a
// multiplier. Tiers are evaluated in order; the first bound at or below
// the measured value wins, so they must be listed descending.
type tier struct {
	atLeast int
	mult    decimal.Decimal
	reason  string
}

func applyTiers(base decimal.Decimal, value int, tiers []tier) Quote {
	for _, t := range tiers {
		if value >= t.atLeast {
			return apply(base, t.mult, t.reason)
		}
	}
	// Tiers always end with a catch-all bound; unreachable on the
	// tables below.
	return priced(base, ReasonCoversOpen)
}

// CoverInput prices a GENERAL admission ticket for a regular club night.
type CoverInput struct {
	BasePrice      decimal.Decimal
	DynamicPricing bool
	OpenToday      bool // the target weekday has a schedule window
	Window         venuetime.Window
	Now            time.Time
}

var coverTiers = []tier{
	{atLeast: 180, mult: multDiscount30, reason: ReasonCoversPreopen3h},
	{atLeast: 120, mult: multDiscount10, reason: ReasonCoversPreopen2to3h},
	{atLeast: -1 << 31, mult: multBase, reason: ReasonCoversPreopenUnder2},
}

func PriceCover(in CoverInput) Quote {
	if !in.DynamicPricing {
		return priced(in.BasePrice, ReasonCoversNoDP)
	}
	if !in.OpenToday {
		return apply(in.BasePrice, multDiscount30, ReasonCoversClosedDay)
	}
	if in.Window.Contains(in.Now) {
		return priced(in.BasePrice, ReasonCoversOpen)
	}
	if !in.Now.Before(in.Window.Close) {
		// After hours: the next open instant is on another civil day.
		return apply(in.BasePrice, multDiscount30, ReasonCoversClosedDay)
	}
	return applyTiers(in.BasePrice, venuetime.MinutesUntil(in.Now, in.Window.Open), coverTiers)
}

// MenuInput prices a menu item or variant on a non-event day. Closed
// handling is asymmetric with covers: menu discounts deeper and earlier.
type MenuInput struct {
	BasePrice          decimal.Decimal
	DynamicPricing     bool
	ParentWithVariants bool
	OpenToday          bool
	Window             venuetime.Window
	Now                time.Time
}

var menuTiers = []tier{
	{atLeast: 180, mult: multDiscount30, reason: ReasonMenuPreopen3h},
	{atLeast: -1 << 31, mult: multDiscount10, reason: ReasonMenuPreopenUnder3},
}

func PriceMenu(in MenuInput) Quote {
	if in.ParentWithVariants {
		return priced(in.BasePrice, ReasonMenuParentNoDP)
	}
	if !in.DynamicPricing {
		return priced(in.BasePrice, ReasonMenuVariantNoDP)
	}
	if !in.OpenToday {
		return apply(in.BasePrice, multDiscount30, ReasonMenuClosedDay)
	}
	if in.Window.Contains(in.Now) {
		return priced(in.BasePrice, ReasonMenuOpen)
	}
	if !in.Now.Before(in.Window.Close) {
		return apply(in.BasePrice, multDiscount30, ReasonMenuAfterClose)
	}
	return applyTiers(in.BasePrice, venuetime.MinutesUntil(in.Now, in.Window.Open), menuTiers)
}

// EventTicketInput prices a ticket bound to an event. The grace window
// after the event start always applies its surcharge, dynamic pricing
// flag or not; beyond grace the sale is blocked outright.
type EventTicketInput struct {
	BasePrice      decimal.Decimal
	DynamicPricing bool
	Free           bool
	EventStart     time.Time
	GraceHours     int
	Now            time.Time
}

var eventTiers = []tier{
	{atLeast: 48, mult: multDiscount30, reason: ReasonEvent48Plus},
	{atLeast: 24, mult: multBase, reason: ReasonEvent24to48},
	{atLeast: 0, mult: multSurcharge20, reason: ReasonEventLastMinute},
}

func PriceEventTicket(in EventTicketInput) Quote {
	hours := venuetime.HoursUntil(in.Now, in.EventStart)

	if hours < -in.GraceHours {
		return blocked(ReasonEventExpired)
	}
	if in.Free {
		// Free tickets skip multipliers entirely but still expire.
		return priced(decimal.Zero, ReasonFreeTicket)
	}
	if hours < 0 {
		return apply(in.BasePrice, multSurcharge30, ReasonEventGrace)
	}
	if !in.DynamicPricing {
		return priced(in.BasePrice, ReasonEventNoDP)
	}
	return applyTiers(in.BasePrice, hours, eventTiers)
}

// EventMenuInput prices a menu item on a day the club hosts an event.
// Menu items mirror the event discount tiers but never surcharge: the
// price is floored at base inside 24 hours.
type EventMenuInput struct {
	BasePrice          decimal.Decimal
	DynamicPricing     bool
	ParentWithVariants bool
	EventStart         time.Time
	HasWindow          bool // the event declares its own open/close hours
	Window             venuetime.Window
	Now                time.Time
}

var eventMenuTiers = []tier{
	{atLeast: 48, mult: multDiscount30, reason: ReasonMenuEvent48Plus},
	{atLeast: 24, mult: multBase, reason: ReasonMenuEvent24to48},
	{atLeast: -1 << 31, mult: multBase, reason: ReasonMenuEventUnder24},
}

func PriceEventMenu(in EventMenuInput) Quote {
	if in.ParentWithVariants {
		return priced(in.BasePrice, ReasonMenuParentNoDP)
	}
	if !in.DynamicPricing {
		return priced(in.BasePrice, ReasonMenuVariantNoDP)
	}
	if in.HasWindow && in.Window.Contains(in.Now) {
		// Distinct from the generic under-24h reason: auditing needs
		// to tell "open during the event" apart from "close to it".
		return priced(in.BasePrice, ReasonMenuEventOpen)
	}
	return applyTiers(in.BasePrice, venuetime.HoursUntil(in.Now, in.EventStart), eventMenuTiers)
}

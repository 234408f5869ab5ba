package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"club-commerce/internal/venuetime"
)

var loc = venuetime.Location(-5)

// window 21:00..03:00 on 2026-06-12 (a Friday)
func fridayWindow(t *testing.T) venuetime.Window {
	t.Helper()
	date := time.Date(2026, 6, 12, 12, 0, 0, 0, loc)
	w, err := venuetime.ResolveWindow(date, "21:00", "03:00", loc)
	assert.NoError(t, err)
	return w
}

func at(hour, min int) time.Time {
	return time.Date(2026, 6, 12, hour, min, 0, 0, loc)
}

func money(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestPriceCover(t *testing.T) {
	w := fridayWindow(t)
	base := money("100000")

	tests := []struct {
		name   string
		in     CoverInput
		price  string
		reason string
	}{
		{
			name:   "dynamic pricing disabled",
			in:     CoverInput{BasePrice: base, DynamicPricing: false, OpenToday: true, Window: w, Now: at(22, 0)},
			price:  "100000",
			reason: ReasonCoversNoDP,
		},
		{
			name:   "closed day",
			in:     CoverInput{BasePrice: base, DynamicPricing: true, OpenToday: false, Now: at(15, 0)},
			price:  "70000",
			reason: ReasonCoversClosedDay,
		},
		{
			name:   "inside open window",
			in:     CoverInput{BasePrice: base, DynamicPricing: true, OpenToday: true, Window: w, Now: at(22, 30)},
			price:  "100000",
			reason: ReasonCoversOpen,
		},
		{
			name:   "200 minutes before open",
			in:     CoverInput{BasePrice: base, DynamicPricing: true, OpenToday: true, Window: w, Now: at(17, 40)},
			price:  "70000",
			reason: ReasonCoversPreopen3h,
		},
		{
			name:   "150 minutes before open",
			in:     CoverInput{BasePrice: base, DynamicPricing: true, OpenToday: true, Window: w, Now: at(18, 30)},
			price:  "90000",
			reason: ReasonCoversPreopen2to3h,
		},
		{
			name:   "exactly 180 minutes before open",
			in:     CoverInput{BasePrice: base, DynamicPricing: true, OpenToday: true, Window: w, Now: at(18, 0)},
			price:  "70000",
			reason: ReasonCoversPreopen3h,
		},
		{
			name:   "exactly 120 minutes before open",
			in:     CoverInput{BasePrice: base, DynamicPricing: true, OpenToday: true, Window: w, Now: at(19, 0)},
			price:  "90000",
			reason: ReasonCoversPreopen2to3h,
		},
		{
			name:   "an hour before open",
			in:     CoverInput{BasePrice: base, DynamicPricing: true, OpenToday: true, Window: w, Now: at(20, 0)},
			price:  "100000",
			reason: ReasonCoversPreopenUnder2,
		},
		{
			name:   "after close",
			in:     CoverInput{BasePrice: base, DynamicPricing: true, OpenToday: true, Window: w, Now: time.Date(2026, 6, 13, 4, 0, 0, 0, loc)},
			price:  "70000",
			reason: ReasonCoversClosedDay,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := PriceCover(tt.in)
			assert.False(t, q.Blocked)
			assert.True(t, q.Price.Equal(money(tt.price)), "got %s", q.Price)
			assert.Equal(t, tt.reason, q.Reason)
		})
	}
}

func TestPriceMenu(t *testing.T) {
	w := fridayWindow(t)
	base := money("40000")

	tests := []struct {
		name   string
		in     MenuInput
		price  string
		reason string
	}{
		{
			name:   "parent with variants keeps base",
			in:     MenuInput{BasePrice: base, DynamicPricing: true, ParentWithVariants: true, OpenToday: true, Window: w, Now: at(22, 0)},
			price:  "40000",
			reason: ReasonMenuParentNoDP,
		},
		{
			name:   "dynamic pricing disabled",
			in:     MenuInput{BasePrice: base, DynamicPricing: false, OpenToday: true, Window: w, Now: at(22, 0)},
			price:  "40000",
			reason: ReasonMenuVariantNoDP,
		},
		{
			name:   "closed day",
			in:     MenuInput{BasePrice: base, DynamicPricing: true, OpenToday: false, Now: at(15, 0)},
			price:  "28000",
			reason: ReasonMenuClosedDay,
		},
		{
			name:   "inside open window",
			in:     MenuInput{BasePrice: base, DynamicPricing: true, OpenToday: true, Window: w, Now: at(23, 0)},
			price:  "40000",
			reason: ReasonMenuOpen,
		},
		{
			name:   "200 minutes before open",
			in:     MenuInput{BasePrice: base, DynamicPricing: true, OpenToday: true, Window: w, Now: at(17, 40)},
			price:  "28000",
			reason: ReasonMenuPreopen3h,
		},
		{
			name:   "100 minutes before open",
			in:     MenuInput{BasePrice: base, DynamicPricing: true, OpenToday: true, Window: w, Now: at(19, 20)},
			price:  "36000",
			reason: ReasonMenuPreopenUnder3,
		},
		{
			name:   "after close",
			in:     MenuInput{BasePrice: base, DynamicPricing: true, OpenToday: true, Window: w, Now: time.Date(2026, 6, 13, 3, 30, 0, 0, loc)},
			price:  "28000",
			reason: ReasonMenuAfterClose,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := PriceMenu(tt.in)
			assert.False(t, q.Blocked)
			assert.True(t, q.Price.Equal(money(tt.price)), "got %s", q.Price)
			assert.Equal(t, tt.reason, q.Reason)
		})
	}
}

func TestPriceEventTicket(t *testing.T) {
	base := money("50000")
	start := time.Date(2026, 6, 12, 21, 0, 0, 0, loc)

	tests := []struct {
		name    string
		in      EventTicketInput
		price   string
		reason  string
		blocked bool
	}{
		{
			name:   "50 hours out",
			in:     EventTicketInput{BasePrice: base, DynamicPricing: true, EventStart: start, GraceHours: 3, Now: start.Add(-50 * time.Hour)},
			price:  "35000",
			reason: ReasonEvent48Plus,
		},
		{
			name:   "30 hours out",
			in:     EventTicketInput{BasePrice: base, DynamicPricing: true, EventStart: start, GraceHours: 3, Now: start.Add(-30 * time.Hour)},
			price:  "50000",
			reason: ReasonEvent24to48,
		},
		{
			name:   "10 hours out",
			in:     EventTicketInput{BasePrice: base, DynamicPricing: true, EventStart: start, GraceHours: 3, Now: start.Add(-10 * time.Hour)},
			price:  "60000",
			reason: ReasonEventLastMinute,
		},
		{
			name:   "2 hours into the event",
			in:     EventTicketInput{BasePrice: base, DynamicPricing: true, EventStart: start, GraceHours: 3, Now: start.Add(2 * time.Hour)},
			price:  "65000",
			reason: ReasonEventGrace,
		},
		{
			name:   "grace surcharge ignores the dynamic pricing flag",
			in:     EventTicketInput{BasePrice: base, DynamicPricing: false, EventStart: start, GraceHours: 3, Now: start.Add(time.Hour)},
			price:  "65000",
			reason: ReasonEventGrace,
		},
		{
			name:    "5 hours into the event",
			in:      EventTicketInput{BasePrice: base, DynamicPricing: true, EventStart: start, GraceHours: 3, Now: start.Add(5 * time.Hour)},
			blocked: true,
			reason:  ReasonEventExpired,
		},
		{
			name:    "2.5 hours in with a 2 hour grace",
			in:      EventTicketInput{BasePrice: base, DynamicPricing: true, EventStart: start, GraceHours: 2, Now: start.Add(150 * time.Minute)},
			blocked: true,
			reason:  ReasonEventExpired,
		},
		{
			name:   "dynamic pricing disabled before start",
			in:     EventTicketInput{BasePrice: base, DynamicPricing: false, EventStart: start, GraceHours: 3, Now: start.Add(-30 * time.Hour)},
			price:  "50000",
			reason: ReasonEventNoDP,
		},
		{
			name:   "free ticket before start",
			in:     EventTicketInput{BasePrice: decimal.Zero, Free: true, EventStart: start, GraceHours: 3, Now: start.Add(-10 * time.Hour)},
			price:  "0",
			reason: ReasonFreeTicket,
		},
		{
			name:   "free ticket in grace stays free",
			in:     EventTicketInput{BasePrice: decimal.Zero, Free: true, EventStart: start, GraceHours: 3, Now: start.Add(2 * time.Hour)},
			price:  "0",
			reason: ReasonFreeTicket,
		},
		{
			name:    "free ticket past grace expires too",
			in:      EventTicketInput{BasePrice: decimal.Zero, Free: true, EventStart: start, GraceHours: 3, Now: start.Add(4 * time.Hour)},
			blocked: true,
			reason:  ReasonEventExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := PriceEventTicket(tt.in)
			assert.Equal(t, tt.blocked, q.Blocked)
			assert.Equal(t, tt.reason, q.Reason)
			if !tt.blocked {
				assert.True(t, q.Price.Equal(money(tt.price)), "got %s", q.Price)
			}
		})
	}
}

func TestPriceEventMenu(t *testing.T) {
	base := money("40000")
	start := time.Date(2026, 6, 12, 21, 0, 0, 0, loc)
	w := venuetime.Window{Open: start, Close: start.Add(6 * time.Hour)}

	tests := []struct {
		name   string
		in     EventMenuInput
		price  string
		reason string
	}{
		{
			name:   "50 hours out",
			in:     EventMenuInput{BasePrice: base, DynamicPricing: true, EventStart: start, Now: start.Add(-50 * time.Hour)},
			price:  "28000",
			reason: ReasonMenuEvent48Plus,
		},
		{
			name:   "30 hours out",
			in:     EventMenuInput{BasePrice: base, DynamicPricing: true, EventStart: start, Now: start.Add(-30 * time.Hour)},
			price:  "40000",
			reason: ReasonMenuEvent24to48,
		},
		{
			name:   "5 hours out never surcharges",
			in:     EventMenuInput{BasePrice: base, DynamicPricing: true, EventStart: start, Now: start.Add(-5 * time.Hour)},
			price:  "40000",
			reason: ReasonMenuEventUnder24,
		},
		{
			name:   "inside event window",
			in:     EventMenuInput{BasePrice: base, DynamicPricing: true, EventStart: start, HasWindow: true, Window: w, Now: start.Add(2 * time.Hour)},
			price:  "40000",
			reason: ReasonMenuEventOpen,
		},
		{
			name:   "parent with variants keeps base",
			in:     EventMenuInput{BasePrice: base, DynamicPricing: true, ParentWithVariants: true, EventStart: start, Now: start.Add(-50 * time.Hour)},
			price:  "40000",
			reason: ReasonMenuParentNoDP,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := PriceEventMenu(tt.in)
			assert.False(t, q.Blocked)
			assert.True(t, q.Price.Equal(money(tt.price)), "got %s", q.Price)
			assert.Equal(t, tt.reason, q.Reason)
		})
	}
}

func TestApplyRoundingAndClamp(t *testing.T) {
	// 4762.31 * 0.7 = 3333.617 rounds half-up to cents
	q := apply(money("4762.31"), multDiscount30, "r")
	assert.True(t, q.Price.Equal(money("3333.62")), "got %s", q.Price)

	// discounts clamp at zero
	q = apply(money("0"), multDiscount30, "r")
	assert.True(t, q.Price.Equal(decimal.Zero))

	// surcharges are never clamped to base
	q = apply(money("50000"), multSurcharge30, "r")
	assert.True(t, q.Price.Equal(money("65000")), "got %s", q.Price)
}

func TestQuoteDiscounted(t *testing.T) {
	base := money("100000")
	assert.True(t, apply(base, multDiscount30, "r").Discounted(base))
	assert.False(t, apply(base, multBase, "r").Discounted(base))
	assert.False(t, apply(base, multSurcharge20, "r").Discounted(base))
	assert.False(t, blocked("r").Discounted(base))
}

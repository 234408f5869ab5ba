package fees

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func money(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func testTable() Table {
	return Table{
		CoverCommissionRate: money("0.05"),
		EventCommissionRate: money("0.10"),
		MenuCommissionRate:  money("0.025"),
		GatewayFixed:        money("900"),
		GatewayRate:         money("0.0299"),
		GatewayTaxRate:      money("0.19"),
		MinTransaction:      money("1500"),
	}
}

func TestForPriceCommissionByKind(t *testing.T) {
	table := testTable()
	price := money("100000")

	tests := []struct {
		kind       Kind
		commission string
		receives   string
	}{
		{KindCover, "5000", "95000"},
		{KindEvent, "10000", "90000"},
		{KindMenu, "2500", "97500"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			bd := table.ForPrice(tt.kind, price)
			assert.True(t, bd.Commission.Equal(money(tt.commission)), "got %s", bd.Commission)
			assert.True(t, bd.ClubReceives.Equal(money(tt.receives)), "got %s", bd.ClubReceives)
			assert.True(t, bd.Price.Equal(price))
		})
	}
}

func TestForPriceGatewayComponents(t *testing.T) {
	table := testTable()

	bd := table.ForPrice(KindCover, money("100000"))
	// 900 + 100000*0.0299 = 3890
	assert.True(t, bd.GatewayFee.Equal(money("3890")), "got %s", bd.GatewayFee)
	// 3890 * 0.19 = 739.10
	assert.True(t, bd.GatewayTax.Equal(money("739.10")), "got %s", bd.GatewayTax)
}

func TestForPriceRounding(t *testing.T) {
	table := testTable()

	bd := table.ForPrice(KindMenu, money("33333.33"))
	// 33333.33 * 0.025 = 833.33325 rounds half-up
	assert.True(t, bd.Commission.Equal(money("833.33")), "got %s", bd.Commission)
	assert.True(t, bd.ClubReceives.Equal(money("32500.00")), "got %s", bd.ClubReceives)
}

func TestForTotal(t *testing.T) {
	table := testTable()

	fee, tax := table.ForTotal(money("50000"))
	// 900 + 50000*0.0299 = 2395
	assert.True(t, fee.Equal(money("2395")), "got %s", fee)
	// 2395 * 0.19 = 455.05
	assert.True(t, tax.Equal(money("455.05")), "got %s", tax)
}

func TestMeetsMinimum(t *testing.T) {
	table := testTable()

	assert.False(t, table.MeetsMinimum(money("1200")))
	assert.True(t, table.MeetsMinimum(money("1500")))
	assert.True(t, table.MeetsMinimum(money("1500.01")))
}

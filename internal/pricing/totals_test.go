package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordermenu/internal/apperr"
	"ordermenu/internal/models"
)

func line(unit models.Money, qty int) models.OrderItem {
	return models.OrderItem{UnitPrice: unit, Quantity: qty}
}

func mustTotals(t *testing.T, items []models.OrderItem, ot models.OrderType, rates Rates) models.Totals {
	t.Helper()
	got, err := ComputeTotals(items, ot, rates)
	require.NoError(t, err)
	return got
}

func TestComputeTotals_DineIn(t *testing.T) {
	// 42000 + 2*3000 + 5000 = 53000
	items := []models.OrderItem{line(42000, 1), line(3000, 2), line(5000, 1)}

	got := mustTotals(t, items, models.DineIn, DefaultRates())

	assert.Equal(t, models.Totals{
		Subtotal:      53000,
		Tax:           5300,
		ServiceCharge: 2650,
		Discount:      0,
		Total:         60950,
	}, got)
}

func TestComputeTotals_TakeAwayHasNoServiceCharge(t *testing.T) {
	got := mustTotals(t, []models.OrderItem{line(53000, 1)}, models.TakeAway, DefaultRates())

	assert.Equal(t, models.Money(53000), got.Subtotal)
	assert.Equal(t, models.Money(5300), got.Tax)
	assert.Equal(t, models.Money(0), got.ServiceCharge)
	assert.Equal(t, models.Money(58300), got.Total)
}

func TestComputeTotals_RoundsHalfUp(t *testing.T) {
	// tax 1.5 -> 2, service 0.75 -> 1
	got := mustTotals(t, []models.OrderItem{line(15, 1)}, models.DineIn, DefaultRates())
	assert.Equal(t, models.Money(2), got.Tax)
	assert.Equal(t, models.Money(1), got.ServiceCharge)
	assert.Equal(t, models.Money(18), got.Total)
}

func TestComputeTotals_Properties(t *testing.T) {
	rates := DefaultRates()
	for _, s := range []models.Money{0, 1, 9, 10, 99, 12345, 53000, 1000005} {
		for _, ot := range []models.OrderType{models.DineIn, models.TakeAway} {
			got := mustTotals(t, []models.OrderItem{line(s, 1)}, ot, rates)
			assert.Equal(t, s.ApplyRate(rates.Tax), got.Tax)
			if ot == models.DineIn {
				assert.Equal(t, s.ApplyRate(rates.ServiceCharge), got.ServiceCharge)
			} else {
				assert.Zero(t, got.ServiceCharge)
			}
			assert.Zero(t, got.Discount)
			assert.Equal(t, got.Subtotal+got.Tax+got.ServiceCharge-got.Discount, got.Total)
		}
	}
}

func TestComputeTotals_Empty(t *testing.T) {
	assert.Equal(t, models.Totals{}, mustTotals(t, nil, models.DineIn, DefaultRates()))
}

func TestComputeTotals_RejectsOverflow(t *testing.T) {
	tests := []struct {
		name  string
		items []models.OrderItem
		field string
	}{
		{"unit price times quantity", []models.OrderItem{line(90_000_000_000_000_000, 99)}, "subtotal"},
		{"negative subtotal", []models.OrderItem{line(-models.MaxAmount, 2)}, "subtotal"},
		{"many lines", []models.OrderItem{line(models.MaxAmount, 1), line(1, 1)}, "subtotal"},
		{"surcharges push total over", []models.OrderItem{line(models.MaxAmount, 1)}, "total"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeTotals(tt.items, models.DineIn, DefaultRates())
			require.Error(t, err)
			assert.True(t, apperr.IsValidation(err))
			require.Len(t, apperr.Fields(err), 1)
			assert.Equal(t, tt.field, apperr.Fields(err)[0].Field)
		})
	}
}

func TestComputeTotals_LargestAcceptedOrder(t *testing.T) {
	// tax 86956521739.1 -> 86956521739, service 43478260869.55 -> 43478260870
	got := mustTotals(t, []models.OrderItem{line(869_565_217_391, 1)}, models.DineIn, DefaultRates())
	assert.Equal(t, models.MaxAmount, got.Total)
}

func TestParseRates(t *testing.T) {
	r, err := ParseRates("0.11", "0")
	require.NoError(t, err)
	assert.Equal(t, models.Money(11), models.Money(100).ApplyRate(r.Tax))
	assert.Equal(t, models.Money(0), models.Money(100).ApplyRate(r.ServiceCharge))

	_, err = ParseRates("x", "0.05")
	assert.Error(t, err)
}

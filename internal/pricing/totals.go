package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"ordermenu/internal/apperr"
	"ordermenu/internal/models"
)

// Rates are the surcharges applied to a subtotal
type Rates struct {
	Tax           decimal.Decimal
	ServiceCharge decimal.Decimal
}

// DefaultRates is 10% tax and 5% dine-in service charge
func DefaultRates() Rates {
	return Rates{
		Tax:           decimal.RequireFromString("0.10"),
		ServiceCharge: decimal.RequireFromString("0.05"),
	}
}

// ParseRates reads rates from their decimal string form
func ParseRates(tax, service string) (Rates, error) {
	t, err := decimal.NewFromString(tax)
	if err != nil {
		return Rates{}, err
	}
	s, err := decimal.NewFromString(service)
	if err != nil {
		return Rates{}, err
	}
	return Rates{Tax: t, ServiceCharge: s}, nil
}

// ComputeTotals sums line totals and applies tax, and service charge for
// dine-in orders. Discount is always zero. No floor is applied to the total.
// A subtotal or total beyond models.MaxAmount fails with a ValidationError.
func ComputeTotals(items []models.OrderItem, orderType models.OrderType, rates Rates) (models.Totals, error) {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.UnitPrice.Decimal().Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	if subtotal.Abs().GreaterThan(models.MaxAmount.Decimal()) {
		return models.Totals{}, apperr.Invalid("subtotal", fmt.Sprintf("order subtotal exceeds %s", models.MaxAmount))
	}

	var t models.Totals
	t.Subtotal = models.Money(subtotal.IntPart())
	t.Tax = t.Subtotal.ApplyRate(rates.Tax)
	if orderType == models.DineIn {
		t.ServiceCharge = t.Subtotal.ApplyRate(rates.ServiceCharge)
	}
	t.Total = models.Sum(t.Subtotal, t.Tax, t.ServiceCharge) - t.Discount
	if !t.Total.InRange() {
		return models.Totals{}, apperr.Invalid("total", fmt.Sprintf("order total exceeds %s", models.MaxAmount))
	}
	return t, nil
}

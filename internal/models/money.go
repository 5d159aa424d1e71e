package models

import (
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Money is an amount in the currency's smallest unit. Rupiah has no
// fractional subunit, so one Money is one rupiah.
type Money int64

// MaxAmount bounds every stored price, delta and order total in either
// direction. It keeps quantity and tax arithmetic far from int64 limits.
const MaxAmount Money = 1_000_000_000_000

var maxAmount = decimal.NewFromInt(int64(MaxAmount))

// InRange reports whether |m| <= MaxAmount
func (m Money) InRange() bool {
	return m >= -MaxAmount && m <= MaxAmount
}

// Decimal returns m as a decimal for overflow-free arithmetic
func (m Money) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(m))
}

// Times multiplies the amount by a quantity
func (m Money) Times(qty int) Money {
	return m * Money(qty)
}

// ApplyRate returns round(m * rate), rounding half away from zero. For a
// negative amount ending in .5 this rounds down (-2.5 -> -3), where a
// round-half-up rule would give -2.
func (m Money) ApplyRate(rate decimal.Decimal) Money {
	return Money(m.Decimal().Mul(rate).Round(0).IntPart())
}

// Sum adds all amounts
func Sum(amounts ...Money) Money {
	var total Money
	for _, a := range amounts {
		total += a
	}
	return total
}

func (m Money) String() string {
	return strconv.FormatInt(int64(m), 10)
}

// UnmarshalJSON accepts integral JSON numbers and numeric strings ("25000", 25000, 25000.0)
// up to MaxAmount in magnitude
func (m *Money) UnmarshalJSON(data []byte) error {
	var raw json.Number
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = json.Number(s)
	} else if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "money must be a number")
	}

	d, err := decimal.NewFromString(raw.String())
	if err != nil {
		return errors.Wrapf(err, "invalid money amount %q", raw.String())
	}
	if !d.Equal(d.Truncate(0)) {
		return errors.Errorf("money amount %s has a fractional part", d.String())
	}
	if d.Abs().GreaterThan(maxAmount) {
		return errors.Errorf("money amount %s exceeds %s", d.String(), MaxAmount)
	}
	*m = Money(d.IntPart())
	return nil
}

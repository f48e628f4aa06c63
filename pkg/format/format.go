// Package format renders dashboard figures for display.
package format

import (
	"fmt"
	"math"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the display currency of the dashboard
const DefaultCurrency = money.USD

// Money formats v in the default currency, e.g. $1,234.56 or -$5.00.
func Money(v float64) string {
	return MoneyIn(v, DefaultCurrency)
}

// MoneyIn formats v in the given ISO currency code, rounded half away from
// zero to the currency's fraction digits.
func MoneyIn(v float64, code string) string {
	cur := money.New(0, code).Currency()
	minor := decimal.NewFromFloat(finite(v)).Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// Percent formats v with two decimals and an explicit sign for non-negative
// values, e.g. +20.00% or -3.10%.
func Percent(v float64) string {
	d := decimal.NewFromFloat(finite(v)).Round(2)
	if d.IsZero() {
		return "+0.00%"
	}
	if d.IsNegative() {
		return d.StringFixed(2) + "%"
	}
	return "+" + d.StringFixed(2) + "%"
}

// Shares formats a share count without trailing zeros.
func Shares(v float64) string {
	return decimal.NewFromFloat(finite(v)).Round(6).String()
}

// Signed is Money with an explicit + for positive values, used for P&L.
func Signed(v float64) string {
	s := Money(v)
	if decimal.NewFromFloat(finite(v)).Round(2).IsPositive() {
		return "+" + s
	}
	return s
}

// Columns renders the layout decision as a label
func Columns(n int) string {
	if n == 1 {
		return "1 column"
	}
	return fmt.Sprintf("%d columns", n)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

package decimal

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Zero is decimal zero
var Zero = decimal.Zero

// FromInt creates decimal from int
func FromInt(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// FromFloat creates decimal from float with rounding to cents
func FromFloat(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// FromString parses decimal from string
func FromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// MustFromString parses decimal from string, panics on error
func MustFromString(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ParseAmount parses a printed invoice amount. Thousands-separator commas are
// stripped before conversion; a decimal point is optional.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return Zero, nil
	}
	return decimal.NewFromString(s)
}

// Mul multiplies two decimals
func Mul(a, b decimal.Decimal) decimal.Decimal {
	return a.Mul(b)
}

// Div divides a by b, rounds to 2 places, zero-safe
func Div(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return Zero
	}
	return a.Div(b).Round(2)
}

// Sum sums a slice of decimals
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}

// PercentOf computes: amount * (percentage/100)
func PercentOf(amount decimal.Decimal, percentage decimal.Decimal) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	return amount.Mul(percentage).Div(hundred)
}

// WithinPercent reports whether |actual - expected| < expected * pct/100.
// The comparison is strict, so an expected of zero never matches.
func WithinPercent(actual, expected decimal.Decimal, pct decimal.Decimal) bool {
	limit := PercentOf(expected, pct)
	return actual.Sub(expected).Abs().LessThan(limit)
}

// WithinPercentOrCent reports whether |actual - expected| < max(expected * pct/100, 0.01).
// The one-cent floor keeps tiny totals from demanding sub-cent agreement.
func WithinPercentOrCent(actual, expected decimal.Decimal, pct decimal.Decimal) bool {
	limit := PercentOf(expected, pct)
	cent := decimal.New(1, -2)
	if limit.LessThan(cent) {
		limit = cent
	}
	return actual.Sub(expected).Abs().LessThan(limit)
}

// IsPositive returns true if decimal is greater than zero
func IsPositive(d decimal.Decimal) bool {
	return d.GreaterThan(Zero)
}

// IsNonNegative returns true if decimal is >= zero
func IsNonNegative(d decimal.Decimal) bool {
	return d.GreaterThanOrEqual(Zero)
}

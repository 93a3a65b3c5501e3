// Package money converts between the wire format for amounts (fixed-point
// decimal strings with two fractional digits, e.g. "30.00") and the storage
// format (int64 cents). The ledger never touches binary floating point.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ParseCents parses a decimal amount string into cents. It rejects values
// with more than two fractional digits rather than rounding them.
func ParseCents(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.Exponent() < -2 {
		return 0, fmt.Errorf("invalid amount %q: more than two decimal places", s)
	}
	cents := d.Mul(hundred)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("invalid amount %q: more than two decimal places", s)
	}
	return cents.IntPart(), nil
}

// FormatCents renders cents as a fixed two-decimal string, e.g. 3000 -> "30.00".
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

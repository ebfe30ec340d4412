package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/meditrack-ph/meditrack-backend/pkg/errors"
)

// Normalize parses a display price such as "₱1,234.50" into a decimal amount.
// Every rune that is not a digit or a decimal point is stripped before
// parsing. A string with no digits normalizes to zero. A stripped string
// carrying more than one decimal point is malformed.
func Normalize(display string) (decimal.Decimal, error) {
	var b strings.Builder
	points := 0
	for _, r := range display {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.':
			points++
			b.WriteRune(r)
		}
	}

	stripped := b.String()
	if strings.Trim(stripped, ".") == "" {
		return decimal.Zero, nil
	}
	if points > 1 {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "malformed price").
			WithDetails(map[string]any{"price": display})
	}

	amount, err := decimal.NewFromString(stripped)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed price")
	}
	if amount.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	return amount, nil
}

// NormalizeOrZero applies the storefront's availability-over-correctness
// policy: malformed input degrades to a zero amount instead of failing the
// add-to-cart operation. The boolean reports whether the fallback was taken.
func NormalizeOrZero(display string) (decimal.Decimal, bool) {
	amount, err := Normalize(display)
	if err != nil {
		return decimal.Zero, true
	}
	return amount, false
}

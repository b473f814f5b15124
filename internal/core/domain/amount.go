package domain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	// MaxAmountIntegerDigits bounds every amount and rate to abs(value) < 1e15.
	MaxAmountIntegerDigits = 15
	// MaxAmountScale is the largest number of decimals accepted on input.
	MaxAmountScale = 32
)

// AmountInRange reports whether d is small enough to price with. It reads only
// the coefficient and exponent, so it stays cheap for inputs like "1e900000000"
// that would be slow to round or compare.
func AmountInRange(d decimal.Decimal) bool {
	if d.IsZero() {
		return true
	}
	exp := int64(d.Exponent())
	if exp < -MaxAmountScale {
		return false
	}
	digits := int64(len(new(big.Int).Abs(d.Coefficient()).Text(10)))
	return digits+exp <= MaxAmountIntegerDigits
}

package types

import "github.com/shopspring/decimal"

// CurrencyScale is the decimal precision every monetary amount is kept at.
const CurrencyScale int32 = 2

// RoundCurrency normalizes an amount to currency precision (2dp, half-up).
func RoundCurrency(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(CurrencyScale)
}

// ClampNonNegative floors an amount at zero.
func ClampNonNegative(amount decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// MinDecimal returns the smaller of the two amounts.
func MinDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

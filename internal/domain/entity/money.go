package entity

import "github.com/shopspring/decimal"

// ToCents converts an amount to integer cents, rounding half away from zero
func ToCents(amount decimal.Decimal) int64 {
	return amount.Round(2).Shift(2).IntPart()
}

// FromCents converts integer cents back to a two-place amount
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

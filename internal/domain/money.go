package domain

import "github.com/shopspring/decimal"

// MinorUnits is the fraction precision of every settlement currency we accept.
const MinorUnits = 2

func init() {
	// Clients expect plain JSON numbers for amounts.
	decimal.MarshalJSONWithoutQuotes = true
}

// RoundMoney rounds half away from zero to the currency minor unit.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MinorUnits)
}

// FromCents converts a minor-unit amount to a decimal.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -MinorUnits)
}

// ToCents converts a decimal to minor units, rounding first.
func ToCents(d decimal.Decimal) int64 {
	return RoundMoney(d).Shift(MinorUnits).IntPart()
}

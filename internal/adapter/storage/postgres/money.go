package postgres

import "github.com/shopspring/decimal"

// Amounts are stored as integer cents.

func toCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

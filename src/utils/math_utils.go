package utils

import "github.com/shopspring/decimal"

// MinFloat returns the smaller of two floats.
func MinFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Round2 rounds a value to 2 decimal places using decimal half-up rounding.
// Monetary totals are rounded exactly once, at the boundary where they are
// emitted, never per component.
func Round2(val float64) float64 {
	return decimal.NewFromFloat(val).Round(2).InexactFloat64()
}

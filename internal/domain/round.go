package domain

import "github.com/shopspring/decimal"

// roundTo rounds half away from zero on the shortest decimal form of v, so
// 2.675 becomes 2.68 rather than the 2.67 a binary-scaled rounding gives.
func roundTo(v float64, places int32) float64 {
	if !isFinite(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func round1(v float64) float64 { return roundTo(v, 1) }

func round2(v float64) float64 { return roundTo(v, 2) }

package common

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round2 rounds a currency amount to cents, half away from zero.
func Round2(v float64) float64 {
	return roundTo(v, 2)
}

// Round1 rounds scores and durations to one decimal place.
func Round1(v float64) float64 {
	return roundTo(v, 1)
}

func roundTo(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

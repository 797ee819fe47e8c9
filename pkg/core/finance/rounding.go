package finance

import (
	"github.com/shopspring/decimal"
)

// Fixed output precision matching the stored column scales. Rounding through
// decimal keeps repeated recomputation bit-identical at the declared scale,
// which float64 formatting alone does not guarantee.
const (
	fciScale   = 4
	ciScale    = 2
	moneyScale = 2
)

// RoundFCI rounds a facility condition index ratio to 4 decimal places.
func RoundFCI(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(fciScale).Float64()
	return f
}

// RoundCI rounds a condition index to 2 decimal places.
func RoundCI(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(ciScale).Float64()
	return f
}

// RoundMoney rounds a currency amount to 2 decimal places.
func RoundMoney(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(moneyScale).Float64()
	return f
}

// RoundScore rounds a 0-1 score to 4 decimal places.
func RoundScore(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(4).Float64()
	return f
}

// Package finance provides the discounted cash-flow primitives shared by the
// optimizer and the scenario summary math.
package finance

import (
	"math"
)

// PresentValue discounts a future amount back to year zero.
// yearsFromNow = 0 returns the amount unchanged.
func PresentValue(amount, discountRate float64, yearsFromNow int) float64 {
	if yearsFromNow <= 0 {
		return amount
	}
	return amount / math.Pow(1.0+discountRate, float64(yearsFromNow))
}

// NPV computes discounted benefits minus discounted costs over a horizon.
// Slices are indexed by year offset (index 0 = year 1).
func NPV(benefits, costs []float64, discountRate float64) float64 {
	npv := 0.0
	for i := range benefits {
		npv += PresentValue(benefits[i], discountRate, i+1)
	}
	for i := range costs {
		npv -= PresentValue(costs[i], discountRate, i+1)
	}
	return npv
}

// ROI is total benefit over total cost. Returns 0 when cost is zero; a
// zero-cost plan has no meaningful return ratio.
func ROI(totalBenefit, totalCost float64) float64 {
	if totalCost == 0 {
		return 0
	}
	return totalBenefit / totalCost
}

// PaybackYear returns the first 1-based year where cumulative cash flow turns
// non-negative, or 0 if it never does within the series.
func PaybackYear(netCashFlows []float64) int {
	cumulative := 0.0
	for i, cf := range netCashFlows {
		cumulative += cf
		if cumulative >= 0 {
			return i + 1
		}
	}
	return 0
}

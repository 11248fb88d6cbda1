// Package formulas provides pure statistical primitives for ratio-series analysis.
package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample (Bessel-corrected) standard deviation
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// LogReturns converts a price sequence to log returns ln(v[i]/v[i-1]).
// Steps whose denominator is exactly zero are skipped.
func LogReturns(values []float64) []float64 {
	if len(values) < 2 {
		return []float64{}
	}
	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			continue
		}
		returns = append(returns, math.Log(values[i]/values[i-1]))
	}
	return returns
}

// AnnualizedVolatility scales the sample standard deviation of per-period
// returns by sqrt(periodsPerYear). Returns 0 for fewer than 2 returns.
func AnnualizedVolatility(returns []float64, periodsPerYear float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	return StdDev(returns) * math.Sqrt(periodsPerYear)
}

package formulas

import "sort"

// PercentileRank returns the percentile rank (0-100) of current within values:
// the share of values strictly less than current. Values equal to current are
// excluded from the count, which biases the rank downward for repeated values.
// Comparisons are exact, no epsilon.
func PercentileRank(values []float64, current float64) float64 {
	if len(values) == 0 {
		return 0
	}
	rank := 0
	for _, v := range values {
		if v < current {
			rank++
		}
	}
	return float64(rank) / float64(len(values)) * 100
}

// PercentileValue returns the value at percentile p using the
// nearest-rank-floor method: sort ascending, pick index floor(p/100*(n-1)).
// No interpolation.
func PercentileValue(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	idx := int(p / 100 * float64(len(sorted)-1))
	if idx < 0 {
		idx = 0
	}
	if idx > len(sorted)-1 {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

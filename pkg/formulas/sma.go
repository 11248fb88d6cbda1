package formulas

import "github.com/markcheno/go-talib"

// SMAValues computes a simple moving average over values with the given
// window. The result has length len(values)-period+1; index i holds the mean
// of values[i : i+period]. An insufficient window yields an empty slice, not
// an error: callers treat "no SMA yet" as valid and fall back to the raw value.
func SMAValues(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return []float64{}
	}
	if period == 1 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	// talib pads the warm-up region with zeros; only the tail is valid.
	full := talib.Sma(values, period)
	out := make([]float64, len(values)-period+1)
	copy(out, full[period-1:])
	return out
}

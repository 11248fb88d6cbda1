// Package series provides utilities over ordered price-point sequences:
// moving averages, resampling, trend classification and volatility.
package series

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/aristath/quantgold/internal/domain"
	"github.com/aristath/quantgold/pkg/formulas"
)

// SMA computes a simple moving average over the series. Each output point
// carries the time of the last input point in its window. A series shorter
// than the period yields an empty result.
func SMA(s domain.Series, period int) domain.Series {
	values := formulas.SMAValues(s.Values(), period)
	if len(values) == 0 {
		return domain.Series{}
	}
	out := make(domain.Series, len(values))
	for i, v := range values {
		out[i] = domain.PricePoint{Time: s[i+period-1].Time, Value: v}
	}
	return out
}

// groupKey buckets a date into its resampling group: ISO week-and-year for
// weekly, year-month for monthly.
func groupKey(date string, freq domain.Frequency) (string, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	if freq == domain.FrequencyWeekly {
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week), nil
	}
	return date[:7], nil
}

// Resample reduces the series to one point per week or month; daily is the
// identity. Within each group the chronologically last point wins regardless
// of input ordering. Output is sorted ascending by time string.
func Resample(s domain.Series, freq domain.Frequency) domain.Series {
	if freq == domain.FrequencyDaily {
		return s
	}

	groups := make(map[string]domain.PricePoint)
	for _, p := range s {
		key, err := groupKey(p.Time, freq)
		if err != nil {
			continue
		}
		if prev, ok := groups[key]; !ok || p.Time > prev.Time {
			groups[key] = p
		}
	}

	out := make(domain.Series, 0, len(groups))
	for _, p := range groups {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

// Trend compares the first and last value of the window. Flat, empty and
// single-point series all classify as Up (degenerate default).
func Trend(s domain.Series) domain.Trend {
	if len(s) < 2 {
		return domain.TrendUp
	}
	if s[len(s)-1].Value >= s[0].Value {
		return domain.TrendUp
	}
	return domain.TrendDown
}

// AnnualizedVolatility computes the annualized standard deviation of the
// series' log returns, scaled for the given observation frequency.
func AnnualizedVolatility(s domain.Series, freq domain.Frequency) float64 {
	if len(s) < 2 {
		return 0
	}
	returns := formulas.LogReturns(s.Values())
	return formulas.AnnualizedVolatility(returns, freq.PeriodsPerYear())
}

// ApplyTotalReturnApprox compounds a flat annual dividend yield into the
// price series, approximating a total-return index. The yield is a fraction
// (0.02 for 2%). The first point is left untouched.
func ApplyTotalReturnApprox(s domain.Series, annualYield float64) domain.Series {
	if len(s) == 0 {
		return s
	}
	daily := math.Pow(1+annualYield, 1.0/252) - 1
	out := make(domain.Series, len(s))
	multiplier := 1.0
	for i, p := range s {
		if i > 0 {
			multiplier *= 1 + daily
		}
		out[i] = domain.PricePoint{Time: p.Time, Value: p.Value * multiplier}
	}
	return out
}

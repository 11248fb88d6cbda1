// Package alignment merges independently-dated price series into
// gold-denominated ratio series.
package alignment

import "github.com/aristath/quantgold/internal/domain"

// RatioAgainst divides the base series by the reference series, carrying the
// last known reference value forward across base dates with no exact
// reference quote. The carried value is initialized to the reference's first
// value, so the output has exactly the base series' length and date set.
// An empty reference yields an empty result.
func RatioAgainst(base, reference domain.Series) domain.Series {
	if len(reference) == 0 {
		return domain.Series{}
	}

	refByDate := make(map[string]float64, len(reference))
	for _, p := range reference {
		refByDate[p.Time] = p.Value
	}

	carried := reference[0].Value
	out := make(domain.Series, len(base))
	for i, p := range base {
		if v, ok := refByDate[p.Time]; ok {
			carried = v
		}
		out[i] = domain.PricePoint{Time: p.Time, Value: p.Value / carried}
	}
	return out
}

// DirectRatio divides the base series by the other series on exactly-matching
// dates only. Base dates with no counterpart are dropped; there is no
// carry-forward here.
func DirectRatio(base, other domain.Series) domain.Series {
	otherByDate := make(map[string]float64, len(other))
	for _, p := range other {
		otherByDate[p.Time] = p.Value
	}

	out := make(domain.Series, 0, len(base))
	for _, p := range base {
		if v, ok := otherByDate[p.Time]; ok && v != 0 {
			out = append(out, domain.PricePoint{Time: p.Time, Value: p.Value / v})
		}
	}
	return out
}

// UnitSeries builds a flat series of value 1 on the template's dates. Used as
// the neutral benchmark substitute when no benchmark data is available, so
// relative-strength metrics degrade instead of failing the request.
func UnitSeries(template domain.Series) domain.Series {
	out := make(domain.Series, len(template))
	for i, p := range template {
		out[i] = domain.PricePoint{Time: p.Time, Value: 1}
	}
	return out
}

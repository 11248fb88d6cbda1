// Package metrics derives the scalar dividend-quality and valuation metrics
// of an analysis: chowder gate, expected-return scenarios, percentile table
// and SMA-crossover signals.
package metrics

import (
	"github.com/aristath/quantgold/internal/domain"
	"github.com/aristath/quantgold/pkg/formulas"
)

// chowderGate is the minimum yield+growth sum for the gate to pass
const chowderGate = 12.0

// Chowder computes the chowder number (yield% + 5y dividend growth%) and its
// gate verdict. The gate is inclusive at 12.
func Chowder(yieldPct, dgrPct float64, lang domain.Language) domain.ChowderMetrics {
	number := yieldPct + dgrPct
	pass := number >= chowderGate

	reason := ""
	if !pass {
		if lang == domain.LanguageES {
			reason = "Yield + DGR por debajo del umbral de 12"
		} else {
			reason = "Yield + DGR below the 12 threshold"
		}
	}

	return domain.ChowderMetrics{
		Yield:         yieldPct,
		DGR5Y:         dgrPct,
		ChowderNumber: number,
		PassGate:      pass,
		GateReason:    reason,
	}
}

// ExpectedReturnScenarios builds the additive total-return proxies from
// yield% and growth%: conservative discounts growth to 60%, optimistic
// stretches it to 140%.
func ExpectedReturnScenarios(yieldPct, dgrPct float64) domain.ExpectedReturn {
	return domain.ExpectedReturn{
		Conservative: yieldPct + dgrPct*0.6,
		Base:         yieldPct + dgrPct,
		Optimistic:   yieldPct + dgrPct*1.4,
	}
}

// PercentileTableOf computes the reference ratio levels over the horizon
// window values.
func PercentileTableOf(values []float64) domain.PercentileTable {
	return domain.PercentileTable{
		P10: formulas.PercentileValue(values, 10),
		P25: formulas.PercentileValue(values, 25),
		P50: formulas.PercentileValue(values, 50),
		P75: formulas.PercentileValue(values, 75),
		P90: formulas.PercentileValue(values, 90),
	}
}

// DeriveSignals evaluates the above-SMA booleans for the current ratio.
// When an SMA has no points yet the comparison falls back to the current
// value itself, so the signal reads false.
func DeriveSignals(currentRatio float64, sma200d, sma200w domain.Series) domain.Signals {
	return domain.Signals{
		AboveSMA200D: aboveLast(currentRatio, sma200d),
		AboveSMA200W: aboveLast(currentRatio, sma200w),
	}
}

func aboveLast(current float64, sma domain.Series) bool {
	last, ok := sma.Last()
	if !ok {
		return false
	}
	return current > last.Value
}

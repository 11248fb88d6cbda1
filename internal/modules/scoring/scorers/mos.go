package scorers

import (
	"math"

	"github.com/aristath/quantgold/internal/domain"
)

// neutralScore is the fixed placeholder for sub-factors the engine has no
// independent signal for (valuation, macro regime).
const neutralScore = 3.5

// MarginOfSafetyScorer calculates the timing composite. Valuation and regime
// are fixed neutral constants; yield history follows the dividend yield and
// the gold percentile reuses the gold-purchase price sub-score.
type MarginOfSafetyScorer struct{}

// NewMarginOfSafetyScorer creates a new margin-of-safety scorer
func NewMarginOfSafetyScorer() *MarginOfSafetyScorer {
	return &MarginOfSafetyScorer{}
}

// Calculate derives the MOS composite from the dividend yield (percent) and
// the ratio percentile within the horizon window.
func (s *MarginOfSafetyScorer) Calculate(yieldPct, percentile float64) domain.MOSScore {
	yieldHistory := YieldHistoryScore(yieldPct)
	goldPctile := GoldPriceScore(percentile)

	return domain.MOSScore{
		Valuation:    neutralScore,
		YieldHistory: yieldHistory,
		GoldPctile:   goldPctile,
		Regime:       neutralScore,
		Total:        (neutralScore + yieldHistory + goldPctile + neutralScore) / 4,
	}
}

// YieldHistoryScore scales the current yield against a 3% reference:
// min(5, yield/3 * 4)
func YieldHistoryScore(yieldPct float64) float64 {
	return math.Min(5, yieldPct/3*4)
}

// GoldPriceScore is the step function of the ratio percentile: the cheaper
// the asset sits in its own gold-denominated history, the higher the score.
func GoldPriceScore(percentile float64) float64 {
	switch {
	case percentile <= 15:
		return 5.0
	case percentile <= 30:
		return 4.5
	case percentile <= 50:
		return 3.5
	case percentile <= 75:
		return 2.5
	default:
		return 1.0
	}
}

package scorers

import "github.com/aristath/quantgold/internal/domain"

// GoldPurchaseScorer calculates the gold-purchase-opportunity composite.
// Components and weights:
// - Price (40%): percentile step function
// - Trend (20%): ratio above its 200-day SMA
// - Regime (20%): ratio above its 200-week SMA
// - Relative strength (20%): 12-month trend of the asset/benchmark ratio
type GoldPurchaseScorer struct{}

// NewGoldPurchaseScorer creates a new gold-purchase scorer
func NewGoldPurchaseScorer() *GoldPurchaseScorer {
	return &GoldPurchaseScorer{}
}

// Inputs carries the momentum signals feeding the non-price sub-scores
type Inputs struct {
	Percentile       float64
	AboveSMA200D     bool
	AboveSMA200W     bool
	RelativeTrend12M domain.Trend
	Language         domain.Language
}

// Calculate derives the composite and its interpretation text
func (s *GoldPurchaseScorer) Calculate(in Inputs) domain.GoldPurchaseScore {
	price := GoldPriceScore(in.Percentile)

	trend := 2.0
	if in.AboveSMA200D {
		trend = 4.0
	}

	regime := 2.5
	if in.AboveSMA200W {
		regime = 4.0
	}

	relStrength := 2.5
	if in.RelativeTrend12M == domain.TrendUp {
		relStrength = 3.5
	}

	total := price*0.4 + trend*0.2 + regime*0.2 + relStrength*0.2

	return domain.GoldPurchaseScore{
		Price:            price,
		Trend:            trend,
		Regime:           regime,
		RelativeStrength: relStrength,
		Total:            total,
		Interpretation:   interpret(total, in.Language),
	}
}

func interpret(total float64, lang domain.Language) string {
	es := lang == domain.LanguageES
	switch {
	case total >= 4.0:
		if es {
			return "Ventana de compra excepcional en términos de oro"
		}
		return "Exceptional buying window in gold terms"
	case total >= 3.0:
		if es {
			return "Acumulación escalonada razonable"
		}
		return "Reasonable staggered accumulation"
	default:
		if es {
			return "Sin prisa: esperar mejores niveles"
		}
		return "No rush: wait for better levels"
	}
}

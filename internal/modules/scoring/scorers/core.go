// Package scorers provides the composite scoring implementations for the
// accumulation model: core quality, margin of safety and gold-purchase
// opportunity.
package scorers

import (
	"math"

	"github.com/aristath/quantgold/internal/domain"
)

// Three-tier factor scores used across the dividend-safety table
const (
	tierStrong = 5.0
	tierMid    = 3.5
	tierWeak   = 1.5
)

// CoreQualityScorer calculates the quality composite from fundamentals.
// Components:
// - Moat: step function on the (yield, growth) pair
// - Engine: dividend growth rate, capped at 5
// - Resilience: weighted dividend-safety factors (40/30/30)
type CoreQualityScorer struct{}

// NewCoreQualityScorer creates a new core quality scorer
func NewCoreQualityScorer() *CoreQualityScorer {
	return &CoreQualityScorer{}
}

// Calculate derives the core quality score. Yield and DGR are percentages.
func (s *CoreQualityScorer) Calculate(f domain.Fundamentals) domain.CoreScore {
	moat := MoatScore(f.Yield, f.DGR5Y)
	engine := EngineScore(f.DGR5Y)
	resilience := ResilienceScore(f.PayoutFCF, f.DebtEBITDA, f.InterestCoverage)

	return domain.CoreScore{
		Moat:       moat,
		Engine:     engine,
		Resilience: resilience,
		Total:      (moat + engine + resilience) / 3,
	}
}

// MoatScore maps the (yield%, dgr%) pair onto a four-tier scale. The 2.0
// baseline follows the manual-editor derivation, which is the canonical one.
func MoatScore(yieldPct, dgrPct float64) float64 {
	switch {
	case yieldPct > 2.5 && dgrPct > 8:
		return 5.0
	case yieldPct > 1.5 && dgrPct > 5:
		return 4.0
	case yieldPct > 0.5 && dgrPct > 2:
		return 3.0
	default:
		return 2.0
	}
}

// EngineScore is growth-rate driven: dgr% / 2.5, capped at 5
func EngineScore(dgrPct float64) float64 {
	return math.Min(5, dgrPct/2.5)
}

// PayoutScore rates the free-cash-flow payout ratio (percent)
func PayoutScore(payoutFCF float64) float64 {
	switch {
	case payoutFCF < 50:
		return tierStrong
	case payoutFCF < 75:
		return tierMid
	default:
		return tierWeak
	}
}

// DebtScore rates the debt/EBITDA multiple
func DebtScore(debtEbitda float64) float64 {
	switch {
	case debtEbitda < 1.5:
		return tierStrong
	case debtEbitda < 3.5:
		return tierMid
	default:
		return tierWeak
	}
}

// CoverageScore rates the interest-coverage multiple
func CoverageScore(interestCoverage float64) float64 {
	switch {
	case interestCoverage > 10:
		return tierStrong
	case interestCoverage > 4:
		return tierMid
	default:
		return tierWeak
	}
}

// ResilienceScore combines the three safety factors: 40% payout,
// 30% leverage, 30% coverage.
func ResilienceScore(payoutFCF, debtEbitda, interestCoverage float64) float64 {
	return PayoutScore(payoutFCF)*0.4 + DebtScore(debtEbitda)*0.3 + CoverageScore(interestCoverage)*0.3
}

package analysis

import (
	"github.com/aristath/quantgold/internal/domain"
	"github.com/aristath/quantgold/internal/modules/metrics"
	"github.com/aristath/quantgold/internal/modules/scoring/scorers"
)

// deriveFundamentalScores re-derives every metric downstream of the scalar
// fundamentals, in place: chowder gate, core quality composite, expected
// return scenarios, MOS yield history and total, zone and action badge.
//
// Both the initial analysis and the override editor go through this single
// function; that is what guarantees the consistency invariant between batch
// analysis and interactive editing. Sub-scores that do not depend on
// fundamentals (GPS price/trend/regime/relative strength, MOS valuation,
// gold percentile and regime) are read from the metrics block as-is.
func deriveFundamentalScores(m *domain.Metrics, lang domain.Language, policy domain.BadgePolicy) {
	y := m.Chowder.Yield
	d := m.Chowder.DGR5Y

	m.Chowder = metrics.Chowder(y, d, lang)
	m.ExpectedReturn = metrics.ExpectedReturnScenarios(y, d)

	moat := scorers.MoatScore(y, d)
	engine := scorers.EngineScore(d)
	resilience := scorers.ResilienceScore(
		m.DividendSafety.PayoutFCF,
		m.DividendSafety.DebtEBITDA,
		m.DividendSafety.InterestCoverage,
	)
	m.Scores.Core = domain.CoreScore{
		Moat:       moat,
		Engine:     engine,
		Resilience: resilience,
		Total:      (moat + engine + resilience) / 3,
	}

	mos := m.Scores.MOS
	mos.YieldHistory = scorers.YieldHistoryScore(y)
	mos.Total = (mos.Valuation + mos.YieldHistory + mos.GoldPctile + mos.Regime) / 4
	m.Scores.MOS = mos

	m.MOSZone = scorers.ClassifyZone(m.Percentile, resilience)
	m.Scores.ActionBadge = scorers.ActionBadge(
		policy,
		m.Scores.Core.Total,
		m.Scores.GoldPurchase.Total,
		m.Chowder.ChowderNumber,
		m.Percentile,
		lang,
	)
}

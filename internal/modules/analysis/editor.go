package analysis

import (
	"fmt"

	"github.com/aristath/quantgold/internal/domain"
)

// Editable fundamental fields accepted by Recalculate
const (
	FieldYield            = "yield"
	FieldDGR5Y            = "dgr5y"
	FieldPayoutEPS        = "payoutEPS"
	FieldPayoutFCF        = "payoutFCF"
	FieldDebtEbitda       = "debtEbitda"
	FieldInterestCoverage = "interestCoverage"
)

// Recalculate applies one edited fundamental to a previously-computed result
// and re-derives every dependent metric and score with the same formulas the
// initial analysis used. It is a pure re-derivation over a deep copy, never
// an incremental patch: the input result is left untouched and the returned
// one is internally consistent.
func (s *Service) Recalculate(result *domain.RatioResult, field string, value float64) (*domain.RatioResult, error) {
	if result == nil {
		return nil, fmt.Errorf("no result to recalculate")
	}

	out := result.Clone()
	m := &out.Metrics

	switch field {
	case FieldYield:
		m.Chowder.Yield = value
	case FieldDGR5Y:
		m.Chowder.DGR5Y = value
	case FieldPayoutEPS:
		m.DividendSafety.PayoutEPS = value
	case FieldPayoutFCF:
		m.DividendSafety.PayoutFCF = value
	case FieldDebtEbitda:
		m.DividendSafety.DebtEBITDA = value
	case FieldInterestCoverage:
		m.DividendSafety.InterestCoverage = value
	default:
		return nil, fmt.Errorf("unknown field %q", field)
	}

	deriveFundamentalScores(m, out.Language, out.BadgePolicy)

	s.log.Debug().
		Str("ticker", out.Ticker).
		Str("field", field).
		Float64("value", value).
		Str("zone", string(m.MOSZone)).
		Msg("Recalculated metrics after manual override")

	return out, nil
}

package scorers

import "github.com/aristath/quantgold/internal/domain"

// ClassifyZone maps the ratio percentile and resilience score onto the
// discrete position-sizing zone. The resilience-gated rule from the manual
// editor is canonical: a cheap price alone is not enough for zone A, and a
// fragile balance sheet forces zone C regardless of price.
func ClassifyZone(percentile, resilience float64) domain.Zone {
	switch {
	case percentile < 25 && resilience > 3.5:
		return domain.ZoneA
	case percentile > 75 || resilience < 2.5:
		return domain.ZoneC
	default:
		return domain.ZoneB
	}
}

// Ladder returns the localized sizing guidance for the execution ladder
func Ladder(lang domain.Language) domain.MOSLadder {
	if lang == domain.LanguageES {
		return domain.MOSLadder{
			ZoneA: "Acumular 60-100% de la posición objetivo",
			ZoneB: "Acumular 25-60% de la posición objetivo",
			ZoneC: "0-25%: solo reinversión de dividendos",
		}
	}
	return domain.MOSLadder{
		ZoneA: "Accumulate 60-100% of target position",
		ZoneB: "Accumulate 25-60% of target position",
		ZoneC: "0-25%: dividend reinvestment only",
	}
}

// ActionBadge derives the discrete action label under the selected policy.
//
// BadgePolicyScores thresholds on the two composites; BadgePolicyChowder is
// the alternate rule keyed on the chowder gate and the percentile.
func ActionBadge(policy domain.BadgePolicy, coreTotal, gpsTotal, chowderNumber, percentile float64, lang domain.Language) string {
	es := lang == domain.LanguageES

	if policy == domain.BadgePolicyChowder {
		if chowderNumber >= 12 && percentile < 50 {
			return badgeStrong(es)
		}
		return badgeWatch(es)
	}

	switch {
	case coreTotal >= 4.0 && gpsTotal >= 4.0:
		return badgeStrong(es)
	case coreTotal >= 4.0 && gpsTotal >= 3.0:
		if es {
			return "ACUMULACIÓN ESCALONADA"
		}
		return "STAGGERED ACCUMULATE"
	default:
		return badgeWatch(es)
	}
}

func badgeStrong(es bool) string {
	if es {
		return "ACUMULACIÓN FUERTE"
	}
	return "STRONG ACCUMULATE"
}

func badgeWatch(es bool) string {
	if es {
		return "VIGILAR / MANTENER"
	}
	return "WATCH / HOLD"
}

// Package domain provides core domain models and types for gold-ratio analysis.
package domain

// Language represents the user-facing output language
type Language string

const (
	LanguageEN Language = "EN"
	LanguageES Language = "ES"
)

// Frequency represents the resampling frequency of a price series
type Frequency string

const (
	FrequencyDaily   Frequency = "Daily"
	FrequencyWeekly  Frequency = "Weekly"
	FrequencyMonthly Frequency = "Monthly"
)

// PeriodsPerYear returns the annualization factor for the frequency
func (f Frequency) PeriodsPerYear() float64 {
	switch f {
	case FrequencyWeekly:
		return 52
	case FrequencyMonthly:
		return 12
	default:
		return 252
	}
}

// DividendMode controls how dividends are folded into the price series
type DividendMode string

const (
	// DividendModePriceOnly uses raw close prices
	DividendModePriceOnly DividendMode = "Price Only"
	// DividendModeTotalReturnReal relies on provider-adjusted closes where available
	DividendModeTotalReturnReal DividendMode = "Total Return (Real)"
	// DividendModeTotalReturnApprox compounds an approximate daily yield into prices
	DividendModeTotalReturnApprox DividendMode = "Total Return (Approx)"
)

// Provider identifies a market data source
type Provider string

const (
	ProviderStooq Provider = "Stooq"
	ProviderYahoo Provider = "Yahoo Finance"
)

// Trend is a binary direction classification over a series window
type Trend string

const (
	TrendUp   Trend = "Up"
	TrendDown Trend = "Down"
)

// PricePoint is a single observation of a price or ratio series.
// Time is an ISO date string (yyyy-mm-dd); within a series times are unique
// and ascending, and Value is a positive real.
type PricePoint struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
}

// Series is an ordered sequence of price points
type Series []PricePoint

// Values extracts the value column
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// Last returns the final point of the series and whether one exists
func (s Series) Last() (PricePoint, bool) {
	if len(s) == 0 {
		return PricePoint{}, false
	}
	return s[len(s)-1], true
}

// Tail returns the most recent n points (the whole series when n >= len)
func (s Series) Tail(n int) Series {
	if n <= 0 || len(s) == 0 {
		return Series{}
	}
	if n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}

// Clone returns an independent copy of the series
func (s Series) Clone() Series {
	out := make(Series, len(s))
	copy(out, s)
	return out
}

// Fundamentals holds point-in-time dividend-quality figures for a ticker.
// Yield and DGR5Y are percentages (7.2 means 7.2%), payout ratios are
// percentages, DebtEBITDA and InterestCoverage are multiples.
type Fundamentals struct {
	Yield            float64 `json:"yield"`
	DGR5Y            float64 `json:"dgr5y"`
	PayoutEPS        float64 `json:"payout_eps"`
	PayoutFCF        float64 `json:"payout_fcf"`
	DebtEBITDA       float64 `json:"debt_ebitda"`
	InterestCoverage float64 `json:"interest_coverage"`
}

// BadgePolicy selects the action-badge derivation rule
type BadgePolicy string

const (
	// BadgePolicyScores derives the badge from the composite score thresholds
	BadgePolicyScores BadgePolicy = "scores"
	// BadgePolicyChowder derives the badge from the chowder gate and percentile
	BadgePolicyChowder BadgePolicy = "chowder"
)

// AnalysisRequest is the engine input assembled by the UI collaborator
type AnalysisRequest struct {
	Ticker          string       `json:"ticker"`
	BenchmarkTicker string       `json:"benchmark"`
	HorizonYears    int          `json:"horizon"`
	Frequency       Frequency    `json:"frequency"`
	DividendMode    DividendMode `json:"dividend_mode"`
	Provider        Provider     `json:"provider,omitempty"`
	BadgePolicy     BadgePolicy  `json:"badge_policy,omitempty"`
	Language        Language     `json:"lang,omitempty"`

	// Manual overrides; nil means "use fetched data"
	ManualPrice            *float64 `json:"manual_price,omitempty"`
	ManualGoldPrice        *float64 `json:"manual_gold_price,omitempty"`
	ManualBenchmarkPrice   *float64 `json:"manual_benchmark_price,omitempty"`
	ManualYield            *float64 `json:"manual_yield,omitempty"`
	ManualDGR              *float64 `json:"manual_dgr,omitempty"`
	ManualPayoutEPS        *float64 `json:"manual_payout_eps,omitempty"`
	ManualPayoutFCF        *float64 `json:"manual_payout_fcf,omitempty"`
	ManualDebtEbitda       *float64 `json:"manual_debt_ebitda,omitempty"`
	ManualInterestCoverage *float64 `json:"manual_interest_coverage,omitempty"`
}

// RatioSeriesSet holds the nine derived chart series of one analysis
type RatioSeriesSet struct {
	Ratio            Series `json:"ratio"`
	RatioSMA200D     Series `json:"ratioSMA200d"`
	RatioSMA200W     Series `json:"ratioSMA200w"`
	BenchmarkRatio   Series `json:"benchmarkRatio"`
	BenchmarkSMA200D Series `json:"benchmarkSMA200d"`
	BenchmarkSMA200W Series `json:"benchmarkSMA200w"`
	RelativeRatio    Series `json:"relativeRatio"`
	RelativeSMA200D  Series `json:"relativeSMA200d"`
	RelativeSMA200W  Series `json:"relativeSMA200w"`
}

// ChowderMetrics holds the chowder-number gate inputs and verdict
type ChowderMetrics struct {
	Yield         float64 `json:"yield"`
	DGR5Y         float64 `json:"dgr5y"`
	ChowderNumber float64 `json:"chowderNumber"`
	PassGate      bool    `json:"passGate"`
	GateReason    string  `json:"gateReason"`
}

// DividendSafety holds the raw safety inputs as shown to the user
type DividendSafety struct {
	PayoutEPS        float64 `json:"payoutEPS"`
	PayoutFCF        float64 `json:"payoutFCF"`
	DebtEBITDA       float64 `json:"debtEbitda"`
	InterestCoverage float64 `json:"interestCoverage"`
}

// ExpectedReturn holds the three chowder-style total-return scenarios
// (percentage points per year)
type ExpectedReturn struct {
	Conservative float64 `json:"conservative"`
	Base         float64 `json:"base"`
	Optimistic   float64 `json:"optimistic"`
}

// CoreScore is the quality composite: business moat, dividend growth engine,
// balance-sheet resilience
type CoreScore struct {
	Moat       float64 `json:"moat"`
	Engine     float64 `json:"engine"`
	Resilience float64 `json:"resilience"`
	Total      float64 `json:"total"`
}

// MOSScore is the timing / margin-of-safety composite
type MOSScore struct {
	Valuation    float64 `json:"valuation"`
	YieldHistory float64 `json:"yieldHistory"`
	GoldPctile   float64 `json:"goldPercentile"`
	Regime       float64 `json:"regime"`
	Total        float64 `json:"total"`
}

// GoldPurchaseScore is the gold-purchase-opportunity composite
type GoldPurchaseScore struct {
	Price            float64 `json:"price"`
	Trend            float64 `json:"trend"`
	Regime           float64 `json:"regime"`
	RelativeStrength float64 `json:"relativeStrength"`
	Total            float64 `json:"total"`
	Interpretation   string  `json:"interpretation"`
}

// Scores groups the three composites and the discrete action badge
type Scores struct {
	Core         CoreScore         `json:"core"`
	MOS          MOSScore          `json:"mos"`
	GoldPurchase GoldPurchaseScore `json:"goldPurchase"`
	ActionBadge  string            `json:"actionBadge"`
}

// Zone is the discrete position-sizing regime
type Zone string

const (
	ZoneA Zone = "A" // accumulate 60-100% of target size
	ZoneB Zone = "B" // accumulate 25-60%
	ZoneC Zone = "C" // 0-25%, reinvestment only
)

// PercentileTable holds reference ratio levels over the horizon window
type PercentileTable struct {
	P10 float64 `json:"p10"`
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P90 float64 `json:"p90"`
}

// Signals holds SMA-crossover booleans for the current ratio
type Signals struct {
	AboveSMA200D bool `json:"aboveSMA200d"`
	AboveSMA200W bool `json:"aboveSMA200w"`
}

// MOSLadder carries the localized sizing guidance per zone
type MOSLadder struct {
	ZoneA string `json:"zoneA"`
	ZoneB string `json:"zoneB"`
	ZoneC string `json:"zoneC"`
}

// Metrics is the derived-metrics block of a RatioResult
type Metrics struct {
	CurrentRatio     float64         `json:"currentRatio"`
	Percentile       float64         `json:"percentile"`
	Trend12M         Trend           `json:"trend12m"`
	VolatilityAnnual float64         `json:"volatilityAnnual"`
	Chowder          ChowderMetrics  `json:"chowder"`
	DividendSafety   DividendSafety  `json:"dividendSafety"`
	ExpectedReturn   ExpectedReturn  `json:"expectedReturn"`
	MOSLadder        MOSLadder       `json:"mosLadder"`
	Scores           Scores          `json:"scores"`
	MOSZone          Zone            `json:"mosZone"`
	Percentiles      PercentileTable `json:"percentiles"`
	Signals          Signals         `json:"signals"`
}

// RatioResult is the sole output aggregate of one analysis invocation.
// It is constructed once per request; the only mutation path afterwards is
// the override-recalculation entry point, which re-derives every dependent
// field atomically.
type RatioResult struct {
	Ticker          string         `json:"ticker"`
	AssetName       string         `json:"assetName"`
	BenchmarkTicker string         `json:"benchmarkTicker"`
	HorizonYears    int            `json:"horizonYears"`
	Frequency       Frequency      `json:"frequency"`
	DividendMode    DividendMode   `json:"dividendMode"`
	BadgePolicy     BadgePolicy    `json:"badgePolicy"`
	IsGoldProxy     bool           `json:"isGoldProxy"`
	BenchmarkProxy  bool           `json:"benchmarkProxy"`
	LastUpdate      string         `json:"lastUpdate"`
	Language        Language       `json:"lang"`
	Data            RatioSeriesSet `json:"data"`
	Metrics         Metrics        `json:"metrics"`
}

// Clone returns a deep copy of the result. Series are copied so the override
// editor can never leave a caller holding partially-stale state.
func (r *RatioResult) Clone() *RatioResult {
	out := *r
	out.Data = RatioSeriesSet{
		Ratio:            r.Data.Ratio.Clone(),
		RatioSMA200D:     r.Data.RatioSMA200D.Clone(),
		RatioSMA200W:     r.Data.RatioSMA200W.Clone(),
		BenchmarkRatio:   r.Data.BenchmarkRatio.Clone(),
		BenchmarkSMA200D: r.Data.BenchmarkSMA200D.Clone(),
		BenchmarkSMA200W: r.Data.BenchmarkSMA200W.Clone(),
		RelativeRatio:    r.Data.RelativeRatio.Clone(),
		RelativeSMA200D:  r.Data.RelativeSMA200D.Clone(),
		RelativeSMA200W:  r.Data.RelativeSMA200W.Clone(),
	}
	return &out
}

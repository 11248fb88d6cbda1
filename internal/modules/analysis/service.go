// Package analysis implements the gold-ratio analysis engine: series
// alignment, horizon windowing, metric derivation and composite scoring.
package analysis

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/quantgold/internal/domain"
	"github.com/aristath/quantgold/internal/modules/alignment"
	"github.com/aristath/quantgold/internal/modules/metrics"
	"github.com/aristath/quantgold/internal/modules/scoring/scorers"
	"github.com/aristath/quantgold/internal/modules/series"
	"github.com/aristath/quantgold/pkg/formulas"
)

// SMA windows over the daily ratio series: 200 trading days and the
// 1000-day (200-week equivalent) long regime filter.
const (
	smaShortPeriod = 200
	smaLongPeriod  = 1000
)

// tradingDaysPerYear sizes the horizon window in trading-day equivalents
const tradingDaysPerYear = 252

// DataSource supplies the raw market inputs for one analysis invocation.
// Implementations own all retry, fallback and caching concerns; the engine
// only distinguishes fatal from degraded results.
type DataSource interface {
	FetchAnalysisData(ctx context.Context, req domain.AnalysisRequest) (*domain.MarketBundle, error)
}

// Defaults fill request fields the caller leaves unset. They come from
// server configuration; a request naming its own policy or language wins.
type Defaults struct {
	BadgePolicy domain.BadgePolicy
	Language    domain.Language
}

// Service is the analysis engine
type Service struct {
	source   DataSource
	defaults Defaults
	gps      *scorers.GoldPurchaseScorer
	mos      *scorers.MarginOfSafetyScorer
	core     *scorers.CoreQualityScorer
	log      zerolog.Logger
}

// NewService creates a new analysis service
func NewService(source DataSource, defaults Defaults, log zerolog.Logger) *Service {
	return &Service{
		source:   source,
		defaults: defaults,
		gps:      scorers.NewGoldPurchaseScorer(),
		mos:      scorers.NewMarginOfSafetyScorer(),
		core:     scorers.NewCoreQualityScorer(),
		log:      log.With().Str("service", "analysis").Logger(),
	}
}

// Analyze runs one full analysis. The three source series and fundamentals
// are fetched through the data source; everything after that is pure
// computation over series owned by this invocation.
func (s *Service) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.RatioResult, error) {
	req = s.withDefaults(req)
	requestID := uuid.New().String()

	log := s.log.With().
		Str("request_id", requestID).
		Str("ticker", req.Ticker).
		Int("horizon", req.HorizonYears).
		Logger()
	log.Info().Msg("Starting analysis")

	bundle, err := s.source.FetchAnalysisData(ctx, req)
	if err != nil {
		return nil, err
	}

	// A superseding request cancels this one between fetch and alignment;
	// the stale in-flight result must be discarded, not merged.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis cancelled: %w", err)
	}

	asset := bundle.Asset.Clone()
	gold := bundle.Gold.Clone()
	benchmark := bundle.Benchmark.Clone()
	if bundle.BenchmarkMissing || len(benchmark) == 0 {
		log.Warn().Str("benchmark", req.BenchmarkTicker).Msg("Benchmark unavailable, substituting neutral unit series")
		benchmark = alignment.UnitSeries(asset)
	}

	overrideLastPoint(asset, req.ManualPrice)
	overrideLastPoint(gold, req.ManualGoldPrice)
	overrideLastPoint(benchmark, req.ManualBenchmarkPrice)

	funds := applyFundamentalOverrides(bundle.Fundamentals, req)

	if req.DividendMode == domain.DividendModeTotalReturnApprox {
		annualYield := funds.Yield / 100
		if annualYield <= 0 {
			annualYield = 0.02
		}
		asset = series.ApplyTotalReturnApprox(asset, annualYield)
	}

	ratio := alignment.RatioAgainst(asset, gold)
	benchmarkRatio := alignment.RatioAgainst(benchmark, gold)
	relativeRatio := alignment.DirectRatio(asset, benchmark)
	if len(ratio) == 0 {
		return nil, domain.ErrSeriesNotFound{Symbol: req.Ticker, Language: req.Language}
	}

	result := s.build(req, bundle, funds, ratio, benchmarkRatio, relativeRatio)
	log.Info().
		Float64("current_ratio", result.Metrics.CurrentRatio).
		Str("zone", string(result.Metrics.MOSZone)).
		Msg("Analysis complete")
	return result, nil
}

// build assembles the RatioResult from the aligned ratio series
func (s *Service) build(
	req domain.AnalysisRequest,
	bundle *domain.MarketBundle,
	funds domain.Fundamentals,
	ratio, benchmarkRatio, relativeRatio domain.Series,
) *domain.RatioResult {
	daysToKeep := req.HorizonYears * tradingDaysPerYear

	// Current ratio comes from the full unsliced series; the percentile is
	// ranked against the horizon window only.
	currentRatio := ratio[len(ratio)-1].Value
	windowValues := ratio.Tail(daysToKeep).Values()
	percentile := formulas.PercentileRank(windowValues, currentRatio)

	ratioSMAShort := series.SMA(ratio, smaShortPeriod)
	ratioSMALong := series.SMA(ratio, smaLongPeriod)

	m := domain.Metrics{
		CurrentRatio:     currentRatio,
		Percentile:       percentile,
		Trend12M:         series.Trend(ratio.Tail(tradingDaysPerYear)),
		VolatilityAnnual: series.AnnualizedVolatility(ratio.Tail(tradingDaysPerYear), domain.FrequencyDaily),
		DividendSafety: domain.DividendSafety{
			PayoutEPS:        funds.PayoutEPS,
			PayoutFCF:        funds.PayoutFCF,
			DebtEBITDA:       funds.DebtEBITDA,
			InterestCoverage: funds.InterestCoverage,
		},
		MOSLadder:   scorers.Ladder(req.Language),
		Percentiles: metrics.PercentileTableOf(windowValues),
		Signals:     metrics.DeriveSignals(currentRatio, ratioSMAShort, ratioSMALong),
	}
	m.Chowder = metrics.Chowder(funds.Yield, funds.DGR5Y, req.Language)

	m.Scores.GoldPurchase = s.gps.Calculate(scorers.Inputs{
		Percentile:       percentile,
		AboveSMA200D:     m.Signals.AboveSMA200D,
		AboveSMA200W:     m.Signals.AboveSMA200W,
		RelativeTrend12M: series.Trend(relativeRatio.Tail(tradingDaysPerYear)),
		Language:         req.Language,
	})
	m.Scores.MOS = s.mos.Calculate(funds.Yield, percentile)

	// Shared with the override editor so interactive edits and batch
	// analysis can never diverge.
	deriveFundamentalScores(&m, req.Language, req.BadgePolicy)

	lastUpdate := ""
	if last, ok := bundle.Asset.Last(); ok {
		lastUpdate = last.Time
	}

	return &domain.RatioResult{
		Ticker:          req.Ticker,
		AssetName:       bundle.AssetName,
		BenchmarkTicker: req.BenchmarkTicker,
		HorizonYears:    req.HorizonYears,
		Frequency:       req.Frequency,
		DividendMode:    req.DividendMode,
		BadgePolicy:     req.BadgePolicy,
		IsGoldProxy:     bundle.IsGoldProxy,
		BenchmarkProxy:  bundle.BenchmarkMissing,
		LastUpdate:      lastUpdate,
		Language:        req.Language,
		Data:            buildSeriesSet(req.Frequency, daysToKeep, ratio, benchmarkRatio, relativeRatio),
		Metrics:         m,
	}
}

// buildSeriesSet windows, computes overlays and resamples the chart series.
// SMAs are computed on the full daily series first so the window start does
// not distort the overlay warm-up.
func buildSeriesSet(freq domain.Frequency, daysToKeep int, ratio, benchmarkRatio, relativeRatio domain.Series) domain.RatioSeriesSet {
	prep := func(s domain.Series) domain.Series {
		return series.Resample(s.Tail(daysToKeep), freq)
	}
	return domain.RatioSeriesSet{
		Ratio:            prep(ratio),
		RatioSMA200D:     prep(series.SMA(ratio, smaShortPeriod)),
		RatioSMA200W:     prep(series.SMA(ratio, smaLongPeriod)),
		BenchmarkRatio:   prep(benchmarkRatio),
		BenchmarkSMA200D: prep(series.SMA(benchmarkRatio, smaShortPeriod)),
		BenchmarkSMA200W: prep(series.SMA(benchmarkRatio, smaLongPeriod)),
		RelativeRatio:    prep(relativeRatio),
		RelativeSMA200D:  prep(series.SMA(relativeRatio, smaShortPeriod)),
		RelativeSMA200W:  prep(series.SMA(relativeRatio, smaLongPeriod)),
	}
}

// withDefaults fills unset request fields, preferring the configured service
// defaults before the built-in ones
func (s *Service) withDefaults(req domain.AnalysisRequest) domain.AnalysisRequest {
	if req.HorizonYears == 0 {
		req.HorizonYears = 10
	}
	if req.Frequency == "" {
		req.Frequency = domain.FrequencyDaily
	}
	if req.DividendMode == "" {
		req.DividendMode = domain.DividendModePriceOnly
	}
	if req.BadgePolicy == "" {
		req.BadgePolicy = s.defaults.BadgePolicy
	}
	if req.BadgePolicy == "" {
		req.BadgePolicy = domain.BadgePolicyScores
	}
	if req.Language == "" {
		req.Language = s.defaults.Language
	}
	if req.Language == "" {
		req.Language = domain.LanguageEN
	}
	return req
}

// overrideLastPoint replaces the final value of a series with a manual price.
// This is the single permitted mutation of a fetched series.
func overrideLastPoint(s domain.Series, value *float64) {
	if value == nil || len(s) == 0 || *value <= 0 {
		return
	}
	s[len(s)-1].Value = *value
}

func applyFundamentalOverrides(f domain.Fundamentals, req domain.AnalysisRequest) domain.Fundamentals {
	if req.ManualYield != nil {
		f.Yield = *req.ManualYield
	}
	if req.ManualDGR != nil {
		f.DGR5Y = *req.ManualDGR
	}
	if req.ManualPayoutEPS != nil {
		f.PayoutEPS = *req.ManualPayoutEPS
	}
	if req.ManualPayoutFCF != nil {
		f.PayoutFCF = *req.ManualPayoutFCF
	}
	if req.ManualDebtEbitda != nil {
		f.DebtEBITDA = *req.ManualDebtEbitda
	}
	if req.ManualInterestCoverage != nil {
		f.InterestCoverage = *req.ManualInterestCoverage
	}
	return f
}

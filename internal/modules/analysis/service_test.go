package analysis

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/quantgold/internal/domain"
)

// stubSource returns a canned bundle, or an error
type stubSource struct {
	bundle *domain.MarketBundle
	err    error
}

func (s *stubSource) FetchAnalysisData(_ context.Context, _ domain.AnalysisRequest) (*domain.MarketBundle, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.bundle, nil
}

func twoDayBundle() *domain.MarketBundle {
	return &domain.MarketBundle{
		Asset: domain.Series{
			{Time: "2024-01-01", Value: 100},
			{Time: "2024-01-02", Value: 110},
		},
		Benchmark: domain.Series{
			{Time: "2024-01-01", Value: 400},
			{Time: "2024-01-02", Value: 440},
		},
		Gold: domain.Series{
			{Time: "2024-01-01", Value: 2000},
			{Time: "2024-01-02", Value: 2000},
		},
		AssetName: "Test Corp",
		Fundamentals: domain.Fundamentals{
			Yield:            7.2,
			DGR5Y:            5.0,
			PayoutEPS:        70,
			PayoutFCF:        60,
			DebtEBITDA:       2.0,
			InterestCoverage: 6,
		},
		Provider: domain.ProviderStooq,
	}
}

func newTestService(src DataSource) *Service {
	return NewService(src, Defaults{}, zerolog.Nop())
}

func baseRequest() domain.AnalysisRequest {
	return domain.AnalysisRequest{
		Ticker:          "TST",
		BenchmarkTicker: "SPY",
		HorizonYears:    10,
		Frequency:       domain.FrequencyDaily,
		DividendMode:    domain.DividendModePriceOnly,
		Language:        domain.LanguageEN,
	}
}

func TestAnalyze_EndToEndRatioScenario(t *testing.T) {
	svc := newTestService(&stubSource{bundle: twoDayBundle()})

	result, err := svc.Analyze(context.Background(), baseRequest())
	require.NoError(t, err)

	require.Len(t, result.Data.Ratio, 2)
	assert.InDelta(t, 0.05, result.Data.Ratio[0].Value, 1e-12)
	assert.InDelta(t, 0.055, result.Data.Ratio[1].Value, 1e-12)
	assert.InDelta(t, 0.055, result.Metrics.CurrentRatio, 1e-12)
	assert.Equal(t, "2024-01-02", result.LastUpdate)
	assert.Equal(t, "Test Corp", result.AssetName)
	assert.Equal(t, domain.TrendUp, result.Metrics.Trend12M)
}

func TestAnalyze_ChowderScenario(t *testing.T) {
	svc := newTestService(&stubSource{bundle: twoDayBundle()})

	result, err := svc.Analyze(context.Background(), baseRequest())
	require.NoError(t, err)

	c := result.Metrics.Chowder
	assert.InDelta(t, 12.2, c.ChowderNumber, 1e-12)
	assert.True(t, c.PassGate)
	assert.InDelta(t, 12.2, result.Metrics.ExpectedReturn.Base, 1e-12)
	assert.InDelta(t, 10.2, result.Metrics.ExpectedReturn.Conservative, 1e-12)
	assert.InDelta(t, 14.2, result.Metrics.ExpectedReturn.Optimistic, 1e-12)
}

func TestAnalyze_FatalErrorsPropagate(t *testing.T) {
	svc := newTestService(&stubSource{err: domain.ErrSeriesNotFound{Symbol: "NOPE", Language: domain.LanguageEN}})

	_, err := svc.Analyze(context.Background(), baseRequest())
	require.Error(t, err)
	assert.ErrorContains(t, err, "NOPE")
}

func TestAnalyze_CancelledContextDiscardsResult(t *testing.T) {
	svc := newTestService(&stubSource{bundle: twoDayBundle()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Analyze(ctx, baseRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyze_MissingBenchmarkDegrades(t *testing.T) {
	bundle := twoDayBundle()
	bundle.Benchmark = nil
	bundle.BenchmarkMissing = true
	svc := newTestService(&stubSource{bundle: bundle})

	result, err := svc.Analyze(context.Background(), baseRequest())
	require.NoError(t, err)

	assert.True(t, result.BenchmarkProxy)
	// Against a unit benchmark the relative ratio equals the asset price
	require.Len(t, result.Data.RelativeRatio, 2)
	assert.InDelta(t, 100, result.Data.RelativeRatio[0].Value, 1e-12)
	assert.InDelta(t, 110, result.Data.RelativeRatio[1].Value, 1e-12)
}

func TestAnalyze_ManualPriceOverridesLastPoint(t *testing.T) {
	svc := newTestService(&stubSource{bundle: twoDayBundle()})

	req := baseRequest()
	price := 120.0
	req.ManualPrice = &price

	result, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.InDelta(t, 0.06, result.Metrics.CurrentRatio, 1e-12)
	// Earlier points are untouched
	assert.InDelta(t, 0.05, result.Data.Ratio[0].Value, 1e-12)
}

func TestAnalyze_ManualGoldPriceOverride(t *testing.T) {
	svc := newTestService(&stubSource{bundle: twoDayBundle()})

	req := baseRequest()
	goldPrice := 2200.0
	req.ManualGoldPrice = &goldPrice

	result, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.InDelta(t, 110.0/2200.0, result.Metrics.CurrentRatio, 1e-12)
}

func TestAnalyze_FundamentalOverrides(t *testing.T) {
	svc := newTestService(&stubSource{bundle: twoDayBundle()})

	req := baseRequest()
	y := 2.0
	d := 3.0
	req.ManualYield = &y
	req.ManualDGR = &d

	result, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, result.Metrics.Chowder.ChowderNumber, 1e-12)
	assert.False(t, result.Metrics.Chowder.PassGate)
}

func TestAnalyze_TotalReturnApproxLiftsSeries(t *testing.T) {
	svc := newTestService(&stubSource{bundle: twoDayBundle()})

	req := baseRequest()
	req.DividendMode = domain.DividendModeTotalReturnApprox

	plain, err := newTestService(&stubSource{bundle: twoDayBundle()}).Analyze(context.Background(), baseRequest())
	require.NoError(t, err)
	lifted, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)

	assert.Greater(t, lifted.Metrics.CurrentRatio, plain.Metrics.CurrentRatio)
	assert.Equal(t, plain.Data.Ratio[0].Value, lifted.Data.Ratio[0].Value)
}

func TestAnalyze_ZoneInvariant(t *testing.T) {
	svc := newTestService(&stubSource{bundle: twoDayBundle()})

	result, err := svc.Analyze(context.Background(), baseRequest())
	require.NoError(t, err)

	// Current ratio is the window maximum here: percentile 50 on two points
	if result.Metrics.Percentile < 25 {
		assert.NotEqual(t, domain.ZoneC, result.Metrics.MOSZone)
	}
	if result.Metrics.Percentile > 75 {
		assert.NotEqual(t, domain.ZoneA, result.Metrics.MOSZone)
	}
}

func TestAnalyze_DefaultsApplied(t *testing.T) {
	svc := newTestService(&stubSource{bundle: twoDayBundle()})

	result, err := svc.Analyze(context.Background(), domain.AnalysisRequest{Ticker: "TST"})
	require.NoError(t, err)
	assert.Equal(t, 10, result.HorizonYears)
	assert.Equal(t, domain.FrequencyDaily, result.Frequency)
	assert.Equal(t, domain.BadgePolicyScores, result.BadgePolicy)
	assert.Equal(t, domain.LanguageEN, result.Language)
}

func TestAnalyze_ConfiguredDefaultsApplied(t *testing.T) {
	svc := NewService(&stubSource{bundle: twoDayBundle()}, Defaults{
		BadgePolicy: domain.BadgePolicyChowder,
		Language:    domain.LanguageES,
	}, zerolog.Nop())

	result, err := svc.Analyze(context.Background(), domain.AnalysisRequest{Ticker: "TST"})
	require.NoError(t, err)
	assert.Equal(t, domain.BadgePolicyChowder, result.BadgePolicy)
	assert.Equal(t, domain.LanguageES, result.Language)
	// Chowder policy plus percentile 50 reads hold, in Spanish
	assert.Equal(t, "VIGILAR / MANTENER", result.Metrics.Scores.ActionBadge)
}

func TestAnalyze_RequestBeatsConfiguredDefaults(t *testing.T) {
	svc := NewService(&stubSource{bundle: twoDayBundle()}, Defaults{
		BadgePolicy: domain.BadgePolicyChowder,
		Language:    domain.LanguageES,
	}, zerolog.Nop())

	req := domain.AnalysisRequest{
		Ticker:      "TST",
		BadgePolicy: domain.BadgePolicyScores,
		Language:    domain.LanguageEN,
	}
	result, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, domain.BadgePolicyScores, result.BadgePolicy)
	assert.Equal(t, domain.LanguageEN, result.Language)
}

func TestAnalyze_BadgePolicies(t *testing.T) {
	// chowder 12.2, percentile of the max of two points is 50 -> not <50
	req := baseRequest()
	req.BadgePolicy = domain.BadgePolicyChowder

	result, err := newTestService(&stubSource{bundle: twoDayBundle()}).Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "WATCH / HOLD", result.Metrics.Scores.ActionBadge)
}

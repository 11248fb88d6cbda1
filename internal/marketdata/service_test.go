package marketdata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/aristath/quantgold/internal/clientdata"
	"github.com/aristath/quantgold/internal/clients/yahoo"
	"github.com/aristath/quantgold/internal/domain"
)

type fakeProvider struct {
	name   domain.Provider
	series map[string]domain.Series

	// FetchDaily runs on several errgroup goroutines at once
	mu    sync.Mutex
	calls map[string]int
}

func newFakeProvider(name domain.Provider) *fakeProvider {
	return &fakeProvider{name: name, series: map[string]domain.Series{}, calls: map[string]int{}}
}

func (f *fakeProvider) Name() domain.Provider { return f.name }

func (f *fakeProvider) FetchDaily(_ context.Context, symbol string) (domain.Series, error) {
	f.mu.Lock()
	f.calls[symbol]++
	f.mu.Unlock()

	if series, ok := f.series[symbol]; ok {
		return series, nil
	}
	return nil, errors.New("no data for " + symbol)
}

func (f *fakeProvider) callCount(symbol string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[symbol]
}

type fakeFundamentals struct {
	info yahoo.AssetInfo
}

func (f *fakeFundamentals) FetchAssetInfo(context.Context, string) yahoo.AssetInfo {
	return f.info
}

func mkSeries(values ...float64) domain.Series {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := make(domain.Series, len(values))
	for i, v := range values {
		series[i] = domain.PricePoint{Time: base.AddDate(0, 0, i).Format("2006-01-02"), Value: v}
	}
	return series
}

type fixture struct {
	service *Service
	stooq   *fakeProvider
	yahoo   *fakeProvider
	repo    *clientdata.Repository
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := clientdata.NewRepository(db)
	require.NoError(t, repo.EnsureSchema())

	f := &fixture{
		stooq: newFakeProvider(domain.ProviderStooq),
		yahoo: newFakeProvider(domain.ProviderYahoo),
		repo:  repo,
	}
	f.service = NewService(
		f.stooq, f.yahoo,
		&fakeFundamentals{info: yahoo.AssetInfo{
			Name:         "Test Corporation",
			Fundamentals: domain.Fundamentals{Yield: 7.2, DGR5Y: 5},
		}},
		repo, domain.ProviderStooq, time.Second, zerolog.Nop(),
	)
	return f
}

func request() domain.AnalysisRequest {
	return domain.AnalysisRequest{
		Ticker:          "TST",
		BenchmarkTicker: "SPY",
		Language:        domain.LanguageEN,
	}
}

func TestFetchAnalysisData_AssemblesBundle(t *testing.T) {
	f := setup(t)
	f.stooq.series["TST"] = mkSeries(100, 101, 102)
	f.stooq.series["SPY"] = mkSeries(400, 401, 402)
	f.stooq.series["XAU"] = mkSeries(2000, 2010, 2020)

	bundle, err := f.service.FetchAnalysisData(context.Background(), request())
	require.NoError(t, err)

	assert.Len(t, bundle.Asset, 3)
	assert.Len(t, bundle.Benchmark, 3)
	assert.Len(t, bundle.Gold, 3)
	assert.Equal(t, domain.ProviderStooq, bundle.Provider)
	assert.Equal(t, "Test Corporation", bundle.AssetName)
	assert.InDelta(t, 7.2, bundle.Fundamentals.Yield, 1e-9)
	assert.False(t, bundle.IsGoldProxy)
	assert.False(t, bundle.BenchmarkMissing)
}

func TestFetchAnalysisData_AssetMissingIsFatal(t *testing.T) {
	f := setup(t)
	f.stooq.series["XAU"] = mkSeries(2000, 2010)

	_, err := f.service.FetchAnalysisData(context.Background(), request())
	require.Error(t, err)

	var notFound domain.ErrSeriesNotFound
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "TST", notFound.Symbol)
}

func TestFetchAnalysisData_GoldMissingIsFatal(t *testing.T) {
	f := setup(t)
	f.stooq.series["TST"] = mkSeries(100, 101)
	f.stooq.series["SPY"] = mkSeries(400, 401)

	_, err := f.service.FetchAnalysisData(context.Background(), request())
	require.Error(t, err)

	var goldErr domain.ErrGoldUnavailable
	assert.ErrorAs(t, err, &goldErr)
}

func TestFetchAnalysisData_BenchmarkDegrades(t *testing.T) {
	f := setup(t)
	f.stooq.series["TST"] = mkSeries(100, 101)
	f.stooq.series["XAU"] = mkSeries(2000, 2010)

	bundle, err := f.service.FetchAnalysisData(context.Background(), request())
	require.NoError(t, err)

	assert.True(t, bundle.BenchmarkMissing)
	assert.Empty(t, bundle.Benchmark)
}

func TestFetchAnalysisData_NoBenchmarkRequested(t *testing.T) {
	f := setup(t)
	f.stooq.series["TST"] = mkSeries(100, 101)
	f.stooq.series["XAU"] = mkSeries(2000, 2010)

	req := request()
	req.BenchmarkTicker = ""

	bundle, err := f.service.FetchAnalysisData(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, bundle.BenchmarkMissing)
}

func TestFetchGold_ProxyFallback(t *testing.T) {
	f := setup(t)
	// No XAU anywhere, only the ETF
	f.stooq.series["GLD.US"] = mkSeries(200, 202)

	series, proxy, err := f.service.fetchGold(context.Background())
	require.NoError(t, err)

	assert.True(t, proxy)
	require.Len(t, series, 2)
	assert.InDelta(t, 200*10.15, series[0].Value, 1e-9)
	assert.InDelta(t, 202*10.15, series[1].Value, 1e-9)
}

func TestFetchGold_PrefersSpotOverProxy(t *testing.T) {
	f := setup(t)
	f.stooq.series["XAU"] = mkSeries(2000, 2010)
	f.stooq.series["GLD.US"] = mkSeries(200, 202)

	series, proxy, err := f.service.fetchGold(context.Background())
	require.NoError(t, err)

	assert.False(t, proxy)
	assert.Equal(t, 2000.0, series[0].Value)
}

func TestProviderFallback_WritesPreferenceBack(t *testing.T) {
	f := setup(t)
	// Stooq is down for everything, Yahoo serves the asset and gold
	f.yahoo.series["TST"] = mkSeries(100, 101)
	f.yahoo.series["SPY"] = mkSeries(400, 401)
	f.yahoo.series["XAU"] = mkSeries(2000, 2010)

	bundle, err := f.service.FetchAnalysisData(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderYahoo, bundle.Provider)

	// The fallback that worked becomes the first candidate next time
	order := f.service.providerOrder("")
	assert.Equal(t, domain.ProviderYahoo, order[0].Name())
}

func TestProviderOrder_RequestBeatsDefault(t *testing.T) {
	f := setup(t)

	order := f.service.providerOrder(domain.ProviderYahoo)
	require.Len(t, order, 2)
	assert.Equal(t, domain.ProviderYahoo, order[0].Name())
	assert.Equal(t, domain.ProviderStooq, order[1].Name())

	order = f.service.providerOrder("")
	assert.Equal(t, domain.ProviderStooq, order[0].Name())
}

func TestFetchCached_SecondCallServedFromCache(t *testing.T) {
	f := setup(t)
	f.stooq.series["TST"] = mkSeries(100, 101)

	_, err := f.service.fetchCached(context.Background(), f.stooq, "TST")
	require.NoError(t, err)
	_, err = f.service.fetchCached(context.Background(), f.stooq, "TST")
	require.NoError(t, err)

	assert.Equal(t, 1, f.stooq.callCount("TST"))
}

func TestFetchCached_StaleRescueWhenUpstreamDown(t *testing.T) {
	f := setup(t)
	// Expired entry in the cache, provider has nothing
	require.NoError(t, f.repo.Store(clientdata.TableStooqHistory, "TST", mkSeries(90, 91), -time.Hour))

	series, err := f.service.fetchCached(context.Background(), f.stooq, "TST")
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, 90.0, series[0].Value)
}

func TestFetchCached_ErrorWhenNoCacheAndNoUpstream(t *testing.T) {
	f := setup(t)

	_, err := f.service.fetchCached(context.Background(), f.stooq, "TST")
	assert.Error(t, err)
}

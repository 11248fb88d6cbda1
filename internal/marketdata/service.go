// Package marketdata assembles the market bundle an analysis needs: asset,
// benchmark and gold price histories plus fundamentals. It owns the retrieval
// policy (provider ordering, caching, fallbacks); the engine downstream never
// learns where the numbers came from.
package marketdata

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/aristath/quantgold/internal/clientdata"
	"github.com/aristath/quantgold/internal/clients/yahoo"
	"github.com/aristath/quantgold/internal/domain"
)

const (
	// SPDR GLD tracks 1/10oz of gold minus fees; 10.15 recovers an
	// approximate spot price when both direct gold sources are down.
	goldProxySymbol     = "GLD.US"
	goldProxyMultiplier = 10.15

	goldSpotSymbol  = "XAU"
	prefProviderKey = "preferred_provider"
)

// SeriesProvider fetches daily price history from one upstream source.
type SeriesProvider interface {
	Name() domain.Provider
	FetchDaily(ctx context.Context, symbol string) (domain.Series, error)
}

// FundamentalsProvider resolves name and dividend fundamentals for a ticker.
type FundamentalsProvider interface {
	FetchAssetInfo(ctx context.Context, ticker string) yahoo.AssetInfo
}

// Service implements the retrieval policy: ordered provider candidates with
// first-success-wins, cache-first reads, stale-cache rescue when upstreams
// fail, and the gold fallback chain.
type Service struct {
	stooq        SeriesProvider
	yahoo        SeriesProvider
	fundamentals FundamentalsProvider
	cache        *clientdata.Repository
	defaultPref  domain.Provider
	fetchTimeout time.Duration
	log          zerolog.Logger
}

// NewService creates a market data service. defaultPref seeds the provider
// order when neither the request nor the stored preference names one.
func NewService(
	stooqClient SeriesProvider,
	yahooClient SeriesProvider,
	fundamentals FundamentalsProvider,
	cache *clientdata.Repository,
	defaultPref domain.Provider,
	fetchTimeout time.Duration,
	log zerolog.Logger,
) *Service {
	return &Service{
		stooq:        stooqClient,
		yahoo:        yahooClient,
		fundamentals: fundamentals,
		cache:        cache,
		defaultPref:  defaultPref,
		fetchTimeout: fetchTimeout,
		log:          log.With().Str("service", "marketdata").Logger(),
	}
}

// FetchAnalysisData fans out the three series and fundamentals concurrently.
// Asset and gold failures are fatal; a missing benchmark only flags the
// bundle so relative-strength metrics can degrade.
func (s *Service) FetchAnalysisData(ctx context.Context, req domain.AnalysisRequest) (*domain.MarketBundle, error) {
	providers := s.providerOrder(req.Provider)

	bundle := &domain.MarketBundle{}
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		series, provider, err := s.fetchSeries(groupCtx, req.Ticker, providers)
		if err != nil {
			return domain.ErrSeriesNotFound{Symbol: req.Ticker, Language: req.Language}
		}
		bundle.Asset = series
		bundle.Provider = provider
		s.rememberProvider(providers[0], provider)
		return nil
	})

	group.Go(func() error {
		series, proxy, err := s.fetchGold(groupCtx)
		if err != nil {
			return domain.ErrGoldUnavailable{Language: req.Language}
		}
		bundle.Gold = series
		bundle.IsGoldProxy = proxy
		return nil
	})

	if req.BenchmarkTicker != "" {
		group.Go(func() error {
			series, _, err := s.fetchSeries(groupCtx, req.BenchmarkTicker, providers)
			if err != nil {
				s.log.Warn().Err(err).Str("benchmark", req.BenchmarkTicker).
					Msg("Benchmark unavailable, relative metrics will degrade")
				bundle.BenchmarkMissing = true
				return nil
			}
			bundle.Benchmark = series
			return nil
		})
	} else {
		bundle.BenchmarkMissing = true
	}

	group.Go(func() error {
		info := s.fetchFundamentals(groupCtx, req.Ticker)
		bundle.AssetName = info.Name
		bundle.Fundamentals = info.Fundamentals
		return nil
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("ticker", req.Ticker).
		Str("provider", string(bundle.Provider)).
		Int("asset_points", len(bundle.Asset)).
		Bool("gold_proxy", bundle.IsGoldProxy).
		Bool("benchmark_missing", bundle.BenchmarkMissing).
		Msg("Market bundle assembled")

	return bundle, nil
}

// providerOrder builds the candidate list. Request beats stored preference
// beats configured default; the other provider always follows as fallback.
func (s *Service) providerOrder(requested domain.Provider) []SeriesProvider {
	pref := requested
	if pref == "" {
		pref = s.storedPreference()
	}
	if pref == "" {
		pref = s.defaultPref
	}
	if pref == domain.ProviderYahoo {
		return []SeriesProvider{s.yahoo, s.stooq}
	}
	return []SeriesProvider{s.stooq, s.yahoo}
}

func (s *Service) storedPreference() domain.Provider {
	raw, err := s.cache.GetIfFresh(clientdata.TablePreferences, prefProviderKey)
	if err != nil || raw == nil {
		return ""
	}
	var pref domain.Provider
	if err := json.Unmarshal(raw, &pref); err != nil {
		return ""
	}
	return pref
}

// rememberProvider persists the provider that actually served the asset
// series when it differs from the first candidate, so the next analysis
// tries the working source first.
func (s *Service) rememberProvider(first SeriesProvider, served domain.Provider) {
	if first.Name() == served {
		return
	}
	if err := s.cache.Store(clientdata.TablePreferences, prefProviderKey, served, clientdata.TTLPreference); err != nil {
		s.log.Warn().Err(err).Msg("Failed to persist provider preference")
		return
	}
	s.log.Info().Str("provider", string(served)).Msg("Provider preference updated after fallback")
}

// fetchSeries tries each provider in order and returns the first success
// along with the provider that served it.
func (s *Service) fetchSeries(ctx context.Context, symbol string, providers []SeriesProvider) (domain.Series, domain.Provider, error) {
	var lastErr error
	for _, provider := range providers {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}
		series, err := s.fetchCached(ctx, provider, symbol)
		if err == nil {
			return series, provider.Name(), nil
		}
		lastErr = err
		s.log.Debug().Err(err).
			Str("symbol", symbol).
			Str("provider", string(provider.Name())).
			Msg("Provider attempt failed")
	}
	return nil, "", lastErr
}

// fetchCached serves from the fresh cache when possible, otherwise fetches
// with a per-attempt timeout and stores the result. When the upstream fails
// a stale cache entry still rescues the request.
func (s *Service) fetchCached(ctx context.Context, provider SeriesProvider, symbol string) (domain.Series, error) {
	table := historyTable(provider.Name())
	key := cacheKey(symbol)

	if raw, err := s.cache.GetIfFresh(table, key); err == nil && raw != nil {
		var series domain.Series
		if err := json.Unmarshal(raw, &series); err == nil && len(series) > 0 {
			return series, nil
		}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	series, err := provider.FetchDaily(attemptCtx, symbol)
	if err != nil {
		if raw, cacheErr := s.cache.Get(table, key); cacheErr == nil && raw != nil {
			var stale domain.Series
			if jsonErr := json.Unmarshal(raw, &stale); jsonErr == nil && len(stale) > 0 {
				s.log.Warn().Str("symbol", symbol).Str("provider", string(provider.Name())).
					Msg("Upstream failed, serving stale cache")
				return stale, nil
			}
		}
		return nil, err
	}

	if err := s.cache.Store(table, key, series, clientdata.TTLPriceHistory); err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to cache price history")
	}
	return series, nil
}

// fetchGold walks the gold fallback chain: spot via Stooq, the COMEX future
// via Yahoo, and finally the GLD ETF scaled to an approximate spot price.
func (s *Service) fetchGold(ctx context.Context) (domain.Series, bool, error) {
	if series, err := s.fetchCached(ctx, s.stooq, goldSpotSymbol); err == nil {
		return series, false, nil
	}

	if series, err := s.fetchCached(ctx, s.yahoo, goldSpotSymbol); err == nil {
		return series, false, nil
	}

	series, err := s.fetchCached(ctx, s.stooq, goldProxySymbol)
	if err != nil {
		return nil, false, err
	}

	proxied := make(domain.Series, len(series))
	for i, point := range series {
		proxied[i] = domain.PricePoint{Time: point.Time, Value: point.Value * goldProxyMultiplier}
	}
	s.log.Warn().Msg("Direct gold sources unavailable, using scaled GLD proxy")
	return proxied, true, nil
}

func (s *Service) fetchFundamentals(ctx context.Context, ticker string) yahoo.AssetInfo {
	key := cacheKey(ticker)

	if raw, err := s.cache.GetIfFresh(clientdata.TableFundamentals, key); err == nil && raw != nil {
		var info yahoo.AssetInfo
		if err := json.Unmarshal(raw, &info); err == nil && info.Name != "" {
			return info
		}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	info := s.fundamentals.FetchAssetInfo(attemptCtx, ticker)
	if err := s.cache.Store(clientdata.TableFundamentals, key, info, clientdata.TTLFundamentals); err != nil {
		s.log.Warn().Err(err).Str("ticker", ticker).Msg("Failed to cache fundamentals")
	}
	return info
}

func historyTable(provider domain.Provider) string {
	if provider == domain.ProviderYahoo {
		return clientdata.TableYahooHistory
	}
	return clientdata.TableStooqHistory
}

func cacheKey(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

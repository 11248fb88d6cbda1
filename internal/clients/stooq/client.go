// Package stooq provides daily price history fetching from stooq.com CSV
// exports.
package stooq

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/quantgold/internal/domain"
)

// minPoints is the smallest history considered usable; anything shorter is
// treated as a failed symbol variant.
const minPoints = 10

const csvHeader = "Date,Open,High,Low,Close"

// Client for stooq.com daily CSV downloads
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a new Stooq client. Timeout bounds each HTTP attempt.
func NewClient(timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: "https://stooq.com/q/d/l/",
		client:  &http.Client{Timeout: timeout},
		log:     log.With().Str("client", "stooq").Logger(),
	}
}

// Name identifies the provider
func (c *Client) Name() domain.Provider {
	return domain.ProviderStooq
}

// SymbolVariants expands a user ticker into the suffix forms Stooq knows.
// Bare US tickers get the .US suffix first; European listings follow.
func SymbolVariants(symbol string) []string {
	normalized := strings.ToUpper(strings.TrimSpace(symbol))
	variants := make([]string, 0, 5)
	if !strings.Contains(normalized, ".") {
		variants = append(variants, normalized+".US")
	}
	variants = append(variants, normalized, normalized+".UK", normalized+".PT", normalized+".LS")
	return variants
}

// FetchDaily retrieves the full daily close history for a symbol, trying
// each suffix variant until one yields a usable series.
func (c *Client) FetchDaily(ctx context.Context, symbol string) (domain.Series, error) {
	for _, variant := range SymbolVariants(symbol) {
		series, err := c.fetchVariant(ctx, variant)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.log.Debug().Err(err).Str("symbol", variant).Msg("Variant fetch failed")
			continue
		}
		c.log.Info().Str("symbol", variant).Int("points", len(series)).Msg("Fetched history")
		return series, nil
	}
	return nil, fmt.Errorf("no usable stooq history for %s", symbol)
}

func (c *Client) fetchVariant(ctx context.Context, symbol string) (domain.Series, error) {
	url := fmt.Sprintf("%s?s=%s&i=d", c.baseURL, strings.ToLower(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "text/plain, text/csv")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stooq returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	series, err := ParseCSV(string(body))
	if err != nil {
		return nil, err
	}
	if len(series) < minPoints {
		return nil, fmt.Errorf("only %d usable points for %s", len(series), symbol)
	}
	return series, nil
}

// ParseCSV decodes a Stooq daily export (Date,Open,High,Low,Close[,Volume]).
// Malformed lines are skipped, the upstream format drifts.
func ParseCSV(text string) (domain.Series, error) {
	if !strings.Contains(text, csvHeader) {
		return nil, fmt.Errorf("response is not a stooq CSV export")
	}

	lines := strings.Split(text, "\n")
	series := make(domain.Series, 0, len(lines))
	for _, line := range lines[1:] {
		parts := strings.Split(strings.TrimSpace(line), ",")
		if len(parts) < 5 {
			continue
		}
		date := strings.TrimSpace(parts[0])
		if len(date) != 10 {
			continue
		}
		closePrice, err := strconv.ParseFloat(parts[4], 64)
		if err != nil || closePrice <= 0 {
			continue
		}
		series = append(series, domain.PricePoint{Time: date, Value: closePrice})
	}
	return series, nil
}

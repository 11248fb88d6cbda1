// Package yahoo provides price history and fundamentals fetching from the
// Yahoo Finance CSV and JSON endpoints.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/quantgold/internal/domain"
)

const (
	historyYears = 18
	minPoints    = 10
	csvHeader    = "Date,Open,High,Low,Close,Adj Close"
)

// Client for the Yahoo Finance download and quote endpoints
type Client struct {
	historyURL string
	quoteURL   string
	summaryURL string
	client     *http.Client
	log        zerolog.Logger
}

// NewClient creates a new Yahoo Finance client. Timeout bounds each HTTP
// attempt.
func NewClient(timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		historyURL: "https://query1.finance.yahoo.com/v7/finance/download",
		quoteURL:   "https://query1.finance.yahoo.com/v7/finance/quote",
		summaryURL: "https://query2.finance.yahoo.com/v10/finance/quoteSummary",
		client:     &http.Client{Timeout: timeout},
		log:        log.With().Str("client", "yahoo").Logger(),
	}
}

// Name identifies the provider
func (c *Client) Name() domain.Provider {
	return domain.ProviderYahoo
}

// MapSymbol translates tickers Yahoo spells differently; spot gold trades as
// the COMEX front-month future there.
func MapSymbol(symbol string) string {
	normalized := strings.ToUpper(strings.TrimSpace(symbol))
	if normalized == "XAU" {
		return "GC=F"
	}
	return normalized
}

// FetchDaily retrieves up to 18 years of adjusted daily closes for a ticker
func (c *Client) FetchDaily(ctx context.Context, symbol string) (domain.Series, error) {
	mapped := MapSymbol(symbol)
	now := time.Now().Unix()
	start := now - historyYears*365*24*60*60

	url := fmt.Sprintf(
		"%s/%s?period1=%d&period2=%d&interval=1d&events=history&includeAdjustedClose=true",
		c.historyURL, mapped, start, now,
	)

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	series, err := ParseHistoryCSV(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse history for %s: %w", mapped, err)
	}
	if len(series) < minPoints {
		return nil, fmt.Errorf("only %d usable points for %s", len(series), mapped)
	}

	c.log.Info().Str("symbol", mapped).Int("points", len(series)).Msg("Fetched history")
	return series, nil
}

// ParseHistoryCSV decodes a Yahoo history export, using the adjusted close
// column. Malformed lines (null rows on market holidays) are skipped.
func ParseHistoryCSV(text string) (domain.Series, error) {
	if !strings.Contains(text, csvHeader) {
		return nil, fmt.Errorf("response is not a yahoo history export")
	}

	lines := strings.Split(text, "\n")
	series := make(domain.Series, 0, len(lines))
	for _, line := range lines[1:] {
		parts := strings.Split(strings.TrimSpace(line), ",")
		if len(parts) < 7 {
			continue
		}
		date := strings.TrimSpace(parts[0])
		if len(date) != 10 {
			continue
		}
		adjClose, err := strconv.ParseFloat(parts[5], 64)
		if err != nil || adjClose <= 0 {
			continue
		}
		series = append(series, domain.PricePoint{Time: date, Value: adjClose})
	}
	return series, nil
}

// AssetInfo is the decoded fundamentals payload plus the resolved long name
type AssetInfo struct {
	Name         string              `json:"name"`
	Fundamentals domain.Fundamentals `json:"fundamentals"`
}

// FetchAssetInfo resolves the asset name and dividend fundamentals for a
// ticker. Partial upstream data degrades to neutral defaults instead of
// failing; a total miss falls back to the built-in table for well-known
// dividend tickers.
func (c *Client) FetchAssetInfo(ctx context.Context, ticker string) AssetInfo {
	info := AssetInfo{Name: ticker}

	var yieldFraction float64
	if quote := c.fetchQuote(ctx, ticker); quote != nil {
		if name := quote.name(); name != "" {
			info.Name = name
		}
		yieldFraction = quote.yieldFraction()
	}

	summary := c.fetchSummary(ctx, ticker)
	info.Fundamentals = decodeFundamentals(yieldFraction, summary)

	if fallback, ok := fallbackTable[baseTicker(ticker)]; ok && info.Fundamentals.Yield == 0 {
		c.log.Warn().Str("ticker", ticker).Msg("Using built-in fundamentals fallback")
		info.Fundamentals = fallback.funds
		if fallback.name != "" {
			info.Name = fallback.name
		}
	}

	return info
}

// rawValue is Yahoo's {"raw": 0.05, "fmt": "5.00%"} wrapper
type rawValue struct {
	Raw float64 `json:"raw"`
}

type quoteResult struct {
	LongName                    string  `json:"longName"`
	ShortName                   string  `json:"shortName"`
	TrailingAnnualDividendYield float64 `json:"trailingAnnualDividendYield"`
	DividendYield               float64 `json:"dividendYield"`
	TrailingAnnualDividendRate  float64 `json:"trailingAnnualDividendRate"`
	RegularMarketPrice          float64 `json:"regularMarketPrice"`
}

func (q *quoteResult) name() string {
	if q.LongName != "" {
		return q.LongName
	}
	return q.ShortName
}

func (q *quoteResult) yieldFraction() float64 {
	if q.TrailingAnnualDividendYield > 0 {
		return q.TrailingAnnualDividendYield
	}
	if q.DividendYield > 0 {
		return q.DividendYield
	}
	if q.TrailingAnnualDividendRate > 0 && q.RegularMarketPrice > 0 {
		return q.TrailingAnnualDividendRate / q.RegularMarketPrice
	}
	return 0
}

type summaryResult struct {
	SummaryDetail struct {
		DividendYield rawValue `json:"dividendYield"`
		PayoutRatio   rawValue `json:"payoutRatio"`
	} `json:"summaryDetail"`
	KeyStatistics struct {
		Yield                    rawValue `json:"yield"`
		PayoutRatio              rawValue `json:"payoutRatio"`
		FiveYearAvgDividendYield rawValue `json:"fiveYearAvgDividendYield"`
	} `json:"defaultKeyStatistics"`
	FinancialData struct {
		DebtToEbitda rawValue `json:"debtToEbitda"`
		TotalDebt    rawValue `json:"totalDebt"`
		Ebitda       rawValue `json:"ebitda"`
	} `json:"financialData"`
}

func (c *Client) fetchQuote(ctx context.Context, ticker string) *quoteResult {
	body, err := c.get(ctx, fmt.Sprintf("%s?symbols=%s", c.quoteURL, ticker))
	if err != nil {
		c.log.Debug().Err(err).Str("ticker", ticker).Msg("Quote fetch failed")
		return nil
	}

	var envelope struct {
		QuoteResponse struct {
			Result []quoteResult `json:"result"`
		} `json:"quoteResponse"`
	}
	if err := json.Unmarshal([]byte(body), &envelope); err != nil || len(envelope.QuoteResponse.Result) == 0 {
		return nil
	}
	return &envelope.QuoteResponse.Result[0]
}

func (c *Client) fetchSummary(ctx context.Context, ticker string) *summaryResult {
	modules := "summaryDetail,defaultKeyStatistics,financialData"
	body, err := c.get(ctx, fmt.Sprintf("%s/%s?modules=%s", c.summaryURL, ticker, modules))
	if err != nil {
		c.log.Debug().Err(err).Str("ticker", ticker).Msg("Summary fetch failed")
		return nil
	}

	var envelope struct {
		QuoteSummary struct {
			Result []summaryResult `json:"result"`
		} `json:"quoteSummary"`
	}
	if err := json.Unmarshal([]byte(body), &envelope); err != nil || len(envelope.QuoteSummary.Result) == 0 {
		return nil
	}
	return &envelope.QuoteSummary.Result[0]
}

// decodeFundamentals converts the tolerant-decoded upstream fields into a
// fully-typed percent-unit record with explicit defaulting per field.
func decodeFundamentals(yieldFraction float64, summary *summaryResult) domain.Fundamentals {
	funds := domain.Fundamentals{
		// No coverage figure at all reads as "adequately covered", not broke
		InterestCoverage: 5,
	}

	if summary != nil {
		sd := summary.SummaryDetail
		ks := summary.KeyStatistics
		fd := summary.FinancialData

		if yieldFraction == 0 {
			for _, candidate := range []float64{sd.DividendYield.Raw, ks.Yield.Raw} {
				if candidate > 0 {
					yieldFraction = candidate
					break
				}
			}
		}

		if ks.FiveYearAvgDividendYield.Raw > 0 {
			funds.DGR5Y = ks.FiveYearAvgDividendYield.Raw
		}

		payout := ks.PayoutRatio.Raw
		if payout == 0 {
			payout = sd.PayoutRatio.Raw
		}
		funds.PayoutEPS = payout * 100
		if funds.PayoutEPS > 0 {
			// FCF payout is rarely reported; approximate from EPS payout
			funds.PayoutFCF = funds.PayoutEPS * 0.9
		}

		switch {
		case fd.DebtToEbitda.Raw > 0:
			funds.DebtEBITDA = fd.DebtToEbitda.Raw
		case fd.TotalDebt.Raw > 0 && fd.Ebitda.Raw > 0:
			funds.DebtEBITDA = fd.TotalDebt.Raw / fd.Ebitda.Raw
		}

		if fd.Ebitda.Raw > 0 && fd.TotalDebt.Raw > 0 {
			funds.InterestCoverage = fd.Ebitda.Raw / (fd.TotalDebt.Raw * 0.05)
		}
	}

	funds.Yield = yieldFraction * 100
	if funds.DGR5Y == 0 && funds.Yield > 0 {
		// Payers with no growth history get a conservative 5% assumption
		funds.DGR5Y = 5
	}

	return funds
}

func (c *Client) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "text/plain, text/csv, application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("yahoo returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	return string(body), nil
}

func baseTicker(ticker string) string {
	return strings.ToUpper(strings.SplitN(strings.TrimSpace(ticker), ".", 2)[0])
}

// fallbackTable covers common dividend tickers so the scoring model never
// runs on an all-zero record when every upstream endpoint is down.
var fallbackTable = map[string]struct {
	name  string
	funds domain.Fundamentals
}{
	"MO": {name: "Altria Group, Inc.", funds: domain.Fundamentals{
		Yield: 8.2, DGR5Y: 4.5, PayoutEPS: 78, PayoutFCF: 82, DebtEBITDA: 2.1, InterestCoverage: 9.5,
	}},
	"EPD": {funds: domain.Fundamentals{
		Yield: 7.2, DGR5Y: 5.0, PayoutEPS: 85, PayoutFCF: 75, DebtEBITDA: 3.2, InterestCoverage: 5,
	}},
	"O": {funds: domain.Fundamentals{
		Yield: 5.5, DGR5Y: 4.0, PayoutEPS: 88, PayoutFCF: 80, DebtEBITDA: 5.4, InterestCoverage: 4.5,
	}},
	"AAPL": {funds: domain.Fundamentals{
		Yield: 0.5, DGR5Y: 8.0, PayoutEPS: 15, PayoutFCF: 12, DebtEBITDA: 0.8, InterestCoverage: 40,
	}},
	"EDP": {funds: domain.Fundamentals{
		Yield: 4.5, DGR5Y: 3.0, PayoutEPS: 70, PayoutFCF: 65, DebtEBITDA: 3.5, InterestCoverage: 3.8,
	}},
	"EDPFY": {funds: domain.Fundamentals{
		Yield: 4.5, DGR5Y: 3.0, PayoutEPS: 70, PayoutFCF: 65, DebtEBITDA: 3.5, InterestCoverage: 3.8,
	}},
}

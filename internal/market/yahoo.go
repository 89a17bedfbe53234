package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"asxwatch/internal/ann"
)

const (
	defaultYahooBaseURL = "https://query1.finance.yahoo.com"
	yahooUserAgent      = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"
)

// YahooConfig carries the quote provider settings.
type YahooConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Yahoo fetches market data from the public Yahoo Finance JSON endpoints.
type Yahoo struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewYahoo builds a Yahoo provider. An empty BaseURL selects the public
// endpoint; tests point it at a local server.
func NewYahoo(cfg YahooConfig, logger zerolog.Logger) *Yahoo {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultYahooBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Yahoo{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "market").Logger(),
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// History fetches up to days daily bars from the chart endpoint, oldest-first.
func (y *Yahoo) History(ctx context.Context, sym ann.Symbol, days int) ([]Bar, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?range=%dd&interval=1d", y.baseURL, sym.ASX(), days)

	var parsed chartResponse
	if err := y.getJSON(ctx, url, &parsed); err != nil {
		return nil, err
	}
	if parsed.Chart.Error != nil {
		return nil, fmt.Errorf("market: chart error for %s: %s", sym, parsed.Chart.Error.Description)
	}
	if len(parsed.Chart.Result) == 0 || len(parsed.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, ErrNoData
	}

	result := parsed.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	bars := make([]Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || i >= len(quote.Volume) {
			break
		}
		bars = append(bars, Bar{
			Date:   time.Unix(ts, 0).UTC(),
			Open:   at(quote.Open, i),
			High:   at(quote.High, i),
			Low:    at(quote.Low, i),
			Close:  quote.Close[i],
			Volume: quote.Volume[i],
		})
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}
	return bars, nil
}

func at(vals []float64, i int) float64 {
	if i < len(vals) {
		return vals[i]
	}
	return 0
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price struct {
				MarketCap struct {
					Raw float64 `json:"raw"`
				} `json:"marketCap"`
				Currency string `json:"currency"`
			} `json:"price"`
			Earnings struct {
				FinancialsChart struct {
					Quarterly []earningsChartEntry `json:"quarterly"`
					Yearly    []earningsChartEntry `json:"yearly"`
				} `json:"financialsChart"`
			} `json:"earnings"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// Fundamentals fetches the price module of the quoteSummary endpoint.
func (y *Yahoo) Fundamentals(ctx context.Context, sym ann.Symbol) (Fundamentals, error) {
	parsed, err := y.quoteSummary(ctx, sym, "price")
	if err != nil {
		return Fundamentals{}, err
	}

	price := parsed.QuoteSummary.Result[0].Price
	if price.MarketCap.Raw <= 0 {
		return Fundamentals{}, ErrNoData
	}
	return Fundamentals{
		MarketCap: price.MarketCap.Raw,
		Currency:  price.Currency,
	}, nil
}

type earningsChartEntry struct {
	Date     periodLabel `json:"date"`
	Earnings struct {
		Raw float64 `json:"raw"`
	} `json:"earnings"`
}

// periodLabel accepts both the quarterly string labels ("4Q2025") and the
// bare integer years the yearly series publishes.
type periodLabel string

func (p *periodLabel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = periodLabel(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*p = periodLabel(n.String())
	return nil
}

// Earnings fetches reported earnings, oldest-first as published. Quarterly
// figures are preferred; tickers without them fall back to the yearly series.
func (y *Yahoo) Earnings(ctx context.Context, sym ann.Symbol) ([]EarningsPeriod, error) {
	parsed, err := y.quoteSummary(ctx, sym, "earnings")
	if err != nil {
		return nil, err
	}

	chart := parsed.QuoteSummary.Result[0].Earnings.FinancialsChart
	entries := chart.Quarterly
	if len(entries) == 0 {
		entries = chart.Yearly
	}
	if len(entries) == 0 {
		return nil, ErrNoData
	}

	periods := make([]EarningsPeriod, 0, len(entries))
	for _, e := range entries {
		periods = append(periods, EarningsPeriod{
			Period: string(e.Date),
			Actual: e.Earnings.Raw,
		})
	}
	return periods, nil
}

func (y *Yahoo) quoteSummary(ctx context.Context, sym ann.Symbol, modules string) (*quoteSummaryResponse, error) {
	url := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s", y.baseURL, sym.ASX(), modules)

	var parsed quoteSummaryResponse
	if err := y.getJSON(ctx, url, &parsed); err != nil {
		return nil, err
	}
	if parsed.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("market: quoteSummary error for %s: %s", sym, parsed.QuoteSummary.Error.Description)
	}
	if len(parsed.QuoteSummary.Result) == 0 {
		return nil, ErrNoData
	}
	return &parsed, nil
}

func (y *Yahoo) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("market: build request: %w", err)
	}
	req.Header.Set("User-Agent", yahooUserAgent)

	resp, err := y.client.Do(req)
	if err != nil {
		return fmt.Errorf("market: fetch %s: %w", url, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			y.logger.Warn().Err(err).Str("url", url).Msg("failed to close response body")
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNoData
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("market: %s returned status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("market: read response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("market: decode response: %w", err)
	}
	return nil
}

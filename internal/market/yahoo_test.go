package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asxwatch/internal/ann"
)

const sampleChartJSON = `{
  "chart": {
    "result": [{
      "timestamp": [1755734400, 1755820800, 1755907200],
      "indicators": {
        "quote": [{
          "open": [10.0, 10.2, 10.5],
          "high": [10.3, 10.6, 10.9],
          "low": [9.9, 10.1, 10.4],
          "close": [10.2, 10.5, 10.8],
          "volume": [350000, 420000, 310000]
        }]
      }
    }],
    "error": null
  }
}`

const sampleSummaryJSON = `{
  "quoteSummary": {
    "result": [{
      "price": {
        "marketCap": {"raw": 150000000},
        "currency": "AUD"
      },
      "earnings": {
        "financialsChart": {
          "quarterly": [
            {"date": "4Q2024", "earnings": {"raw": 0.10}},
            {"date": "1Q2025", "earnings": {"raw": 0.12}},
            {"date": "2Q2025", "earnings": {"raw": 0.11}},
            {"date": "3Q2025", "earnings": {"raw": 0.14}},
            {"date": "4Q2025", "earnings": {"raw": 0.18}}
          ]
        }
      }
    }],
    "error": null
  }
}`

func newTestYahoo(t *testing.T, handler http.HandlerFunc) *Yahoo {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewYahoo(YahooConfig{BaseURL: srv.URL}, zerolog.Nop())
}

func TestHistory(t *testing.T) {
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/v8/finance/chart/BHP.AX"))
		w.Write([]byte(sampleChartJSON))
	})

	bars, err := y.History(context.Background(), ann.NewSymbol("BHP"), 3)
	require.NoError(t, err)
	require.Len(t, bars, 3)
	assert.Equal(t, 10.2, bars[0].Close)
	assert.Equal(t, int64(310000), bars[2].Volume)
	assert.True(t, bars[0].Date.Before(bars[2].Date))
}

func TestHistoryNoData(t *testing.T) {
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart": {"result": [], "error": null}}`))
	})

	_, err := y.History(context.Background(), ann.NewSymbol("XYZ"), 60)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestHistoryNotFound(t *testing.T) {
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := y.History(context.Background(), ann.NewSymbol("XYZ"), 60)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestFundamentals(t *testing.T) {
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "modules=price")
		w.Write([]byte(sampleSummaryJSON))
	})

	f, err := y.Fundamentals(context.Background(), ann.NewSymbol("BHP"))
	require.NoError(t, err)
	assert.Equal(t, 150000000.0, f.MarketCap)
	assert.Equal(t, "AUD", f.Currency)
}

const sampleYearlyOnlyJSON = `{
  "quoteSummary": {
    "result": [{
      "earnings": {
        "financialsChart": {
          "quarterly": [],
          "yearly": [
            {"date": 2023, "earnings": {"raw": 0.40}},
            {"date": 2024, "earnings": {"raw": 0.55}},
            {"date": 2025, "earnings": {"raw": 0.70}}
          ]
        }
      }
    }],
    "error": null
  }
}`

func TestEarnings(t *testing.T) {
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "modules=earnings")
		w.Write([]byte(sampleSummaryJSON))
	})

	periods, err := y.Earnings(context.Background(), ann.NewSymbol("BHP"))
	require.NoError(t, err)
	require.Len(t, periods, 5)
	assert.Equal(t, "4Q2024", periods[0].Period)
	assert.Equal(t, 0.18, periods[4].Actual)
}

func TestEarningsAnnualFallback(t *testing.T) {
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleYearlyOnlyJSON))
	})

	periods, err := y.Earnings(context.Background(), ann.NewSymbol("BHP"))
	require.NoError(t, err)
	require.Len(t, periods, 3)
	assert.Equal(t, "2023", periods[0].Period)
	assert.Equal(t, 0.70, periods[2].Actual)
}

/*
Package market fetches price history, fundamentals and earnings for gate
evaluation. The Yahoo-backed provider is the production implementation; a
TTL cache wraps it so a batch run never fetches the same symbol twice.
*/
package market

import (
	"context"
	"errors"
	"time"

	"asxwatch/internal/ann"
)

// ErrNoData reports that the provider had no usable data for a symbol.
// Gate checks treat it as a failed check, not a batch failure.
var ErrNoData = errors.New("market: no data for symbol")

// Bar is one daily OHLCV observation, oldest-first in a History slice.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// Fundamentals carries the point-in-time figures the gate checks.
type Fundamentals struct {
	MarketCap float64
	Currency  string
}

// EarningsPeriod is one historical reported EPS observation, oldest-first.
type EarningsPeriod struct {
	Period string // e.g. "4Q2025"
	Actual float64
}

// Provider supplies the market data the gate consumes.
type Provider interface {
	// History returns up to days daily bars, oldest-first.
	History(ctx context.Context, sym ann.Symbol, days int) ([]Bar, error)
	Fundamentals(ctx context.Context, sym ann.Symbol) (Fundamentals, error)
	// Earnings returns reported quarterly EPS, oldest-first.
	Earnings(ctx context.Context, sym ann.Symbol) ([]EarningsPeriod, error)
}

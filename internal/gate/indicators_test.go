package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asxwatch/internal/market"
)

func barsFromCloses(closes ...float64) []market.Bar {
	bars := make([]market.Bar, len(closes))
	for i, c := range closes {
		bars[i] = market.Bar{Close: c, Volume: 100_000}
	}
	return bars
}

func TestSMA(t *testing.T) {
	bars := barsFromCloses(1, 2, 3, 4)

	avg, ok := sma(bars, 2)
	require.True(t, ok)
	assert.Equal(t, 3.5, avg)

	_, ok = sma(bars, 5)
	assert.False(t, ok)
}

func TestAvgVolume(t *testing.T) {
	bars := []market.Bar{
		{Volume: 100},
		{Volume: 200},
		{Volume: 600},
	}

	avg, ok := avgVolume(bars, 2)
	require.True(t, ok)
	assert.Equal(t, 400.0, avg)
}

func TestMomentumPct(t *testing.T) {
	bars := barsFromCloses(10, 10, 10.5)

	mom, ok := momentumPct(bars, 2)
	require.True(t, ok)
	assert.InDelta(t, 5.0, mom, 1e-9)

	_, ok = momentumPct(bars, 3)
	assert.False(t, ok)
}

func TestRSIAllGains(t *testing.T) {
	bars := barsFromCloses(1, 2, 3, 4, 5)

	val, ok := rsi(bars, 4)
	require.True(t, ok)
	assert.Equal(t, 100.0, val)
}

func TestRSIMixed(t *testing.T) {
	// Two gains of 2 and two losses of 1: RS = 2, RSI = 66.67.
	bars := barsFromCloses(10, 12, 11, 13, 12)

	val, ok := rsi(bars, 4)
	require.True(t, ok)
	assert.InDelta(t, 66.6667, val, 0.001)
}

func earningsPeriods(actuals ...float64) []market.EarningsPeriod {
	out := make([]market.EarningsPeriod, len(actuals))
	for i, a := range actuals {
		out[i] = market.EarningsPeriod{Actual: a}
	}
	return out
}

func TestSUE(t *testing.T) {
	// Diffs are [-1, 1]: mean 0, stdev 1, latest diff 1.
	val, ok := sue(earningsPeriods(0, 0, 0, 0, -1, 1), 4, 8)
	require.True(t, ok)
	assert.InDelta(t, 1.0, val, 1e-9)
}

func TestSUEInsufficientPeriods(t *testing.T) {
	_, ok := sue(earningsPeriods(1, 2, 3, 4), 4, 8)
	assert.False(t, ok)
}

func TestSUESingleDiffDefaultsDeviation(t *testing.T) {
	// Five periods give one seasonal diff; the deviation defaults to 1.0 and
	// the diff itself is the score.
	val, ok := sue(earningsPeriods(0, 0, 0, 0, 2), 4, 8)
	require.True(t, ok)
	assert.InDelta(t, 2.0, val, 1e-9)
}

func TestSUEDegenerateSpread(t *testing.T) {
	// Diffs are [1, 1]: zero spread scores 0, which the gate then rejects.
	val, ok := sue(earningsPeriods(0, 0, 0, 0, 1, 1), 4, 8)
	require.True(t, ok)
	assert.Zero(t, val)
}

func TestSUELookbackWindow(t *testing.T) {
	// Eight diffs, but only the trailing two [-1, 1] are in the window:
	// mean 0, stdev 1, latest diff 1. The full series would spread to 3.44.
	actuals := []float64{0, 0, 0, 0, 8, 8, 1, 0, 8, 8, 0, 1}
	val, ok := sue(earningsPeriods(actuals...), 4, 2)
	require.True(t, ok)
	assert.InDelta(t, 1.0, val, 1e-9)
}

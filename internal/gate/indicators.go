package gate

import (
	"math"

	"asxwatch/internal/market"
)

// sma averages the last n closes. Returns false when fewer than n bars exist.
func sma(bars []market.Bar, n int) (float64, bool) {
	if n <= 0 || len(bars) < n {
		return 0, false
	}
	sum := 0.0
	for _, b := range bars[len(bars)-n:] {
		sum += b.Close
	}
	return sum / float64(n), true
}

// avgVolume averages the last n daily volumes.
func avgVolume(bars []market.Bar, n int) (float64, bool) {
	if n <= 0 || len(bars) < n {
		return 0, false
	}
	sum := int64(0)
	for _, b := range bars[len(bars)-n:] {
		sum += b.Volume
	}
	return float64(sum) / float64(n), true
}

// momentumPct is the percentage return over the last n periods.
func momentumPct(bars []market.Bar, n int) (float64, bool) {
	if n <= 0 || len(bars) < n+1 {
		return 0, false
	}
	prev := bars[len(bars)-1-n].Close
	last := bars[len(bars)-1].Close
	if prev == 0 {
		return 0, false
	}
	return (last/prev - 1) * 100, true
}

// rsi computes the n-period RSI using simple average gains and losses over
// the last n price changes.
func rsi(bars []market.Bar, n int) (float64, bool) {
	if n <= 0 || len(bars) < n+1 {
		return 0, false
	}

	var gains, losses float64
	window := bars[len(bars)-1-n:]
	for i := 1; i < len(window); i++ {
		change := window[i].Close - window[i-1].Close
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(n)
	avgLoss := losses / float64(n)
	if avgLoss == 0 {
		return 100, true
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

// sue computes the standardized unexpected earnings for the latest period:
// the latest seasonal difference (actual minus the figure seasonLag periods
// prior) divided by the standard deviation of the trailing lookback window of
// such differences. With fewer than two differences the deviation defaults to
// 1.0; a zero spread yields a SUE of 0.
func sue(periods []market.EarningsPeriod, seasonLag, lookback int) (float64, bool) {
	if len(periods) < seasonLag+1 {
		return 0, false
	}

	diffs := make([]float64, 0, len(periods)-seasonLag)
	for i := seasonLag; i < len(periods); i++ {
		diffs = append(diffs, periods[i].Actual-periods[i-seasonLag].Actual)
	}
	if lookback > 0 && len(diffs) > lookback {
		diffs = diffs[len(diffs)-lookback:]
	}

	latest := diffs[len(diffs)-1]
	if len(diffs) < 2 {
		return latest, true
	}

	mean := 0.0
	for _, d := range diffs {
		mean += d
	}
	mean /= float64(len(diffs))

	variance := 0.0
	for _, d := range diffs {
		variance += (d - mean) * (d - mean)
	}
	variance /= float64(len(diffs))

	stdev := math.Sqrt(variance)
	if stdev == 0 {
		return 0, true
	}

	return latest / stdev, true
}

/*
Package gate applies the fundamental and technical checks that stand between
an admitted candidate and the ranked shortlist.

Every check is conservative: a data fetch failure or an insufficient history
fails the check for that candidate and the batch moves on. Earnings-related
titles additionally clear a standardized-unexpected-earnings hurdle and earn
a score boost; other titles must instead carry a high lexicon score.
*/
package gate

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"asxwatch/internal/ann"
	"asxwatch/internal/market"
)

// Reason identifies which check failed a candidate.
type Reason string

const (
	ReasonPassed       Reason = "passed"
	ReasonNoHistory    Reason = "insufficient_history"
	ReasonLowVolume    Reason = "low_volume"
	ReasonMarketCap    Reason = "market_cap"
	ReasonMomentum     Reason = "momentum"
	ReasonBelowSMA     Reason = "below_sma"
	ReasonOverbought   Reason = "rsi_overbought"
	ReasonEarningsSUE  Reason = "earnings_surprise"
	ReasonLexiconFloor Reason = "lexicon_floor"
)

// Config carries the gate thresholds. Defaults target small-to-mid caps with
// liquid trading and recent upward momentum.
type Config struct {
	MinAvgVolume        float64 `mapstructure:"min_avg_volume"`
	VolumePeriods       int     `mapstructure:"volume_periods"`
	MinMarketCap        float64 `mapstructure:"min_market_cap"`
	MaxMarketCap        float64 `mapstructure:"max_market_cap"`
	MinMomentumPct      float64 `mapstructure:"min_momentum_pct"`
	MomentumPeriods     int     `mapstructure:"momentum_periods"`
	SMAPeriods          int     `mapstructure:"sma_periods"`
	RSIPeriods          int     `mapstructure:"rsi_periods"`
	MaxRSI              float64 `mapstructure:"max_rsi"`
	MinSUE              float64 `mapstructure:"min_sue"`
	SUELookback         int     `mapstructure:"sue_lookback"`
	SUEBoostFactor      float64 `mapstructure:"sue_boost_factor"`
	SUEBoostCap         float64 `mapstructure:"sue_boost_cap"`
	MinNonEarningsScore float64 `mapstructure:"min_non_earnings_score"`
	HistoryDays         int     `mapstructure:"history_days"`
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		MinAvgVolume:        300_000,
		VolumePeriods:       20,
		MinMarketCap:        50e6,
		MaxMarketCap:        2e9,
		MinMomentumPct:      3.0,
		MomentumPeriods:     10,
		SMAPeriods:          50,
		RSIPeriods:          14,
		MaxRSI:              75,
		MinSUE:              0.5,
		SUELookback:         8,
		SUEBoostFactor:      1.5,
		SUEBoostCap:         4.0,
		MinNonEarningsScore: 3.0,
		HistoryDays:         90,
	}
}

// Result is the outcome of evaluating one candidate.
type Result struct {
	Passed bool
	Reason Reason
	SUE    float64
	Boost  float64 // applied to the candidate score when Passed
}

// Gate evaluates candidates against a market data provider.
type Gate struct {
	cfg      Config
	provider market.Provider
	logger   zerolog.Logger
}

// New builds a gate. The provider is typically a cache-wrapped Yahoo client.
func New(cfg Config, provider market.Provider, logger zerolog.Logger) *Gate {
	return &Gate{
		cfg:      cfg,
		provider: provider,
		logger:   logger.With().Str("component", "gate").Logger(),
	}
}

var earningsKeywords = []string{
	"result",
	"earnings",
	"ebitda",
	"profit",
	"guidance",
	"half year",
	"full year",
	"half-year",
	"full-year",
	"quarterly",
	"annual report",
	"fy2",
}

// "eps" matches whole words only so titles like "Next Steps" don't qualify.
var epsRe = regexp.MustCompile(`\beps\b`)

// IsEarningsRelated reports whether a title describes an earnings event.
func IsEarningsRelated(title string) bool {
	lower := strings.ToLower(title)
	for _, kw := range earningsKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return epsRe.MatchString(lower)
}

// Evaluate runs the full check sequence for one candidate. Data errors fail
// the affected check and are logged at debug level; Evaluate never returns
// an error to the caller.
func (g *Gate) Evaluate(ctx context.Context, c ann.Candidate) Result {
	sym := c.Symbol

	bars, err := g.provider.History(ctx, sym, g.cfg.HistoryDays)
	if err != nil {
		g.debugFail(sym, ReasonNoHistory, err)
		return Result{Reason: ReasonNoHistory}
	}

	vol, ok := avgVolume(bars, g.cfg.VolumePeriods)
	if !ok {
		return g.fail(sym, ReasonNoHistory)
	}
	if vol < g.cfg.MinAvgVolume {
		return g.fail(sym, ReasonLowVolume)
	}

	fund, err := g.provider.Fundamentals(ctx, sym)
	if err != nil {
		g.debugFail(sym, ReasonMarketCap, err)
		return Result{Reason: ReasonMarketCap}
	}
	if fund.MarketCap < g.cfg.MinMarketCap || fund.MarketCap > g.cfg.MaxMarketCap {
		return g.fail(sym, ReasonMarketCap)
	}

	mom, ok := momentumPct(bars, g.cfg.MomentumPeriods)
	if !ok {
		return g.fail(sym, ReasonNoHistory)
	}
	if mom < g.cfg.MinMomentumPct {
		return g.fail(sym, ReasonMomentum)
	}

	avg, ok := sma(bars, g.cfg.SMAPeriods)
	if !ok {
		return g.fail(sym, ReasonNoHistory)
	}
	if bars[len(bars)-1].Close < avg {
		return g.fail(sym, ReasonBelowSMA)
	}

	strength, ok := rsi(bars, g.cfg.RSIPeriods)
	if !ok {
		return g.fail(sym, ReasonNoHistory)
	}
	if strength > g.cfg.MaxRSI {
		return g.fail(sym, ReasonOverbought)
	}

	if IsEarningsRelated(c.Title) {
		return g.evaluateEarnings(ctx, c)
	}

	// Non-earnings news must already carry a strong lexicon score.
	if c.Score < g.cfg.MinNonEarningsScore {
		return g.fail(sym, ReasonLexiconFloor)
	}
	return Result{Passed: true, Reason: ReasonPassed}
}

func (g *Gate) evaluateEarnings(ctx context.Context, c ann.Candidate) Result {
	periods, err := g.provider.Earnings(ctx, c.Symbol)
	if err != nil {
		g.debugFail(c.Symbol, ReasonEarningsSUE, err)
		return Result{Reason: ReasonEarningsSUE}
	}

	surprise, ok := sue(periods, 4, g.cfg.SUELookback)
	if !ok || surprise <= g.cfg.MinSUE {
		return g.fail(c.Symbol, ReasonEarningsSUE)
	}

	boost := surprise * g.cfg.SUEBoostFactor
	if boost > g.cfg.SUEBoostCap {
		boost = g.cfg.SUEBoostCap
	}
	return Result{Passed: true, Reason: ReasonPassed, SUE: surprise, Boost: boost}
}

// TechSnapshot is the technical context the analyzer includes in AI prompts,
// computed with the gate's own periods.
type TechSnapshot struct {
	Close       float64
	MomentumPct float64
	RSI         float64
	AvgVolume   float64
	MarketCap   float64
}

// Snapshot computes the current technical picture for a symbol. Individual
// indicators that lack history are left at zero.
func (g *Gate) Snapshot(ctx context.Context, sym ann.Symbol) (TechSnapshot, error) {
	bars, err := g.provider.History(ctx, sym, g.cfg.HistoryDays)
	if err != nil {
		return TechSnapshot{}, err
	}
	if len(bars) == 0 {
		return TechSnapshot{}, market.ErrNoData
	}

	var snap TechSnapshot
	snap.Close = bars[len(bars)-1].Close
	if v, ok := momentumPct(bars, g.cfg.MomentumPeriods); ok {
		snap.MomentumPct = v
	}
	if v, ok := rsi(bars, g.cfg.RSIPeriods); ok {
		snap.RSI = v
	}
	if v, ok := avgVolume(bars, g.cfg.VolumePeriods); ok {
		snap.AvgVolume = v
	}
	if fund, err := g.provider.Fundamentals(ctx, sym); err == nil {
		snap.MarketCap = fund.MarketCap
	}
	return snap, nil
}

func (g *Gate) fail(sym ann.Symbol, reason Reason) Result {
	g.logger.Debug().Str("symbol", sym.String()).Str("reason", string(reason)).Msg("gate rejected")
	return Result{Reason: reason}
}

func (g *Gate) debugFail(sym ann.Symbol, reason Reason, err error) {
	g.logger.Debug().Err(err).Str("symbol", sym.String()).Str("reason", string(reason)).Msg("gate data fetch failed")
}

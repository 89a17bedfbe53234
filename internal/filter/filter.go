/*
Package filter implements the admission chain that decides which scraped
announcements become candidates.

Checks run in a fixed order and short-circuit on the first rejection:
watchlist membership, excluded-ticker, price sensitivity, routine-title,
excluded-content, and finally sentiment. An announcement that clears every
check is admitted as a Candidate carrying its lexicon score.
*/
package filter

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"asxwatch/internal/ann"
	"asxwatch/internal/lexicon"
)

// Reason identifies which check rejected an announcement.
type Reason string

const (
	ReasonAdmitted          Reason = "admitted"
	ReasonNotInWatchlist    Reason = "not_in_watchlist"
	ReasonExcludedTicker    Reason = "biotech_ticker"
	ReasonNotPriceSensitive Reason = "not_price_sensitive"
	ReasonRoutine           Reason = "routine"
	ReasonExcludedContent   Reason = "biotech_content"
	ReasonNonPositive       Reason = "non_positive_sentiment"
)

// Config carries the deployment's admission settings.
type Config struct {
	Watchlist             []string `mapstructure:"watchlist"`
	ExcludedTickers       []string `mapstructure:"excluded_tickers"`
	RequirePriceSensitive bool     `mapstructure:"require_price_sensitive"`
}

// Chain applies the admission checks in order. Safe for concurrent use.
type Chain struct {
	watchlist        map[ann.Symbol]struct{}
	excludedTickers  map[ann.Symbol]struct{}
	requireSensitive bool
	profile          lexicon.Profile
	scorer           *lexicon.Scorer
	logger           zerolog.Logger

	mu     sync.Mutex
	counts map[Reason]int
}

// New builds a chain from config and a scoring profile.
func New(cfg Config, scorer *lexicon.Scorer, logger zerolog.Logger) *Chain {
	c := &Chain{
		watchlist:        make(map[ann.Symbol]struct{}, len(cfg.Watchlist)),
		excludedTickers:  make(map[ann.Symbol]struct{}, len(cfg.ExcludedTickers)),
		requireSensitive: cfg.RequirePriceSensitive,
		profile:          scorer.Profile(),
		scorer:           scorer,
		logger:           logger.With().Str("component", "filter").Logger(),
		counts:           make(map[Reason]int),
	}
	for _, raw := range cfg.Watchlist {
		c.watchlist[ann.NewSymbol(raw)] = struct{}{}
	}
	for _, raw := range cfg.ExcludedTickers {
		c.excludedTickers[ann.NewSymbol(raw)] = struct{}{}
	}
	return c
}

// Admit runs the chain against one announcement. The returned candidate is
// only meaningful when the reason is ReasonAdmitted; its Score is the lexicon
// score computed by the final check.
func (c *Chain) Admit(a ann.Announcement) (ann.Candidate, Reason) {
	reason := c.evaluate(a)

	c.mu.Lock()
	c.counts[reason]++
	c.mu.Unlock()

	if reason != ReasonAdmitted {
		c.logger.Debug().
			Str("symbol", a.Symbol.String()).
			Str("title", a.Title).
			Str("reason", string(reason)).
			Msg("announcement rejected")
		return ann.Candidate{}, reason
	}

	cand := ann.Candidate{Announcement: a}
	cand.AddScore(c.scorer.Score(a.Title))
	return cand, ReasonAdmitted
}

func (c *Chain) evaluate(a ann.Announcement) Reason {
	if _, ok := c.watchlist[a.Symbol]; !ok {
		return ReasonNotInWatchlist
	}
	if _, ok := c.excludedTickers[a.Symbol]; ok {
		return ReasonExcludedTicker
	}
	if c.requireSensitive && !a.IsPriceSensitive {
		return ReasonNotPriceSensitive
	}

	lower := strings.ToLower(a.Title)
	for _, phrase := range c.profile.RoutinePhrases {
		if strings.Contains(lower, phrase) {
			return ReasonRoutine
		}
	}
	for _, phrase := range c.profile.ExcludedContent {
		if strings.Contains(lower, phrase) {
			return ReasonExcludedContent
		}
	}

	if c.scorer.Score(a.Title) <= 0 {
		return ReasonNonPositive
	}
	return ReasonAdmitted
}

// Counts returns a copy of the per-reason tallies since the chain was built.
func (c *Chain) Counts() map[Reason]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[Reason]int, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}

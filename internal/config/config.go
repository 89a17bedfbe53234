/*
Package config loads and validates the application configuration from a
YAML file and ASXWATCH_-prefixed environment variables.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"asxwatch/internal/ai"
	"asxwatch/internal/filter"
	"asxwatch/internal/gate"
	"asxwatch/internal/lexicon"
	"asxwatch/internal/logging"
	"asxwatch/internal/market"
	"asxwatch/internal/notify"
	"asxwatch/internal/rank"
	"asxwatch/internal/report"
	"asxwatch/internal/scrape"
	"asxwatch/internal/sheets"
	"asxwatch/internal/store"
)

// PipelineConfig controls the scan pipeline itself.
type PipelineConfig struct {
	Profile        string  `mapstructure:"profile"`
	TopN           int     `mapstructure:"top_n"`
	PreviousDay    bool    `mapstructure:"previous_day"`
	MatchThreshold float64 `mapstructure:"match_threshold"`
	Concurrency    int     `mapstructure:"concurrency"`
}

// MarketConfig wraps the quote provider and its cache.
type MarketConfig struct {
	Yahoo    market.YahooConfig `mapstructure:"yahoo"`
	CacheTTL time.Duration      `mapstructure:"cache_ttl"`
}

// AnalyzerConfig controls the scheduled intraday assessment pass.
type AnalyzerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Cron    string `mapstructure:"cron"`
}

// Config is the full application configuration.
type Config struct {
	Logging  logging.Config     `mapstructure:"logging"`
	Pipeline PipelineConfig     `mapstructure:"pipeline"`
	Filter   filter.Config      `mapstructure:"filter"`
	Gate     gate.Config        `mapstructure:"gate"`
	Market   MarketConfig       `mapstructure:"market"`
	Scrape   scrape.Config      `mapstructure:"scrape"`
	Store    store.Config       `mapstructure:"store"`
	Gemini   ai.Config          `mapstructure:"gemini"`
	Sheets   sheets.Config      `mapstructure:"sheets"`
	Email    notify.EmailConfig `mapstructure:"email"`
	Report   report.Config      `mapstructure:"report"`
	Analyzer AnalyzerConfig     `mapstructure:"analyzer"`
}

// Load reads configuration from the given file (optional) and the
// environment, applies defaults and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("ASXWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.asxwatch")
		if err := v.ReadInConfig(); err != nil {
			// A missing file is fine; defaults and env cover everything.
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("config: read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("pipeline.profile", lexicon.ProfileSurprise)
	v.SetDefault("pipeline.top_n", rank.DefaultTopN)
	v.SetDefault("pipeline.previous_day", false)
	v.SetDefault("pipeline.match_threshold", 0.8)
	v.SetDefault("pipeline.concurrency", 10)

	v.SetDefault("filter.require_price_sensitive", true)

	gateDefaults := gate.DefaultConfig()
	v.SetDefault("gate.min_avg_volume", gateDefaults.MinAvgVolume)
	v.SetDefault("gate.volume_periods", gateDefaults.VolumePeriods)
	v.SetDefault("gate.min_market_cap", gateDefaults.MinMarketCap)
	v.SetDefault("gate.max_market_cap", gateDefaults.MaxMarketCap)
	v.SetDefault("gate.min_momentum_pct", gateDefaults.MinMomentumPct)
	v.SetDefault("gate.momentum_periods", gateDefaults.MomentumPeriods)
	v.SetDefault("gate.sma_periods", gateDefaults.SMAPeriods)
	v.SetDefault("gate.rsi_periods", gateDefaults.RSIPeriods)
	v.SetDefault("gate.max_rsi", gateDefaults.MaxRSI)
	v.SetDefault("gate.min_sue", gateDefaults.MinSUE)
	v.SetDefault("gate.sue_lookback", gateDefaults.SUELookback)
	v.SetDefault("gate.sue_boost_factor", gateDefaults.SUEBoostFactor)
	v.SetDefault("gate.sue_boost_cap", gateDefaults.SUEBoostCap)
	v.SetDefault("gate.min_non_earnings_score", gateDefaults.MinNonEarningsScore)
	v.SetDefault("gate.history_days", gateDefaults.HistoryDays)

	v.SetDefault("market.cache_ttl", market.DefaultTTL)
	v.SetDefault("market.yahoo.timeout", 30*time.Second)

	v.SetDefault("scrape.timeout", 60*time.Second)

	v.SetDefault("store.path", "asxwatch.db")

	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.max_attempts", 5)
	v.SetDefault("gemini.initial_backoff", 5*time.Second)
	v.SetDefault("gemini.max_backoff", 60*time.Second)

	v.SetDefault("sheets.timeout", 60*time.Second)

	v.SetDefault("email.enabled", false)
	v.SetDefault("email.smtp_port", 587)

	v.SetDefault("report.dir", ".")
	v.SetDefault("report.chart", true)

	v.SetDefault("analyzer.enabled", false)
	v.SetDefault("analyzer.cron", "0 30 12 * * 1-5")
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	profile, err := lexicon.ByName(c.Pipeline.Profile)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if len(c.Filter.Watchlist) == 0 {
		return fmt.Errorf("config: filter.watchlist must not be empty")
	}
	if c.Pipeline.TopN < 0 {
		return fmt.Errorf("config: pipeline.top_n must not be negative")
	}
	if c.Pipeline.Concurrency <= 0 {
		return fmt.Errorf("config: pipeline.concurrency must be positive")
	}
	if c.Pipeline.MatchThreshold <= 0 || c.Pipeline.MatchThreshold > 1 {
		return fmt.Errorf("config: pipeline.match_threshold must be in (0, 1]")
	}
	if c.Store.Path == "" {
		return fmt.Errorf("config: store.path is required")
	}
	if c.Email.Enabled && (c.Email.SMTPServer == "" || c.Email.ToEmail == "") {
		return fmt.Errorf("config: email.smtp_server and email.to_email are required when email is enabled")
	}
	if c.Analyzer.Enabled && c.Gemini.APIKey == "" {
		return fmt.Errorf("config: gemini.api_key is required when the analyzer is enabled")
	}
	return nil
}

/*
Package app wires the configured components together and runs the two
entrypoints: the morning scan and the intraday assessment pass.
*/
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"asxwatch/internal/ai"
	"asxwatch/internal/analyzer"
	"asxwatch/internal/ann"
	"asxwatch/internal/config"
	"asxwatch/internal/filter"
	"asxwatch/internal/gate"
	"asxwatch/internal/lexicon"
	"asxwatch/internal/market"
	"asxwatch/internal/match"
	"asxwatch/internal/notify"
	"asxwatch/internal/rank"
	"asxwatch/internal/report"
	"asxwatch/internal/scrape"
	"asxwatch/internal/sheets"
	"asxwatch/internal/store"
)

// Feed is the scraping surface the scan consumes.
type Feed interface {
	DailyFeed(ctx context.Context, previousDay bool) ([]ann.Announcement, error)
	ResolvePDFURL(ctx context.Context, landingURL string) (string, error)
	ShortInterest(ctx context.Context, sym ann.Symbol) (string, error)
}

// Evaluator applies the fundamental and technical gate.
type Evaluator interface {
	Evaluate(ctx context.Context, c ann.Candidate) gate.Result
}

// Appender publishes rows to the results sheet.
type Appender interface {
	Append(ctx context.Context, headers []string, rows [][]string) error
}

// App holds the wired components for one process lifetime.
type App struct {
	Config *config.Config
	Logger zerolog.Logger

	feed    Feed
	scraper *scrape.Scraper
	chain   *filter.Chain
	gate    Evaluator
	gates   *gate.Gate
	reports *report.Writer
	sheets  Appender // nil when unconfigured
	store   *store.Store
}

// New wires an App from config. The caller must Close it.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	profile, err := lexicon.ByName(cfg.Pipeline.Profile)
	if err != nil {
		return nil, err
	}
	scorer := lexicon.NewScorer(profile)

	st, err := store.Open(cfg.Store, logger)
	if err != nil {
		return nil, err
	}

	provider := market.NewCache(market.NewYahoo(cfg.Market.Yahoo, logger), cfg.Market.CacheTTL)
	g := gate.New(cfg.Gate, provider, logger)

	scraper := scrape.New(cfg.Scrape, logger)
	app := &App{
		Config:  cfg,
		Logger:  logger,
		feed:    scraper,
		scraper: scraper,
		chain:   filter.New(cfg.Filter, scorer, logger),
		gate:    g,
		gates:   g,
		reports: report.New(cfg.Report, logger),
		store:   st,
	}

	if cfg.Sheets.ScriptURL != "" {
		publisher, err := sheets.New(cfg.Sheets, logger)
		if err != nil {
			st.Close()
			return nil, err
		}
		app.sheets = publisher
	}

	return app, nil
}

// Close releases the App's resources.
func (a *App) Close() error {
	return a.store.Close()
}

// ScanSummary reports what one scan did.
type ScanSummary struct {
	Scanned  int
	Admitted int
	Passed   int
	Ranked   int
	CSVPath  string
}

// Scan runs the full morning pipeline: scrape, filter, gate, rank, export
// and persist.
func (a *App) Scan(ctx context.Context) (ScanSummary, error) {
	logger := a.Logger.With().Str("component", "scan").Logger()
	runDate := time.Now()

	announcements, err := a.feed.DailyFeed(ctx, a.Config.Pipeline.PreviousDay)
	if err != nil {
		return ScanSummary{}, fmt.Errorf("scan feed: %w", err)
	}

	var admitted []ann.Candidate
	for _, announcement := range announcements {
		cand, reason := a.chain.Admit(announcement)
		if reason != filter.ReasonAdmitted {
			continue
		}
		admitted = append(admitted, cand)
	}

	passed := a.runGate(ctx, admitted)
	ranked := rank.Select(passed, a.Config.Pipeline.TopN)

	matcher := a.fullScrapeMatcher(ctx)

	pdfURLs := make(map[rank.DocKey]string, len(ranked))
	shortInterest := make(map[ann.Symbol]string, len(ranked))
	for _, c := range ranked {
		if doc, ok := matcher.Match(c); !ok {
			logger.Warn().
				Str("symbol", c.Symbol.String()).
				Str("title", c.Title).
				Msg("no document matched, keeping sentinel")
		} else if url, err := a.feed.ResolvePDFURL(ctx, doc.LandingURL); err != nil {
			logger.Warn().Err(err).Str("symbol", c.Symbol.String()).Msg("PDF resolution failed")
		} else {
			pdfURLs[rank.DocKey{Symbol: c.Symbol, Title: c.Title}] = url
		}
		if si, err := a.feed.ShortInterest(ctx, c.Symbol); err != nil {
			logger.Debug().Err(err).Str("symbol", c.Symbol.String()).Msg("short interest unavailable")
		} else {
			shortInterest[c.Symbol] = si
		}
	}

	// Row 1 holds the headers in the destination sheet.
	records := rank.BuildRecords(ranked, pdfURLs, shortInterest, 2)

	summary := ScanSummary{
		Scanned:  len(announcements),
		Admitted: len(admitted),
		Passed:   len(passed),
		Ranked:   len(ranked),
	}

	csvPath, err := a.reports.WriteCSV(records, runDate)
	if err != nil {
		return summary, err
	}
	summary.CSVPath = csvPath

	if a.Config.Report.Chart {
		if _, err := a.reports.WriteChart(records, runDate); err != nil {
			logger.Error().Err(err).Msg("failed to write score chart")
		}
	}

	if a.sheets != nil {
		rows := make([][]string, 0, len(records))
		for _, rec := range records {
			rows = append(rows, rec.Strings())
		}
		if err := a.sheets.Append(ctx, rank.Headers(), rows); err != nil {
			logger.Error().Err(err).Msg("failed to publish shortlist to sheet")
		}
	}

	if err := a.persist(ctx, runDate, summary, ranked, pdfURLs, shortInterest); err != nil {
		return summary, err
	}

	logger.Info().
		Int("scanned", summary.Scanned).
		Int("admitted", summary.Admitted).
		Int("passed", summary.Passed).
		Int("ranked", summary.Ranked).
		Str("csv", summary.CSVPath).
		Msg("scan complete")
	return summary, nil
}

// fullScrapeMatcher fetches the feed a second time and indexes it for
// document recovery. A failed fetch yields an empty matcher and the ranked
// rows keep their sentinels.
func (a *App) fullScrapeMatcher(ctx context.Context) *match.Matcher {
	full, err := a.feed.DailyFeed(ctx, a.Config.Pipeline.PreviousDay)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("full scrape pass failed, document URLs unavailable")
		full = nil
	}

	docs := make([]match.Document, 0, len(full))
	for _, announcement := range full {
		docs = append(docs, match.Document{
			Symbol:     announcement.Symbol,
			Title:      announcement.Title,
			LandingURL: announcement.LandingURL,
		})
	}
	return match.New(docs, a.Config.Pipeline.MatchThreshold)
}

// runGate fans candidates out to the gate with bounded concurrency. Results
// keep the admission order so equal scores rank deterministically.
func (a *App) runGate(ctx context.Context, admitted []ann.Candidate) []ann.Candidate {
	type outcome struct {
		cand   ann.Candidate
		passed bool
	}

	outcomes := make([]outcome, len(admitted))
	sem := make(chan struct{}, a.Config.Pipeline.Concurrency)
	var wg sync.WaitGroup

	for i, c := range admitted {
		wg.Add(1)
		sem <- struct{}{}

		go func(i int, c ann.Candidate) {
			defer wg.Done()
			defer func() { <-sem }()

			res := a.gate.Evaluate(ctx, c)
			if !res.Passed {
				return
			}
			if res.Boost > 0 {
				c.AddScore(res.Boost)
			}
			outcomes[i] = outcome{cand: c, passed: true}
		}(i, c)
	}
	wg.Wait()

	var passed []ann.Candidate
	for _, o := range outcomes {
		if o.passed {
			passed = append(passed, o.cand)
		}
	}
	return passed
}

func (a *App) persist(ctx context.Context, runDate time.Time, summary ScanSummary, ranked []ann.Candidate, pdfURLs map[rank.DocKey]string, shortInterest map[ann.Symbol]string) error {
	runID, err := a.store.InsertRun(ctx, store.Run{
		Date:     runDate,
		Profile:  a.Config.Pipeline.Profile,
		Scanned:  summary.Scanned,
		Admitted: summary.Admitted,
	})
	if err != nil {
		return err
	}

	rows := make([]store.Candidate, 0, len(ranked))
	for i, c := range ranked {
		rows = append(rows, store.Candidate{
			Symbol:         c.Symbol,
			Title:          c.Title,
			PublishedAt:    c.PublishedAt,
			PriceSensitive: c.IsPriceSensitive,
			Score:          c.Score,
			Rank:           i + 1,
			PDFURL:         pdfURLs[rank.DocKey{Symbol: c.Symbol, Title: c.Title}],
			ShortInterest:  shortInterest[c.Symbol],
		})
	}
	return a.store.InsertCandidates(ctx, runID, rows)
}

// Analyze runs one assessment pass over the candidates stored for today.
func (a *App) Analyze(ctx context.Context) (analyzer.Summary, error) {
	batch, err := a.newBatch(ctx)
	if err != nil {
		return analyzer.Summary{}, err
	}
	return batch.RunOnce(ctx, time.Now())
}

// Schedule runs assessment passes on the configured cron spec until the
// context is cancelled.
func (a *App) Schedule(ctx context.Context) error {
	batch, err := a.newBatch(ctx)
	if err != nil {
		return err
	}

	c, err := batch.Schedule(ctx, a.Config.Analyzer.Cron)
	if err != nil {
		return fmt.Errorf("schedule analyzer: %w", err)
	}

	a.Logger.Info().Str("cron", a.Config.Analyzer.Cron).Msg("analyzer scheduled")
	<-ctx.Done()
	<-c.Stop().Done()
	return ctx.Err()
}

func (a *App) newBatch(ctx context.Context) (*analyzer.Batch, error) {
	assessor, err := ai.New(ctx, a.Config.Gemini, a.Logger)
	if err != nil {
		return nil, err
	}

	batch := &analyzer.Batch{
		Store:      a.store,
		Downloader: a.scraper,
		Snapshots:  a.gates,
		Assessor:   assessor,
		Profile:    a.Config.Pipeline.Profile,
		Logger:     a.Logger,
	}
	if a.sheets != nil {
		batch.Sheets = a.sheets
	}
	if a.Config.Email.Enabled {
		batch.Renderer = notify.NewRenderer()
		batch.Sender = notify.NewEmailSender(a.Config.Email, a.Logger)
	}
	return batch, nil
}

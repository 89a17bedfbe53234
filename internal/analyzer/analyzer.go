/*
Package analyzer runs the intraday assessment pass: it picks up the
candidates a morning scan persisted, has the AI assess each announcement
PDF, publishes the verdicts and emails a digest.
*/
package analyzer

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"asxwatch/internal/ai"
	"asxwatch/internal/ann"
	"asxwatch/internal/gate"
	"asxwatch/internal/notify"
	"asxwatch/internal/rank"
	"asxwatch/internal/store"
)

// Store is the persistence surface the analyzer needs.
type Store interface {
	CandidatesForDate(ctx context.Context, date time.Time) ([]store.Candidate, error)
	InsertAssessment(ctx context.Context, a store.Assessment) error
	AlreadyReported(ctx context.Context, sym ann.Symbol, title string, date time.Time) (bool, error)
	MarkReported(ctx context.Context, sym ann.Symbol, title string, date time.Time) error
}

// Downloader fetches announcement PDFs.
type Downloader interface {
	DownloadPDF(ctx context.Context, pdfURL string) ([]byte, error)
}

// Snapshotter supplies the technical context for prompts.
type Snapshotter interface {
	Snapshot(ctx context.Context, sym ann.Symbol) (gate.TechSnapshot, error)
}

// Assessor produces the structured AI verdict.
type Assessor interface {
	Analyze(ctx context.Context, c ann.Candidate, snap ai.Snapshot, pdf []byte) (*ai.Assessment, error)
}

// Appender publishes rows to the results sheet.
type Appender interface {
	Append(ctx context.Context, headers []string, rows [][]string) error
}

// Sender delivers the digest email.
type Sender interface {
	Send(msg *notify.RenderedMessage) error
}

// Batch wires one assessment pass. Sheets and sender may be nil, disabling
// those outputs.
type Batch struct {
	Store      Store
	Downloader Downloader
	Snapshots  Snapshotter
	Assessor   Assessor
	Sheets     Appender
	Renderer   *notify.Renderer
	Sender     Sender
	Profile    string
	Logger     zerolog.Logger
}

// Assessed pairs a stored candidate with its AI verdict.
type Assessed struct {
	Candidate  store.Candidate
	Assessment *ai.Assessment
}

// Summary reports what one pass did.
type Summary struct {
	Candidates int
	Assessed   int
	Emailed    int
}

// RunOnce assesses every stored candidate for the given day. Failures on
// individual candidates are logged and skipped; the pass always completes.
func (b *Batch) RunOnce(ctx context.Context, date time.Time) (Summary, error) {
	logger := b.Logger.With().Str("component", "analyzer").Logger()

	candidates, err := b.Store.CandidatesForDate(ctx, date)
	if err != nil {
		return Summary{}, err
	}
	summary := Summary{Candidates: len(candidates)}
	if len(candidates) == 0 {
		logger.Info().Str("date", date.Format("2006-01-02")).Msg("no stored candidates to assess")
		return summary, nil
	}

	var assessed []Assessed
	for _, c := range candidates {
		verdict, ok := b.assessOne(ctx, logger, c)
		if !ok {
			continue
		}
		assessed = append(assessed, Assessed{Candidate: c, Assessment: verdict})
	}
	summary.Assessed = len(assessed)

	// Strongest expected movers first.
	sort.SliceStable(assessed, func(i, j int) bool {
		return assessed[i].Assessment.ExpectedDailyChangePct > assessed[j].Assessment.ExpectedDailyChangePct
	})

	if b.Sheets != nil && len(assessed) > 0 {
		if err := b.Sheets.Append(ctx, assessmentHeaders(), assessmentRows(assessed)); err != nil {
			logger.Error().Err(err).Msg("failed to publish assessments to sheet")
		}
	}

	emailed, err := b.email(ctx, logger, date, assessed)
	if err != nil {
		logger.Error().Err(err).Msg("failed to send digest email")
	}
	summary.Emailed = emailed

	logger.Info().
		Int("candidates", summary.Candidates).
		Int("assessed", summary.Assessed).
		Int("emailed", summary.Emailed).
		Msg("assessment pass complete")
	return summary, nil
}

func (b *Batch) assessOne(ctx context.Context, logger zerolog.Logger, c store.Candidate) (*ai.Assessment, bool) {
	if c.PDFURL == "" || c.PDFURL == rank.NoPDFURL {
		logger.Debug().Str("symbol", c.Symbol.String()).Msg("no PDF to assess, skipping")
		return nil, false
	}

	var snap ai.Snapshot
	if tech, err := b.Snapshots.Snapshot(ctx, c.Symbol); err != nil {
		logger.Warn().Err(err).Str("symbol", c.Symbol.String()).Msg("snapshot unavailable, prompting without it")
	} else {
		snap = ai.Snapshot{
			Close:       tech.Close,
			MomentumPct: tech.MomentumPct,
			RSI:         tech.RSI,
			AvgVolume:   tech.AvgVolume,
			MarketCap:   tech.MarketCap,
		}
	}
	snap.ShortInterest = c.ShortInterest

	pdf, err := b.Downloader.DownloadPDF(ctx, c.PDFURL)
	if err != nil {
		logger.Warn().Err(err).Str("symbol", c.Symbol.String()).Msg("PDF download failed, skipping")
		return nil, false
	}

	cand := ann.Candidate{Announcement: ann.Announcement{
		Symbol:      c.Symbol,
		Title:       c.Title,
		PublishedAt: c.PublishedAt,
	}}
	cand.AddScore(c.Score)

	verdict, err := b.Assessor.Analyze(ctx, cand, snap, pdf)
	if err != nil {
		logger.Warn().Err(err).Str("symbol", c.Symbol.String()).Msg("assessment failed, skipping")
		return nil, false
	}

	raw, err := json.Marshal(verdict)
	if err != nil {
		raw = []byte("{}")
	}
	if err := b.Store.InsertAssessment(ctx, store.Assessment{
		CandidateID:            c.ID,
		BullishScore:           verdict.BullishScore,
		SurpriseLevel:          verdict.SurpriseLevel,
		ExpectedDailyChangePct: verdict.ExpectedDailyChangePct,
		PredictionConfidence:   verdict.PredictionConfidence,
		RawJSON:                string(raw),
	}); err != nil {
		logger.Error().Err(err).Str("symbol", c.Symbol.String()).Msg("failed to persist assessment")
	}
	return verdict, true
}

func (b *Batch) email(ctx context.Context, logger zerolog.Logger, date time.Time, assessed []Assessed) (int, error) {
	if b.Sender == nil || b.Renderer == nil {
		return 0, nil
	}

	digest := notify.Digest{Date: date, Profile: b.Profile}
	for _, a := range assessed {
		c := a.Candidate
		seen, err := b.Store.AlreadyReported(ctx, c.Symbol, c.Title, date)
		if err != nil {
			logger.Warn().Err(err).Str("symbol", c.Symbol.String()).Msg("reported lookup failed, including anyway")
		} else if seen {
			continue
		}
		digest.Entries = append(digest.Entries, notify.Entry{
			Rank:          c.Rank,
			Symbol:        c.Symbol,
			Title:         c.Title,
			Published:     c.PublishedAt,
			Score:         c.Score,
			PDFURL:        c.PDFURL,
			ShortInterest: c.ShortInterest,
			Assessment:    a.Assessment,
		})
	}

	if len(digest.Entries) == 0 {
		return 0, nil
	}

	msg, err := b.Renderer.Render(digest)
	if err != nil {
		return 0, err
	}
	if err := b.Sender.Send(msg); err != nil {
		return 0, err
	}

	for _, e := range digest.Entries {
		if err := b.Store.MarkReported(ctx, e.Symbol, e.Title, date); err != nil {
			logger.Warn().Err(err).Str("symbol", e.Symbol.String()).Msg("failed to mark reported")
		}
	}
	return len(digest.Entries), nil
}

func assessmentHeaders() []string {
	return []string{
		"date",
		"ticker",
		"title",
		"bullish_score",
		"surprise_level",
		"expected_daily_change_pct",
		"prediction_confidence",
		"summary",
		"recommendation",
	}
}

func assessmentRows(assessed []Assessed) [][]string {
	rows := make([][]string, 0, len(assessed))
	for _, a := range assessed {
		c, v := a.Candidate, a.Assessment
		published := rank.NotAvailable
		if !c.PublishedAt.IsZero() {
			published = c.PublishedAt.Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{
			published,
			c.Symbol.String(),
			c.Title,
			strconv.Itoa(v.BullishScore),
			v.SurpriseLevel,
			strconv.FormatFloat(v.ExpectedDailyChangePct, 'f', 2, 64),
			strconv.Itoa(v.PredictionConfidence),
			v.Summary,
			v.Recommendation,
		})
	}
	return rows
}

// Schedule registers RunOnce on the given cron spec (with a seconds field)
// and starts the scheduler. The returned cron must be stopped by the caller.
func (b *Batch) Schedule(ctx context.Context, spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithSeconds())
	_, err := c.AddFunc(spec, func() {
		if _, err := b.RunOnce(ctx, time.Now()); err != nil {
			b.Logger.Error().Err(err).Msg("scheduled assessment pass failed")
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}

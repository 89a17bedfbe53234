/*
Package report writes the ranked shortlist to local artifacts: a dated CSV
and a bar chart of scores per ticker.
*/
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/wcharczuk/go-chart/v2"

	"asxwatch/internal/rank"
)

// Config carries the export settings.
type Config struct {
	Dir   string `mapstructure:"dir"`
	Chart bool   `mapstructure:"chart"`
}

// Writer produces the local export artifacts for one run.
type Writer struct {
	dir    string
	logger zerolog.Logger
}

// New builds a writer rooted at cfg.Dir, defaulting to the working directory.
func New(cfg Config, logger zerolog.Logger) *Writer {
	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}
	return &Writer{
		dir:    dir,
		logger: logger.With().Str("component", "report").Logger(),
	}
}

// WriteCSV writes the dated shortlist CSV and returns its path.
func (w *Writer) WriteCSV(records []rank.Record, date time.Time) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("report: create output dir: %w", err)
	}

	path := filepath.Join(w.dir, fmt.Sprintf("bullish_announcements_%s.csv", date.Format("20060102")))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("report: create %s: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			w.logger.Warn().Err(err).Str("path", path).Msg("failed to close csv file")
		}
	}()

	cw := csv.NewWriter(f)
	if err := cw.Write(rank.Headers()); err != nil {
		return "", fmt.Errorf("report: write header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write(rec.Strings()); err != nil {
			return "", fmt.Errorf("report: write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("report: flush csv: %w", err)
	}

	w.logger.Info().Str("path", path).Int("rows", len(records)).Msg("wrote shortlist csv")
	return path, nil
}

// WriteChart renders a bar chart of scores per ticker next to the CSV and
// returns its path. An empty shortlist writes nothing.
func (w *Writer) WriteChart(records []rank.Record, date time.Time) (string, error) {
	if len(records) == 0 {
		return "", nil
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("report: create output dir: %w", err)
	}

	bars := make([]chart.Value, 0, len(records))
	for _, rec := range records {
		bars = append(bars, chart.Value{Label: rec.Ticker, Value: rec.Score})
	}

	graph := chart.BarChart{
		Title:    fmt.Sprintf("Bullish announcements %s", date.Format("2006-01-02")),
		Height:   512,
		BarWidth: 60,
		Bars:     bars,
	}

	path := filepath.Join(w.dir, fmt.Sprintf("bullish_announcements_%s.png", date.Format("20060102")))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("report: create %s: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			w.logger.Warn().Err(err).Str("path", path).Msg("failed to close chart file")
		}
	}()

	if err := graph.Render(chart.PNG, f); err != nil {
		return "", fmt.Errorf("report: render chart: %w", err)
	}

	w.logger.Info().Str("path", path).Msg("wrote score chart")
	return path, nil
}

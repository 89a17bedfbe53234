/*
Package store persists runs, candidates and AI assessments in a local
sqlite database so the analyzer can pick up a morning scan later in the
day and so reported announcements are never emailed twice.
*/
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"asxwatch/internal/ann"
)

// Config carries the persistence settings.
type Config struct {
	Path string `mapstructure:"path"`
}

// Store wraps the sqlite handle. Safe for concurrent use.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// Open opens or creates the database at cfg.Path and applies pending
// migrations.
func Open(cfg Config, logger zerolog.Logger) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("store: database path is required")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", cfg.Path, err)
	}
	// sqlite serializes writers; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %s: %w", pragma, err)
		}
	}

	s := &Store{
		db:     db,
		logger: logger.With().Str("component", "store").Logger(),
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

var migrations = []string{
	`CREATE TABLE runs (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		run_date    TEXT NOT NULL,
		profile     TEXT NOT NULL,
		scanned     INTEGER NOT NULL,
		admitted    INTEGER NOT NULL,
		created_at  TEXT NOT NULL
	);
	CREATE TABLE candidates (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id          INTEGER NOT NULL REFERENCES runs(id),
		symbol          TEXT NOT NULL,
		title           TEXT NOT NULL,
		published_at    TEXT,
		price_sensitive INTEGER NOT NULL,
		score           REAL NOT NULL,
		rank            INTEGER NOT NULL,
		pdf_url         TEXT NOT NULL DEFAULT '',
		short_interest  TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX idx_candidates_run ON candidates(run_id);`,

	`CREATE TABLE assessments (
		id                        INTEGER PRIMARY KEY AUTOINCREMENT,
		candidate_id              INTEGER NOT NULL REFERENCES candidates(id),
		bullish_score             INTEGER NOT NULL,
		surprise_level            TEXT NOT NULL,
		expected_daily_change_pct REAL NOT NULL,
		prediction_confidence     INTEGER NOT NULL,
		raw_json                  TEXT NOT NULL,
		created_at                TEXT NOT NULL
	);
	CREATE TABLE reported (
		symbol        TEXT NOT NULL,
		title         TEXT NOT NULL,
		reported_date TEXT NOT NULL,
		PRIMARY KEY (symbol, title, reported_date)
	);`,
}

// migrate applies pending schema migrations tracked via PRAGMA user_version.
func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("store: read user_version: %w", err)
	}

	for i := version; i < len(migrations); i++ {
		if _, err := s.db.Exec(migrations[i]); err != nil {
			return fmt.Errorf("store: migration %d: %w", i+1, err)
		}
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			return fmt.Errorf("store: bump user_version: %w", err)
		}
		s.logger.Info().Int("version", i+1).Msg("applied migration")
	}
	return nil
}

// Run is one pipeline execution summary.
type Run struct {
	ID       int64
	Date     time.Time
	Profile  string
	Scanned  int
	Admitted int
}

// Candidate is one stored shortlist entry.
type Candidate struct {
	ID             int64
	RunID          int64
	Symbol         ann.Symbol
	Title          string
	PublishedAt    time.Time
	PriceSensitive bool
	Score          float64
	Rank           int
	PDFURL         string
	ShortInterest  string
}

const dateLayout = "2006-01-02"

// InsertRun records a run and returns its id.
func (s *Store) InsertRun(ctx context.Context, run Run) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_date, profile, scanned, admitted, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		run.Date.Format(dateLayout), run.Profile, run.Scanned, run.Admitted,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("store: insert run: %w", err)
	}
	return res.LastInsertId()
}

// InsertCandidates records the ranked shortlist for a run.
func (s *Store) InsertCandidates(ctx context.Context, runID int64, candidates []Candidate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO candidates
		 (run_id, symbol, title, published_at, price_sensitive, score, rank, pdf_url, short_interest)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("store: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range candidates {
		published := ""
		if !c.PublishedAt.IsZero() {
			published = c.PublishedAt.Format(time.RFC3339)
		}
		if _, err := stmt.ExecContext(ctx,
			runID, c.Symbol.String(), c.Title, published,
			c.PriceSensitive, c.Score, c.Rank, c.PDFURL, c.ShortInterest,
		); err != nil {
			return fmt.Errorf("store: insert candidate %s: %w", c.Symbol, err)
		}
	}
	return tx.Commit()
}

// CandidatesForDate returns the shortlist of the latest run on the given day,
// ordered by rank. An empty slice means no run or an empty shortlist.
func (s *Store) CandidatesForDate(ctx context.Context, date time.Time) ([]Candidate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.run_id, c.symbol, c.title, c.published_at,
		        c.price_sensitive, c.score, c.rank, c.pdf_url, c.short_interest
		 FROM candidates c
		 JOIN runs r ON r.id = c.run_id
		 WHERE r.run_date = ?
		   AND r.id = (SELECT MAX(id) FROM runs WHERE run_date = ?)
		 ORDER BY c.rank`,
		date.Format(dateLayout), date.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("store: query candidates: %w", err)
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		var c Candidate
		var symbol, published string
		if err := rows.Scan(&c.ID, &c.RunID, &symbol, &c.Title, &published,
			&c.PriceSensitive, &c.Score, &c.Rank, &c.PDFURL, &c.ShortInterest); err != nil {
			return nil, fmt.Errorf("store: scan candidate: %w", err)
		}
		c.Symbol = ann.NewSymbol(symbol)
		if published != "" {
			if t, err := time.Parse(time.RFC3339, published); err == nil {
				c.PublishedAt = t
			}
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Assessment is one stored AI assessment row.
type Assessment struct {
	CandidateID            int64
	BullishScore           int
	SurpriseLevel          string
	ExpectedDailyChangePct float64
	PredictionConfidence   int
	RawJSON                string
}

// InsertAssessment records an AI assessment for a candidate.
func (s *Store) InsertAssessment(ctx context.Context, a Assessment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assessments
		 (candidate_id, bullish_score, surprise_level, expected_daily_change_pct,
		  prediction_confidence, raw_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.CandidateID, a.BullishScore, a.SurpriseLevel, a.ExpectedDailyChangePct,
		a.PredictionConfidence, a.RawJSON, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("store: insert assessment: %w", err)
	}
	return nil
}

// AlreadyReported reports whether an announcement was emailed on the given day.
func (s *Store) AlreadyReported(ctx context.Context, sym ann.Symbol, title string, date time.Time) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reported WHERE symbol = ? AND title = ? AND reported_date = ?`,
		sym.String(), title, date.Format(dateLayout)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("store: query reported: %w", err)
	}
	return count > 0, nil
}

// MarkReported records that an announcement was emailed. Marking twice is a
// no-op.
func (s *Store) MarkReported(ctx context.Context, sym ann.Symbol, title string, date time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO reported (symbol, title, reported_date) VALUES (?, ?, ?)`,
		sym.String(), title, date.Format(dateLayout))
	if err != nil {
		return fmt.Errorf("store: mark reported: %w", err)
	}
	return nil
}

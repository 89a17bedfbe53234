package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asxwatch/internal/ann"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{Path: filepath.Join(t.TempDir(), "asxwatch.db")}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenMigratesIdempotently(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asxwatch.db")

	s, err := Open(Config{Path: path}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Reopening applies no further migrations and keeps the data readable.
	s, err = Open(Config{Path: path}, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()

	var version int
	require.NoError(t, s.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, len(migrations), version)
}

func TestInsertAndFetchCandidates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	date := time.Date(2026, 3, 24, 0, 0, 0, 0, time.UTC)

	runID, err := s.InsertRun(ctx, Run{Date: date, Profile: "surprise", Scanned: 120, Admitted: 2})
	require.NoError(t, err)
	require.NotZero(t, runID)

	published := time.Date(2026, 3, 24, 9, 15, 0, 0, time.UTC)
	require.NoError(t, s.InsertCandidates(ctx, runID, []Candidate{
		{Symbol: ann.NewSymbol("BHP"), Title: "Wins Major Contract", PublishedAt: published,
			PriceSensitive: true, Score: 5.0, Rank: 1, PDFURL: "https://example.com/a.pdf", ShortInterest: "2.45%"},
		{Symbol: ann.NewSymbol("XYZ"), Title: "Takeover Offer Received",
			PriceSensitive: true, Score: 3.0, Rank: 2},
	}))

	got, err := s.CandidatesForDate(ctx, date)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ann.NewSymbol("BHP"), got[0].Symbol)
	assert.Equal(t, 1, got[0].Rank)
	assert.True(t, got[0].PublishedAt.Equal(published))
	assert.True(t, got[1].PublishedAt.IsZero())
}

func TestCandidatesForDateUsesLatestRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	date := time.Date(2026, 3, 24, 0, 0, 0, 0, time.UTC)

	firstRun, err := s.InsertRun(ctx, Run{Date: date, Profile: "surprise"})
	require.NoError(t, err)
	require.NoError(t, s.InsertCandidates(ctx, firstRun, []Candidate{
		{Symbol: ann.NewSymbol("OLD"), Title: "Stale", Score: 1.0, Rank: 1},
	}))

	secondRun, err := s.InsertRun(ctx, Run{Date: date, Profile: "surprise"})
	require.NoError(t, err)
	require.NoError(t, s.InsertCandidates(ctx, secondRun, []Candidate{
		{Symbol: ann.NewSymbol("NEW"), Title: "Fresh", Score: 2.0, Rank: 1},
	}))

	got, err := s.CandidatesForDate(ctx, date)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ann.NewSymbol("NEW"), got[0].Symbol)
}

func TestCandidatesForDateEmpty(t *testing.T) {
	s := newTestStore(t)

	got, err := s.CandidatesForDate(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestInsertAssessment(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	runID, err := s.InsertRun(ctx, Run{Date: time.Now(), Profile: "surprise"})
	require.NoError(t, err)
	require.NoError(t, s.InsertCandidates(ctx, runID, []Candidate{
		{Symbol: ann.NewSymbol("BHP"), Title: "Half Year Results", Score: 4.0, Rank: 1},
	}))

	got, err := s.CandidatesForDate(ctx, time.Now())
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.NoError(t, s.InsertAssessment(ctx, Assessment{
		CandidateID:            got[0].ID,
		BullishScore:           8,
		SurpriseLevel:          "high",
		ExpectedDailyChangePct: 4.5,
		PredictionConfidence:   4,
		RawJSON:                `{"bullish_score":8}`,
	}))
}

func TestReportedDedup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	date := time.Date(2026, 3, 24, 0, 0, 0, 0, time.UTC)
	sym := ann.NewSymbol("BHP")

	seen, err := s.AlreadyReported(ctx, sym, "Wins Major Contract", date)
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, s.MarkReported(ctx, sym, "Wins Major Contract", date))
	require.NoError(t, s.MarkReported(ctx, sym, "Wins Major Contract", date))

	seen, err = s.AlreadyReported(ctx, sym, "Wins Major Contract", date)
	require.NoError(t, err)
	assert.True(t, seen)

	// A different day reports again.
	seen, err = s.AlreadyReported(ctx, sym, "Wins Major Contract", date.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.False(t, seen)
}

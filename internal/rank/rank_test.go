package rank

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asxwatch/internal/ann"
)

func candidate(sym string, score float64) ann.Candidate {
	c := ann.Candidate{Announcement: ann.Announcement{
		Symbol: ann.NewSymbol(sym),
		Title:  sym + " announcement",
	}}
	c.AddScore(score)
	return c
}

func TestSelectOrdersByScore(t *testing.T) {
	ranked := Select([]ann.Candidate{
		candidate("LOW", 1.5),
		candidate("HIGH", 5.0),
		candidate("MID", 3.0),
	}, 0)

	require.Len(t, ranked, 3)
	assert.Equal(t, ann.NewSymbol("HIGH"), ranked[0].Symbol)
	assert.Equal(t, ann.NewSymbol("MID"), ranked[1].Symbol)
	assert.Equal(t, ann.NewSymbol("LOW"), ranked[2].Symbol)
}

func TestSelectTopN(t *testing.T) {
	ranked := Select([]ann.Candidate{
		candidate("A", 1.0),
		candidate("B", 2.0),
		candidate("C", 3.0),
	}, 2)

	require.Len(t, ranked, 2)
	assert.Equal(t, ann.NewSymbol("C"), ranked[0].Symbol)
}

func TestSelectStableOnTies(t *testing.T) {
	ranked := Select([]ann.Candidate{
		candidate("FIRST", 3.0),
		candidate("SECOND", 3.0),
	}, 0)

	assert.Equal(t, ann.NewSymbol("FIRST"), ranked[0].Symbol)
	assert.Equal(t, ann.NewSymbol("SECOND"), ranked[1].Symbol)
}

func TestSelectDoesNotMutateInput(t *testing.T) {
	input := []ann.Candidate{candidate("A", 1.0), candidate("B", 2.0)}
	Select(input, 0)
	assert.Equal(t, ann.NewSymbol("A"), input[0].Symbol)
}

func TestBuildRecords(t *testing.T) {
	published := time.Date(2026, 3, 24, 9, 15, 0, 0, time.UTC)
	c := candidate("BHP", 5.0)
	c.PublishedAt = published

	records := BuildRecords(
		[]ann.Candidate{c, candidate("XYZ", 3.0)},
		map[DocKey]string{
			{Symbol: ann.NewSymbol("BHP"), Title: "BHP announcement"}: "https://example.com/a.pdf",
		},
		map[ann.Symbol]string{ann.NewSymbol("BHP"): "2.45%"},
		2,
	)

	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, 1, first.Rank)
	assert.Equal(t, "2026-03-24 09:15", first.DateTime)
	assert.Equal(t, "https://example.com/a.pdf", first.PDFURL)
	assert.Equal(t, "2.45%", first.ShortInterest)
	assert.Equal(t, `=GOOGLEFINANCE("ASX:" & C2, "changepct")`, first.ChangePct)

	second := records[1]
	assert.Equal(t, 2, second.Rank)
	assert.Equal(t, NotAvailable, second.DateTime)
	assert.Equal(t, NoPDFURL, second.PDFURL)
	assert.Equal(t, NotAvailable, second.ShortInterest)
	assert.Equal(t, `=GOOGLEFINANCE("ASX:" & C3, "changepct")`, second.ChangePct)
}

func TestBuildRecordsSameTickerDistinctDocuments(t *testing.T) {
	first := candidate("BHP", 5.0)
	first.Title = "Half Year Results"
	second := candidate("BHP", 4.0)
	second.Title = "Dividend Declared"

	sym := ann.NewSymbol("BHP")
	records := BuildRecords(
		[]ann.Candidate{first, second},
		map[DocKey]string{
			{Symbol: sym, Title: "Half Year Results"}: "https://example.com/results.pdf",
			{Symbol: sym, Title: "Dividend Declared"}: "https://example.com/dividend.pdf",
		},
		nil,
		2,
	)

	require.Len(t, records, 2)
	assert.Equal(t, "https://example.com/results.pdf", records[0].PDFURL)
	assert.Equal(t, "https://example.com/dividend.pdf", records[1].PDFURL)
}

func TestRecordStrings(t *testing.T) {
	rec := Record{
		Rank:          1,
		DateTime:      "2026-03-24 09:15",
		Ticker:        "BHP",
		PDFURL:        "https://example.com/a.pdf",
		ShortInterest: "2.45%",
		ChangePct:     `=GOOGLEFINANCE("ASX:" & C2, "changepct")`,
		Title:         "Wins Major Contract",
		Score:         5.0,
	}

	cells := rec.Strings()
	require.Len(t, cells, len(Headers()))
	assert.Equal(t, "1", cells[0])
	assert.Equal(t, "5.00", cells[7])
}

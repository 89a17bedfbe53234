/*
Package rank orders admitted candidates by score and shapes the top entries
into the records the report and sheet exports consume.
*/
package rank

import (
	"fmt"
	"sort"
	"strconv"

	"asxwatch/internal/ann"
)

// Sentinel cell values for data the pipeline could not resolve.
const (
	NoPDFURL     = "No PDF URL found"
	NotAvailable = "N/A"
)

// DefaultTopN is the shortlist size when the config does not override it.
const DefaultTopN = 5

// Select returns the topN highest-scoring candidates. The sort is stable,
// so candidates with equal scores keep their feed order. topN <= 0 returns
// the full sorted list.
func Select(candidates []ann.Candidate, topN int) []ann.Candidate {
	sorted := make([]ann.Candidate, len(candidates))
	copy(sorted, candidates)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	if topN > 0 && topN < len(sorted) {
		sorted = sorted[:topN]
	}
	return sorted
}

// DocKey addresses one announcement's resolved document within a run. Keyed
// by symbol and title so two same-day announcements from one ticker never
// share a URL.
type DocKey struct {
	Symbol ann.Symbol
	Title  string
}

// Record is one exported row of the ranked shortlist.
type Record struct {
	Rank          int
	DateTime      string
	Ticker        string
	PDFURL        string
	ShortInterest string
	ChangePct     string
	Title         string
	Score         float64
}

// Headers returns the export column names, in record order.
func Headers() []string {
	return []string{
		"rank",
		"date_time",
		"ticker",
		"pdf_url",
		"short_interest",
		"change_pct",
		"title",
		"sentiment_score",
	}
}

// BuildRecords shapes ranked candidates into export rows. firstDataRow is
// the 1-based spreadsheet row of the first record, used to address the
// ticker cell in the live change formula. PDF URLs come from a lookup map
// keyed per announcement, short interest per ticker; missing entries get the
// sentinel values.
func BuildRecords(ranked []ann.Candidate, pdfURLs map[DocKey]string, shortInterest map[ann.Symbol]string, firstDataRow int) []Record {
	records := make([]Record, 0, len(ranked))
	for i, c := range ranked {
		rec := Record{
			Rank:          i + 1,
			DateTime:      NotAvailable,
			Ticker:        c.Symbol.String(),
			PDFURL:        NoPDFURL,
			ShortInterest: NotAvailable,
			ChangePct:     changeFormula(firstDataRow + i),
			Title:         c.Title,
			Score:         c.Score,
		}
		if !c.PublishedAt.IsZero() {
			rec.DateTime = c.PublishedAt.Format("2006-01-02 15:04")
		}
		if url, ok := pdfURLs[DocKey{Symbol: c.Symbol, Title: c.Title}]; ok && url != "" {
			rec.PDFURL = url
		}
		if si, ok := shortInterest[c.Symbol]; ok && si != "" {
			rec.ShortInterest = si
		}
		records = append(records, rec)
	}
	return records
}

// changeFormula builds the live intraday change cell for the given row.
// The ticker column is C; the formula evaluates in the destination sheet.
func changeFormula(row int) string {
	return fmt.Sprintf(`=GOOGLEFINANCE("ASX:" & C%d, "changepct")`, row)
}

// Strings returns the record as export cell values, in header order.
func (r Record) Strings() []string {
	return []string{
		strconv.Itoa(r.Rank),
		r.DateTime,
		r.Ticker,
		r.PDFURL,
		r.ShortInterest,
		r.ChangePct,
		r.Title,
		strconv.FormatFloat(r.Score, 'f', 2, 64),
	}
}

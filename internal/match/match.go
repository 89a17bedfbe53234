/*
Package match recovers each shortlisted announcement's landing page from a
second, fuller scrape pass by fuzzy title matching, since the feed and the
detail pages render headlines differently.
*/
package match

import (
	"regexp"
	"strings"

	"asxwatch/internal/ann"
)

// DefaultThreshold is the similarity above which a scraped document counts
// as the same announcement as a candidate title.
const DefaultThreshold = 0.8

var wordRe = regexp.MustCompile(`\w+`)

// Document is one row of the full scrape pass: a title with the landing URL
// the exchange published it under.
type Document struct {
	Symbol     ann.Symbol
	Title      string
	LandingURL string
}

// Matcher indexes one run's full scrape pass for document recovery. Safe for
// concurrent use; the index is never mutated after New.
type Matcher struct {
	threshold float64
	docs      []Document
	words     []map[string]struct{}
}

// New builds a matcher over the full scrape pass. A non-positive threshold
// selects the default.
func New(docs []Document, threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	m := &Matcher{
		threshold: threshold,
		docs:      docs,
		words:     make([]map[string]struct{}, len(docs)),
	}
	for i, d := range docs {
		m.words[i] = wordSet(d.Title)
	}
	return m
}

// Match returns the first document with the candidate's symbol whose title
// word set is at least threshold-similar, in scrape order. A miss is not an
// error; the caller substitutes its sentinel.
func (m *Matcher) Match(c ann.Candidate) (Document, bool) {
	words := wordSet(c.Title)

	for i, d := range m.docs {
		if d.Symbol != c.Symbol {
			continue
		}
		if jaccard(m.words[i], words) >= m.threshold {
			return d, true
		}
	}
	return Document{}, false
}

func wordSet(title string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range wordRe.FindAllString(strings.ToLower(title), -1) {
		set[w] = struct{}{}
	}
	return set
}

// jaccard is intersection over union of the two word sets. Two empty sets
// count as identical.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}

	intersection := 0
	for w := range a {
		if _, ok := b[w]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

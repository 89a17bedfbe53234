/*
Package ann defines the announcement domain types shared across the pipeline.
*/
package ann

import (
	"math"
	"regexp"
	"strings"
	"time"
)

// Symbol is a bare exchange ticker: uppercase, no exchange suffix.
// All suffix handling goes through NewSymbol and ASX so that a suffixed
// ticker can never be suffixed twice.
type Symbol string

const asxSuffix = ".AX"

// NewSymbol normalizes a raw ticker string into a bare Symbol,
// stripping an existing exchange suffix if present.
func NewSymbol(raw string) Symbol {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.TrimSuffix(s, asxSuffix)
	return Symbol(s)
}

// ASX returns the suffixed form used by quote providers.
func (s Symbol) ASX() string {
	return string(s) + asxSuffix
}

func (s Symbol) String() string {
	return string(s)
}

// Announcement is one scraped row from the exchange's daily feed.
type Announcement struct {
	Symbol           Symbol
	Title            string
	PublishedAt      time.Time // zero if the source timestamp was unparseable
	IsPriceSensitive bool
	LandingURL       string // set by the full-detail scrape pass only
}

// Candidate is an announcement moving through the admission pipeline.
// Score is a running tally: the lexicon scorer sets it and the
// fundamental gate adds its boost.
type Candidate struct {
	Announcement
	Score float64
}

// AddScore accumulates a score delta, keeping the tally at 2 decimal places.
func (c *Candidate) AddScore(delta float64) {
	c.Score = Round2(c.Score + delta)
}

// Round2 rounds to 2 decimal places, the precision all scores carry.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

var (
	titleSuffixRe = regexp.MustCompile(`\d+\s+pages?\s+\d+\.?\d*KB$`)
	whitespaceRe  = regexp.MustCompile(`[\n\t\r\s\x{00A0}]+`)
)

// CleanTitle collapses whitespace and strips the trailing page-count/file-size
// suffix the feed appends to headlines ("... 3 pages 145.2KB").
func CleanTitle(raw string) string {
	t := whitespaceRe.ReplaceAllString(raw, " ")
	t = strings.TrimSpace(t)
	t = titleSuffixRe.ReplaceAllString(t, "")
	return strings.TrimSpace(t)
}

// The feed publishes either 12-hour or 24-hour timestamps depending on the page.
var publishedAtFormats = []string{
	"02/01/2006 3:04 PM",
	"02/01/2006 15:04",
}

// ParsePublishedAt parses a feed timestamp in the exchange's local time zone.
// Returns the zero time if no format matches; callers keep the candidate and
// treat the timestamp as absent.
func ParsePublishedAt(raw string, loc *time.Location) time.Time {
	cleaned := strings.TrimSpace(whitespaceRe.ReplaceAllString(raw, " "))
	upper := strings.ToUpper(cleaned)

	for _, format := range publishedAtFormats {
		if t, err := time.ParseInLocation(format, upper, loc); err == nil {
			return t
		}
	}
	return time.Time{}
}

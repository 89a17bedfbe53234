package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asxwatch/internal/ann"
)

func doc(sym, title, url string) Document {
	return Document{Symbol: ann.NewSymbol(sym), Title: title, LandingURL: url}
}

func cand(sym, title string) ann.Candidate {
	return ann.Candidate{Announcement: ann.Announcement{
		Symbol: ann.NewSymbol(sym),
		Title:  title,
	}}
}

func TestMatchExactTitle(t *testing.T) {
	m := New([]Document{
		doc("BHP", "Wins Major Contract", "/a"),
		doc("CBA", "Trading Update", "/b"),
	}, 0)

	d, ok := m.Match(cand("BHP", "Wins Major Contract"))
	require.True(t, ok)
	assert.Equal(t, "/a", d.LandingURL)
}

func TestMatchNormalizesCaseAndPunctuation(t *testing.T) {
	m := New([]Document{
		doc("BHP", "Half Year Results Presentation FY26", "/a"),
	}, 0)

	d, ok := m.Match(cand("BHP", "half-year results presentation, FY26"))
	require.True(t, ok)
	assert.Equal(t, "/a", d.LandingURL)
}

func TestMatchRequiresSameSymbol(t *testing.T) {
	m := New([]Document{
		doc("CBA", "Wins Major Contract", "/b"),
	}, 0)

	_, ok := m.Match(cand("BHP", "Wins Major Contract"))
	assert.False(t, ok)
}

func TestMatchBelowThreshold(t *testing.T) {
	m := New([]Document{
		doc("BHP", "Half Year Results Presentation FY26", "/a"),
	}, 0)

	// Four words shared out of seven distinct: similarity 0.57.
	_, ok := m.Match(cand("BHP", "Half Year Results Webcast Slides FY26"))
	assert.False(t, ok)
}

func TestMatchFirstWins(t *testing.T) {
	m := New([]Document{
		doc("BHP", "Wins Major Contract", "/first"),
		doc("BHP", "Wins Major Contract", "/second"),
	}, 0)

	d, ok := m.Match(cand("BHP", "Wins Major Contract"))
	require.True(t, ok)
	assert.Equal(t, "/first", d.LandingURL)
}

func TestMatchEmptyPass(t *testing.T) {
	m := New(nil, 0)

	_, ok := m.Match(cand("BHP", "Wins Major Contract"))
	assert.False(t, ok)
}

func TestJaccard(t *testing.T) {
	a := wordSet("one two three four")
	b := wordSet("one two three five")
	assert.InDelta(t, 3.0/5.0, jaccard(a, b), 1e-9)

	assert.Equal(t, 1.0, jaccard(wordSet(""), wordSet("")))
	assert.Equal(t, 0.0, jaccard(wordSet("x"), wordSet("y")))
}

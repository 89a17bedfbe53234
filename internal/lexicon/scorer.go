/*
Package lexicon scores announcement headlines with weighted keyword tables.

Scoring is additive: multi-word phrases are matched as substrings of the
lowercased title, single-word entries are matched token-by-token so that a
word embedded in a longer word ("profitable") does not count. A single word
directly preceded by a negation word contributes its weight scaled by -0.5
instead of its full sign.
*/
package lexicon

import (
	"regexp"
	"strings"

	"asxwatch/internal/ann"
)

var negationWords = map[string]struct{}{
	"not":   {},
	"no":    {},
	"never": {},
	"none":  {},
}

var (
	tokenRe      = regexp.MustCompile(`\w+`)
	singleWordRe = regexp.MustCompile(`^\w+$`)
)

// Scorer maps a free-text title to a sentiment score using one Profile.
// It is safe for concurrent use; the tables are never mutated after New.
type Scorer struct {
	profile Profile

	bullishPhrases map[string]float64
	bearishPhrases map[string]float64
	bullishWords   map[string]float64
	bearishWords   map[string]float64
}

// NewScorer builds a scorer for the given profile, splitting its tables into
// phrase-level and word-level entries.
func NewScorer(p Profile) *Scorer {
	s := &Scorer{
		profile:        p,
		bullishPhrases: make(map[string]float64),
		bearishPhrases: make(map[string]float64),
		bullishWords:   make(map[string]float64),
		bearishWords:   make(map[string]float64),
	}
	splitEntries(p.Bullish, s.bullishPhrases, s.bullishWords)
	splitEntries(p.Bearish, s.bearishPhrases, s.bearishWords)
	return s
}

func splitEntries(src map[string]float64, phrases, words map[string]float64) {
	for key, weight := range src {
		key = strings.ToLower(strings.TrimSpace(key))
		if singleWordRe.MatchString(key) {
			words[key] = weight
		} else {
			// Multi-word and hyphenated entries match as substrings.
			phrases[key] = weight
		}
	}
}

// Profile returns the profile this scorer was built with.
func (s *Scorer) Profile() Profile {
	return s.profile
}

// Score computes the sentiment score for a title, rounded to 2 decimals.
// It always returns a value; a title with no matches scores 0.0.
func (s *Scorer) Score(title string) float64 {
	lower := strings.ToLower(title)
	score := 0.0

	// Phrase pass: overlapping phrases all contribute.
	for phrase, weight := range s.bullishPhrases {
		if strings.Contains(lower, phrase) {
			score += weight
		}
	}
	for phrase, weight := range s.bearishPhrases {
		if strings.Contains(lower, phrase) {
			score += weight
		}
	}

	// Token pass with negation. Only the immediately preceding token is
	// checked; this is a heuristic, not syntactic parsing.
	tokens := tokenRe.FindAllString(lower, -1)
	for i, token := range tokens {
		negated := false
		if i > 0 {
			_, negated = negationWords[tokens[i-1]]
		}

		if weight, ok := s.bullishWords[token]; ok {
			if negated {
				score += weight * -0.5
			} else {
				score += weight
			}
		}
		if weight, ok := s.bearishWords[token]; ok {
			if negated {
				score += weight * -0.5
			} else {
				score += weight
			}
		}
	}

	return ann.Round2(score)
}

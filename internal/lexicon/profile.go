package lexicon

import (
	"fmt"
	"strings"
)

// Profile bundles one deployment's keyword tables: the sentiment lexicons and
// the title-exclusion vocabularies the admission filter applies. A profile is
// internally consistent: its exclusion vocabulary never overlaps phrases its
// bullish table rewards (see Validate).
type Profile struct {
	Name    string
	Bullish map[string]float64 // positive weights
	Bearish map[string]float64 // negative weights

	// RoutinePhrases reject administratively-required filings.
	RoutinePhrases []string
	// ExcludedContent rejects vocabulary the lexicon cannot score reliably.
	ExcludedContent []string
}

const (
	// ProfileSurprise is the conservative default, tuned toward unexpected
	// positive results and hard corporate events.
	ProfileSurprise = "surprise"
	// ProfileBroad widens the bullish vocabulary to include regulatory and
	// late-stage trial milestones, with a correspondingly reduced content
	// exclusion list.
	ProfileBroad = "broad"
)

// ByName returns a named built-in profile.
func ByName(name string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ProfileSurprise:
		return surpriseProfile(), nil
	case ProfileBroad:
		return broadProfile(), nil
	default:
		return Profile{}, fmt.Errorf("unknown lexicon profile %q", name)
	}
}

// Validate rejects profiles whose exclusion vocabulary overlaps the bullish
// table: a deployment must never reject a title it would reward.
func (p Profile) Validate() error {
	for _, excluded := range p.ExcludedContent {
		for phrase := range p.Bullish {
			phrase = strings.ToLower(phrase)
			if strings.Contains(phrase, excluded) || strings.Contains(excluded, phrase) {
				return fmt.Errorf("profile %q excludes %q but rewards %q", p.Name, excluded, phrase)
			}
		}
	}
	return nil
}

func surpriseProfile() Profile {
	return Profile{
		Name: ProfileSurprise,
		Bullish: map[string]float64{
			// Extreme surprises
			"exceeds expectations":  4.0,
			"above expectations":    4.0,
			"beats expectations":    4.0,
			"significantly exceeds": 4.5,
			"well above":            4.0,
			"significantly above":   4.0,
			"surprise profit":       4.0,
			"unexpected profit":     4.0,

			// Takeover/M&A
			"takeover offer":        5.0,
			"acquisition offer":     5.0,
			"acquisition proposal":  4.5,
			"scheme of arrangement": 4.5,
			"takeover bid":          5.0,
			"buyout offer":          5.0,

			// Contract wins
			"major contract":       3.5,
			"significant contract": 3.5,
			"contract awarded":     3.5,
			"wins contract":        3.5,
			"secures contract":     3.5,

			// Guidance upgrades
			"raises guidance":    4.0,
			"upgrades guidance":  4.0,
			"increased guidance": 4.0,
			"guidance upgrade":   4.0,
			"guidance raised":    4.0,

			// Financial beats
			"record profit":   3.5,
			"record earnings": 3.5,
			"record ebitda":   3.5,
			"record revenue":  3.2,
			"profit surge":    3.5,
			"earnings surge":  3.5,

			// Discoveries
			"significant discovery": 3.8,
			"major discovery":       3.8,
			"high-grade":            3.5,
			"exceptional results":   3.5,
			"outstanding results":   3.5,

			// Operational surprises
			"production exceeds": 3.5,
			"output exceeds":     3.5,
			"ahead of schedule":  3.0,
			"early production":   3.0,

			// Moderate bullish
			"profit":                1.5,
			"earnings":              1.5,
			"revenue growth":        2.0,
			"strong revenue":        2.0,
			"cash flow":             1.8,
			"margin expansion":      2.0,
			"new contract":          2.0,
			"contract win":          2.0,
			"production increase":   2.0,
			"capacity expansion":    2.0,
			"strategic partnership": 2.0,
			"market expansion":      2.0,
			"new market":            2.0,
			"dividend increase":     2.5,
			"special dividend":      2.8,
			"share buyback":         2.5,
		},
		Bearish: map[string]float64{
			"decline":            -2.0,
			"loss":               -2.5,
			"downgrade":          -2.0,
			"miss":               -2.5,
			"misses":             -2.5,
			"below expectations": -3.0,
			"disappointing":      -2.5,
			"weak":               -2.0,
			"drop":               -2.0,
			"fall":               -2.0,
			"decrease":           -2.0,
			"impairment":         -2.5,
			"write-down":         -2.5,
			"guidance downgrade": -3.0,
			"lowers guidance":    -3.0,
			"suspends":           -2.5,
		},
		RoutinePhrases: routinePhrases(),
		ExcludedContent: []string{
			"clinical trial",
			"phase 1",
			"phase 2",
			"phase 3",
			"phase i",
			"phase ii",
			"phase iii",
			"patient enrollment",
			"dose escalation",
			"trial results",
			"fda",
			"tga",
			"regulatory",
			"drug",
			"therapy",
			"treatment",
		},
	}
}

func broadProfile() Profile {
	p := surpriseProfile()
	p.Name = ProfileBroad

	bullish := make(map[string]float64, len(p.Bullish)+8)
	for k, v := range p.Bullish {
		bullish[k] = v
	}
	// Regulatory and late-stage milestones the surprise profile filters out.
	bullish["fda approval"] = 4.0
	bullish["tga approval"] = 4.0
	bullish["marketing approval"] = 3.5
	bullish["phase 3 success"] = 3.5
	bullish["positive topline"] = 3.5
	bullish["primary endpoint met"] = 4.0
	bullish["licensing agreement"] = 3.0
	bullish["breakthrough designation"] = 3.5
	p.Bullish = bullish

	// Trimmed so the profile never rejects vocabulary it rewards: only
	// early-stage noise remains excluded.
	p.ExcludedContent = []string{
		"patient enrollment",
		"dose escalation",
		"first patient",
		"ethics approval",
		"pre-clinical",
	}

	return p
}

func routinePhrases() []string {
	return []string{
		"trading halt",
		"voluntary suspension",
		"appendix 4e",
		"appendix 3b",
		"change of director",
		"change in director",
		"cleansing notice",
		"change of registered",
		"notification of cessation",
		"becomes substantial",
		"ceases to be substantial",
		"daily fund update",
		"net tangible asset",
		"nta",
		"initial director's interest",
		"change of director's interest",
		"weekly investor update",
		"monthly investor update",
	}
}

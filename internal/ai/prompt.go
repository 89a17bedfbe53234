package ai

import (
	"fmt"
	"strings"

	"google.golang.org/genai"

	"asxwatch/internal/ann"
)

const systemInstruction = `
You are a specialist Australian equities analyst covering ASX-listed small and
mid caps. You are given a price-sensitive company announcement as a PDF plus a
technical snapshot of the stock's recent trading.

Assess how bullish the announcement is for the share price over the next
trading session. Anchor the assessment in the document's concrete figures:
contract values, earnings against prior periods, guidance changes, bid
premiums, drill grades. Weigh the announcement against what the technical
snapshot implies the market already expects; a well-flagged result is not a
surprise.

Scoring rules:
- bullish_score: 1 (clearly negative) to 10 (exceptional, unambiguous upside).
- surprise_level: "low", "medium" or "high" relative to market expectations.
- expected_daily_change_pct: your estimate of the next session's move.
- prediction_confidence: 1 (speculative) to 5 (high conviction).

All rationale fields must cite specific numbers or terms from the document.
Avoid generic statements.
`

const userPromptTemplate = `Announcement under assessment:

Ticker: %s
Title: %s
Published: %s
Lexicon score: %.2f

Technical snapshot:
- Last close: %.4f
- 10-period return: %.2f%%
- RSI(14): %.1f
- 20-day average volume: %.0f
- Market cap: %.0f
- Reported short interest: %s

The full announcement document is attached as a PDF.`

func buildUserPrompt(c ann.Candidate, snap Snapshot) string {
	published := "unknown"
	if !c.PublishedAt.IsZero() {
		published = c.PublishedAt.Format("2006-01-02 15:04 MST")
	}

	shortInterest := snap.ShortInterest
	if strings.TrimSpace(shortInterest) == "" {
		shortInterest = "N/A"
	}

	return fmt.Sprintf(userPromptTemplate,
		c.Symbol, c.Title, published, c.Score,
		snap.Close, snap.MomentumPct, snap.RSI,
		snap.AvgVolume, snap.MarketCap, shortInterest,
	)
}

func responseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"bullish_score": {
				Type:        genai.TypeInteger,
				Description: "1 to 10, how bullish the announcement is.",
			},
			"surprise_level": {
				Type:        genai.TypeString,
				Enum:        []string{"low", "medium", "high"},
				Description: "Surprise relative to market expectations.",
			},
			"expected_daily_change_pct": {
				Type:        genai.TypeNumber,
				Description: "Estimated next-session share price move, percent.",
			},
			"prediction_confidence": {
				Type:        genai.TypeInteger,
				Description: "1 to 5 conviction in the estimate.",
			},
			"summary":            {Type: genai.TypeString, Description: "Two sentences on what was announced."},
			"financial_impact":   {Type: genai.TypeString, Description: "Quantified impact on revenue, earnings or valuation."},
			"surprise_rationale": {Type: genai.TypeString, Description: "Why the market did or did not expect this."},
			"momentum_context":   {Type: genai.TypeString, Description: "How the technical snapshot frames the reaction."},
			"risks":              {Type: genai.TypeString, Description: "What could mute or reverse the move."},
			"catalysts":          {Type: genai.TypeString, Description: "Follow-on events that could extend the move."},
			"recommendation":     {Type: genai.TypeString, Description: "One-line stance for the next session."},
		},
		Required: []string{
			"bullish_score",
			"surprise_level",
			"expected_daily_change_pct",
			"prediction_confidence",
			"summary",
			"financial_impact",
			"surprise_rationale",
			"momentum_context",
			"risks",
			"catalysts",
			"recommendation",
		},
	}
}

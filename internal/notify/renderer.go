package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// Renderer renders digests as HTML emails with a plain text fallback.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer creates a renderer with the default digest template.
func NewRenderer() *Renderer {
	t := template.Must(template.New("digest").Parse(digestHTMLTemplate))
	return &Renderer{tmpl: t}
}

// Render produces the digest email. An empty digest still renders, stating
// that nothing qualified.
func (r *Renderer) Render(d Digest) (*RenderedMessage, error) {
	subject := fmt.Sprintf("ASX bullish scan %s: %d candidate(s)",
		d.Date.Format("02 Jan 2006"), len(d.Entries))

	var htmlBuf bytes.Buffer
	if err := r.tmpl.Execute(&htmlBuf, d); err != nil {
		return nil, fmt.Errorf("notify: render HTML template: %w", err)
	}

	return &RenderedMessage{
		Subject: subject,
		Text:    renderPlainText(d),
		HTML:    htmlBuf.String(),
	}, nil
}

func renderPlainText(d Digest) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Bullish scan %s (profile: %s)\n", d.Date.Format("02 Jan 2006"), d.Profile))
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")

	if len(d.Entries) == 0 {
		sb.WriteString("No announcements qualified today.\n")
		return sb.String()
	}

	for _, e := range d.Entries {
		sb.WriteString(fmt.Sprintf("#%d %s - %s\n", e.Rank, e.Symbol, e.Title))
		sb.WriteString(strings.Repeat("-", 20) + "\n")
		if !e.Published.IsZero() {
			sb.WriteString(fmt.Sprintf("Published: %s\n", e.Published.Format("02 Jan 2006 3:04 PM")))
		}
		sb.WriteString(fmt.Sprintf("Score: %.2f\n", e.Score))
		if e.ShortInterest != "" {
			sb.WriteString(fmt.Sprintf("Short interest: %s\n", e.ShortInterest))
		}
		if e.PDFURL != "" {
			sb.WriteString(fmt.Sprintf("PDF: %s\n", e.PDFURL))
		}

		if a := e.Assessment; a != nil {
			sb.WriteString(fmt.Sprintf("AI verdict: %d/10 bullish, %s surprise, %+.1f%% expected (confidence %d/5)\n",
				a.BullishScore, a.SurpriseLevel, a.ExpectedDailyChangePct, a.PredictionConfidence))
			if a.Summary != "" {
				sb.WriteString(fmt.Sprintf("Summary: %s\n", a.Summary))
			}
			if a.Risks != "" {
				sb.WriteString(fmt.Sprintf("Risks: %s\n", a.Risks))
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

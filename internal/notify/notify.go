/*
Package notify delivers the day's shortlist as a single digest email, with
an HTML body and a plain text alternative.
*/
package notify

import (
	"time"

	"asxwatch/internal/ai"
	"asxwatch/internal/ann"
)

// Entry is one shortlisted announcement in the digest, optionally carrying
// its AI assessment.
type Entry struct {
	Rank          int
	Symbol        ann.Symbol
	Title         string
	Published     time.Time
	Score         float64
	PDFURL        string
	ShortInterest string
	Assessment    *ai.Assessment
}

// Digest is the full content of one notification email.
type Digest struct {
	Date    time.Time
	Profile string
	Entries []Entry
}

// RenderedMessage is a digest rendered into deliverable form.
type RenderedMessage struct {
	Subject string
	Text    string
	HTML    string
}

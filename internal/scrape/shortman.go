package scrape

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"asxwatch/internal/ann"
)

const defaultShortmanBaseURL = "https://www.shortman.com.au"

// ShortInterest scrapes the reported short percentage for a symbol from the
// shortman stock page. Callers substitute "N/A" when this fails.
func (s *Scraper) ShortInterest(ctx context.Context, sym ann.Symbol) (string, error) {
	pageURL := fmt.Sprintf("%s/stock?q=%s", s.shortmanURL, strings.ToLower(sym.String()))

	doc, err := s.fetchHTML(ctx, pageURL)
	if err != nil {
		return "", err
	}

	value := findShortCell(doc)
	if value == "" {
		return "", fmt.Errorf("scrape: no short interest cell for %s", sym)
	}
	return value, nil
}

// findShortCell returns the text of the first td carrying the "ca" class,
// where the stock page places the current short percentage.
func findShortCell(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "td" {
		for _, attr := range n.Attr {
			if attr.Key == "class" && hasClass(attr.Val, "ca") {
				return extractText(n)
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findShortCell(c); found != "" {
			return found
		}
	}
	return ""
}

func hasClass(classAttr, want string) bool {
	for _, cls := range strings.Fields(classAttr) {
		if cls == want {
			return true
		}
	}
	return false
}

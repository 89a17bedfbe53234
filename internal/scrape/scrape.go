/*
Package scrape collects announcements from the exchange's daily feed pages
and resolves each row's landing page to a direct PDF link, bypassing the
terms-and-conditions interstitial when the exchange serves one.
*/
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"asxwatch/internal/ann"
)

const (
	defaultBaseURL  = "https://www.asx.com.au"
	todayFeedPath   = "/asx/v2/statistics/todayAnns.do"
	prevDayFeedPath = "/asx/v2/statistics/prevBusDayAnns.do"
	termsAction     = "/asx/v2/statistics/announcementTerms.do"
)

var (
	directPDFRe   = regexp.MustCompile(`/asxpdf/[^"']*\.pdf`)
	hiddenFieldRe = regexp.MustCompile(`name="pdfURL"\s+value="(.*?)"`)
)

// Config carries the scraper settings.
type Config struct {
	BaseURL         string        `mapstructure:"base_url"`
	ShortmanBaseURL string        `mapstructure:"shortman_base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// Scraper fetches and parses the exchange feed pages. Safe for concurrent use.
type Scraper struct {
	baseURL     string
	shortmanURL string
	client      *http.Client
	loc         *time.Location
	logger      zerolog.Logger
}

// New builds a scraper. Empty base URLs select the public endpoints.
func New(cfg Config, logger zerolog.Logger) *Scraper {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	shortmanURL := cfg.ShortmanBaseURL
	if shortmanURL == "" {
		shortmanURL = defaultShortmanBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	loc, err := time.LoadLocation("Australia/Sydney")
	if err != nil {
		loc = time.UTC
	}

	return &Scraper{
		baseURL:     baseURL,
		shortmanURL: shortmanURL,
		client:      &http.Client{Timeout: timeout},
		loc:         loc,
		logger:      logger.With().Str("component", "scrape").Logger(),
	}
}

// DailyFeed scrapes the current or previous business day's announcement list.
// Rows with an unparseable timestamp are kept with a zero PublishedAt.
func (s *Scraper) DailyFeed(ctx context.Context, previousDay bool) ([]ann.Announcement, error) {
	path := todayFeedPath
	if previousDay {
		path = prevDayFeedPath
	}

	doc, err := s.fetchHTML(ctx, s.baseURL+path)
	if err != nil {
		return nil, err
	}

	announcements := s.collectRows(doc)
	s.logger.Info().Int("count", len(announcements)).Bool("previous_day", previousDay).Msg("scraped daily feed")
	return announcements, nil
}

// collectRows walks every tbody row and builds an announcement per row with
// at least the ticker, timestamp, sensitivity marker and title cells.
func (s *Scraper) collectRows(doc *html.Node) []ann.Announcement {
	var announcements []ann.Announcement
	var inTableBody bool

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tbody" {
			inTableBody = true
		}

		if inTableBody && n.Type == html.ElementNode && n.Data == "tr" {
			var current ann.Announcement
			tdCount := 0
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && c.Data == "td" {
					tdCount++
					s.processCell(c, tdCount, &current)
				}
			}
			if tdCount >= 4 && current.LandingURL != "" {
				announcements = append(announcements, current)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return announcements
}

func (s *Scraper) processCell(n *html.Node, tdIndex int, a *ann.Announcement) {
	switch tdIndex {
	case 1:
		a.Symbol = ann.NewSymbol(extractText(n))
	case 2:
		raw := extractText(n)
		a.PublishedAt = ann.ParsePublishedAt(raw, s.loc)
		if a.PublishedAt.IsZero() {
			s.logger.Warn().Str("raw", strings.TrimSpace(raw)).Msg("unparseable feed timestamp")
		}
	case 3:
		for _, attr := range n.Attr {
			if attr.Key == "class" && strings.Contains(attr.Val, "pricesens") {
				a.IsPriceSensitive = true
				break
			}
		}
	case 4:
		aTag := findFirst(n, "a")
		if aTag == nil {
			return
		}
		for _, attr := range aTag.Attr {
			if attr.Key == "href" {
				a.LandingURL = s.baseURL + strings.TrimSpace(attr.Val)
				break
			}
		}
		a.Title = ann.CleanTitle(titleText(aTag))
	}
}

// titleText collects text nodes under the link up to the first line break,
// which is where the feed appends the page-count suffix markup.
func titleText(aTag *html.Node) string {
	var sb strings.Builder
	for c := aTag.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		} else if c.Type == html.ElementNode && c.Data == "br" {
			break
		}
	}
	return sb.String()
}

// ResolvePDFURL turns an announcement landing URL into a direct PDF link.
// When the exchange serves its terms interstitial, the hidden form is
// submitted to establish the session and the embedded direct link returned.
func (s *Scraper) ResolvePDFURL(ctx context.Context, landingURL string) (string, error) {
	if landingURL == "" {
		return "", fmt.Errorf("scrape: no landing URL to resolve")
	}

	body, err := s.fetchBody(ctx, landingURL)
	if err != nil {
		return "", err
	}

	if strings.Contains(body, termsAction) {
		match := hiddenFieldRe.FindStringSubmatch(body)
		if len(match) < 2 {
			return "", fmt.Errorf("scrape: terms form detected but hidden pdfURL field missing")
		}
		directURL := match[1]

		form := url.Values{
			"pdfURL":                  {directURL},
			"showAnnouncementPDFForm": {"Agree and proceed"},
		}
		if err := s.postForm(ctx, s.baseURL+termsAction, form); err != nil {
			s.logger.Warn().Err(err).Msg("terms form submission failed")
		}
		return s.absolute(directURL), nil
	}

	if match := directPDFRe.FindString(body); match != "" {
		return s.absolute(match), nil
	}
	if strings.HasSuffix(strings.ToLower(landingURL), ".pdf") {
		return landingURL, nil
	}
	return "", fmt.Errorf("scrape: no PDF link found at %s", landingURL)
}

func (s *Scraper) absolute(link string) string {
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	return s.baseURL + link
}

// DownloadPDF fetches the resolved PDF bytes.
func (s *Scraper) DownloadPDF(ctx context.Context, pdfURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return nil, fmt.Errorf("scrape: build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrape: download %s: %w", pdfURL, err)
	}
	defer s.closeBody(resp, pdfURL)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scrape: download %s: status %d", pdfURL, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("scrape: read PDF body: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("scrape: empty PDF at %s", pdfURL)
	}
	return data, nil
}

func (s *Scraper) fetchHTML(ctx context.Context, pageURL string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("scrape: build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrape: fetch %s: %w", pageURL, err)
	}
	defer s.closeBody(resp, pageURL)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scrape: %s returned status %d", pageURL, resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("scrape: parse HTML from %s: %w", pageURL, err)
	}
	return doc, nil
}

func (s *Scraper) fetchBody(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("scrape: build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("scrape: fetch %s: %w", pageURL, err)
	}
	defer s.closeBody(resp, pageURL)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("scrape: %s returned status %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("scrape: read body: %w", err)
	}
	return string(body), nil
}

func (s *Scraper) postForm(ctx context.Context, formURL string, values url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, formURL, strings.NewReader(values.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

func (s *Scraper) closeBody(resp *http.Response, url string) {
	if err := resp.Body.Close(); err != nil {
		s.logger.Warn().Err(err).Str("url", url).Msg("failed to close response body")
	}
}

func extractText(n *html.Node) string {
	var sb strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(sb.String())
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

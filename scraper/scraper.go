// Package scraper fetches AtCoder submission pages and extracts the
// submitted source code.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const defaultBaseURL = "https://atcoder.jp"

// Scraper fetches submission source code from atcoder.jp.
type Scraper struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(s *Scraper) {
		s.baseURL = url
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) {
		s.httpClient.Timeout = d
	}
}

// NewScraper creates a new submission code scraper.
func NewScraper(opts ...Option) *Scraper {
	s := &Scraper{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchCode retrieves the source text of a submission from its
// submission page (the #submission-code element).
func (s *Scraper) FetchCode(ctx context.Context, contestID string, submissionID int64) (string, error) {
	url := fmt.Sprintf("%s/contests/%s/submissions/%d", s.baseURL, contestID, submissionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	// Set a user agent to avoid being blocked
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; atcoder-archiver/1.0)")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch submission page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse submission page: %w", err)
	}

	code := doc.Find("#submission-code")
	if code.Length() == 0 {
		return "", fmt.Errorf("submission code element not found")
	}

	return extractCode(code), nil
}

// extractCode returns the text of the code element. A syntax-highlighted
// page wraps each line in an <li>; the wrappers carry indentation of
// their own, so lines are taken item by item and rejoined. A plain
// <pre> has its text taken as-is.
func extractCode(code *goquery.Selection) string {
	items := code.Find("li")
	if items.Length() == 0 {
		return code.Text()
	}

	var b strings.Builder
	items.Each(func(_ int, li *goquery.Selection) {
		line := strings.ReplaceAll(li.Text(), " ", "")
		b.WriteString(line)
		b.WriteString("\n")
	})
	return b.String()
}

package parser

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NoticeWatcher/internal/domain"
	"NoticeWatcher/internal/scanner"
)

const defaultUserAgent = "NoticeWatcher/1.0"

// hintExpr matches the recency signals sites print near notice links:
// a bracketed dd.mm date, an "N days ago" phrase, or an ISO date.
var hintExpr = regexp.MustCompile(`\[\d{2}\.\d{2}\]|\b\d+\s+days?\s+ago\b|\b\d{4}-\d{2}-\d{2}\b`)

// ListingScanner extracts notice links from section listing pages.
type ListingScanner struct {
	client *http.Client
}

// NewListingScanner wires an HTTP client; nil gets a 30s-timeout default.
func NewListingScanner(client *http.Client) *ListingScanner {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &ListingScanner{client: client}
}

// Name identifies the strategy inside the registry.
func (l *ListingScanner) Name() string {
	return "listing"
}

// Scan fetches one section page and returns its items in document order.
func (l *ListingScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Item, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("no url provided for section %s", req.Section)
	}

	doc, err := l.fetchDocument(ctx, req.URL, req.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("section %s: %w", req.Section, err)
	}

	return extractItems(doc, req), nil
}

func (l *ListingScanner) fetchDocument(ctx context.Context, pageURL, userAgent string) (*goquery.Document, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	httpReq.Header.Set("User-Agent", userAgent)

	resp, err := l.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

// extractItems walks every anchor in document order, keeps the ones
// whose href contains a configured view path, and collapses duplicate
// URLs to their first occurrence. The resolved URL is the identity key,
// so the resolution rule must stay stable across runs.
func extractItems(doc *goquery.Document, req scanner.Request) []domain.Item {
	var items []domain.Item
	seen := map[string]struct{}{}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		title := normalizeSpace(sel.Text())
		if href == "" || title == "" {
			return
		}
		if !matchesViewPath(href, req.ViewPaths) {
			return
		}

		absURL := absoluteURL(href, req.Origin)
		if _, ok := seen[absURL]; ok {
			return
		}
		seen[absURL] = struct{}{}

		items = append(items, domain.Item{
			Section:  req.Section,
			Title:    title,
			URL:      absURL,
			DateHint: dateHint(sel),
		})
	})

	return items
}

func matchesViewPath(href string, viewPaths []string) bool {
	for _, p := range viewPaths {
		if p != "" && strings.Contains(href, p) {
			return true
		}
	}
	return false
}

// absoluteURL prefixes the site origin onto non-absolute hrefs.
// Deliberately not url.ResolveReference: dot-segment cleaning would
// rewrite identity keys between releases.
func absoluteURL(href, origin string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	origin = strings.TrimSuffix(origin, "/")
	if !strings.HasPrefix(href, "/") {
		return origin + "/" + href
	}
	return origin + href
}

// dateHint pulls a best-effort recency signal from the text of the
// anchor's parent container. First match wins; absence is normal.
func dateHint(sel *goquery.Selection) string {
	parent := sel.Parent()
	if parent.Length() == 0 {
		return ""
	}
	return hintExpr.FindString(normalizeSpace(parent.Text()))
}

// normalizeSpace collapses whitespace runs to single spaces and trims.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

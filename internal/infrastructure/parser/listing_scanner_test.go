package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"NoticeWatcher/internal/scanner"
)

const listingHTML = `
<html><body>
<nav><a href="/notices">Notices</a> <a href="/events">Events</a></nav>
<ul class="news_board">
  <li>
    <a href="/notices/view/101">  Extended   Server
      Maintenance  </a>
    <span class="date">[12.08]</span>
  </li>
  <li>
    <a href="https://www.maplesea.com/notices/view/102">Cash Shop Update</a>
    <span class="date">3 days ago</span>
  </li>
  <li>
    <a href="/notices/view/101">Extended Server Maintenance</a>
  </li>
  <li>
    <a href="/events/view/55">Hot Week Returns</a>
    <span class="date">2026-08-20</span>
  </li>
  <li>
    <a href="/updates/view/9">v215 Patch Notes</a>
  </li>
  <li>
    <a href="/notices/view/103">   </a>
  </li>
</ul>
</body></html>`

func TestExtractItems(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(listingHTML))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	req := scanner.Request{
		Section:   "Notices",
		Origin:    "https://www.maplesea.com",
		ViewPaths: []string{"/notices/view/", "/events/view/", "/updates/view/"},
	}

	items := extractItems(doc, req)
	if len(items) != 4 {
		t.Fatalf("expected 4 items, got %d: %+v", len(items), items)
	}

	first := items[0]
	if first.Title != "Extended Server Maintenance" {
		t.Fatalf("title not normalized: %q", first.Title)
	}
	if first.URL != "https://www.maplesea.com/notices/view/101" {
		t.Fatalf("relative href not absolutized: %s", first.URL)
	}
	if first.DateHint != "[12.08]" {
		t.Fatalf("expected bracket hint, got %q", first.DateHint)
	}
	if first.Section != "Notices" {
		t.Fatalf("unexpected section: %s", first.Section)
	}

	if items[1].URL != "https://www.maplesea.com/notices/view/102" {
		t.Fatalf("absolute href rewritten: %s", items[1].URL)
	}
	if items[1].DateHint != "3 days ago" {
		t.Fatalf("expected days-ago hint, got %q", items[1].DateHint)
	}

	if items[2].URL != "https://www.maplesea.com/events/view/55" {
		t.Fatalf("duplicate not collapsed to first occurrence, got %s", items[2].URL)
	}
	if items[2].DateHint != "2026-08-20" {
		t.Fatalf("expected ISO hint, got %q", items[2].DateHint)
	}

	if items[3].URL != "https://www.maplesea.com/updates/view/9" {
		t.Fatalf("unexpected fourth item: %s", items[3].URL)
	}
	if items[3].DateHint != "" {
		t.Fatalf("expected no hint, got %q", items[3].DateHint)
	}
}

func TestAbsoluteURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		href   string
		origin string
		want   string
	}{
		{"https://cdn.example.com/x", "https://www.maplesea.com", "https://cdn.example.com/x"},
		{"/notices/view/1", "https://www.maplesea.com", "https://www.maplesea.com/notices/view/1"},
		{"/notices/view/1", "https://www.maplesea.com/", "https://www.maplesea.com/notices/view/1"},
		{"notices/view/1", "https://www.maplesea.com", "https://www.maplesea.com/notices/view/1"},
	}

	for _, tc := range cases {
		if got := absoluteURL(tc.href, tc.origin); got != tc.want {
			t.Fatalf("absoluteURL(%q, %q) = %q, want %q", tc.href, tc.origin, got, tc.want)
		}
	}
}

func TestListingScannerScan(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "TestAgent/1.0" {
			t.Errorf("unexpected user agent: %s", got)
		}
		_, _ = w.Write([]byte(`
		<ul>
		  <li><a href="/notices/view/201">First Notice</a></li>
		  <li><a href="/notices/view/202">Second Notice</a></li>
		</ul>`))
	}))
	defer server.Close()

	sc := NewListingScanner(server.Client())

	req := scanner.Request{
		Section:   "Notices",
		URL:       server.URL + "/notices",
		Origin:    server.URL,
		ViewPaths: []string{"/notices/view/"},
		UserAgent: "TestAgent/1.0",
	}

	items, err := sc.Scan(context.Background(), req)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].URL != server.URL+"/notices/view/201" {
		t.Fatalf("document order not preserved: %s", items[0].URL)
	}
	if items[1].Title != "Second Notice" {
		t.Fatalf("unexpected second title: %s", items[1].Title)
	}
}

func TestListingScannerScanStatusError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	sc := NewListingScanner(server.Client())

	req := scanner.Request{
		Section:   "Notices",
		URL:       server.URL + "/notices",
		Origin:    server.URL,
		ViewPaths: []string{"/notices/view/"},
	}

	if _, err := sc.Scan(context.Background(), req); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestListingScannerScanMissingURL(t *testing.T) {
	t.Parallel()

	sc := NewListingScanner(nil)
	if _, err := sc.Scan(context.Background(), scanner.Request{Section: "Notices"}); err == nil {
		t.Fatal("expected error for empty section url")
	}
}

package usecase

import (
	"testing"
	"time"

	"NoticeWatcher/internal/domain"
)

func TestBackfillSplitCapsPerSource(t *testing.T) {
	t.Parallel()

	items := []domain.Item{
		{URL: "https://s/view/1"},
		{URL: "https://s/view/2"},
		{URL: "https://s/view/3"},
		{URL: "https://s/view/4"},
		{URL: "https://s/view/5"},
	}

	deliver, skip := NewBackfillPolicy(3, 0).Split(items)

	if len(deliver) != 3 || len(skip) != 2 {
		t.Fatalf("expected 3 delivered / 2 skipped, got %d / %d", len(deliver), len(skip))
	}
	if deliver[0].URL != "https://s/view/1" || deliver[2].URL != "https://s/view/3" {
		t.Fatalf("cap must keep document order, got %+v", deliver)
	}
	if skip[0].URL != "https://s/view/4" {
		t.Fatalf("unexpected first skipped item: %s", skip[0].URL)
	}
}

func TestBackfillSplitUnbounded(t *testing.T) {
	t.Parallel()

	items := []domain.Item{{URL: "https://s/view/1"}, {URL: "https://s/view/2"}}

	deliver, skip := NewBackfillPolicy(0, 0).Split(items)

	if len(deliver) != 2 || len(skip) != 0 {
		t.Fatalf("cap <= 0 must deliver everything, got %d / %d", len(deliver), len(skip))
	}
}

func TestBackfillSplitRecencyWindow(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, time.August, 25, 12, 0, 0, 0, time.UTC)
	policy := BackfillPolicy{RecencyDays: 7, now: func() time.Time { return fixed }}

	items := []domain.Item{
		{URL: "https://s/view/1", DateHint: "2026-08-24"},
		{URL: "https://s/view/2", DateHint: "30 days ago"},
		{URL: "https://s/view/3"},
		{URL: "https://s/view/4", DateHint: "[20.08]"},
		{URL: "https://s/view/5", DateHint: "2 days ago"},
	}

	deliver, skip := policy.Split(items)

	if len(deliver) != 3 {
		t.Fatalf("expected 3 in-window items, got %+v", deliver)
	}
	if deliver[0].URL != "https://s/view/1" || deliver[1].URL != "https://s/view/4" {
		t.Fatalf("unexpected delivered set: %+v", deliver)
	}
	if len(skip) != 2 {
		t.Fatalf("stale and undated items must be skipped, got %+v", skip)
	}
}

func TestBackfillRecencyFiltersBeforeCap(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, time.August, 25, 12, 0, 0, 0, time.UTC)
	policy := BackfillPolicy{CapPerSource: 1, RecencyDays: 7, now: func() time.Time { return fixed }}

	items := []domain.Item{
		{URL: "https://s/view/1", DateHint: "30 days ago"},
		{URL: "https://s/view/2", DateHint: "2 days ago"},
		{URL: "https://s/view/3", DateHint: "3 days ago"},
	}

	deliver, skip := policy.Split(items)

	if len(deliver) != 1 || deliver[0].URL != "https://s/view/2" {
		t.Fatalf("stale item consumed the cap: %+v", deliver)
	}
	if len(skip) != 2 {
		t.Fatalf("expected 2 skipped, got %+v", skip)
	}
}

func TestResolveHint(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 25, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		hint string
		want time.Time
		ok   bool
	}{
		{"[20.08]", time.Date(2026, time.August, 20, 0, 0, 0, 0, time.UTC), true},
		{"[26.08]", time.Date(2026, time.August, 26, 0, 0, 0, 0, time.UTC), true},
		{"[31.12]", time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC), true},
		{"3 days ago", now.AddDate(0, 0, -3), true},
		{"1 day ago", now.AddDate(0, 0, -1), true},
		{"2026-08-01", time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"yesterday", time.Time{}, false},
		{"[40.01]", time.Time{}, false},
		{"[01.13]", time.Time{}, false},
	}

	for _, tc := range cases {
		got, ok := resolveHint(tc.hint, now)
		if ok != tc.ok {
			t.Fatalf("resolveHint(%q) ok = %v, want %v", tc.hint, ok, tc.ok)
		}
		if ok && !got.Equal(tc.want) {
			t.Fatalf("resolveHint(%q) = %v, want %v", tc.hint, got, tc.want)
		}
	}
}

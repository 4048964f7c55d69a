package usecase

import (
	"regexp"
	"strconv"
	"time"

	"NoticeWatcher/internal/domain"
)

// BackfillPolicy bounds how much history a single run may deliver per
// source, so a cold start or a long gap never floods the sink. Items it
// withholds are still marked seen and never reconsidered.
type BackfillPolicy struct {
	CapPerSource int // max deliveries per source per run; <= 0 means unbounded
	RecencyDays  int // only deliver items resolvably dated within N days; <= 0 disables
	now          func() time.Time
}

// NewBackfillPolicy builds a policy from config knobs.
func NewBackfillPolicy(capPerSource, recencyDays int) BackfillPolicy {
	return BackfillPolicy{CapPerSource: capPerSource, RecencyDays: recencyDays, now: time.Now}
}

// Split partitions one source's newly discovered items, in document
// order, into the subset to deliver now and the subset to silently
// absorb. The recency window filters first; the cap then keeps the
// first items as the extractor produced them.
func (p BackfillPolicy) Split(items []domain.Item) (deliver, skip []domain.Item) {
	now := time.Now()
	if p.now != nil {
		now = p.now()
	}

	for _, item := range items {
		if p.RecencyDays > 0 && !p.withinWindow(item.DateHint, now) {
			skip = append(skip, item)
			continue
		}
		if p.CapPerSource > 0 && len(deliver) >= p.CapPerSource {
			skip = append(skip, item)
			continue
		}
		deliver = append(deliver, item)
	}

	return deliver, skip
}

func (p BackfillPolicy) withinWindow(hint string, now time.Time) bool {
	ts, ok := resolveHint(hint, now)
	if !ok {
		return false
	}
	cutoff := now.AddDate(0, 0, -p.RecencyDays)
	return !ts.Before(cutoff)
}

var (
	bracketExpr = regexp.MustCompile(`^\[(\d{2})\.(\d{2})\]$`)
	daysAgoExpr = regexp.MustCompile(`^(\d+)\s+days?\s+ago$`)
)

// resolveHint turns an extracted date hint into a concrete time. Hints
// are best-effort page text, so failing to resolve is normal. Bracketed
// dd.mm hints carry no year; they resolve against the current one and
// roll back a year when that lands more than a day in the future.
func resolveHint(hint string, now time.Time) (time.Time, bool) {
	if hint == "" {
		return time.Time{}, false
	}

	if m := bracketExpr.FindStringSubmatch(hint); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if month < 1 || month > 12 || day < 1 || day > 31 {
			return time.Time{}, false
		}
		ts := time.Date(now.Year(), time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if ts.After(now.AddDate(0, 0, 1)) {
			ts = ts.AddDate(-1, 0, 0)
		}
		return ts, true
	}

	if m := daysAgoExpr.FindStringSubmatch(hint); m != nil {
		days, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, false
		}
		return now.AddDate(0, 0, -days), true
	}

	if ts, err := time.Parse("2006-01-02", hint); err == nil {
		return ts, true
	}

	return time.Time{}, false
}

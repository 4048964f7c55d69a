package domain

import "sort"

// SeenSet holds every URL already delivered or deliberately skipped.
// It is loaded once per run, mutated in memory, and written back once;
// no locking because a run owns it exclusively.
type SeenSet struct {
	urls map[string]struct{}
}

// NewSeenSet builds a set from previously persisted URLs. Empty entries
// are dropped rather than kept as phantom keys.
func NewSeenSet(urls ...string) *SeenSet {
	s := &SeenSet{urls: make(map[string]struct{}, len(urls))}
	for _, u := range urls {
		if u == "" {
			continue
		}
		s.urls[u] = struct{}{}
	}
	return s
}

// Contains reports whether the URL was already seen.
func (s *SeenSet) Contains(url string) bool {
	_, ok := s.urls[url]
	return ok
}

// Add marks a URL as seen. Adding twice is a no-op.
func (s *SeenSet) Add(url string) {
	if url == "" {
		return
	}
	s.urls[url] = struct{}{}
}

// Len returns the number of seen URLs.
func (s *SeenSet) Len() int {
	return len(s.urls)
}

// URLs returns the seen URLs sorted ascending, so the persisted form
// stays diff-stable between runs.
func (s *SeenSet) URLs() []string {
	out := make([]string, 0, len(s.urls))
	for u := range s.urls {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

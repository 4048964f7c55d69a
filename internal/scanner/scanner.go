package scanner

import (
	"context"
	"fmt"

	"NoticeWatcher/internal/domain"
)

// Request carries all parameters required to scan one section listing.
type Request struct {
	Section   string
	URL       string
	Origin    string   // site origin used to absolutize relative hrefs
	ViewPaths []string // href substrings that mark per-item view links
	UserAgent string
}

// Scanner captures a single extraction strategy. Parsing-rule changes
// stay behind this interface so they never touch the pipeline.
type Scanner interface {
	Name() string
	Scan(ctx context.Context, req Request) ([]domain.Item, error)
}

// Registry keeps a mapping from scanner names to their implementations.
type Registry struct {
	scanners map[string]Scanner
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scanners: map[string]Scanner{}}
}

// Register adds or replaces a scanner implementation.
func (r *Registry) Register(scanner Scanner) {
	if r.scanners == nil {
		r.scanners = map[string]Scanner{}
	}
	r.scanners[scanner.Name()] = scanner
}

// Resolve returns a scanner by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Scanner, error) {
	if scanner, ok := r.scanners[name]; ok {
		return scanner, nil
	}
	return nil, fmt.Errorf("scanner %s is not registered", name)
}

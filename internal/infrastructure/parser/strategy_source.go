package parser

import (
	"context"
	"fmt"
	"log/slog"

	"NoticeWatcher/internal/config"
	"NoticeWatcher/internal/domain"
	"NoticeWatcher/internal/ports"
	"NoticeWatcher/internal/scanner"
)

// StrategySource implements ItemSource via registered scanner strategies.
type StrategySource struct {
	registry  *scanner.Registry
	sites     []config.SiteConfig
	userAgent string
	logger    *slog.Logger
}

var _ ports.ItemSource = (*StrategySource)(nil)

// NewStrategySource wires the scanner registry with config-defined sites.
func NewStrategySource(reg *scanner.Registry, sites []config.SiteConfig, userAgent string, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry:  reg,
		sites:     sites,
		userAgent: userAgent,
		logger:    log,
	}
}

// Fetch scans every configured section. A failing section is logged and
// contributes zero items while the remaining sections still run, so one
// unreachable or unparsable page never empties the whole batch. Only a
// misconfigured strategy name fails the fetch itself.
func (s *StrategySource) Fetch(ctx context.Context) ([]domain.Item, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	var aggregated []domain.Item
	for _, site := range s.sites {
		strategy, err := s.registry.Resolve(site.Scanner)
		if err != nil {
			return nil, fmt.Errorf("site %s: %w", site.Name, err)
		}

		for _, section := range site.Sections {
			req := scanner.Request{
				Section:   section.Name,
				URL:       section.URL,
				Origin:    site.Origin,
				ViewPaths: site.ViewPaths,
				UserAgent: s.userAgent,
			}

			items, err := strategy.Scan(ctx, req)
			if err != nil {
				s.warn("section scan failed", "site", site.Name, "section", section.Name, "url", section.URL, "error", err)
				continue
			}

			s.debug("section scanned", "site", site.Name, "section", section.Name, "count", len(items))
			aggregated = append(aggregated, items...)
		}
	}

	s.debug("strategy source done", "total_items", len(aggregated))
	return aggregated, nil
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *StrategySource) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

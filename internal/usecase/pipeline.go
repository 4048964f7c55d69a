package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"NoticeWatcher/internal/domain"
	"NoticeWatcher/internal/ports"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source   ports.ItemSource
	Store    ports.SeenStore
	Notifier ports.Notifier
	Policy   BackfillPolicy
	Logger   *slog.Logger
}

// Pipeline implements the scan-diff-deliver workflow of a single run.
type Pipeline struct {
	source   ports.ItemSource
	store    ports.SeenStore
	notifier ports.Notifier
	policy   BackfillPolicy
	logger   *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Pipeline{
		source:   deps.Source,
		store:    deps.Store,
		notifier: deps.Notifier,
		policy:   deps.Policy,
		logger:   logger,
	}
}

// Run executes one full pass: load the seen-set, scan all sources,
// withhold backfill, deliver what is new in document order, persist the
// seen-set once, and report a summary. Per-item and per-source problems
// are logged and absorbed; only the final state write can fail the run,
// because losing the seen-set risks duplicate deliveries.
func (p *Pipeline) Run(ctx context.Context) (domain.RunSummary, error) {
	summary := domain.RunSummary{RunID: uuid.NewString()}
	if p.source == nil || p.store == nil || p.notifier == nil {
		return summary, fmt.Errorf("pipeline is missing dependencies")
	}

	logger := p.logger.With("run_id", summary.RunID)

	seen := p.store.Load(ctx)
	logger.Debug("state loaded", "seen", seen.Len())

	items, err := p.source.Fetch(ctx)
	if err != nil {
		return summary, fmt.Errorf("fetch items: %w", err)
	}

	groups, order := groupNewBySection(items, seen)

	for _, section := range order {
		deliver, skip := p.policy.Split(groups[section])

		for _, item := range deliver {
			if err := p.notifier.Deliver(ctx, item); err != nil {
				// Not marked seen: the item is rediscovered and retried
				// on the next run.
				summary.Failed++
				logger.Warn("delivery failed", "section", item.Section, "url", item.URL, "error", err)
				continue
			}
			seen.Add(item.URL)
			summary.Delivered++
			logger.Info("delivered", "section", item.Section, "title", item.Title)
		}

		for _, item := range skip {
			seen.Add(item.URL)
			summary.Skipped++
		}
		if len(skip) > 0 {
			logger.Info("backfill absorbed", "section", section, "count", len(skip))
		}
	}

	if err := p.store.Save(ctx, seen); err != nil {
		return summary, fmt.Errorf("save state: %w", err)
	}

	summary.TotalSeen = seen.Len()
	logger.Info("run finished",
		"delivered", summary.Delivered,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"total_seen", summary.TotalSeen)

	return summary, nil
}

// groupNewBySection drops already-seen URLs and groups the remainder by
// section, preserving the order sections first appear and document
// order within each section. A URL listed under two sections counts
// once, for the section that produced it first.
func groupNewBySection(items []domain.Item, seen *domain.SeenSet) (map[string][]domain.Item, []string) {
	groups := make(map[string][]domain.Item)
	var order []string
	inRun := map[string]struct{}{}

	for _, item := range items {
		if seen.Contains(item.URL) {
			continue
		}
		if _, dup := inRun[item.URL]; dup {
			continue
		}
		inRun[item.URL] = struct{}{}

		if _, ok := groups[item.Section]; !ok {
			order = append(order, item.Section)
		}
		groups[item.Section] = append(groups[item.Section], item)
	}

	return groups, order
}

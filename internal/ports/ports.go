package ports

import (
	"context"
	"time"

	"NoticeWatcher/internal/domain"
)

// ItemSource pulls the current batch of items from all configured
// listing pages. Per-source failures are absorbed inside the source
// (logged, zero items for that source); a returned error means the
// source itself is unusable.
type ItemSource interface {
	Fetch(ctx context.Context) ([]domain.Item, error)
}

// SeenStore persists the delivered/skipped URL set between runs.
// Load never fails the caller: missing or corrupt state yields an
// empty set. Save replaces the entire persisted state in one write.
type SeenStore interface {
	Load(ctx context.Context) *domain.SeenSet
	Save(ctx context.Context, set *domain.SeenSet) error
}

// Notifier posts exactly one outbound notification per successful call.
type Notifier interface {
	Deliver(ctx context.Context, item domain.Item) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}

package domain

// Item is a single notice discovered on a listing page. URL is the sole
// identity key: two items with the same URL are the same item no matter
// what section, title, or hint they carry.
type Item struct {
	Section  string
	Title    string
	URL      string
	DateHint string
}

// DeliveryOutcome classifies what happened to one discovered item
// during a run. Outcomes feed the run summary only; the seen-set is the
// durable record.
type DeliveryOutcome string

const (
	OutcomeDelivered       DeliveryOutcome = "delivered"
	OutcomeFailed          DeliveryOutcome = "failed"
	OutcomeSkippedBackfill DeliveryOutcome = "skipped-backfill"
)

// RunSummary aggregates per-run counters for terminal reporting.
type RunSummary struct {
	RunID     string
	Delivered int
	Failed    int
	Skipped   int
	TotalSeen int
}

package ports

import (
	"context"
	"delivery-allocation-service/internal/domain"
)

// Optional read-through cache for the latest allocation run.
// Get returns ErrNotFound on a miss. Callers compare the cached RunID with
// AllocationStore.LatestRunID before trusting the entry.
type ResultCache interface {
	Get(ctx context.Context) (domain.AllocationRun, error)
	Put(ctx context.Context, run domain.AllocationRun) error
}

// RunSummary is the payload announced after a run is stored.
type RunSummary struct {
	RunID     string  `json:"run_id"`
	RunDate   string  `json:"run_date"`
	Allocated int     `json:"allocated"`
	Postponed int     `json:"postponed"`
	Agents    int     `json:"agents"`
	TotalCost float64 `json:"total_cost"`
}

// Optional notification sink for completed runs.
type EventPublisher interface {
	PublishAllocationCompleted(ctx context.Context, summary RunSummary) error
}

package ports

import (
	"context"
	"delivery-allocation-service/internal/domain"
	"errors"
)

// ErrNotFound is returned when no stored allocation exists.
var ErrNotFound = errors.New("not found")

// Port: persistence for allocation runs.
type AllocationStore interface {
	// Replace the allocations of the run's date and update order statuses.
	SaveRun(ctx context.Context, run domain.AllocationRun) error
	// Id of the most recently stored run; ErrNotFound when none.
	LatestRunID(ctx context.Context) (string, error)
	// Rebuild the most recently stored run; ErrNotFound when none.
	LatestRun(ctx context.Context) (domain.AllocationRun, error)
}

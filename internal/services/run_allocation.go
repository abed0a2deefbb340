package services

import (
	"context"
	"delivery-allocation-service/internal/domain"
	"delivery-allocation-service/internal/platform/metrics"
	"delivery-allocation-service/internal/platform/obs"
	"delivery-allocation-service/internal/ports"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RunAllocationDeps are the collaborators of an allocation run.
// Cache and Publisher are optional.
type RunAllocationDeps struct {
	Fleet     ports.FleetRepository
	Store     ports.AllocationStore
	Cache     ports.ResultCache
	Publisher ports.EventPublisher
}

// RunAllocation loads the current fleet and open orders, allocates them, and
// stores the run as the plan for the day of now.
//
// Only active agents are offered to the engine. Cache and publish failures are
// logged and do not fail the run once it is stored.
func RunAllocation(
	ctx context.Context,
	deps RunAllocationDeps,
	engine *Engine,
	now time.Time,
) (_ *domain.AllocationRun, err error) {
	defer obs.Time(ctx, "allocation.Run")(&err)

	if deps.Fleet == nil || deps.Store == nil {
		return nil, errors.New("run allocation: fleet repository and allocation store are required")
	}

	start := time.Now()
	defer func() {
		if err != nil {
			metrics.ObserveRunFailure(time.Since(start))
		}
	}()

	warehouses, err := deps.Fleet.ListWarehouses(ctx)
	if err != nil {
		return nil, fmt.Errorf("run allocation: list warehouses: %w", err)
	}

	agents, err := deps.Fleet.ListAgents(ctx)
	if err != nil {
		return nil, fmt.Errorf("run allocation: list agents: %w", err)
	}
	active := make([]domain.Agent, 0, len(agents))
	for _, a := range agents {
		if a.Active {
			active = append(active, a)
		}
	}

	orders, err := deps.Fleet.ListOpenOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("run allocation: list open orders: %w", err)
	}

	run := domain.AllocationRun{
		RunID:  uuid.NewString(),
		RunAt:  now.UTC(),
		Result: engine.Allocate(active, orders, warehouses),
	}

	if err := deps.Store.SaveRun(ctx, run); err != nil {
		return nil, fmt.Errorf("run allocation: save run %s: %w", run.RunID, err)
	}

	metrics.ObserveRun(run.Result, time.Since(start))

	if deps.Cache != nil {
		if cerr := deps.Cache.Put(ctx, run); cerr != nil {
			zap.L().Warn("cache allocation result failed", zap.String("run_id", run.RunID), zap.Error(cerr))
		}
	}

	if deps.Publisher != nil {
		if perr := deps.Publisher.PublishAllocationCompleted(ctx, Summarize(run)); perr != nil {
			zap.L().Warn("publish allocation completed failed", zap.String("run_id", run.RunID), zap.Error(perr))
		}
	}

	zap.L().Info("allocation run stored",
		zap.String("run_id", run.RunID),
		zap.Int("allocated", len(run.Result.AllocatedOrders)),
		zap.Int("postponed", len(run.Result.PostponedOrders)),
		zap.Float64("total_cost", run.Result.TotalCost),
	)

	return &run, nil
}

// LatestResult returns the most recent stored result. A cached run is served
// only while it is still the latest run in the store, so runs saved by other
// processes or overlapping requests are never shadowed by the cache.
func LatestResult(ctx context.Context, deps RunAllocationDeps) (_ domain.AllocationResult, err error) {
	defer obs.Time(ctx, "allocation.Latest")(&err)

	if deps.Store == nil {
		return domain.AllocationResult{}, errors.New("latest result: allocation store is required")
	}

	if deps.Cache != nil {
		runID, err := deps.Store.LatestRunID(ctx)
		if err != nil {
			return domain.AllocationResult{}, fmt.Errorf("latest result: %w", err)
		}

		cached, cerr := deps.Cache.Get(ctx)
		switch {
		case cerr == nil && cached.RunID == runID:
			return cached.Result, nil
		case cerr != nil && !errors.Is(cerr, ports.ErrNotFound):
			zap.L().Warn("read cached allocation result failed", zap.Error(cerr))
		}
	}

	run, err := deps.Store.LatestRun(ctx)
	if err != nil {
		return domain.AllocationResult{}, fmt.Errorf("latest result: %w", err)
	}

	if deps.Cache != nil {
		if cerr := deps.Cache.Put(ctx, run); cerr != nil {
			zap.L().Warn("cache allocation result failed", zap.String("run_id", run.RunID), zap.Error(cerr))
		}
	}

	return run.Result, nil
}

// Summarize builds the completion event payload for run.
func Summarize(run domain.AllocationRun) ports.RunSummary {
	return ports.RunSummary{
		RunID:     run.RunID,
		RunDate:   run.RunDate(),
		Allocated: len(run.Result.AllocatedOrders),
		Postponed: len(run.Result.PostponedOrders),
		Agents:    len(run.Result.AgentAllocations),
		TotalCost: run.Result.TotalCost,
	}
}

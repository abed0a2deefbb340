package services

import (
	"cmp"
	"delivery-allocation-service/internal/domain"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Engine assigns pending orders to checked-in agents, warehouse by warehouse.
//
// An Engine holds only configuration and is safe for concurrent use; every call
// to Allocate builds fresh allocation state and never mutates its inputs.
type Engine struct {
	Limits domain.Limits
	// Parallelism bounds how many warehouses are allocated concurrently.
	// Zero means runtime.GOMAXPROCS(0).
	Parallelism int
}

func NewEngine(limits domain.Limits) *Engine {
	return &Engine{Limits: limits}
}

// Allocate runs the engine with default limits.
func Allocate(agents []domain.Agent, orders []domain.Order, warehouses []domain.Warehouse) domain.AllocationResult {
	return NewEngine(domain.DefaultLimits()).Allocate(agents, orders, warehouses)
}

type warehouseOutcome struct {
	allocations []domain.AgentAllocation // every checked-in agent, including empty ones
	allocated   []int
	postponed   []int
	cost        float64
}

// Allocate assigns orders to agents and reports which orders were postponed.
//
// Every order resolves to exactly one of AllocatedOrders or PostponedOrders.
// Orders of a warehouse without checked-in agents are postponed. Constraint
// breaches are expressed as postponement; Allocate has no error path.
func (e *Engine) Allocate(
	agents []domain.Agent,
	orders []domain.Order,
	warehouses []domain.Warehouse,
) domain.AllocationResult {
	batches := partitionByWarehouse(agents, orders, warehouses)

	// Warehouses share no agents or orders, so each batch writes its own slot
	// and results are merged in batch order afterwards.
	outcomes := make([]warehouseOutcome, len(batches))

	var g errgroup.Group
	g.SetLimit(e.parallelism())
	for i, b := range batches {
		g.Go(func() error {
			outcomes[i] = e.allocateWarehouse(b)
			return nil
		})
	}
	_ = g.Wait()

	result := domain.AllocationResult{
		AgentAllocations: []domain.AgentAllocation{},
		AllocatedOrders:  make([]int, 0, len(orders)),
		PostponedOrders:  []int{},
	}
	for _, out := range outcomes {
		for _, a := range out.allocations {
			if len(a.OrderIDs) > 0 {
				result.AgentAllocations = append(result.AgentAllocations, a)
			}
		}
		result.AllocatedOrders = append(result.AllocatedOrders, out.allocated...)
		result.PostponedOrders = append(result.PostponedOrders, out.postponed...)
		result.TotalCost += out.cost
	}

	return result
}

func (e *Engine) parallelism() int {
	if e.Parallelism > 0 {
		return e.Parallelism
	}
	return runtime.GOMAXPROCS(0)
}

// allocateWarehouse runs the greedy pass for a single warehouse. Orders are
// processed strictly in priority order since each decision depends on the
// totals left by earlier commits.
func (e *Engine) allocateWarehouse(b warehouseBatch) warehouseOutcome {
	sorted := slices.Clone(b.orders)
	slices.SortStableFunc(sorted, func(x, y domain.Order) int {
		return cmp.Compare(y.Priority.Weight(), x.Priority.Weight())
	})

	slots := make([]agentSlot, len(b.agents))
	for i, a := range b.agents {
		slots[i] = agentSlot{
			agent: a,
			allocation: domain.AgentAllocation{
				AgentID:      a.ID,
				OrderIDs:     []int{},
				EstimatedPay: e.Limits.MinimumGuarantee,
			},
		}
	}

	out := warehouseOutcome{
		allocated: make([]int, 0, len(sorted)),
		postponed: []int{},
	}

	for _, order := range sorted {
		idx := findBestAgent(e.Limits, slots, order)
		if idx < 0 {
			out.postponed = append(out.postponed, order.ID)
			continue
		}

		slot := &slots[idx]
		p := project(e.Limits, slot, order)
		if !e.Limits.Within(p.totalTimeMin, p.totalDistanceKm) {
			out.postponed = append(out.postponed, order.ID)
			continue
		}

		slot.allocation.OrderIDs = append(slot.allocation.OrderIDs, order.ID)
		slot.allocation.TotalTimeMin = p.totalTimeMin
		slot.allocation.TotalDistanceKm = p.totalDistanceKm
		slot.allocation.EstimatedPay = e.Limits.Pay(len(slot.allocation.OrderIDs))

		out.allocated = append(out.allocated, order.ID)
	}

	out.allocations = make([]domain.AgentAllocation, 0, len(slots))
	for _, s := range slots {
		out.cost += s.allocation.EstimatedPay
		out.allocations = append(out.allocations, s.allocation)
	}

	return out
}

package domain

import "time"

// AgentAllocation is the running assignment state of one agent within a run.
// OrderIDs keeps commit order.
type AgentAllocation struct {
	AgentID         int
	OrderIDs        []int
	TotalDistanceKm float64
	TotalTimeMin    float64
	EstimatedPay    float64
}

// AllocationResult is the output of one engine invocation.
//
// AgentAllocations lists only agents holding at least one order, while TotalCost
// covers every checked-in agent considered, including those paid only the
// minimum guarantee.
type AllocationResult struct {
	AgentAllocations []AgentAllocation
	AllocatedOrders  []int
	PostponedOrders  []int
	TotalCost        float64
}

// AllocationRun is a persisted engine invocation.
type AllocationRun struct {
	RunID  string
	RunAt  time.Time
	Result AllocationResult
}

// RunDate is the calendar day a run replaces allocations for.
func (r AllocationRun) RunDate() string {
	return r.RunAt.UTC().Format(time.DateOnly)
}

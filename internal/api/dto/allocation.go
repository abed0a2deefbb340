package dto

type AgentAllocationResponse struct {
	AgentID       int     `json:"agent_id"`
	Orders        []int   `json:"orders"`
	TotalDistance float64 `json:"total_distance"`
	TotalTime     float64 `json:"total_time"`
	EstimatedPay  float64 `json:"estimated_pay"`
}

type AllocationResponse struct {
	AgentAllocations []AgentAllocationResponse `json:"agent_allocations"`
	AllocatedOrders  []int                     `json:"allocated_orders"`
	PostponedOrders  []int                     `json:"postponed_orders"`
	TotalCost        float64                   `json:"total_cost"`
}

type RunAllocationResponse struct {
	RunID   string `json:"run_id"`
	RunDate string `json:"run_date"`
	AllocationResponse
}

// PreviewRequest carries a complete fleet snapshot to allocate without persisting.
type PreviewRequest struct {
	Warehouses []Warehouse `json:"warehouses"`
	Agents     []Agent     `json:"agents"`
	Orders     []Order     `json:"orders"`
}

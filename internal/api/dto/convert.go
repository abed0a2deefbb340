package dto

import (
	"delivery-allocation-service/internal/domain"
	"fmt"
	"strings"
)

func FromWarehouse(w domain.Warehouse) Warehouse {
	return Warehouse{
		ID:        w.ID,
		Name:      w.Name,
		Latitude:  w.Location.Lat,
		Longitude: w.Location.Lng,
		Capacity:  w.Capacity,
	}
}

func FromAgent(a domain.Agent) Agent {
	active := a.Active
	out := Agent{
		ID:          a.ID,
		Name:        a.Name,
		WarehouseID: a.WarehouseID,
		Phone:       a.Phone,
		IsActive:    &active,
		CheckedIn:   a.CheckedIn,
	}
	if a.HasLocation {
		lat, lng := a.Location.Lat, a.Location.Lng
		out.Latitude, out.Longitude = &lat, &lng
	}
	return out
}

func FromOrder(o domain.Order) Order {
	return Order{
		ID:            o.ID,
		WarehouseID:   o.WarehouseID,
		Address:       o.Address,
		Latitude:      o.Location.Lat,
		Longitude:     o.Location.Lng,
		Priority:      string(o.Priority),
		EstimatedTime: o.EstimatedTimeMinutes,
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt,
	}
}

func FromResult(res domain.AllocationResult) AllocationResponse {
	out := AllocationResponse{
		AgentAllocations: make([]AgentAllocationResponse, 0, len(res.AgentAllocations)),
		AllocatedOrders:  orEmpty(res.AllocatedOrders),
		PostponedOrders:  orEmpty(res.PostponedOrders),
		TotalCost:        res.TotalCost,
	}
	for _, a := range res.AgentAllocations {
		out.AgentAllocations = append(out.AgentAllocations, AgentAllocationResponse{
			AgentID:       a.AgentID,
			Orders:        orEmpty(a.OrderIDs),
			TotalDistance: a.TotalDistanceKm,
			TotalTime:     a.TotalTimeMin,
			EstimatedPay:  a.EstimatedPay,
		})
	}
	return out
}

// ToDomain validates the snapshot and converts it for the engine.
// Inactive agents are dropped; agents without both coordinates are placed at (0, 0).
func (p PreviewRequest) ToDomain() ([]domain.Agent, []domain.Order, []domain.Warehouse, error) {
	warehouses := make([]domain.Warehouse, 0, len(p.Warehouses))
	for _, w := range p.Warehouses {
		warehouses = append(warehouses, domain.Warehouse{
			ID:       w.ID,
			Name:     w.Name,
			Location: domain.Coordinates{Lat: w.Latitude, Lng: w.Longitude},
			Capacity: w.Capacity,
		})
	}

	agents := make([]domain.Agent, 0, len(p.Agents))
	for _, a := range p.Agents {
		if a.IsActive != nil && !*a.IsActive {
			continue
		}
		agent := domain.Agent{
			ID:          a.ID,
			Name:        a.Name,
			WarehouseID: a.WarehouseID,
			Phone:       a.Phone,
			Active:      true,
			CheckedIn:   a.CheckedIn,
		}
		if a.Latitude != nil && a.Longitude != nil {
			agent.HasLocation = true
			agent.Location = domain.Coordinates{Lat: *a.Latitude, Lng: *a.Longitude}
		}
		agents = append(agents, agent)
	}

	seen := make(map[int]struct{}, len(p.Orders))
	orders := make([]domain.Order, 0, len(p.Orders))
	for _, o := range p.Orders {
		if _, dup := seen[o.ID]; dup {
			return nil, nil, nil, fmt.Errorf("duplicate order id %d", o.ID)
		}
		seen[o.ID] = struct{}{}

		raw := o.Priority
		if strings.TrimSpace(raw) == "" {
			raw = string(domain.PriorityMedium)
		}
		priority, err := domain.ParsePriority(raw)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("order %d: %w", o.ID, err)
		}
		if o.EstimatedTime < 0 {
			return nil, nil, nil, fmt.Errorf("order %d: estimated_time must not be negative", o.ID)
		}

		orders = append(orders, domain.Order{
			ID:                   o.ID,
			WarehouseID:          o.WarehouseID,
			Address:              o.Address,
			Location:             domain.Coordinates{Lat: o.Latitude, Lng: o.Longitude},
			Priority:             priority,
			EstimatedTimeMinutes: o.EstimatedTime,
			Status:               domain.OrderPending,
			CreatedAt:            o.CreatedAt,
		})
	}

	return agents, orders, warehouses, nil
}

func orEmpty(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return ids
}

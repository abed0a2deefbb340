package ports

import (
	"context"
	"delivery-allocation-service/internal/domain"
)

// Port: a boundary for retrieving warehouses, agents, and orders from a data source.
type FleetRepository interface {
	ListWarehouses(ctx context.Context) ([]domain.Warehouse, error)
	ListAgents(ctx context.Context) ([]domain.Agent, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	// Retrieve orders not yet dispatched or delivered; these are re-planned by every run.
	ListOpenOrders(ctx context.Context) ([]domain.Order, error)
}

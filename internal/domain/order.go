package domain

import (
	"fmt"
	"strings"
	"time"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Weight orders priorities for sorting; higher is served first.
// Unknown priorities weigh zero and sort after low.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// ParsePriority normalizes a stored or user-supplied priority.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if p.Weight() == 0 {
		return "", fmt.Errorf("parse priority: unknown priority %q", s)
	}
	return p, nil
}

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderAllocated  OrderStatus = "allocated"
	OrderDispatched OrderStatus = "dispatched"
	OrderDelivered  OrderStatus = "delivered"
	OrderPostponed  OrderStatus = "postponed"
)

// Order is a single delivery belonging to exactly one warehouse.
type Order struct {
	ID                   int
	WarehouseID          int
	Address              string
	Location             Coordinates
	Priority             Priority
	EstimatedTimeMinutes float64
	Status               OrderStatus
	CreatedAt            time.Time
}

// ParseOrderStatus normalizes a stored or user-supplied order status.
func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case OrderPending, OrderAllocated, OrderDispatched, OrderDelivered, OrderPostponed:
		return st, nil
	default:
		return "", fmt.Errorf("parse order status: unknown status %q", s)
	}
}

package repositories

import (
	"context"
	"database/sql"
	"delivery-allocation-service/internal/domain"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQL-backed implementation of the FleetRepository port.
type SQLFleetRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewSQLFleetRepository(db *sql.DB, d Dialect) *SQLFleetRepository {
	return &SQLFleetRepository{DB: db, Dialect: d}
}

// Return all warehouses ordered by id.
func (s *SQLFleetRepository) ListWarehouses(ctx context.Context) ([]domain.Warehouse, error) {
	if s.DB == nil {
		return nil, errors.New("sql fleet repository: DB is nil")
	}

	query := `
	SELECT
		id,
		name,
		latitude,
		longitude,
		capacity
	FROM warehouses
	ORDER BY id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: query warehouses table: %w", err)
	}
	defer rows.Close()

	warehouses := make([]domain.Warehouse, 0, 16)
	for rows.Next() {
		var w domain.Warehouse
		if err := rows.Scan(&w.ID, &w.Name, &w.Location.Lat, &w.Location.Lng, &w.Capacity); err != nil {
			return nil, fmt.Errorf("list warehouses: scan row: %w", err)
		}
		warehouses = append(warehouses, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list warehouses: row iteration: %w", err)
	}

	return warehouses, nil
}

// Return all agents ordered by id. Agents without a stored position have
// HasLocation false and are placed at (0, 0).
func (s *SQLFleetRepository) ListAgents(ctx context.Context) ([]domain.Agent, error) {
	if s.DB == nil {
		return nil, errors.New("sql fleet repository: DB is nil")
	}

	query := `
	SELECT
		id,
		name,
		warehouse_id,
		phone,
		is_active,
		checked_in,
		latitude,
		longitude
	FROM agents
	ORDER BY id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list agents: query agents table: %w", err)
	}
	defer rows.Close()

	agents := make([]domain.Agent, 0, 64)
	for rows.Next() {
		var (
			a        domain.Agent
			phone    sql.NullString
			lat, lng sql.NullFloat64
		)
		if err := rows.Scan(&a.ID, &a.Name, &a.WarehouseID, &phone, &a.Active, &a.CheckedIn, &lat, &lng); err != nil {
			return nil, fmt.Errorf("list agents: scan row: %w", err)
		}
		a.Phone = phone.String
		a.HasLocation = lat.Valid && lng.Valid
		a.Location = domain.Coordinates{Lat: lat.Float64, Lng: lng.Float64}
		agents = append(agents, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list agents: row iteration: %w", err)
	}

	return agents, nil
}

// Return all orders ordered by id.
func (s *SQLFleetRepository) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.listOrders(ctx, "", nil)
}

// Return orders that are neither dispatched nor delivered, ordered by id.
func (s *SQLFleetRepository) ListOpenOrders(ctx context.Context) ([]domain.Order, error) {
	return s.listOrders(ctx,
		"WHERE status <> ? AND status <> ?",
		[]any{string(domain.OrderDispatched), string(domain.OrderDelivered)},
	)
}

func (s *SQLFleetRepository) listOrders(ctx context.Context, where string, args []any) ([]domain.Order, error) {
	if s.DB == nil {
		return nil, errors.New("sql fleet repository: DB is nil")
	}

	query := fmt.Sprintf(`
	SELECT
		id,
		warehouse_id,
		customer_address,
		latitude,
		longitude,
		priority,
		estimated_time,
		status,
		created_at
	FROM orders
	%s
	ORDER BY id;
	`, where)

	rows, err := s.DB.QueryContext(ctx, s.Dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: query orders table: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, 128)
	for rows.Next() {
		var (
			o                           domain.Order
			priority, status, createdAt string
		)
		if err := rows.Scan(&o.ID, &o.WarehouseID, &o.Address, &o.Location.Lat, &o.Location.Lng, &priority, &o.EstimatedTimeMinutes, &status, &createdAt); err != nil {
			return nil, fmt.Errorf("list orders: scan row: %w", err)
		}
		ts, err := time.Parse(timestampLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("list orders: order id=%d: parse created_at %q: %w", o.ID, createdAt, err)
		}
		o.CreatedAt = ts
		o.Priority = domain.Priority(strings.ToLower(priority))
		o.Status = domain.OrderStatus(status)
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: row iteration: %w", err)
	}

	return orders, nil
}

package repositories

import (
	"database/sql"
	"delivery-allocation-service/internal/domain"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Fixed-width UTC timestamps so stored times sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000000Z"

// Initialize the database schema. The DDL is valid for both SQLite and Postgres.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createWarehousesQuery := `
	CREATE TABLE IF NOT EXISTS warehouses (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		capacity INTEGER NOT NULL DEFAULT 1200
	);
	`

	createAgentsQuery := `
	CREATE TABLE IF NOT EXISTS agents (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		warehouse_id INTEGER NOT NULL,
		phone TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		checked_in BOOLEAN NOT NULL DEFAULT FALSE,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION
	);
	`

	createOrdersQuery := `
	CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY,
		warehouse_id INTEGER NOT NULL,
		customer_address TEXT NOT NULL,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		priority TEXT NOT NULL DEFAULT 'medium',
		estimated_time DOUBLE PRECISION NOT NULL DEFAULT 20,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TEXT NOT NULL
	);
	`

	createRunsQuery := `
	CREATE TABLE IF NOT EXISTS allocation_runs (
		run_id TEXT PRIMARY KEY,
		run_date TEXT NOT NULL,
		run_at TEXT NOT NULL,
		total_cost DOUBLE PRECISION NOT NULL,
		allocated_count INTEGER NOT NULL,
		postponed_count INTEGER NOT NULL
	);
	`

	createAllocationsQuery := `
	CREATE TABLE IF NOT EXISTS allocations (
		run_id TEXT NOT NULL,
		run_date TEXT NOT NULL,
		agent_rank INTEGER NOT NULL,
		order_seq INTEGER NOT NULL,
		agent_id INTEGER NOT NULL,
		order_id INTEGER NOT NULL,
		total_distance DOUBLE PRECISION NOT NULL,
		total_time DOUBLE PRECISION NOT NULL,
		estimated_pay DOUBLE PRECISION NOT NULL,
		allocated_at TEXT NOT NULL,
		PRIMARY KEY (run_id, order_id)
	);
	`

	createPostponedQuery := `
	CREATE TABLE IF NOT EXISTS postponed_orders (
		run_id TEXT NOT NULL,
		run_date TEXT NOT NULL,
		seq INTEGER NOT NULL,
		order_id INTEGER NOT NULL,
		PRIMARY KEY (run_id, order_id)
	);
	`

	createIndexQueries := []string{
		`CREATE INDEX IF NOT EXISTS idx_agents_warehouse ON agents(warehouse_id);`,
		`CREATE INDEX IF NOT EXISTS idx_orders_warehouse_status ON orders(warehouse_id, status);`,
		`CREATE INDEX IF NOT EXISTS idx_allocation_runs_date ON allocation_runs(run_date, run_at);`,
		`CREATE INDEX IF NOT EXISTS idx_allocations_run_date ON allocations(run_date);`,
		`CREATE INDEX IF NOT EXISTS idx_postponed_orders_run_date ON postponed_orders(run_date);`,
	}

	statements := append([]string{
		createWarehousesQuery,
		createAgentsQuery,
		createOrdersQuery,
		createRunsQuery,
		createAllocationsQuery,
		createPostponedQuery,
	}, createIndexQueries...)

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type WarehouseSeed struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Capacity  int     `json:"capacity"`
}

type AgentSeed struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	WarehouseID int      `json:"warehouse_id"`
	Phone       string   `json:"phone"`
	IsActive    *bool    `json:"is_active"`
	CheckedIn   bool     `json:"checked_in"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

type OrderSeed struct {
	ID            int        `json:"id"`
	WarehouseID   int        `json:"warehouse_id"`
	Address       string     `json:"address"`
	Latitude      float64    `json:"latitude"`
	Longitude     float64    `json:"longitude"`
	Priority      string     `json:"priority"`
	EstimatedTime float64    `json:"estimated_time"`
	Status        string     `json:"status"`
	CreatedAt     *time.Time `json:"created_at"`
}

// FleetSeed is the JSON document accepted by SeedFromJSON.
type FleetSeed struct {
	Warehouses []WarehouseSeed `json:"warehouses"`
	Agents     []AgentSeed     `json:"agents"`
	Orders     []OrderSeed     `json:"orders"`
}

// Populate the database with fleet data from a JSON file.
func SeedFromJSON(db *sql.DB, d Dialect, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed fleet: read %q: %w", jsonPath, err)
	}

	var data FleetSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed fleet: parse json: %w", err)
	}

	return Seed(db, d, data)
}

// Seed validates and upserts a fleet snapshot in one transaction.
// Existing orders keep their lifecycle status; seed status applies to new orders only.
func Seed(db *sql.DB, d Dialect, data FleetSeed) error {
	if err := normalizeSeed(&data); err != nil {
		return fmt.Errorf("seed fleet: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed fleet: begin tx: %w", err)
	}
	defer tx.Rollback()

	warehouseStmt, err := tx.Prepare(d.Rebind(`
	INSERT INTO warehouses (id, name, latitude, longitude, capacity)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE
	SET name = excluded.name,
		latitude = excluded.latitude,
		longitude = excluded.longitude,
		capacity = excluded.capacity;
	`))
	if err != nil {
		return fmt.Errorf("seed fleet: prepare warehouse insert: %w", err)
	}
	defer warehouseStmt.Close()

	for _, w := range data.Warehouses {
		if _, err := warehouseStmt.Exec(w.ID, w.Name, w.Latitude, w.Longitude, w.Capacity); err != nil {
			return fmt.Errorf("seed fleet: insert warehouse id=%d: %w", w.ID, err)
		}
	}

	agentStmt, err := tx.Prepare(d.Rebind(`
	INSERT INTO agents (id, name, warehouse_id, phone, is_active, checked_in, latitude, longitude)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE
	SET name = excluded.name,
		warehouse_id = excluded.warehouse_id,
		phone = excluded.phone,
		is_active = excluded.is_active,
		checked_in = excluded.checked_in,
		latitude = excluded.latitude,
		longitude = excluded.longitude;
	`))
	if err != nil {
		return fmt.Errorf("seed fleet: prepare agent insert: %w", err)
	}
	defer agentStmt.Close()

	for _, a := range data.Agents {
		if _, err := agentStmt.Exec(a.ID, a.Name, a.WarehouseID, a.Phone, *a.IsActive, a.CheckedIn, a.Latitude, a.Longitude); err != nil {
			return fmt.Errorf("seed fleet: insert agent id=%d: %w", a.ID, err)
		}
	}

	orderStmt, err := tx.Prepare(d.Rebind(`
	INSERT INTO orders (id, warehouse_id, customer_address, latitude, longitude, priority, estimated_time, status, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE
	SET warehouse_id = excluded.warehouse_id,
		customer_address = excluded.customer_address,
		latitude = excluded.latitude,
		longitude = excluded.longitude,
		priority = excluded.priority,
		estimated_time = excluded.estimated_time;
	`))
	if err != nil {
		return fmt.Errorf("seed fleet: prepare order insert: %w", err)
	}
	defer orderStmt.Close()

	for _, o := range data.Orders {
		createdAt := o.CreatedAt.UTC().Format(timestampLayout)
		if _, err := orderStmt.Exec(o.ID, o.WarehouseID, o.Address, o.Latitude, o.Longitude, o.Priority, o.EstimatedTime, o.Status, createdAt); err != nil {
			return fmt.Errorf("seed fleet: insert order id=%d: %w", o.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed fleet: commit tx: %w", err)
	}

	return nil
}

// normalizeSeed validates ids and fills defaults in place.
func normalizeSeed(data *FleetSeed) error {
	now := time.Now().UTC()

	for i := range data.Warehouses {
		w := &data.Warehouses[i]
		if w.ID <= 0 {
			return fmt.Errorf("invalid warehouse id at index %d: %d", i+1, w.ID)
		}
		w.Name = strings.TrimSpace(w.Name)
		if w.Name == "" {
			return fmt.Errorf("warehouse at index %d: name cannot be empty", i+1)
		}
		if w.Capacity == 0 {
			w.Capacity = 1200
		}
	}

	for i := range data.Agents {
		a := &data.Agents[i]
		if a.ID <= 0 {
			return fmt.Errorf("invalid agent id at index %d: %d", i+1, a.ID)
		}
		if a.WarehouseID <= 0 {
			return fmt.Errorf("agent id=%d: invalid warehouse id %d", a.ID, a.WarehouseID)
		}
		if a.IsActive == nil {
			active := true
			a.IsActive = &active
		}
	}

	for i := range data.Orders {
		o := &data.Orders[i]
		if o.ID <= 0 {
			return fmt.Errorf("invalid order id at index %d: %d", i+1, o.ID)
		}
		o.Address = strings.TrimSpace(o.Address)
		if o.Address == "" {
			return fmt.Errorf("order id=%d: address cannot be empty", o.ID)
		}

		if o.Priority == "" {
			o.Priority = string(domain.PriorityMedium)
		}
		p, err := domain.ParsePriority(o.Priority)
		if err != nil {
			return fmt.Errorf("order id=%d: %w", o.ID, err)
		}
		o.Priority = string(p)

		if o.EstimatedTime == 0 {
			o.EstimatedTime = 20
		}
		if o.EstimatedTime < 0 {
			return fmt.Errorf("order id=%d: estimated_time must not be negative", o.ID)
		}
		if o.Status == "" {
			o.Status = string(domain.OrderPending)
		}
		st, err := domain.ParseOrderStatus(o.Status)
		if err != nil {
			return fmt.Errorf("order id=%d: %w", o.ID, err)
		}
		o.Status = string(st)

		if o.CreatedAt == nil {
			o.CreatedAt = &now
		}
	}

	return nil
}

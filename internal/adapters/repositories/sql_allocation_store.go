package repositories

import (
	"context"
	"database/sql"
	"delivery-allocation-service/internal/domain"
	"delivery-allocation-service/internal/platform/obs"
	"delivery-allocation-service/internal/ports"
	"errors"
	"fmt"
	"slices"
	"time"
)

// SQLAllocationStore persists allocation runs. A run replaces every stored run
// of the same calendar day.
type SQLAllocationStore struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewSQLAllocationStore(db *sql.DB, d Dialect) *SQLAllocationStore {
	return &SQLAllocationStore{DB: db, Dialect: d}
}

func (s *SQLAllocationStore) SaveRun(ctx context.Context, run domain.AllocationRun) (err error) {
	defer obs.Time(ctx, "allocation.store.SaveRun")(&err)

	if s.DB == nil {
		return errors.New("allocation store: db is nil")
	}
	if run.RunID == "" {
		return errors.New("save allocation run: run id must not be empty")
	}

	runDate := run.RunDate()
	runAt := run.RunAt.UTC().Format(timestampLayout)
	res := run.Result

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save allocation run: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"allocations", "postponed_orders", "allocation_runs"} {
		q := s.Dialect.Rebind("DELETE FROM " + table + " WHERE run_date = ?;")
		if _, err := tx.ExecContext(ctx, q, runDate); err != nil {
			return fmt.Errorf("save allocation run: clear %s for %s: %w", table, runDate, err)
		}
	}

	if _, err := tx.ExecContext(ctx, s.Dialect.Rebind(`
	INSERT INTO allocation_runs (run_id, run_date, run_at, total_cost, allocated_count, postponed_count)
	VALUES (?, ?, ?, ?, ?, ?);
	`), run.RunID, runDate, runAt, res.TotalCost, len(res.AllocatedOrders), len(res.PostponedOrders)); err != nil {
		return fmt.Errorf("save allocation run: insert run: %w", err)
	}

	seq := make(map[int]int, len(res.AllocatedOrders))
	for i, id := range res.AllocatedOrders {
		seq[id] = i
	}

	allocStmt, err := tx.PrepareContext(ctx, s.Dialect.Rebind(`
	INSERT INTO allocations (
		run_id, run_date, agent_rank, order_seq, agent_id, order_id,
		total_distance, total_time, estimated_pay, allocated_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("save allocation run: prepare allocation insert: %w", err)
	}
	defer allocStmt.Close()

	for rank, a := range res.AgentAllocations {
		for _, orderID := range a.OrderIDs {
			pos, ok := seq[orderID]
			if !ok {
				return fmt.Errorf("save allocation run: order %d of agent %d missing from allocated orders", orderID, a.AgentID)
			}
			if _, err := allocStmt.ExecContext(ctx,
				run.RunID, runDate, rank, pos, a.AgentID, orderID,
				a.TotalDistanceKm, a.TotalTimeMin, a.EstimatedPay, runAt,
			); err != nil {
				return fmt.Errorf("save allocation run: insert allocation order_id=%d: %w", orderID, err)
			}
		}
	}

	postponeStmt, err := tx.PrepareContext(ctx, s.Dialect.Rebind(`
	INSERT INTO postponed_orders (run_id, run_date, seq, order_id)
	VALUES (?, ?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("save allocation run: prepare postponed insert: %w", err)
	}
	defer postponeStmt.Close()

	for i, orderID := range res.PostponedOrders {
		if _, err := postponeStmt.ExecContext(ctx, run.RunID, runDate, i, orderID); err != nil {
			return fmt.Errorf("save allocation run: insert postponed order_id=%d: %w", orderID, err)
		}
	}

	statusStmt, err := tx.PrepareContext(ctx, s.Dialect.Rebind(`UPDATE orders SET status = ? WHERE id = ?;`))
	if err != nil {
		return fmt.Errorf("save allocation run: prepare status update: %w", err)
	}
	defer statusStmt.Close()

	updates := []struct {
		status domain.OrderStatus
		ids    []int
	}{
		{domain.OrderAllocated, res.AllocatedOrders},
		{domain.OrderPostponed, res.PostponedOrders},
	}
	for _, u := range updates {
		for _, id := range u.ids {
			if _, err := statusStmt.ExecContext(ctx, string(u.status), id); err != nil {
				return fmt.Errorf("save allocation run: set order %d %s: %w", id, u.status, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save allocation run: commit: %w", err)
	}

	return nil
}

// LatestRunID returns the id of the most recent run, or ports.ErrNotFound when
// no run has been stored.
func (s *SQLAllocationStore) LatestRunID(ctx context.Context) (string, error) {
	if s.DB == nil {
		return "", errors.New("allocation store: db is nil")
	}

	var runID string
	err := s.DB.QueryRowContext(ctx, `
	SELECT run_id
	FROM allocation_runs
	ORDER BY run_at DESC
	LIMIT 1;
	`).Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("latest allocation run id: %w", ports.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("latest allocation run id: query runs: %w", err)
	}

	return runID, nil
}

// LatestRun rebuilds the most recent run. It returns ports.ErrNotFound when
// no run has been stored.
func (s *SQLAllocationStore) LatestRun(ctx context.Context) (_ domain.AllocationRun, err error) {
	defer obs.Time(ctx, "allocation.store.LatestRun")(&err)

	if s.DB == nil {
		return domain.AllocationRun{}, errors.New("allocation store: db is nil")
	}

	var (
		runID, runAt string
		totalCost    float64
	)
	err = s.DB.QueryRowContext(ctx, `
	SELECT run_id, run_at, total_cost
	FROM allocation_runs
	ORDER BY run_at DESC
	LIMIT 1;
	`).Scan(&runID, &runAt, &totalCost)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AllocationRun{}, fmt.Errorf("latest allocation: %w", ports.ErrNotFound)
	}
	if err != nil {
		return domain.AllocationRun{}, fmt.Errorf("latest allocation: query runs: %w", err)
	}

	at, err := time.Parse(timestampLayout, runAt)
	if err != nil {
		return domain.AllocationRun{}, fmt.Errorf("latest allocation: parse run_at %q: %w", runAt, err)
	}

	result := domain.AllocationResult{
		AgentAllocations: []domain.AgentAllocation{},
		AllocatedOrders:  []int{},
		PostponedOrders:  []int{},
		TotalCost:        totalCost,
	}

	rows, err := s.DB.QueryContext(ctx, s.Dialect.Rebind(`
	SELECT agent_rank, agent_id, order_id, total_distance, total_time, estimated_pay
	FROM allocations
	WHERE run_id = ?
	ORDER BY order_seq;
	`), runID)
	if err != nil {
		return domain.AllocationRun{}, fmt.Errorf("latest allocation: query allocations: %w", err)
	}
	defer rows.Close()

	byRank := map[int]*domain.AgentAllocation{}
	for rows.Next() {
		var (
			rank, agentID, orderID int
			dist, minutes, pay     float64
		)
		if err := rows.Scan(&rank, &agentID, &orderID, &dist, &minutes, &pay); err != nil {
			return domain.AllocationRun{}, fmt.Errorf("latest allocation: scan allocation: %w", err)
		}

		a, ok := byRank[rank]
		if !ok {
			a = &domain.AgentAllocation{
				AgentID:         agentID,
				OrderIDs:        []int{},
				TotalDistanceKm: dist,
				TotalTimeMin:    minutes,
				EstimatedPay:    pay,
			}
			byRank[rank] = a
		}
		a.OrderIDs = append(a.OrderIDs, orderID)
		result.AllocatedOrders = append(result.AllocatedOrders, orderID)
	}
	if err := rows.Err(); err != nil {
		return domain.AllocationRun{}, fmt.Errorf("latest allocation: allocation iteration: %w", err)
	}

	ranks := make([]int, 0, len(byRank))
	for r := range byRank {
		ranks = append(ranks, r)
	}
	slices.Sort(ranks)
	for _, r := range ranks {
		result.AgentAllocations = append(result.AgentAllocations, *byRank[r])
	}

	prow, err := s.DB.QueryContext(ctx, s.Dialect.Rebind(`
	SELECT order_id
	FROM postponed_orders
	WHERE run_id = ?
	ORDER BY seq;
	`), runID)
	if err != nil {
		return domain.AllocationRun{}, fmt.Errorf("latest allocation: query postponed: %w", err)
	}
	defer prow.Close()

	for prow.Next() {
		var id int
		if err := prow.Scan(&id); err != nil {
			return domain.AllocationRun{}, fmt.Errorf("latest allocation: scan postponed: %w", err)
		}
		result.PostponedOrders = append(result.PostponedOrders, id)
	}
	if err := prow.Err(); err != nil {
		return domain.AllocationRun{}, fmt.Errorf("latest allocation: postponed iteration: %w", err)
	}

	return domain.AllocationRun{RunID: runID, RunAt: at, Result: result}, nil
}

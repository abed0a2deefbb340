package services

import (
	"delivery-allocation-service/internal/domain"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = domain.Coordinates{Lat: 19.0760, Lng: 72.8777}

func agentAt(id, warehouseID int, loc domain.Coordinates) domain.Agent {
	return domain.Agent{ID: id, Name: "agent", WarehouseID: warehouseID, Active: true, CheckedIn: true, Location: loc}
}

func orderAt(id, warehouseID int, loc domain.Coordinates, p domain.Priority, minutes float64) domain.Order {
	return domain.Order{ID: id, WarehouseID: warehouseID, Location: loc, Priority: p, EstimatedTimeMinutes: minutes, Status: domain.OrderPending}
}

func TestAllocateSingleWarehouseScenario(t *testing.T) {
	warehouses := []domain.Warehouse{{ID: 1, Name: "W1", Location: base, Capacity: 1200}}
	agents := []domain.Agent{agentAt(1, 1, base), agentAt(2, 1, base)}
	orders := []domain.Order{
		orderAt(1, 1, base, domain.PriorityHigh, 10),
		orderAt(2, 1, base, domain.PriorityHigh, 10),
		orderAt(3, 1, base, domain.PriorityHigh, 10),
	}

	res := Allocate(agents, orders, warehouses)

	require.Len(t, res.AgentAllocations, 1)
	got := res.AgentAllocations[0]
	assert.Equal(t, 1, got.AgentID)
	assert.Equal(t, []int{1, 2, 3}, got.OrderIDs)
	assert.InDelta(t, 30.0, got.TotalTimeMin, 1e-9)
	assert.InDelta(t, 0.0, got.TotalDistanceKm, 1e-9)
	assert.Equal(t, 500.0, got.EstimatedPay)

	assert.Equal(t, []int{1, 2, 3}, res.AllocatedOrders)
	assert.Empty(t, res.PostponedOrders)
	assert.Equal(t, 1000.0, res.TotalCost)
}

func TestAllocatePrefersLowerMarginalPay(t *testing.T) {
	warehouses := []domain.Warehouse{{ID: 1, Location: base}}
	agents := []domain.Agent{agentAt(1, 1, base), agentAt(2, 1, base)}

	var orders []domain.Order
	for i := 1; i <= 25; i++ {
		orders = append(orders, orderAt(i, 1, base, domain.PriorityMedium, 1))
	}

	res := Allocate(agents, orders, warehouses)

	// The 25th order would lift agent 1 into the first pay tier (+375), so it goes
	// to agent 2 at no marginal cost.
	require.Len(t, res.AgentAllocations, 2)
	assert.Len(t, res.AgentAllocations[0].OrderIDs, 24)
	assert.Equal(t, []int{25}, res.AgentAllocations[1].OrderIDs)
	assert.Equal(t, 1000.0, res.TotalCost)
}

func TestAllocateSingleAgentCrossesPayTier(t *testing.T) {
	warehouses := []domain.Warehouse{{ID: 1, Location: base}}
	agents := []domain.Agent{agentAt(1, 1, base)}

	var orders []domain.Order
	for i := 1; i <= 25; i++ {
		orders = append(orders, orderAt(i, 1, base, domain.PriorityLow, 1))
	}

	res := Allocate(agents, orders, warehouses)

	require.Len(t, res.AgentAllocations, 1)
	assert.Len(t, res.AgentAllocations[0].OrderIDs, 25)
	assert.Equal(t, 875.0, res.AgentAllocations[0].EstimatedPay)
	assert.Equal(t, 875.0, res.TotalCost)
}

func TestAllocateRespectsCaps(t *testing.T) {
	tests := []struct {
		name          string
		orderLoc      domain.Coordinates
		minutes       float64
		orders        int
		wantAllocated int
	}{
		{
			// ~4.89 km per leg: 20 legs stay under 100 km, the 21st breaks it.
			name:          "distance cap",
			orderLoc:      domain.Coordinates{Lat: base.Lat + 0.044, Lng: base.Lng},
			minutes:       0,
			orders:        25,
			wantAllocated: 20,
		},
		{
			// Six 100-minute orders land exactly on the 600 minute cap.
			name:          "working time cap is inclusive",
			orderLoc:      base,
			minutes:       100,
			orders:        8,
			wantAllocated: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agents := []domain.Agent{agentAt(1, 1, base)}
			var orders []domain.Order
			for i := 1; i <= tt.orders; i++ {
				orders = append(orders, orderAt(i, 1, tt.orderLoc, domain.PriorityHigh, tt.minutes))
			}

			res := Allocate(agents, orders, nil)

			assert.Len(t, res.AllocatedOrders, tt.wantAllocated)
			assert.Len(t, res.PostponedOrders, tt.orders-tt.wantAllocated)
			require.Len(t, res.AgentAllocations, 1)
			assert.LessOrEqual(t, res.AgentAllocations[0].TotalDistanceKm, domain.DefaultMaxDistanceKm)
			assert.LessOrEqual(t, res.AgentAllocations[0].TotalTimeMin, domain.DefaultMaxWorkingMinutes)
		})
	}
}

func TestAllocateStablePriorityOrder(t *testing.T) {
	agents := []domain.Agent{agentAt(1, 1, base)}
	orders := []domain.Order{
		orderAt(1, 1, base, domain.PriorityLow, 300),
		orderAt(2, 1, base, domain.PriorityHigh, 300),
		orderAt(3, 1, base, domain.PriorityMedium, 300),
		orderAt(4, 1, base, domain.PriorityHigh, 300),
	}

	res := Allocate(agents, orders, nil)

	assert.Equal(t, []int{2, 4}, res.AllocatedOrders)
	assert.Equal(t, []int{3, 1}, res.PostponedOrders)
}

func TestAllocateWarehouseWithoutCheckedInAgents(t *testing.T) {
	warehouses := []domain.Warehouse{{ID: 1, Location: base}, {ID: 2, Location: base}}
	offDuty := agentAt(3, 2, base)
	offDuty.CheckedIn = false
	agents := []domain.Agent{agentAt(1, 1, base), offDuty}
	orders := []domain.Order{
		orderAt(10, 1, base, domain.PriorityHigh, 10),
		orderAt(20, 2, base, domain.PriorityLow, 10),
		orderAt(21, 2, base, domain.PriorityHigh, 10),
	}

	res := Allocate(agents, orders, warehouses)

	assert.Equal(t, []int{10}, res.AllocatedOrders)
	assert.Equal(t, []int{21, 20}, res.PostponedOrders)
	assert.Equal(t, 500.0, res.TotalCost)
}

func TestAllocateOrderWithUnknownWarehouse(t *testing.T) {
	warehouses := []domain.Warehouse{{ID: 1, Location: base}}
	agents := []domain.Agent{agentAt(1, 1, base)}
	orders := []domain.Order{
		orderAt(1, 1, base, domain.PriorityHigh, 10),
		orderAt(2, 99, base, domain.PriorityHigh, 10),
	}

	res := Allocate(agents, orders, warehouses)

	assert.Equal(t, []int{1}, res.AllocatedOrders)
	assert.Equal(t, []int{2}, res.PostponedOrders)
}

func TestAllocateWarehouseWithoutOrdersAddsNoCost(t *testing.T) {
	warehouses := []domain.Warehouse{{ID: 1, Location: base}, {ID: 2, Location: base}}
	agents := []domain.Agent{agentAt(1, 1, base), agentAt(2, 1, base), agentAt(3, 2, base)}
	orders := []domain.Order{orderAt(1, 2, base, domain.PriorityHigh, 10)}

	res := Allocate(agents, orders, warehouses)

	require.Len(t, res.AgentAllocations, 1)
	assert.Equal(t, 3, res.AgentAllocations[0].AgentID)
	assert.Equal(t, 500.0, res.TotalCost)
}

func TestAllocateEmptyInputs(t *testing.T) {
	res := Allocate(nil, nil, nil)

	assert.NotNil(t, res.AgentAllocations)
	assert.Empty(t, res.AgentAllocations)
	assert.Empty(t, res.AllocatedOrders)
	assert.Empty(t, res.PostponedOrders)
	assert.Zero(t, res.TotalCost)
}

func TestAllocateDoesNotMutateInputs(t *testing.T) {
	agents := []domain.Agent{agentAt(1, 1, base), agentAt(2, 1, base)}
	orders := []domain.Order{
		orderAt(1, 1, base, domain.PriorityLow, 10),
		orderAt(2, 1, base, domain.PriorityHigh, 10),
	}
	agentsBefore := slices.Clone(agents)
	ordersBefore := slices.Clone(orders)

	_ = Allocate(agents, orders, nil)

	assert.Equal(t, agentsBefore, agents)
	assert.Equal(t, ordersBefore, orders)
}

// randomFleet builds a multi-warehouse fixture around Mumbai.
func randomFleet(seed int64) ([]domain.Agent, []domain.Order, []domain.Warehouse) {
	rng := rand.New(rand.NewSource(seed))
	priorities := []domain.Priority{domain.PriorityHigh, domain.PriorityMedium, domain.PriorityLow}

	var (
		warehouses []domain.Warehouse
		agents     []domain.Agent
		orders     []domain.Order
	)
	agentID, orderID := 1, 1
	for w := 1; w <= 6; w++ {
		loc := domain.Coordinates{
			Lat: base.Lat + (rng.Float64()-0.5)*0.2,
			Lng: base.Lng + (rng.Float64()-0.5)*0.2,
		}
		warehouses = append(warehouses, domain.Warehouse{ID: w, Location: loc, Capacity: 1200})

		// Warehouse 6 gets no agents at all.
		nAgents := 0
		if w != 6 {
			nAgents = 1 + rng.Intn(4)
		}
		for i := 0; i < nAgents; i++ {
			a := agentAt(agentID, w, domain.Coordinates{
				Lat: loc.Lat + (rng.Float64()-0.5)*0.01,
				Lng: loc.Lng + (rng.Float64()-0.5)*0.01,
			})
			a.CheckedIn = rng.Float64() > 0.2
			agents = append(agents, a)
			agentID++
		}

		for i := 0; i < 40+rng.Intn(40); i++ {
			orders = append(orders, orderAt(orderID, w, domain.Coordinates{
				Lat: loc.Lat + (rng.Float64()-0.5)*0.3,
				Lng: loc.Lng + (rng.Float64()-0.5)*0.3,
			}, priorities[rng.Intn(3)], float64(15+rng.Intn(21))))
			orderID++
		}
	}

	return agents, orders, warehouses
}

func TestAllocateProperties(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		agents, orders, warehouses := randomFleet(seed)
		res := Allocate(agents, orders, warehouses)

		orderWarehouse := map[int]int{}
		for _, o := range orders {
			orderWarehouse[o.ID] = o.WarehouseID
		}
		agentByID := map[int]domain.Agent{}
		for _, a := range agents {
			agentByID[a.ID] = a
		}

		// Completeness: allocated and postponed partition the input ids.
		seen := map[int]int{}
		for _, id := range res.AllocatedOrders {
			seen[id]++
		}
		for _, id := range res.PostponedOrders {
			seen[id]++
		}
		require.Len(t, seen, len(orders), "seed %d", seed)
		for id, n := range seen {
			require.Equal(t, 1, n, "seed %d order %d", seed, id)
		}

		checkedIn := map[int]int{}
		for _, a := range agents {
			if a.CheckedIn {
				checkedIn[a.WarehouseID]++
			}
		}

		var listed int
		for _, alloc := range res.AgentAllocations {
			a := agentByID[alloc.AgentID]
			require.True(t, a.CheckedIn)
			require.NotEmpty(t, alloc.OrderIDs)
			assert.LessOrEqual(t, alloc.TotalDistanceKm, domain.DefaultMaxDistanceKm)
			assert.LessOrEqual(t, alloc.TotalTimeMin, domain.DefaultMaxWorkingMinutes)
			assert.Equal(t, domain.Pay(len(alloc.OrderIDs)), alloc.EstimatedPay)
			for _, id := range alloc.OrderIDs {
				assert.Equal(t, a.WarehouseID, orderWarehouse[id], "seed %d order %d", seed, id)
				assert.Positive(t, checkedIn[orderWarehouse[id]])
			}
			listed += len(alloc.OrderIDs)
		}
		assert.Equal(t, len(res.AllocatedOrders), listed)

		// Total cost covers every checked-in agent of a warehouse with orders.
		var idle float64
		for w, n := range checkedIn {
			hasOrders := false
			for _, o := range orders {
				if o.WarehouseID == w {
					hasOrders = true
					break
				}
			}
			if hasOrders {
				idle += float64(n) * domain.DefaultMinimumGuarantee
			}
		}
		for _, alloc := range res.AgentAllocations {
			idle -= domain.DefaultMinimumGuarantee
			idle += alloc.EstimatedPay
		}
		assert.Equal(t, idle, res.TotalCost, "seed %d", seed)
	}
}

func TestAllocateIsDeterministicAcrossParallelism(t *testing.T) {
	agents, orders, warehouses := randomFleet(42)

	serial := (&Engine{Limits: domain.DefaultLimits(), Parallelism: 1}).Allocate(agents, orders, warehouses)
	parallel := (&Engine{Limits: domain.DefaultLimits(), Parallelism: 8}).Allocate(agents, orders, warehouses)

	assert.Equal(t, serial, parallel)
}

func TestEngineCustomLimits(t *testing.T) {
	limits := domain.DefaultLimits()
	limits.MaxWorkingMinutes = 25

	agents := []domain.Agent{agentAt(1, 1, base)}
	orders := []domain.Order{
		orderAt(1, 1, base, domain.PriorityHigh, 10),
		orderAt(2, 1, base, domain.PriorityHigh, 10),
		orderAt(3, 1, base, domain.PriorityHigh, 10),
	}

	res := NewEngine(limits).Allocate(agents, orders, nil)

	assert.Equal(t, []int{1, 2}, res.AllocatedOrders)
	assert.Equal(t, []int{3}, res.PostponedOrders)
}

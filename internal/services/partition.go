package services

import "delivery-allocation-service/internal/domain"

// warehouseBatch is the unit of independent allocation work.
type warehouseBatch struct {
	warehouseID int
	agents      []domain.Agent // checked-in only, input order
	orders      []domain.Order // input order
}

// partitionByWarehouse groups checked-in agents and orders by warehouse id.
//
// Only warehouses holding at least one order produce a batch; a batch may have no
// agents, in which case all of its orders are postponed. Batches follow the
// warehouse input order, then any warehouse id known only from orders in order of
// first appearance.
func partitionByWarehouse(
	agents []domain.Agent,
	orders []domain.Order,
	warehouses []domain.Warehouse,
) []warehouseBatch {
	agentsByWarehouse := make(map[int][]domain.Agent)
	for _, a := range agents {
		if !a.CheckedIn {
			continue
		}
		agentsByWarehouse[a.WarehouseID] = append(agentsByWarehouse[a.WarehouseID], a)
	}

	ordersByWarehouse := make(map[int][]domain.Order)
	for _, o := range orders {
		ordersByWarehouse[o.WarehouseID] = append(ordersByWarehouse[o.WarehouseID], o)
	}

	seen := make(map[int]struct{}, len(warehouses))
	keys := make([]int, 0, len(ordersByWarehouse))
	for _, w := range warehouses {
		if _, ok := seen[w.ID]; ok {
			continue
		}
		seen[w.ID] = struct{}{}
		keys = append(keys, w.ID)
	}
	for _, o := range orders {
		if _, ok := seen[o.WarehouseID]; ok {
			continue
		}
		seen[o.WarehouseID] = struct{}{}
		keys = append(keys, o.WarehouseID)
	}

	batches := make([]warehouseBatch, 0, len(ordersByWarehouse))
	for _, id := range keys {
		whOrders := ordersByWarehouse[id]
		if len(whOrders) == 0 {
			continue
		}
		batches = append(batches, warehouseBatch{
			warehouseID: id,
			agents:      agentsByWarehouse[id],
			orders:      whOrders,
		})
	}

	return batches
}

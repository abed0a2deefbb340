package repositories

import (
	"database/sql"
	platformdb "delivery-allocation-service/internal/platform/db"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := platformdb.Open(platformdb.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, InitSchema(db))
	return db
}

func ptr[T any](v T) *T { return &v }

func sampleSeed() FleetSeed {
	return FleetSeed{
		Warehouses: []WarehouseSeed{
			{ID: 1, Name: "Warehouse 1", Latitude: 19.0760, Longitude: 72.8777, Capacity: 1200},
			{ID: 2, Name: "Warehouse 2", Latitude: 19.1000, Longitude: 72.9000},
		},
		Agents: []AgentSeed{
			{ID: 1, Name: "Agent 1", WarehouseID: 1, Phone: "+919800000001", CheckedIn: true, Latitude: ptr(19.0760), Longitude: ptr(72.8777)},
			{ID: 2, Name: "Agent 2", WarehouseID: 1, CheckedIn: true, Latitude: ptr(19.0760), Longitude: ptr(72.8777)},
			{ID: 3, Name: "Agent 3", WarehouseID: 2, IsActive: ptr(false), CheckedIn: true},
		},
		Orders: []OrderSeed{
			{ID: 1, WarehouseID: 1, Address: "1, MG Road, Andheri", Latitude: 19.0760, Longitude: 72.8777, Priority: "high", EstimatedTime: 10},
			{ID: 2, WarehouseID: 1, Address: "2, MG Road, Andheri", Latitude: 19.0760, Longitude: 72.8777, Priority: "High", EstimatedTime: 10},
			{ID: 3, WarehouseID: 1, Address: "3, MG Road, Andheri", Latitude: 19.0760, Longitude: 72.8777, Priority: "high", EstimatedTime: 10},
			{ID: 4, WarehouseID: 2, Address: "4, Brigade Road, Juhu", Latitude: 19.1000, Longitude: 72.9000},
			{ID: 5, WarehouseID: 2, Address: "5, Brigade Road, Juhu", Latitude: 19.1000, Longitude: 72.9000, Priority: "low", Status: "delivered"},
		},
	}
}

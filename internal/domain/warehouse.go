package domain

// Warehouse is the partition key for agents and orders.
// Capacity is informational; the allocation engine does not enforce it.
type Warehouse struct {
	ID       int
	Name     string
	Location Coordinates
	Capacity int
}

package domain

// Agent is a delivery agent based at a single warehouse.
// Only checked-in agents receive orders during an allocation run.
type Agent struct {
	ID          int
	Name        string
	WarehouseID int
	Phone       string
	Active      bool
	CheckedIn   bool
	// HasLocation is false when no position is on record; Location is then
	// (0, 0) and allocation still measures from it.
	HasLocation bool
	Location    Coordinates
}

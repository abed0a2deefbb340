package dto

import "time"

type Warehouse struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Capacity  int     `json:"capacity"`
}

// Agent is used for both listings and preview input. A missing is_active
// counts as active. Coordinates are null when no position is on record.
type Agent struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	WarehouseID int      `json:"warehouse_id"`
	Phone       string   `json:"phone,omitempty"`
	IsActive    *bool    `json:"is_active,omitempty"`
	CheckedIn   bool     `json:"checked_in"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

type Order struct {
	ID            int       `json:"id"`
	WarehouseID   int       `json:"warehouse_id"`
	Address       string    `json:"address"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	Priority      string    `json:"priority"`
	EstimatedTime float64   `json:"estimated_time"`
	Status        string    `json:"status,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

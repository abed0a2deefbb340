package api

import (
	"delivery-allocation-service/internal/api/handlers"
	"delivery-allocation-service/internal/domain"
	"delivery-allocation-service/internal/platform/metrics"
	"delivery-allocation-service/internal/ports"
	"delivery-allocation-service/internal/services"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// RouterDeps are the collaborators handed to the HTTP handlers.
type RouterDeps struct {
	Fleet      ports.FleetRepository
	Allocation services.RunAllocationDeps
	Engine     *services.Engine
	RunLimiter *rate.Limiter
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d RouterDeps) http.Handler {
	mux := http.NewServeMux()

	engine := d.Engine
	if engine == nil {
		engine = services.NewEngine(domain.DefaultLimits())
	}

	fleetHandler := &handlers.FleetHandler{Repo: d.Fleet}
	allocHandler := &handlers.AllocationHandler{
		Deps:    d.Allocation,
		Engine:  engine,
		Limiter: d.RunLimiter,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/api/warehouses", fleetHandler.Warehouses)
	mux.HandleFunc("/api/agents", fleetHandler.Agents)
	mux.HandleFunc("/api/orders", fleetHandler.Orders)
	mux.HandleFunc("/api/allocations/run", allocHandler.Run)
	mux.HandleFunc("/api/allocations/all", allocHandler.Latest)
	mux.HandleFunc("/api/allocations/preview", allocHandler.Preview)
	mux.Handle("/metrics", metrics.Handler())

	return corsMiddleware(requestIDMiddleware(loggingMiddleware(mux)))
}

// NewRunLimiter allows perMinute persisted runs per minute with a burst of one.
// A non-positive rate disables throttling.
func NewRunLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}

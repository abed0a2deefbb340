package handlers

import (
	"delivery-allocation-service/internal/api/dto"
	"delivery-allocation-service/internal/ports"
	"delivery-allocation-service/internal/services"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// AllocationHandler runs, previews, and serves allocation results.
type AllocationHandler struct {
	Deps   services.RunAllocationDeps
	Engine *services.Engine

	// Limiter throttles persisted runs; nil disables throttling.
	Limiter *rate.Limiter

	// Now defaults to time.Now.
	Now func() time.Time
}

// Run allocates all open orders and stores the result as today's plan.
func (h *AllocationHandler) Run(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	if h.Limiter != nil && !h.Limiter.Allow() {
		writeError(w, r, http.StatusTooManyRequests, "allocation run rate limit exceeded")
		return
	}

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}

	run, err := services.RunAllocation(r.Context(), h.Deps, h.Engine, now())
	if err != nil {
		zap.L().Error("run allocation failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.RunAllocationResponse{
		RunID:              run.RunID,
		RunDate:            run.RunDate(),
		AllocationResponse: dto.FromResult(run.Result),
	})
}

// Latest returns the most recently stored allocation.
func (h *AllocationHandler) Latest(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	res, err := services.LatestResult(r.Context(), h.Deps)
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "no allocation has been run yet")
		return
	}
	if err != nil {
		zap.L().Error("latest allocation failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.FromResult(res))
}

// Preview allocates a caller-supplied snapshot without touching storage.
func (h *AllocationHandler) Preview(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.PreviewRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	agents, orders, warehouses, err := req.ToDomain()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res := h.Engine.Allocate(agents, orders, warehouses)
	writeJSON(w, r, http.StatusOK, dto.FromResult(res))
}

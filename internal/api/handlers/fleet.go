package handlers

import (
	"delivery-allocation-service/internal/api/dto"
	"delivery-allocation-service/internal/ports"
	"net/http"

	"go.uber.org/zap"
)

// FleetHandler exposes read-only warehouse, agent, and order listings as bare JSON arrays.
type FleetHandler struct {
	Repo ports.FleetRepository
}

func (h *FleetHandler) Warehouses(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	warehouses, err := h.Repo.ListWarehouses(r.Context())
	if err != nil {
		zap.L().Error("list warehouses failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := make([]dto.Warehouse, 0, len(warehouses))
	for _, wh := range warehouses {
		res = append(res, dto.FromWarehouse(wh))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *FleetHandler) Agents(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	agents, err := h.Repo.ListAgents(r.Context())
	if err != nil {
		zap.L().Error("list agents failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := make([]dto.Agent, 0, len(agents))
	for _, a := range agents {
		res = append(res, dto.FromAgent(a))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *FleetHandler) Orders(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	orders, err := h.Repo.ListOrders(r.Context())
	if err != nil {
		zap.L().Error("list orders failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := make([]dto.Order, 0, len(orders))
	for _, o := range orders {
		res = append(res, dto.FromOrder(o))
	}

	writeJSON(w, r, http.StatusOK, res)
}

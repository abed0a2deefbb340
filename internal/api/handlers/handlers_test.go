package handlers

import (
	"context"
	"delivery-allocation-service/internal/domain"
	"delivery-allocation-service/internal/ports"
	"delivery-allocation-service/internal/services"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type failingFleet struct{}

func (failingFleet) ListWarehouses(context.Context) ([]domain.Warehouse, error) {
	return nil, errors.New("db down")
}

func (failingFleet) ListAgents(context.Context) ([]domain.Agent, error) {
	return nil, errors.New("db down")
}

func (failingFleet) ListOrders(context.Context) ([]domain.Order, error) {
	return nil, errors.New("db down")
}

func (failingFleet) ListOpenOrders(context.Context) ([]domain.Order, error) {
	return nil, errors.New("db down")
}

type emptyStore struct{}

func (emptyStore) SaveRun(context.Context, domain.AllocationRun) error { return nil }

func (emptyStore) LatestRunID(context.Context) (string, error) {
	return "", ports.ErrNotFound
}

func (emptyStore) LatestRun(context.Context) (domain.AllocationRun, error) {
	return domain.AllocationRun{}, ports.ErrNotFound
}

func TestFleetHandlerRepositoryFailure(t *testing.T) {
	h := &FleetHandler{Repo: failingFleet{}}

	for name, fn := range map[string]http.HandlerFunc{
		"warehouses": h.Warehouses,
		"agents":     h.Agents,
		"orders":     h.Orders,
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			fn(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
		})
	}
}

func TestAllocationHandlerMethods(t *testing.T) {
	h := &AllocationHandler{
		Deps:   services.RunAllocationDeps{Fleet: failingFleet{}, Store: emptyStore{}},
		Engine: services.NewEngine(domain.DefaultLimits()),
	}

	tests := []struct {
		name   string
		fn     http.HandlerFunc
		method string
		allow  string
	}{
		{"run", h.Run, http.MethodGet, http.MethodPost},
		{"latest", h.Latest, http.MethodPost, http.MethodGet},
		{"preview", h.Preview, http.MethodGet, http.MethodPost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.fn(rec, httptest.NewRequest(tt.method, "/", nil))
			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			assert.Equal(t, tt.allow, rec.Header().Get("Allow"))
		})
	}
}

func TestAllocationHandlerRunFailure(t *testing.T) {
	h := &AllocationHandler{
		Deps:   services.RunAllocationDeps{Fleet: failingFleet{}, Store: emptyStore{}},
		Engine: services.NewEngine(domain.DefaultLimits()),
	}

	rec := httptest.NewRecorder()
	h.Run(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = httptest.NewRecorder()
	h.Latest(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

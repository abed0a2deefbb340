package metrics

import (
	"testing"
	"time"

	"delivery-allocation-service/internal/domain"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRun(t *testing.T) {
	allocatedBefore := testutil.ToFloat64(AllocationOrders.WithLabelValues("allocated"))
	postponedBefore := testutil.ToFloat64(AllocationOrders.WithLabelValues("postponed"))
	runsBefore := testutil.ToFloat64(AllocationRuns.WithLabelValues("success"))

	ObserveRun(domain.AllocationResult{
		AllocatedOrders: []int{1, 2, 3},
		PostponedOrders: []int{4},
		TotalCost:       1000,
	}, 20*time.Millisecond)

	assert.Equal(t, allocatedBefore+3, testutil.ToFloat64(AllocationOrders.WithLabelValues("allocated")))
	assert.Equal(t, postponedBefore+1, testutil.ToFloat64(AllocationOrders.WithLabelValues("postponed")))
	assert.Equal(t, runsBefore+1, testutil.ToFloat64(AllocationRuns.WithLabelValues("success")))
	assert.Equal(t, 1000.0, testutil.ToFloat64(AllocationCost))
}

func TestRegisterDefaultIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		RegisterDefault()
		RegisterDefault()
	})
}

func TestObserveHTTP(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "/health", "200"))

	ObserveHTTP("GET", "/health", 200, time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "/health", "200")))
}

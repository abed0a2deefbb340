package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"delivery-allocation-service/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry is the dedicated Prometheus registry for the service
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// AllocationRuns counts allocation runs by outcome (success, failure)
	AllocationRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "allocation_runs_total", Help: "Allocation runs by outcome."},
		[]string{"outcome"},
	)
	AllocationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "allocation_run_duration_seconds", Help: "End-to-end allocation run duration in seconds.", Buckets: prometheus.DefBuckets},
	)
	// AllocationOrders counts orders resolved by runs, by result (allocated, postponed)
	AllocationOrders = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "allocation_orders_total", Help: "Orders resolved by allocation runs."},
		[]string{"result"},
	)
	AllocationCost = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "allocation_last_total_cost", Help: "Total labor cost of the last successful run."},
	)
)

var regOnce sync.Once

// RegisterDefault registers collectors to the service registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(AllocationRuns)
		Registry.MustRegister(AllocationDuration)
		Registry.MustRegister(AllocationOrders)
		Registry.MustRegister(AllocationCost)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

// ObserveRun records a successful run.
func ObserveRun(result domain.AllocationResult, dur time.Duration) {
	AllocationRuns.WithLabelValues("success").Inc()
	AllocationDuration.Observe(dur.Seconds())
	AllocationOrders.WithLabelValues("allocated").Add(float64(len(result.AllocatedOrders)))
	AllocationOrders.WithLabelValues("postponed").Add(float64(len(result.PostponedOrders)))
	AllocationCost.Set(result.TotalCost)
}

func ObserveRunFailure(dur time.Duration) {
	AllocationRuns.WithLabelValues("failure").Inc()
	AllocationDuration.Observe(dur.Seconds())
}

// Handler serves the service registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// ObserveHTTP records one served request.
func ObserveHTTP(method, path string, status int, dur time.Duration) {
	code := strconv.Itoa(status)
	HTTPRequests.WithLabelValues(method, path, code).Inc()
	HTTPDuration.WithLabelValues(method, path, code).Observe(dur.Seconds())
}

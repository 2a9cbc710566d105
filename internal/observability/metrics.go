package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests   *prometheus.CounterVec
	apiLatency    *prometheus.HistogramVec
	apiInflight   prometheus.Gauge
	apiErrors     *prometheus.CounterVec
	storeOps      *prometheus.CounterVec
	storeLatency  *prometheus.HistogramVec
	templateShift prometheus.Counter
	accessTier    *prometheus.CounterVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Init builds the process-wide metrics set. Disabled metrics leave Current nil.
func Init(enabled bool) *Metrics {
	if !enabled {
		return nil
	}
	initOnce.Do(func() {
		instance = NewMetrics(prometheus.NewRegistry())
	})
	return instance
}

func Current() *Metrics {
	return instance
}

// NewMetrics registers collectors on reg. Tests pass a fresh registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arm_gateway_api_requests_total",
			Help: "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "arm_gateway_api_request_duration_seconds",
			Help:    "API request latency in seconds by method/route.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"method", "route"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "arm_gateway_api_inflight_requests",
			Help: "In-flight API requests.",
		}),
		apiErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arm_gateway_api_errors_total",
			Help: "Error responses by route and wire error code.",
		}, []string{"route", "code"}),
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arm_gateway_store_operations_total",
			Help: "Store operations by table/op/outcome.",
		}, []string{"table", "op", "outcome"}),
		storeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "arm_gateway_store_operation_seconds",
			Help:    "Store operation latency in seconds by table/op.",
			Buckets: prometheus.DefBuckets,
		}, []string{"table", "op"}),
		templateShift: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arm_gateway_template_shifts_total",
			Help: "Sibling templates rewritten to make room for a positioned write.",
		}),
		accessTier: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arm_gateway_access_resolutions_total",
			Help: "Profile listing access resolutions by tier.",
		}, []string{"tier"}),
	}
	reg.MustRegister(
		m.apiRequests, m.apiLatency, m.apiInflight, m.apiErrors,
		m.storeOps, m.storeLatency, m.templateShift, m.accessTier,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(dur.Seconds())
}

func (m *Metrics) ObserveAPIError(route, code string) {
	if m != nil {
		m.apiErrors.WithLabelValues(route, code).Inc()
	}
}

func (m *Metrics) ApiInflightInc() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) ApiInflightDec() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

func (m *Metrics) ObserveStore(table, op string, err error, dur time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.storeOps.WithLabelValues(table, op, outcome).Inc()
	m.storeLatency.WithLabelValues(table, op).Observe(dur.Seconds())
}

func (m *Metrics) AddTemplateShifts(n int) {
	if m != nil && n > 0 {
		m.templateShift.Add(float64(n))
	}
}

func (m *Metrics) IncAccessTier(tier string) {
	if m != nil {
		m.accessTier.WithLabelValues(tier).Inc()
	}
}

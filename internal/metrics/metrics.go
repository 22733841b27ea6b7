package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Label constants for metrics.
const (
	LabelMethod = "method"
	LabelRoute  = "route"
	LabelStatus = "status"
	LabelOp     = "op"
	LabelResult = "result"
)

// Result constants for storage operations.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics provides Prometheus metrics for the HTTP surface and the content store.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	storageOpsTotal    *prometheus.CounterVec
	storageBytesStored prometheus.Counter
}

// New creates and registers the metrics.
// If registry is nil, metrics will be created but not registered (useful for testing).
func New(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dataroom",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests by route and status",
			},
			[]string{LabelMethod, LabelRoute, LabelStatus},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "dataroom",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency by route",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{LabelMethod, LabelRoute},
		),
		storageOpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dataroom",
				Subsystem: "storage",
				Name:      "operations_total",
				Help:      "Total number of content store operations by result",
			},
			[]string{LabelOp, LabelResult},
		),
		storageBytesStored: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "dataroom",
				Subsystem: "storage",
				Name:      "bytes_stored_total",
				Help:      "Total bytes written to the content store",
			},
		),
	}

	if registry != nil {
		registry.MustRegister(
			m.httpRequestsTotal,
			m.httpRequestDuration,
			m.storageOpsTotal,
			m.storageBytesStored,
		)
	}

	return m
}

// ObserveRequest records one completed HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveStorageOp records one content store operation
func (m *Metrics) ObserveStorageOp(op string, err error) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.storageOpsTotal.WithLabelValues(op, result).Inc()
}

// AddStoredBytes counts bytes written by a successful store
func (m *Metrics) AddStoredBytes(n int64) {
	if m == nil {
		return
	}
	m.storageBytesStored.Add(float64(n))
}

package telemetry

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "cultivo"

// HTTPMetrics holds the request counter and latency histogram served at /metrics
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

// NewHTTPMetrics creates and registers the HTTP collectors
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Requests currently being served.",
		}),
	}
	reg.MustRegister(m.requests, m.duration, m.inFlight)
	return m
}

// Begin marks a request as in flight and returns the function that records it
func (m *HTTPMetrics) Begin() func(method, route string, status int) {
	start := time.Now()
	m.inFlight.Inc()
	return func(method, route string, status int) {
		m.inFlight.Dec()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// RegisterDBPoolMetrics exports database/sql pool statistics for a gateway handle
func RegisterDBPoolMetrics(reg prometheus.Registerer, handle string, db *sql.DB) error {
	return reg.Register(collectors.NewDBStatsCollector(db, handle))
}

// EventMetrics counts published domain events by type. It subscribes to the
// event bus as a wildcard handler.
type EventMetrics struct {
	events *prometheus.CounterVec
}

// NewEventMetrics creates and registers the domain event counter
func NewEventMetrics(reg prometheus.Registerer) *EventMetrics {
	m := &EventMetrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "domain_events_total",
			Help:      "Domain events by type, e.g. ebr.approved or deviation.reported.",
		}, []string{"event_type"}),
	}
	reg.MustRegister(m.events)
	return m
}

// Handle counts the event
func (m *EventMetrics) Handle(_ context.Context, event shared.DomainEvent) error {
	m.events.WithLabelValues(event.EventType()).Inc()
	return nil
}

// EventTypes returns nil so the handler receives every event
func (m *EventMetrics) EventTypes() []string {
	return nil
}

var _ shared.EventHandler = (*EventMetrics)(nil)

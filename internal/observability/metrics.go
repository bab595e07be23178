package observability

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the Prometheus collectors the service exposes on /metrics.
type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpErrors   *prometheus.CounterVec
	ticketEvents *prometheus.CounterVec
}

// NewMetrics registers collectors on the default registry.
func NewMetrics(appName string) *Metrics {
	return &Metrics{
		httpRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: fmt.Sprintf("%s_http_total_requests", appName),
				Help: "Total number of http requests",
			},
			[]string{"path", "method", "status_code"},
		),
		httpDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: fmt.Sprintf("%s_http_request_duration", appName),
				Help: "Duration of the http request",
			},
			[]string{"path", "method", "status_code"},
		),
		httpErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: fmt.Sprintf("%s_http_total_errors", appName),
				Help: "Total number of http errors by application code",
			},
			[]string{"path", "method", "code"},
		),
		ticketEvents: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: fmt.Sprintf("%s_ticket_events_total", appName),
				Help: "Total number of ticket lifecycle events",
			},
			[]string{"event"},
		),
	}
}

// RecordRequest increments the request counter and duration histogram.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(path, method, code).Inc()
	m.httpDuration.WithLabelValues(path, method, code).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.httpErrors.WithLabelValues(path, method, code).Inc()
}

// RecordTicketEvent counts a ticket lifecycle event by type.
func (m *Metrics) RecordTicketEvent(event string) {
	if m == nil {
		return
	}
	m.ticketEvents.WithLabelValues(event).Inc()
}

// Package metrics records hub operation metrics for Prometheus.
//
// A nil *Recorder is valid and records nothing, so services and adapters
// can be constructed without metrics in tests.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/hub/internal/core/domain"
)

// Recorder owns the hub's metric collectors and their registry.
type Recorder struct {
	registry *prometheus.Registry

	operations    *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	payloads      *prometheus.CounterVec
	notifications *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	lastPollTS    *prometheus.GaugeVec
}

// New creates a Recorder with its own registry, including Go runtime and
// process collectors.
func New() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.operations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hub",
		Name:      "operations_total",
		Help:      "Hub operations by operation, connector kind and outcome",
	}, []string{"operation", "kind", "outcome"})
	r.duration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hub",
		Name:      "operation_duration_seconds",
		Help:      "Time spent in hub operations, including backend calls",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "kind"})
	r.payloads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hub",
		Name:      "event_payloads_total",
		Help:      "Event occurrences produced by polls",
	}, []string{"connector"})
	r.notifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hub",
		Name:      "notifications_total",
		Help:      "Inbound notifications by outcome",
	}, []string{"outcome"})
	r.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hub_http",
		Name:      "requests_total",
		Help:      "HTTP API requests by route and status code",
	}, []string{"route", "code"})
	r.lastPollTS = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "hub",
		Name:      "last_successful_poll_timestamp_seconds",
		Help:      "Unix timestamp of the last successful poll per event",
	}, []string{"connector", "event"})

	r.registry.MustRegister(
		r.operations, r.duration, r.payloads, r.notifications, r.httpRequests, r.lastPollTS,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// ObserveOperation records the outcome and duration of one operation.
func (r *Recorder) ObserveOperation(operation, kind string, started time.Time, err error) {
	if r == nil {
		return
	}
	r.operations.WithLabelValues(operation, kind, Outcome(err)).Inc()
	r.duration.WithLabelValues(operation, kind).Observe(time.Since(started).Seconds())
}

// AddPayloads counts event occurrences produced by a poll and stamps the
// event's last successful poll time.
func (r *Recorder) AddPayloads(key domain.CursorKey, n int) {
	if r == nil {
		return
	}
	r.payloads.WithLabelValues(key.ConnectorID).Add(float64(n))
	r.lastPollTS.WithLabelValues(key.ConnectorID, key.EventPath).SetToCurrentTime()
}

// Notification counts one inbound notification.
func (r *Recorder) Notification(err error) {
	if r == nil {
		return
	}
	r.notifications.WithLabelValues(Outcome(err)).Inc()
}

// HTTPRequest counts one API request.
func (r *Recorder) HTTPRequest(route string, code int) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Outcome maps an error to a low-cardinality label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrUnsupportedOperation):
		return "unsupported"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrBackendUnavailable):
		return "backend_unavailable"
	default:
		return "error"
	}
}

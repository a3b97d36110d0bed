package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "qlinme"

// Metrics holds the service collectors. A nil *Metrics records nothing so
// components can run without instrumentation.
type Metrics struct {
	registry     *prometheus.Registry
	validations  *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
	fhirRequests *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Validation reports produced, by report kind and validity.",
		}, []string{"report", "valid"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Timed cache lookups, by cache and result.",
		}, []string{"cache", "result"}),
		fhirRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fhir_requests_total",
			Help:      "Requests sent to the FHIR server, by resource and outcome.",
		}, []string{"resource", "outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.validations,
		m.cacheLookups,
		m.fhirRequests,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

func (m *Metrics) ObserveValidation(report string, valid bool) {
	if m == nil {
		return
	}
	m.validations.WithLabelValues(report, strconv.FormatBool(valid)).Inc()
}

func (m *Metrics) ObserveCacheLookup(cache string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(cache, result).Inc()
}

func (m *Metrics) ObserveFhirRequest(resource, outcome string) {
	if m == nil {
		return
	}
	m.fhirRequests.WithLabelValues(resource, outcome).Inc()
}

func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

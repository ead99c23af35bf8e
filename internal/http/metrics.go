package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultMetricsPrefix = "sites"

// Metrics holds the collectors exported on /metrics. Each instance owns its
// registry so several servers can live in one process.
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	localeFallbacks *prometheus.CounterVec
	quoteRequests   prometheus.Counter
}

// NewMetrics registers the HTTP and resolver collectors under prefix.
func NewMetrics(prefix string) *Metrics {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultMetricsPrefix
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		localeFallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_locale_fallbacks_total",
				Help: "Pages served in the default locale because the requested translation is missing",
			},
			[]string{"requested_locale"},
		),
		quoteRequests: factory.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_quote_requests_total",
				Help: "Quote requests accepted",
			},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) observeRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) recordFallback(requestedLocale string) {
	if m == nil {
		return
	}
	m.localeFallbacks.WithLabelValues(requestedLocale).Inc()
}

func (m *Metrics) recordQuoteRequest() {
	if m == nil {
		return
	}
	m.quoteRequests.Inc()
}

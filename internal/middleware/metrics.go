package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Analysis outcomes recorded by ObserveAnalysis.
const (
	OutcomeSuccess       = "success"
	OutcomeInvalidInput  = "invalid_input"
	OutcomeNotConfigured = "not_configured"
	OutcomeUpstreamError = "upstream_error"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	requests   *prometheus.CounterVec
	inFlight   prometheus.Gauge
	duration   *prometheus.HistogramVec
	analyses   *prometheus.CounterVec
	registry   *prometheus.Registry
	startedAt  time.Time
	uptimeFunc prometheus.GaugeFunc
}

// NewMetrics registers the collectors on a fresh registry, together with the
// standard Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry:  reg,
		startedAt: time.Now(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sentinel",
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route and status code.",
		}, []string{"method", "route", "status"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sentinel",
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests currently being served.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sentinel",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, including the model round trip.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 60},
		}, []string{"method", "route"}),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sentinel",
			Name:      "analyses_total",
			Help:      "Analysis requests by kind and outcome.",
		}, []string{"kind", "outcome"}),
	}
	m.uptimeFunc = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "sentinel",
		Name:      "uptime_seconds",
		Help:      "Seconds since the process started.",
	}, func() float64 { return time.Since(m.startedAt).Seconds() })

	reg.MustRegister(
		m.requests, m.inFlight, m.duration, m.analyses, m.uptimeFunc,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveAnalysis counts one finished analysis.
func (m *Metrics) ObserveAnalysis(kind, outcome string) {
	m.analyses.WithLabelValues(kind, outcome).Inc()
}

// Middleware tracks request counts, latency and concurrency.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		start := time.Now()
		wrapped := wrapWriter(w)

		next.ServeHTTP(wrapped, r)

		route := routePattern(r)
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.statusCode)).Inc()
		m.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// routePattern keeps label cardinality bounded by using the matched chi
// pattern instead of the raw path.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

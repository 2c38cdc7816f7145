package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/mealyetf/pkg/observability"
)

// Metrics exports conversion, cache, and request events as Prometheus
// series. It implements the hook interfaces of package observability.
type Metrics struct {
	registry *prometheus.Registry

	loads       *prometheus.CounterVec
	conversions *prometheus.CounterVec
	convertTime prometheus.Histogram
	cacheEvents *prometheus.CounterVec
	cacheBytes  prometheus.Counter
	requests    *prometheus.CounterVec
	requestTime *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on a private
// registry, together with the Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mealyetf_machines_loaded_total",
				Help: "Machine documents decoded, by result",
			},
			[]string{"result"},
		),
		conversions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mealyetf_conversions_total",
				Help: "Pipeline runs, by result",
			},
			[]string{"result"},
		),
		convertTime: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mealyetf_conversion_duration_seconds",
				Help:    "Time spent producing artifacts",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
		),
		cacheEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mealyetf_cache_events_total",
				Help: "Artifact cache events, by event and format",
			},
			[]string{"event", "format"},
		),
		cacheBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "mealyetf_cache_written_bytes_total",
				Help: "Bytes written to the artifact cache",
			},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mealyetf_http_requests_total",
				Help: "HTTP requests, by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		requestTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mealyetf_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
	m.registry.MustRegister(
		m.loads, m.conversions, m.convertTime,
		m.cacheEvents, m.cacheBytes,
		m.requests, m.requestTime,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// Install registers m as the process-wide observability hooks.
func (m *Metrics) Install() {
	observability.SetConvertHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) OnLoad(_ context.Context, _ string, _, _ int, err error) {
	m.loads.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) OnConvertStart(context.Context, []string) {}

func (m *Metrics) OnConvertComplete(_ context.Context, _ []string, d time.Duration, err error) {
	m.conversions.WithLabelValues(result(err)).Inc()
	m.convertTime.Observe(d.Seconds())
}

func (m *Metrics) OnCacheHit(_ context.Context, format string) {
	m.cacheEvents.WithLabelValues("hit", format).Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, format string) {
	m.cacheEvents.WithLabelValues("miss", format).Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, format string, size int) {
	m.cacheEvents.WithLabelValues("set", format).Inc()
	m.cacheBytes.Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestTime.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ observability.ConvertHooks = (*Metrics)(nil)
	_ observability.CacheHooks   = (*Metrics)(nil)
	_ observability.HTTPHooks    = (*Metrics)(nil)
)

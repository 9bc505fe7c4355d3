package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "gateway"
	subsystem = "router"
)

// RouterMetrics holds the Prometheus vectors for the routing engine.
type RouterMetrics struct {
	RequestsTotal        prometheus.Counter
	ProbesTotal          *prometheus.CounterVec
	ProbeDurationSeconds *prometheus.HistogramVec
	SourceHealthy        *prometheus.GaugeVec
	FetchAttemptsTotal   *prometheus.CounterVec
	FetchDurationSeconds *prometheus.HistogramVec
	FetchExhaustedTotal  prometheus.Counter
}

var (
	routerMetricsInstance *RouterMetrics
	routerMetricsOnce     sync.Once
)

// Default returns the process-wide RouterMetrics, registering the vectors
// on the default registry the first time it is called.
func Default() *RouterMetrics {
	routerMetricsOnce.Do(func() {
		routerMetricsInstance = newRouterMetrics()
	})
	return routerMetricsInstance
}

func newRouterMetrics() *RouterMetrics {
	return &RouterMetrics{
		RequestsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "requests_total",
				Help:      "Total number of content requests received",
			},
		),
		ProbesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "probes_total",
				Help:      "Total number of health probes by outcome",
			},
			[]string{"source", "outcome"},
		),
		ProbeDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "probe_duration_seconds",
				Help:      "Health probe round-trip time",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		SourceHealthy: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "source_healthy",
				Help:      "Whether a content source is currently healthy (1) or not (0)",
			},
			[]string{"source"},
		),
		FetchAttemptsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "fetch_attempts_total",
				Help:      "Total number of fetch attempts by outcome",
			},
			[]string{"source", "outcome"},
		),
		FetchDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "fetch_duration_seconds",
				Help:      "Duration of successful fetch attempts",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		FetchExhaustedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "fetch_exhausted_total",
				Help:      "Total number of fetches where every healthy source failed",
			},
		),
	}
}

// Handler returns the HTTP handler serving the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

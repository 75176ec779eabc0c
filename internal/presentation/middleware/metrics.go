package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)
)

// Metrics returns a middleware that collects Prometheus metrics
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			httpRequestsInFlight.Inc()
			defer httpRequestsInFlight.Dec()

			wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(wrapped.status)

			// Normalize path to avoid high cardinality
			path := normalizePath(r.URL.Path)

			httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
		})
	}
}

// normalizePath normalizes the path to reduce cardinality
func normalizePath(path string) string {
	switch path {
	case "/report", "/solana", "/health", "/ready", "/live", "/metrics":
		return path
	default:
		return "other"
	}
}

// PipelineMetrics holds Prometheus metrics for the report pipeline
type PipelineMetrics struct {
	PriceLookups   *prometheus.CounterVec
	ReportsTotal   *prometheus.CounterVec
	ReportLatency  prometheus.Histogram
	CoinsPerReport prometheus.Histogram
}

// NewPipelineMetrics creates pipeline metrics registered on reg
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	factory := promauto.With(reg)
	return &PipelineMetrics{
		PriceLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fumble_price_lookups_total",
			Help: "Price lookups by kind (historical, current, coin_id) and outcome (hit, ok, fallback)",
		}, []string{"kind", "outcome"}),
		ReportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fumble_reports_total",
			Help: "Reports generated by result",
		}, []string{"result"}),
		ReportLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fumble_report_latency_seconds",
			Help:    "Time taken to build a wallet report",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		CoinsPerReport: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fumble_report_coins",
			Help:    "Number of coins valued per report",
			Buckets: []float64{1, 2, 5, 10, 20, 50},
		}),
	}
}

// PriceLookup counts one price lookup
func (m *PipelineMetrics) PriceLookup(kind, outcome string) {
	m.PriceLookups.WithLabelValues(kind, outcome).Inc()
}

// ReportGenerated records the result of one pipeline run
func (m *PipelineMetrics) ReportGenerated(duration time.Duration, coins int, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ReportsTotal.WithLabelValues(result).Inc()
	m.ReportLatency.Observe(duration.Seconds())
	if err == nil {
		m.CoinsPerReport.Observe(float64(coins))
	}
}

package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jsamit27/ava/internal/core/domain"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ava"

// PrometheusMetrics собственный реестр сервиса, реализует port.MetricsPort
type PrometheusMetrics struct {
	registry *prometheus.Registry

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	toolCalls    *prometheus.CounterVec
	toolDuration *prometheus.HistogramVec
	planActions  *prometheus.CounterVec
	avaRequests  *prometheus.CounterVec
	avaDuration  *prometheus.HistogramVec
}

func NewPrometheusMetrics() *PrometheusMetrics {
	m := &PrometheusMetrics{
		registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms .. ~10s
		}, []string{"method", "route"}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tools",
			Name:      "calls_total",
			Help:      "Tool executions by tool name and result status.",
		}, []string{"tool", "status"}),
		toolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tools",
			Name:      "duration_seconds",
			Help:      "Duration of tool executions.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"tool"}),
		planActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "plans_total",
			Help:      "Planner outcomes: chat, tool, planner_fail, plan_invalid.",
		}, []string{"action"}),
		avaRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ava",
			Name:      "requests_total",
			Help:      "Calls to the Ava service.",
		}, []string{"operation", "result"}),
		avaDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ava",
			Name:      "request_duration_seconds",
			Help:      "Duration of calls to the Ava service.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms .. ~25s
		}, []string{"operation"}),
	}

	m.registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.toolCalls,
		m.toolDuration,
		m.planActions,
		m.avaRequests,
		m.avaDuration,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return m
}

func (m *PrometheusMetrics) ObserveTool(name string, status domain.ToolStatus, seconds float64) {
	m.toolCalls.WithLabelValues(name, string(status)).Inc()
	m.toolDuration.WithLabelValues(name).Observe(seconds)
}

func (m *PrometheusMetrics) ObservePlan(action string) {
	m.planActions.WithLabelValues(action).Inc()
}

func (m *PrometheusMetrics) ObserveAva(operation string, err error, seconds float64) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.avaRequests.WithLabelValues(operation, result).Inc()
	m.avaDuration.WithLabelValues(operation).Observe(seconds)
}

// Handler отдает метрики реестра
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// InstrumentHandler middleware со счетчиками HTTP запросов. Маршрут берется из шаблона chi.
func (m *PrometheusMetrics) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		route := routePattern(r)
		method := strings.ToUpper(r.Method)
		m.httpRequests.WithLabelValues(method, route, strconv.Itoa(rec.status)).Inc()
		m.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

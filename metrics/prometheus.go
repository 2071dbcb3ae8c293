// Package metrics provides Prometheus metrics export for chatrelay's
// orchestration pipeline (spec §6.8): job outcomes, lock decisions,
// dispatch outcomes, and shared-store backend health.
package metrics

import (
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusExporter exports chatrelay metrics in Prometheus format.
type PrometheusExporter struct {
	registry *prometheus.Registry

	// Job lifecycle metrics (§4.4)
	jobsTotal    *prometheus.CounterVec
	jobLatency   *prometheus.HistogramVec
	jobsActive   prometheus.Gauge

	// Lock manager metrics (§4.3)
	lockDecisions      *prometheus.CounterVec
	lockBackendFallback prometheus.Counter

	// AI client metrics (§4.5)
	aiCallLatency *prometheus.HistogramVec
	aiCallErrors  *prometheus.CounterVec

	// Platform dispatcher metrics (§4.6)
	dispatchTotal   *prometheus.CounterVec
	dispatchLatency *prometheus.HistogramVec
	rateLimited     *prometheus.CounterVec

	mu       sync.RWMutex
	handlers map[string]http.Handler
}

// Config configures the Prometheus exporter.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Buckets for latency histograms (in seconds)
	LatencyBuckets []float64
}

// DefaultConfig returns default Prometheus configuration.
func DefaultConfig() Config {
	return Config{
		LatencyBuckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
	}
}

// NewPrometheusExporter creates a new Prometheus metrics exporter.
func NewPrometheusExporter(cfg Config) *PrometheusExporter {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	e := &PrometheusExporter{
		registry: registry,
		handlers: make(map[string]http.Handler),
	}

	e.jobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chatrelay",
			Subsystem: "jobs",
			Name:      "total",
			Help:      "Total number of background AI jobs by terminal status",
		},
		[]string{"status"},
	)

	e.jobLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "chatrelay",
			Subsystem: "jobs",
			Name:      "latency_seconds",
			Help:      "Job processing latency from dequeue to terminal status",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"status"},
	)

	e.jobsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "chatrelay",
			Subsystem: "jobs",
			Name:      "active",
			Help:      "Number of jobs currently in the processing state",
		},
	)

	e.lockDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chatrelay",
			Subsystem: "lock",
			Name:      "decisions_total",
			Help:      "CheckAndAcquire decisions by kind (acquired, acquired_fallback, superseded)",
		},
		[]string{"kind"},
	)

	e.lockBackendFallback = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "chatrelay",
			Subsystem: "lock",
			Name:      "backend_fallback_total",
			Help:      "Number of times the Lock Manager fell back to the in-memory backend",
		},
	)

	e.aiCallLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "chatrelay",
			Subsystem: "ai_client",
			Name:      "call_latency_seconds",
			Help:      "AI endpoint call latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"status"},
	)

	e.aiCallErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chatrelay",
			Subsystem: "ai_client",
			Name:      "errors_total",
			Help:      "AI endpoint call failures by kind (http_status, timeout)",
		},
		[]string{"kind"},
	)

	e.dispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chatrelay",
			Subsystem: "dispatch",
			Name:      "total",
			Help:      "Platform dispatches by action and outcome",
		},
		[]string{"action", "status"},
	)

	e.dispatchLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "chatrelay",
			Subsystem: "dispatch",
			Name:      "latency_seconds",
			Help:      "Platform dispatch HTTP latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"action"},
	)

	e.rateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chatrelay",
			Subsystem: "dispatch",
			Name:      "rate_limited_total",
			Help:      "Dispatches discarded by the per-platform sliding window limiter",
		},
		[]string{"platform_id"},
	)

	registry.MustRegister(
		e.jobsTotal,
		e.jobLatency,
		e.jobsActive,
		e.lockDecisions,
		e.lockBackendFallback,
		e.aiCallLatency,
		e.aiCallErrors,
		e.dispatchTotal,
		e.dispatchLatency,
		e.rateLimited,
	)

	return e
}

// RecordJobOutcome records a terminal job status and its processing latency.
func (e *PrometheusExporter) RecordJobOutcome(status string, latency time.Duration) {
	e.jobsTotal.WithLabelValues(status).Inc()
	e.jobLatency.WithLabelValues(status).Observe(latency.Seconds())
}

// SetActiveJobs sets the current number of processing jobs.
func (e *PrometheusExporter) SetActiveJobs(count int) {
	e.jobsActive.Set(float64(count))
}

// RecordLockDecision records a CheckAndAcquire decision kind.
func (e *PrometheusExporter) RecordLockDecision(kind string) {
	e.lockDecisions.WithLabelValues(kind).Inc()
}

// IncLockBackendFallback implements lock.FallbackRecorder.
func (e *PrometheusExporter) IncLockBackendFallback() {
	e.lockBackendFallback.Inc()
}

// RecordAICall records an AI endpoint call outcome.
func (e *PrometheusExporter) RecordAICall(status string, latency time.Duration) {
	e.aiCallLatency.WithLabelValues(status).Observe(latency.Seconds())
}

// RecordAICallError records an AI endpoint call failure by kind.
func (e *PrometheusExporter) RecordAICallError(kind string) {
	e.aiCallErrors.WithLabelValues(kind).Inc()
}

// RecordDispatch records a platform dispatch outcome.
func (e *PrometheusExporter) RecordDispatch(action, status string, latency time.Duration) {
	e.dispatchTotal.WithLabelValues(action, status).Inc()
	e.dispatchLatency.WithLabelValues(action).Observe(latency.Seconds())
}

// RecordRateLimited records a dispatch discarded by the sliding window limiter.
func (e *PrometheusExporter) RecordRateLimited(platformID string) {
	e.rateLimited.WithLabelValues(platformID).Inc()
}

// GetHandler returns the HTTP handler for Prometheus metrics.
func (e *PrometheusExporter) GetHandler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Handler returns an HTTP handler for the metrics endpoint.
func (e *PrometheusExporter) Handler() http.Handler {
	return e.GetHandler()
}

// RegisterHandler registers a custom handler for a specific path.
func (e *PrometheusExporter) RegisterHandler(path string, handler http.Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[path] = handler
}

// ServeHTTP implements http.Handler for the metrics endpoint.
func (e *PrometheusExporter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.GetHandler().ServeHTTP(w, r)
}

// GetRegistry returns the Prometheus registry.
func (e *PrometheusExporter) GetRegistry() *prometheus.Registry {
	return e.registry
}

// Snapshot captures a snapshot of all metrics for debugging.
func (e *PrometheusExporter) Snapshot() map[string]interface{} {
	e.mu.RLock()
	defer e.mu.RUnlock()

	snapshot := make(map[string]interface{})
	snapshot["timestamp"] = time.Now().Unix()
	gatherResult, err := e.registry.Gather()
	if err != nil {
		slog.Error("metrics: failed to gather registry", "error", err)
	}
	snapshot["registry"] = gatherResult

	return snapshot
}

// ExportText exports metrics in Prometheus text format.
func (e *PrometheusExporter) ExportText() (string, error) {
	var sb strings.Builder

	metrics, err := e.registry.Gather()
	if err != nil {
		return "", err
	}

	for _, mf := range metrics {
		sb.WriteString("# HELP ")
		sb.WriteString(mf.GetName())
		sb.WriteString(" ")
		sb.WriteString(mf.GetHelp())
		sb.WriteString("\n")

		sb.WriteString("# TYPE ")
		sb.WriteString(mf.GetName())
		sb.WriteString(" ")
		sb.WriteString(mf.GetType().String())
		sb.WriteString("\n")

		for _, m := range mf.GetMetric() {
			sb.WriteString(mf.GetName())

			if len(m.GetLabel()) > 0 {
				sb.WriteString("{")
				labels := make([]string, 0, len(m.GetLabel()))
				for _, label := range m.GetLabel() {
					labels = append(labels, label.GetName()+"=\""+label.GetValue()+"\"")
				}
				sort.Strings(labels)
				sb.WriteString(strings.Join(labels, ","))
				sb.WriteString("}")
			}

			sb.WriteString(" ")

			metricType := mf.GetType().String()
			switch metricType {
			case "COUNTER":
				if c := m.GetCounter(); c != nil {
					sb.WriteString(strconv.FormatFloat(c.GetValue(), 'f', -1, 64))
				}
			case "GAUGE":
				if g := m.GetGauge(); g != nil {
					sb.WriteString(strconv.FormatFloat(g.GetValue(), 'f', -1, 64))
				}
			case "HISTOGRAM":
				if h := m.GetHistogram(); h != nil {
					sb.WriteString(strconv.FormatFloat(h.GetSampleSum(), 'f', -1, 64))
					for _, b := range h.GetBucket() {
						sb.WriteString("\n")
						sb.WriteString(mf.GetName())
						sb.WriteString("_bucket{le=\"")
						sb.WriteString(strconv.FormatFloat(b.GetUpperBound(), 'f', -1, 64))
						sb.WriteString("\"}")
						sb.WriteString(strconv.FormatUint(b.GetCumulativeCount(), 10))
					}
				}
			default:
				goto nextMetric
			}

			sb.WriteString(" ")
			sb.WriteString(strconv.FormatInt(m.GetTimestampMs(), 10))
			sb.WriteString("\n")
		nextMetric:
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// Close cleans up resources.
func (e *PrometheusExporter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = make(map[string]http.Handler)
	return nil
}

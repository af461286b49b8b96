package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPServerMetrics collects request-level and pipeline-level metrics
// for the brief API.
type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	briefsTotal        *prometheus.CounterVec
	briefDuration      *prometheus.HistogramVec
	stageDuration      *prometheus.HistogramVec
	fetchFailuresTotal *prometheus.CounterVec
	contextDocuments   *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mba",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mba",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "mba",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	briefsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mba",
			Subsystem: "pipeline",
			Name:      "briefs_total",
			Help:      "Total completed brief runs by status.",
		},
		[]string{"service", "status"},
	)
	briefDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mba",
			Subsystem: "pipeline",
			Name:      "brief_duration_seconds",
			Help:      "End-to-end brief run duration in seconds.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"service"},
	)
	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mba",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Per-stage duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "stage"},
	)
	fetchFailuresTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mba",
			Subsystem: "pipeline",
			Name:      "fetch_failures_total",
			Help:      "Total per-ticker fetch failures by source.",
		},
		[]string{"service", "source"},
	)
	contextDocuments := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mba",
			Subsystem: "pipeline",
			Name:      "context_documents",
			Help:      "Distribution of retrieved context documents per run.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8},
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		briefsTotal,
		briefDuration,
		stageDuration,
		fetchFailuresTotal,
		contextDocuments,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		briefsTotal:        briefsTotal,
		briefDuration:      briefDuration,
		stageDuration:      stageDuration,
		fetchFailuresTotal: fetchFailuresTotal,
		contextDocuments:   contextDocuments,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			r.URL.Path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

func (m *HTTPServerMetrics) RecordBrief(service string, duration time.Duration, contextDocs int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.briefsTotal.WithLabelValues(service, status).Inc()
	m.briefDuration.WithLabelValues(service).Observe(duration.Seconds())
	if err == nil {
		m.contextDocuments.WithLabelValues(service).Observe(float64(contextDocs))
	}
}

// Pipeline returns a recorder bound to one service label for use
// inside the brief pipeline.
func (m *HTTPServerMetrics) Pipeline(service string) *PipelineRecorder {
	return &PipelineRecorder{metrics: m, service: service}
}

// PipelineRecorder reports stage timings and fetch failures under a
// fixed service label.
type PipelineRecorder struct {
	metrics *HTTPServerMetrics
	service string
}

func (r *PipelineRecorder) RecordStage(stage string, duration time.Duration) {
	r.metrics.stageDuration.WithLabelValues(r.service, stage).Observe(duration.Seconds())
}

func (r *PipelineRecorder) RecordFetchFailure(source string) {
	r.metrics.fetchFailuresTotal.WithLabelValues(r.service, source).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

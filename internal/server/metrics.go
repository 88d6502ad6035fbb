// Package server — metrics.go registers all Prometheus metrics for the HTTP
// server and exposes helpers used by handlers and middleware.
package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric label values shared across registrations.
const (
	// labelHandler is the "handler" label value used to partition metrics by
	// the logical endpoint name rather than the raw URL path.
	labelHandler = "handler"
)

// serverMetrics holds all Prometheus metrics owned by the HTTP server.
// A single instance is created in New and stored on Server so that tests can
// inject a fresh prometheus.Registry without polluting the default one.
type serverMetrics struct {
	// ingestTotal counts completed /api/context requests, partitioned by
	// outcome: "ok", "inactive", "invalid", or "error".
	ingestTotal *prometheus.CounterVec

	// searchTotal counts completed /api/context/search requests, partitioned
	// by the same outcome labels as ingestTotal.
	searchTotal *prometheus.CounterVec

	// hintsTotal counts completed /api/hints requests. The matcher is
	// deterministic and offline so there is no failure outcome to partition by.
	hintsTotal prometheus.Counter

	// httpRequestsTotal counts all HTTP requests handled by the mux,
	// partitioned by method, handler name, and status code.
	httpRequestsTotal *prometheus.CounterVec

	// httpDurationSeconds records the latency of all HTTP requests.
	httpDurationSeconds *prometheus.HistogramVec
}

// newServerMetrics registers all server metrics against reg and returns the
// populated serverMetrics. promauto.With(reg) is used so that each call
// registers into the provided registry rather than the global default —
// this keeps unit tests hermetic.
func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	factory := promauto.With(reg)

	return &serverMetrics{
		ingestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "semctx",
			Subsystem: "ingest",
			Name:      "requests_total",
			Help:      "Total number of /api/context requests completed, partitioned by outcome.",
		}, []string{"outcome"}),

		searchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "semctx",
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Total number of /api/context/search requests completed, partitioned by outcome.",
		}, []string{"outcome"}),

		hintsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "semctx",
			Subsystem: "hints",
			Name:      "requests_total",
			Help:      "Total number of /api/hints requests completed.",
		}),

		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "semctx",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled by the server, partitioned by method, handler, and status code.",
		}, []string{"method", labelHandler, "code"}),

		httpDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "semctx",
			Subsystem: "http",
			Name:      "duration_seconds",
			Help:      "Latency of HTTP requests handled by the server.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", labelHandler}),
	}
}

// instrument wraps a handler so its requests are counted and timed under the
// given logical handler name.
func (s *Server) instrument(name string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		start := time.Now()
		next.ServeHTTP(rw, r)
		elapsed := time.Since(start)

		s.metrics.httpRequestsTotal.WithLabelValues(r.Method, name, statusText(rw.status)).Inc()
		s.metrics.httpDurationSeconds.WithLabelValues(r.Method, name).Observe(elapsed.Seconds())
	})
}

// statusText renders an HTTP status code as a metric label value.
func statusText(code int) string {
	return strconv.Itoa(code)
}

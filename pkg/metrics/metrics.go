// Package metrics holds the Prometheus instruments for updatedb runs,
// queries and the search server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ssargent/locatew/pkg/query"
	"github.com/ssargent/locatew/pkg/stats"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds all Prometheus metrics, registered on a private registry
type Metrics struct {
	registry *prometheus.Registry

	// HTTP request metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight *prometheus.GaugeVec

	// updatedb metrics
	dbDirs          prometheus.Gauge
	dbFiles         prometheus.Gauge
	dbFileBytes     prometheus.Gauge
	dbSizeBytes     prometheus.Gauge
	lastRunSeconds  *prometheus.GaugeVec
	lastRunUnixTime prometheus.Gauge

	// Query metrics
	queriesTotal  *prometheus.CounterVec
	queryScanned  prometheus.Counter
	queryMatched  prometheus.Counter
	queryDuration prometheus.Histogram
}

// New creates and registers all metrics
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "locatew_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "locatew_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		httpRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "locatew_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"method", "endpoint"},
		),

		dbDirs: factory.NewGauge(prometheus.GaugeOpts{
			Name: "locatew_db_directories",
			Help: "Directories in the database",
		}),
		dbFiles: factory.NewGauge(prometheus.GaugeOpts{
			Name: "locatew_db_files",
			Help: "Files in the database",
		}),
		dbFileBytes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "locatew_db_file_name_bytes",
			Help: "Bytes in file names",
		}),
		dbSizeBytes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "locatew_db_size_bytes",
			Help: "Size of the compressed database in bytes",
		}),
		lastRunSeconds: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "locatew_updatedb_phase_seconds",
				Help: "Duration of each phase of the last updatedb run",
			},
			[]string{"phase"},
		),
		lastRunUnixTime: factory.NewGauge(prometheus.GaugeOpts{
			Name: "locatew_updatedb_last_run_timestamp_seconds",
			Help: "Unix time the database was last built",
		}),

		queriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "locatew_queries_total",
				Help: "Total number of queries by stop reason",
			},
			[]string{"reason", "status"},
		),
		queryScanned: factory.NewCounter(prometheus.CounterOpts{
			Name: "locatew_query_entries_scanned_total",
			Help: "Database entries decoded by queries",
		}),
		queryMatched: factory.NewCounter(prometheus.CounterOpts{
			Name: "locatew_query_matches_total",
			Help: "Entries emitted by queries",
		}),
		queryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "locatew_query_duration_seconds",
			Help:    "Query duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}

	return m
}

// Registry returns the registry the metrics live on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRun records the outcome of an updatedb run
func (m *Metrics) RecordRun(s *stats.Statistics, walk, encode time.Duration) {
	m.dbDirs.Set(float64(s.Dirs))
	m.dbFiles.Set(float64(s.Files))
	m.dbFileBytes.Set(float64(s.FilesBytes))
	m.dbSizeBytes.Set(float64(s.DBSize))
	m.lastRunSeconds.WithLabelValues("walk").Set(walk.Seconds())
	m.lastRunSeconds.WithLabelValues("encode").Set(encode.Seconds())
	if !s.CreatedAt.IsZero() {
		m.lastRunUnixTime.Set(float64(s.CreatedAt.Unix()))
	}
}

// RecordQuery records one pipeline run
func (m *Metrics) RecordQuery(sum query.Summary, err error, duration time.Duration) {
	status := statusSuccess
	if err != nil {
		status = statusError
	}

	m.queriesTotal.WithLabelValues(sum.Reason.String(), status).Inc()
	m.queryScanned.Add(float64(sum.Scanned))
	m.queryMatched.Add(float64(sum.Matched))
	m.queryDuration.Observe(duration.Seconds())
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	statusCodeStr := strconv.Itoa(statusCode)

	m.httpRequestsTotal.WithLabelValues(method, endpoint, statusCodeStr).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// InstrumentHandler instruments an HTTP handler with metrics
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		gauge := m.httpRequestsInFlight.WithLabelValues(method, endpoint)
		gauge.Inc()
		defer gauge.Dec()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		handler(rw, r)

		m.RecordHTTPRequest(method, endpoint, rw.statusCode, time.Since(start))
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes the registry for the node exporter textfile collector
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.Wrapf(err, "write metrics %s", path)
	}
	return nil
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush lets streamed responses reach the client as they are written
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

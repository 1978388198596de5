package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "agromarket"

// Import run statuses used as label values
const (
	RunCompleted  = "completed"
	RunRolledBack = "rolled_back"
	RunRejected   = "rejected"
)

var (
	importRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_runs_total",
			Help:      "Total number of product import runs by final status.",
		},
		[]string{"status"},
	)
	importRowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_rows_total",
			Help:      "Total number of imported rows by outcome.",
		},
		[]string{"outcome"},
	)
	importDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_duration_seconds",
			Help:      "Histogram of product import durations.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
	)
	variationErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "variation_errors_total",
			Help:      "Total number of variation writes that failed during imports.",
		},
	)
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Histogram of HTTP request durations.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "path", "status"},
	)
	imagesMirroredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "images_mirrored_total",
			Help:      "Total number of product images processed by the mirror job by outcome.",
		},
		[]string{"outcome"},
	)
	dbPoolConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_pool_connections",
			Help:      "PostgreSQL pool connections by state.",
		},
		[]string{"state"},
	)
)

func init() {
	prometheus.MustRegister(
		importRunsTotal,
		importRowsTotal,
		importDuration,
		variationErrorsTotal,
		httpRequestsTotal,
		httpRequestDuration,
		imagesMirroredTotal,
		dbPoolConns,
	)
}

// ImportStats is what one finished import contributes to the counters
type ImportStats struct {
	Status          string
	Created         int
	Updated         int
	Failed          int
	VariationErrors int
	Duration        time.Duration
}

// RecordImport records the outcome of one import run
func RecordImport(s ImportStats) {
	importRunsTotal.WithLabelValues(s.Status).Inc()
	importRowsTotal.WithLabelValues("created").Add(float64(s.Created))
	importRowsTotal.WithLabelValues("updated").Add(float64(s.Updated))
	importRowsTotal.WithLabelValues("failed").Add(float64(s.Failed))
	variationErrorsTotal.Add(float64(s.VariationErrors))
	importDuration.Observe(s.Duration.Seconds())
}

// RecordRequest records one HTTP request. path should be the route template.
func RecordRequest(method, path string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordMirroredImage counts one image handled by the mirror job
func RecordMirroredImage(ok bool) {
	if ok {
		imagesMirroredTotal.WithLabelValues("mirrored").Inc()
		return
	}
	imagesMirroredTotal.WithLabelValues("failed").Inc()
}

// RecordPool publishes a pool snapshot
func RecordPool(acquired, idle, total int32) {
	dbPoolConns.WithLabelValues("acquired").Set(float64(acquired))
	dbPoolConns.WithLabelValues("idle").Set(float64(idle))
	dbPoolConns.WithLabelValues("total").Set(float64(total))
}

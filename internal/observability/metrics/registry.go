package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline metrics track the lead pipeline's stages
var (
	// LeadsTotal tracks total number of leads in the database
	LeadsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "leads_total",
			Help: "Total number of leads in the database",
		},
	)

	// LeadSourcesTotal tracks total number of lead sources in the database
	LeadSourcesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lead_sources_total",
			Help: "Total number of lead sources in the database",
		},
	)

	// HitsFetchedTotal counts raw hits fetched per engine
	HitsFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hits_fetched_total",
			Help: "Total number of raw hits fetched from source adapters",
		},
		[]string{"engine"},
	)

	// LeadsPersistedTotal counts persistence outcomes per status
	LeadsPersistedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_persisted_total",
			Help: "Total number of lead persistence attempts",
		},
		[]string{"status"}, // status: saved, duplicate, error
	)

	// ExtractionTotal counts extraction passes by method and status
	ExtractionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extraction_total",
			Help: "Total number of extraction passes",
		},
		[]string{"method", "status"}, // method: pattern, ai
	)

	// ExtractionDuration measures time to extract fields from one hit
	ExtractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "extraction_duration_seconds",
			Help:    "Time taken to extract structured fields from a hit",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	// DispatchDuration measures time for one adapter's search pass
	DispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dispatch_duration_seconds",
			Help:    "Time taken for one adapter search pass",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"engine"},
	)

	// DispatchErrors counts errors during adapter dispatch
	DispatchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_errors_total",
			Help: "Total number of adapter dispatch errors",
		},
		[]string{"engine", "error_type"},
	)

	// ContentFetchAttemptsTotal counts content fetch attempts by result
	ContentFetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_fetch_attempts_total",
			Help: "Total number of content fetch attempts",
		},
		[]string{"result"}, // result: success, failure, skipped
	)

	// ContentFetchDuration measures time to fetch article content
	ContentFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "content_fetch_duration_seconds",
			Help:    "Time taken to fetch article content",
			Buckets: []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8},
		},
	)

	// ContentFetchSize measures fetched content size in bytes
	ContentFetchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "content_fetch_size_bytes",
			Help: "Fetched article content size in bytes",
			Buckets: []float64{
				100, 200, 400, 800, 1600, 3200, 6400, 12800,
				25600, 51200, 102400, 204800, 409600, 819200,
				1638400, 3276800, 6553600, 10485760, // up to 10MB
			},
		},
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

// OperationDuration measures duration of named internal operations
var OperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "operation_duration_seconds",
		Help:    "Duration of named internal operations",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// RecordOperationDuration records the duration of a named operation
func RecordOperationDuration(operation string, duration time.Duration) {
	OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

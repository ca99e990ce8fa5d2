package observer

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricsEnabled = true // Flag to control metric collection

	// Labels for migration outcome counters
	recordOutcomeLabels = []string{"stage", "action", "environment", "source"}
	// Labels for per-record failures
	recordFailureLabels = []string{"stage", "environment", "error_type"}

	// RecordsProcessedTotal counts resolved records by stage and action.
	RecordsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fwd_crm_migrator_records_processed_total",
			Help: "Total number of records processed, labeled by stage and resolved action.",
		},
		recordOutcomeLabels,
	)
	// RecordFailuresTotal counts per-record failures that were captured in a
	// run summary without aborting the batch.
	RecordFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fwd_crm_migrator_record_failures_total",
			Help: "Total number of per-record failures recorded in run summaries.",
		},
		recordFailureLabels,
	)
	// BatchRunDurationSeconds tracks wall time per batch run.
	BatchRunDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fwd_crm_migrator_batch_run_duration_seconds",
			Help:    "Histogram of batch run durations.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
		},
		[]string{"stage", "environment"},
	)
	// SummariesPublishedTotal counts run-summary events published to JetStream.
	SummariesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fwd_crm_migrator_summaries_published_total",
			Help: "Total number of run summary events published, labeled by outcome.",
		},
		[]string{"stage", "environment", "status"},
	)
)

// Labels for database operations
var (
	dbOperationLabels = []string{"operation", "entity", "environment", "status"}

	// DatabaseOperationDurationSeconds tracks durations of repository operations.
	DatabaseOperationDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fwd_crm_migrator_db_operation_duration_seconds",
			Help:    "Histogram of database operation durations.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
		},
		dbOperationLabels,
	)
)

// --- Import Worker Pool Metrics ---
var (
	importLabels       = []string{"environment"}
	importStatusLabels = []string{"environment", "status"}

	importJobsSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fwd_crm_migrator_import_jobs_submitted_total",
			Help: "Total number of CSV import jobs submitted to the worker pool.",
		},
		importLabels,
	)
	importJobsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fwd_crm_migrator_import_jobs_processed_total",
			Help: "Total number of CSV import jobs processed, labeled by final status.",
		},
		importStatusLabels,
	)
	importQueueLength = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fwd_crm_migrator_import_queue_length",
		Help: "Approximate number of jobs waiting in the import worker pool queue.",
	})
)

// InitMetrics initializes metric collection if enabled.
// Call this function during application startup.
func InitMetrics(enabled bool) {
	metricsEnabled = enabled
	// Metrics are auto-registered via promauto; nothing else to do here.
}

// IncRecordProcessed increments the processed-records counter.
func IncRecordProcessed(stage, action, environment, source string) {
	if !metricsEnabled {
		return
	}
	RecordsProcessedTotal.WithLabelValues(stage, action, sanitizeEnvironment(environment), source).Inc()
}

// IncRecordFailure increments the per-record failure counter.
func IncRecordFailure(stage, environment, errorType string) {
	if !metricsEnabled {
		return
	}
	RecordFailuresTotal.WithLabelValues(stage, sanitizeEnvironment(environment), SanitizeErrorType(errorType)).Inc()
}

// ObserveBatchRunDuration records the wall time of a batch run.
func ObserveBatchRunDuration(stage, environment string, duration time.Duration) {
	if !metricsEnabled {
		return
	}
	BatchRunDurationSeconds.WithLabelValues(stage, sanitizeEnvironment(environment)).Observe(duration.Seconds())
}

// IncSummaryPublished counts a run-summary publish attempt.
func IncSummaryPublished(stage, environment string, err error) {
	if !metricsEnabled {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	SummariesPublishedTotal.WithLabelValues(stage, sanitizeEnvironment(environment), status).Inc()
}

// ObserveDbOperationDuration records the duration for a database operation.
func ObserveDbOperationDuration(operation, entity, environment string, duration time.Duration, err error) {
	if !metricsEnabled {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	DatabaseOperationDurationSeconds.WithLabelValues(operation, entity, sanitizeEnvironment(environment), status).Observe(duration.Seconds())
}

// --- Import Metric Helpers ---

// IncImportJobsSubmitted increments the submitted import jobs counter.
func IncImportJobsSubmitted(environment string) {
	if !metricsEnabled {
		return
	}
	importJobsSubmittedTotal.WithLabelValues(sanitizeEnvironment(environment)).Inc()
}

// IncImportJobsProcessed increments the processed import jobs counter.
func IncImportJobsProcessed(environment, status string) {
	if !metricsEnabled {
		return
	}
	importJobsProcessedTotal.WithLabelValues(sanitizeEnvironment(environment), status).Inc()
}

// SetImportQueueLength sets the import queue length gauge.
func SetImportQueueLength(length int) {
	if !metricsEnabled {
		return
	}
	importQueueLength.Set(float64(length))
}

// sanitizeEnvironment ensures the environment label is valid or returns a default.
func sanitizeEnvironment(environment string) string {
	if environment == "" {
		return "unknown"
	}
	return environment
}

// SanitizeErrorType maps specific errors to a coarse category.
// Keep this simple to avoid high cardinality.
func SanitizeErrorType(errStr string) string {
	if errStr == "" || errStr == "none" {
		return "none"
	}

	switch {
	case strings.Contains(errStr, "not yet migrated"):
		return "not_yet_migrated"
	case strings.Contains(errStr, "upstream api"):
		return "upstream_api"
	case strings.Contains(errStr, "database"), strings.Contains(errStr, "SQL"), strings.Contains(errStr, "duplicate key"), strings.Contains(errStr, "constraint"), strings.Contains(errStr, "connection"):
		return "database"
	case strings.Contains(errStr, "validation failed"), strings.Contains(errStr, "invalid record"), strings.Contains(errStr, "bad request"):
		return "validation"
	case strings.Contains(errStr, "not found"), strings.Contains(errStr, "no rows"):
		return "not_found"
	case strings.Contains(errStr, "nats"), strings.Contains(errStr, "jetstream"):
		return "nats"
	case strings.Contains(errStr, "timeout"), strings.Contains(errStr, "deadline exceeded"):
		return "timeout"
	case strings.Contains(errStr, "panic"):
		return "panic"
	default:
		return "unknown"
	}
}

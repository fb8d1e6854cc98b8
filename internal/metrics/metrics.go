package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Conversion metrics
var (
	ConversionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_converter_conversions_total",
			Help: "Total number of conversion attempts by input kind, output format and outcome",
		},
		[]string{"kind", "format", "status"},
	)

	ConversionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_converter_conversion_duration_seconds",
			Help:    "Time spent in a conversion delegate",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"kind"},
	)

	OutputBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_converter_output_bytes_total",
			Help: "Total bytes written to successful conversion outputs",
		},
		[]string{"kind"},
	)
)

// External process metrics
var (
	ExternalProcessDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_converter_external_process_duration_seconds",
			Help:    "Wall time of ffmpeg and soffice invocations",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"tool"},
	)

	ExternalProcessFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_converter_external_process_failures_total",
			Help: "Total number of ffmpeg and soffice invocations that exited non-zero or could not start",
		},
		[]string{"tool"},
	)
)

// Batch metrics
var (
	BatchRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_converter_batch_runs_total",
			Help: "Total number of batch runs",
		},
	)

	BatchFilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_converter_batch_files_total",
			Help: "Files examined by batch runs, by outcome",
		},
		[]string{"outcome"}, // "converted", "failed", "skipped"
	)
)

// History journal metrics
var (
	HistoryQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_converter_history_queries_total",
			Help: "Total number of conversion history queries",
		},
		[]string{"operation", "status"},
	)

	HistoryQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_converter_history_query_duration_seconds",
			Help:    "Conversion history query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)
)

// Filesystem retry metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_converter_filesystem_retry_attempts_total",
			Help: "Total filesystem operation retries after a stale file handle",
		},
		[]string{"operation"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_converter_filesystem_retry_success_total",
			Help: "Filesystem operations that succeeded after at least one retry",
		},
		[]string{"operation"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_converter_filesystem_retry_failures_total",
			Help: "Filesystem operations that failed after exhausting retries",
		},
		[]string{"operation"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_converter_filesystem_stale_errors_total",
			Help: "Stale file handle errors encountered",
		},
		[]string{"operation"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_converter_filesystem_retry_duration_seconds",
			Help:    "Total duration of filesystem operations including retries",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
		},
		[]string{"operation"},
	)
)

// Application info
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_converter_app_info",
			Help: "Application build information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}

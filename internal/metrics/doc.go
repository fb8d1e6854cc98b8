// Package metrics provides Prometheus instrumentation for the converter.
//
// A command-line run is too short-lived to be scraped, so the registry is
// dumped once at exit with [WriteTextfile] when CONVERT_METRICS_FILE is set.
// Point node_exporter's textfile collector at the directory to pick it up.
// All metrics are prefixed with "media_converter_".
//
// # Metric Categories
//
// ## Conversion Metrics
//   - ConversionsTotal: Counter of attempts by kind, output format and status
//   - ConversionDuration: Histogram of delegate run time by kind
//   - OutputBytes: Counter of bytes written by successful conversions
//
// ## External Process Metrics
//   - ExternalProcessDuration: Histogram of ffmpeg/soffice wall time
//   - ExternalProcessFailures: Counter of failed ffmpeg/soffice invocations
//
// ## Batch Metrics
//   - BatchRunsTotal: Counter of batch runs
//   - BatchFilesTotal: Counter of examined files by outcome (converted, failed, skipped)
//
// ## History Metrics
//   - HistoryQueryTotal: Counter of history journal queries by operation and status
//   - HistoryQueryDuration: Histogram of history journal query time
//
// ## Filesystem Metrics
//
// Recorded through [NewFilesystemObserver], installed with filesystem.SetObserver:
//   - FilesystemRetryAttempts, FilesystemRetrySuccess, FilesystemRetryFailures
//   - FilesystemStaleErrors
//   - FilesystemRetryDuration
//
// # Usage
//
//	metrics.InitializeMetrics()
//	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)
//	filesystem.SetObserver(metrics.NewFilesystemObserver())
//	// ... run conversions ...
//	if err := metrics.WriteTextfile(path); err != nil {
//	    logging.Warn("%v", err)
//	}
package metrics

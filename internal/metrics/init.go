package metrics

// Conversion status label values.
const (
	StatusSuccess               = "success"
	StatusNotFound              = "error_not_found"
	StatusUnsupportedType       = "error_unsupported_type"
	StatusUnsupportedConversion = "error_unsupported_conversion"
	StatusMissingDependency     = "error_missing_dependency"
	StatusToolMissing           = "error_tool_missing"
	StatusDelegateFailure       = "error_delegate"
)

// InitializeMetrics pre-populates the expected label combinations so that
// every series appears in the exported textfile, even at zero.
func InitializeMetrics() {
	kinds := []string{"image", "video", "audio", "document", "spreadsheet"}
	for _, kind := range kinds {
		ConversionDuration.WithLabelValues(kind)
		OutputBytes.WithLabelValues(kind)
	}

	for _, tool := range []string{"ffmpeg", "soffice"} {
		ExternalProcessDuration.WithLabelValues(tool)
		ExternalProcessFailures.WithLabelValues(tool)
	}

	for _, outcome := range []string{"converted", "failed", "skipped"} {
		BatchFilesTotal.WithLabelValues(outcome)
	}

	for _, op := range []string{"stat", "open", "readdir"} {
		FilesystemRetryAttempts.WithLabelValues(op)
		FilesystemRetrySuccess.WithLabelValues(op)
		FilesystemRetryFailures.WithLabelValues(op)
		FilesystemStaleErrors.WithLabelValues(op)
		FilesystemRetryDuration.WithLabelValues(op)
	}
}

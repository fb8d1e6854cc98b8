// Package startup handles converter initialization: configuration loading and
// probing of the optional collaborators conversions are delegated to.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig].
// The following environment variables are supported:
//
//   - CONVERT_OUTPUT_DIR: Directory outputs are written to (default: .)
//   - CONVERT_QUALITY: Encoder quality for lossy image outputs, 1-100 (default: 95)
//   - CONVERT_TIMEOUT: Per-conversion time limit as Go duration, 0 disables (default: 0)
//   - CONVERT_PRESETS: YAML file overriding the ffmpeg preset table
//   - CONVERT_HISTORY_DB: SQLite file conversions are journaled to (default: disabled)
//   - CONVERT_METRICS_FILE: Prometheus textfile written on exit (default: disabled)
//   - FFMPEG_PATH: ffmpeg binary to use instead of the one on PATH
//   - SOFFICE_PATH: LibreOffice soffice binary to use instead of searching for one
//   - VIPS_DISABLED: Skip libvips initialization (default: false)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: warn)
//
// # Capabilities
//
// [ProbeCapabilities] looks for ffmpeg and soffice and initializes libvips,
// returning a [Capabilities] value that the conversion registry consults
// before handing work to a collaborator that may be missing.
//
// # Example Usage
//
//	config, err := startup.LoadConfig()
//	if err != nil {
//	    return fmt.Errorf("configuration error: %w", err)
//	}
//	caps := startup.ProbeCapabilities(ctx, config, media.InitVips)
package startup

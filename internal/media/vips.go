package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"media-converter/internal/logging"
	"media-converter/internal/workers"

	"github.com/davidbyttow/govips/v2/vips"
	"github.com/disintegration/imaging"
)

// ErrVipsUnavailable is returned when an operation needs libvips but it was
// disabled or never initialized.
var ErrVipsUnavailable = errors.New("libvips not available")

var (
	vipsInitialized bool
	vipsInitMutex   sync.Mutex
	vipsAvailable   bool
)

// vipsLogSettings maps the application log level onto the libvips log level
// and returns a handler that forwards libvips messages to our logger.
func vipsLogSettings(appLevel logging.LogLevel) (vips.LogLevel, func(string, vips.LogLevel, string)) {
	var vipsLevel vips.LogLevel
	switch appLevel {
	case logging.LevelDebug:
		vipsLevel = vips.LogLevelInfo
	case logging.LevelInfo:
		vipsLevel = vips.LogLevelWarning
	case logging.LevelWarn:
		vipsLevel = vips.LogLevelError
	default:
		vipsLevel = vips.LogLevelCritical
	}

	handler := func(domain string, level vips.LogLevel, msg string) {
		// Lower values are more severe in glib's ordering.
		if level > vipsLevel {
			return
		}
		switch level {
		case vips.LogLevelError, vips.LogLevelCritical:
			logging.Error("[%s] %s", domain, msg)
		case vips.LogLevelWarning:
			logging.Warn("[%s] %s", domain, msg)
		default:
			logging.Debug("[%s] %s", domain, msg)
		}
	}

	return vipsLevel, handler
}

// InitVips initializes the libvips library.
// It is safe to call more than once; only the first call does any work.
func InitVips() error {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		return nil
	}

	// Logging must be configured before Startup to respect LOG_LEVEL.
	vipsLevel, handler := vipsLogSettings(logging.GetLevel())
	vips.LoggingSettings(handler, vipsLevel)

	// Conversions are sequential; libvips threads within one image.
	vips.Startup(&vips.Config{
		ConcurrencyLevel: workers.ForCPU(4),
		MaxCacheMem:      50 * 1024 * 1024,
		MaxCacheSize:     100,
		ReportLeaks:      false,
		CacheTrace:       false,
		CollectStats:     false,
	})

	vipsInitialized = true
	vipsAvailable = true
	logging.Debug("libvips initialized (version: %s)", vips.Version)
	return nil
}

// ShutdownVips cleans up libvips resources.
// govips cannot be restarted in the same process after this.
func ShutdownVips() {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		vips.Shutdown()
		vipsInitialized = false
		vipsAvailable = false
		logging.Debug("libvips shutdown complete")
	}
}

// IsVipsAvailable returns whether libvips is initialized and available
func IsVipsAvailable() bool {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()
	return vipsAvailable
}

// loadWithVips decodes path with libvips and hands it back as an image.Image.
// It is the fallback for inputs the Go decoders reject.
func loadWithVips(path string) (image.Image, error) {
	if !IsVipsAvailable() {
		return nil, ErrVipsUnavailable
	}

	logging.Debug("Loading %s with vips", filepath.Base(path))

	ref, err := vips.LoadImageFromFile(path, vips.NewImportParams())
	if err != nil {
		return nil, fmt.Errorf("vips failed to load image: %w", err)
	}
	defer ref.Close()

	if err := ref.AutoRotate(); err != nil {
		return nil, fmt.Errorf("vips auto-rotate failed: %w", err)
	}

	// PNG keeps alpha so the caller can still decide whether to flatten.
	imgBytes, _, err := ref.ExportPng(vips.NewPngExportParams())
	if err != nil {
		return nil, fmt.Errorf("vips export failed: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode vips output: %w", err)
	}
	return img, nil
}

// encodeWithVips converts input straight to output with libvips for formats
// the Go encoders cannot write.
func encodeWithVips(input, output, format string, quality int) error {
	if !IsVipsAvailable() {
		return ErrVipsUnavailable
	}

	ref, err := vips.LoadImageFromFile(input, vips.NewImportParams())
	if err != nil {
		return fmt.Errorf("vips failed to load image: %w", err)
	}
	defer ref.Close()

	if err := ref.AutoRotate(); err != nil {
		return fmt.Errorf("vips auto-rotate failed: %w", err)
	}

	var buf []byte
	switch format {
	case "webp":
		params := vips.NewWebpExportParams()
		params.Quality = quality
		buf, _, err = ref.ExportWebp(params)
	case "avif":
		params := vips.NewAvifExportParams()
		params.Quality = quality
		buf, _, err = ref.ExportAvif(params)
	case "heic", "heif":
		params := vips.NewHeifExportParams()
		params.Quality = quality
		buf, _, err = ref.ExportHeif(params)
	default:
		return fmt.Errorf("vips cannot encode %s", format)
	}
	if err != nil {
		return fmt.Errorf("vips %s export failed: %w", format, err)
	}

	if err := os.WriteFile(output, buf, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	return nil
}

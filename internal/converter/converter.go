package converter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"media-converter/internal/filesystem"
	"media-converter/internal/logging"
	"media-converter/internal/mediatypes"
	"media-converter/internal/metrics"
	"media-converter/internal/startup"
	"media-converter/internal/transcoder"
)

// Options configures a Converter.
type Options struct {
	// OutputDir receives every output file. Empty means the working directory.
	OutputDir string
	// Quality is the encoder quality for lossy image outputs.
	Quality int
	// Timeout bounds each conversion. Zero means no limit.
	Timeout time.Duration
	// Presets are the ffmpeg argument tables.
	Presets transcoder.Presets
	// FFmpegPath is used when the startup probe did not find ffmpeg, so the
	// failure surfaces from the attempted run.
	FFmpegPath string
	// Retry governs stat, open and readdir retries on stale NFS handles.
	Retry filesystem.RetryConfig
	// Recorder, when set, is told about every attempt.
	Recorder Recorder
}

// DefaultOptions returns Options with the default quality, presets and retry policy.
func DefaultOptions() Options {
	return Options{
		Quality: startup.DefaultQuality,
		Presets: transcoder.DefaultPresets(),
		Retry:   filesystem.DefaultRetryConfig(),
	}
}

// Attempt describes one finished conversion attempt.
type Attempt struct {
	InputPath string
	Kind      mediatypes.Kind
	Format    string
	Result    Result
	Started   time.Time
	Duration  time.Duration
	// SourceDigest is the input's BLAKE2b-256 digest taken before the
	// delegate ran. Empty when the input was missing or nothing records.
	SourceDigest string
}

// Recorder receives every conversion attempt, successful or not.
type Recorder interface {
	Record(ctx context.Context, a Attempt) error
}

// Converter runs single-file and batch conversions.
type Converter struct {
	registry *Registry
	opts     Options
}

// New creates a Converter whose registry is built from caps and opts.
func New(caps startup.Capabilities, opts Options) *Converter {
	return &Converter{
		registry: NewRegistry(caps, opts),
		opts:     opts,
	}
}

// OutputPath returns where converting input to format writes its output.
func (c *Converter) OutputPath(input, format string) string {
	return filepath.Join(c.opts.OutputDir, mediatypes.OutputName(input, format))
}

// ConvertFile converts one file. It never panics and never returns an
// error; every outcome is described by the Result.
func (c *Converter) ConvertFile(ctx context.Context, req Request) (result Result) {
	started := time.Now()
	kind := mediatypes.Classify(req.InputPath)
	format := mediatypes.NormalizeFormat(req.OutputFormat)
	var digest string

	defer func() {
		metrics.ConversionsTotal.WithLabelValues(string(kind), format, statusLabel(result.Err)).Inc()
		c.record(ctx, Attempt{
			InputPath:    req.InputPath,
			Kind:         kind,
			Format:       format,
			Result:       result,
			Started:      started,
			Duration:     time.Since(started),
			SourceDigest: digest,
		})
	}()
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Conversion of %s panicked: %v", req.InputPath, r)
			err := &DelegateError{Op: string(kind), Err: fmt.Errorf("panic: %v", r)}
			result = failed("Error: "+err.Error(), err)
		}
	}()

	if _, err := filesystem.StatWithRetry(req.InputPath, c.opts.Retry); err != nil {
		logging.Debug("Stat %s: %v", req.InputPath, err)
		return failed(fmt.Sprintf("Error: File '%s' not found", req.InputPath),
			fmt.Errorf("%s: %w", req.InputPath, ErrFileNotFound))
	}
	// The output may replace the input, so the digest is taken up front.
	if c.opts.Recorder != nil {
		var err error
		if digest, err = Digest(req.InputPath, c.opts.Retry); err != nil {
			logging.Debug("Digest of %s failed: %v", req.InputPath, err)
		}
	}

	delegate, err := c.registry.Lookup(req.InputPath, format)
	if err != nil {
		if errors.Is(err, ErrUnsupportedType) {
			return failed("Unsupported file type: "+filepath.Ext(req.InputPath), err)
		}
		return failed(fmt.Sprintf("Conversion from %s to %s not supported",
			mediatypes.Ext(req.InputPath), req.OutputFormat), err)
	}

	output := c.OutputPath(req.InputPath, format)
	_, statErr := os.Stat(output)
	preexisting := statErr == nil

	runCtx := ctx
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	logging.Debug("Converting %s -> %s via %s", req.InputPath, output, delegate.Op)
	runStart := time.Now()
	err = delegate.Run(runCtx, req.InputPath, output, format)
	metrics.ConversionDuration.WithLabelValues(string(kind)).Observe(time.Since(runStart).Seconds())

	if err != nil {
		if !preexisting {
			removePartial(output)
		}
		mapped := mapDelegateError(delegate.Op, err)
		logging.Debug("Conversion of %s failed: %v", req.InputPath, err)
		return failed(failureMessage(delegate.Op, mapped), mapped)
	}

	if info, err := os.Stat(output); err == nil {
		metrics.OutputBytes.WithLabelValues(string(kind)).Add(float64(info.Size()))
	}
	return succeeded(output)
}

func removePartial(path string) {
	err := os.Remove(path)
	switch {
	case err == nil:
		logging.Debug("Removed partial output %s", path)
	case !errors.Is(err, os.ErrNotExist):
		logging.Warn("failed to remove partial output %s: %v", path, err)
	}
}

func (c *Converter) record(ctx context.Context, a Attempt) {
	if c.opts.Recorder == nil {
		return
	}
	// The attempt is journaled even when ctx was cancelled mid-conversion.
	if err := c.opts.Recorder.Record(context.WithoutCancel(ctx), a); err != nil {
		logging.Warn("failed to record conversion of %s: %v", a.InputPath, err)
	}
}

package transcoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"time"

	"media-converter/internal/logging"
	"media-converter/internal/mediatypes"
	"media-converter/internal/metrics"
)

// ErrFFmpegNotFound is returned when the ffmpeg binary cannot be executed.
var ErrFFmpegNotFound = errors.New("ffmpeg not installed")

// InstallHint tells the user how to get ffmpeg.
const InstallHint = "Install with: apt install ffmpeg, brew install ffmpeg, or winget install ffmpeg"

// ExitError is returned when ffmpeg runs but exits unsuccessfully.
// Its message is ffmpeg's stderr.
type ExitError struct {
	Stderr string
	Err    error
}

func (e *ExitError) Error() string {
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		return msg
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Transcoder runs ffmpeg to convert audio and video files.
type Transcoder struct {
	ffmpegPath string
	presets    Presets
}

// New creates a Transcoder. An empty ffmpegPath means "ffmpeg" from PATH.
func New(ffmpegPath string, presets Presets) *Transcoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Transcoder{
		ffmpegPath: ffmpegPath,
		presets:    presets,
	}
}

// BuildArgs assembles the ffmpeg argument list: the input, the preset, and
// the output with overwrite enabled.
func BuildArgs(input, output string, preset []string) []string {
	args := make([]string, 0, len(preset)+5)
	args = append(args, "-i", input)
	args = append(args, preset...)
	args = append(args, "-y", output)
	return args
}

// Convert transcodes input into output using the preset for kind and format.
func (t *Transcoder) Convert(ctx context.Context, kind mediatypes.Kind, input, output, format string) error {
	args := BuildArgs(input, output, t.presets.For(kind, format))

	cmd := exec.CommandContext(ctx, t.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logging.Debug("Executing: %s %s", t.ffmpegPath, strings.Join(args, " "))

	start := time.Now()
	err := cmd.Run()
	metrics.ExternalProcessDuration.WithLabelValues("ffmpeg").Observe(time.Since(start).Seconds())

	if err == nil {
		return nil
	}

	metrics.ExternalProcessFailures.WithLabelValues("ffmpeg").Inc()

	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w. %s", ErrFFmpegNotFound, InstallHint)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	logging.Debug("FFmpeg stderr: %s", stderr.String())
	return &ExitError{Stderr: stderr.String(), Err: err}
}

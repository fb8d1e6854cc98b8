package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"media-converter/internal/converter"
	"media-converter/internal/document"
	"media-converter/internal/filesystem"
	"media-converter/internal/history"
	"media-converter/internal/logging"
	"media-converter/internal/media"
	"media-converter/internal/memory"
	"media-converter/internal/metrics"
	"media-converter/internal/startup"
	"media-converter/internal/transcoder"

	"golang.org/x/term"
)

func main() {
	code := run(os.Args[1:], os.Stdout)
	media.ShutdownVips()
	os.Exit(code)
}

// marks are the prefixes for success and failure lines.
type marks struct {
	ok, fail string
}

// outputMarks returns check and cross glyphs for a terminal and plain words
// for anything else.
func outputMarks(w io.Writer) marks {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return marks{ok: "✓", fail: "✗"}
	}
	return marks{ok: "OK", fail: "ERROR"}
}

func (m marks) line(r converter.Result) string {
	if r.Success {
		return m.ok + " " + r.Message
	}
	return m.fail + " " + r.Message
}

// run executes one invocation and returns the process exit code.
func run(args []string, stdout io.Writer) (code int) {
	if len(args) < 2 {
		printUsage(stdout)
		return 1
	}

	m := outputMarks(stdout)
	batch := args[0] == "--batch"
	if batch && len(args) < 3 {
		fmt.Fprintf(stdout, "%s Error: Please provide directory and output format\n", m.fail)
		return 1
	}

	info := startup.GetBuildInfo()
	logging.Debug("media-converter %s (commit %s, built %s, %s %s/%s)",
		info.Version, info.Commit, info.BuildTime, info.GoVersion, info.OS, info.Arch)

	mem := memory.ConfigureFromEnv()
	if mem.Configured {
		logging.Debug("Memory limit: %s (%s)", memory.FormatBytes(mem.GoMemLimit), mem.Source)
	}

	config, err := startup.LoadConfig()
	if err != nil {
		fmt.Fprintf(stdout, "%s Error: Configuration error: %v\n", m.fail, err)
		return 1
	}

	// Create a context that cancels on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	caps := startup.ProbeCapabilities(ctx, config, media.InitVips)

	presets, err := transcoder.LoadPresets(config.PresetsFile)
	if err != nil {
		logging.Warn("%v; using built-in presets", err)
	}

	metrics.InitializeMetrics()
	metrics.SetAppInfo(info.Version, info.Commit, info.GoVersion)
	filesystem.SetObserver(metrics.NewFilesystemObserver())
	if config.MetricsFile != "" {
		defer func() {
			if err := metrics.WriteTextfile(config.MetricsFile); err != nil {
				logging.Warn("%v", err)
			}
		}()
	}

	opts := converter.DefaultOptions()
	opts.OutputDir = config.OutputDir
	opts.Quality = config.Quality
	opts.Timeout = config.Timeout
	opts.Presets = presets
	opts.FFmpegPath = config.FFmpegPath

	if config.HistoryDB != "" {
		journal, err := history.Open(ctx, config.HistoryDB)
		if err != nil {
			logging.Warn("Conversion history disabled: %v", err)
		} else {
			defer func() {
				if err := journal.Close(); err != nil {
					logging.Warn("failed to close history database: %v", err)
				}
			}()
			logging.Debug("Recording conversions to %s, run %s", config.HistoryDB, journal.RunID())
			opts.Recorder = journal
		}
	}

	conv := converter.New(caps, opts)

	if batch {
		return runBatch(ctx, conv, args[1], args[2], stdout, m)
	}

	result := conv.ConvertFile(ctx, converter.Request{InputPath: args[0], OutputFormat: args[1]})
	fmt.Fprintln(stdout, m.line(result))
	if !result.Success {
		return 1
	}
	return 0
}

func runBatch(ctx context.Context, conv *converter.Converter, dir, format string, stdout io.Writer, m marks) int {
	report, err := conv.ConvertBatch(ctx, dir, format, converter.Progress{
		Start: func(name string) {
			fmt.Fprintf(stdout, "\nConverting: %s\n", name)
		},
		Done: func(_ string, r converter.Result) {
			fmt.Fprintln(stdout, m.line(r))
		},
	})

	switch {
	case errors.Is(err, context.Canceled):
		fmt.Fprintf(stdout, "\n%s Interrupted after %d/%d files\n", m.fail, report.Converted, report.Examined)
		return 1
	case err != nil:
		fmt.Fprintf(stdout, "%s Error: %v\n", m.fail, err)
		return 1
	}

	fmt.Fprintf(stdout, "\n%s Converted %d/%d files\n", m.ok, report.Converted, report.Examined)
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Universal File Converter")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  Single file:  convert <input_file> <output_format>")
	fmt.Fprintln(w, "  Batch mode:   convert --batch <directory> <output_format>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Supported Formats:")
	fmt.Fprintf(w, "  Images:    %s\n", strings.Join(media.OutputFormats(), ", "))
	fmt.Fprintln(w, "  Videos:    mp4, avi, mkv, mov, webm, gif")
	fmt.Fprintln(w, "  Audio:     mp3, wav, ogg, flac, m4a, aac")
	fmt.Fprintf(w, "  Documents: %s\n", documentPairs())
	fmt.Fprintln(w, "  Excel:     xls -> xlsx")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  convert image.png jpg")
	fmt.Fprintln(w, "  convert video.mp4 webm")
	fmt.Fprintln(w, "  convert document.docx pdf")
	fmt.Fprintln(w, "  convert file.pdf txt")
	fmt.Fprintln(w, "  convert --batch ./files pdf")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  CONVERT_OUTPUT_DIR    - Directory for output files (default: .)")
	fmt.Fprintf(w, "  CONVERT_QUALITY       - Image encoder quality, 1-100 (default: %d)\n", startup.DefaultQuality)
	fmt.Fprintln(w, "  CONVERT_TIMEOUT       - Per-file time limit, e.g. 10m (default: none)")
	fmt.Fprintln(w, "  CONVERT_PRESETS       - YAML file overriding ffmpeg presets")
	fmt.Fprintln(w, "  CONVERT_HISTORY_DB    - SQLite file recording every conversion")
	fmt.Fprintln(w, "  CONVERT_METRICS_FILE  - Prometheus textfile written on exit")
	fmt.Fprintln(w, "  FFMPEG_PATH, SOFFICE_PATH - Explicit tool locations")
	fmt.Fprintln(w, "  VIPS_DISABLED         - Do not use libvips")
	fmt.Fprintln(w, "  VIPS_CONCURRENCY      - libvips threads per image")
	fmt.Fprintln(w, "  LOG_LEVEL             - debug, info, warn or error (default: warn)")
}

// documentPairs lists the document conversions as "from -> to" pairs.
func documentPairs() string {
	pairs := document.Pairs()
	names := make([]string, len(pairs))
	for i, p := range pairs {
		names[i] = p[0] + " -> " + p[1]
	}
	return strings.Join(names, ", ")
}

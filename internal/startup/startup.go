package startup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"media-converter/internal/logging"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
	GoVersion string
	OS        string
	Arch      string
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// DefaultQuality is the encoder quality used for lossy image outputs.
const DefaultQuality = 95

// Config holds all converter configuration
type Config struct {
	OutputDir    string
	Quality      int
	Timeout      time.Duration
	PresetsFile  string
	HistoryDB    string
	MetricsFile  string
	FFmpegPath   string
	SofficePath  string
	VipsDisabled bool
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	logging.Debug("------------------------------------------------------------")
	logging.Debug("CONFIGURATION")
	logging.Debug("------------------------------------------------------------")

	outputDir := getEnv("CONVERT_OUTPUT_DIR", ".")
	quality := getEnvInt("CONVERT_QUALITY", DefaultQuality)
	timeout := getEnvDuration("CONVERT_TIMEOUT", 0)
	presetsFile := getEnv("CONVERT_PRESETS", "")
	historyDB := getEnv("CONVERT_HISTORY_DB", "")
	metricsFile := getEnv("CONVERT_METRICS_FILE", "")
	ffmpegPath := getEnv("FFMPEG_PATH", "")
	sofficePath := getEnv("SOFFICE_PATH", "")
	vipsDisabled := getEnvBool("VIPS_DISABLED", false)

	logging.Debug("  CONVERT_OUTPUT_DIR:   %s", outputDir)
	logging.Debug("  CONVERT_QUALITY:      %d", quality)
	logging.Debug("  CONVERT_TIMEOUT:      %v", timeout)
	logging.Debug("  CONVERT_PRESETS:      %s", presetsFile)
	logging.Debug("  CONVERT_HISTORY_DB:   %s", historyDB)
	logging.Debug("  CONVERT_METRICS_FILE: %s", metricsFile)
	logging.Debug("  FFMPEG_PATH:          %s", ffmpegPath)
	logging.Debug("  SOFFICE_PATH:         %s", sofficePath)
	logging.Debug("  VIPS_DISABLED:        %v", vipsDisabled)
	logging.Debug("  LOG_LEVEL:            %s", logging.GetLevel())

	if quality < 1 || quality > 100 {
		logging.Warn("CONVERT_QUALITY %d out of range (1-100), using default: %d", quality, DefaultQuality)
		quality = DefaultQuality
	}
	if timeout < 0 {
		logging.Warn("Negative CONVERT_TIMEOUT, conversions will not time out")
		timeout = 0
	}

	info, err := os.Stat(outputDir)
	if err != nil {
		return nil, fmt.Errorf("output directory error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("output directory error: %s is not a directory", outputDir)
	}

	return &Config{
		OutputDir:    outputDir,
		Quality:      quality,
		Timeout:      timeout,
		PresetsFile:  presetsFile,
		HistoryDB:    historyDB,
		MetricsFile:  metricsFile,
		FFmpegPath:   ffmpegPath,
		SofficePath:  sofficePath,
		VipsDisabled: vipsDisabled,
	}, nil
}

// Capabilities records which optional collaborators were found at startup.
// It is filled once and never mutated afterwards.
type Capabilities struct {
	FFmpeg      bool
	FFmpegPath  string
	Soffice     bool
	SofficePath string
	Vips        bool
}

// sofficeCandidates are probed in order when SOFFICE_PATH is not set and
// soffice is not on PATH.
var sofficeCandidates = []string{
	"/opt/homebrew/bin/soffice",
	"/Applications/LibreOffice.app/Contents/MacOS/soffice",
	"/usr/bin/libreoffice",
	"/usr/bin/soffice",
	"/usr/lib/libreoffice/program/soffice",
	"/opt/libreoffice/program/soffice",
}

// ProbeCapabilities checks the external binaries and libraries the converter can
// delegate to. initVips is called unless libvips was disabled in config; a nil
// initVips is treated as libvips being unavailable.
func ProbeCapabilities(ctx context.Context, config *Config, initVips func() error) Capabilities {
	var caps Capabilities

	if path, err := findFFmpeg(ctx, config.FFmpegPath); err != nil {
		logging.Debug("  FFmpeg check failed: %v", err)
	} else {
		caps.FFmpeg = true
		caps.FFmpegPath = path
	}

	if path, err := findSoffice(config.SofficePath); err != nil {
		logging.Debug("  LibreOffice check failed: %v", err)
	} else {
		caps.Soffice = true
		caps.SofficePath = path
	}

	switch {
	case config.VipsDisabled:
		logging.Debug("  libvips disabled via VIPS_DISABLED")
	case initVips == nil:
		logging.Debug("  libvips not linked")
	default:
		if err := initVips(); err != nil {
			logging.Warn("libvips initialization failed: %v", err)
		} else {
			caps.Vips = true
		}
	}

	logging.Debug("  Feature availability:")
	logging.Debug("    FFmpeg:      %s", enabledString(caps.FFmpeg))
	logging.Debug("    LibreOffice: %s", enabledString(caps.Soffice))
	logging.Debug("    libvips:     %s", enabledString(caps.Vips))
	logging.Debug("    History:     %s", enabledString(config.HistoryDB != ""))
	logging.Debug("    Metrics:     %s", enabledString(config.MetricsFile != ""))

	return caps
}

func findFFmpeg(ctx context.Context, override string) (string, error) {
	name := "ffmpeg"
	if override != "" {
		name = override
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s not found: %w", name, err)
	}
	logging.Debug("  FFmpeg path: %s", path)

	if logging.IsDebugEnabled() {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		output, err := exec.CommandContext(ctx, path, "-version").Output()
		if err != nil {
			return "", fmt.Errorf("failed to get ffmpeg version: %w", err)
		}
		if line, _, _ := strings.Cut(string(output), "\n"); line != "" {
			logging.Debug("  FFmpeg version: %s", strings.TrimSpace(line))
		}
	}

	return path, nil
}

func findSoffice(override string) (string, error) {
	if override != "" {
		path, err := exec.LookPath(override)
		if err != nil {
			return "", fmt.Errorf("SOFFICE_PATH %s not usable: %w", override, err)
		}
		return path, nil
	}

	if path, err := exec.LookPath("soffice"); err == nil {
		return path, nil
	}
	for _, candidate := range sofficeCandidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("soffice not found in PATH or standard install locations")
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logging.Warn("Invalid %s %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

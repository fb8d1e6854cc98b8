package converter

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"media-converter/internal/filesystem"
	"media-converter/internal/logging"
	"media-converter/internal/metrics"
)

// Progress receives batch events. Either hook may be nil.
type Progress struct {
	// Start is called before a file is converted.
	Start func(name string)
	// Done is called with the file's result once it is converted.
	Done func(name string, r Result)
}

// ConvertBatch converts every convertible regular file directly inside dir
// to format, one at a time, in directory listing order. Files of unknown
// kind, or whose conversion to format is unsupported, are skipped but still
// count towards Examined. Skipped files never reach progress.
//
// An error is returned only when dir cannot be listed, or when ctx is
// cancelled part way through; in the latter case the report covers the
// files handled so far.
func (c *Converter) ConvertBatch(ctx context.Context, dir, format string, progress Progress) (BatchReport, error) {
	var report BatchReport

	entries, err := filesystem.ReadDirWithRetry(dir, c.opts.Retry)
	if err != nil {
		return report, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	metrics.BatchRunsTotal.Inc()

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if !c.isRegularFile(path, entry) {
			continue
		}
		report.Examined++

		if !c.registry.Supports(path, format) {
			logging.Debug("Skipping %s", entry.Name())
			metrics.BatchFilesTotal.WithLabelValues("skipped").Inc()
			continue
		}

		if err := ctx.Err(); err != nil {
			return report, err
		}

		if progress.Start != nil {
			progress.Start(entry.Name())
		}
		result := c.ConvertFile(ctx, Request{InputPath: path, OutputFormat: format})
		report.Results = append(report.Results, result)
		if result.Success {
			report.Converted++
			metrics.BatchFilesTotal.WithLabelValues("converted").Inc()
		} else {
			metrics.BatchFilesTotal.WithLabelValues("failed").Inc()
		}
		if progress.Done != nil {
			progress.Done(entry.Name(), result)
		}
	}

	logging.Debug("Batch %s: converted %d of %d files", dir, report.Converted, report.Examined)
	return report, nil
}

// isRegularFile reports whether entry is a regular file, following symlinks.
func (c *Converter) isRegularFile(path string, entry fs.DirEntry) bool {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.Type().IsRegular()
	}
	info, err := filesystem.StatWithRetry(path, c.opts.Retry)
	if err != nil {
		logging.Debug("Skipping dangling link %s: %v", path, err)
		return false
	}
	return info.Mode().IsRegular()
}

// Command convert converts images, video, audio, documents and spreadsheets
// between formats.
//
// Usage:
//
//	convert <input_file> <output_format>
//	convert --batch <directory> <output_format>
//
// The output is named after the input with its extension replaced by the
// lowercased format, and is written to CONVERT_OUTPUT_DIR (default: the
// current directory). Each attempt prints one line:
//
//	✓ Converted: photo.jpg
//	✗ Unsupported file type: .zip
//
// When stdout is not a terminal the glyphs become OK and ERROR.
//
// Batch mode converts every regular file directly inside the directory whose
// type and target format are supported, one at a time, then prints
// "✓ Converted N/M files" where M counts all regular files examined.
//
// # Exit Status
//
//   - 0: the single conversion succeeded, or the batch directory was processed
//   - 1: usage error, configuration error, a failed single conversion, an
//     unreadable batch directory, or an interrupted batch
//
// # Collaborators
//
// Images use Go codecs, with libvips for webp, avif and heic output. Video and
// audio need ffmpeg. Word documents to and from PDF need LibreOffice. Missing
// collaborators are detected at startup and reported per conversion.
//
// # Environment
//
//	CONVERT_OUTPUT_DIR    Directory for output files (default: .)
//	CONVERT_QUALITY       Image encoder quality, 1-100 (default: 95)
//	CONVERT_TIMEOUT       Per-file time limit as a Go duration (default: none)
//	CONVERT_PRESETS       YAML file overriding ffmpeg presets
//	CONVERT_HISTORY_DB    SQLite file recording every conversion (default: off)
//	CONVERT_METRICS_FILE  Prometheus textfile written on exit (default: off)
//	FFMPEG_PATH           ffmpeg binary (default: from PATH)
//	SOFFICE_PATH          LibreOffice soffice binary (default: PATH, then
//	                      standard install locations)
//	VIPS_DISABLED         Set to true to skip libvips
//	VIPS_CONCURRENCY      libvips threads per image (default: CPUs, max 4)
//	LOG_LEVEL             debug, info, warn or error
//	GOMEMLIMIT, MEMORY_LIMIT, MEMORY_RATIO
//	                      Go heap limit
//
// Diagnostics are logged to stderr; result lines go to stdout.
package main

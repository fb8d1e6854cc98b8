// Package logging provides a simple leveled logger for the converter.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Warning conditions (default)
//   - ERROR: Error conditions
//
// The level is configured via the LOG_LEVEL environment variable, or forced to
// debug with DEBUG=true. All output goes to stderr; per-file conversion results
// are printed to stdout by the command itself.
package logging

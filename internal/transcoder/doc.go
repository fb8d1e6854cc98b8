// Package transcoder converts audio and video files by running FFmpeg.
//
// Each output extension maps to a fixed list of codec arguments (a preset);
// unrecognised extensions fall back to a generic default for the input's
// kind. The table can be overridden from a YAML file with [LoadPresets].
//
// FFmpeg must be installed. It is looked up on PATH unless an explicit path
// is given to [New].
package transcoder

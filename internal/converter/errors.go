package converter

import (
	"context"
	"errors"

	"media-converter/internal/document"
	"media-converter/internal/media"
	"media-converter/internal/metrics"
	"media-converter/internal/spreadsheet"
	"media-converter/internal/transcoder"
)

// Conversion failure taxonomy. Every failed Result carries an Err that
// matches exactly one of these with errors.Is, or a *DelegateError.
var (
	ErrFileNotFound          = errors.New("file not found")
	ErrUnsupportedType       = errors.New("unsupported file type")
	ErrUnsupportedConversion = errors.New("unsupported conversion")
	ErrMissingDependency     = errors.New("missing optional dependency")
	ErrToolMissing           = errors.New("external tool missing")
)

// DelegateError is a failure reported by the library or process doing the
// conversion. Its message is the delegate's, unchanged.
type DelegateError struct {
	Op  string
	Err error
}

func (e *DelegateError) Error() string {
	return e.Err.Error()
}

func (e *DelegateError) Unwrap() error {
	return e.Err
}

// taggedError attaches a taxonomy sentinel to a delegate error without
// changing its message.
type taggedError struct {
	sentinel error
	err      error
}

func (e *taggedError) Error() string {
	return e.err.Error()
}

func (e *taggedError) Unwrap() []error {
	return []error{e.sentinel, e.err}
}

// mapDelegateError places an error returned by a delegate into the taxonomy.
func mapDelegateError(op string, err error) error {
	switch {
	case errors.Is(err, transcoder.ErrFFmpegNotFound):
		return &taggedError{sentinel: ErrToolMissing, err: err}
	case errors.Is(err, media.ErrVipsUnavailable),
		errors.Is(err, document.ErrSofficeUnavailable):
		return &taggedError{sentinel: ErrMissingDependency, err: err}
	case errors.Is(err, media.ErrUnsupportedFormat),
		errors.Is(err, document.ErrUnsupportedPair),
		errors.Is(err, spreadsheet.ErrUnsupportedPair):
		return &taggedError{sentinel: ErrUnsupportedConversion, err: err}
	}
	return &DelegateError{Op: op, Err: err}
}

// statusLabel returns the metrics status label for a Result error.
func statusLabel(err error) string {
	switch {
	case err == nil:
		return metrics.StatusSuccess
	case errors.Is(err, ErrFileNotFound):
		return metrics.StatusNotFound
	case errors.Is(err, ErrUnsupportedType):
		return metrics.StatusUnsupportedType
	case errors.Is(err, ErrUnsupportedConversion):
		return metrics.StatusUnsupportedConversion
	case errors.Is(err, ErrMissingDependency):
		return metrics.StatusMissingDependency
	case errors.Is(err, ErrToolMissing):
		return metrics.StatusToolMissing
	}
	return metrics.StatusDelegateFailure
}

// failureMessage renders the human-readable line for a delegate failure.
func failureMessage(op string, err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "Error: conversion timed out"
	case errors.Is(err, context.Canceled):
		return "Error: conversion cancelled"
	case op == opImage && !errors.Is(err, ErrMissingDependency):
		return "Error converting image: " + err.Error()
	}
	return "Error: " + err.Error()
}

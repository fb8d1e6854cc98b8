package converter

import (
	"context"
	"fmt"
	"path/filepath"

	"media-converter/internal/document"
	"media-converter/internal/logging"
	"media-converter/internal/media"
	"media-converter/internal/mediatypes"
	"media-converter/internal/spreadsheet"
	"media-converter/internal/startup"
	"media-converter/internal/transcoder"
)

// Delegate operation names, used in DelegateError.Op and log lines.
const (
	opImage       = "image"
	opTranscode   = "ffmpeg"
	opDocument    = "document"
	opSpreadsheet = "spreadsheet"
)

// anyFormat keys a registry entry that accepts every output format.
const anyFormat = "*"

// Delegate performs one kind of conversion.
type Delegate struct {
	Op   string
	Kind mediatypes.Kind
	run  func(ctx context.Context, input, output, format string) error
}

// Run converts input into output. format is the normalised output format.
func (d Delegate) Run(ctx context.Context, input, output, format string) error {
	return d.run(ctx, input, output, format)
}

type kindKey struct {
	kind   mediatypes.Kind
	format string
}

type extKey struct {
	in, out string
}

// Registry maps classified inputs and output formats to delegates. It is
// built once and never modified.
type Registry struct {
	byKind map[kindKey]Delegate
	byExt  map[extKey]Delegate
}

// NewRegistry builds the conversion table. caps decides which backends the
// delegates may use; conversions that need a missing backend stay registered
// and fail with ErrMissingDependency or ErrToolMissing when run.
func NewRegistry(caps startup.Capabilities, opts Options) *Registry {
	r := &Registry{
		byKind: make(map[kindKey]Delegate),
		byExt:  make(map[extKey]Delegate),
	}

	imageOpts := media.Options{Quality: opts.Quality, Vips: caps.Vips}
	image := Delegate{
		Op:   opImage,
		Kind: mediatypes.KindImage,
		run: func(ctx context.Context, input, output, format string) error {
			return media.Convert(ctx, input, output, format, imageOpts)
		},
	}
	for _, format := range media.OutputFormats() {
		if media.NeedsVips(format) && !caps.Vips {
			logging.Debug("  image -> %s needs libvips, which is unavailable", format)
		}
		r.byKind[kindKey{mediatypes.KindImage, format}] = image
	}

	ffmpegPath := caps.FFmpegPath
	if ffmpegPath == "" {
		ffmpegPath = opts.FFmpegPath
	}
	tc := transcoder.New(ffmpegPath, opts.Presets)
	for _, kind := range []mediatypes.Kind{mediatypes.KindVideo, mediatypes.KindAudio} {
		r.byKind[kindKey{kind, anyFormat}] = Delegate{
			Op:   opTranscode,
			Kind: kind,
			run: func(ctx context.Context, input, output, format string) error {
				return tc.Convert(ctx, kind, input, output, format)
			},
		}
	}

	docs := document.New(caps.SofficePath)
	for _, p := range document.Pairs() {
		if document.NeedsSoffice(p[0], p[1]) && !caps.Soffice {
			logging.Debug("  %s -> %s needs LibreOffice, which is unavailable", p[0], p[1])
		}
		r.byExt[extKey{p[0], p[1]}] = Delegate{
			Op:   opDocument,
			Kind: mediatypes.KindDocument,
			run: func(ctx context.Context, input, output, _ string) error {
				return docs.Convert(ctx, input, output)
			},
		}
	}

	r.byExt[extKey{"xls", "xlsx"}] = Delegate{
		Op:   opSpreadsheet,
		Kind: mediatypes.KindSpreadsheet,
		run: func(ctx context.Context, input, output, _ string) error {
			return spreadsheet.Convert(ctx, input, output)
		},
	}

	return r
}

// Lookup returns the delegate that converts inputPath to format.
// It fails with ErrUnsupportedType when inputPath cannot be classified and
// with ErrUnsupportedConversion when no delegate handles the pair.
func (r *Registry) Lookup(inputPath, format string) (Delegate, error) {
	kind := mediatypes.Classify(inputPath)
	if kind == mediatypes.KindUnknown {
		return Delegate{}, fmt.Errorf("%q: %w", filepath.Ext(inputPath), ErrUnsupportedType)
	}

	format = mediatypes.NormalizeFormat(format)
	if format != "" {
		switch kind {
		case mediatypes.KindDocument, mediatypes.KindSpreadsheet:
			in := mediatypes.NormalizeFormat(filepath.Ext(inputPath))
			if d, ok := r.byExt[extKey{in, format}]; ok {
				return d, nil
			}
		default:
			if d, ok := r.byKind[kindKey{kind, format}]; ok {
				return d, nil
			}
			if d, ok := r.byKind[kindKey{kind, anyFormat}]; ok {
				return d, nil
			}
		}
	}

	return Delegate{}, fmt.Errorf("%s to %q: %w", kind, format, ErrUnsupportedConversion)
}

// Supports reports whether Lookup would find a delegate.
func (r *Registry) Supports(inputPath, format string) bool {
	_, err := r.Lookup(inputPath, format)
	return err == nil
}

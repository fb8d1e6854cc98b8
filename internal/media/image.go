package media

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"slices"
	"time"

	"media-converter/internal/filesystem"
	"media-converter/internal/logging"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoding
)

// ErrUnsupportedFormat is returned for output formats no encoder handles.
var ErrUnsupportedFormat = errors.New("unsupported image output format")

// goFormats are written by the imaging encoders.
var goFormats = map[string]imaging.Format{
	"jpg":  imaging.JPEG,
	"jpeg": imaging.JPEG,
	"png":  imaging.PNG,
	"gif":  imaging.GIF,
	"bmp":  imaging.BMP,
	"tif":  imaging.TIFF,
	"tiff": imaging.TIFF,
}

// vipsFormats have no Go encoder and are written through libvips.
var vipsFormats = map[string]bool{
	"webp": true,
	"avif": true,
	"heic": true,
	"heif": true,
}

// opaqueFormats cannot store an alpha channel.
var opaqueFormats = map[string]bool{
	"jpg":  true,
	"jpeg": true,
}

// SupportsOutput reports whether format (lowercase, no dot) is an image
// output this package can produce, with or without libvips.
func SupportsOutput(format string) bool {
	_, ok := goFormats[format]
	return ok || vipsFormats[format]
}

// OutputFormats lists every image output format, sorted.
func OutputFormats() []string {
	formats := make([]string, 0, len(goFormats)+len(vipsFormats))
	for f := range goFormats {
		formats = append(formats, f)
	}
	for f := range vipsFormats {
		formats = append(formats, f)
	}
	slices.Sort(formats)
	return formats
}

// NeedsVips reports whether writing format requires libvips.
func NeedsVips(format string) bool {
	return vipsFormats[format]
}

// Options controls an image conversion.
type Options struct {
	// Quality is the encoder quality for lossy outputs (1-100).
	Quality int
	// Vips allows libvips for decoding fallback and vips-only outputs.
	Vips bool
}

// Convert re-encodes the image at input into format, writing output.
// Sources with transparency are composited onto white when format is opaque.
// The source EXIF capture time, if any, becomes the output's modification time.
func Convert(ctx context.Context, input, output, format string, opts Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch {
	case !SupportsOutput(format):
		return fmt.Errorf("%s: %w", format, ErrUnsupportedFormat)
	case NeedsVips(format):
		if !opts.Vips {
			return fmt.Errorf("%s output: %w", format, ErrVipsUnavailable)
		}
		if err := encodeWithVips(input, output, format, opts.Quality); err != nil {
			return err
		}
	default:
		img, err := LoadImage(input, opts.Vips)
		if err != nil {
			return err
		}
		if opaqueFormats[format] && HasTransparency(img) {
			logging.Debug("Flattening %s onto white for %s output", filepath.Base(input), format)
			img = Flatten(img)
		}
		if err := save(img, output, goFormats[format], opts.Quality); err != nil {
			return fmt.Errorf("failed to encode %s: %w", format, err)
		}
	}

	if taken, ok := CaptureTime(input); ok {
		if err := os.Chtimes(output, taken, taken); err != nil {
			logging.Warn("failed to set modification time on %s: %v", output, err)
		}
	}
	return nil
}

func save(img image.Image, output string, format imaging.Format, quality int) (err error) {
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return imaging.Encode(f, img, format, imaging.JPEGQuality(quality))
}

// LoadImage decodes path with the Go decoders, honouring EXIF orientation.
// When that fails and useVips is set, libvips gets a second try.
func LoadImage(path string, useVips bool) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err == nil {
		return img, nil
	}
	if !useVips {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	logging.Debug("Go decoders rejected %s (%v), trying libvips", filepath.Base(path), err)
	img, vipsErr := loadWithVips(path)
	if vipsErr != nil {
		return nil, fmt.Errorf("failed to open image: %w", errors.Join(err, vipsErr))
	}
	return img, nil
}

// HasTransparency reports whether any pixel of img is not fully opaque.
func HasTransparency(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}

// Flatten composites img onto an opaque white canvas of the same size.
func Flatten(img image.Image) *image.NRGBA {
	b := img.Bounds()
	canvas := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(canvas, img, image.Pt(0, 0), 1.0)
}

// CaptureTime returns the EXIF DateTimeOriginal of the image at path.
// ok is false when the file has no readable EXIF block.
func CaptureTime(path string) (taken time.Time, ok bool) {
	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return time.Time{}, false
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("failed to close image file %s: %v", path, err)
		}
	}()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, false
	}
	taken, err = x.DateTime()
	if err != nil || taken.IsZero() {
		return time.Time{}, false
	}
	return taken, true
}

// Package media converts raster images between formats.
//
// Decoding and encoding go through github.com/disintegration/imaging, which
// covers jpg, png, gif, bmp and tiff, with golang.org/x/image/webp registered
// for WebP input. libvips, when initialized with [InitVips], is used as a
// decoding fallback and as the only encoder for webp, avif and heic/heif.
//
// Images with transparency are composited onto white before being written to
// a format without an alpha channel. The source's EXIF capture time is copied
// onto the output file's modification time.
package media

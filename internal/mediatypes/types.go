package mediatypes

import (
	"path/filepath"
	"strings"
)

// Kind is the broad category a file belongs to, derived from its extension.
type Kind string

const (
	// KindImage represents a raster image file.
	KindImage Kind = "image"
	// KindVideo represents a video container.
	KindVideo Kind = "video"
	// KindAudio represents an audio file.
	KindAudio Kind = "audio"
	// KindDocument represents a text or office document.
	KindDocument Kind = "document"
	// KindSpreadsheet represents a spreadsheet workbook.
	KindSpreadsheet Kind = "spreadsheet"
	// KindUnknown represents an extension outside every known set.
	KindUnknown Kind = "unknown"
)

// ImageExtensions maps file extensions to whether they are recognized image formats.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
	".webp": true,
	".ico":  true,
}

// VideoExtensions maps file extensions to whether they are recognized video formats.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".mkv":  true,
	".mov":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
	".m4v":  true,
}

// AudioExtensions maps file extensions to whether they are recognized audio formats.
var AudioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".ogg":  true,
	".flac": true,
	".m4a":  true,
	".aac":  true,
	".wma":  true,
}

// DocumentExtensions maps file extensions to whether they are recognized document formats.
var DocumentExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".doc":  true,
	".txt":  true,
}

// SpreadsheetExtensions maps file extensions to whether they are recognized spreadsheet formats.
var SpreadsheetExtensions = map[string]bool{
	".xls":  true,
	".xlsx": true,
}

// Ext returns the lowercased extension of filename including the leading dot,
// or "" when there is none.
func Ext(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// GetKind returns the Kind for a given file extension.
// The extension should be lowercase and include the leading dot (e.g., ".jpg").
// Returns KindUnknown if the extension is not recognized.
func GetKind(ext string) Kind {
	switch {
	case ImageExtensions[ext]:
		return KindImage
	case VideoExtensions[ext]:
		return KindVideo
	case AudioExtensions[ext]:
		return KindAudio
	case DocumentExtensions[ext]:
		return KindDocument
	case SpreadsheetExtensions[ext]:
		return KindSpreadsheet
	}
	return KindUnknown
}

// Classify returns the Kind of filename based on its extension, case-insensitively.
// It never fails; unrecognized or missing extensions yield KindUnknown.
func Classify(filename string) Kind {
	return GetKind(Ext(filename))
}

// NormalizeFormat lowercases an output format and strips a leading dot,
// so "PDF", ".pdf" and "pdf" all compare equal.
func NormalizeFormat(format string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(format)), ".")
}

// OutputName derives the output file name for input converted to format:
// the input's base name without its extension, a dot, and the lowercased format.
// Directory components of input are dropped.
func OutputName(input, format string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + "." + NormalizeFormat(format)
}

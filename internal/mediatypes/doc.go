// Package mediatypes classifies files for the converter.
//
// This package is a dependency-free foundation that every other package can
// import without creating cycles. It holds the extension tables, the Kind enum
// and the pure helpers that derive names from them.
//
// # Kinds
//
//	mediatypes.KindImage       // jpg, png, gif, bmp, tiff, webp, ico
//	mediatypes.KindVideo       // mp4, avi, mkv, mov, wmv, flv, webm, m4v
//	mediatypes.KindAudio       // mp3, wav, ogg, flac, m4a, aac, wma
//	mediatypes.KindDocument    // pdf, docx, doc, txt
//	mediatypes.KindSpreadsheet // xls, xlsx
//	mediatypes.KindUnknown     // anything else
//
// # Classification
//
// Classify looks only at the extension, case-insensitively. File contents are
// never inspected:
//
//	switch mediatypes.Classify("Holiday.JPG") {
//	case mediatypes.KindImage:
//	    // Handle image
//	}
//
// # Output names
//
// OutputName keeps the input stem and swaps the extension for the lowercased
// target format:
//
//	mediatypes.OutputName("dir/photo.png", "JPG") // "photo.jpg"
package mediatypes

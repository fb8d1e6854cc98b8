// Package document converts between PDF, Word and plain text files.
//
// Plain text, PDF text extraction and .docx paragraphs are handled in Go.
// Conversions into PDF from Word formats, and from PDF into .docx, run a
// headless LibreOffice (soffice) process.
//
// Supported pairs:
//
//	docx, doc -> pdf   LibreOffice
//	pdf       -> docx  LibreOffice (Writer PDF import)
//	txt       -> pdf   one line per baseline, 80 characters max, US Letter
//	txt       -> docx  one paragraph per line
//	pdf       -> txt   page text in page order
//	docx      -> txt   paragraph text, one per line
package document

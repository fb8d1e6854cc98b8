package document

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"media-converter/internal/mediatypes"
)

// ErrUnsupportedPair is returned for input/output extension pairs with no converter.
var ErrUnsupportedPair = errors.New("document conversion not supported")

// ErrSofficeUnavailable is returned for conversions that need LibreOffice
// when it was not found at startup.
var ErrSofficeUnavailable = errors.New("LibreOffice not installed. Install with: apt install libreoffice, brew install --cask libreoffice, or winget install TheDocumentFoundation.LibreOffice")

type pair struct {
	from, to string
}

// Converter converts between the supported document formats.
type Converter struct {
	sofficePath string
}

// New creates a Converter. sofficePath is the LibreOffice binary found at
// startup, or empty when LibreOffice is not available.
func New(sofficePath string) *Converter {
	return &Converter{sofficePath: sofficePath}
}

// conversions lists every supported pair; the value marks pairs converted
// by LibreOffice.
var conversions = map[pair]bool{
	{"docx", "pdf"}: true,
	{"doc", "pdf"}:  true,
	{"pdf", "docx"}: true,
	{"txt", "pdf"}:  false,
	{"txt", "docx"}: false,
	{"pdf", "txt"}:  false,
	{"docx", "txt"}: false,
}

// method returns the function converting p, or nil for an unsupported pair.
func (c *Converter) method(p pair) func(ctx context.Context, input, output string) error {
	switch p {
	case pair{"docx", "pdf"}, pair{"doc", "pdf"}:
		return c.officeToPDF
	case pair{"pdf", "docx"}:
		return c.pdfToDocx
	case pair{"txt", "pdf"}:
		return TextToPDF
	case pair{"txt", "docx"}:
		return TextToDocx
	case pair{"pdf", "txt"}:
		return PDFToText
	case pair{"docx", "txt"}:
		return DocxToText
	}
	return nil
}

// Supports reports whether converting from inExt to outExt is possible.
// Extensions may be given with or without the leading dot, in any case.
func Supports(inExt, outExt string) bool {
	_, ok := conversions[pair{mediatypes.NormalizeFormat(inExt), mediatypes.NormalizeFormat(outExt)}]
	return ok
}

// Pairs lists every supported conversion as {input ext, output ext},
// ordered by input then output.
func Pairs() [][2]string {
	pairs := make([][2]string, 0, len(conversions))
	for p := range conversions {
		pairs = append(pairs, [2]string{p.from, p.to})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	return pairs
}

// NeedsSoffice reports whether the inExt to outExt conversion runs LibreOffice.
func NeedsSoffice(inExt, outExt string) bool {
	return conversions[pair{mediatypes.NormalizeFormat(inExt), mediatypes.NormalizeFormat(outExt)}]
}

// Convert converts input into output, choosing the method from the two
// file extensions.
func (c *Converter) Convert(ctx context.Context, input, output string) error {
	from, to := filepath.Ext(input), filepath.Ext(output)
	if !Supports(from, to) {
		return fmt.Errorf("%s to %s: %w", mediatypes.NormalizeFormat(from), mediatypes.NormalizeFormat(to), ErrUnsupportedPair)
	}
	if NeedsSoffice(from, to) && c.sofficePath == "" {
		return ErrSofficeUnavailable
	}
	return c.method(pair{mediatypes.NormalizeFormat(from), mediatypes.NormalizeFormat(to)})(ctx, input, output)
}

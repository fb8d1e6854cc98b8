package document

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"media-converter/internal/filesystem"
	"media-converter/internal/logging"

	"github.com/go-pdf/fpdf"
)

// Page layout for text rendered to PDF, in points from the bottom-left corner
// of a US Letter page.
const (
	pageHeight     = 792
	leftMargin     = 50
	firstBaseline  = 750
	bottomBaseline = 50
	lineStep       = 15
	fontSize       = 12
	maxLineRunes   = 80
)

// LinesPerPage is how many text lines fit on one PDF page. A final newline
// ends the last line rather than starting an empty one, so a 47-line file
// with a trailing newline is still one page.
const LinesPerPage = (firstBaseline-bottomBaseline)/lineStep + 1

// readLines returns the lines of a text file without their line terminators.
func readLines(path string) ([]string, error) {
	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("failed to close %s: %v", path, err)
		}
	}()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return lines, nil
}

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// TextToPDF renders each line of a plain text file onto US Letter pages.
// Lines longer than 80 characters are truncated; there is no wrapping.
func TextToPDF(ctx context.Context, input, output string) error {
	lines, err := readLines(input)
	if err != nil {
		return err
	}

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont("Helvetica", "", fontSize)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	y := float64(firstBaseline)
	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return err
		}
		if y < bottomBaseline {
			pdf.AddPage()
			y = float64(firstBaseline)
		}
		pdf.Text(leftMargin, pageHeight-y, tr(truncateRunes(line, maxLineRunes)))
		y -= lineStep
	}

	if err := pdf.OutputFileAndClose(output); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	logging.Debug("Rendered %d lines onto %d pages", len(lines), pdf.PageCount())
	return nil
}

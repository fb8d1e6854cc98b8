package document

import (
	"context"
	"fmt"
	"os"
	"strings"

	"media-converter/internal/filesystem"
	"media-converter/internal/logging"

	"github.com/ledongthuc/pdf"
)

// PDFToText extracts the text of every page of a PDF, in page order, each
// page followed by a newline.
func PDFToText(ctx context.Context, input, output string) error {
	f, err := filesystem.OpenWithRetry(input, filesystem.DefaultRetryConfig())
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("failed to close %s: %v", input, err)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	r, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return fmt.Errorf("failed to open PDF: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			b.WriteString("\n")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return fmt.Errorf("failed to extract text from page %d: %w", i, err)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	if err := os.WriteFile(output, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	return nil
}

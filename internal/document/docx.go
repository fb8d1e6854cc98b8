package document

import (
	"context"
	"fmt"
	"os"
	"strings"

	"media-converter/internal/filesystem"
	"media-converter/internal/logging"

	"github.com/fumiama/go-docx"
)

// TextToDocx writes one paragraph per line of a plain text file, with
// surrounding whitespace trimmed. Blank lines become empty paragraphs.
func TextToDocx(ctx context.Context, input, output string) (err error) {
	lines, err := readLines(input)
	if err != nil {
		return err
	}

	w := docx.New().WithDefaultTheme()
	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return err
		}
		w.AddParagraph().AddText(strings.TrimSpace(line))
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close %s: %w", output, cerr)
		}
	}()

	if _, err := w.WriteTo(f); err != nil {
		return fmt.Errorf("failed to write docx: %w", err)
	}
	return nil
}

// DocxToText writes the text of each paragraph of a .docx file, one per line.
// Tables and other body elements are skipped.
func DocxToText(ctx context.Context, input, output string) error {
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

	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return fmt.Errorf("failed to parse docx: %w", err)
	}

	var b strings.Builder
	for _, item := range doc.Document.Body.Items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if p, ok := item.(*docx.Paragraph); ok {
			b.WriteString(p.String())
			b.WriteString("\n")
		}
	}

	if err := os.WriteFile(output, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	return nil
}

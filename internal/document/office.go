package document

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"media-converter/internal/logging"
	"media-converter/internal/metrics"
)

// pdfImportFilter makes LibreOffice open PDFs in Writer rather than Draw,
// which is required to save them as Word documents.
const pdfImportFilter = "--infilter=writer_pdf_import"

func (c *Converter) officeToPDF(ctx context.Context, input, output string) error {
	return c.runSoffice(ctx, input, output, "pdf")
}

func (c *Converter) pdfToDocx(ctx context.Context, input, output string) error {
	return c.runSoffice(ctx, input, output, "docx:MS Word 2007 XML", pdfImportFilter)
}

// sofficeArgs builds a headless LibreOffice command line. profileDir isolates
// the LibreOffice user profile so concurrent or stale instances do not block
// the conversion.
func sofficeArgs(profileDir, target, outDir, input string, extra ...string) []string {
	args := []string{
		"-env:UserInstallation=file://" + filepath.ToSlash(profileDir),
		"--headless",
	}
	args = append(args, extra...)
	return append(args, "--convert-to", target, "--outdir", outDir, input)
}

// runSoffice converts input with LibreOffice. LibreOffice always names its
// output after the input's stem, so output must live in the directory it is
// told to write to and share that stem.
func (c *Converter) runSoffice(ctx context.Context, input, output, target string, extra ...string) error {
	absInput, err := filepath.Abs(input)
	if err != nil {
		return err
	}
	outDir, err := filepath.Abs(filepath.Dir(output))
	if err != nil {
		return err
	}
	produced := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))+filepath.Ext(output))

	profileDir, err := os.MkdirTemp("", "convert-soffice-*")
	if err != nil {
		return fmt.Errorf("failed to create LibreOffice profile dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(profileDir); err != nil {
			logging.Warn("failed to remove %s: %v", profileDir, err)
		}
	}()

	args := sofficeArgs(profileDir, target, outDir, absInput, extra...)
	logging.Debug("Running %s %s", c.sofficePath, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, c.sofficePath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()
	metrics.ExternalProcessDuration.WithLabelValues("soffice").Observe(time.Since(start).Seconds())

	if err == nil {
		if _, statErr := os.Stat(produced); statErr != nil {
			err = fmt.Errorf("LibreOffice produced no output: %s", strings.TrimSpace(stderr.String()))
		}
	}
	if err != nil {
		metrics.ExternalProcessFailures.WithLabelValues("soffice").Inc()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("LibreOffice conversion failed: %s", msg)
		}
		return fmt.Errorf("LibreOffice conversion failed: %w", err)
	}

	if absOutput, _ := filepath.Abs(output); produced != absOutput {
		if err := os.Rename(produced, output); err != nil {
			return fmt.Errorf("failed to move LibreOffice output: %w", err)
		}
	}
	return nil
}

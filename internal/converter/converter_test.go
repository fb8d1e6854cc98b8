package converter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"media-converter/internal/filesystem"
	"media-converter/internal/metrics"
	"media-converter/internal/startup"
	"media-converter/internal/transcoder"
)

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 10, B: 10, A: uint8(x * 30)})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testOptions(t *testing.T) Options {
	t.Helper()
	opts := DefaultOptions()
	opts.OutputDir = t.TempDir()
	opts.FFmpegPath = filepath.Join(t.TempDir(), "no-ffmpeg")
	opts.Retry = filesystem.RetryConfig{MaxRetries: 1, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}
	return opts
}

func newTestConverter(t *testing.T, caps startup.Capabilities) (*Converter, Options) {
	t.Helper()
	opts := testOptions(t)
	return New(caps, opts), opts
}

func assertNoFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected no file at %s (stat error %v)", path, err)
	}
}

func TestLookup(t *testing.T) {
	r := NewRegistry(startup.Capabilities{}, DefaultOptions())

	tests := []struct {
		input, format string
		wantOp        string
		wantErr       error
	}{
		{"photo.png", "jpg", opImage, nil},
		{"PHOTO.PNG", ".JPG", opImage, nil},
		{"photo.png", "webp", opImage, nil},
		{"photo.jpg", "png", opImage, nil},
		{"photo.png", "ico", "", ErrUnsupportedConversion},
		{"photo.png", "", "", ErrUnsupportedConversion},
		{"clip.mov", "mp4", opTranscode, nil},
		{"clip.mkv", "gif", opTranscode, nil},
		{"clip.mkv", "flv", opTranscode, nil},
		{"song.flac", "mp3", opTranscode, nil},
		{"song.wav", "opus", opTranscode, nil},
		{"notes.txt", "pdf", opDocument, nil},
		{"notes.txt", "docx", opDocument, nil},
		{"letter.doc", "pdf", opDocument, nil},
		{"report.pdf", "txt", opDocument, nil},
		{"notes.txt", "xlsx", "", ErrUnsupportedConversion},
		{"letter.doc", "txt", "", ErrUnsupportedConversion},
		{"ledger.xls", "xlsx", opSpreadsheet, nil},
		{"ledger.xlsx", "xls", "", ErrUnsupportedConversion},
		{"archive.zip", "pdf", "", ErrUnsupportedType},
		{"Makefile", "pdf", "", ErrUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.input+"->"+tt.format, func(t *testing.T) {
			d, err := r.Lookup(tt.input, tt.format)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Lookup() error = %v, want %v", err, tt.wantErr)
				}
				if r.Supports(tt.input, tt.format) {
					t.Error("Supports() = true for a failing lookup")
				}
				return
			}
			if err != nil {
				t.Fatalf("Lookup() error = %v", err)
			}
			if d.Op != tt.wantOp {
				t.Errorf("Lookup() op = %q, want %q", d.Op, tt.wantOp)
			}
		})
	}
}

func TestConvertFileImage(t *testing.T) {
	c, opts := newTestConverter(t, startup.Capabilities{})
	input := filepath.Join(t.TempDir(), "photo.png")
	writePNG(t, input)

	result := c.ConvertFile(context.Background(), Request{InputPath: input, OutputFormat: "JPG"})
	if !result.Success {
		t.Fatalf("ConvertFile() failed: %s (%v)", result.Message, result.Err)
	}

	want := filepath.Join(opts.OutputDir, "photo.jpg")
	if result.OutputPath != want {
		t.Errorf("OutputPath = %q, want %q", result.OutputPath, want)
	}
	if result.Message != "Converted: "+want {
		t.Errorf("Message = %q", result.Message)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if !bytes.HasPrefix(data, []byte{0xFF, 0xD8}) {
		t.Error("output is not a JPEG")
	}
}

func TestConvertFileTextToPDF(t *testing.T) {
	c, opts := newTestConverter(t, startup.Capabilities{})
	input := filepath.Join(t.TempDir(), "notes.txt")
	var b strings.Builder
	for i := 0; i < 100; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	writeFile(t, input, b.String())

	result := c.ConvertFile(context.Background(), Request{InputPath: input, OutputFormat: "pdf"})
	if !result.Success {
		t.Fatalf("ConvertFile() failed: %s (%v)", result.Message, result.Err)
	}
	data, err := os.ReadFile(filepath.Join(opts.OutputDir, "notes.pdf"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("output is not a PDF")
	}
}

func TestConvertFileNotFound(t *testing.T) {
	c, opts := newTestConverter(t, startup.Capabilities{})
	input := filepath.Join(t.TempDir(), "missing.png")

	result := c.ConvertFile(context.Background(), Request{InputPath: input, OutputFormat: "jpg"})
	if result.Success {
		t.Fatal("ConvertFile() succeeded for a missing file")
	}
	if !errors.Is(result.Err, ErrFileNotFound) {
		t.Errorf("Err = %v, want ErrFileNotFound", result.Err)
	}
	if want := fmt.Sprintf("Error: File '%s' not found", input); result.Message != want {
		t.Errorf("Message = %q, want %q", result.Message, want)
	}
	if result.OutputPath != "" {
		t.Errorf("OutputPath = %q, want empty", result.OutputPath)
	}
	assertNoFile(t, filepath.Join(opts.OutputDir, "missing.jpg"))
}

func TestConvertFileUnsupportedType(t *testing.T) {
	c, opts := newTestConverter(t, startup.Capabilities{})
	input := filepath.Join(t.TempDir(), "bundle.ZIP")
	writeFile(t, input, "PK")

	result := c.ConvertFile(context.Background(), Request{InputPath: input, OutputFormat: "pdf"})
	if !errors.Is(result.Err, ErrUnsupportedType) {
		t.Errorf("Err = %v, want ErrUnsupportedType", result.Err)
	}
	if result.Message != "Unsupported file type: .ZIP" {
		t.Errorf("Message = %q", result.Message)
	}
	assertNoFile(t, filepath.Join(opts.OutputDir, "bundle.pdf"))
}

func TestConvertFileUnsupportedConversion(t *testing.T) {
	c, opts := newTestConverter(t, startup.Capabilities{})
	input := filepath.Join(t.TempDir(), "notes.txt")
	writeFile(t, input, "hello\n")

	result := c.ConvertFile(context.Background(), Request{InputPath: input, OutputFormat: "xlsx"})
	if !errors.Is(result.Err, ErrUnsupportedConversion) {
		t.Errorf("Err = %v, want ErrUnsupportedConversion", result.Err)
	}
	if result.Message != "Conversion from .txt to xlsx not supported" {
		t.Errorf("Message = %q", result.Message)
	}
	assertNoFile(t, filepath.Join(opts.OutputDir, "notes.xlsx"))
}

func TestConvertFileMissingVips(t *testing.T) {
	c, opts := newTestConverter(t, startup.Capabilities{Vips: false})
	input := filepath.Join(t.TempDir(), "photo.png")
	writePNG(t, input)

	result := c.ConvertFile(context.Background(), Request{InputPath: input, OutputFormat: "webp"})
	if !errors.Is(result.Err, ErrMissingDependency) {
		t.Errorf("Err = %v, want ErrMissingDependency", result.Err)
	}
	if !strings.HasPrefix(result.Message, "Error: ") {
		t.Errorf("Message = %q", result.Message)
	}
	assertNoFile(t, filepath.Join(opts.OutputDir, "photo.webp"))
}

func TestConvertFileMissingSoffice(t *testing.T) {
	c, _ := newTestConverter(t, startup.Capabilities{})
	input := filepath.Join(t.TempDir(), "letter.docx")
	writeFile(t, input, "PK")

	result := c.ConvertFile(context.Background(), Request{InputPath: input, OutputFormat: "pdf"})
	if !errors.Is(result.Err, ErrMissingDependency) {
		t.Errorf("Err = %v, want ErrMissingDependency", result.Err)
	}
	if !strings.Contains(result.Message, "LibreOffice") {
		t.Errorf("Message = %q, want LibreOffice named", result.Message)
	}
}

func TestConvertFileMissingFFmpeg(t *testing.T) {
	c, opts := newTestConverter(t, startup.Capabilities{})
	input := filepath.Join(t.TempDir(), "song.wav")
	writeFile(t, input, "RIFF")

	result := c.ConvertFile(context.Background(), Request{InputPath: input, OutputFormat: "mp3"})
	if !errors.Is(result.Err, ErrToolMissing) {
		t.Errorf("Err = %v, want ErrToolMissing", result.Err)
	}
	if !strings.Contains(result.Message, transcoder.InstallHint) {
		t.Errorf("Message = %q, want install hint", result.Message)
	}
	assertNoFile(t, filepath.Join(opts.OutputDir, "song.mp3"))
}

func TestConvertFileDelegateFailure(t *testing.T) {
	c, opts := newTestConverter(t, startup.Capabilities{})
	input := filepath.Join(t.TempDir(), "broken.png")
	writeFile(t, input, "definitely not a png")

	result := c.ConvertFile(context.Background(), Request{InputPath: input, OutputFormat: "jpg"})
	var delegateErr *DelegateError
	if !errors.As(result.Err, &delegateErr) {
		t.Fatalf("Err = %v, want *DelegateError", result.Err)
	}
	if delegateErr.Op != opImage {
		t.Errorf("Op = %q, want %q", delegateErr.Op, opImage)
	}
	if !strings.HasPrefix(result.Message, "Error converting image: ") {
		t.Errorf("Message = %q", result.Message)
	}
	assertNoFile(t, filepath.Join(opts.OutputDir, "broken.jpg"))
}

// fakeFFmpeg writes a shell script standing in for ffmpeg.
func fakeFFmpeg(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in requires a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConvertFileRemovesPartialOutput(t *testing.T) {
	ffmpeg := fakeFFmpeg(t, `for last; do :; done
echo partial > "$last"
echo "Invalid data found when processing input" >&2
exit 1`)
	c, opts := newTestConverter(t, startup.Capabilities{FFmpeg: true, FFmpegPath: ffmpeg})
	input := filepath.Join(t.TempDir(), "clip.mov")
	writeFile(t, input, "moov")

	result := c.ConvertFile(context.Background(), Request{InputPath: input, OutputFormat: "mp4"})
	if result.Success {
		t.Fatal("ConvertFile() succeeded with a failing ffmpeg")
	}
	if result.Message != "Error: Invalid data found when processing input" {
		t.Errorf("Message = %q", result.Message)
	}
	assertNoFile(t, filepath.Join(opts.OutputDir, "clip.mp4"))
}

func TestConvertFileKeepsPreexistingOutput(t *testing.T) {
	ffmpeg := fakeFFmpeg(t, `exit 1`)
	c, opts := newTestConverter(t, startup.Capabilities{FFmpeg: true, FFmpegPath: ffmpeg})
	input := filepath.Join(t.TempDir(), "clip.mov")
	writeFile(t, input, "moov")
	existing := filepath.Join(opts.OutputDir, "clip.mp4")
	writeFile(t, existing, "keep me")

	result := c.ConvertFile(context.Background(), Request{InputPath: input, OutputFormat: "mp4"})
	if result.Success {
		t.Fatal("ConvertFile() succeeded with a failing ffmpeg")
	}
	if _, err := os.Stat(existing); err != nil {
		t.Errorf("preexisting output removed: %v", err)
	}
}

func TestConvertFileTimeout(t *testing.T) {
	ffmpeg := fakeFFmpeg(t, `exec sleep 5`)
	opts := testOptions(t)
	opts.Timeout = 50 * time.Millisecond
	c := New(startup.Capabilities{FFmpeg: true, FFmpegPath: ffmpeg}, opts)
	input := filepath.Join(t.TempDir(), "song.wav")
	writeFile(t, input, "RIFF")

	start := time.Now()
	result := c.ConvertFile(context.Background(), Request{InputPath: input, OutputFormat: "mp3"})
	if elapsed := time.Since(start); elapsed > 4*time.Second {
		t.Errorf("ConvertFile() took %v, timeout not applied", elapsed)
	}
	if !errors.Is(result.Err, context.DeadlineExceeded) {
		t.Errorf("Err = %v, want context.DeadlineExceeded", result.Err)
	}
	if result.Message != "Error: conversion timed out" {
		t.Errorf("Message = %q", result.Message)
	}
}

type recordingRecorder struct {
	mu       sync.Mutex
	attempts []Attempt
	err      error
}

func (r *recordingRecorder) Record(_ context.Context, a Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, a)
	return r.err
}

func TestConvertFileRecordsAttempts(t *testing.T) {
	rec := &recordingRecorder{err: errors.New("journal offline")}
	opts := testOptions(t)
	opts.Recorder = rec
	c := New(startup.Capabilities{}, opts)

	dir := t.TempDir()
	input := filepath.Join(dir, "photo.png")
	writePNG(t, input)

	c.ConvertFile(context.Background(), Request{InputPath: input, OutputFormat: "png"})
	c.ConvertFile(context.Background(), Request{InputPath: filepath.Join(dir, "gone.png"), OutputFormat: "png"})

	if len(rec.attempts) != 2 {
		t.Fatalf("recorded %d attempts, want 2", len(rec.attempts))
	}
	if a := rec.attempts[0]; !a.Result.Success || a.Kind != "image" || a.Format != "png" || a.SourceDigest == "" {
		t.Errorf("first attempt = %+v", a)
	}
	if a := rec.attempts[1]; a.Result.Success || !errors.Is(a.Result.Err, ErrFileNotFound) || a.SourceDigest != "" {
		t.Errorf("second attempt = %+v", a)
	}
}

func TestConvertFileDigestsInputBeforeOverwrite(t *testing.T) {
	ffmpeg := fakeFFmpeg(t, `for last; do :; done
echo transcoded > "$last"`)
	rec := &recordingRecorder{}
	opts := testOptions(t)
	opts.Recorder = rec
	c := New(startup.Capabilities{FFmpeg: true, FFmpegPath: ffmpeg}, opts)

	// Same directory and format, so the output replaces the input.
	input := filepath.Join(opts.OutputDir, "clip.mp4")
	writeFile(t, input, "moov")
	before, err := Digest(input, opts.Retry)
	if err != nil {
		t.Fatal(err)
	}

	result := c.ConvertFile(context.Background(), Request{InputPath: input, OutputFormat: "mp4"})
	if !result.Success || result.OutputPath != input {
		t.Fatalf("ConvertFile() = %+v, want success writing over the input", result)
	}
	after, err := Digest(input, opts.Retry)
	if err != nil {
		t.Fatal(err)
	}
	if after == before {
		t.Fatal("fake ffmpeg did not replace the input")
	}

	if len(rec.attempts) != 1 {
		t.Fatalf("recorded %d attempts, want 1", len(rec.attempts))
	}
	if got := rec.attempts[0].SourceDigest; got != before {
		t.Errorf("SourceDigest = %q, want the pre-conversion digest %q", got, before)
	}
}

func TestConvertFileSkipsDigestWithoutRecorder(t *testing.T) {
	obs := installOpenCounter(t)
	c, _ := newTestConverter(t, startup.Capabilities{})
	input := filepath.Join(t.TempDir(), "notes.xyz")
	writeFile(t, input, "?")

	c.ConvertFile(context.Background(), Request{InputPath: input, OutputFormat: "pdf"})
	if obs.opens != 0 {
		t.Errorf("input opened %d times with no recorder, want 0", obs.opens)
	}
}

func TestDigest(t *testing.T) {
	obs := installOpenCounter(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	writeFile(t, path, "")

	got, err := Digest(path, filesystem.DefaultRetryConfig())
	if err != nil {
		t.Fatalf("Digest() error = %v", err)
	}
	// BLAKE2b-256 of the empty input.
	const want = "0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8"
	if got != want {
		t.Errorf("Digest() = %s, want %s", got, want)
	}
	if obs.opens != 1 {
		t.Errorf("retrying opens = %d, want 1", obs.opens)
	}

	if _, err := Digest(filepath.Join(dir, "missing"), filesystem.DefaultRetryConfig()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Digest() on a missing file error = %v, want os.ErrNotExist", err)
	}
}

// openCounter counts opens that went through the stale-handle retry helper.
type openCounter struct {
	opens int
}

func (o *openCounter) ObserveRetryAttempt(string) {}
func (o *openCounter) ObserveRetrySuccess(string) {}
func (o *openCounter) ObserveRetryFailure(string) {}
func (o *openCounter) ObserveStaleError(string)   {}

func (o *openCounter) ObserveRetryDuration(op string, _ float64) {
	if op == "open" {
		o.opens++
	}
}

func installOpenCounter(t *testing.T) *openCounter {
	t.Helper()
	obs := &openCounter{}
	filesystem.SetObserver(obs)
	t.Cleanup(func() { filesystem.SetObserver(nil) })
	return obs
}

func TestMapDelegateError(t *testing.T) {
	ffmpegErr := fmt.Errorf("%w. %s", transcoder.ErrFFmpegNotFound, transcoder.InstallHint)
	mapped := mapDelegateError(opTranscode, ffmpegErr)
	if !errors.Is(mapped, ErrToolMissing) || !errors.Is(mapped, transcoder.ErrFFmpegNotFound) {
		t.Errorf("mapped = %v, want both ErrToolMissing and ErrFFmpegNotFound", mapped)
	}
	if mapped.Error() != ffmpegErr.Error() {
		t.Errorf("message changed: %q", mapped.Error())
	}

	other := errors.New("boom")
	var delegateErr *DelegateError
	if !errors.As(mapDelegateError(opDocument, other), &delegateErr) || delegateErr.Op != opDocument {
		t.Errorf("generic error not wrapped as DelegateError")
	}
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, metrics.StatusSuccess},
		{fmt.Errorf("x: %w", ErrFileNotFound), metrics.StatusNotFound},
		{fmt.Errorf("x: %w", ErrUnsupportedType), metrics.StatusUnsupportedType},
		{fmt.Errorf("x: %w", ErrUnsupportedConversion), metrics.StatusUnsupportedConversion},
		{&taggedError{sentinel: ErrMissingDependency, err: errors.New("x")}, metrics.StatusMissingDependency},
		{&taggedError{sentinel: ErrToolMissing, err: errors.New("x")}, metrics.StatusToolMissing},
		{&DelegateError{Op: opImage, Err: errors.New("x")}, metrics.StatusDelegateFailure},
	}
	for _, tt := range tests {
		if got := statusLabel(tt.err); got != tt.want {
			t.Errorf("statusLabel(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

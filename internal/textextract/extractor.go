// Package textextract turns statement documents into plain text. PDFs get a
// fast text-layer pass first; documents that yield almost nothing are
// presumed scanned and fall back to page-at-a-time OCR.
package textextract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultYieldThreshold is the minimum number of stripped text-layer
// characters below which a PDF is treated as scanned and OCR kicks in.
const DefaultYieldThreshold = 100

// Config holds the external tool configuration for text extraction.
type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Lang     string // tesseract language, default "eng"
	DPI      int    // rasterization DPI for scanned PDFs, default 300
	MaxPages int    // cap on OCR'd pages, 0 = no limit

	YieldThreshold int // default DefaultYieldThreshold
}

// Extractor produces best-effort plain text from document bytes. It never
// returns an error: every failure degrades to an empty (or partial) string
// and the downstream emptiness check is the actual gate.
type Extractor struct {
	cfg    Config
	runner Runner
	log    zerolog.Logger
}

// NewExtractor creates an extractor with defaults filled in.
func NewExtractor(cfg Config, log zerolog.Logger) *Extractor {
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.YieldThreshold <= 0 {
		cfg.YieldThreshold = DefaultYieldThreshold
	}
	return &Extractor{cfg: cfg, runner: execRunner{log: log}, log: log}
}

// AcquireText extracts plain text for the given media type. Unsupported
// types yield an empty string; callers gate on media type before this.
func (e *Extractor) AcquireText(ctx context.Context, data []byte, contentType string) string {
	switch {
	case contentType == "application/pdf":
		return e.fromPDF(ctx, data)
	case strings.HasPrefix(contentType, "image/"):
		return e.fromImage(ctx, data)
	default:
		return ""
	}
}

// fromPDF tries the embedded text layer first and falls back to OCR when the
// yield is below the threshold.
func (e *Extractor) fromPDF(ctx context.Context, data []byte) string {
	path, cleanup, err := writeTemp(data, "statement-*.pdf")
	if err != nil {
		e.log.Error().Err(err).Msg("Failed to stage PDF for extraction")
		return ""
	}
	defer cleanup()

	text, pages := e.pdfText(ctx, path)
	if len(strings.TrimSpace(text)) >= e.cfg.YieldThreshold {
		return text
	}

	e.log.Info().
		Int("text_layer_chars", len(strings.TrimSpace(text))).
		Int("pages", pages).
		Msg("Low text-layer yield, falling back to OCR")

	ocrText := e.pdfOCR(ctx, path, pages)
	if strings.TrimSpace(ocrText) == "" {
		// OCR produced nothing; whatever the text layer gave is still the
		// best we have.
		return text
	}
	return ocrText
}

// pdfText runs the text-layer pass. A failure to open or parse the document
// reports empty text and an unknown (-1) page count.
func (e *Extractor) pdfText(ctx context.Context, path string) (string, int) {
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		e.log.Warn().Err(err).Str("stderr", truncate(string(errb), 2048)).Msg("pdftotext failed")
		return "", -1
	}
	text := string(out)
	// pdftotext terminates every page with a form feed.
	pages := strings.Count(text, "\f")
	if pages == 0 {
		pages = 1
	}
	return text, pages
}

// pdfOCR rasterizes and OCRs one page at a time so large scanned statements
// never materialize every page image at once. With an unknown page count
// only the first page is attempted.
func (e *Extractor) pdfOCR(ctx context.Context, path string, pages int) string {
	if pages < 1 {
		e.log.Warn().Msg("Page count unknown, OCR limited to the first page")
		pages = 1
	}
	if e.cfg.MaxPages > 0 && pages > e.cfg.MaxPages {
		e.log.Warn().Int("pages", pages).Int("max_pages", e.cfg.MaxPages).Msg("Capping OCR page count")
		pages = e.cfg.MaxPages
	}

	tmpDir, err := os.MkdirTemp("", "stmt-ocr-*")
	if err != nil {
		e.log.Error().Err(err).Msg("Failed to create OCR scratch dir")
		return ""
	}
	defer os.RemoveAll(tmpDir)

	var b strings.Builder
	for page := 1; page <= pages; page++ {
		prefix := filepath.Join(tmpDir, fmt.Sprintf("page-%d", page))

		pageArg := fmt.Sprintf("%d", page)
		_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm,
			"-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", "-f", pageArg, "-l", pageArg, path, prefix)
		if err != nil {
			e.log.Warn().Err(err).Int("page", page).Str("stderr", truncate(string(errb), 2048)).Msg("pdftoppm failed for page")
			continue
		}

		images, _ := filepath.Glob(prefix + "*.png")
		for _, img := range images {
			txt, err := e.tesseract(ctx, img)
			if err != nil {
				e.log.Warn().Err(err).Int("page", page).Msg("OCR failed for page")
			} else {
				if b.Len() > 0 {
					b.WriteString("\n\f\n") // keep a clear page break marker
				}
				b.WriteString(txt)
			}
			// Free the rasterized page before moving to the next one.
			_ = os.Remove(img)
		}
	}
	return b.String()
}

// fromImage OCRs a single uploaded image. Any failure reads as an empty
// document to the caller.
func (e *Extractor) fromImage(ctx context.Context, data []byte) string {
	path, cleanup, err := writeTemp(data, "statement-*.img")
	if err != nil {
		e.log.Error().Err(err).Msg("Failed to stage image for OCR")
		return ""
	}
	defer cleanup()

	txt, err := e.tesseract(ctx, path)
	if err != nil {
		return ""
	}
	return txt
}

func (e *Extractor) tesseract(ctx context.Context, path string) (string, error) {
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, path, "stdout", "-l", e.cfg.Lang)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w (%s)", err, truncate(string(errb), 512))
	}
	return string(out), nil
}

// writeTemp stages bytes as a temp file for the external tools, which only
// accept paths. The cleanup func removes it.
func writeTemp(data []byte, pattern string) (string, func(), error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	cleanup := func() { _ = os.Remove(path) }

	if _, err := f.Write(data); err != nil {
		f.Close()
		cleanup()
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}

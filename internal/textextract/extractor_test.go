package textextract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// stubRunner scripts responses per binary and records every invocation.
type stubRunner struct {
	t     *testing.T
	calls []call

	pdftotextOut string
	pdftotextErr error

	pdftoppmErr error

	tesseractPages []string // successive tesseract outputs
	tesseractErr   error
	tesseractCall  int
}

type call struct {
	name string
	args []string
}

func (r *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.calls = append(r.calls, call{name: name, args: args})

	switch name {
	case "pdftotext":
		if r.pdftotextErr != nil {
			return nil, []byte("syntax error"), r.pdftotextErr
		}
		return []byte(r.pdftotextOut), nil, nil

	case "pdftoppm":
		if r.pdftoppmErr != nil {
			return nil, []byte("rasterization failed"), r.pdftoppmErr
		}
		// pdftoppm writes <prefix>-<page>.png; fake that side effect so the
		// extractor's glob finds something.
		prefix := args[len(args)-1]
		page := "1"
		for i, a := range args {
			if a == "-f" && i+1 < len(args) {
				page = args[i+1]
			}
		}
		path := fmt.Sprintf("%s-%s.png", prefix, page)
		if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
			r.t.Fatalf("stub pdftoppm: %v", err)
		}
		return nil, nil, nil

	case "tesseract":
		if r.tesseractErr != nil {
			return nil, []byte("no text"), r.tesseractErr
		}
		out := ""
		if r.tesseractCall < len(r.tesseractPages) {
			out = r.tesseractPages[r.tesseractCall]
		}
		r.tesseractCall++
		return []byte(out), nil, nil
	}

	r.t.Fatalf("unexpected binary %q", name)
	return nil, nil, nil
}

func (r *stubRunner) countCalls(name string) int {
	n := 0
	for _, c := range r.calls {
		if c.name == name {
			n++
		}
	}
	return n
}

func newTestExtractor(r Runner) *Extractor {
	e := NewExtractor(Config{}, zerolog.Nop())
	e.runner = r
	return e
}

func TestAcquireTextUsesTextLayerWhenYieldSufficient(t *testing.T) {
	text := strings.Repeat("transaction line\n", 10) + "\f"
	runner := &stubRunner{t: t, pdftotextOut: text}
	e := newTestExtractor(runner)

	got := e.AcquireText(context.Background(), []byte("%PDF-1.4"), "application/pdf")

	if got != text {
		t.Errorf("Expected text-layer output, got %q", got)
	}
	if n := runner.countCalls("pdftoppm"); n != 0 {
		t.Errorf("Expected no OCR when yield is sufficient, got %d pdftoppm calls", n)
	}
}

// OCR fallback activates iff the stripped text-layer yield is below the
// 100-character threshold.
func TestAcquireTextOCRFallbackOnLowYield(t *testing.T) {
	// 50 chars of text layer across two pages (scanned second page).
	lowYield := strings.Repeat("x", 50) + "\f\f"
	runner := &stubRunner{
		t:              t,
		pdftotextOut:   lowYield,
		tesseractPages: []string{"page one 12.50", "page two 3.99"},
	}
	e := newTestExtractor(runner)

	got := e.AcquireText(context.Background(), []byte("%PDF-1.4"), "application/pdf")

	if n := runner.countCalls("pdftoppm"); n != 2 {
		t.Fatalf("Expected one rasterization per page, got %d", n)
	}
	// Pages must be rasterized one at a time: -f i -l i per call.
	for i, c := range runner.calls {
		if c.name != "pdftoppm" {
			continue
		}
		joined := strings.Join(c.args, " ")
		if !strings.Contains(joined, "-f") || !strings.Contains(joined, "-l") {
			t.Errorf("Call %d: expected single-page rasterization flags, got %v", i, c.args)
		}
	}
	if !strings.Contains(got, "page one 12.50") || !strings.Contains(got, "page two 3.99") {
		t.Errorf("Expected concatenated OCR text in page order, got %q", got)
	}
	if strings.Index(got, "page one") > strings.Index(got, "page two") {
		t.Errorf("Expected page order to be preserved, got %q", got)
	}
}

func TestAcquireTextUnknownPageCountLimitsToFirstPage(t *testing.T) {
	runner := &stubRunner{
		t:              t,
		pdftotextErr:   errors.New("exit status 1"),
		tesseractPages: []string{"only page"},
	}
	e := newTestExtractor(runner)

	got := e.AcquireText(context.Background(), []byte("not really a pdf"), "application/pdf")

	if n := runner.countCalls("pdftoppm"); n != 1 {
		t.Errorf("Expected OCR bounded to the first page when page count is unknown, got %d calls", n)
	}
	if got != "only page" {
		t.Errorf("Expected first-page OCR text, got %q", got)
	}
}

func TestAcquireTextReturnsTextLayerWhenOCRFails(t *testing.T) {
	lowYield := strings.Repeat("y", 40) + "\f"
	runner := &stubRunner{
		t:            t,
		pdftotextOut: lowYield,
		pdftoppmErr:  errors.New("exit status 99"),
	}
	e := newTestExtractor(runner)

	got := e.AcquireText(context.Background(), []byte("%PDF-1.4"), "application/pdf")

	if got != lowYield {
		t.Errorf("Expected step-1 text when OCR fails, got %q", got)
	}
}

func TestAcquireTextMaxPagesCap(t *testing.T) {
	runner := &stubRunner{
		t:              t,
		pdftotextOut:   "\f\f\f\f", // 4 pages, no text
		tesseractPages: []string{"a", "b", "c", "d"},
	}
	e := NewExtractor(Config{MaxPages: 2}, zerolog.Nop())
	e.runner = runner

	e.AcquireText(context.Background(), []byte("%PDF-1.4"), "application/pdf")

	if n := runner.countCalls("pdftoppm"); n != 2 {
		t.Errorf("Expected OCR capped at 2 pages, got %d", n)
	}
}

func TestAcquireTextImage(t *testing.T) {
	runner := &stubRunner{t: t, tesseractPages: []string{"scanned statement text"}}
	e := newTestExtractor(runner)

	got := e.AcquireText(context.Background(), []byte{0x89, 'P', 'N', 'G'}, "image/png")

	if got != "scanned statement text" {
		t.Errorf("Expected OCR text, got %q", got)
	}
	if n := runner.countCalls("pdftotext"); n != 0 {
		t.Errorf("Expected no PDF pass for an image, got %d pdftotext calls", n)
	}
}

func TestAcquireTextImageOCRFailureIsEmpty(t *testing.T) {
	runner := &stubRunner{t: t, tesseractErr: errors.New("exit status 1")}
	e := newTestExtractor(runner)

	if got := e.AcquireText(context.Background(), []byte("jpg"), "image/jpeg"); got != "" {
		t.Errorf("Expected empty string on image OCR failure, got %q", got)
	}
}

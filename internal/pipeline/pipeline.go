// Package pipeline composes text acquisition, structured extraction and
// normalization into the single operation: document bytes + media type in,
// clean statement or classified error out.
package pipeline

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dvloznov/statement-extractor/internal/statement"
)

var (
	// ErrUnsupportedMedia means the declared media type is neither PDF nor
	// an image.
	ErrUnsupportedMedia = errors.New("invalid file type: upload a PDF or an image (PNG, JPG)")

	// ErrNoTransactions means the pipeline ran to completion but the
	// normalized ledger came out empty.
	ErrNoTransactions = errors.New("no transactions could be found in the document")
)

// TextAcquirer produces best-effort plain text from document bytes. It
// never fails; an unreadable document reads as an empty string.
type TextAcquirer interface {
	AcquireText(ctx context.Context, data []byte, contentType string) string
}

// StructuredExtractor turns plain text into a raw transaction extract.
type StructuredExtractor interface {
	Extract(ctx context.Context, text string) (*statement.RawStatementExtract, error)
}

// Step is a single stage of the extraction pipeline.
type Step interface {
	Execute(ctx context.Context, state *State) error
}

// State holds the shared state across all pipeline steps. Everything in it
// belongs to one invocation; nothing is shared across requests.
type State struct {
	Data        []byte
	ContentType string

	Text       string
	RawExtract *statement.RawStatementExtract
	Statement  *statement.Statement
}

// CheckMediaStep rejects media types outside {PDF, image/*} before any work
// happens.
type CheckMediaStep struct{}

func (s *CheckMediaStep) Execute(ctx context.Context, state *State) error {
	if state.ContentType != "application/pdf" && !strings.HasPrefix(state.ContentType, "image/") {
		return ErrUnsupportedMedia
	}
	return nil
}

// AcquireTextStep runs the layered text acquisition.
type AcquireTextStep struct {
	Acquirer TextAcquirer
}

func (s *AcquireTextStep) Execute(ctx context.Context, state *State) error {
	state.Text = s.Acquirer.AcquireText(ctx, state.Data, state.ContentType)
	return nil
}

// ExtractStep prompts the LLM backends for the raw extract. Typed errors
// (empty input, provider failures) pass through untouched so the caller can
// map them.
type ExtractStep struct {
	Extractor StructuredExtractor
}

func (s *ExtractStep) Execute(ctx context.Context, state *State) error {
	raw, err := s.Extractor.Extract(ctx, state.Text)
	if err != nil {
		return err
	}
	state.RawExtract = raw
	return nil
}

// NormalizeStep turns the raw extract into the clean statement.
type NormalizeStep struct{}

func (s *NormalizeStep) Execute(ctx context.Context, state *State) error {
	state.Statement = statement.Normalize(state.RawExtract)
	return nil
}

// CheckResultStep turns an empty ledger into a user-facing "nothing
// extractable" failure.
type CheckResultStep struct{}

func (s *CheckResultStep) Execute(ctx context.Context, state *State) error {
	if state.Statement == nil || len(state.Statement.Transactions) == 0 {
		return ErrNoTransactions
	}
	return nil
}

// Processor executes the extraction steps in order.
type Processor struct {
	steps []Step
	log   zerolog.Logger
}

// NewProcessor builds the standard 5-step statement extraction pipeline.
func NewProcessor(acquirer TextAcquirer, extractor StructuredExtractor, log zerolog.Logger) *Processor {
	return &Processor{
		steps: []Step{
			&CheckMediaStep{},
			&AcquireTextStep{Acquirer: acquirer},
			&ExtractStep{Extractor: extractor},
			&NormalizeStep{},
			&CheckResultStep{},
		},
		log: log,
	}
}

// Process runs one document through the pipeline. Stages are strictly
// sequential; the state is local to this call.
func (p *Processor) Process(ctx context.Context, data []byte, contentType string) (*statement.Statement, error) {
	state := &State{Data: data, ContentType: contentType}

	for _, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return nil, err
		}
	}

	p.log.Info().
		Str("content_type", contentType).
		Int("bytes", len(data)).
		Int("text_chars", len(state.Text)).
		Int("transactions", len(state.Statement.Transactions)).
		Msg("Statement extracted")

	return state.Statement, nil
}

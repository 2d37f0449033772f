package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dvloznov/statement-extractor/internal/llm"
	"github.com/dvloznov/statement-extractor/internal/pipeline"
	"github.com/dvloznov/statement-extractor/internal/statement"
)

// MockAcquirer implements pipeline.TextAcquirer.
type MockAcquirer struct {
	AcquireTextFunc func(ctx context.Context, data []byte, contentType string) string
}

func (m *MockAcquirer) AcquireText(ctx context.Context, data []byte, contentType string) string {
	return m.AcquireTextFunc(ctx, data, contentType)
}

// MockExtractor implements pipeline.StructuredExtractor.
type MockExtractor struct {
	ExtractFunc func(ctx context.Context, text string) (*statement.RawStatementExtract, error)
}

func (m *MockExtractor) Extract(ctx context.Context, text string) (*statement.RawStatementExtract, error) {
	return m.ExtractFunc(ctx, text)
}

func fixedText(text string) *MockAcquirer {
	return &MockAcquirer{
		AcquireTextFunc: func(ctx context.Context, data []byte, contentType string) string {
			return text
		},
	}
}

func TestProcessEndToEnd(t *testing.T) {
	// Two-page statement: one debit with an explicit date, one credit
	// inheriting it via carry-forward.
	acquirer := fixedText("page one text\npage two text")
	extractor := &MockExtractor{
		ExtractFunc: func(ctx context.Context, text string) (*statement.RawStatementExtract, error) {
			return &statement.RawStatementExtract{
				AccountHolder: "Jane Doe",
				Transactions: []statement.RawTransactionRow{
					{Date: "2024-03-01", Description: "Card purchase", Debit: "50.00"},
					{Description: "Refund", Credit: "20.00"},
				},
			}, nil
		},
	}

	p := pipeline.NewProcessor(acquirer, extractor, zerolog.Nop())
	st, err := p.Process(context.Background(), []byte("%PDF-1.4"), "application/pdf")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if st.AccountHolder != "Jane Doe" {
		t.Errorf("Expected account holder 'Jane Doe', got %q", st.AccountHolder)
	}
	if len(st.Transactions) != 2 {
		t.Fatalf("Expected 2 transactions, got %d", len(st.Transactions))
	}

	first, second := st.Transactions[0], st.Transactions[1]
	if first.Date != "2024-03-01" || first.Amount != 50.0 || first.TransactionType != statement.Debit {
		t.Errorf("Unexpected first transaction: %+v", first)
	}
	if second.Date != "2024-03-01" || second.Amount != 20.0 || second.TransactionType != statement.Credit {
		t.Errorf("Unexpected second transaction: %+v", second)
	}
}

func TestProcessUnsupportedMedia(t *testing.T) {
	called := false
	acquirer := &MockAcquirer{
		AcquireTextFunc: func(ctx context.Context, data []byte, contentType string) string {
			called = true
			return ""
		},
	}
	extractor := &MockExtractor{
		ExtractFunc: func(ctx context.Context, text string) (*statement.RawStatementExtract, error) {
			called = true
			return &statement.RawStatementExtract{}, nil
		},
	}

	p := pipeline.NewProcessor(acquirer, extractor, zerolog.Nop())
	_, err := p.Process(context.Background(), []byte("a,b,c"), "text/csv")

	if !errors.Is(err, pipeline.ErrUnsupportedMedia) {
		t.Fatalf("Expected ErrUnsupportedMedia, got %v", err)
	}
	if called {
		t.Error("Expected no stage to run after the media gate")
	}
}

func TestProcessEmptyDocument(t *testing.T) {
	// An empty/unreadable PDF degrades to empty text; the extractor is the
	// gate that reports it.
	acquirer := fixedText("")
	extractor := llm.NewExtractor(nil, zerolog.Nop())

	p := pipeline.NewProcessor(acquirer, extractor, zerolog.Nop())
	_, err := p.Process(context.Background(), []byte{}, "application/pdf")

	if !errors.Is(err, llm.ErrEmptyInput) {
		t.Fatalf("Expected ErrEmptyInput for an empty document, got %v", err)
	}
}

func TestProcessNoTransactions(t *testing.T) {
	acquirer := fixedText("Balance brought forward 1,000.00")
	extractor := &MockExtractor{
		ExtractFunc: func(ctx context.Context, text string) (*statement.RawStatementExtract, error) {
			// Only a summary row, which normalization drops.
			return &statement.RawStatementExtract{
				Transactions: []statement.RawTransactionRow{
					{Date: "2024-03-01", Description: "Balance brought forward", Balance: "1,000.00"},
				},
			}, nil
		},
	}

	p := pipeline.NewProcessor(acquirer, extractor, zerolog.Nop())
	_, err := p.Process(context.Background(), []byte("%PDF-1.4"), "application/pdf")

	if !errors.Is(err, pipeline.ErrNoTransactions) {
		t.Fatalf("Expected ErrNoTransactions, got %v", err)
	}
}

func TestProcessExtractorErrorPassesThrough(t *testing.T) {
	provErr := &llm.ProviderError{Provider: "openai", Err: errors.New("schema mismatch")}
	acquirer := fixedText("some text")
	extractor := &MockExtractor{
		ExtractFunc: func(ctx context.Context, text string) (*statement.RawStatementExtract, error) {
			return nil, provErr
		},
	}

	p := pipeline.NewProcessor(acquirer, extractor, zerolog.Nop())
	_, err := p.Process(context.Background(), []byte("%PDF-1.4"), "application/pdf")

	var got *llm.ProviderError
	if !errors.As(err, &got) {
		t.Fatalf("Expected the ProviderError to pass through untouched, got %v", err)
	}
}

package llm_test

import (
	"testing"

	"github.com/dvloznov/statement-extractor/internal/llm"
)

func TestDecodeRawExtract(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "PlainJSON",
			raw:  `{"account_holder":"Jane Doe","transactions":[{"date":"2024-03-01","debit":"50.00"}]}`,
		},
		{
			name: "FencedJSON",
			raw: "```json\n" +
				`{"account_holder":"Jane Doe","transactions":[{"date":"2024-03-01","debit":"50.00"}]}` +
				"\n```",
		},
		{
			name: "SurroundingProse",
			raw: "Here is the extracted statement:\n" +
				`{"account_holder":"Jane Doe","transactions":[{"date":"2024-03-01","debit":"50.00"}]}` +
				"\nLet me know if you need anything else.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := llm.DecodeRawExtract(tt.raw)
			if err != nil {
				t.Fatalf("DecodeRawExtract: %v", err)
			}
			if out.AccountHolder != "Jane Doe" {
				t.Errorf("Expected account holder 'Jane Doe', got %q", out.AccountHolder)
			}
			if len(out.Transactions) != 1 || out.Transactions[0].Debit != "50.00" {
				t.Errorf("Expected one transaction with debit 50.00, got %+v", out.Transactions)
			}
		})
	}
}

func TestDecodeRawExtractInvalidJSON(t *testing.T) {
	if _, err := llm.DecodeRawExtract("the model refused to answer"); err == nil {
		t.Error("Expected an error for a non-JSON response")
	}
}

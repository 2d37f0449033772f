// Package llm turns plain statement text into a raw transaction extract by
// prompting a priority-ordered list of LLM backends with quota-aware
// fallback.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/dvloznov/statement-extractor/internal/statement"
	"github.com/rs/zerolog"
)

// Provider is the capability every backend implements: given a prompt,
// return a parsed structured result or fail.
type Provider interface {
	Name() string
	Extract(ctx context.Context, prompt string) (*statement.RawStatementExtract, error)
}

// Extractor tries backends in priority order. Quota and rate-limit failures
// fall through to the next backend; anything else is fatal immediately.
type Extractor struct {
	providers []Provider
	log       zerolog.Logger
}

// NewExtractor creates an extractor over an explicit, priority-ordered
// backend list. The list is fixed at startup; there is no runtime
// environment inspection.
func NewExtractor(providers []Provider, log zerolog.Logger) *Extractor {
	return &Extractor{providers: providers, log: log}
}

// Extract prompts the configured backends for the raw transaction extract.
// Empty or whitespace-only text fails with ErrEmptyInput before any backend
// is called.
func (x *Extractor) Extract(ctx context.Context, text string) (*statement.RawStatementExtract, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	if len(x.providers) == 0 {
		return nil, ErrNotConfigured
	}

	prompt := BuildPrompt(text)

	var lastErr error
	for _, p := range x.providers {
		raw, err := p.Extract(ctx, prompt)
		if err == nil {
			x.log.Info().
				Str("provider", p.Name()).
				Int("rows", len(raw.Transactions)).
				Msg("Structured extraction succeeded")
			return raw, nil
		}

		if !IsQuotaError(err) {
			return nil, &ProviderError{Provider: p.Name(), Err: err}
		}

		x.log.Warn().
			Err(err).
			Str("provider", p.Name()).
			Msg("Backend hit quota/rate limit, trying next")
		lastErr = err
	}

	return nil, fmt.Errorf("%w: last error: %v", ErrNoProviderAvailable, lastErr)
}

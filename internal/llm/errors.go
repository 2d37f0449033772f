package llm

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyInput means the acquired document text was empty or
	// whitespace-only; the upload is unreadable and worth re-scanning.
	ErrEmptyInput = errors.New("the provided document is empty or could not be read")

	// ErrNotConfigured means zero LLM backends have credentials. This is an
	// operator problem, not a user problem.
	ErrNotConfigured = errors.New("no LLM backend is configured: set OPENAI_API_KEY and/or GEMINI_API_KEY")

	// ErrNoProviderAvailable means every configured backend was attempted
	// and none succeeded.
	ErrNoProviderAvailable = errors.New("no available LLM backend succeeded")
)

// ProviderError is a structural (non-quota) failure from a specific backend.
// It is fatal: retrying the same prompt on another backend is assumed to
// fail the same way.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s backend error: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// quotaIndicators are the known substrings of quota/rate-limit failures.
// Backends report these as opaque message text, so classification is a
// string match; it lives here so it can be swapped for structured error
// codes if a backend ever exposes them.
var quotaIndicators = []string{
	"insufficient_quota",
	"quota",
	"429",
	"rate limit",
}

// IsQuotaError reports whether an error looks like a temporary quota or
// rate-limit condition rather than a structural request failure.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range quotaIndicators {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

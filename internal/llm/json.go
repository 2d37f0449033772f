package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dvloznov/statement-extractor/internal/statement"
)

// DecodeRawExtract parses a model response into a raw extract, cleaning up
// Markdown fences and surrounding junk first.
func DecodeRawExtract(raw string) (*statement.RawStatementExtract, error) {
	clean := cleanModelJSON(raw)

	var out statement.RawStatementExtract
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		return nil, fmt.Errorf("unmarshal model JSON: %w\nraw response: %s", err, raw)
	}
	return &out, nil
}

// cleanModelJSON strips code fences and any text around the JSON object if
// the model ignored the formatting instructions.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			// Single-line weirdness; just return as-is.
			return s
		}
		s = strings.TrimSpace(s)
	}

	// Remove trailing ``` if present.
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Extra safety: if there's still junk around the JSON object, keep only
	// from the first '{' to the last '}'.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = s[start : end+1]
			s = strings.TrimSpace(s)
		}
	}

	return s
}

// Package config assembles runtime configuration from the environment.
// All provider credentials are read exactly once at startup; nothing in the
// request path inspects the environment.
package config

import (
	"os"
	"strconv"
	"strings"
)

// Provider kinds understood by the service.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// ProviderConfig describes one extraction backend. Order in
// Config.Providers is fallback order.
type ProviderConfig struct {
	Kind   string
	APIKey string
	Model  string
}

// OCRConfig carries the external tool settings for text acquisition.
type OCRConfig struct {
	Pdftotext string
	Pdftoppm  string
	Tesseract string
	Lang      string
	DPI       int
	MaxPages  int
}

// Config is the full service configuration.
type Config struct {
	Port           string
	AllowedOrigins []string
	Providers      []ProviderConfig
	OCR            OCRConfig
}

// Load reads configuration from the environment. Providers without a
// credential are simply absent from the result; the caller decides whether
// running with zero providers is acceptable.
func Load() *Config {
	cfg := &Config{
		Port: envOr("PORT", "8080"),
		OCR: OCRConfig{
			Pdftotext: envOr("PDFTOTEXT_PATH", ""),
			Pdftoppm:  envOr("PDFTOPPM_PATH", ""),
			Tesseract: envOr("TESSERACT_PATH", ""),
			Lang:      envOr("OCR_LANG", ""),
			DPI:       envInt("OCR_DPI", 0),
			MaxPages:  envInt("OCR_MAX_PAGES", 0),
		},
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	// OpenAI first, Gemini as fallback.
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.Providers = append(cfg.Providers, ProviderConfig{
			Kind:   ProviderOpenAI,
			APIKey: key,
			Model:  os.Getenv("OPENAI_MODEL"),
		})
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.Providers = append(cfg.Providers, ProviderConfig{
			Kind:   ProviderGemini,
			APIKey: key,
			Model:  os.Getenv("GEMINI_MODEL"),
		})
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

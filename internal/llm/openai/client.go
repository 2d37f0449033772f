// Package openai implements the llm.Provider capability over the OpenAI
// chat/completions HTTP API. No SDK: a plain client with bearer auth is all
// the surface we use.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/statement-extractor/internal/llm"
	"github.com/dvloznov/statement-extractor/internal/statement"
)

// DefaultModel is used when no model override is configured.
const DefaultModel = "gpt-4o-mini"

// Config for the OpenAI backend.
type Config struct {
	APIKey  string
	BaseURL string        // default https://api.openai.com/v1
	Model   string        // default DefaultModel
	Timeout time.Duration // http client timeout, default 60s
}

// Client is a process-wide OpenAI handle, built once at startup and reused
// read-only across requests.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates the client with defaults filled in.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
}

// Name implements llm.Provider.
func (c *Client) Name() string { return "openai" }

// Extract sends the prompt to chat/completions with a JSON-object response
// format and parses the content of the first choice.
func (c *Client) Extract(ctx context.Context, prompt string) (*statement.RawStatementExtract, error) {
	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     0,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": "You are a bank statement parser. Return ONLY raw JSON, no Markdown."},
			{"role": "user", "content": prompt},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return nil, fmt.Errorf("openai: decode response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return nil, fmt.Errorf("openai: no choices in response")
	}

	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	c.log.Debug().
		Str("model", c.cfg.Model).
		Int("response_chars", len(content)).
		Msg("OpenAI response received")

	return llm.DecodeRawExtract(content)
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http error: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Warn().Err(err).Msg("OpenAI response body close error")
		}
	}()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Keep the body in the message: quota classification upstream
		// matches on it ("insufficient_quota", 429, ...).
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}

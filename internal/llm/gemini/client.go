// Package gemini implements the llm.Provider capability on top of the
// Google GenAI SDK.
package gemini

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/dvloznov/statement-extractor/internal/llm"
	"github.com/dvloznov/statement-extractor/internal/statement"
)

// DefaultModel is used when no model override is configured.
const DefaultModel = "gemini-2.5-flash"

// Config for the Gemini backend.
type Config struct {
	APIKey string
	Model  string // default DefaultModel
}

// Client is a process-wide Gemini handle, built once at startup and reused
// read-only across requests.
type Client struct {
	cfg    Config
	client *genai.Client
	log    zerolog.Logger
}

// NewClient creates the GenAI client with an explicit API key.
func NewClient(ctx context.Context, cfg Config, log zerolog.Logger) (*Client, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create genai client: %w", err)
	}
	return &Client{cfg: cfg, client: client, log: log}, nil
}

// Name implements llm.Provider.
func (c *Client) Name() string { return "gemini" }

// Extract sends the prompt to the model and parses the JSON it returns.
func (c *Client) Extract(ctx context.Context, prompt string) (*statement.RawStatementExtract, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.cfg.Model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("gemini: empty response from model")
	}

	c.log.Debug().
		Str("model", c.cfg.Model).
		Int("response_chars", len(rawText)).
		Msg("Gemini response received")

	return llm.DecodeRawExtract(rawText)
}

// Command extract runs the statement extraction pipeline on a local file
// and prints the resulting statement as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/dvloznov/statement-extractor/internal/config"
	"github.com/dvloznov/statement-extractor/internal/llm"
	"github.com/dvloznov/statement-extractor/internal/llm/gemini"
	"github.com/dvloznov/statement-extractor/internal/llm/openai"
	"github.com/dvloznov/statement-extractor/internal/logger"
	"github.com/dvloznov/statement-extractor/internal/pipeline"
	"github.com/dvloznov/statement-extractor/internal/textextract"
)

func main() {
	_ = godotenv.Load()

	var contentType = flag.String("content-type", "", "Media type of the input (default: inferred from the extension)")
	flag.Parse()

	log := logger.New()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <statement file>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	path := flag.Arg(0)

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to read input file")
	}

	mediaType := *contentType
	if mediaType == "" {
		mediaType = mime.TypeByExtension(filepath.Ext(path))
	}
	if mediaType == "" {
		mediaType = http.DetectContentType(data)
	}

	cfg := config.Load()

	ctx := context.Background()

	var providers []llm.Provider
	for _, pc := range cfg.Providers {
		switch pc.Kind {
		case config.ProviderOpenAI:
			providers = append(providers, openai.NewClient(openai.Config{
				APIKey: pc.APIKey,
				Model:  pc.Model,
			}, log))
		case config.ProviderGemini:
			client, err := gemini.NewClient(ctx, gemini.Config{
				APIKey: pc.APIKey,
				Model:  pc.Model,
			}, log)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to create Gemini client")
			}
			providers = append(providers, client)
		}
	}

	textExtractor := textextract.NewExtractor(textextract.Config{
		Pdftotext: cfg.OCR.Pdftotext,
		Pdftoppm:  cfg.OCR.Pdftoppm,
		Tesseract: cfg.OCR.Tesseract,
		Lang:      cfg.OCR.Lang,
		DPI:       cfg.OCR.DPI,
		MaxPages:  cfg.OCR.MaxPages,
	}, log)
	processor := pipeline.NewProcessor(textExtractor, llm.NewExtractor(providers, log), log)

	st, err := processor.Process(ctx, data, mediaType)
	if err != nil {
		log.Fatal().Err(err).Msg("Extraction failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(st); err != nil {
		log.Fatal().Err(err).Msg("Failed to encode result")
	}
}

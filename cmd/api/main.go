package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dvloznov/statement-extractor/internal/api/handlers"
	"github.com/dvloznov/statement-extractor/internal/api/middleware"
	"github.com/dvloznov/statement-extractor/internal/config"
	"github.com/dvloznov/statement-extractor/internal/jobs"
	"github.com/dvloznov/statement-extractor/internal/jobs/inmemory"
	"github.com/dvloznov/statement-extractor/internal/llm"
	"github.com/dvloznov/statement-extractor/internal/llm/gemini"
	"github.com/dvloznov/statement-extractor/internal/llm/openai"
	"github.com/dvloznov/statement-extractor/internal/logger"
	"github.com/dvloznov/statement-extractor/internal/pipeline"
	"github.com/dvloznov/statement-extractor/internal/textextract"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	var port = flag.String("port", "", "HTTP server port (overrides PORT env)")
	flag.Parse()

	// Initialize logger
	log := logger.New()

	cfg := config.Load()
	if *port != "" {
		cfg.Port = *port
	}

	ctx := context.Background()

	// Build extraction providers in fallback order. The process starts with
	// a fixed provider list; credentials are never re-read per request.
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
		default:
			log.Warn().Str("kind", pc.Kind).Msg("Unknown provider kind, skipping")
		}
	}
	if len(providers) == 0 {
		log.Warn().Msg("No extraction providers configured - uploads will fail until OPENAI_API_KEY or GEMINI_API_KEY is set")
	}

	// Assemble the pipeline
	textExtractor := textextract.NewExtractor(textextract.Config{
		Pdftotext: cfg.OCR.Pdftotext,
		Pdftoppm:  cfg.OCR.Pdftoppm,
		Tesseract: cfg.OCR.Tesseract,
		Lang:      cfg.OCR.Lang,
		DPI:       cfg.OCR.DPI,
		MaxPages:  cfg.OCR.MaxPages,
	}, log)
	llmExtractor := llm.NewExtractor(providers, log)
	processor := pipeline.NewProcessor(textExtractor, llmExtractor, log)

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	// Job handler runs the same pipeline as the synchronous endpoint.
	jobHandler := func(ctx context.Context, job jobs.Job) error {
		extractJob, ok := job.(*jobs.ExtractStatementJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", extractJob.JobID).
			Str("filename", extractJob.Filename).
			Msg("Processing extraction job")

		result, err := processor.Process(ctx, extractJob.Data, extractJob.ContentType)
		if err != nil {
			log.Error().
				Err(err).
				Str("job_id", extractJob.JobID).
				Msg("Extraction job failed")
			return err
		}

		extractJob.Result = result

		log.Info().
			Str("job_id", extractJob.JobID).
			Int("transactions", len(result.Transactions)).
			Msg("Extraction job completed")

		return nil
	}

	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	// Initialize handlers
	statementsHandler := handlers.NewStatementsHandler(processor, jobQueue, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	// Create router
	mux := http.NewServeMux()

	mux.HandleFunc("/api/statements", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			statementsHandler.Extract(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/statements/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			statementsHandler.EnqueueExtraction(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(cfg.AllowedOrigins)(mux),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
		// OCR plus a remote model round trip can take minutes on a long
		// statement, so the write timeout is generous.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Int("providers", len(providers)).
			Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}

// Package handlers exposes the statement extraction pipeline over HTTP.
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/dvloznov/statement-extractor/internal/api/middleware"
	"github.com/dvloznov/statement-extractor/internal/jobs"
	"github.com/dvloznov/statement-extractor/internal/llm"
	"github.com/dvloznov/statement-extractor/internal/pipeline"
	"github.com/dvloznov/statement-extractor/internal/statement"
)

// DefaultMaxUploadBytes caps uploaded document size.
const DefaultMaxUploadBytes = 20 << 20 // 20 MiB

// Pipeline is the single operation the handlers drive.
type Pipeline interface {
	Process(ctx context.Context, data []byte, contentType string) (*statement.Statement, error)
}

// StatementsHandler handles statement upload endpoints.
type StatementsHandler struct {
	pipeline       Pipeline
	publisher      jobs.Publisher
	log            zerolog.Logger
	maxUploadBytes int64
}

// NewStatementsHandler creates a new statements handler.
func NewStatementsHandler(p Pipeline, publisher jobs.Publisher, log zerolog.Logger) *StatementsHandler {
	return &StatementsHandler{
		pipeline:       p,
		publisher:      publisher,
		log:            log,
		maxUploadBytes: DefaultMaxUploadBytes,
	}
}

// Extract handles POST /api/statements: synchronous upload-and-extract.
func (h *StatementsHandler) Extract(w http.ResponseWriter, r *http.Request) {
	data, contentType, _, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	st, err := h.pipeline.Process(r.Context(), data, contentType)
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, st)
}

// EnqueueExtraction handles POST /api/statements/jobs: asynchronous upload.
// The document is validated and queued; the result is fetched via the jobs
// endpoints.
func (h *StatementsHandler) EnqueueExtraction(w http.ResponseWriter, r *http.Request) {
	data, contentType, filename, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	job := &jobs.ExtractStatementJob{
		Filename:    filename,
		ContentType: contentType,
		Data:        data,
		MaxRetries:  1,
	}

	if err := h.publisher.PublishExtractStatement(r.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue extraction job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue extraction job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("filename", filename).Msg("Extraction job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// readUpload pulls the document out of the multipart form. The media type
// gate itself lives in the pipeline; this only rejects malformed uploads.
func (h *StatementsHandler) readUpload(w http.ResponseWriter, r *http.Request) (data []byte, contentType, filename string, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "A 'file' form field is required")
		return nil, "", "", false
	}
	defer file.Close()

	data, err = io.ReadAll(file)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read upload")
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return nil, "", "", false
	}

	contentType = header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return data, contentType, header.Filename, true
}

// writeFailure maps a pipeline error onto the response contract. The caller
// always gets exactly one classified error with a readable message.
func (h *StatementsHandler) writeFailure(w http.ResponseWriter, err error) {
	var provErr *llm.ProviderError

	switch {
	case errors.Is(err, pipeline.ErrUnsupportedMedia),
		errors.Is(err, llm.ErrEmptyInput):
		middleware.WriteError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, pipeline.ErrNoTransactions):
		middleware.WriteError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, llm.ErrNotConfigured),
		errors.Is(err, llm.ErrNoProviderAvailable),
		errors.As(err, &provErr):
		h.log.Error().Err(err).Msg("Extraction backend failure")
		middleware.WriteError(w, http.StatusInternalServerError, err.Error())

	default:
		h.log.Error().Err(err).Msg("Unexpected pipeline error")
		middleware.WriteError(w, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store: store,
		log:   log,
	}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()

	job, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query()
	filter := jobs.JobFilter{
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}

package inmemory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dvloznov/statement-extractor/internal/jobs"
	"github.com/dvloznov/statement-extractor/internal/statement"
)

func TestStoreSaveAndGet(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	job := &jobs.ExtractStatementJob{
		JobID:       "job-1",
		ContentType: "application/pdf",
		Status:      jobs.JobStatusPending,
		CreatedAt:   time.Now(),
	}

	if err := store.SaveJob(ctx, job); err != nil {
		t.Fatalf("SaveJob: %v", err)
	}

	got, err := store.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.ContentType != "application/pdf" {
		t.Errorf("Expected content type to round-trip, got %q", got.ContentType)
	}

	// Mutating the returned copy must not touch the stored job.
	got.Status = jobs.JobStatusFailed
	again, _ := store.GetJob(ctx, "job-1")
	if again.Status != jobs.JobStatusPending {
		t.Errorf("Expected stored job to be isolated from returned copies, got status %s", again.Status)
	}
}

func TestStoreRejectsMissingID(t *testing.T) {
	store := NewStore()
	if err := store.SaveJob(context.Background(), &jobs.ExtractStatementJob{}); err == nil {
		t.Error("Expected an error for a job without an ID")
	}
}

func TestStoreListFilterAndPagination(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	base := time.Now()
	for i, status := range []jobs.JobStatus{
		jobs.JobStatusCompleted, jobs.JobStatusFailed, jobs.JobStatusCompleted,
	} {
		job := &jobs.ExtractStatementJob{
			JobID:     string(rune('a' + i)),
			Status:    status,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := store.SaveJob(ctx, job); err != nil {
			t.Fatalf("SaveJob: %v", err)
		}
	}

	completed, err := store.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusCompleted})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(completed) != 2 {
		t.Errorf("Expected 2 completed jobs, got %d", len(completed))
	}

	limited, err := store.ListJobs(ctx, jobs.JobFilter{Limit: 1})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("Expected 1 job with limit 1, got %d", len(limited))
	}
	// Newest first.
	if limited[0].JobID != "c" {
		t.Errorf("Expected the newest job first, got %q", limited[0].JobID)
	}

	none, err := store.ListJobs(ctx, jobs.JobFilter{Offset: 10})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Expected empty page past the end, got %d", len(none))
	}
}

func TestQueueProcessesJob(t *testing.T) {
	store := NewStore()
	queue := NewQueue(10, store)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	done := make(chan struct{})

	handler := func(ctx context.Context, job jobs.Job) error {
		ej, ok := job.(*jobs.ExtractStatementJob)
		if !ok {
			t.Errorf("Unexpected job type %T", job)
			return nil
		}
		mu.Lock()
		ej.Result = &statement.Statement{Transactions: []statement.Transaction{}}
		mu.Unlock()
		close(done)
		return nil
	}

	if err := queue.Start(ctx, handler); err != nil {
		t.Fatalf("Start: %v", err)
	}

	job := &jobs.ExtractStatementJob{ContentType: "application/pdf", Data: []byte("%PDF-1.4")}
	if err := queue.PublishExtractStatement(ctx, job); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Job was never processed")
	}

	// Give processJob a moment to persist the final state.
	deadline := time.Now().Add(2 * time.Second)
	for {
		got, err := store.GetJob(ctx, job.JobID)
		if err == nil && got.Status == jobs.JobStatusCompleted {
			if got.Result == nil {
				t.Error("Expected the result to be saved with the job")
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Job never reached completed status")
		}
		time.Sleep(10 * time.Millisecond)
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	if err := queue.Stop(stopCtx); err != nil {
		t.Errorf("Stop: %v", err)
	}
}

func TestQueueClosedRejectsPublish(t *testing.T) {
	queue := NewQueue(1, nil)
	if err := queue.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	err := queue.PublishExtractStatement(context.Background(), &jobs.ExtractStatementJob{})
	if err == nil {
		t.Error("Expected publish on a closed queue to fail")
	}
}

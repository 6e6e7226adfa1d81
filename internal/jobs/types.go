// Package jobs defines the asynchronous ingest job model and the queue
// abstractions it travels through. Batch ingestion publishes one job per
// account record; workers store each record through the pipeline service.
package jobs

import (
	"context"
	"encoding/json"
	"time"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeStoreRecord represents an account record store job.
	JobTypeStoreRecord JobType = "store_record"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed.
	JobStatusFailed JobStatus = "failed"
	// JobStatusRetrying indicates the job failed and is being retried.
	JobStatusRetrying JobStatus = "retrying"
)

// StoreRecordJob carries one account record through the ingest queue. The
// record travels as raw JSON so the queue stays decoupled from the
// pipeline's validation; the worker decodes and validates at execution
// time.
type StoreRecordJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// AccountID is the account the record belongs to, when known upfront.
	AccountID string `json:"account_id,omitempty"`

	// Source names where the record came from (request body, file path or
	// object URI), for operator diagnostics.
	Source string `json:"source,omitempty"`

	// Record is the serialized account record to store.
	Record json.RawMessage `json:"record"`

	// DocumentID is the id the record was stored under, set on completion.
	DocumentID string `json:"document_id,omitempty"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the job started processing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job completed (success or failure).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	// RetryCount is the number of times this job has been retried.
	RetryCount int `json:"retry_count"`

	// MaxRetries is the maximum number of retries allowed.
	MaxRetries int `json:"max_retries"`
}

// Job is a generic interface for all job types.
type Job interface {
	// GetID returns the unique job identifier.
	GetID() string

	// GetType returns the job type.
	GetType() JobType

	// GetStatus returns the current job status.
	GetStatus() JobStatus
}

// GetID implements the Job interface.
func (j *StoreRecordJob) GetID() string {
	return j.JobID
}

// GetType implements the Job interface.
func (j *StoreRecordJob) GetType() JobType {
	return JobTypeStoreRecord
}

// GetStatus implements the Job interface.
func (j *StoreRecordJob) GetStatus() JobStatus {
	return j.Status
}

// Publisher defines the interface for publishing jobs to a queue.
// This abstraction allows for different queue implementations.
type Publisher interface {
	// PublishStoreRecord publishes a record store job.
	PublishStoreRecord(ctx context.Context, job *StoreRecordJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler is a function that processes a job.
// It should return an error if the job failed and should be retried.
type JobHandler func(ctx context.Context, job Job) error

// JobStore defines the interface for storing and retrieving job status.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *StoreRecordJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*StoreRecordJob, error)

	// ListJobs retrieves jobs with optional filtering.
	ListJobs(ctx context.Context, filter JobFilter) ([]*StoreRecordJob, error)

	// UpdateJobStatus updates the status of a job.
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// AccountID filters jobs by account ID.
	AccountID string

	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-rag/internal/api/middleware"
	"github.com/dvloznov/finance-rag/internal/finance"
	"github.com/dvloznov/finance-rag/internal/jobs"
	"github.com/dvloznov/finance-rag/internal/pipeline"
)

// Service is the pipeline surface the HTTP layer depends on.
type Service interface {
	Store(ctx context.Context, rec finance.AccountRecord) (pipeline.StoreResult, error)
	Search(ctx context.Context, q pipeline.SearchQuery) (pipeline.SearchResponse, error)
	Summary(ctx context.Context, q pipeline.SummaryQuery) (pipeline.SummaryResponse, error)
	AllRecords(ctx context.Context, q pipeline.RecordsQuery) (pipeline.RecordsResponse, error)
	Health(ctx context.Context) pipeline.HealthStatus
}

// FinancialHandler handles the store, search, summary, listing and health
// endpoints.
type FinancialHandler struct {
	svc Service
	log zerolog.Logger
}

// NewFinancialHandler creates a new financial data handler.
func NewFinancialHandler(svc Service, log zerolog.Logger) *FinancialHandler {
	return &FinancialHandler{svc: svc, log: log}
}

// transactionBody decodes one wire transaction. Amount is a pointer so a
// missing field is distinguishable from an explicit zero.
type transactionBody struct {
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Amount      *float64 `json:"amount"`
}

// storeRequest decodes the store endpoint body.
type storeRequest struct {
	AccountID      string            `json:"account_id"`
	InitialBalance float64           `json:"initial_balance"`
	Transactions   []transactionBody `json:"transactions"`
	Extra          map[string]string `json:"metadata"`
}

func (req storeRequest) toRecord() (finance.AccountRecord, error) {
	rec := finance.AccountRecord{
		AccountID:      req.AccountID,
		InitialBalance: req.InitialBalance,
		Transactions:   make([]finance.Transaction, 0, len(req.Transactions)),
		Extra:          req.Extra,
	}
	for i, t := range req.Transactions {
		if t.Amount == nil {
			return finance.AccountRecord{}, finance.Validationf("transaction %d: missing amount", i)
		}
		txType := t.Type
		if txType == "" {
			txType = "unknown"
		}
		rec.Transactions = append(rec.Transactions, finance.Transaction{
			Date:        t.Date,
			Description: t.Description,
			Type:        txType,
			Amount:      *t.Amount,
		})
	}
	return rec, nil
}

// StoreFinancialData handles POST /store-financial-data
func (h *FinancialHandler) StoreFinancialData(w http.ResponseWriter, r *http.Request) {
	var req storeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rec, err := req.toRecord()
	if err != nil {
		middleware.WriteDomainError(w, err)
		return
	}

	result, err := h.svc.Store(r.Context(), rec)
	if err != nil {
		h.log.Error().Err(err).Msg("Store failed")
		middleware.WriteDomainError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, result)
}

// SearchFinancial handles POST /search-financial
func (h *FinancialHandler) SearchFinancial(w http.ResponseWriter, r *http.Request) {
	var q pipeline.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.svc.Search(r.Context(), q)
	if err != nil {
		if !finance.IsKind(err, finance.KindNotFound) {
			h.log.Error().Err(err).Str("query", q.Query).Msg("Search failed")
		}
		middleware.WriteDomainError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, resp)
}

// FinancialSummary handles POST /financial-summary
func (h *FinancialHandler) FinancialSummary(w http.ResponseWriter, r *http.Request) {
	var q pipeline.SummaryQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.svc.Summary(r.Context(), q)
	if err != nil {
		if !finance.IsKind(err, finance.KindNotFound) {
			h.log.Error().Err(err).Msg("Summary failed")
		}
		middleware.WriteDomainError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, resp)
}

// AllRecords handles GET /all-records
func (h *FinancialHandler) AllRecords(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	// account_id is accepted as a shorthand alias for account_id_filter.
	accountFilter := params.Get("account_id_filter")
	if accountFilter == "" {
		accountFilter = params.Get("account_id")
	}

	q := pipeline.RecordsQuery{
		IncludeDocuments:    queryBool(params.Get("include_documents")),
		IncludeMetadata:     queryBool(params.Get("include_metadata")),
		IncludeOriginalData: queryBool(params.Get("include_original_data")),
		AccountIDFilter:     accountFilter,
	}
	if raw := params.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			middleware.WriteError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		q.Limit = limit
	}

	resp, err := h.svc.AllRecords(r.Context(), q)
	if err != nil {
		h.log.Error().Err(err).Msg("Listing records failed")
		middleware.WriteDomainError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, resp)
}

// Health handles GET /health
func (h *FinancialHandler) Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.svc.Health(r.Context()))
}

func queryBool(raw string) bool {
	v, err := strconv.ParseBool(raw)
	return err == nil && v
}

// IngestHandler handles asynchronous batch ingestion.
type IngestHandler struct {
	publisher jobs.Publisher
	log       zerolog.Logger
}

// NewIngestHandler creates a new batch ingest handler.
func NewIngestHandler(publisher jobs.Publisher, log zerolog.Logger) *IngestHandler {
	return &IngestHandler{publisher: publisher, log: log}
}

type ingestBatchRequest struct {
	Records []json.RawMessage `json:"records"`
}

type ingestBatchResponse struct {
	JobIDs   []string `json:"job_ids"`
	Enqueued int      `json:"enqueued"`
}

// IngestBatch handles POST /ingest-batch
// Each record becomes one queued store job; validation happens in the
// worker, so a malformed record fails its own job without sinking the
// batch.
func (h *IngestHandler) IngestBatch(w http.ResponseWriter, r *http.Request) {
	var req ingestBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Records) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "records must not be empty")
		return
	}

	resp := ingestBatchResponse{JobIDs: make([]string, 0, len(req.Records))}
	for i, raw := range req.Records {
		// Pull the account id out upfront so jobs are filterable by account
		// before the worker runs.
		var peek struct {
			AccountID string `json:"account_id"`
		}
		_ = json.Unmarshal(raw, &peek)

		job := &jobs.StoreRecordJob{
			AccountID: peek.AccountID,
			Source:    "ingest-batch",
			Record:    raw,
		}
		if err := h.publisher.PublishStoreRecord(r.Context(), job); err != nil {
			h.log.Error().Err(err).Int("record_index", i).Msg("Failed to enqueue record")
			middleware.WriteError(w, http.StatusServiceUnavailable, "Failed to enqueue records")
			return
		}
		resp.JobIDs = append(resp.JobIDs, job.JobID)
	}
	resp.Enqueued = len(resp.JobIDs)

	h.log.Info().Int("enqueued", resp.Enqueued).Msg("Batch ingest accepted")
	middleware.WriteJSON(w, http.StatusAccepted, resp)
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{store: store, log: log}
}

// GetJob handles GET /jobs/:jobId
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	filter := jobs.JobFilter{
		AccountID: params.Get("account_id"),
		Status:    jobs.JobStatus(params.Get("status")),
	}
	if raw := params.Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if raw := params.Get("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil && offset > 0 {
			filter.Offset = offset
		}
	}

	list, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  list,
		"count": len(list),
	})
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dvloznov/finance-rag/internal/api/handlers"
	"github.com/dvloznov/finance-rag/internal/api/middleware"
	"github.com/dvloznov/finance-rag/internal/archive"
	"github.com/dvloznov/finance-rag/internal/config"
	"github.com/dvloznov/finance-rag/internal/embedding"
	"github.com/dvloznov/finance-rag/internal/finance"
	"github.com/dvloznov/finance-rag/internal/jobs"
	"github.com/dvloznov/finance-rag/internal/jobs/inmemory"
	"github.com/dvloznov/finance-rag/internal/logger"
	"github.com/dvloznov/finance-rag/internal/pipeline"
	"github.com/dvloznov/finance-rag/internal/vectorstore"
)

func main() {
	var configPath = flag.String("config", "", "Path to config file (optional)")
	flag.Parse()

	// Load .env before config so FINRAG_ variables from the file are
	// visible to viper.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLog := logger.New()
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.NewWithLevel(cfg.LogLevel)

	ctx := context.Background()

	embedder, err := embedding.NewGeminiEmbedder(ctx, cfg.EmbeddingModel)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create embedder")
	}

	index, err := vectorstore.OpenChromem(cfg.DataDir, cfg.CollectionName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open vector index")
	}
	defer index.Close()

	var archiver archive.Writer
	if cfg.ArchiveEnabled {
		bq, err := archive.NewBigQueryWriter(ctx, cfg.GCPProject, cfg.ArchiveDataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create archive writer")
		}
		defer bq.Close()
		archiver = bq
		log.Info().Str("dataset", cfg.ArchiveDataset).Msg("Archive enabled")
	}

	svc := pipeline.New(embedder, index, archiver, logger.WithComponent(log, "pipeline")).
		WithDefaultResults(cfg.DefaultResults)

	// Job infrastructure for asynchronous batch ingest
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.JobBufferSize, cfg.JobWorkers, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job jobs.Job) error {
		storeJob, ok := job.(*jobs.StoreRecordJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		var rec finance.AccountRecord
		if err := json.Unmarshal(storeJob.Record, &rec); err != nil {
			return fmt.Errorf("decoding record: %w", err)
		}

		result, err := svc.Store(ctx, rec)
		if err != nil {
			log.Error().
				Err(err).
				Str("job_id", storeJob.JobID).
				Str("account_id", storeJob.AccountID).
				Msg("Store job failed")
			return err
		}

		storeJob.DocumentID = result.DocumentID
		log.Info().
			Str("job_id", storeJob.JobID).
			Str("document_id", result.DocumentID).
			Msg("Store job completed")
		return nil
	}

	go func() {
		log.Info().Int("workers", cfg.JobWorkers).Msg("Starting job workers")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job workers stopped with error")
		}
	}()

	// Initialize handlers
	financialHandler := handlers.NewFinancialHandler(svc, logger.WithComponent(log, "api"))
	ingestHandler := handlers.NewIngestHandler(jobQueue, logger.WithComponent(log, "ingest"))
	jobsHandler := handlers.NewJobsHandler(jobStore, logger.WithComponent(log, "jobs"))

	// Create router
	mux := http.NewServeMux()

	mux.HandleFunc("/store-financial-data", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			financialHandler.StoreFinancialData(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/search-financial", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			financialHandler.SearchFinancial(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/financial-summary", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			financialHandler.FinancialSummary(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/all-records", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			financialHandler.AllRecords(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/ingest-batch", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			ingestHandler.IngestBatch(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			financialHandler.Health(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.HTTPPort).Str("collection", cfg.CollectionName).Msg("Starting API server")
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

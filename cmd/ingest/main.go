// The ingest tool bulk-loads account records into the vector store without
// going through the HTTP API. It accepts a local JSON file or a gs:// URI
// holding either a single record or an array of records.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/dvloznov/finance-rag/internal/archive"
	"github.com/dvloznov/finance-rag/internal/config"
	"github.com/dvloznov/finance-rag/internal/embedding"
	"github.com/dvloznov/finance-rag/internal/finance"
	"github.com/dvloznov/finance-rag/internal/gcs"
	"github.com/dvloznov/finance-rag/internal/logger"
	"github.com/dvloznov/finance-rag/internal/pipeline"
	"github.com/dvloznov/finance-rag/internal/vectorstore"
)

func main() {
	var (
		filePath   = flag.String("file", "", "Path to a local JSON file of account records")
		gcsURI     = flag.String("gcs-uri", "", "GCS URI of a JSON file (e.g. gs://bucket/records.json)")
		configPath = flag.String("config", "", "Path to config file (optional)")
	)
	flag.Parse()

	_ = godotenv.Load()

	log := logger.New()

	if (*filePath == "") == (*gcsURI == "") {
		log.Fatal().Msg("Exactly one of --file or --gcs-uri is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	data, source, err := readPayload(ctx, *filePath, *gcsURI)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read input")
	}

	records, err := decodeRecords(data)
	if err != nil {
		log.Fatal().Err(err).Str("source", source).Msg("Failed to decode records")
	}
	if len(records) == 0 {
		log.Fatal().Str("source", source).Msg("No records found in input")
	}

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
	}

	svc := pipeline.New(embedder, index, archiver, logger.WithComponent(log, "pipeline"))

	var stored, failed int
	for i, rec := range records {
		result, err := svc.Store(ctx, rec)
		if err != nil {
			log.Error().Err(err).Int("record_index", i).Msg("Record rejected")
			failed++
			continue
		}
		log.Info().
			Str("document_id", result.DocumentID).
			Int("transactions", result.Summary.TransactionCount).
			Msg("Record stored")
		stored++
	}

	fmt.Printf("Ingestion finished: %d stored, %d failed (source %s)\n", stored, failed, source)
	if failed > 0 {
		os.Exit(1)
	}
}

func readPayload(ctx context.Context, filePath, gcsURI string) ([]byte, string, error) {
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, filePath, fmt.Errorf("reading %s: %w", filePath, err)
		}
		return data, filePath, nil
	}

	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, gcsURI, err
	}
	defer client.Close()

	data, err := client.FetchObject(ctx, gcsURI)
	return data, gcsURI, err
}

// decodeRecords accepts either a JSON array of records or a single record
// object.
func decodeRecords(data []byte) ([]finance.AccountRecord, error) {
	var records []finance.AccountRecord
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	var single finance.AccountRecord
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("input is neither a record nor an array of records: %w", err)
	}
	return []finance.AccountRecord{single}, nil
}

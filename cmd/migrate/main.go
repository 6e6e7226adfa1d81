// The migrate tool provisions the BigQuery archive: it creates the dataset
// and the documents/transactions tables the archive writer appends to.
// Running it against an already provisioned project is a no-op.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/dvloznov/finance-rag/internal/archive"
)

var (
	projectID = flag.String("project", "", "GCP project ID (required)")
	datasetID = flag.String("dataset", "finrag", "BigQuery dataset ID")
	location  = flag.String("location", "US", "Dataset location")
)

func main() {
	flag.Parse()

	if *projectID == "" {
		log.Fatal("Error: -project flag is required. Please specify your GCP project ID.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, err := bigquery.NewClient(ctx, *projectID)
	if err != nil {
		log.Fatalf("Failed to create BigQuery client: %v", err)
	}
	defer client.Close()

	log.Printf("Connected to BigQuery project: %s, dataset: %s", *projectID, *datasetID)

	if err := ensureDataset(ctx, client); err != nil {
		log.Fatalf("Failed to ensure dataset: %v", err)
	}

	schemas, err := tableSchemas()
	if err != nil {
		log.Fatalf("Failed to infer table schemas: %v", err)
	}
	for name, schema := range schemas {
		if err := ensureTable(ctx, client, name, schema); err != nil {
			log.Fatalf("Failed to ensure table %s: %v", name, err)
		}
	}

	log.Println("Archive schema is up to date")
}

// tableSchemas derives the archive table schemas from the row structs the
// writer inserts, so the migration can never drift from the writer.
func tableSchemas() (map[string]bigquery.Schema, error) {
	documents, err := bigquery.InferSchema(archive.DocumentRow{})
	if err != nil {
		return nil, fmt.Errorf("inferring documents schema: %w", err)
	}
	transactions, err := bigquery.InferSchema(archive.TransactionRow{})
	if err != nil {
		return nil, fmt.Errorf("inferring transactions schema: %w", err)
	}
	return map[string]bigquery.Schema{
		"documents":    documents,
		"transactions": transactions,
	}, nil
}

func ensureDataset(ctx context.Context, client *bigquery.Client) error {
	ds := client.Dataset(*datasetID)
	if _, err := ds.Metadata(ctx); err == nil {
		log.Printf("Dataset %s already exists", *datasetID)
		return nil
	}

	if err := ds.Create(ctx, &bigquery.DatasetMetadata{Location: *location}); err != nil {
		return fmt.Errorf("creating dataset %s: %w", *datasetID, err)
	}
	log.Printf("Created dataset %s in %s", *datasetID, *location)
	return nil
}

func ensureTable(ctx context.Context, client *bigquery.Client, name string, schema bigquery.Schema) error {
	table := client.Dataset(*datasetID).Table(name)
	if _, err := table.Metadata(ctx); err == nil {
		log.Printf("Table %s already exists", name)
		return nil
	}

	if err := table.Create(ctx, &bigquery.TableMetadata{Schema: schema}); err != nil {
		return fmt.Errorf("creating table %s: %w", name, err)
	}
	log.Printf("Created table %s", name)
	return nil
}

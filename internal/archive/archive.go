// Package archive provides an optional durable trail of every stored
// document in BigQuery. The vector index remains the system of record for
// retrieval; the archive exists for offline analysis and auditing and is
// written best-effort after a successful upsert.
package archive

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/iterator"
)

const (
	documentsTable    = "documents"
	transactionsTable = "transactions"
)

// DocumentRow mirrors the finrag.documents table schema.
type DocumentRow struct {
	DocumentID       string             `bigquery:"document_id"`
	AccountID        string             `bigquery:"account_id"`
	TransactionCount int                `bigquery:"transaction_count"`
	InitialBalance   float64            `bigquery:"initial_balance"`
	FinalBalance     float64            `bigquery:"final_balance"`
	TotalSpent       float64            `bigquery:"total_spent"`
	TotalReceived    float64            `bigquery:"total_received"`
	TransactionTypes string             `bigquery:"transaction_types"`
	EarliestDate     bigquery.NullDate  `bigquery:"earliest_date"`
	LatestDate       bigquery.NullDate  `bigquery:"latest_date"`
	StoredTS         time.Time          `bigquery:"stored_ts"`
}

// TransactionRow mirrors the finrag.transactions table schema.
type TransactionRow struct {
	DocumentID  string     `bigquery:"document_id"`
	Date        civil.Date `bigquery:"transaction_date"`
	Description string     `bigquery:"description"`
	Type        string     `bigquery:"transaction_type"`
	Amount      float64    `bigquery:"amount"`
}

// Writer is the archive contract. A nil Writer disables archiving.
type Writer interface {
	ArchiveDocument(ctx context.Context, doc DocumentRow, txs []TransactionRow) error
	Close() error
}

// BigQueryWriter archives rows through a shared BigQuery client.
type BigQueryWriter struct {
	client  *bigquery.Client
	dataset string
}

// NewBigQueryWriter creates an archive writer for the given project and
// dataset.
func NewBigQueryWriter(ctx context.Context, projectID, dataset string) (*BigQueryWriter, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryWriter: creating client: %w", err)
	}
	return &BigQueryWriter{client: client, dataset: dataset}, nil
}

// Close closes the BigQuery client connection.
func (w *BigQueryWriter) Close() error {
	if w.client != nil {
		return w.client.Close()
	}
	return nil
}

// ArchiveDocument appends a document row and its transaction rows.
func (w *BigQueryWriter) ArchiveDocument(ctx context.Context, doc DocumentRow, txs []TransactionRow) error {
	inserter := w.client.Dataset(w.dataset).Table(documentsTable).Inserter()
	if err := inserter.Put(ctx, &doc); err != nil {
		return fmt.Errorf("ArchiveDocument: inserting document row: %w", err)
	}

	if len(txs) == 0 {
		return nil
	}
	rows := make([]*TransactionRow, len(txs))
	for i := range txs {
		rows[i] = &txs[i]
	}
	inserter = w.client.Dataset(w.dataset).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("ArchiveDocument: inserting transaction rows: %w", err)
	}
	return nil
}

// RecentDocuments returns the most recently archived document rows.
func (w *BigQueryWriter) RecentDocuments(ctx context.Context, limit int) ([]DocumentRow, error) {
	if limit <= 0 {
		limit = 20
	}

	q := w.client.Query(fmt.Sprintf(`
		SELECT *
		FROM %s.%s
		ORDER BY stored_ts DESC
		LIMIT @limit
	`, w.dataset, documentsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "limit", Value: limit},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("RecentDocuments: running query: %w", err)
	}

	var rows []DocumentRow
	for {
		var row DocumentRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("RecentDocuments: reading row: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

var _ Writer = (*BigQueryWriter)(nil)

// Package finance implements the analytics core of the financial vector
// store: narrative and metadata derivation, transaction filtering, spending
// categorization, trend and health analysis, insight generation, and
// cross-account aggregation. Everything in this package is a pure,
// synchronous computation over in-memory data; the embedding and index
// collaborators live elsewhere.
package finance

import (
	"encoding/json"
	"time"
)

// DocumentType is the discriminator stored with every document and applied
// as a metadata predicate on every index query.
const DocumentType = "financial_transactions"

// Transaction is a single dated money movement. Amount sign determines
// income (>= 0) vs. expense (< 0). Dates are fixed-width ISO strings
// (YYYY-MM-DD) so that lexical comparison is chronologically correct;
// ValidateTransaction enforces the format at ingestion.
type Transaction struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
}

// AccountRecord is one caller-supplied bundle of initial balance plus
// transactions. AccountID is generated when absent. Extra is an open
// extension point restricted to string values.
type AccountRecord struct {
	AccountID      string            `json:"account_id,omitempty"`
	InitialBalance float64           `json:"initial_balance"`
	Transactions   []Transaction     `json:"transactions"`
	Extra          map[string]string `json:"metadata,omitempty"`
}

// FinalBalance recomputes the closing balance from the record's own
// transaction set. It must never be cached across filtering: any narrowed
// view recomputes it from the narrowed set.
func (r AccountRecord) FinalBalance() float64 {
	sum := r.InitialBalance
	for _, t := range r.Transactions {
		sum += t.Amount
	}
	return sum
}

// TotalSpent is the summed magnitude of all expense transactions.
func (r AccountRecord) TotalSpent() float64 {
	var spent float64
	for _, t := range r.Transactions {
		if t.Amount < 0 {
			spent += -t.Amount
		}
	}
	return spent
}

// TotalReceived is the sum of all non-negative transaction amounts.
func (r AccountRecord) TotalReceived() float64 {
	var received float64
	for _, t := range r.Transactions {
		if t.Amount >= 0 {
			received += t.Amount
		}
	}
	return received
}

// DateRange is the lexical min/max over a transaction set's date strings.
type DateRange struct {
	Earliest string `json:"earliest"`
	Latest   string `json:"latest"`
}

// DateRangeOf returns the date range of a transaction set, or nil for an
// empty set. Min/max over an empty sequence is undefined; callers must
// report a null range rather than fail.
func DateRangeOf(txs []Transaction) *DateRange {
	if len(txs) == 0 {
		return nil
	}
	dr := &DateRange{Earliest: txs[0].Date, Latest: txs[0].Date}
	for _, t := range txs[1:] {
		if t.Date < dr.Earliest {
			dr.Earliest = t.Date
		}
		if t.Date > dr.Latest {
			dr.Latest = t.Date
		}
	}
	return dr
}

// DocumentMetadata is the structured record stored alongside the narrative
// in the index. It carries every derived figure plus a serialized copy of
// the original record for exact reconstruction at query time.
type DocumentMetadata struct {
	AccountID        string            `json:"account_id"`
	InitialBalance   float64           `json:"initial_balance"`
	FinalBalance     float64           `json:"final_balance"`
	TransactionCount int               `json:"transaction_count"`
	TotalSpent       float64           `json:"total_spent"`
	TotalReceived    float64           `json:"total_received"`
	NetChange        float64           `json:"net_change"`
	TransactionTypes string            `json:"transaction_types"`
	DateRange        *DateRange        `json:"date_range,omitempty"`
	Timestamp        string            `json:"timestamp"`
	OriginalData     string            `json:"original_data"`
	DocumentType     string            `json:"document_type"`
	Extra            map[string]string `json:"extra,omitempty"`
}

// OriginalRecord reconstructs the stored AccountRecord from the serialized
// original-data blob. A corrupt blob is a serialization error; aggregation
// skips such documents instead of aborting.
func (m DocumentMetadata) OriginalRecord() (AccountRecord, error) {
	var rec AccountRecord
	if err := json.Unmarshal([]byte(m.OriginalData), &rec); err != nil {
		return AccountRecord{}, Serializationf("decoding original data for account %q: %v", m.AccountID, err)
	}
	return rec, nil
}

// StoredDocument is one unit retrieved from the index: the id, the
// narrative the embedding was computed from, the structured metadata, and
// the relevance of the match (1 - collaborator distance; 1 for full scans).
type StoredDocument struct {
	ID        string
	Narrative string
	Metadata  DocumentMetadata
	Relevance float64
}

// Clock returns the current moment; injectable for tests.
type Clock func() time.Time

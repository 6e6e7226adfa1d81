package pipeline

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/dvloznov/finance-rag/internal/finance"
)

// Reserved metadata keys. Caller-supplied extension entries may not shadow
// them.
const (
	keyAccountID        = "account_id"
	keyInitialBalance   = "initial_balance"
	keyFinalBalance     = "final_balance"
	keyTransactionCount = "transaction_count"
	keyTotalSpent       = "total_spent"
	keyTotalReceived    = "total_received"
	keyNetChange        = "net_change"
	keyTransactionTypes = "transaction_types"
	keyDateRange        = "date_range"
	keyTimestamp        = "timestamp"
	keyOriginalData     = "original_data"
	keyDocumentType     = "document_type"
)

var reservedKeys = map[string]bool{
	keyAccountID: true, keyInitialBalance: true, keyFinalBalance: true,
	keyTransactionCount: true, keyTotalSpent: true, keyTotalReceived: true,
	keyNetChange: true, keyTransactionTypes: true, keyDateRange: true,
	keyTimestamp: true, keyOriginalData: true, keyDocumentType: true,
}

// encodeMetadata flattens a structured metadata record into the string map
// the index stores and filters on.
func encodeMetadata(m finance.DocumentMetadata) map[string]string {
	flat := map[string]string{
		keyAccountID:        m.AccountID,
		keyInitialBalance:   formatFloat(m.InitialBalance),
		keyFinalBalance:     formatFloat(m.FinalBalance),
		keyTransactionCount: strconv.Itoa(m.TransactionCount),
		keyTotalSpent:       formatFloat(m.TotalSpent),
		keyTotalReceived:    formatFloat(m.TotalReceived),
		keyNetChange:        formatFloat(m.NetChange),
		keyTransactionTypes: m.TransactionTypes,
		keyTimestamp:        m.Timestamp,
		keyOriginalData:     m.OriginalData,
		keyDocumentType:     m.DocumentType,
	}
	if m.DateRange != nil {
		// The date range is stored serialized, matching the shape downstream
		// consumers parse out of the summary block.
		if data, err := json.Marshal(m.DateRange); err == nil {
			flat[keyDateRange] = string(data)
		}
	}
	for k, v := range m.Extra {
		if !reservedKeys[k] {
			flat[k] = v
		}
	}
	return flat
}

// decodeMetadata rebuilds the structured record from the flat map. Numeric
// fields and the date range are decoded tolerantly: a malformed date range
// decodes to nil and is reported so aggregation can count the skip instead
// of aborting.
func decodeMetadata(flat map[string]string) (m finance.DocumentMetadata, dateRangeMalformed bool) {
	m.AccountID = flat[keyAccountID]
	m.InitialBalance = parseFloat(flat[keyInitialBalance])
	m.FinalBalance = parseFloat(flat[keyFinalBalance])
	m.TransactionCount, _ = strconv.Atoi(flat[keyTransactionCount])
	m.TotalSpent = parseFloat(flat[keyTotalSpent])
	m.TotalReceived = parseFloat(flat[keyTotalReceived])
	m.NetChange = parseFloat(flat[keyNetChange])
	m.TransactionTypes = flat[keyTransactionTypes]
	m.Timestamp = flat[keyTimestamp]
	m.OriginalData = flat[keyOriginalData]
	m.DocumentType = flat[keyDocumentType]

	if raw, ok := flat[keyDateRange]; ok && raw != "" {
		var dr finance.DateRange
		if err := json.Unmarshal([]byte(raw), &dr); err != nil || dr.Earliest == "" || dr.Latest == "" {
			dateRangeMalformed = true
		} else {
			m.DateRange = &dr
		}
	}

	for k, v := range flat {
		if reservedKeys[k] {
			continue
		}
		if m.Extra == nil {
			m.Extra = make(map[string]string)
		}
		m.Extra[k] = v
	}
	return m, dateRangeMalformed
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

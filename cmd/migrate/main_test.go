package main

import (
	"testing"
)

func TestTableSchemas(t *testing.T) {
	schemas, err := tableSchemas()
	if err != nil {
		t.Fatalf("tableSchemas: %v", err)
	}

	wantFields := map[string][]string{
		"documents":    {"document_id", "account_id", "transaction_count", "final_balance", "stored_ts"},
		"transactions": {"document_id", "transaction_date", "description", "transaction_type", "amount"},
	}
	for table, fields := range wantFields {
		schema, ok := schemas[table]
		if !ok {
			t.Fatalf("missing schema for table %s", table)
		}
		named := make(map[string]bool, len(schema))
		for _, f := range schema {
			named[f.Name] = true
		}
		for _, field := range fields {
			if !named[field] {
				t.Errorf("table %s missing field %s", table, field)
			}
		}
	}
}

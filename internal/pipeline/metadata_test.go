package pipeline

import (
	"testing"

	"github.com/dvloznov/finance-rag/internal/finance"
)

func TestEncodeMetadataReservedKeys(t *testing.T) {
	m := finance.DocumentMetadata{
		AccountID:    "acct-1",
		FinalBalance: 3914.50,
		DocumentType: finance.DocumentType,
		Extra: map[string]string{
			"branch":        "downtown",
			"account_id":    "spoofed",
			"final_balance": "0",
		},
	}

	flat := encodeMetadata(m)
	if flat["account_id"] != "acct-1" {
		t.Errorf("account_id = %q, extension entries must not shadow reserved keys", flat["account_id"])
	}
	if flat["final_balance"] != "3914.5" {
		t.Errorf("final_balance = %q, want 3914.5", flat["final_balance"])
	}
	if flat["branch"] != "downtown" {
		t.Errorf("branch = %q, want the extension entry carried through", flat["branch"])
	}
}

func TestDecodeMetadataMalformedDateRange(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		malformed bool
	}{
		{"valid", `{"earliest":"2024-01-15","latest":"2024-01-16"}`, false},
		{"not json", "jan to feb", true},
		{"missing endpoint", `{"earliest":"2024-01-15"}`, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			flat := map[string]string{
				"account_id": "acct-1",
				"date_range": tc.raw,
			}
			m, malformed := decodeMetadata(flat)
			if malformed != tc.malformed {
				t.Fatalf("malformed = %v, want %v", malformed, tc.malformed)
			}
			if tc.malformed && m.DateRange != nil {
				t.Errorf("date range = %+v, want nil for malformed input", m.DateRange)
			}
			if !tc.malformed && (m.DateRange == nil || m.DateRange.Earliest != "2024-01-15") {
				t.Errorf("date range = %+v, want decoded endpoints", m.DateRange)
			}
		})
	}
}

func TestDecodeMetadataTolerantNumbers(t *testing.T) {
	flat := map[string]string{
		"account_id":        "acct-1",
		"initial_balance":   "not-a-number",
		"transaction_count": "2",
		"net_change":        "2914.5",
		"custom_tag":        "x",
	}
	m, _ := decodeMetadata(flat)
	if m.InitialBalance != 0 {
		t.Errorf("initial balance = %v, want 0 for unparseable input", m.InitialBalance)
	}
	if m.TransactionCount != 2 || m.NetChange != 2914.5 {
		t.Errorf("decoded = %+v, want count 2 and net change 2914.5", m)
	}
	if m.Extra["custom_tag"] != "x" {
		t.Errorf("extra = %+v, want custom_tag preserved", m.Extra)
	}
}

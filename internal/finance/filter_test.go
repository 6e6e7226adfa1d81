package finance

import (
	"reflect"
	"testing"
)

func sampleRecord() AccountRecord {
	return AccountRecord{
		AccountID:      "acct-1",
		InitialBalance: 1000,
		Transactions: []Transaction{
			{Date: "2024-01-15", Description: "Grocery Store", Type: "debit", Amount: -85.50},
			{Date: "2024-01-16", Description: "Salary", Type: "credit", Amount: 3000.00},
		},
	}
}

func TestFinalBalanceConsistency(t *testing.T) {
	rec := sampleRecord()
	if got := rec.FinalBalance(); got != 3914.50 {
		t.Errorf("FinalBalance() = %v, want 3914.50", got)
	}
	if got := rec.TotalSpent(); got != 85.50 {
		t.Errorf("TotalSpent() = %v, want 85.50", got)
	}
	if got := rec.TotalReceived(); got != 3000.00 {
		t.Errorf("TotalReceived() = %v, want 3000.00", got)
	}
}

func TestApplyFilter_SingleDate(t *testing.T) {
	rec := sampleRecord()
	got, err := ApplyFilter(rec, Filter{Date: "2024-01-16"})
	if err != nil {
		t.Fatalf("ApplyFilter failed: %v", err)
	}
	if len(got.Record.Transactions) != 1 {
		t.Fatalf("matched %d transactions, want 1", len(got.Record.Transactions))
	}
	if got.Record.Transactions[0].Description != "Salary" {
		t.Errorf("matched %q, want Salary", got.Record.Transactions[0].Description)
	}
	// Final balance is recomputed from the narrowed set, not reused.
	if got.FinalBalance != 4000.00 {
		t.Errorf("FinalBalance = %v, want 4000.00", got.FinalBalance)
	}
}

func TestApplyFilter_DateRange(t *testing.T) {
	rec := AccountRecord{
		InitialBalance: 100,
		Transactions: []Transaction{
			{Date: "2024-01-05", Description: "a", Type: "debit", Amount: -10},
			{Date: "2024-02-10", Description: "b", Type: "debit", Amount: -20},
			{Date: "2024-03-15", Description: "c", Type: "credit", Amount: 30},
		},
	}

	tests := []struct {
		name    string
		filter  string
		want    []string
		wantErr bool
	}{
		{name: "to delimiter", filter: "2024-01-01 to 2024-02-28", want: []string{"a", "b"}},
		{name: "dotdot delimiter", filter: "2024-02-01..2024-03-31", want: []string{"b", "c"}},
		{name: "slash delimiter", filter: "2024-01-01/2024-01-31", want: []string{"a"}},
		{name: "slash with bad endpoint", filter: "2024-01-01/31", wantErr: true},
		{name: "inclusive endpoints", filter: "2024-01-05 to 2024-03-15", want: []string{"a", "b", "c"}},
		{name: "empty window", filter: "2024-04-01 to 2024-04-30", want: []string{}},
		{name: "malformed endpoint", filter: "2024-1-1 to 2024-02-28", wantErr: true},
		{name: "reversed range", filter: "2024-03-01 to 2024-01-01", wantErr: true},
		{name: "malformed single date", filter: "Jan 5 2024", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyFilter(rec, Filter{Date: tt.filter})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !IsKind(err, KindValidation) {
					t.Errorf("error kind = %q, want validation", KindOf(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyFilter failed: %v", err)
			}
			var descs []string
			for _, tx := range got.Record.Transactions {
				descs = append(descs, tx.Description)
			}
			if len(descs) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(descs, tt.want) {
				t.Errorf("matched %v, want %v", descs, tt.want)
			}
		})
	}
}

func TestApplyFilter_AmountMagnitude(t *testing.T) {
	rec := AccountRecord{
		Transactions: []Transaction{
			{Date: "2024-01-01", Description: "expense fifty", Type: "debit", Amount: -50.00},
			{Date: "2024-01-02", Description: "income fiftyfive", Type: "credit", Amount: 55.00},
			{Date: "2024-01-03", Description: "small", Type: "debit", Amount: -10.00},
		},
	}
	min, max := 40.0, 60.0
	got, err := ApplyFilter(rec, Filter{Amount: &AmountRange{Min: &min, Max: &max}})
	if err != nil {
		t.Fatalf("ApplyFilter failed: %v", err)
	}
	if len(got.Record.Transactions) != 2 {
		t.Fatalf("matched %d transactions, want 2", len(got.Record.Transactions))
	}
	// Magnitude match: the $50 expense and $55 income both pass.
	if got.Record.Transactions[0].Amount != -50.00 || got.Record.Transactions[1].Amount != 55.00 {
		t.Errorf("matched wrong transactions: %+v", got.Record.Transactions)
	}
}

func TestApplyFilter_OpenBounds(t *testing.T) {
	rec := sampleRecord()
	min := 100.0
	got, err := ApplyFilter(rec, Filter{Amount: &AmountRange{Min: &min}})
	if err != nil {
		t.Fatalf("ApplyFilter failed: %v", err)
	}
	if len(got.Record.Transactions) != 1 || got.Record.Transactions[0].Description != "Salary" {
		t.Errorf("open max bound matched %+v, want only Salary", got.Record.Transactions)
	}
}

func TestApplyFilter_AndSemantics(t *testing.T) {
	rec := sampleRecord()
	min := 40.0
	got, err := ApplyFilter(rec, Filter{Date: "2024-01-15", Amount: &AmountRange{Min: &min}})
	if err != nil {
		t.Fatalf("ApplyFilter failed: %v", err)
	}
	if len(got.Record.Transactions) != 1 || got.Record.Transactions[0].Description != "Grocery Store" {
		t.Errorf("combined filter matched %+v, want only Grocery Store", got.Record.Transactions)
	}
}

func TestApplyFilter_DoesNotMutateInput(t *testing.T) {
	rec := sampleRecord()
	before := make([]Transaction, len(rec.Transactions))
	copy(before, rec.Transactions)

	if _, err := ApplyFilter(rec, Filter{Date: "2024-01-16"}); err != nil {
		t.Fatalf("ApplyFilter failed: %v", err)
	}
	if !reflect.DeepEqual(rec.Transactions, before) {
		t.Error("ApplyFilter mutated the input record")
	}
}

func TestApplyFilter_Idempotent(t *testing.T) {
	rec := AccountRecord{
		InitialBalance: 500,
		Transactions: []Transaction{
			{Date: "2024-01-01", Description: "a", Type: "debit", Amount: -45},
			{Date: "2024-01-02", Description: "b", Type: "credit", Amount: 55},
			{Date: "2024-02-01", Description: "c", Type: "debit", Amount: -500},
		},
	}
	min, max := 40.0, 60.0
	f := Filter{Date: "2024-01-01 to 2024-01-31", Amount: &AmountRange{Min: &min, Max: &max}}

	once, err := ApplyFilter(rec, f)
	if err != nil {
		t.Fatalf("first ApplyFilter failed: %v", err)
	}
	twice, err := ApplyFilter(once.Record, f)
	if err != nil {
		t.Fatalf("second ApplyFilter failed: %v", err)
	}
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("filtering is not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestFilterActive(t *testing.T) {
	if (Filter{}).Active() {
		t.Error("empty filter reported active")
	}
	if !(Filter{Date: "2024-01-01"}).Active() {
		t.Error("date filter reported inactive")
	}
	if !(Filter{Amount: &AmountRange{}}).Active() {
		t.Error("amount filter reported inactive")
	}
}

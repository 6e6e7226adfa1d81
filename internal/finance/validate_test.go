package finance

import "testing"

func TestValidDate(t *testing.T) {
	tests := []struct {
		date string
		want bool
	}{
		{"2024-01-15", true},
		{"2024-12-31", true},
		{"2024-1-15", false},
		{"2024-01-32", false},
		{"2024-13-01", false},
		{"24-01-15", false},
		{"2024/01/15", false},
		{"", false},
		{"2024-01-15T00:00:00", false},
	}
	for _, tt := range tests {
		if got := ValidDate(tt.date); got != tt.want {
			t.Errorf("ValidDate(%q) = %v, want %v", tt.date, got, tt.want)
		}
	}
}

func TestValidateRecord(t *testing.T) {
	tests := []struct {
		name    string
		rec     AccountRecord
		wantErr bool
	}{
		{
			name: "valid",
			rec: AccountRecord{Transactions: []Transaction{
				{Date: "2024-01-15", Description: "ok", Type: "debit", Amount: -1},
			}},
		},
		{
			name: "empty transactions allowed",
			rec:  AccountRecord{InitialBalance: 10},
		},
		{
			name: "missing date",
			rec: AccountRecord{Transactions: []Transaction{
				{Description: "no date", Type: "debit", Amount: -1},
			}},
			wantErr: true,
		},
		{
			name: "non ISO date",
			rec: AccountRecord{Transactions: []Transaction{
				{Date: "15/01/2024", Description: "bad", Type: "debit", Amount: -1},
			}},
			wantErr: true,
		},
		{
			name: "empty description allowed",
			rec: AccountRecord{Transactions: []Transaction{
				{Date: "2024-01-15", Type: "debit", Amount: -1},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecord(tt.rec)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRecord() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !IsKind(err, KindValidation) {
				t.Errorf("error kind = %q, want validation", KindOf(err))
			}
		})
	}
}

func TestErrorKinds(t *testing.T) {
	if KindOf(Validationf("x")) != KindValidation {
		t.Error("Validationf kind mismatch")
	}
	if KindOf(NotFoundf("x")) != KindNotFound {
		t.Error("NotFoundf kind mismatch")
	}
	if KindOf(Collaboratorf(nil, "x")) != KindCollaborator {
		t.Error("Collaboratorf kind mismatch")
	}
	if KindOf(Serializationf("x")) != KindSerialization {
		t.Error("Serializationf kind mismatch")
	}
	if KindOf(nil) != "" {
		t.Error("nil error should have empty kind")
	}
}

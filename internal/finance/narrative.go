package finance

import (
	"fmt"
	"strings"
	"time"
)

// narrativeSeparator joins the summary lines and per-transaction lines
// into the single text blob the embedding collaborator vectorizes.
const narrativeSeparator = " | "

// BuildNarrative turns an account record into the descriptive text used as
// embedding input. Similarity search matches on this text only, so every
// derivable numeric fact is spelled out here, not just kept in metadata:
// overall totals, per-type summaries, per-month summaries, and one line per
// individual transaction.
func BuildNarrative(rec AccountRecord) string {
	parts := []string{
		fmt.Sprintf("Financial Account Summary: Starting balance of $%.2f", rec.InitialBalance),
		fmt.Sprintf("Total transactions: %d", len(rec.Transactions)),
		fmt.Sprintf("Total money spent: $%.2f", rec.TotalSpent()),
		fmt.Sprintf("Total money received: $%.2f", rec.TotalReceived()),
		fmt.Sprintf("Final calculated balance: $%.2f", rec.FinalBalance()),
	}

	// Group by type and by truncated month, preserving first-seen order so
	// the narrative is deterministic for a given transaction ordering.
	typeOrder := make([]string, 0, 4)
	byType := make(map[string][]Transaction)
	monthOrder := make([]string, 0, 4)
	byMonth := make(map[string]*monthGroup)

	for _, t := range rec.Transactions {
		if _, ok := byType[t.Type]; !ok {
			typeOrder = append(typeOrder, t.Type)
		}
		byType[t.Type] = append(byType[t.Type], t)

		month := MonthKey(t.Date)
		g, ok := byMonth[month]
		if !ok {
			g = &monthGroup{}
			byMonth[month] = g
			monthOrder = append(monthOrder, month)
		}
		g.count++
		g.total += t.Amount
	}

	for _, typ := range typeOrder {
		group := byType[typ]
		avg := 0.0
		for _, t := range group {
			avg += t.Amount
		}
		avg /= float64(len(group))
		parts = append(parts, fmt.Sprintf("%s transactions: %d occurrences, average amount $%.2f",
			titleCase(typ), len(group), avg))
	}

	for _, month := range monthOrder {
		g := byMonth[month]
		parts = append(parts, fmt.Sprintf("Month %s: %d transactions totaling $%.2f", month, g.count, g.total))
	}

	parts = append(parts, "Individual transactions:")
	for i, t := range rec.Transactions {
		kind := "income"
		if t.Amount < 0 {
			kind = "expense"
		}
		parts = append(parts, fmt.Sprintf("Transaction %d: %s - %s (%s) $%.2f %s",
			i+1, t.Date, t.Description, t.Type, abs(t.Amount), kind))
	}

	return strings.Join(parts, narrativeSeparator)
}

type monthGroup struct {
	count int
	total float64
}

// ExtractMetadata derives the structured metadata record for a stored
// document. The serialized original record and the document type are filled
// in by the caller once the document id is settled.
func ExtractMetadata(rec AccountRecord, now time.Time) DocumentMetadata {
	spent := rec.TotalSpent()
	received := rec.TotalReceived()

	seen := make(map[string]bool)
	types := make([]string, 0, 4)
	for _, t := range rec.Transactions {
		if !seen[t.Type] {
			seen[t.Type] = true
			types = append(types, t.Type)
		}
	}

	return DocumentMetadata{
		AccountID:        rec.AccountID,
		InitialBalance:   rec.InitialBalance,
		FinalBalance:     rec.FinalBalance(),
		TransactionCount: len(rec.Transactions),
		TotalSpent:       spent,
		TotalReceived:    received,
		NetChange:        received - spent,
		TransactionTypes: strings.Join(types, ", "),
		DateRange:        DateRangeOf(rec.Transactions),
		Timestamp:        now.Format(time.RFC3339),
		DocumentType:     DocumentType,
		Extra:            rec.Extra,
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

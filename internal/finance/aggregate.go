package finance

// AccountSummary is the per-account fold produced by aggregation.
type AccountSummary struct {
	TransactionCount int        `json:"transaction_count"`
	TotalBalance     float64    `json:"total_balance"`
	DateRange        *DateRange `json:"date_range,omitempty"`
}

// RecordsSummary is the cross-account aggregation over a document set:
// unique accounts, combined balances, and the global date range (min
// earliest and max latest tracked independently across accounts).
type RecordsSummary struct {
	UniqueAccounts    int                       `json:"unique_accounts"`
	TotalTransactions int                       `json:"total_transactions"`
	TotalBalance      float64                   `json:"total_balance_across_accounts"`
	OverallDateRange  *DateRange                `json:"overall_date_range,omitempty"`
	AccountSummary    map[string]AccountSummary `json:"account_summary"`
	SkippedDateRanges int                       `json:"skipped_date_ranges,omitempty"`
}

// AggregateRecords folds derived metadata across the full document set.
// Documents with missing or malformed date-range metadata contribute their
// counts and balances but not their dates; they are counted as skipped
// rather than aborting the whole aggregation.
func AggregateRecords(docs []StoredDocument) RecordsSummary {
	summary := RecordsSummary{AccountSummary: make(map[string]AccountSummary)}

	var overall *DateRange
	for _, doc := range docs {
		m := doc.Metadata

		accountID := m.AccountID
		if accountID == "" {
			accountID = doc.ID
		}

		acct := summary.AccountSummary[accountID]
		acct.TransactionCount += m.TransactionCount
		acct.TotalBalance += m.FinalBalance

		summary.TotalTransactions += m.TransactionCount
		summary.TotalBalance += m.FinalBalance

		if m.DateRange == nil {
			if m.TransactionCount > 0 {
				summary.SkippedDateRanges++
			}
			summary.AccountSummary[accountID] = acct
			continue
		}

		if acct.DateRange == nil {
			dr := *m.DateRange
			acct.DateRange = &dr
		} else {
			widen(acct.DateRange, m.DateRange)
		}
		if overall == nil {
			dr := *m.DateRange
			overall = &dr
		} else {
			widen(overall, m.DateRange)
		}
		summary.AccountSummary[accountID] = acct
	}

	summary.UniqueAccounts = len(summary.AccountSummary)
	summary.OverallDateRange = overall
	return summary
}

func widen(dst, src *DateRange) {
	if src.Earliest != "" && src.Earliest < dst.Earliest {
		dst.Earliest = src.Earliest
	}
	if src.Latest > dst.Latest {
		dst.Latest = src.Latest
	}
}

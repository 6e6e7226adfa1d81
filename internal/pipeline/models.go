package pipeline

import "github.com/dvloznov/finance-rag/internal/finance"

// Default values for the query operations.
const (
	DefaultSearchResults = 5

	AnalysisComprehensive = "comprehensive"
	AnalysisSpending      = "spending"
	AnalysisIncome        = "income"
	AnalysisTrends        = "trends"
)

// StoreResult is the response to a store operation.
type StoreResult struct {
	DocumentID string       `json:"document_id"`
	Message    string       `json:"message"`
	Summary    StoreSummary `json:"summary"`
}

// StoreSummary carries the derived headline figures of the stored document.
type StoreSummary struct {
	TransactionCount int                `json:"transaction_count"`
	FinalBalance     float64            `json:"final_balance"`
	DateRange        *finance.DateRange `json:"date_range"`
}

// SearchQuery is a natural-language search with optional filters applied to
// each candidate record.
type SearchQuery struct {
	Query        string               `json:"query"`
	NResults     int                  `json:"n_results,omitempty"`
	DateFilter   string               `json:"date_filter,omitempty"`
	AmountFilter *finance.AmountRange `json:"amount_filter,omitempty"`
}

// SearchResult is one matching account with its filtered view.
type SearchResult struct {
	DocumentID     string                `json:"document_id"`
	RelevanceScore float64               `json:"relevance_score"`
	FinancialData  finance.AccountRecord `json:"financial_data"`
	Summary        ResultSummary         `json:"summary"`
	Narrative      string                `json:"narrative"`
}

// ResultSummary holds the per-result derived figures. When a filter was
// applied, final balance and date range are recomputed from the filtered
// transaction subset, never reused from the stored document.
type ResultSummary struct {
	InitialBalance   float64            `json:"initial_balance"`
	FinalBalance     float64            `json:"final_balance"`
	TransactionCount int                `json:"transaction_count"`
	DateRange        *finance.DateRange `json:"date_range"`
}

// SearchResponse is the full search payload.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Summary SearchSummary  `json:"summary"`
}

// SearchSummary aggregates across the returned results.
type SearchSummary struct {
	Query              string  `json:"query"`
	TotalAccountsFound int     `json:"total_accounts_found"`
	CombinedBalance    float64 `json:"combined_balance"`
	TotalTransactions  int     `json:"total_transactions"`
	SkippedDocuments   int     `json:"skipped_documents,omitempty"`
}

// SummaryQuery selects the scope of a financial summary.
type SummaryQuery struct {
	AccountID     string `json:"account_id,omitempty"`
	AnalysisType  string `json:"analysis_type,omitempty"`
	DateRangeDays int    `json:"date_range_days,omitempty"`
}

// AnalysisPeriod describes the window a summary covers.
type AnalysisPeriod struct {
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	DaysAnalyzed int    `json:"days_analyzed"`
}

// IncomeAnalysis summarizes the income side of the ledger.
type IncomeAnalysis struct {
	TotalIncome           float64 `json:"total_income"`
	IncomeTransactions    int     `json:"income_transactions"`
	AveragePerTransaction float64 `json:"average_income_per_transaction"`
}

// Trends carries the balance-trend classification and the per-month
// breakdown behind it.
type Trends struct {
	BalanceTrend   string                  `json:"balance_trend"`
	MonthlySummary []finance.MonthlyBucket `json:"monthly_summary"`
}

// SummaryResponse is the full financial summary payload.
type SummaryResponse struct {
	SummaryType      string                   `json:"summary_type"`
	AccountCount     int                      `json:"account_count"`
	AnalysisPeriod   AnalysisPeriod           `json:"analysis_period"`
	FinancialHealth  finance.FinancialHealth  `json:"financial_health"`
	SpendingAnalysis finance.SpendingAnalysis `json:"spending_analysis"`
	IncomeAnalysis   IncomeAnalysis           `json:"income_analysis"`
	Trends           Trends                   `json:"trends"`
	Insights         []string                 `json:"insights"`
	Recommendations  []string                 `json:"recommendations"`
	SkippedDocuments int                      `json:"skipped_documents,omitempty"`
}

// RecordsQuery controls the all-records listing.
type RecordsQuery struct {
	IncludeDocuments    bool
	IncludeMetadata     bool
	IncludeOriginalData bool
	Limit               int
	AccountIDFilter     string
}

// RecordEntry is one listed document shaped by the query's include flags.
type RecordEntry struct {
	DocumentID     string                    `json:"document_id"`
	RelevanceScore float64                   `json:"relevance_score"`
	Narrative      string                    `json:"document,omitempty"`
	Metadata       *finance.DocumentMetadata `json:"metadata,omitempty"`
	OriginalData   *finance.AccountRecord    `json:"original_data,omitempty"`
}

// QueryParameters echoes the parameters actually applied, for caller
// transparency.
type QueryParameters struct {
	IncludeDocuments    bool   `json:"include_documents"`
	IncludeMetadata     bool   `json:"include_metadata"`
	IncludeOriginalData bool   `json:"include_original_data"`
	LimitApplied        *int   `json:"limit_applied"`
	AccountFilter       string `json:"account_filter,omitempty"`
}

// RecordsSummaryBlock is the aggregation section of the listing.
type RecordsSummaryBlock struct {
	finance.RecordsSummary
	QueryParameters  QueryParameters `json:"query_parameters"`
	SkippedDocuments int             `json:"skipped_documents,omitempty"`
}

// RecordsResponse is the full all-records payload.
type RecordsResponse struct {
	TotalRecords    int                 `json:"total_records"`
	RecordsReturned int                 `json:"records_returned"`
	Records         []RecordEntry       `json:"records"`
	Summary         RecordsSummaryBlock `json:"summary"`
}

// HealthStatus is the health probe payload.
type HealthStatus struct {
	Status         string `json:"status"`
	TotalDocuments int    `json:"total_documents"`
	EmbeddingModel string `json:"embedding_model"`
	DatabaseType   string `json:"database_type"`
	OptimizedFor   string `json:"optimized_for"`
}

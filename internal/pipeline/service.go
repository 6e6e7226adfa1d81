// Package pipeline orchestrates the store, search, summary and listing
// operations over the embedding and index collaborators. All analytics are
// delegated to the finance package; this layer owns collaborator calls,
// metadata encoding and response assembly. The service holds no
// request-scoped state, so concurrent requests share nothing mutable.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-rag/internal/archive"
	"github.com/dvloznov/finance-rag/internal/embedding"
	"github.com/dvloznov/finance-rag/internal/finance"
	"github.com/dvloznov/finance-rag/internal/vectorstore"
)

// Service wires the analytics core to its collaborators. Construct with
// New; the archive writer may be nil to disable archiving.
type Service struct {
	embedder       embedding.Embedder
	index          vectorstore.Index
	archiver       archive.Writer
	rules          []finance.CategoryRule
	defaultResults int
	now            finance.Clock
	log            zerolog.Logger
}

// New creates a service with the default category rules.
func New(embedder embedding.Embedder, index vectorstore.Index, archiver archive.Writer, log zerolog.Logger) *Service {
	return &Service{
		embedder:       embedder,
		index:          index,
		archiver:       archiver,
		rules:          finance.DefaultCategoryRules,
		defaultResults: DefaultSearchResults,
		now:            time.Now,
		log:            log,
	}
}

// WithDefaultResults overrides the result count used when a search does
// not specify one. Non-positive values are ignored.
func (s *Service) WithDefaultResults(n int) *Service {
	if n > 0 {
		s.defaultResults = n
	}
	return s
}

func baseFilter() map[string]string {
	return map[string]string{"document_type": finance.DocumentType}
}

// Store validates, embeds and upserts one account record. Replace-by-id:
// storing again under the same account id replaces the prior document
// entirely. Nothing is written on failure.
func (s *Service) Store(ctx context.Context, rec finance.AccountRecord) (StoreResult, error) {
	if err := finance.ValidateRecord(rec); err != nil {
		return StoreResult{}, err
	}
	if rec.AccountID == "" {
		rec.AccountID = uuid.NewString()
	}

	narrative := finance.BuildNarrative(rec)
	metadata := finance.ExtractMetadata(rec, s.now())

	original, err := json.Marshal(rec)
	if err != nil {
		return StoreResult{}, fmt.Errorf("Store: marshaling original record: %w", err)
	}
	metadata.OriginalData = string(original)

	vector, err := s.embedder.Embed(ctx, narrative)
	if err != nil {
		return StoreResult{}, finance.Collaboratorf(err, "embedding narrative for account %s", rec.AccountID)
	}

	entry := vectorstore.Entry{
		ID:        rec.AccountID,
		Embedding: vector,
		Narrative: narrative,
		Metadata:  encodeMetadata(metadata),
	}
	if err := s.index.Upsert(ctx, entry); err != nil {
		return StoreResult{}, finance.Collaboratorf(err, "upserting document %s", rec.AccountID)
	}

	s.archiveStored(ctx, rec, metadata)

	s.log.Info().
		Str("document_id", rec.AccountID).
		Int("transaction_count", metadata.TransactionCount).
		Float64("final_balance", metadata.FinalBalance).
		Msg("Financial data stored")

	return StoreResult{
		DocumentID: rec.AccountID,
		Message:    "Financial data successfully stored for RAG retrieval",
		Summary: StoreSummary{
			TransactionCount: metadata.TransactionCount,
			FinalBalance:     metadata.FinalBalance,
			DateRange:        metadata.DateRange,
		},
	}, nil
}

// archiveStored appends the document to the archive. Best-effort: archive
// failures are logged, never surfaced, and never unwind the store.
func (s *Service) archiveStored(ctx context.Context, rec finance.AccountRecord, m finance.DocumentMetadata) {
	if s.archiver == nil {
		return
	}

	doc := archive.DocumentRow{
		DocumentID:       rec.AccountID,
		AccountID:        rec.AccountID,
		TransactionCount: m.TransactionCount,
		InitialBalance:   m.InitialBalance,
		FinalBalance:     m.FinalBalance,
		TotalSpent:       m.TotalSpent,
		TotalReceived:    m.TotalReceived,
		TransactionTypes: m.TransactionTypes,
		StoredTS:         s.now(),
	}
	if m.DateRange != nil {
		if d, err := civil.ParseDate(m.DateRange.Earliest); err == nil {
			doc.EarliestDate = bigquery.NullDate{Date: d, Valid: true}
		}
		if d, err := civil.ParseDate(m.DateRange.Latest); err == nil {
			doc.LatestDate = bigquery.NullDate{Date: d, Valid: true}
		}
	}

	txs := make([]archive.TransactionRow, 0, len(rec.Transactions))
	for _, t := range rec.Transactions {
		d, err := civil.ParseDate(t.Date)
		if err != nil {
			continue
		}
		txs = append(txs, archive.TransactionRow{
			DocumentID:  rec.AccountID,
			Date:        d,
			Description: t.Description,
			Type:        t.Type,
			Amount:      t.Amount,
		})
	}

	if err := s.archiver.ArchiveDocument(ctx, doc, txs); err != nil {
		s.log.Warn().Err(err).Str("document_id", rec.AccountID).Msg("Archive write failed")
	}
}

// Search embeds the query, retrieves the nearest candidate documents and
// narrows each one through the optional date/amount filters. Records whose
// filtered view is empty are excluded from the result set.
func (s *Service) Search(ctx context.Context, q SearchQuery) (SearchResponse, error) {
	if q.Query == "" {
		return SearchResponse{}, finance.Validationf("search query must not be empty")
	}
	n := q.NResults
	if n <= 0 {
		n = s.defaultResults
	}

	filter := finance.Filter{Date: q.DateFilter, Amount: q.AmountFilter}
	// Fail on a malformed filter before spending an embedding call.
	if _, err := finance.ApplyFilter(finance.AccountRecord{}, filter); err != nil {
		return SearchResponse{}, err
	}

	vector, err := s.embedder.Embed(ctx, q.Query)
	if err != nil {
		return SearchResponse{}, finance.Collaboratorf(err, "embedding query")
	}

	hits, err := s.index.Query(ctx, vector, n, baseFilter())
	if err != nil {
		return SearchResponse{}, finance.Collaboratorf(err, "querying index")
	}
	if len(hits) == 0 {
		return SearchResponse{}, finance.NotFoundf("no financial data found matching query %q", q.Query)
	}

	resp := SearchResponse{
		Results: make([]SearchResult, 0, len(hits)),
		Summary: SearchSummary{Query: q.Query},
	}
	for _, hit := range hits {
		meta, _ := decodeMetadata(hit.Metadata)
		rec, err := meta.OriginalRecord()
		if err != nil {
			s.log.Warn().Err(err).Str("document_id", hit.ID).Msg("Skipping document with corrupt original data")
			resp.Summary.SkippedDocuments++
			continue
		}

		filtered, err := finance.ApplyFilter(rec, filter)
		if err != nil {
			return SearchResponse{}, err
		}
		if filter.Active() && len(filtered.Record.Transactions) == 0 {
			continue
		}

		resp.Results = append(resp.Results, SearchResult{
			DocumentID:     hit.ID,
			RelevanceScore: hit.Relevance,
			FinancialData:  filtered.Record,
			Summary: ResultSummary{
				InitialBalance:   filtered.Record.InitialBalance,
				FinalBalance:     filtered.FinalBalance,
				TransactionCount: len(filtered.Record.Transactions),
				DateRange:        finance.DateRangeOf(filtered.Record.Transactions),
			},
			Narrative: hit.Narrative,
		})
		resp.Summary.CombinedBalance += filtered.FinalBalance
		resp.Summary.TotalTransactions += len(filtered.Record.Transactions)
	}
	resp.Summary.TotalAccountsFound = len(resp.Results)
	return resp, nil
}

// Summary runs the full analytics fan-out over every stored document (or
// one account's documents): spending classification, trend and health
// analysis, insights and recommendations.
func (s *Service) Summary(ctx context.Context, q SummaryQuery) (SummaryResponse, error) {
	analysisType := q.AnalysisType
	if analysisType == "" {
		analysisType = AnalysisComprehensive
	}
	switch analysisType {
	case AnalysisComprehensive, AnalysisSpending, AnalysisIncome, AnalysisTrends:
	default:
		return SummaryResponse{}, finance.Validationf("unknown analysis_type %q", q.AnalysisType)
	}

	where := baseFilter()
	if q.AccountID != "" {
		where["account_id"] = q.AccountID
	}
	entries, err := s.index.GetAll(ctx, where)
	if err != nil {
		return SummaryResponse{}, finance.Collaboratorf(err, "listing documents")
	}
	if len(entries) == 0 {
		return SummaryResponse{}, finance.NotFoundf("no financial data found")
	}

	now := s.now()
	var (
		metas   []finance.DocumentMetadata
		txs     []finance.Transaction
		skipped int
	)
	for _, entry := range entries {
		meta, _ := decodeMetadata(entry.Metadata)
		rec, err := meta.OriginalRecord()
		if err != nil {
			s.log.Warn().Err(err).Str("document_id", entry.ID).Msg("Skipping document with corrupt original data")
			skipped++
			continue
		}
		metas = append(metas, meta)
		txs = append(txs, rec.Transactions...)
	}
	if len(metas) == 0 {
		return SummaryResponse{}, finance.NotFoundf("no readable financial data found")
	}

	// An explicit look-back window narrows the transaction set before any
	// statistic is computed.
	if q.DateRangeDays > 0 {
		cutoff := now.AddDate(0, 0, -q.DateRangeDays).Format("2006-01-02")
		kept := txs[:0]
		for _, t := range txs {
			if t.Date >= cutoff {
				kept = append(kept, t)
			}
		}
		txs = kept
	}

	spending := finance.AnalyzeSpending(txs, s.rules)
	buckets := finance.BucketByMonth(txs)
	trend := finance.ClassifyTrend(buckets)
	days := finance.AnalysisDays(txs, q.DateRangeDays, now)
	health := finance.AssessHealth(metas, spending.TotalExpenses, spending.TotalIncome)

	income := IncomeAnalysis{
		TotalIncome:        spending.TotalIncome,
		IncomeTransactions: spending.IncomeCount,
	}
	if spending.IncomeCount > 0 {
		income.AveragePerTransaction = spending.TotalIncome / float64(spending.IncomeCount)
	}

	return SummaryResponse{
		SummaryType:      analysisType,
		AccountCount:     len(metas),
		AnalysisPeriod:   analysisPeriod(txs, q.DateRangeDays, days, now),
		FinancialHealth:  health,
		SpendingAnalysis: spending,
		IncomeAnalysis:   income,
		Trends:           Trends{BalanceTrend: trend, MonthlySummary: buckets},
		Insights:         finance.GenerateInsights(spending, trend, days),
		Recommendations:  finance.GenerateRecommendations(spending),
		SkippedDocuments: skipped,
	}, nil
}

func analysisPeriod(txs []finance.Transaction, explicitDays, days int, now time.Time) AnalysisPeriod {
	period := AnalysisPeriod{DaysAnalyzed: days, EndDate: now.Format("2006-01-02")}
	if explicitDays > 0 {
		period.StartDate = now.AddDate(0, 0, -explicitDays).Format("2006-01-02")
		return period
	}
	if dr := finance.DateRangeOf(txs); dr != nil {
		period.StartDate = dr.Earliest
		period.EndDate = dr.Latest
		return period
	}
	period.StartDate = period.EndDate
	return period
}

// AllRecords lists stored documents with the requested detail level and the
// cross-account aggregation.
func (s *Service) AllRecords(ctx context.Context, q RecordsQuery) (RecordsResponse, error) {
	where := baseFilter()
	if q.AccountIDFilter != "" {
		where["account_id"] = q.AccountIDFilter
	}
	entries, err := s.index.GetAll(ctx, where)
	if err != nil {
		return RecordsResponse{}, finance.Collaboratorf(err, "listing documents")
	}

	docs := make([]finance.StoredDocument, 0, len(entries))
	var skipped int
	for _, entry := range entries {
		meta, malformed := decodeMetadata(entry.Metadata)
		if malformed {
			s.log.Warn().Str("document_id", entry.ID).Msg("Document has malformed date-range metadata")
		}
		docs = append(docs, finance.StoredDocument{
			ID:        entry.ID,
			Narrative: entry.Narrative,
			Metadata:  meta,
			Relevance: 1,
		})
	}

	listed := docs
	if q.Limit > 0 && q.Limit < len(listed) {
		listed = listed[:q.Limit]
	}

	records := make([]RecordEntry, 0, len(listed))
	for i := range listed {
		doc := &listed[i]
		rec := RecordEntry{DocumentID: doc.ID, RelevanceScore: doc.Relevance}
		if q.IncludeDocuments {
			rec.Narrative = doc.Narrative
		}
		if q.IncludeMetadata {
			meta := doc.Metadata
			meta.OriginalData = "" // carried separately, on request only
			rec.Metadata = &meta
		}
		if q.IncludeOriginalData {
			original, err := doc.Metadata.OriginalRecord()
			if err != nil {
				s.log.Warn().Err(err).Str("document_id", doc.ID).Msg("Skipping corrupt original data in listing")
				skipped++
			} else {
				rec.OriginalData = &original
			}
		}
		records = append(records, rec)
	}

	var limitApplied *int
	if q.Limit > 0 {
		limit := q.Limit
		limitApplied = &limit
	}

	return RecordsResponse{
		TotalRecords:    s.index.Count(),
		RecordsReturned: len(records),
		Records:         records,
		Summary: RecordsSummaryBlock{
			RecordsSummary: finance.AggregateRecords(docs),
			QueryParameters: QueryParameters{
				IncludeDocuments:    q.IncludeDocuments,
				IncludeMetadata:     q.IncludeMetadata,
				IncludeOriginalData: q.IncludeOriginalData,
				LimitApplied:        limitApplied,
				AccountFilter:       q.AccountIDFilter,
			},
			SkippedDocuments: skipped,
		},
	}, nil
}

// Health reports the index document count and collaborator configuration.
func (s *Service) Health(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:         "healthy",
		TotalDocuments: s.index.Count(),
		EmbeddingModel: s.embedder.Model(),
		DatabaseType:   "chromem-go",
		OptimizedFor:   "financial_transaction_rag",
	}
}

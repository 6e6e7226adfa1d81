package finance

import (
	"sort"
	"time"
)

// MonthKey truncates a YYYY-MM-DD date string to its YYYY-MM prefix.
// Lexical truncation, not calendar parsing: bucketing silently breaks for
// any other date format, which is why ValidateTransaction enforces the
// format at ingestion.
func MonthKey(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}

// Trend classifications.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// trendHysteresis is the ±10% deadband around parity that keeps the trend
// classification from flapping on noise.
const trendHysteresis = 0.10

// MonthlyBucket aggregates one month's income, expense and net totals.
type MonthlyBucket struct {
	Month    string  `json:"month"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
}

// BucketByMonth groups transactions into per-month buckets, ordered
// chronologically by key. String sort is chronologically correct for
// zero-padded YYYY-MM keys.
func BucketByMonth(txs []Transaction) []MonthlyBucket {
	byMonth := make(map[string]*MonthlyBucket)
	for _, t := range txs {
		key := MonthKey(t.Date)
		b, ok := byMonth[key]
		if !ok {
			b = &MonthlyBucket{Month: key}
			byMonth[key] = b
		}
		if t.Amount >= 0 {
			b.Income += t.Amount
		} else {
			b.Expenses += -t.Amount
		}
		b.Net += t.Amount
	}

	buckets := make([]MonthlyBucket, 0, len(byMonth))
	for _, b := range byMonth {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Month < buckets[j].Month })
	return buckets
}

// ClassifyTrend compares the mean net of the last two months against the
// mean net of all earlier months (with exactly two months, against the
// single earliest month). Fewer than two months is always stable. The
// recent mean must clear the earlier mean by more than the hysteresis band
// in either direction to register a trend.
func ClassifyTrend(buckets []MonthlyBucket) string {
	if len(buckets) < 2 {
		return TrendStable
	}

	split := len(buckets) - 2
	if split == 0 {
		split = 1
	}

	var earlier float64
	for _, b := range buckets[:split] {
		earlier += b.Net
	}
	earlier /= float64(split)

	var recent float64
	for _, b := range buckets[split:] {
		recent += b.Net
	}
	recent /= float64(len(buckets) - split)

	switch {
	case recent > earlier*(1+trendHysteresis):
		return TrendIncreasing
	case recent < earlier*(1-trendHysteresis):
		return TrendDecreasing
	default:
		return TrendStable
	}
}

// AnalysisDays resolves the analysis window: the explicit caller-supplied
// value if positive, else the days between the earliest transaction date
// and now, else 30 as the final fallback.
func AnalysisDays(txs []Transaction, explicit int, now time.Time) int {
	if explicit > 0 {
		return explicit
	}
	dr := DateRangeOf(txs)
	if dr != nil {
		if earliest, err := time.Parse(dateLayout, dr.Earliest); err == nil {
			days := int(now.Sub(earliest).Hours() / 24)
			if days > 0 {
				return days
			}
		}
	}
	return 30
}

// Financial stability classifications.
const (
	StabilityGood           = "good"
	StabilityNeedsAttention = "needs_attention"
)

// FinancialHealth is the cross-account health summary.
type FinancialHealth struct {
	TotalBalance         float64 `json:"total_balance"`
	NetWorthChange       float64 `json:"net_worth_change"`
	ExpenseToIncomeRatio float64 `json:"expense_to_income_ratio"`
	FinancialStability   string  `json:"financial_stability"`
}

// AssessHealth folds per-account balances into health ratios. The ratio
// denominator is floored at 1 to avoid division by zero; at near-zero
// income this makes the figure an approximation, not a statistically
// meaningful ratio, and it is preserved for compatibility with downstream
// consumers.
func AssessHealth(accounts []DocumentMetadata, totalExpenses, totalIncome float64) FinancialHealth {
	var totalInitial, totalFinal float64
	for _, m := range accounts {
		totalInitial += m.InitialBalance
		totalFinal += m.FinalBalance
	}

	denom := totalIncome
	if denom < 1 {
		denom = 1
	}

	stability := StabilityNeedsAttention
	if totalFinal > totalInitial {
		stability = StabilityGood
	}

	return FinancialHealth{
		TotalBalance:         totalFinal,
		NetWorthChange:       totalFinal - totalInitial,
		ExpenseToIncomeRatio: totalExpenses / denom,
		FinancialStability:   stability,
	}
}

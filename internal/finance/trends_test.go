package finance

import (
	"testing"
	"time"
)

func bucketsFromNets(nets []float64) []MonthlyBucket {
	buckets := make([]MonthlyBucket, len(nets))
	for i, net := range nets {
		buckets[i] = MonthlyBucket{Month: time.Date(2024, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC).Format("2006-01"), Net: net}
	}
	return buckets
}

func TestMonthKey(t *testing.T) {
	if got := MonthKey("2024-01-15"); got != "2024-01" {
		t.Errorf("MonthKey = %q, want 2024-01", got)
	}
	if got := MonthKey("short"); got != "short" {
		t.Errorf("MonthKey(short) = %q, want passthrough", got)
	}
}

func TestBucketByMonth(t *testing.T) {
	txs := []Transaction{
		{Date: "2024-02-10", Description: "b", Type: "debit", Amount: -20},
		{Date: "2024-01-05", Description: "a1", Type: "credit", Amount: 100},
		{Date: "2024-01-20", Description: "a2", Type: "debit", Amount: -40},
	}
	got := BucketByMonth(txs)
	if len(got) != 2 {
		t.Fatalf("bucket count = %d, want 2", len(got))
	}
	// Chronological order regardless of input order.
	if got[0].Month != "2024-01" || got[1].Month != "2024-02" {
		t.Errorf("bucket order = %s, %s", got[0].Month, got[1].Month)
	}
	if got[0].Income != 100 || got[0].Expenses != 40 || got[0].Net != 60 {
		t.Errorf("2024-01 bucket = %+v, want income 100, expenses 40, net 60", got[0])
	}
	if got[1].Net != -20 {
		t.Errorf("2024-02 net = %v, want -20", got[1].Net)
	}
}

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		name string
		nets []float64
		want string
	}{
		{name: "no months", nets: nil, want: TrendStable},
		{name: "single month", nets: []float64{100}, want: TrendStable},
		{name: "step change up", nets: []float64{100, 100, 100, 500, 500}, want: TrendIncreasing},
		{name: "two months increasing", nets: []float64{100, 200}, want: TrendIncreasing},
		{name: "two months decreasing", nets: []float64{200, 100}, want: TrendDecreasing},
		{name: "flat is stable", nets: []float64{100, 100, 100}, want: TrendStable},
		{name: "inside upper band", nets: []float64{100, 100, 105, 105}, want: TrendStable},
		{name: "inside lower band", nets: []float64{100, 100, 95, 95}, want: TrendStable},
		{name: "just past upper band", nets: []float64{100, 100, 115, 115}, want: TrendIncreasing},
		{name: "just past lower band", nets: []float64{100, 100, 85, 85}, want: TrendDecreasing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyTrend(bucketsFromNets(tt.nets)); got != tt.want {
				t.Errorf("ClassifyTrend(%v) = %q, want %q", tt.nets, got, tt.want)
			}
		})
	}
}

func TestClassifyTrend_MonotonicUnderScaling(t *testing.T) {
	baseline := []float64{100, 100, 100}
	for _, factor := range []float64{1.2, 1.5, 3} {
		nets := append([]float64{}, baseline...)
		nets = append(nets, 100*factor, 100*factor)
		if got := ClassifyTrend(bucketsFromNets(nets)); got != TrendIncreasing {
			t.Errorf("factor %v: trend = %q, want increasing", factor, got)
		}
	}
	for _, factor := range []float64{0.8, 0.5, 0.1} {
		nets := append([]float64{}, baseline...)
		nets = append(nets, 100*factor, 100*factor)
		if got := ClassifyTrend(bucketsFromNets(nets)); got != TrendDecreasing {
			t.Errorf("factor %v: trend = %q, want decreasing", factor, got)
		}
	}
	for _, factor := range []float64{0.95, 1.0, 1.05} {
		nets := append([]float64{}, baseline...)
		nets = append(nets, 100*factor, 100*factor)
		if got := ClassifyTrend(bucketsFromNets(nets)); got != TrendStable {
			t.Errorf("factor %v: trend = %q, want stable", factor, got)
		}
	}
}

func TestAnalysisDays(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	txs := []Transaction{
		{Date: "2024-01-01", Description: "a", Type: "debit", Amount: -1},
		{Date: "2024-02-15", Description: "b", Type: "debit", Amount: -1},
	}

	if got := AnalysisDays(txs, 14, now); got != 14 {
		t.Errorf("explicit window: got %d, want 14", got)
	}
	if got := AnalysisDays(txs, 0, now); got != 60 {
		t.Errorf("derived window: got %d, want 60", got)
	}
	if got := AnalysisDays(nil, 0, now); got != 30 {
		t.Errorf("fallback window: got %d, want 30", got)
	}
}

func TestAssessHealth(t *testing.T) {
	accounts := []DocumentMetadata{
		{InitialBalance: 1000, FinalBalance: 1500},
		{InitialBalance: 200, FinalBalance: 100},
	}
	got := AssessHealth(accounts, 400, 800)

	if got.TotalBalance != 1600 {
		t.Errorf("TotalBalance = %v, want 1600", got.TotalBalance)
	}
	if got.NetWorthChange != 400 {
		t.Errorf("NetWorthChange = %v, want 400", got.NetWorthChange)
	}
	if got.ExpenseToIncomeRatio != 0.5 {
		t.Errorf("ExpenseToIncomeRatio = %v, want 0.5", got.ExpenseToIncomeRatio)
	}
	if got.FinancialStability != StabilityGood {
		t.Errorf("FinancialStability = %q, want good", got.FinancialStability)
	}
}

func TestAssessHealth_FlooredDenominator(t *testing.T) {
	// Income below 1 computes against a denominator of 1, a documented
	// approximation rather than a true ratio.
	got := AssessHealth(nil, 50, 0.5)
	if got.ExpenseToIncomeRatio != 50 {
		t.Errorf("ExpenseToIncomeRatio = %v, want 50", got.ExpenseToIncomeRatio)
	}

	got = AssessHealth([]DocumentMetadata{{InitialBalance: 100, FinalBalance: 100}}, 0, 0)
	if got.FinancialStability != StabilityNeedsAttention {
		t.Errorf("flat balance stability = %q, want needs_attention", got.FinancialStability)
	}
}

package finance

import (
	"sort"
	"strings"
)

// CategoryRule maps an expense description to a category when any keyword
// appears in the lowercased description. Rules are checked in order and the
// first match wins, so the rule list is a priority list, not a set.
type CategoryRule struct {
	Category string
	Keywords []string
}

// FallbackCategory collects expenses no rule matches.
const FallbackCategory = "Other"

// DefaultCategoryRules is the built-in ordered keyword table.
var DefaultCategoryRules = []CategoryRule{
	{Category: "Food & Dining", Keywords: []string{"grocery", "food", "restaurant", "cafe"}},
	{Category: "Transportation", Keywords: []string{"gas", "fuel", "transport", "uber", "taxi"}},
	{Category: "Shopping", Keywords: []string{"shop", "store", "amazon", "purchase"}},
	{Category: "Bills & Utilities", Keywords: []string{"bill", "utility", "electric", "water", "internet"}},
}

// Categorize returns the first category whose keyword appears in the
// description, or the fallback.
func Categorize(description string, rules []CategoryRule) string {
	desc := strings.ToLower(description)
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(desc, kw) {
				return rule.Category
			}
		}
	}
	return FallbackCategory
}

// CategoryStats holds the per-category figures. Percentage is of total
// expense magnitude and is computed in a second pass once the grand total
// is known; it is 0 when total expenses are 0.
type CategoryStats struct {
	Total      float64 `json:"total"`
	Average    float64 `json:"average"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// SpendingAnalysis is the classifier's output bundle over however many
// source records the caller flattened together.
type SpendingAnalysis struct {
	TotalExpenses  float64                  `json:"total_expenses"`
	TotalIncome    float64                  `json:"total_income"`
	ExpenseCount   int                      `json:"expense_count"`
	IncomeCount    int                      `json:"income_count"`
	AverageExpense float64                  `json:"average_expense"`
	LargestExpense float64                  `json:"largest_expense"`
	Categories     map[string]CategoryStats `json:"categories"`
}

// AnalyzeSpending partitions transactions by amount sign, categorizes each
// expense, and computes per-category and aggregate statistics. All figures
// are magnitudes. Zero-guards: average is 0 with no expenses, largest is 0
// with none, every percentage is 0 when total expenses are 0.
func AnalyzeSpending(txs []Transaction, rules []CategoryRule) SpendingAnalysis {
	analysis := SpendingAnalysis{Categories: make(map[string]CategoryStats)}

	for _, t := range txs {
		if t.Amount >= 0 {
			analysis.TotalIncome += t.Amount
			analysis.IncomeCount++
			continue
		}
		mag := -t.Amount
		analysis.TotalExpenses += mag
		analysis.ExpenseCount++
		if mag > analysis.LargestExpense {
			analysis.LargestExpense = mag
		}

		name := Categorize(t.Description, rules)
		stats := analysis.Categories[name]
		stats.Total += mag
		stats.Count++
		analysis.Categories[name] = stats
	}

	if analysis.ExpenseCount > 0 {
		analysis.AverageExpense = analysis.TotalExpenses / float64(analysis.ExpenseCount)
	}

	// Second pass: averages and percentages need the grand total.
	for name, stats := range analysis.Categories {
		stats.Average = stats.Total / float64(stats.Count)
		if analysis.TotalExpenses > 0 {
			stats.Percentage = stats.Total / analysis.TotalExpenses * 100
		}
		analysis.Categories[name] = stats
	}

	return analysis
}

// RankedCategory pairs a category name with its stats for ordered reporting.
type RankedCategory struct {
	Name  string
	Stats CategoryStats
}

// TopCategories returns up to n categories ordered by descending total,
// breaking ties by name so the ordering is deterministic.
func (a SpendingAnalysis) TopCategories(n int) []RankedCategory {
	ranked := make([]RankedCategory, 0, len(a.Categories))
	for name, stats := range a.Categories {
		ranked = append(ranked, RankedCategory{Name: name, Stats: stats})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Stats.Total != ranked[j].Stats.Total {
			return ranked[i].Stats.Total > ranked[j].Stats.Total
		}
		return ranked[i].Name < ranked[j].Name
	})
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

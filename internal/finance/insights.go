package finance

import "fmt"

// Insight thresholds. Fixed rule constants rather than configuration:
// insights must be deterministic for identical inputs.
const (
	highFrequencyPerDay     = 5.0
	dominantCategoryPercent = 30.0
	emergencyFundRatio      = 1.2
	smallExpenseAverage     = 50.0
	smallExpenseCount       = 20
)

// GenerateInsights derives the ordered list of observation statements from
// a spending analysis and trend classification. Pure function: same inputs
// always yield the same statements in the same order. Each rule applies
// independently and is skipped when its precondition is false.
func GenerateInsights(sp SpendingAnalysis, trend string, analysisDays int) []string {
	var insights []string

	if top := sp.TopCategories(1); len(top) > 0 {
		insights = append(insights, fmt.Sprintf(
			"Your highest spending category is %s with $%.2f (%.1f%% of total expenses)",
			top[0].Name, top[0].Stats.Total, top[0].Stats.Percentage))
	}

	switch trend {
	case TrendIncreasing:
		insights = append(insights, "Your account balance is trending upward, indicating positive cash flow")
	case TrendDecreasing:
		insights = append(insights, "Your account balance is trending downward - consider reviewing your spending")
	}

	net := sp.TotalIncome - sp.TotalExpenses
	if net >= 0 {
		insights = append(insights, fmt.Sprintf("You have a positive net cash flow of $%.2f", net))
	} else {
		insights = append(insights, fmt.Sprintf("You have a negative net cash flow of $%.2f", -net))
	}

	if sp.ExpenseCount > 0 && analysisDays > 0 {
		perDay := float64(sp.ExpenseCount) / float64(analysisDays)
		if perDay > highFrequencyPerDay {
			insights = append(insights, fmt.Sprintf(
				"You average %.1f expense transactions per day - a high transaction frequency", perDay))
		}
	}

	return insights
}

// GenerateRecommendations derives the ordered list of actionable
// statements. Same determinism contract as GenerateInsights; the rule
// thresholds are independent of the insight rules.
func GenerateRecommendations(sp SpendingAnalysis) []string {
	var recs []string

	for _, rc := range sp.TopCategories(3) {
		if rc.Stats.Percentage > dominantCategoryPercent {
			recs = append(recs, fmt.Sprintf(
				"Consider reducing %s spending - it accounts for %.1f%% of your expenses",
				rc.Name, rc.Stats.Percentage))
		}
	}

	expenses := sp.TotalExpenses
	if expenses < 1 {
		expenses = 1
	}
	if sp.TotalIncome/expenses < emergencyFundRatio {
		recs = append(recs, "Consider building an emergency fund - your income barely covers your expenses")
	}

	if sp.AverageExpense < smallExpenseAverage && sp.ExpenseCount > smallExpenseCount {
		recs = append(recs, "You make many small purchases - consolidating them could make spending easier to track")
	}

	if sp.TotalIncome > sp.TotalExpenses {
		recs = append(recs, fmt.Sprintf(
			"You could save $%.2f based on your current income and spending", sp.TotalIncome-sp.TotalExpenses))
	}

	return recs
}

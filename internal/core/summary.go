package core

import "github.com/shopspring/decimal"

// BudgetUsage is the spending of one category against its limit.
type BudgetUsage struct {
	Category    string          `json:"category"`
	Limit       decimal.Decimal `json:"limit"`
	Spent       decimal.Decimal `json:"spent"`
	Remaining   decimal.Decimal `json:"remaining"`
	PercentUsed float64         `json:"percentUsed"`
}

// Summary is the aggregated view of a period, or of all time when the period is empty.
type Summary struct {
	TotalIncome   decimal.Decimal `json:"totalIncome"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	NetSavings    decimal.Decimal `json:"netSavings"`
	BudgetUsage   []BudgetUsage   `json:"budgetUsage"`
}

// NewBudgetUsage derives remaining and percentUsed. A zero limit pins percentUsed to 0.
func NewBudgetUsage(category string, limit, spent decimal.Decimal) BudgetUsage {
	u := BudgetUsage{
		Category:  category,
		Limit:     limit,
		Spent:     spent,
		Remaining: limit.Sub(spent),
	}
	u.PercentUsed = PercentUsed(spent, limit)
	return u
}

// PercentUsed returns spent / limit * 100, or 0 when limit is zero.
func PercentUsed(spent, limit decimal.Decimal) float64 {
	if limit.IsZero() {
		return 0
	}
	pct, _ := spent.Div(limit).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}

// BarWidth clamps a raw percentage into [0, 100] for drawing a usage bar.
func BarWidth(percent float64) float64 {
	return min(max(percent, 0), 100)
}

package query

import (
	"sort"

	"finbook/internal/models"

	"github.com/shopspring/decimal"
)

// CategoryTotal is one category's share of total spending.
type CategoryTotal struct {
	Category   models.Category
	Total      decimal.Decimal
	Count      int
	Percentage float64
}

// SpendingByCategory aggregates expense transactions by category and
// computes each category's percentage of the total, largest first.
// Income and transfers are excluded.
func SpendingByCategory(txs []models.Transaction) []CategoryTotal {
	byCategory := make(map[models.Category]*CategoryTotal)
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Type != models.TypeExpense {
			continue
		}
		ct, ok := byCategory[tx.Category]
		if !ok {
			ct = &CategoryTotal{Category: tx.Category}
			byCategory[tx.Category] = ct
		}
		ct.Total = ct.Total.Add(tx.Amount)
		ct.Count++
		total = total.Add(tx.Amount)
	}

	out := make([]CategoryTotal, 0, len(byCategory))
	for _, ct := range byCategory {
		if total.IsPositive() {
			ct.Percentage, _ = ct.Total.Div(total).Mul(decimal.NewFromInt(100)).Float64()
		}
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// BudgetProgress returns the percentage of a budget already spent.
// A zero-amount budget reports 0.
func BudgetProgress(b models.Budget) float64 {
	if !b.Amount.IsPositive() {
		return 0
	}
	p, _ := b.Spent.Div(b.Amount).Mul(decimal.NewFromInt(100)).Float64()
	return p
}

// GoalProgress returns the percentage of a goal's target reached, capped
// at 100.
func GoalProgress(g models.Goal) float64 {
	if !g.TargetAmount.IsPositive() {
		return 0
	}
	p, _ := g.CurrentAmount.Div(g.TargetAmount).Mul(decimal.NewFromInt(100)).Float64()
	if p > 100 {
		return 100
	}
	return p
}

package query

import (
	"testing"

	"finbook/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expense(desc string, cat models.Category, amount float64) models.Transaction {
	t := tx(desc, cat, models.TypeExpense)
	t.Amount = decimal.NewFromFloat(amount)
	return t
}

func TestSpendingByCategory(t *testing.T) {
	txs := []models.Transaction{
		expense("Rent", models.CategoryHousing, 1200),
		expense("Grocery", models.CategoryFood, 200),
		expense("Restaurant", models.CategoryFood, 100),
		tx("Salary", models.CategoryIncome, models.TypeIncome),
	}

	totals := SpendingByCategory(txs)
	require.Len(t, totals, 2, "income is excluded")

	assert.Equal(t, models.CategoryHousing, totals[0].Category)
	assert.True(t, totals[0].Total.Equal(decimal.NewFromInt(1200)))
	assert.Equal(t, 1, totals[0].Count)
	assert.InDelta(t, 80.0, totals[0].Percentage, 0.01)

	assert.Equal(t, models.CategoryFood, totals[1].Category)
	assert.True(t, totals[1].Total.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, 2, totals[1].Count)
	assert.InDelta(t, 20.0, totals[1].Percentage, 0.01)
}

func TestSpendingByCategoryEmpty(t *testing.T) {
	assert.Empty(t, SpendingByCategory(nil))
	assert.Empty(t, SpendingByCategory([]models.Transaction{
		tx("Salary", models.CategoryIncome, models.TypeIncome),
	}))
}

func TestBudgetProgress(t *testing.T) {
	b := models.Budget{
		Amount: decimal.NewFromInt(500),
		Spent:  decimal.NewFromInt(125),
	}
	assert.InDelta(t, 25.0, BudgetProgress(b), 0.01)

	// overspending is reported as-is
	b.Spent = decimal.NewFromInt(600)
	assert.InDelta(t, 120.0, BudgetProgress(b), 0.01)

	b.Amount = decimal.Zero
	assert.Equal(t, 0.0, BudgetProgress(b))
}

func TestGoalProgress(t *testing.T) {
	g := models.Goal{
		TargetAmount:  decimal.NewFromInt(10000),
		CurrentAmount: decimal.NewFromInt(5000),
	}
	assert.InDelta(t, 50.0, GoalProgress(g), 0.01)

	// progress past the target caps at 100
	g.CurrentAmount = decimal.NewFromInt(12000)
	assert.Equal(t, 100.0, GoalProgress(g))

	g.TargetAmount = decimal.Zero
	assert.Equal(t, 0.0, GoalProgress(g))
}

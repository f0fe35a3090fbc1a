package storage

import (
	"time"

	"finbook/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// DemoEmail and DemoPassword are the credentials of the seeded demo user.
const (
	DemoEmail    = "demo@example.com"
	DemoPassword = "password"
)

// demoUserID is fixed so a persisted session token resolves across
// restarts of the in-memory store.
const demoUserID = "user1"

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

// Seed populates the store with the fixed demo dataset: one user, three
// accounts, a week and a half of transactions, and a handful of budgets
// and goals. Safe to call once on an empty store only.
func (s *Store) Seed() error {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	user := models.User{
		ID:           demoUserID,
		Email:        DemoEmail,
		FirstName:    "Alex",
		LastName:     "Johnson",
		Role:         models.RoleUser,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users = append(s.users, user)
	s.currentID = user.ID

	accounts := []struct {
		name    string
		typ     models.AccountType
		balance float64
	}{
		{"Checking Account", models.AccountChecking, 5230.45},
		{"Savings Account", models.AccountSavings, 12500.00},
		{"Credit Card", models.AccountCredit, -1250.30},
	}
	for _, a := range accounts {
		s.accounts = append(s.accounts, models.Account{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			Name:      a.name,
			Type:      a.typ,
			Balance:   dec(a.balance),
			Currency:  "USD",
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	checking := s.accounts[0].ID

	txs := []struct {
		daysAgo   int
		amount    float64
		desc      string
		typ       models.TransactionType
		category  models.Category
		recurring bool
		notes     string
	}{
		{1, 82.45, "Grocery Store", models.TypeExpense, models.CategoryFood, false, ""},
		{2, 14.99, "Netflix Subscription", models.TypeExpense, models.CategoryEntertainment, true, "Monthly subscription"},
		{3, 1200.00, "Rent Payment", models.TypeExpense, models.CategoryHousing, true, "Monthly rent"},
		{5, 42.00, "Gas Station", models.TypeExpense, models.CategoryTransportation, false, ""},
		{7, 3500.00, "Salary Deposit", models.TypeIncome, models.CategoryIncome, true, "Monthly salary"},
		{10, 120.00, "Electric Bill", models.TypeExpense, models.CategoryUtilities, true, ""},
	}
	for _, t := range txs {
		created := now.AddDate(0, 0, -t.daysAgo)
		s.txs = append(s.txs, models.Transaction{
			ID:          uuid.NewString(),
			UserID:      user.ID,
			AccountID:   checking,
			Date:        models.DateOnly(created),
			Amount:      dec(t.amount),
			Description: t.desc,
			Type:        t.typ,
			Category:    t.category,
			IsRecurring: t.recurring,
			Notes:       t.notes,
			CreatedAt:   created,
			UpdatedAt:   created,
		})
	}

	budgets := []struct {
		category models.Category
		amount   float64
		spent    float64
	}{
		{models.CategoryFood, 500.00, 82.45},
		{models.CategoryEntertainment, 100.00, 14.99},
		{models.CategoryHousing, 1300.00, 1200.00},
		{models.CategoryTransportation, 200.00, 42.00},
	}
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for _, b := range budgets {
		s.budgets = append(s.budgets, models.Budget{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			Category:  b.category,
			Amount:    dec(b.amount),
			Spent:     dec(b.spent),
			Period:    models.PeriodMonthly,
			StartDate: monthStart,
			EndDate:   monthStart.AddDate(0, 1, -1),
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	goals := []struct {
		name    string
		typ     models.GoalType
		target  float64
		current float64
	}{
		{"Emergency Fund", models.GoalEmergency, 10000.00, 5000.00},
		{"Vacation", models.GoalSavings, 3000.00, 1200.00},
		{"New Car", models.GoalPurchase, 25000.00, 8000.00},
	}
	for _, g := range goals {
		s.goals = append(s.goals, models.Goal{
			ID:            uuid.NewString(),
			UserID:        user.ID,
			Name:          g.name,
			Type:          g.typ,
			TargetAmount:  dec(g.target),
			CurrentAmount: dec(g.current),
			StartDate:     monthStart,
			TargetDate:    monthStart.AddDate(1, 0, 0),
			Status:        models.GoalInProgress,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}
	return nil
}

// SeedRandom appends n fabricated expense transactions for the current
// user, useful for exercising filters against a larger list.
func (s *Store) SeedRandom(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	categories := []models.Category{
		models.CategoryFood, models.CategoryTransportation,
		models.CategoryEntertainment, models.CategoryShopping,
		models.CategoryPersonal, models.CategoryOther,
	}
	var accountID string
	if len(s.accounts) > 0 {
		accountID = s.accounts[0].ID
	}
	for i := 0; i < n; i++ {
		created := now.AddDate(0, 0, -gofakeit.Number(0, 60))
		s.txs = append(s.txs, models.Transaction{
			ID:          uuid.NewString(),
			UserID:      s.currentID,
			AccountID:   accountID,
			Date:        models.DateOnly(created),
			Amount:      decimal.NewFromFloat(gofakeit.Price(1, 500)),
			Description: gofakeit.Company(),
			Type:        models.TypeExpense,
			Category:    categories[gofakeit.Number(0, len(categories)-1)],
			IsRecurring: false,
			CreatedAt:   created,
			UpdatedAt:   created,
		})
	}
}

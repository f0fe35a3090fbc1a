package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies an account.
type AccountType string

const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountCredit     AccountType = "credit"
	AccountInvestment AccountType = "investment"
	AccountCash       AccountType = "cash"
	AccountOther      AccountType = "other"
)

// Account is a money container owned by a user. Balance may be negative
// (credit accounts). A transaction's AccountID is never validated against
// the account list.
type Account struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Name      string          `json:"name"`
	Type      AccountType     `json:"type"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	IsActive  bool            `json:"isActive"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// BudgetPeriod is the recurrence window of a budget.
type BudgetPeriod string

const (
	PeriodWeekly  BudgetPeriod = "weekly"
	PeriodMonthly BudgetPeriod = "monthly"
	PeriodYearly  BudgetPeriod = "yearly"
)

// Budget caps spending for one category over a period.
type Budget struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Category  Category        `json:"category"`
	Amount    decimal.Decimal `json:"amount"`
	Spent     decimal.Decimal `json:"spent"`
	Period    BudgetPeriod    `json:"period"`
	StartDate time.Time       `json:"startDate"`
	EndDate   time.Time       `json:"endDate"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// GoalType classifies a savings goal.
type GoalType string

const (
	GoalSavings   GoalType = "savings"
	GoalDebt      GoalType = "debt"
	GoalPurchase  GoalType = "purchase"
	GoalEmergency GoalType = "emergency"
	GoalOther     GoalType = "other"
)

// GoalStatus tracks progress toward a goal.
type GoalStatus string

const (
	GoalInProgress GoalStatus = "in_progress"
	GoalAchieved   GoalStatus = "achieved"
	GoalFailed     GoalStatus = "failed"
)

// Goal is a savings target with a deadline.
type Goal struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	Name          string          `json:"name"`
	Type          GoalType        `json:"type"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	StartDate     time.Time       `json:"startDate"`
	TargetDate    time.Time       `json:"targetDate"`
	Status        GoalStatus      `json:"status"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies the direction of money movement.
type TransactionType string

const (
	TypeIncome   TransactionType = "income"
	TypeExpense  TransactionType = "expense"
	TypeTransfer TransactionType = "transfer"
)

// Category is the closed set of transaction categories.
type Category string

const (
	CategoryHousing        Category = "housing"
	CategoryTransportation Category = "transportation"
	CategoryFood           Category = "food"
	CategoryUtilities      Category = "utilities"
	CategoryInsurance      Category = "insurance"
	CategoryHealthcare     Category = "healthcare"
	CategorySaving         Category = "saving"
	CategoryPersonal       Category = "personal"
	CategoryEntertainment  Category = "entertainment"
	CategoryEducation      Category = "education"
	CategoryShopping       Category = "shopping"
	CategoryIncome         Category = "income"
	CategoryOther          Category = "other"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryHousing, CategoryTransportation, CategoryFood,
	CategoryUtilities, CategoryInsurance, CategoryHealthcare,
	CategorySaving, CategoryPersonal, CategoryEntertainment,
	CategoryEducation, CategoryShopping, CategoryIncome, CategoryOther,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Transaction represents one money movement. Date carries a calendar day
// only; the time component is normalized away on creation. Category and
// type are chosen independently (pairing category "income" with type
// "income" is a convention, not an invariant).
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	AccountID   string          `json:"accountId"`
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Type        TransactionType `json:"type"`
	Category    Category        `json:"category"`
	IsRecurring bool            `json:"isRecurring"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// DateOnly strips the time-of-day and location from t, leaving midnight UTC
// of the same calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

package query

import (
	"testing"

	"finbook/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		description string
		want        models.Category
	}{
		{"Monthly Rent", models.CategoryHousing},
		{"Mortgage payment", models.CategoryHousing},
		{"Uber to airport", models.CategoryTransportation},
		{"Gas Station", models.CategoryTransportation},
		{"Grocery Store", models.CategoryFood},
		{"Corner cafe", models.CategoryFood},
		{"Netflix Subscription", models.CategoryEntertainment},
		{"SPOTIFY PREMIUM", models.CategoryEntertainment},
		{"Internet bill", models.CategoryUtilities},
		{"Salary Deposit", models.CategoryIncome},
		{"Amazon order", models.CategoryShopping},
		{"Pharmacy pickup", models.CategoryHealthcare},
		{"Mystery charge", models.CategoryOther},
		{"", models.CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.description))
		})
	}
}

func TestClassifyFirstRuleWins(t *testing.T) {
	// "rent" is checked before "deposit"
	assert.Equal(t, models.CategoryHousing, Classify("Rent deposit"))
}

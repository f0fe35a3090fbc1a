package query

import (
	"strings"

	"finbook/internal/models"
)

// keyword rules checked in order; the first hit wins.
var classifyRules = []struct {
	category models.Category
	keywords []string
}{
	{models.CategoryHousing, []string{"rent", "mortgage"}},
	{models.CategoryTransportation, []string{"uber", "lyft", "gas"}},
	{models.CategoryFood, []string{"grocery", "restaurant", "food", "cafe"}},
	{models.CategoryEntertainment, []string{"netflix", "movie", "spotify", "ticket"}},
	{models.CategoryUtilities, []string{"electricity", "water", "internet", "phone"}},
	{models.CategoryIncome, []string{"salary", "paycheck", "deposit"}},
	{models.CategoryShopping, []string{"amazon", "walmart", "target", "shop"}},
	{models.CategoryHealthcare, []string{"doctor", "pharmacy", "hospital"}},
}

// Classify suggests a category for a transaction description by keyword
// lookup, falling back to "other".
func Classify(description string) models.Category {
	desc := strings.ToLower(description)
	for _, rule := range classifyRules {
		for _, kw := range rule.keywords {
			if strings.Contains(desc, kw) {
				return rule.category
			}
		}
	}
	return models.CategoryOther
}

package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"finbook/internal/models"
	"finbook/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func tx(desc string, cat models.Category, typ models.TransactionType) models.Transaction {
	return models.Transaction{
		Date:        date(2026, 8, 15),
		Amount:      decimal.NewFromInt(10),
		Description: desc,
		Category:    cat,
		Type:        typ,
	}
}

func TestMatches(t *testing.T) {
	netflix := tx("Netflix", models.CategoryEntertainment, models.TypeExpense)
	netflix.Notes = "Monthly subscription"
	salary := tx("Salary", models.CategoryIncome, models.TypeIncome)

	start := date(2026, 8, 10)
	end := date(2026, 8, 15)
	before := date(2026, 8, 16)
	entertainment := models.CategoryEntertainment
	income := models.TypeIncome

	tests := []struct {
		name   string
		tx     models.Transaction
		filter Filter
		want   bool
	}{
		{"empty filter matches anything", netflix, Filter{}, true},
		{"type match", salary, Filter{Type: income}, true},
		{"type mismatch", netflix, Filter{Type: income}, false},
		{"category match", netflix, Filter{Category: entertainment}, true},
		{"category mismatch", salary, Filter{Category: entertainment}, false},
		{"start date inclusive", netflix, Filter{StartDate: date(2026, 8, 15)}, true},
		{"start date excludes earlier", netflix, Filter{StartDate: before}, false},
		{"end date inclusive", netflix, Filter{EndDate: end}, true},
		{"end date excludes later", netflix, Filter{EndDate: date(2026, 8, 14)}, false},
		{"date range", netflix, Filter{StartDate: start, EndDate: end}, true},
		{"search matches description lowercase", netflix, Filter{Search: "net"}, true},
		{"search matches description uppercase", netflix, Filter{Search: "NET"}, true},
		{"search matches notes", netflix, Filter{Search: "subscription"}, true},
		{"search matches category", netflix, Filter{Search: "entertain"}, true},
		{"search misses", netflix, Filter{Search: "grocery"}, false},
		{"conjunction all match", netflix, Filter{Category: entertainment, Search: "net", EndDate: end}, true},
		{"conjunction one misses", netflix, Filter{Category: entertainment, Search: "net", Type: income}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.tx, tt.filter))
		})
	}
}

func TestMatchesIgnoresTimeOfDay(t *testing.T) {
	noon := tx("Lunch", models.CategoryFood, models.TypeExpense)
	noon.Date = time.Date(2026, 8, 15, 12, 30, 0, 0, time.Local)

	assert.True(t, Matches(noon, Filter{StartDate: date(2026, 8, 15)}))
	assert.True(t, Matches(noon, Filter{EndDate: time.Date(2026, 8, 15, 0, 0, 1, 0, time.UTC)}))
}

func newTestEngine(t *testing.T) (*Engine, *storage.Store) {
	t.Helper()
	store := storage.New()
	ctx := context.Background()

	fixtures := []models.Transaction{
		tx("Netflix", models.CategoryEntertainment, models.TypeExpense),
		tx("Salary", models.CategoryIncome, models.TypeIncome),
	}
	for _, f := range fixtures {
		_, err := store.CreateTransaction(ctx, f)
		require.NoError(t, err)
	}

	engine := NewEngine(store)
	require.NoError(t, engine.Refresh(ctx))
	return engine, store
}

func TestSetFiltersByType(t *testing.T) {
	engine, _ := newTestEngine(t)

	income := models.TypeIncome
	engine.SetFilters(Patch{Type: &income})

	view := engine.Transactions()
	require.Len(t, view, 1)
	assert.Equal(t, "Salary", view[0].Description)
}

func TestClearFiltersRestoresOriginalOrder(t *testing.T) {
	engine, _ := newTestEngine(t)

	income := models.TypeIncome
	engine.SetFilters(Patch{Type: &income})
	require.Len(t, engine.Transactions(), 1)

	engine.ClearFilters()
	view := engine.Transactions()
	require.Len(t, view, 2)
	assert.Equal(t, "Netflix", view[0].Description)
	assert.Equal(t, "Salary", view[1].Description)
	assert.Equal(t, Filter{}, engine.Filter())
}

func TestSetFiltersMergesPartially(t *testing.T) {
	engine, _ := newTestEngine(t)

	expense := models.TypeExpense
	engine.SetFilters(Patch{Type: &expense})
	search := "net"
	engine.SetFilters(Patch{Search: &search})

	// the earlier type constraint survived the second patch
	f := engine.Filter()
	assert.Equal(t, expense, f.Type)
	assert.Equal(t, "net", f.Search)
	require.Len(t, engine.Transactions(), 1)

	// clearing one field leaves the other in place
	noType := models.TransactionType("")
	engine.SetFilters(Patch{Type: &noType})
	f = engine.Filter()
	assert.Empty(t, f.Type)
	assert.Equal(t, "net", f.Search)
}

func TestSearchCaseInsensitive(t *testing.T) {
	engine, _ := newTestEngine(t)

	for _, term := range []string{"net", "NET", "Net"} {
		s := term
		engine.SetFilters(Patch{Search: &s})
		view := engine.Transactions()
		require.Len(t, view, 1, "search %q", term)
		assert.Equal(t, "Netflix", view[0].Description)
	}
}

func TestStartDateAfterEverythingYieldsEmpty(t *testing.T) {
	engine, _ := newTestEngine(t)

	future := date(2027, 1, 1)
	engine.SetFilters(Patch{StartDate: &future})
	assert.Empty(t, engine.Transactions())
}

func TestAddRecomputesView(t *testing.T) {
	engine, _ := newTestEngine(t)

	food := models.CategoryFood
	engine.SetFilters(Patch{Category: &food})
	require.Empty(t, engine.Transactions())

	_, err := engine.Add(context.Background(), tx("Grocery Store", models.CategoryFood, models.TypeExpense))
	require.NoError(t, err)

	view := engine.Transactions()
	require.Len(t, view, 1)
	assert.Equal(t, "Grocery Store", view[0].Description)
}

func TestEditSwapsUpdatedRecord(t *testing.T) {
	engine, _ := newTestEngine(t)
	id := engine.Transactions()[0].ID

	newDesc := "Netflix Premium"
	updated, err := engine.Edit(context.Background(), id, storage.TransactionPatch{Description: &newDesc})
	require.NoError(t, err)
	assert.Equal(t, "Netflix Premium", updated.Description)
	assert.Equal(t, "Netflix Premium", engine.Transactions()[0].Description)
}

func TestRemoveMissingIDLeavesViewUnchanged(t *testing.T) {
	engine, _ := newTestEngine(t)
	before := engine.Transactions()

	err := engine.Remove(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, before, engine.Transactions())
}

func TestRemoveDropsFromView(t *testing.T) {
	engine, _ := newTestEngine(t)
	id := engine.Transactions()[0].ID

	require.NoError(t, engine.Remove(context.Background(), id))

	view := engine.Transactions()
	require.Len(t, view, 1)
	assert.Equal(t, "Salary", view[0].Description)
}

// erroringSource fails every fetch after the first.
type erroringSource struct {
	*storage.Store
	fail bool
}

func (s *erroringSource) FetchTransactions(ctx context.Context) ([]models.Transaction, error) {
	if s.fail {
		return nil, errors.New("backend down")
	}
	return s.Store.FetchTransactions(ctx)
}

func TestRefreshFailureKeepsStaleSnapshot(t *testing.T) {
	store := storage.New()
	ctx := context.Background()
	_, err := store.CreateTransaction(ctx, tx("Netflix", models.CategoryEntertainment, models.TypeExpense))
	require.NoError(t, err)

	source := &erroringSource{Store: store}
	engine := NewEngine(source)
	require.NoError(t, engine.Refresh(ctx))
	require.Len(t, engine.Transactions(), 1)

	source.fail = true
	err = engine.Refresh(ctx)
	assert.EqualError(t, err, "backend down")
	assert.Len(t, engine.Transactions(), 1, "stale view survives a failed refresh")
}

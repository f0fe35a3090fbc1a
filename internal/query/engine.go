// Package query holds the transaction query engine: a filter specification
// over an in-memory transaction snapshot, recomputed eagerly whenever the
// snapshot or the specification changes.
package query

import (
	"context"
	"strings"
	"sync"
	"time"

	"finbook/internal/models"
	"finbook/internal/storage"
)

// Filter is the active constraint set. Zero values mean "no constraint
// from that field"; set fields compose conjunctively. Date bounds are
// inclusive calendar days; category and type are exact matches; the
// search term is a case-insensitive substring.
type Filter struct {
	StartDate time.Time
	EndDate   time.Time
	Category  models.Category
	Type      models.TransactionType
	Search    string
}

// Patch names the filter fields to change. Nil fields are left untouched;
// pointing at a zero value clears that constraint.
type Patch struct {
	StartDate *time.Time
	EndDate   *time.Time
	Category  *models.Category
	Type      *models.TransactionType
	Search    *string
}

// Matches reports whether tx satisfies every set field of f. Dates compare
// by calendar day only. The search term matches if the description, notes,
// or category contains it, ignoring case.
func Matches(tx models.Transaction, f Filter) bool {
	date := models.DateOnly(tx.Date)
	if !f.StartDate.IsZero() && date.Before(models.DateOnly(f.StartDate)) {
		return false
	}
	if !f.EndDate.IsZero() && date.After(models.DateOnly(f.EndDate)) {
		return false
	}
	if f.Category != "" && tx.Category != f.Category {
		return false
	}
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(tx.Description), term) &&
			!strings.Contains(strings.ToLower(tx.Notes), term) &&
			!strings.Contains(strings.ToLower(string(tx.Category)), term) {
			return false
		}
	}
	return true
}

// TransactionSource is the data-store surface the engine forwards to.
type TransactionSource interface {
	FetchTransactions(ctx context.Context) ([]models.Transaction, error)
	CreateTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, patch storage.TransactionPatch) (models.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
}

// Engine owns a filter specification and a snapshot of the transaction
// list, and keeps the filtered view current. It never re-sorts: the view
// preserves the snapshot's insertion order.
type Engine struct {
	mu       sync.Mutex
	source   TransactionSource
	txs      []models.Transaction
	filter   Filter
	filtered []models.Transaction
}

// NewEngine creates an engine with an empty snapshot and no constraints.
func NewEngine(source TransactionSource) *Engine {
	return &Engine{source: source}
}

// Refresh replaces the snapshot from the data store and recomputes the
// view. On a fetch failure the stale snapshot is kept and the error
// returned unchanged.
func (e *Engine) Refresh(ctx context.Context) error {
	txs, err := e.source.FetchTransactions(ctx)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.txs = txs
	e.recompute()
	e.mu.Unlock()
	return nil
}

// SetFilters merges the set fields of p into the specification and
// recomputes the view eagerly.
func (e *Engine) SetFilters(p Patch) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if p.StartDate != nil {
		e.filter.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		e.filter.EndDate = *p.EndDate
	}
	if p.Category != nil {
		e.filter.Category = *p.Category
	}
	if p.Type != nil {
		e.filter.Type = *p.Type
	}
	if p.Search != nil {
		e.filter.Search = *p.Search
	}
	e.recompute()
}

// ClearFilters resets the specification; the view becomes the full
// snapshot in original order.
func (e *Engine) ClearFilters() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filter = Filter{}
	e.recompute()
}

// Filter returns the current specification.
func (e *Engine) Filter() Filter {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filter
}

// Transactions returns a copy of the current filtered view.
func (e *Engine) Transactions() []models.Transaction {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.Transaction, len(e.filtered))
	copy(out, e.filtered)
	return out
}

// Add creates a transaction in the data store, appends it to the snapshot,
// and recomputes the view.
func (e *Engine) Add(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	created, err := e.source.CreateTransaction(ctx, tx)
	if err != nil {
		return models.Transaction{}, err
	}
	e.mu.Lock()
	e.txs = append(e.txs, created)
	e.recompute()
	e.mu.Unlock()
	return created, nil
}

// Edit patches a transaction in the data store and swaps the updated
// record into the snapshot. A missing id surfaces the store's error and
// leaves the view unchanged.
func (e *Engine) Edit(ctx context.Context, id string, patch storage.TransactionPatch) (models.Transaction, error) {
	updated, err := e.source.UpdateTransaction(ctx, id, patch)
	if err != nil {
		return models.Transaction{}, err
	}
	e.mu.Lock()
	for i := range e.txs {
		if e.txs[i].ID == id {
			e.txs[i] = updated
			break
		}
	}
	e.recompute()
	e.mu.Unlock()
	return updated, nil
}

// Remove deletes a transaction from the data store and drops it from the
// snapshot. A missing id surfaces the store's error and leaves the view
// unchanged.
func (e *Engine) Remove(ctx context.Context, id string) error {
	if err := e.source.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	e.mu.Lock()
	for i := range e.txs {
		if e.txs[i].ID == id {
			e.txs = append(e.txs[:i], e.txs[i+1:]...)
			break
		}
	}
	e.recompute()
	e.mu.Unlock()
	return nil
}

// recompute rebuilds the filtered view. Caller holds the mutex. O(n) in
// the snapshot size.
func (e *Engine) recompute() {
	e.filtered = e.filtered[:0]
	for _, tx := range e.txs {
		if Matches(tx, e.filter) {
			e.filtered = append(e.filtered, tx)
		}
	}
}

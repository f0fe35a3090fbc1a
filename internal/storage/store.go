package storage

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"finbook/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a record id or email has no match.
var ErrNotFound = errors.New("record not found")

// Store is the in-memory data store backing the application. It stands in
// for a real backend: every call sleeps for a configured latency before
// touching the backing slices. The store owns its slices exclusively and
// hands out copies; mutations are serialized by the mutex, last writer wins.
type Store struct {
	mu        sync.Mutex
	users     []models.User
	txs       []models.Transaction
	accounts  []models.Account
	budgets   []models.Budget
	goals     []models.Goal
	currentID string

	latency time.Duration
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLatency sets the simulated per-call latency. The default is zero,
// which suits tests; the demo binary uses a few hundred milliseconds.
func WithLatency(d time.Duration) Option {
	return func(s *Store) { s.latency = d }
}

// WithClock overrides the clock used for assigned timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty store. Call Seed or SeedRandom to populate it.
func New(opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// wait simulates network latency, honoring context cancellation.
func (s *Store) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// FetchUser returns the current user, the one most recently created or
// marked current. Fails with ErrNotFound if the store has no users.
func (s *Store) FetchUser(ctx context.Context) (models.User, error) {
	if err := s.wait(ctx); err != nil {
		return models.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == s.currentID {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

// FetchUserByEmail looks a user up by email, case-insensitively.
func (s *Store) FetchUserByEmail(ctx context.Context, email string) (models.User, error) {
	if err := s.wait(ctx); err != nil {
		return models.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

// FetchUserByID looks a user up by id.
func (s *Store) FetchUserByID(ctx context.Context, id string) (models.User, error) {
	if err := s.wait(ctx); err != nil {
		return models.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

// CreateUser adds a user, assigning id and timestamps, and marks it
// current. The caller supplies email, names, role and password hash.
func (s *Store) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	if err := s.wait(ctx); err != nil {
		return models.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = uuid.NewString()
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	u.CreatedAt = s.now()
	u.UpdatedAt = u.CreatedAt
	s.users = append(s.users, u)
	s.currentID = u.ID
	return u, nil
}

// SetCurrentUser marks the user with the given id as current.
func (s *Store) SetCurrentUser(ctx context.Context, id string) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			s.currentID = id
			return nil
		}
	}
	return ErrNotFound
}

// FetchTransactions returns a copy of all transactions in insertion order.
func (s *Store) FetchTransactions(ctx context.Context) ([]models.Transaction, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Transaction, len(s.txs))
	copy(out, s.txs)
	return out, nil
}

// CreateTransaction appends a transaction, assigning id and timestamps and
// normalizing the date to a calendar day.
func (s *Store) CreateTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	if err := s.wait(ctx); err != nil {
		return models.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = uuid.NewString()
	tx.Date = models.DateOnly(tx.Date)
	tx.CreatedAt = s.now()
	tx.UpdatedAt = tx.CreatedAt
	s.txs = append(s.txs, tx)
	return tx, nil
}

// TransactionPatch names the fields an update may change. Nil fields are
// left untouched. Id, owner, and creation timestamp are never patchable.
type TransactionPatch struct {
	Date        *time.Time
	Amount      *decimal.Decimal
	Description *string
	Type        *models.TransactionType
	Category    *models.Category
	IsRecurring *bool
	Notes       *string
}

// UpdateTransaction applies a patch to the transaction with the given id.
// Fails with ErrNotFound if the id has no match.
func (s *Store) UpdateTransaction(ctx context.Context, id string, patch TransactionPatch) (models.Transaction, error) {
	if err := s.wait(ctx); err != nil {
		return models.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.txs {
		if s.txs[i].ID != id {
			continue
		}
		tx := &s.txs[i]
		if patch.Date != nil {
			tx.Date = models.DateOnly(*patch.Date)
		}
		if patch.Amount != nil {
			tx.Amount = *patch.Amount
		}
		if patch.Description != nil {
			tx.Description = *patch.Description
		}
		if patch.Type != nil {
			tx.Type = *patch.Type
		}
		if patch.Category != nil {
			tx.Category = *patch.Category
		}
		if patch.IsRecurring != nil {
			tx.IsRecurring = *patch.IsRecurring
		}
		if patch.Notes != nil {
			tx.Notes = *patch.Notes
		}
		tx.UpdatedAt = s.now()
		return *tx, nil
	}
	return models.Transaction{}, ErrNotFound
}

// DeleteTransaction removes the transaction with the given id. Fails with
// ErrNotFound if the id has no match; the list is left unchanged.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.txs {
		if s.txs[i].ID == id {
			s.txs = append(s.txs[:i], s.txs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// FetchAccounts returns a copy of all accounts.
func (s *Store) FetchAccounts(ctx context.Context) ([]models.Account, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Account, len(s.accounts))
	copy(out, s.accounts)
	return out, nil
}

// FetchBudgets returns a copy of all budgets.
func (s *Store) FetchBudgets(ctx context.Context) ([]models.Budget, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Budget, len(s.budgets))
	copy(out, s.budgets)
	return out, nil
}

// FetchGoals returns a copy of all goals.
func (s *Store) FetchGoals(ctx context.Context) ([]models.Goal, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Goal, len(s.goals))
	copy(out, s.goals)
	return out, nil
}

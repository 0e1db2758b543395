package service

import (
	"context"
	"errors"

	"github.com/expensage/backend/internal/models"
	"github.com/expensage/backend/internal/storage"
)

// ErrInvalidTransactionType is returned for a transaction type other than
// income or expense.
var ErrInvalidTransactionType = errors.New("transaction type must be income or expense")

// LedgerService handles the personal finance records: transactions, budgets
// and subscriptions. All operations are scoped to the owning user.
type LedgerService struct {
	store storage.Store
}

// NewLedgerService creates a new LedgerService with the given storage backend.
func NewLedgerService(store storage.Store) *LedgerService {
	return &LedgerService{store: store}
}

func validTransactionType(t string) bool {
	return t == models.TransactionIncome || t == models.TransactionExpense
}

// CreateTransaction validates and persists a personal transaction.
func (s *LedgerService) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	if !validTransactionType(tx.Type) {
		return ErrInvalidTransactionType
	}
	return s.store.CreateTransaction(ctx, tx)
}

// ListTransactions returns the user's transactions, newest first.
func (s *LedgerService) ListTransactions(ctx context.Context, userID string) ([]*models.Transaction, error) {
	return s.store.ListTransactions(ctx, userID)
}

// UpdateTransaction updates a transaction the user owns.
func (s *LedgerService) UpdateTransaction(ctx context.Context, tx *models.Transaction) error {
	if !validTransactionType(tx.Type) {
		return ErrInvalidTransactionType
	}
	return s.store.UpdateTransaction(ctx, tx)
}

// DeleteTransaction deletes a transaction the user owns.
func (s *LedgerService) DeleteTransaction(ctx context.Context, userID, id string) error {
	return s.store.DeleteTransaction(ctx, userID, id)
}

// CreateBudget persists a budget.
func (s *LedgerService) CreateBudget(ctx context.Context, b *models.Budget) error {
	return s.store.CreateBudget(ctx, b)
}

// ListBudgets returns the user's budgets.
func (s *LedgerService) ListBudgets(ctx context.Context, userID string) ([]*models.Budget, error) {
	return s.store.ListBudgets(ctx, userID)
}

// UpdateBudget updates a budget the user owns.
func (s *LedgerService) UpdateBudget(ctx context.Context, b *models.Budget) error {
	return s.store.UpdateBudget(ctx, b)
}

// DeleteBudget deletes a budget the user owns.
func (s *LedgerService) DeleteBudget(ctx context.Context, userID, id string) error {
	return s.store.DeleteBudget(ctx, userID, id)
}

// CreateSubscription persists a subscription.
func (s *LedgerService) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	return s.store.CreateSubscription(ctx, sub)
}

// ListSubscriptions returns the user's subscriptions.
func (s *LedgerService) ListSubscriptions(ctx context.Context, userID string) ([]*models.Subscription, error) {
	return s.store.ListSubscriptions(ctx, userID)
}

// DeleteSubscription deletes a subscription the user owns.
func (s *LedgerService) DeleteSubscription(ctx context.Context, userID, id string) error {
	return s.store.DeleteSubscription(ctx, userID, id)
}

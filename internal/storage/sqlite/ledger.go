package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/expensage/backend/internal/models"
	"github.com/expensage/backend/internal/money"
)

// Personal ledger records: transactions, budgets and subscriptions.
// All update/delete operations are scoped to the owning user so a row that
// exists but belongs to someone else reads as not found.

// CreateTransaction inserts a new personal transaction.
func (s *SQLiteStore) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt == 0 {
		t.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, type, amount, category, description, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Type, int64(t.Amount), t.Category, t.Description, t.Date, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// ListTransactions retrieves the user's transactions, newest date first.
func (s *SQLiteStore) ListTransactions(ctx context.Context, userID string) ([]*models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, type, amount, category, description, date, created_at
		 FROM transactions WHERE user_id = ? ORDER BY date DESC, created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		t := &models.Transaction{}
		var amount int64
		if err := rows.Scan(&t.ID, &t.UserID, &t.Type, &amount, &t.Category, &t.Description, &t.Date, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.Amount = money.Cents(amount)
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, nil
}

// UpdateTransaction updates a transaction owned by tx.UserID.
func (s *SQLiteStore) UpdateTransaction(ctx context.Context, t *models.Transaction) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET type = ?, amount = ?, category = ?, description = ?, date = ?
		 WHERE id = ? AND user_id = ?`,
		t.Type, int64(t.Amount), t.Category, t.Description, t.Date, t.ID, t.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return requireRow(res, "transaction")
}

// DeleteTransaction deletes a transaction owned by userID.
func (s *SQLiteStore) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM transactions WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return requireRow(res, "transaction")
}

// CreateBudget inserts a new budget.
func (s *SQLiteStore) CreateBudget(ctx context.Context, b *models.Budget) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO budgets (id, user_id, category, amount, period) VALUES (?, ?, ?, ?, ?)",
		b.ID, b.UserID, b.Category, int64(b.Amount), b.Period,
	)
	if err != nil {
		return fmt.Errorf("failed to insert budget: %w", err)
	}
	return nil
}

// ListBudgets retrieves the user's budgets.
func (s *SQLiteStore) ListBudgets(ctx context.Context, userID string) ([]*models.Budget, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, category, amount, period FROM budgets WHERE user_id = ? ORDER BY category",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []*models.Budget
	for rows.Next() {
		b := &models.Budget{}
		var amount int64
		if err := rows.Scan(&b.ID, &b.UserID, &b.Category, &amount, &b.Period); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		b.Amount = money.Cents(amount)
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate budgets: %w", err)
	}
	return budgets, nil
}

// UpdateBudget updates a budget owned by budget.UserID.
func (s *SQLiteStore) UpdateBudget(ctx context.Context, b *models.Budget) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE budgets SET amount = ?, period = ? WHERE id = ? AND user_id = ?",
		int64(b.Amount), b.Period, b.ID, b.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update budget: %w", err)
	}
	return requireRow(res, "budget")
}

// DeleteBudget deletes a budget owned by userID.
func (s *SQLiteStore) DeleteBudget(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM budgets WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	return requireRow(res, "budget")
}

// CreateSubscription inserts a new subscription.
func (s *SQLiteStore) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	if sub.CreatedAt == 0 {
		sub.CreatedAt = time.Now().Unix()
	}
	if sub.Category == "" {
		sub.Category = "Other"
	}

	var icon interface{} = nil
	if sub.Icon != "" {
		icon = sub.Icon
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO subscriptions (id, user_id, name, amount, frequency, next_payment, category, status, icon, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.UserID, sub.Name, int64(sub.Amount), sub.Frequency,
		sub.NextPayment, sub.Category, sub.Status, icon, sub.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert subscription: %w", err)
	}
	return nil
}

// ListSubscriptions retrieves the user's subscriptions, next payment first.
func (s *SQLiteStore) ListSubscriptions(ctx context.Context, userID string) ([]*models.Subscription, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, amount, frequency, next_payment, category, status, COALESCE(icon, ''), created_at
		 FROM subscriptions WHERE user_id = ? ORDER BY next_payment`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*models.Subscription
	for rows.Next() {
		sub := &models.Subscription{}
		var amount int64
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.Name, &amount, &sub.Frequency,
			&sub.NextPayment, &sub.Category, &sub.Status, &sub.Icon, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		sub.Amount = money.Cents(amount)
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subscriptions: %w", err)
	}
	return subs, nil
}

// DeleteSubscription deletes a subscription owned by userID.
func (s *SQLiteStore) DeleteSubscription(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM subscriptions WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return requireRow(res, "subscription")
}

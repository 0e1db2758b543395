package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/expensage/backend/internal/models"
	"github.com/expensage/backend/internal/money"
)

// CreateExpense persists an expense and its shares in one transaction.
// Share order is preserved via the position column.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO group_expenses (id, group_id, description, amount, category, paid_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.GroupID, expense.Description, int64(expense.Amount),
		expense.Category, expense.PaidBy, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i := range expense.Shares {
		share := &expense.Shares[i]
		share.ExpenseID = expense.ID
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_shares (expense_id, user_id, amount, position) VALUES (?, ?, ?, ?)",
			share.ExpenseID, share.UserID, int64(share.Amount), i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert share: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListExpensesByGroup retrieves all expenses of a group with their shares,
// newest first. Shares keep their original order.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, description, amount, category, paid_by, created_at
		 FROM group_expenses WHERE group_id = ? ORDER BY created_at DESC, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	index := make(map[string]*models.Expense)
	for rows.Next() {
		e := &models.Expense{}
		var amount int64
		if err := rows.Scan(&e.ID, &e.GroupID, &e.Description, &amount, &e.Category, &e.PaidBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		e.Amount = money.Cents(amount)
		expenses = append(expenses, e)
		index[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	if len(expenses) == 0 {
		return nil, nil
	}

	shareRows, err := s.db.QueryContext(ctx,
		`SELECT es.expense_id, es.user_id, es.amount
		 FROM expense_shares es
		 JOIN group_expenses ge ON ge.id = es.expense_id
		 WHERE ge.group_id = ?
		 ORDER BY es.expense_id, es.position`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}
	defer shareRows.Close()

	for shareRows.Next() {
		var share models.Share
		var amount int64
		if err := shareRows.Scan(&share.ExpenseID, &share.UserID, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		share.Amount = money.Cents(amount)
		if e, ok := index[share.ExpenseID]; ok {
			e.Shares = append(e.Shares, share)
		}
	}
	if err := shareRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shares: %w", err)
	}

	return expenses, nil
}

// GroupSpending aggregates the group's total spend and per-category totals.
func (s *SQLiteStore) GroupSpending(ctx context.Context, groupID string) (money.Cents, map[string]money.Cents, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT category, SUM(amount) FROM group_expenses WHERE group_id = ? GROUP BY category",
		groupID,
	)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to aggregate spending: %w", err)
	}
	defer rows.Close()

	var total money.Cents
	byCategory := make(map[string]money.Cents)
	for rows.Next() {
		var category string
		var sum int64
		if err := rows.Scan(&category, &sum); err != nil {
			return 0, nil, fmt.Errorf("failed to scan spending row: %w", err)
		}
		byCategory[category] = money.Cents(sum)
		total += money.Cents(sum)
	}
	if err := rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("failed to iterate spending rows: %w", err)
	}

	return total, byCategory, nil
}

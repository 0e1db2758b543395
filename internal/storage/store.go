// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/expensage/backend/internal/models"
	"github.com/expensage/backend/internal/money"
)

// ErrNotFound is returned when a requested record does not exist or is not
// visible to the requesting user.
var ErrNotFound = errors.New("not found")

// Store defines the interface for all persistence operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// Users.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// GetUsersByIDs returns a map of user ID to user; missing IDs are omitted.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
	// SetUserCredentials upgrades a placeholder user with a name and password.
	SetUserCredentials(ctx context.Context, id, name, passwordHash string) error

	// Groups and memberships.
	//
	// CreateGroup persists the group and the creator's membership as one
	// transaction. DeleteGroup removes the group and everything it owns
	// (shares, expenses, settlements, memberships) atomically, children
	// before parents.
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	GetGroupByInviteToken(ctx context.Context, token string) (*models.Group, error)
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)
	DeleteGroup(ctx context.Context, groupID string) error
	// AddMembership inserts the (group, user) pair, reporting false without
	// error when the membership already exists. Safe under concurrent
	// invite redemption: the unique constraint guarantees a single row.
	AddMembership(ctx context.Context, groupID, userID string) (added bool, err error)
	RemoveMembership(ctx context.Context, groupID, userID string) error
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	// ListMembers returns members in join order, which is the canonical
	// participant order for equal splits.
	ListMembers(ctx context.Context, groupID string) ([]*models.Member, error)

	// Expenses and settlements.
	CreateExpense(ctx context.Context, expense *models.Expense) error
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)
	// GroupSpending aggregates the group's total spend and per-category totals.
	GroupSpending(ctx context.Context, groupID string) (total money.Cents, byCategory map[string]money.Cents, err error)

	// Personal ledger. Update and delete operations are scoped to the owner
	// and return ErrNotFound when the row is absent or owned by someone else.
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	ListTransactions(ctx context.Context, userID string) ([]*models.Transaction, error)
	UpdateTransaction(ctx context.Context, tx *models.Transaction) error
	DeleteTransaction(ctx context.Context, userID, id string) error

	CreateBudget(ctx context.Context, budget *models.Budget) error
	ListBudgets(ctx context.Context, userID string) ([]*models.Budget, error)
	UpdateBudget(ctx context.Context, budget *models.Budget) error
	DeleteBudget(ctx context.Context, userID, id string) error

	CreateSubscription(ctx context.Context, sub *models.Subscription) error
	ListSubscriptions(ctx context.Context, userID string) ([]*models.Subscription, error)
	DeleteSubscription(ctx context.Context, userID, id string) error

	// Close releases any resources held by the store.
	Close() error
}

package models

import "github.com/expensage/backend/internal/money"

// Transaction types.
const (
	TransactionIncome  = "income"
	TransactionExpense = "expense"
)

// Transaction is an entry in a user's personal ledger, independent of groups.
type Transaction struct {
	ID          string      `json:"id"`
	UserID      string      `json:"userId"`
	Type        string      `json:"type"` // TransactionIncome or TransactionExpense
	Amount      money.Cents `json:"amount"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Date        int64       `json:"date"` // Unix timestamp of the transaction date
	CreatedAt   int64       `json:"createdAt"`
}

// Budget is a per-category spending limit for one user.
type Budget struct {
	ID       string      `json:"id"`
	UserID   string      `json:"userId"`
	Category string      `json:"category"`
	Amount   money.Cents `json:"amount"`
	Period   string      `json:"period"` // e.g. "monthly", "weekly"
}

// Subscription is a recurring payment tracked for one user.
type Subscription struct {
	ID          string      `json:"id"`
	UserID      string      `json:"userId"`
	Name        string      `json:"name"`
	Amount      money.Cents `json:"amount"`
	Frequency   string      `json:"frequency"` // e.g. "monthly", "yearly"
	NextPayment int64       `json:"nextPayment"`
	Category    string      `json:"category"` // defaults to "Other"
	Status      string      `json:"status"`   // e.g. "active", "paused"
	Icon        string      `json:"icon,omitempty"`
	CreatedAt   int64       `json:"createdAt"`
}

package models

import "github.com/expensage/backend/internal/money"

// Expense represents a cost incurred by a group, fronted by one member and
// split across members via Shares.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id"`

	// GroupID is the group this expense belongs to.
	GroupID string `json:"groupId"`

	// Description is the human-readable label (e.g. "Dinner", "Cab").
	Description string `json:"description"`

	// Amount is the total expense amount in cents. Always positive.
	Amount money.Cents `json:"amount"`

	// Category classifies the expense (e.g. "Food", "Travel").
	Category string `json:"category"`

	// PaidBy is the user ID of the member who fronted the full amount.
	PaidBy string `json:"paidBy"`

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64 `json:"createdAt"`

	// Shares is the per-member breakdown, in membership order.
	// The share amounts sum to Amount exactly.
	Shares []Share `json:"shares"`
}

// Share is one member's portion of an expense.
type Share struct {
	ExpenseID string      `json:"expenseId,omitempty"`
	UserID    string      `json:"userId"`
	Amount    money.Cents `json:"amount"`
}

// Settlement records a real-world payment between two members that offsets
// a balance. It does not move money itself.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string `json:"id"`

	// GroupID is the group this settlement belongs to.
	GroupID string `json:"groupId"`

	// FromUserID is the debtor settling up.
	FromUserID string `json:"fromUserId"`

	// ToUserID is the creditor being paid.
	ToUserID string `json:"toUserId"`

	// Amount is the payment amount in cents. Always positive.
	Amount money.Cents `json:"amount"`

	// Method is how the payment was made (e.g. "cash", "upi").
	Method string `json:"method"`

	// UpiLink is an optional payment link attached to the settlement.
	UpiLink string `json:"upiLink,omitempty"`

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64 `json:"createdAt"`
}

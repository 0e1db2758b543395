package calculator

import "github.com/expensage/backend/internal/money"

// ExpenseForBalance carries the minimal expense information needed for
// balance calculations.
type ExpenseForBalance struct {
	Amount money.Cents
	PaidBy string
	Shares []Share
}

// SettlementForBalance carries the minimal settlement information needed for
// balance calculations.
type SettlementForBalance struct {
	FromUserID string // debtor settling up
	ToUserID   string // creditor being paid
	Amount     money.Cents
}

// ComputeBalances replays a group's full expense and settlement history and
// returns each member's net balance. Positive means the group owes the member
// that amount in aggregate; negative means the member owes the group.
//
// For each expense, every shareholder's net drops by their share and the
// payer's net rises by the full amount; the payer's own consumption was
// already subtracted in the share pass, so the two together net out to
// "payer is owed total minus their own share". Each settlement moves value
// from debtor to creditor, amount for amount, so the sum over all members
// stays zero.
//
// Shares and settlements referencing a user not in members (someone who left
// the group after incurring history) are skipped; no entry is created for
// them. Callers should be aware that such history is excluded from the
// otherwise-conserved sum.
//
// The computation is read-only and commutative over expense ordering.
func ComputeBalances(members []string, expenses []ExpenseForBalance, settlements []SettlementForBalance) map[string]money.Cents {
	net := make(map[string]money.Cents, len(members))
	for _, m := range members {
		net[m] = 0
	}

	for _, e := range expenses {
		for _, s := range e.Shares {
			if _, ok := net[s.UserID]; ok {
				net[s.UserID] -= s.Amount
			}
		}
		if _, ok := net[e.PaidBy]; ok {
			net[e.PaidBy] += e.Amount
		}
	}

	for _, s := range settlements {
		if _, ok := net[s.FromUserID]; ok {
			net[s.FromUserID] += s.Amount
		}
		if _, ok := net[s.ToUserID]; ok {
			net[s.ToUserID] -= s.Amount
		}
	}

	return net
}

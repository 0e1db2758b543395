// Package calculator implements the group expense split and balance engine.
//
// Both entry points are pure functions over their inputs: ComputeShares turns
// a total amount into per-member shares, ComputeBalances replays a group's
// expense and settlement history into net balances. Persistence and membership
// resolution belong to the callers.
package calculator

import (
	"fmt"

	"github.com/expensage/backend/internal/money"
)

// ValidationError reports malformed or inconsistent split input. It is always
// recoverable by the caller correcting the input and is never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Share is one participant's portion of a split total.
type Share struct {
	UserID string
	Amount money.Cents
}

// ComputeShares divides total among participants.
//
// With custom == nil the total is split equally: each share is total/n rounded
// down to the cent, and the residual is added entirely to the last participant
// in the supplied order. The supplied order is therefore part of the contract;
// callers pass members in group-membership insertion order so the same inputs
// always produce the same shares.
//
// With custom supplied, every participant must have an entry and the entries
// must sum to total exactly; the amounts are returned verbatim. Entries for
// users outside participants are rejected.
//
// In both modes the returned shares sum to total exactly and are ordered as
// participants were supplied.
func ComputeShares(total money.Cents, participants []string, custom map[string]money.Cents) ([]Share, error) {
	if total <= 0 {
		return nil, validationErrorf("amount must be positive")
	}
	if len(participants) == 0 {
		return nil, validationErrorf("must have at least one participant")
	}

	if custom != nil {
		return customShares(total, participants, custom)
	}

	n := money.Cents(len(participants))
	perHead := total / n // total > 0, so truncation is a floor

	shares := make([]Share, len(participants))
	var sum money.Cents
	for i, p := range participants {
		shares[i] = Share{UserID: p, Amount: perHead}
		sum += perHead
	}
	// Residual goes to the last participant so the shares conserve the total.
	shares[len(shares)-1].Amount += total - sum

	return shares, nil
}

// customShares validates caller-supplied amounts; no rounding or adjustment
// is performed, the caller's numbers are authoritative.
func customShares(total money.Cents, participants []string, custom map[string]money.Cents) ([]Share, error) {
	if len(custom) > len(participants) {
		known := make(map[string]bool, len(participants))
		for _, p := range participants {
			known[p] = true
		}
		for id := range custom {
			if !known[id] {
				return nil, validationErrorf("split for %q who is not a participant", id)
			}
		}
	}

	shares := make([]Share, len(participants))
	var sum money.Cents
	for i, p := range participants {
		amount, ok := custom[p]
		if !ok {
			return nil, validationErrorf("missing split for member %q", p)
		}
		if amount < 0 {
			return nil, validationErrorf("split for member %q must not be negative", p)
		}
		shares[i] = Share{UserID: p, Amount: amount}
		sum += amount
	}
	if sum != total {
		return nil, validationErrorf("splits sum to %s, not the expense total %s", sum, total)
	}

	return shares, nil
}

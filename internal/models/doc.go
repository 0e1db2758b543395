// Package models defines the core domain models for the expensage backend.
//
// Two halves live here:
//
//   - Personal finance: Transaction, Budget, Subscription. Owned by a single
//     User and never shared.
//   - Expense sharing: Group, Membership, Expense, Share, Settlement. A Group
//     exclusively owns its expenses, shares, settlements and memberships
//     (cascade on delete); Users are shared across groups via Membership.
//
// Monetary fields are money.Cents throughout. Relationships are expressed as
// ID strings rather than pointers to avoid circular references.
package models

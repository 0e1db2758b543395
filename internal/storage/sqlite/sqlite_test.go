package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/expensage/backend/internal/models"
	"github.com/expensage/backend/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustCreateUser(t *testing.T, store *SQLiteStore, email, name string) *models.User {
	t.Helper()

	user := models.NewUser(email, name, "")
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func mustCreateGroup(t *testing.T, store *SQLiteStore, title, creatorID, token string) *models.Group {
	t.Helper()

	group := &models.Group{Title: title, CreatedBy: creatorID, InviteToken: token}
	if err := store.CreateGroup(context.Background(), group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return group
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateUser and GetUserByEmail", func(t *testing.T) {
		user := mustCreateUser(t, store, "alice@example.com", "Alice")

		got, err := store.GetUserByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got == nil {
			t.Fatal("Expected user, got nil")
		}
		if got.ID != user.ID {
			t.Errorf("ID mismatch: got %s, want %s", got.ID, user.ID)
		}
		if got.Name != "Alice" {
			t.Errorf("Name mismatch: got %s, want Alice", got.Name)
		}
	})

	t.Run("GetUserByEmail returns nil for unknown email", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "nobody@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got != nil {
			t.Errorf("Expected nil for unknown email, got %+v", got)
		}
	})

	t.Run("SetUserCredentials upgrades a placeholder", func(t *testing.T) {
		placeholder := mustCreateUser(t, store, "bob@example.com", "bob")
		if placeholder.PasswordHash != "" {
			t.Fatal("Expected placeholder without password hash")
		}

		if err := store.SetUserCredentials(ctx, placeholder.ID, "Bob", "hash123"); err != nil {
			t.Fatalf("SetUserCredentials failed: %v", err)
		}

		got, err := store.GetUserByID(ctx, placeholder.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if got.Name != "Bob" {
			t.Errorf("Name mismatch after upgrade: got %s, want Bob", got.Name)
		}
		if got.PasswordHash != "hash123" {
			t.Errorf("PasswordHash mismatch after upgrade: got %s", got.PasswordHash)
		}
	})

	t.Run("GetUsersByIDs omits missing IDs", func(t *testing.T) {
		carol := mustCreateUser(t, store, "carol@example.com", "Carol")

		users, err := store.GetUsersByIDs(ctx, []string{carol.ID, "missing-id"})
		if err != nil {
			t.Fatalf("GetUsersByIDs failed: %v", err)
		}
		if len(users) != 1 {
			t.Fatalf("Expected 1 user, got %d", len(users))
		}
		if users[carol.ID] == nil {
			t.Error("Expected carol in result map")
		}
	})
}

func TestGroups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	creator := mustCreateUser(t, store, "creator@example.com", "Creator")

	t.Run("CreateGroup adds creator membership atomically", func(t *testing.T) {
		group := mustCreateGroup(t, store, "Roommates", creator.ID, "token-a")

		if group.ID == "" {
			t.Error("Expected group ID to be generated")
		}
		if group.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}

		ok, err := store.IsMember(ctx, group.ID, creator.ID)
		if err != nil {
			t.Fatalf("IsMember failed: %v", err)
		}
		if !ok {
			t.Error("Expected creator to be a member")
		}

		members, err := store.ListMembers(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListMembers failed: %v", err)
		}
		if len(members) != 1 {
			t.Fatalf("Expected 1 member, got %d", len(members))
		}
		if members[0].UserID != creator.ID {
			t.Errorf("Member mismatch: got %s, want %s", members[0].UserID, creator.ID)
		}
	})

	t.Run("GetGroupByInviteToken", func(t *testing.T) {
		group := mustCreateGroup(t, store, "Trip", creator.ID, "token-b")

		got, err := store.GetGroupByInviteToken(ctx, "token-b")
		if err != nil {
			t.Fatalf("GetGroupByInviteToken failed: %v", err)
		}
		if got.ID != group.ID {
			t.Errorf("Group mismatch: got %s, want %s", got.ID, group.ID)
		}

		_, err = store.GetGroupByInviteToken(ctx, "no-such-token")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("AddMembership is idempotent", func(t *testing.T) {
		group := mustCreateGroup(t, store, "Idempotent", creator.ID, "token-c")
		joiner := mustCreateUser(t, store, "joiner@example.com", "Joiner")

		added, err := store.AddMembership(ctx, group.ID, joiner.ID)
		if err != nil {
			t.Fatalf("AddMembership failed: %v", err)
		}
		if !added {
			t.Error("Expected first AddMembership to report added")
		}

		added, err = store.AddMembership(ctx, group.ID, joiner.ID)
		if err != nil {
			t.Fatalf("Second AddMembership failed: %v", err)
		}
		if added {
			t.Error("Expected second AddMembership to report not added")
		}

		members, err := store.ListMembers(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListMembers failed: %v", err)
		}
		if len(members) != 2 {
			t.Errorf("Expected exactly 2 members, got %d", len(members))
		}
	})

	t.Run("RemoveMembership of a non-member returns ErrNotFound", func(t *testing.T) {
		group := mustCreateGroup(t, store, "Remove", creator.ID, "token-d")

		err := store.RemoveMembership(ctx, group.ID, "not-a-member")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListGroupsForUser only includes memberships", func(t *testing.T) {
		outsider := mustCreateUser(t, store, "outsider@example.com", "Outsider")

		groups, err := store.ListGroupsForUser(ctx, outsider.ID)
		if err != nil {
			t.Fatalf("ListGroupsForUser failed: %v", err)
		}
		if len(groups) != 0 {
			t.Errorf("Expected no groups for outsider, got %d", len(groups))
		}
	})
}

func TestExpensesAndSettlements(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, store, "alice@example.com", "Alice")
	bob := mustCreateUser(t, store, "bob@example.com", "Bob")
	group := mustCreateGroup(t, store, "Dinner Club", alice.ID, "token-e")
	if _, err := store.AddMembership(ctx, group.ID, bob.ID); err != nil {
		t.Fatalf("AddMembership failed: %v", err)
	}

	t.Run("CreateExpense preserves share order", func(t *testing.T) {
		expense := &models.Expense{
			GroupID:     group.ID,
			Description: "Dinner",
			Amount:      1001,
			Category:    "Food",
			PaidBy:      alice.ID,
			Shares: []models.Share{
				{UserID: alice.ID, Amount: 500},
				{UserID: bob.ID, Amount: 501},
			},
		}
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if expense.ID == "" {
			t.Error("Expected expense ID to be generated")
		}

		expenses, err := store.ListExpensesByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListExpensesByGroup failed: %v", err)
		}
		if len(expenses) != 1 {
			t.Fatalf("Expected 1 expense, got %d", len(expenses))
		}

		got := expenses[0]
		if got.Amount != 1001 {
			t.Errorf("Amount mismatch: got %d, want 1001", got.Amount)
		}
		if len(got.Shares) != 2 {
			t.Fatalf("Expected 2 shares, got %d", len(got.Shares))
		}
		if got.Shares[0].UserID != alice.ID || got.Shares[0].Amount != 500 {
			t.Errorf("First share mismatch: got %+v", got.Shares[0])
		}
		if got.Shares[1].UserID != bob.ID || got.Shares[1].Amount != 501 {
			t.Errorf("Second share mismatch: got %+v", got.Shares[1])
		}
	})

	t.Run("CreateSettlement roundtrip", func(t *testing.T) {
		settlement := &models.Settlement{
			GroupID:    group.ID,
			FromUserID: bob.ID,
			ToUserID:   alice.ID,
			Amount:     501,
			Method:     "cash",
		}
		if err := store.CreateSettlement(ctx, settlement); err != nil {
			t.Fatalf("CreateSettlement failed: %v", err)
		}

		settlements, err := store.ListSettlementsByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListSettlementsByGroup failed: %v", err)
		}
		if len(settlements) != 1 {
			t.Fatalf("Expected 1 settlement, got %d", len(settlements))
		}
		got := settlements[0]
		if got.FromUserID != bob.ID || got.ToUserID != alice.ID || got.Amount != 501 {
			t.Errorf("Settlement mismatch: got %+v", got)
		}
		if got.UpiLink != "" {
			t.Errorf("Expected empty UpiLink, got %q", got.UpiLink)
		}
	})

	t.Run("GroupSpending aggregates by category", func(t *testing.T) {
		expense := &models.Expense{
			GroupID:     group.ID,
			Description: "Cab",
			Amount:      600,
			Category:    "Travel",
			PaidBy:      bob.ID,
			Shares: []models.Share{
				{UserID: alice.ID, Amount: 300},
				{UserID: bob.ID, Amount: 300},
			},
		}
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		total, byCategory, err := store.GroupSpending(ctx, group.ID)
		if err != nil {
			t.Fatalf("GroupSpending failed: %v", err)
		}
		if total != 1601 {
			t.Errorf("Total mismatch: got %d, want 1601", total)
		}
		if byCategory["Food"] != 1001 {
			t.Errorf("Food category mismatch: got %d, want 1001", byCategory["Food"])
		}
		if byCategory["Travel"] != 600 {
			t.Errorf("Travel category mismatch: got %d, want 600", byCategory["Travel"])
		}
	})

	t.Run("DeleteGroup removes everything it owns", func(t *testing.T) {
		if err := store.DeleteGroup(ctx, group.ID); err != nil {
			t.Fatalf("DeleteGroup failed: %v", err)
		}

		if _, err := store.GetGroup(ctx, group.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound for deleted group, got %v", err)
		}

		expenses, err := store.ListExpensesByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListExpensesByGroup failed: %v", err)
		}
		if len(expenses) != 0 {
			t.Errorf("Expected no expenses after delete, got %d", len(expenses))
		}

		settlements, err := store.ListSettlementsByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListSettlementsByGroup failed: %v", err)
		}
		if len(settlements) != 0 {
			t.Errorf("Expected no settlements after delete, got %d", len(settlements))
		}

		ok, err := store.IsMember(ctx, group.ID, alice.ID)
		if err != nil {
			t.Fatalf("IsMember failed: %v", err)
		}
		if ok {
			t.Error("Expected memberships to be gone after delete")
		}

		if err := store.DeleteGroup(ctx, group.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestLedger(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	owner := mustCreateUser(t, store, "owner@example.com", "Owner")
	other := mustCreateUser(t, store, "other@example.com", "Other")

	t.Run("Transaction CRUD is owner-scoped", func(t *testing.T) {
		tx := &models.Transaction{
			UserID:      owner.ID,
			Type:        models.TransactionExpense,
			Amount:      2500,
			Category:    "Food",
			Description: "Groceries",
			Date:        1700000000,
		}
		if err := store.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}

		list, err := store.ListTransactions(ctx, owner.ID)
		if err != nil {
			t.Fatalf("ListTransactions failed: %v", err)
		}
		if len(list) != 1 {
			t.Fatalf("Expected 1 transaction, got %d", len(list))
		}

		// Another user cannot see, update or delete it.
		otherList, err := store.ListTransactions(ctx, other.ID)
		if err != nil {
			t.Fatalf("ListTransactions failed: %v", err)
		}
		if len(otherList) != 0 {
			t.Errorf("Expected no transactions for other user, got %d", len(otherList))
		}

		stolen := *tx
		stolen.UserID = other.ID
		stolen.Amount = 1
		if err := store.UpdateTransaction(ctx, &stolen); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound updating another user's transaction, got %v", err)
		}
		if err := store.DeleteTransaction(ctx, other.ID, tx.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound deleting another user's transaction, got %v", err)
		}

		tx.Amount = 3000
		if err := store.UpdateTransaction(ctx, tx); err != nil {
			t.Fatalf("UpdateTransaction failed: %v", err)
		}
		if err := store.DeleteTransaction(ctx, owner.ID, tx.ID); err != nil {
			t.Fatalf("DeleteTransaction failed: %v", err)
		}
	})

	t.Run("Budget CRUD", func(t *testing.T) {
		budget := &models.Budget{
			UserID:   owner.ID,
			Category: "Food",
			Amount:   50000,
			Period:   "monthly",
		}
		if err := store.CreateBudget(ctx, budget); err != nil {
			t.Fatalf("CreateBudget failed: %v", err)
		}

		budget.Amount = 60000
		if err := store.UpdateBudget(ctx, budget); err != nil {
			t.Fatalf("UpdateBudget failed: %v", err)
		}

		budgets, err := store.ListBudgets(ctx, owner.ID)
		if err != nil {
			t.Fatalf("ListBudgets failed: %v", err)
		}
		if len(budgets) != 1 || budgets[0].Amount != 60000 {
			t.Errorf("Budget mismatch: got %+v", budgets)
		}

		if err := store.DeleteBudget(ctx, other.ID, budget.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound deleting another user's budget, got %v", err)
		}
		if err := store.DeleteBudget(ctx, owner.ID, budget.ID); err != nil {
			t.Fatalf("DeleteBudget failed: %v", err)
		}
	})

	t.Run("Subscription create and delete", func(t *testing.T) {
		sub := &models.Subscription{
			UserID:      owner.ID,
			Name:        "Streaming",
			Amount:      999,
			Frequency:   "monthly",
			NextPayment: 1700000000,
			Category:    "Entertainment",
			Status:      "active",
		}
		if err := store.CreateSubscription(ctx, sub); err != nil {
			t.Fatalf("CreateSubscription failed: %v", err)
		}

		subs, err := store.ListSubscriptions(ctx, owner.ID)
		if err != nil {
			t.Fatalf("ListSubscriptions failed: %v", err)
		}
		if len(subs) != 1 || subs[0].Name != "Streaming" {
			t.Errorf("Subscription mismatch: got %+v", subs)
		}

		if err := store.DeleteSubscription(ctx, owner.ID, sub.ID); err != nil {
			t.Fatalf("DeleteSubscription failed: %v", err)
		}
	})
}

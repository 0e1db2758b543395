package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expensage/backend/internal/calculator"
	"github.com/expensage/backend/internal/models"
	"github.com/expensage/backend/internal/money"
	"github.com/expensage/backend/internal/storage/sqlite"
)

func newTestGroupService(t *testing.T) (*GroupService, *sqlite.SQLiteStore) {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return NewGroupService(store, "https://app.example.com/"), store
}

func addUser(t *testing.T, store *sqlite.SQLiteStore, email, name string) *models.User {
	t.Helper()

	user := models.NewUser(email, name, "hash")
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func TestCreateGroupAndInviteLink(t *testing.T) {
	svc, store := newTestGroupService(t)
	ctx := context.Background()

	creator := addUser(t, store, "creator@example.com", "Creator")

	group, err := svc.CreateGroup(ctx, creator.ID, "Roommates")
	require.NoError(t, err)
	assert.NotEmpty(t, group.ID)
	assert.Len(t, group.InviteToken, 32)

	link, err := svc.InviteLink(ctx, group.ID, creator.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://app.example.com/groups/join/"+group.InviteToken, link)

	outsider := addUser(t, store, "outsider@example.com", "Outsider")
	_, err = svc.InviteLink(ctx, group.ID, outsider.ID)
	assert.ErrorIs(t, err, ErrNotAMember)
}

func TestJoinByInviteIsIdempotent(t *testing.T) {
	svc, store := newTestGroupService(t)
	ctx := context.Background()

	creator := addUser(t, store, "creator@example.com", "Creator")
	joiner := addUser(t, store, "joiner@example.com", "Joiner")

	group, err := svc.CreateGroup(ctx, creator.ID, "Trip")
	require.NoError(t, err)

	joined, alreadyMember, err := svc.JoinByInvite(ctx, group.InviteToken, joiner.ID)
	require.NoError(t, err)
	assert.Equal(t, group.ID, joined.ID)
	assert.False(t, alreadyMember)

	_, alreadyMember, err = svc.JoinByInvite(ctx, group.InviteToken, joiner.ID)
	require.NoError(t, err)
	assert.True(t, alreadyMember)

	members, err := svc.ListMembers(ctx, group.ID, creator.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestAddMemberByEmailCreatesPlaceholder(t *testing.T) {
	svc, store := newTestGroupService(t)
	ctx := context.Background()

	creator := addUser(t, store, "creator@example.com", "Creator")
	group, err := svc.CreateGroup(ctx, creator.ID, "Flatmates")
	require.NoError(t, err)

	member, err := svc.AddMemberByEmail(ctx, group.ID, creator.ID, "newcomer@example.com")
	require.NoError(t, err)
	assert.Equal(t, "newcomer", member.Name)
	assert.Equal(t, "newcomer@example.com", member.Email)

	// The placeholder exists but cannot log in yet.
	user, err := store.GetUserByEmail(ctx, "newcomer@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Empty(t, user.PasswordHash)

	_, err = svc.AddMemberByEmail(ctx, group.ID, creator.ID, "newcomer@example.com")
	assert.ErrorIs(t, err, ErrAlreadyMember)
}

func TestRecordExpenseEqualSplit(t *testing.T) {
	svc, store := newTestGroupService(t)
	ctx := context.Background()

	creator := addUser(t, store, "a@example.com", "A")
	group, err := svc.CreateGroup(ctx, creator.ID, "Dinner")
	require.NoError(t, err)
	_, err = svc.AddMemberByEmail(ctx, group.ID, creator.ID, "b@example.com")
	require.NoError(t, err)
	_, err = svc.AddMemberByEmail(ctx, group.ID, creator.ID, "c@example.com")
	require.NoError(t, err)

	expense, err := svc.RecordExpense(ctx, group.ID, creator.ID, ExpenseInput{
		Description: "Dinner",
		Amount:      1000,
		Category:    "Food",
		PaidBy:      creator.ID,
	})
	require.NoError(t, err)
	require.Len(t, expense.Shares, 3)

	var sum money.Cents
	for _, share := range expense.Shares {
		sum += share.Amount
	}
	assert.Equal(t, money.Cents(1000), sum)

	// The residual cent lands on the last member in membership order.
	members, err := svc.ListMembers(ctx, group.ID, creator.ID)
	require.NoError(t, err)
	last := members[len(members)-1].UserID
	for _, share := range expense.Shares {
		if share.UserID == last {
			assert.Equal(t, money.Cents(334), share.Amount)
		} else {
			assert.Equal(t, money.Cents(333), share.Amount)
		}
	}
}

func TestRecordExpenseCustomSplit(t *testing.T) {
	svc, store := newTestGroupService(t)
	ctx := context.Background()

	creator := addUser(t, store, "a@example.com", "A")
	group, err := svc.CreateGroup(ctx, creator.ID, "Dinner")
	require.NoError(t, err)
	other, err := svc.AddMemberByEmail(ctx, group.ID, creator.ID, "b@example.com")
	require.NoError(t, err)

	expense, err := svc.RecordExpense(ctx, group.ID, creator.ID, ExpenseInput{
		Description: "Groceries",
		Amount:      1000,
		Category:    "Food",
		PaidBy:      creator.ID,
		Splits: map[string]money.Cents{
			creator.ID:   300,
			other.UserID: 700,
		},
	})
	require.NoError(t, err)

	byUser := make(map[string]money.Cents)
	for _, share := range expense.Shares {
		byUser[share.UserID] = share.Amount
	}
	assert.Equal(t, money.Cents(300), byUser[creator.ID])
	assert.Equal(t, money.Cents(700), byUser[other.UserID])

	// Splits that do not cover the total are rejected.
	_, err = svc.RecordExpense(ctx, group.ID, creator.ID, ExpenseInput{
		Description: "Bad",
		Amount:      1000,
		Category:    "Food",
		PaidBy:      creator.ID,
		Splits: map[string]money.Cents{
			creator.ID:   300,
			other.UserID: 600,
		},
	})
	var verr *calculator.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestRecordExpenseRequiresMembership(t *testing.T) {
	svc, store := newTestGroupService(t)
	ctx := context.Background()

	creator := addUser(t, store, "a@example.com", "A")
	outsider := addUser(t, store, "x@example.com", "X")
	group, err := svc.CreateGroup(ctx, creator.ID, "Members Only")
	require.NoError(t, err)

	_, err = svc.RecordExpense(ctx, group.ID, outsider.ID, ExpenseInput{
		Description: "Dinner", Amount: 1000, Category: "Food", PaidBy: outsider.ID,
	})
	assert.ErrorIs(t, err, ErrNotAMember)

	// A member cannot put the payment on a non-member either.
	_, err = svc.RecordExpense(ctx, group.ID, creator.ID, ExpenseInput{
		Description: "Dinner", Amount: 1000, Category: "Food", PaidBy: outsider.ID,
	})
	assert.ErrorIs(t, err, ErrNotAMember)
}

func TestBalancesAndSettleUp(t *testing.T) {
	svc, store := newTestGroupService(t)
	ctx := context.Background()

	payer := addUser(t, store, "payer@example.com", "Payer")
	group, err := svc.CreateGroup(ctx, payer.ID, "Weekend")
	require.NoError(t, err)
	debtor, err := svc.AddMemberByEmail(ctx, group.ID, payer.ID, "debtor@example.com")
	require.NoError(t, err)

	_, err = svc.RecordExpense(ctx, group.ID, payer.ID, ExpenseInput{
		Description: "Hotel",
		Amount:      2000,
		Category:    "Travel",
		PaidBy:      payer.ID,
	})
	require.NoError(t, err)

	balances, err := svc.Balances(ctx, group.ID, payer.ID)
	require.NoError(t, err)
	require.Len(t, balances, 2)

	byUser := make(map[string]money.Cents)
	for _, b := range balances {
		byUser[b.Member.UserID] = b.Net
	}
	assert.Equal(t, money.Cents(1000), byUser[payer.ID])
	assert.Equal(t, money.Cents(-1000), byUser[debtor.UserID])

	_, err = svc.SettleUp(ctx, group.ID, debtor.UserID, payer.ID, 1000, "cash", "")
	require.NoError(t, err)

	balances, err = svc.Balances(ctx, group.ID, payer.ID)
	require.NoError(t, err)
	for _, b := range balances {
		assert.Equal(t, money.Cents(0), b.Net, "member %s should be settled", b.Member.UserID)
	}
}

func TestSettleUpRejectsSelfAndNonMembers(t *testing.T) {
	svc, store := newTestGroupService(t)
	ctx := context.Background()

	creator := addUser(t, store, "a@example.com", "A")
	outsider := addUser(t, store, "x@example.com", "X")
	group, err := svc.CreateGroup(ctx, creator.ID, "Solo")
	require.NoError(t, err)

	_, err = svc.SettleUp(ctx, group.ID, creator.ID, creator.ID, 100, "cash", "")
	assert.ErrorIs(t, err, ErrSelfSettlement)

	_, err = svc.SettleUp(ctx, group.ID, creator.ID, outsider.ID, 100, "cash", "")
	assert.ErrorIs(t, err, ErrNotAMember)
}

func TestRemoveMemberAndLeave(t *testing.T) {
	svc, store := newTestGroupService(t)
	ctx := context.Background()

	creator := addUser(t, store, "a@example.com", "A")
	group, err := svc.CreateGroup(ctx, creator.ID, "Churn")
	require.NoError(t, err)
	member, err := svc.AddMemberByEmail(ctx, group.ID, creator.ID, "b@example.com")
	require.NoError(t, err)

	err = svc.RemoveMember(ctx, group.ID, creator.ID, creator.ID)
	assert.ErrorIs(t, err, ErrUseLeave)

	require.NoError(t, svc.RemoveMember(ctx, group.ID, creator.ID, member.UserID))
	require.NoError(t, svc.Leave(ctx, group.ID, creator.ID))

	groups, err := svc.ListGroups(ctx, creator.ID)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestDeleteGroupCreatorOnly(t *testing.T) {
	svc, store := newTestGroupService(t)
	ctx := context.Background()

	creator := addUser(t, store, "a@example.com", "A")
	group, err := svc.CreateGroup(ctx, creator.ID, "Doomed")
	require.NoError(t, err)
	member, err := svc.AddMemberByEmail(ctx, group.ID, creator.ID, "b@example.com")
	require.NoError(t, err)

	err = svc.DeleteGroup(ctx, group.ID, member.UserID)
	assert.ErrorIs(t, err, ErrNotCreator)

	require.NoError(t, svc.DeleteGroup(ctx, group.ID, creator.ID))

	groups, err := svc.ListGroups(ctx, creator.ID)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestAnalytics(t *testing.T) {
	svc, store := newTestGroupService(t)
	ctx := context.Background()

	creator := addUser(t, store, "a@example.com", "A")
	group, err := svc.CreateGroup(ctx, creator.ID, "Stats")
	require.NoError(t, err)
	other, err := svc.AddMemberByEmail(ctx, group.ID, creator.ID, "b@example.com")
	require.NoError(t, err)

	for i := 0; i < 12; i++ {
		category := "Food"
		if i%2 == 0 {
			category = "Travel"
		}
		_, err = svc.RecordExpense(ctx, group.ID, creator.ID, ExpenseInput{
			Description: "Item " + strings.Repeat("x", i+1),
			Amount:      100,
			Category:    category,
			PaidBy:      creator.ID,
		})
		require.NoError(t, err)
	}
	_, err = svc.SettleUp(ctx, group.ID, other.UserID, creator.ID, 50, "upi", "upi://pay")
	require.NoError(t, err)

	analytics, err := svc.Analytics(ctx, group.ID, creator.ID)
	require.NoError(t, err)
	assert.Len(t, analytics.RecentExpenses, 10)
	assert.Len(t, analytics.RecentSettlements, 1)
	assert.Equal(t, money.Cents(1200), analytics.TotalSpent)
	assert.Equal(t, money.Cents(600), analytics.CategoryBreakdown["Food"])
	assert.Equal(t, money.Cents(600), analytics.CategoryBreakdown["Travel"])
}

package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/expensage/backend/internal/calculator"
	"github.com/expensage/backend/internal/models"
	"github.com/expensage/backend/internal/money"
	"github.com/expensage/backend/internal/storage"
)

var (
	// ErrNotAMember is returned when an operation references a requester,
	// payer or split participant who is not currently a member of the group.
	ErrNotAMember = errors.New("not a group member")

	// ErrAlreadyMember is returned when adding someone who already belongs
	// to the group.
	ErrAlreadyMember = errors.New("already a member")

	// ErrNotCreator is returned when someone other than the creator tries
	// to delete a group.
	ErrNotCreator = errors.New("only the group creator can delete this group")

	// ErrUseLeave is returned when a member tries to remove themselves via
	// the remove-member operation instead of leaving.
	ErrUseLeave = errors.New("use leave group to remove yourself")

	// ErrSelfSettlement is returned when a settlement names the same user
	// on both sides.
	ErrSelfSettlement = errors.New("cannot settle up with yourself")
)

// GroupService implements group management, expense recording and balance
// reporting.
type GroupService struct {
	store       storage.Store
	frontendURL string
}

// NewGroupService creates a new GroupService with the given storage backend.
// frontendURL is the base URL used to build invite links.
func NewGroupService(store storage.Store, frontendURL string) *GroupService {
	return &GroupService{store: store, frontendURL: strings.TrimRight(frontendURL, "/")}
}

// newInviteToken returns a 32-character hex token.
func newInviteToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate invite token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// requireMember returns ErrNotAMember unless userID belongs to the group.
func (s *GroupService) requireMember(ctx context.Context, groupID, userID string) error {
	ok, err := s.store.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAMember
	}
	return nil
}

// CreateGroup creates a group with the creator as its first member and a
// fresh invite token.
func (s *GroupService) CreateGroup(ctx context.Context, creatorID, title string) (*models.Group, error) {
	token, err := newInviteToken()
	if err != nil {
		return nil, err
	}

	group := &models.Group{
		Title:       title,
		CreatedBy:   creatorID,
		InviteToken: token,
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, err
	}

	slog.Info("group created", "group_id", group.ID, "created_by", creatorID)
	return group, nil
}

// ListGroups returns the groups the user belongs to.
func (s *GroupService) ListGroups(ctx context.Context, userID string) ([]*models.Group, error) {
	return s.store.ListGroupsForUser(ctx, userID)
}

// InviteLink returns the join URL for a group. Members only.
func (s *GroupService) InviteLink(ctx context.Context, groupID, userID string) (string, error) {
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return "", err
	}
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/groups/join/%s", s.frontendURL, group.InviteToken), nil
}

// JoinByInvite redeems an invite token for the user. Redeeming twice is not
// an error: the second attempt reports alreadyMember=true and leaves exactly
// one membership behind, even under concurrent redemption.
func (s *GroupService) JoinByInvite(ctx context.Context, token, userID string) (group *models.Group, alreadyMember bool, err error) {
	group, err = s.store.GetGroupByInviteToken(ctx, token)
	if err != nil {
		return nil, false, err
	}

	added, err := s.store.AddMembership(ctx, group.ID, userID)
	if err != nil {
		return nil, false, err
	}
	if added {
		slog.Info("invite redeemed", "group_id", group.ID, "user_id", userID)
	}
	return group, !added, nil
}

// AddMemberByEmail adds a user to the group by email. If no account exists
// for the email, a placeholder user is created with the local part of the
// address as its name; the placeholder can later claim the account by
// registering with the same email.
func (s *GroupService) AddMemberByEmail(ctx context.Context, groupID, requesterID, email string) (*models.Member, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, groupID, requesterID); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		name := email
		if at := strings.Index(email, "@"); at > 0 {
			name = email[:at]
		}
		user = models.NewUser(email, name, "")
		if err := s.store.CreateUser(ctx, user); err != nil {
			return nil, err
		}
		slog.Info("placeholder user created", "user_id", user.ID, "email", email)
	}

	added, err := s.store.AddMembership(ctx, groupID, user.ID)
	if err != nil {
		return nil, err
	}
	if !added {
		return nil, ErrAlreadyMember
	}

	return &models.Member{UserID: user.ID, Name: user.Name, Email: user.Email}, nil
}

// ListMembers returns the group's members in join order. Members only.
func (s *GroupService) ListMembers(ctx context.Context, groupID, requesterID string) ([]*models.Member, error) {
	if err := s.requireMember(ctx, groupID, requesterID); err != nil {
		return nil, err
	}
	return s.store.ListMembers(ctx, groupID)
}

// Leave removes the requester's own membership.
func (s *GroupService) Leave(ctx context.Context, groupID, userID string) error {
	return s.store.RemoveMembership(ctx, groupID, userID)
}

// RemoveMember removes another member from the group. Any member may do
// this; removing oneself goes through Leave instead.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, requesterID, memberID string) error {
	if err := s.requireMember(ctx, groupID, requesterID); err != nil {
		return err
	}
	if requesterID == memberID {
		return ErrUseLeave
	}
	return s.store.RemoveMembership(ctx, groupID, memberID)
}

// DeleteGroup deletes a group and everything it owns. Creator only; the
// store performs the cascade atomically.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID, requesterID string) error {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.CreatedBy != requesterID {
		return ErrNotCreator
	}
	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		return err
	}
	slog.Info("group deleted", "group_id", groupID)
	return nil
}

// ExpenseInput is the request to record a group expense. Splits is optional;
// when nil the amount is divided equally among all current members.
type ExpenseInput struct {
	Description string
	Amount      money.Cents
	Category    string
	PaidBy      string
	Splits      map[string]money.Cents
}

// RecordExpense resolves the group's current membership, computes or
// validates the per-member shares, and persists the expense with its shares
// atomically. The payer and every custom-split participant must be current
// members.
func (s *GroupService) RecordExpense(ctx context.Context, groupID, requesterID string, in ExpenseInput) (*models.Expense, error) {
	if err := s.requireMember(ctx, groupID, requesterID); err != nil {
		return nil, err
	}

	members, err := s.store.ListMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}

	memberIDs := make([]string, len(members))
	memberSet := make(map[string]bool, len(members))
	for i, m := range members {
		memberIDs[i] = m.UserID
		memberSet[m.UserID] = true
	}

	if !memberSet[in.PaidBy] {
		return nil, fmt.Errorf("payer: %w", ErrNotAMember)
	}
	for id := range in.Splits {
		if !memberSet[id] {
			return nil, fmt.Errorf("split participant %q: %w", id, ErrNotAMember)
		}
	}

	shares, err := calculator.ComputeShares(in.Amount, memberIDs, in.Splits)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		GroupID:     groupID,
		Description: in.Description,
		Amount:      in.Amount,
		Category:    in.Category,
		PaidBy:      in.PaidBy,
		Shares:      make([]models.Share, len(shares)),
	}
	for i, share := range shares {
		expense.Shares[i] = models.Share{UserID: share.UserID, Amount: share.Amount}
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, err
	}

	slog.Info("expense recorded",
		"group_id", groupID,
		"expense_id", expense.ID,
		"amount", expense.Amount,
		"paid_by", expense.PaidBy,
		"shares", len(expense.Shares),
	)
	return expense, nil
}

// ListExpenses returns the group's expenses with shares, newest first.
func (s *GroupService) ListExpenses(ctx context.Context, groupID, requesterID string) ([]*models.Expense, error) {
	if err := s.requireMember(ctx, groupID, requesterID); err != nil {
		return nil, err
	}
	return s.store.ListExpensesByGroup(ctx, groupID)
}

// MemberBalance is one member's net position within a group. Positive means
// the group owes the member; negative means the member owes the group.
type MemberBalance struct {
	Member models.Member `json:"user"`
	Net    money.Cents   `json:"net"`
}

// Balances loads the group's current membership, full expense and settlement
// history, and returns each member's net balance in membership order.
// History referencing departed members is excluded by the calculator.
func (s *GroupService) Balances(ctx context.Context, groupID, requesterID string) ([]MemberBalance, error) {
	if err := s.requireMember(ctx, groupID, requesterID); err != nil {
		return nil, err
	}

	members, err := s.store.ListMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	settlements, err := s.store.ListSettlementsByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	memberIDs := make([]string, len(members))
	for i, m := range members {
		memberIDs[i] = m.UserID
	}

	calcExpenses := make([]calculator.ExpenseForBalance, len(expenses))
	for i, e := range expenses {
		shares := make([]calculator.Share, len(e.Shares))
		for j, sh := range e.Shares {
			shares[j] = calculator.Share{UserID: sh.UserID, Amount: sh.Amount}
		}
		calcExpenses[i] = calculator.ExpenseForBalance{
			Amount: e.Amount,
			PaidBy: e.PaidBy,
			Shares: shares,
		}
	}

	calcSettlements := make([]calculator.SettlementForBalance, len(settlements))
	for i, st := range settlements {
		calcSettlements[i] = calculator.SettlementForBalance{
			FromUserID: st.FromUserID,
			ToUserID:   st.ToUserID,
			Amount:     st.Amount,
		}
	}

	net := calculator.ComputeBalances(memberIDs, calcExpenses, calcSettlements)

	balances := make([]MemberBalance, len(members))
	for i, m := range members {
		balances[i] = MemberBalance{Member: *m, Net: net[m.UserID]}
	}
	return balances, nil
}

// SettleUp records a payment from the requester to another member.
func (s *GroupService) SettleUp(ctx context.Context, groupID, fromID, toID string, amount money.Cents, method, upiLink string) (*models.Settlement, error) {
	if fromID == toID {
		return nil, ErrSelfSettlement
	}
	if err := s.requireMember(ctx, groupID, fromID); err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, groupID, toID); err != nil {
		return nil, fmt.Errorf("recipient: %w", ErrNotAMember)
	}

	settlement := &models.Settlement{
		GroupID:    groupID,
		FromUserID: fromID,
		ToUserID:   toID,
		Amount:     amount,
		Method:     method,
		UpiLink:    upiLink,
	}
	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		return nil, err
	}

	slog.Info("settlement recorded",
		"group_id", groupID,
		"from", fromID,
		"to", toID,
		"amount", amount,
	)
	return settlement, nil
}

// GroupAnalytics summarizes a group's recent activity and spending.
type GroupAnalytics struct {
	RecentExpenses    []*models.Expense    `json:"recentExpenses"`
	RecentSettlements []*models.Settlement `json:"recentSettlements"`
	TotalSpent        money.Cents          `json:"totalSpent"`
	CategoryBreakdown map[string]money.Cents `json:"categoryBreakdown"`
}

// analyticsRecentLimit bounds the recent-activity lists.
const analyticsRecentLimit = 10

// Analytics returns the last ten expenses and settlements plus spending
// totals. Members only.
func (s *GroupService) Analytics(ctx context.Context, groupID, requesterID string) (*GroupAnalytics, error) {
	if err := s.requireMember(ctx, groupID, requesterID); err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	settlements, err := s.store.ListSettlementsByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	total, byCategory, err := s.store.GroupSpending(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if len(expenses) > analyticsRecentLimit {
		expenses = expenses[:analyticsRecentLimit]
	}
	if len(settlements) > analyticsRecentLimit {
		settlements = settlements[:analyticsRecentLimit]
	}

	return &GroupAnalytics{
		RecentExpenses:    expenses,
		RecentSettlements: settlements,
		TotalSpent:        total,
		CategoryBreakdown: byCategory,
	}, nil
}

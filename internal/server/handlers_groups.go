package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/expensage/backend/internal/middleware"
	"github.com/expensage/backend/internal/models"
	"github.com/expensage/backend/internal/money"
	"github.com/expensage/backend/internal/service"
)

type createGroupRequest struct {
	Title string `json:"title" validate:"required"`
}

type addMemberRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type recordExpenseRequest struct {
	Description string      `json:"description" validate:"required"`
	Amount      money.Cents `json:"amount" validate:"required,gt=0"`
	Category    string      `json:"category" validate:"required"`
	PaidBy      string      `json:"paidBy" validate:"required"`
	// Splits is optional; when present each entry is {userId, amount} and
	// the amounts must sum to the expense amount exactly.
	Splits []splitEntry `json:"splits" validate:"omitempty,dive"`
}

type splitEntry struct {
	UserID string      `json:"userId" validate:"required"`
	Amount money.Cents `json:"amount"`
}

type settleRequest struct {
	ToUserID string      `json:"toUserId" validate:"required"`
	Amount   money.Cents `json:"amount" validate:"required,gt=0"`
	Method   string      `json:"method" validate:"required"`
	UpiLink  string      `json:"upiLink"`
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	groups, err := s.groups.ListGroups(r.Context(), userID)
	if err != nil {
		serviceError(w, err)
		return
	}
	if groups == nil {
		groups = []*models.Group{}
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req createGroupRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	group, err := s.groups.CreateGroup(r.Context(), userID, req.Title)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := s.groups.DeleteGroup(r.Context(), chi.URLParam(r, "groupID"), userID); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleInviteLink(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	link, err := s.groups.InviteLink(r.Context(), chi.URLParam(r, "groupID"), userID)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"inviteLink": link})
}

func (s *Server) handleJoinGroup(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	group, alreadyMember, err := s.groups.JoinByInvite(r.Context(), chi.URLParam(r, "inviteToken"), userID)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"groupId":       group.ID,
		"alreadyMember": alreadyMember,
	})
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	members, err := s.groups.ListMembers(r.Context(), chi.URLParam(r, "groupID"), userID)
	if err != nil {
		serviceError(w, err)
		return
	}
	if members == nil {
		members = []*models.Member{}
	}
	writeJSON(w, http.StatusOK, members)
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req addMemberRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	member, err := s.groups.AddMemberByEmail(r.Context(), chi.URLParam(r, "groupID"), userID, req.Email)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	err := s.groups.RemoveMember(r.Context(), chi.URLParam(r, "groupID"), userID, chi.URLParam(r, "memberID"))
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleLeaveGroup(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := s.groups.Leave(r.Context(), chi.URLParam(r, "groupID"), userID); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	expenses, err := s.groups.ListExpenses(r.Context(), chi.URLParam(r, "groupID"), userID)
	if err != nil {
		serviceError(w, err)
		return
	}
	if expenses == nil {
		expenses = []*models.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleRecordExpense(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req recordExpenseRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	in := service.ExpenseInput{
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
		PaidBy:      req.PaidBy,
	}
	if len(req.Splits) > 0 {
		in.Splits = make(map[string]money.Cents, len(req.Splits))
		for _, entry := range req.Splits {
			in.Splits[entry.UserID] = entry.Amount
		}
	}

	expense, err := s.groups.RecordExpense(r.Context(), chi.URLParam(r, "groupID"), userID, in)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	balances, err := s.groups.Balances(r.Context(), chi.URLParam(r, "groupID"), userID)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balances)
}

func (s *Server) handleSettleUp(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req settleRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	settlement, err := s.groups.SettleUp(r.Context(), chi.URLParam(r, "groupID"),
		userID, req.ToUserID, req.Amount, req.Method, req.UpiLink)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settlement)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	analytics, err := s.groups.Analytics(r.Context(), chi.URLParam(r, "groupID"), userID)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}

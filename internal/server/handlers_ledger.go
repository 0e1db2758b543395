package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/expensage/backend/internal/middleware"
	"github.com/expensage/backend/internal/models"
	"github.com/expensage/backend/internal/money"
)

type transactionRequest struct {
	Type        string      `json:"type" validate:"required,oneof=income expense"`
	Amount      money.Cents `json:"amount" validate:"required,gt=0"`
	Category    string      `json:"category" validate:"required"`
	Description string      `json:"description"`
	Date        string      `json:"date" validate:"required"`
}

// parseDate accepts RFC 3339 timestamps or bare dates (2026-08-29).
func parseDate(s string) (int64, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Unix(), true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Unix(), true
	}
	return 0, false
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	transactions, err := s.ledger.ListTransactions(r.Context(), userID)
	if err != nil {
		serviceError(w, err)
		return
	}
	if transactions == nil {
		transactions = []*models.Transaction{}
	}
	writeJSON(w, http.StatusOK, transactions)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req transactionRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	date, ok := parseDate(req.Date)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}

	tx := &models.Transaction{
		UserID:      userID,
		Type:        req.Type,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        date,
	}
	if err := s.ledger.CreateTransaction(r.Context(), tx); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req transactionRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	date, ok := parseDate(req.Date)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}

	tx := &models.Transaction{
		ID:          chi.URLParam(r, "id"),
		UserID:      userID,
		Type:        req.Type,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        date,
	}
	if err := s.ledger.UpdateTransaction(r.Context(), tx); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := s.ledger.DeleteTransaction(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type budgetRequest struct {
	Category string      `json:"category" validate:"required"`
	Amount   money.Cents `json:"amount" validate:"required,gt=0"`
	Period   string      `json:"period" validate:"required"`
}

type budgetUpdateRequest struct {
	Amount money.Cents `json:"amount" validate:"required,gt=0"`
	Period string      `json:"period" validate:"required"`
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	budgets, err := s.ledger.ListBudgets(r.Context(), userID)
	if err != nil {
		serviceError(w, err)
		return
	}
	if budgets == nil {
		budgets = []*models.Budget{}
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req budgetRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	budget := &models.Budget{
		UserID:   userID,
		Category: req.Category,
		Amount:   req.Amount,
		Period:   req.Period,
	}
	if err := s.ledger.CreateBudget(r.Context(), budget); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, budget)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req budgetUpdateRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	budget := &models.Budget{
		ID:     chi.URLParam(r, "id"),
		UserID: userID,
		Amount: req.Amount,
		Period: req.Period,
	}
	if err := s.ledger.UpdateBudget(r.Context(), budget); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, budget)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := s.ledger.DeleteBudget(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type subscriptionRequest struct {
	Name        string      `json:"name" validate:"required"`
	Amount      money.Cents `json:"amount" validate:"required,gt=0"`
	Frequency   string      `json:"frequency" validate:"required"`
	NextPayment string      `json:"nextPayment" validate:"required"`
	Category    string      `json:"category"`
	Status      string      `json:"status" validate:"required"`
	Icon        string      `json:"icon"`
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	subs, err := s.ledger.ListSubscriptions(r.Context(), userID)
	if err != nil {
		serviceError(w, err)
		return
	}
	if subs == nil {
		subs = []*models.Subscription{}
	}
	writeJSON(w, http.StatusOK, subs)
}

func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req subscriptionRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	nextPayment, ok := parseDate(req.NextPayment)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid nextPayment date")
		return
	}

	sub := &models.Subscription{
		UserID:      userID,
		Name:        req.Name,
		Amount:      req.Amount,
		Frequency:   req.Frequency,
		NextPayment: nextPayment,
		Category:    req.Category,
		Status:      req.Status,
		Icon:        req.Icon,
	}
	if err := s.ledger.CreateSubscription(r.Context(), sub); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := s.ledger.DeleteSubscription(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Package server exposes the REST API over chi.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/expensage/backend/internal/auth"
	"github.com/expensage/backend/internal/middleware"
	"github.com/expensage/backend/internal/service"
)

// Server bundles the services behind the HTTP handlers.
type Server struct {
	auth     *service.AuthService
	groups   *service.GroupService
	ledger   *service.LedgerService
	jwt      *auth.JWTManager
	validate *validator.Validate
}

// New creates a Server.
func New(authSvc *service.AuthService, groupSvc *service.GroupService, ledgerSvc *service.LedgerService, jwtManager *auth.JWTManager) *Server {
	return &Server{
		auth:     authSvc,
		groups:   groupSvc,
		ledger:   ledgerSvc,
		jwt:      jwtManager,
		validate: validator.New(),
	}
}

// Router configures all routes and middleware.
func (s *Server) Router(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(middleware.Logging)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
		})

		// Everything below requires a valid bearer token.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(s.jwt))

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", s.handleListTransactions)
				r.Post("/", s.handleCreateTransaction)
				r.Put("/{id}", s.handleUpdateTransaction)
				r.Delete("/{id}", s.handleDeleteTransaction)
			})

			r.Route("/budgets", func(r chi.Router) {
				r.Get("/", s.handleListBudgets)
				r.Post("/", s.handleCreateBudget)
				r.Put("/{id}", s.handleUpdateBudget)
				r.Delete("/{id}", s.handleDeleteBudget)
			})

			r.Route("/subscriptions", func(r chi.Router) {
				r.Get("/", s.handleListSubscriptions)
				r.Post("/", s.handleCreateSubscription)
				r.Delete("/{id}", s.handleDeleteSubscription)
			})

			r.Route("/groups", func(r chi.Router) {
				r.Get("/", s.handleListGroups)
				r.Post("/", s.handleCreateGroup)
				r.Post("/join/{inviteToken}", s.handleJoinGroup)

				r.Route("/{groupID}", func(r chi.Router) {
					r.Delete("/", s.handleDeleteGroup)
					r.Get("/invite", s.handleInviteLink)
					r.Get("/members", s.handleListMembers)
					r.Post("/members", s.handleAddMember)
					r.Delete("/members/{memberID}", s.handleRemoveMember)
					r.Delete("/leave", s.handleLeaveGroup)
					r.Get("/expenses", s.handleListExpenses)
					r.Post("/expenses", s.handleRecordExpense)
					r.Get("/balances", s.handleBalances)
					r.Post("/settle", s.handleSettleUp)
					r.Get("/analytics", s.handleAnalytics)
				})
			})
		})
	})

	return r
}

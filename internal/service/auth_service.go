package service

import (
	"context"
	"log/slog"

	"github.com/expensage/backend/internal/auth"
	"github.com/expensage/backend/internal/models"
)

// AuthService handles registration and login, pairing an Authenticator with
// a JWT manager.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
	}
}

// Register creates a new account.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	user, err := s.authenticator.Register(ctx, email, name, password)
	if err != nil {
		slog.Warn("registration failed", "email", email, "error", err)
		return nil, err
	}
	slog.Info("user registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// Login verifies credentials and returns a signed session token with the user.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		slog.Warn("login failed", "email", email)
		return "", nil, err
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return "", nil, err
	}

	slog.Info("user logged in", "user_id", user.ID)
	return token, user, nil
}

package services

import (
	"context"

	"github.com/arodin/nutrisync/internal/api"
	"github.com/arodin/nutrisync/internal/executor"
	"github.com/arodin/nutrisync/internal/logger"
	"github.com/arodin/nutrisync/internal/models"
	"github.com/arodin/nutrisync/internal/store"
)

// AuthService handles login, registration, logout and profile creation.
// It is the only writer of the token store besides the refresh flow.
type AuthService struct {
	client   *api.Client
	executor *executor.Executor
	tokens   *store.TokenStore
	profile  *ProfileService
}

// NewAuthService creates a new auth service
func NewAuthService(client *api.Client, exec *executor.Executor, tokens *store.TokenStore, profile *ProfileService) *AuthService {
	return &AuthService{client: client, executor: exec, tokens: tokens, profile: profile}
}

func (s *AuthService) authenticate(ctx context.Context, endpoint, username, password string) executor.Outcome[models.AuthResponse] {
	request := models.AuthRequest{Username: username, Password: password}
	result := executor.Execute(ctx, s.executor, func(ctx context.Context) (*api.Response[models.AuthResponse], error) {
		return api.Post[models.AuthResponse](ctx, s.client, endpoint, request)
	})
	if !result.IsSuccess() {
		return result
	}

	auth := result.Data()
	if err := s.tokens.SaveTokens(auth.AccessToken, auth.RefreshToken); err != nil {
		return executor.Fail[models.AuthResponse](executor.KindExecution, "failed to persist tokens: %v", err)
	}

	logger.Info("Authenticated as %s", username)
	return result
}

// Login authenticates an existing user and persists the token pair.
func (s *AuthService) Login(ctx context.Context, username, password string) executor.Outcome[models.AuthResponse] {
	return s.authenticate(ctx, "/auth", username, password)
}

// Register creates a new account and persists the token pair.
func (s *AuthService) Register(ctx context.Context, username, password string) executor.Outcome[models.AuthResponse] {
	return s.authenticate(ctx, "/register", username, password)
}

// Logout clears the persisted tokens and the cached profile. Idempotent.
func (s *AuthService) Logout() error {
	if s.profile != nil {
		s.profile.ClearCache()
	}
	return s.tokens.ClearTokens()
}

// CreateProfile submits the initial user profile.
func (s *AuthService) CreateProfile(ctx context.Context, request models.CreateProfileRequest) executor.Outcome[models.MessageResponse] {
	return executor.Execute(ctx, s.executor, func(ctx context.Context) (*api.Response[models.MessageResponse], error) {
		return api.Post[models.MessageResponse](ctx, s.client, "/user/create", request)
	})
}

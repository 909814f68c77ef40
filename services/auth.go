package services

import (
	"context"
	"net/http"

	"github.com/todo-manager/v2/internal/auth"
	"github.com/todo-manager/v2/internal/types"
)

// AuthService implements auth.Service interface
type AuthService struct {
	apiClient *ApiClient
}

// NewAuthService creates a new instance of AuthService
func NewAuthService(apiClient *ApiClient) *AuthService {
	return &AuthService{apiClient: apiClient}
}

var _ auth.Service = (*AuthService)(nil)

// Register creates an account and returns the server's confirmation text,
// if any. Every 2xx counts as success whatever the body holds.
func (s *AuthService) Register(ctx context.Context, creds auth.Credentials) (string, error) {
	var resp types.MessageResponse
	if err := s.apiClient.CallAPI(ctx, "/register", http.MethodPost, creds, bestEffort{into: &resp}, "Registration failed"); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Login exchanges credentials for a bearer token. A 2xx response without a
// token is a failure.
func (s *AuthService) Login(ctx context.Context, creds auth.Credentials) (string, error) {
	var resp types.TokenResponse
	if err := s.apiClient.CallAPI(ctx, "/login", http.MethodPost, creds, &resp, "Login failed"); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", ErrMissingToken
	}
	return resp.Token, nil
}

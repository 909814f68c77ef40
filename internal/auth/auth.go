package auth

import "context"

// Service defines the authentication operations
type Service interface {
	Register(ctx context.Context, creds Credentials) (string, error)
	Login(ctx context.Context, creds Credentials) (string, error)
}

// Credentials contains register and login request data
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

package service

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrEmptyUsername = errors.New("username is empty")
	ErrEmptyPassword = errors.New("password is empty")
)

// Authenticator checks credentials against the backend.
type Authenticator interface {
	Login(ctx context.Context, username, password string) error
}

// AuthService validates the login form and forwards credentials to the backend.
// Passwords are passed through unchanged.
type AuthService struct {
	backend Authenticator
}

func NewAuthService(b Authenticator) *AuthService {
	return &AuthService{backend: b}
}

// Login returns the username to store in the session on success.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", ErrEmptyUsername
	}
	if password == "" {
		return "", ErrEmptyPassword
	}
	if err := s.backend.Login(ctx, username, password); err != nil {
		return "", err
	}
	return username, nil
}

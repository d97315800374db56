package service

import (
	"context"
	"errors"
	"fmt"

	"task_api/internal/models"
	"task_api/internal/repository"
)

// AuthService handles registration, login and token verification.
type AuthService struct {
	users  repository.Users
	hasher PasswordHasher
	tokens *TokenManager
}

func NewAuthService(users repository.Users, hasher PasswordHasher, tokens *TokenManager) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens}
}

// Register creates a user and returns it with a fresh token. The email
// lookup gives the common case a clean error; the store's unique index
// catches concurrent registrations that both pass the lookup.
func (s *AuthService) Register(ctx context.Context, email, password, username string) (AuthResult, error) {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return AuthResult{}, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}
	if existing != nil {
		return AuthResult{}, ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}

	u, err := s.users.Create(ctx, models.User{Email: email, Username: username, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return AuthResult{}, ErrDuplicateEmail
		}
		return AuthResult{}, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}
	return AuthResult{ID: u.ID, Username: u.Username, Token: token}, nil
}

// Login checks credentials and returns a fresh token. Unknown email and
// wrong password both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return AuthResult{}, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	if u == nil || !s.hasher.Verify(u.PasswordHash, password) {
		return AuthResult{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	return AuthResult{ID: u.ID, Username: u.Username, Token: token}, nil
}

// ParseToken verifies accessToken and returns the caller it was issued to.
func (s *AuthService) ParseToken(accessToken string) (models.Identity, error) {
	return s.tokens.Parse(accessToken)
}

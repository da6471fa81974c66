package service

import (
	"context"
	"errors"
	"strings"

	"quicket/internal/auth"
	"quicket/internal/model"
	"quicket/internal/repository"
)

// UserStore captures the user persistence operations the services need.
type UserStore interface {
	Create(ctx context.Context, username, email, passwordHash string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdateRole(ctx context.Context, id string, role model.Role) error
}

// AuthService handles registration, credential checks, and session tokens.
type AuthService struct {
	users  UserStore
	tokens *auth.TokenManager
}

// NewAuthService constructs an AuthService.
func NewAuthService(users UserStore, tokens *auth.TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register validates the payload and creates a new account. New accounts
// always get the user role; only an admin can promote them later.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if req.Username == "" {
		return nil, invalidf("username is required")
	}
	if !isValidEmail(req.Email) {
		return nil, invalidf("email is not a valid email address")
	}
	if len(req.Password) < 6 {
		return nil, invalidf("password must be at least 6 characters")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	return s.users.Create(ctx, req.Username, req.Email, hash)
}

// Login verifies the credentials and issues a session token. Unknown
// username and wrong password both map to ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.User, string, error) {
	if req.Username == "" || req.Password == "" {
		return nil, "", invalidf("username and password are required")
	}

	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// isValidEmail does a basic structural check (no external deps).
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	sharedauth "docqa-backend/internal/shared/auth"
	"docqa-backend/internal/users"
)

const bcryptCost = 10

var (
	// ErrInvalidCredentials covers unknown email and wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidInput indicates a malformed registration or login payload.
	ErrInvalidInput = errors.New("invalid input")
)

// Service registers accounts and authenticates logins.
type Service struct {
	Users  users.Repo
	Tokens *sharedauth.TokenManager
}

// NewService constructs a Service.
func NewService(repo users.Repo, tokens *sharedauth.TokenManager) *Service {
	return &Service{Users: repo, Tokens: tokens}
}

// Register creates a new account. The email is pre-checked for duplicates;
// the store's unique constraint backstops concurrent registrations.
func (s *Service) Register(ctx context.Context, name, email, password string) (users.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return users.User{}, ErrInvalidInput
	}

	if _, err := s.Users.GetByEmail(ctx, email); err == nil {
		return users.User{}, users.ErrEmailTaken
	} else if !errors.Is(err, users.ErrNotFound) {
		return users.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return users.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := users.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		return users.User{}, err
	}
	return user, nil
}

// Login verifies the credentials and issues a session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", ErrInvalidInput
	}

	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.Tokens.Issue(user.ID, user.Email)
}

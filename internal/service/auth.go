// Package service provides the business logic for authentication and
// ownership-scoped todo operations, delegating persistence to repositories.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dkorobov/taskdeck/internal/models"
	"github.com/dkorobov/taskdeck/internal/repository"
	"github.com/dkorobov/taskdeck/internal/security"
)

var (
	// ErrInvalidCredentials masks every login failure: unknown email and
	// wrong password are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	// ErrUserAlreadyExists is returned when the registration email is taken.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound is returned when a resolved identity no longer maps
	// to a stored user.
	ErrUserNotFound = errors.New("user not found")
)

// UserRepository defines the persistence operations required by AuthService.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AuthService turns credentials into authenticated identities and identities
// into session tokens. It holds no mutable state; the codec's secret is
// immutable configuration.
type AuthService struct {
	users UserRepository
	codec *security.TokenCodec

	// dummyHash is verified against when the email is unknown, so the
	// absent-user path pays the same hashing cost as the wrong-password
	// path and login timing does not enumerate accounts.
	dummyHash string
}

// NewAuthService constructs an AuthService using the provided repository
// and token codec.
func NewAuthService(users UserRepository, codec *security.TokenCodec) (*AuthService, error) {
	dummy, err := security.HashPassword("taskdeck-dummy-credential")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &AuthService{users: users, codec: codec, dummyHash: dummy}, nil
}

// Register creates a new account with a hashed password. The plaintext is
// never stored or logged.
func (s *AuthService) Register(ctx context.Context, email, password, fullName string) (*models.User, error) {
	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("register: %w", err)
	}
	return user, nil
}

// Authenticate verifies an (email, password) pair. Both an unknown email and
// a wrong password yield ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Burn a verification anyway to level timing.
			security.VerifyPassword(password, s.dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if !security.VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// IssueSession mints a session token carrying the user's id and email.
func (s *AuthService) IssueSession(user *models.User) (string, error) {
	return s.codec.Encode(user.ID, user.Email)
}

// CurrentUser loads the user behind a resolved identity. A user deleted
// after token issuance yields ErrUserNotFound, which the boundary reports
// as an ordinary authentication failure.
func (s *AuthService) CurrentUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("current user: %w", err)
	}
	return user, nil
}

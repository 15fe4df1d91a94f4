package service

import (
	"context"
	"errors"
	"strings"

	"taskmanager/internal/domain"
	"taskmanager/internal/repository"

	"github.com/google/uuid"
)

// MinPasswordLen is the registration password policy.
const MinPasswordLen = 6

// UserStore is the credential store the auth service runs on.
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
}

// AuthService orchestrates registration, login and profile management.
type AuthService struct {
	users  UserStore
	hasher *PasswordHasher
	tokens *TokenService
}

func NewAuthService(users UserStore, hasher *PasswordHasher, tokens *TokenService) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens}
}

// Register creates a user and returns it with a fresh session token.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, string, error) {
	name = strings.TrimSpace(name)
	email = repository.NormalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, "", domain.ErrInvalidInput
	}
	if len(password) < MinPasswordLen {
		return nil, "", domain.ErrWeakPassword
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, "", err
	}

	user := &domain.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	// The unique index on email decides duplicates; no pre-check, so two
	// concurrent registrations cannot both win.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies credentials and issues a fresh token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// burn a compare so the miss costs the same as a mismatch
			s.hasher.Verify(password, dummyDigest)
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// ProfileUpdate carries the optional profile fields. Nil means unchanged.
type ProfileUpdate struct {
	Name  *string
	Email *string
}

// UpdateProfile mutates the caller's own name and email. Password changes are
// not accepted through this path.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, upd ProfileUpdate) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		user.Name = name
	}
	if upd.Email != nil {
		email := repository.NormalizeEmail(*upd.Email)
		if email == "" {
			return nil, domain.ErrInvalidInput
		}
		user.Email = email
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/simpletodo/api/internal/logging"
	"github.com/simpletodo/api/internal/user"
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrUserNameTooShort = errors.New("userName must be at least 4 characters")
	ErrNoSuchUser       = errors.New("no such user")
	ErrWrongPassword    = errors.New("wrong password")
)

// Identity is the public identity tuple returned by Register and Login.
// It never carries the credential.
type Identity struct {
	UserID   string
	UserName string
}

// Service is the user directory: it composes the credential store and the
// token service to answer register, login and token resolution.
type Service struct {
	users  UserRepository
	tokens TokenService
	logger *logging.Logger
}

func NewService(users UserRepository, tokens TokenService, logger *logging.Logger) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates a new user account. Validation runs before any
// persistence attempt, password first. Duplicate names are detected from
// the storage layer's uniqueness constraint, not a pre-check, so the race
// between concurrent registrations has exactly one winner.
func (s *Service) Register(ctx context.Context, userName, password string) (*Identity, error) {
	if len(password) < 8 {
		return nil, ErrPasswordTooShort
	}
	if len(userName) < 4 {
		return nil, ErrUserNameTooShort
	}

	// Plaintext enters the system only here; it is hashed before it ever
	// reaches the repository.
	passwordHash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.users.Create(ctx, userName, passwordHash)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateUserName) {
			return nil, user.ErrDuplicateUserName
		}
		s.logger.Error("failed to create user", "error", err.Error())
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &Identity{
		UserID:   newUser.ID.String(),
		UserName: newUser.UserName,
	}, nil
}

// Login authenticates a user by name and password. "No such user" and
// "wrong password" stay distinguishable; the message distinction is
// intentional and user-visible.
func (s *Service) Login(ctx context.Context, userName, password string) (*Identity, error) {
	existing, err := s.users.GetByUserName(ctx, userName)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrNoSuchUser
		}
		s.logger.Error("failed to get user", "error", err.Error())
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !CheckPassword(password, existing.PasswordHash) {
		return nil, ErrWrongPassword
	}

	return &Identity{
		UserID:   existing.ID.String(),
		UserName: existing.UserName,
	}, nil
}

// IssueToken mints a signed token for the given user id.
func (s *Service) IssueToken(userID string) (string, error) {
	return s.tokens.CreateToken(userID)
}

// ResolveToken verifies a bearer token and loads the subject user.
// Token service failures propagate unchanged; an id that no longer
// resolves (user deleted after issuance) becomes ErrNoSuchUser.
func (s *Service) ResolveToken(ctx context.Context, token string) (*user.User, error) {
	userID, err := s.tokens.VerifyToken(token)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrNoSuchUser
	}

	resolved, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrNoSuchUser
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return resolved, nil
}

package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/simpletodo/api/internal/user"
)

// TokenService defines the interface for token creation and validation.
// JWTService (HS256) is the production implementation.
type TokenService interface {
	CreateToken(userID string) (string, error)
	VerifyToken(tokenStr string) (string, error)
}

// UserRepository is the subset of user persistence the auth service needs.
// Satisfied by *user.Repository.
type UserRepository interface {
	Create(ctx context.Context, userName, passwordHash string) (*user.User, error)
	GetByUserName(ctx context.Context, userName string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// RateLimiter throttles anonymous endpoints by client IP.
// Satisfied by *ratelimit.Limiter.
type RateLimiter interface {
	CheckIPRateLimitWithPurpose(ctx context.Context, ip, purpose string) (bool, error)
	RecordIPRequestWithPurpose(ctx context.Context, ip, purpose string) error
}
